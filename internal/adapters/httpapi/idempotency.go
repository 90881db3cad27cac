package httpapi

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/campflow/camp-registration-api/internal/domain"
	"github.com/campflow/camp-registration-api/internal/ports/out/idempotency"
)

// idemScope tracks one request carrying an Idempotency-Key.
//
// Strategy:
// - a pin record (empty BodyHash) ties the key to the first payload hash
// - the same key with a different payload is 409 IDEMPOTENCY_KEY_REUSE
// - a stored response under the full fingerprint is replayed verbatim
type idemScope struct {
	s      *Server
	fp     idempotency.Fingerprint
	active bool
}

// beginIdempotent returns false when the response has already been written
// (replay, key reuse, or store failure).
func (s *Server) beginIdempotent(w http.ResponseWriter, r *http.Request, route string, subject domain.SubjectID, body any) (idemScope, bool) {
	key := strings.TrimSpace(r.Header.Get("Idempotency-Key"))
	if key == "" || s.Idem == nil {
		return idemScope{}, true
	}
	bodyHash, err := hashBody(body)
	if err != nil {
		s.writeServiceError(w, r, err)
		return idemScope{}, false
	}

	ctx := r.Context()
	scope := idempotency.Fingerprint{
		Key:     idempotency.Key(key),
		Subject: subject,
		Method:  r.Method,
		Route:   route,
	}
	pin, ok, err := s.Idem.Get(ctx, scope.Pin())
	switch {
	case err != nil:
		s.writeServiceError(w, r, err)
		return idemScope{}, false
	case ok && pin.PinnedHash() != bodyHash:
		writeError(w, r, http.StatusConflict, "IDEMPOTENCY_KEY_REUSE", "idempotency key reuse with different payload", nil)
		return idemScope{}, false
	case !ok:
		if err := s.Idem.Put(ctx, scope.Pin(), idempotency.PinRecord(bodyHash)); err != nil {
			s.log().Warn(ctx, "idempotency pin write failed", "route", route, "err", err)
		}
	}

	respFP := scope.ForBody(bodyHash)
	rec, ok, err := s.Idem.Get(ctx, respFP)
	if err != nil {
		s.writeServiceError(w, r, err)
		return idemScope{}, false
	}
	if ok && rec.Replayable() {
		w.Header().Set("Idempotent-Replayed", "true")
		writeRaw(w, rec.StatusCode, rec.ContentType, rec.Body)
		return idemScope{}, false
	}
	return idemScope{s: s, fp: respFP, active: true}, true
}

// respond writes v and, for successful responses, stores it for replay.
func (sc idemScope) respond(w http.ResponseWriter, r *http.Request, status int, v any) {
	if !sc.active {
		sc.writeThrough(w, r, status, v)
		return
	}
	b, err := encodeJSON(v)
	if err != nil {
		sc.s.writeServiceError(w, r, err)
		return
	}
	if status >= 200 && status < 300 {
		if err := sc.s.Idem.Put(r.Context(), sc.fp, idempotency.Record{
			StatusCode:  status,
			ContentType: "application/json",
			Body:        b,
		}); err != nil {
			sc.s.log().Warn(r.Context(), "idempotency record write failed", "route", sc.fp.Route, "err", err)
		}
	}
	writeRaw(w, status, "application/json", b)
}

func (sc idemScope) writeThrough(w http.ResponseWriter, r *http.Request, status int, v any) {
	b, err := encodeJSON(v)
	if err != nil {
		writeError(w, r, http.StatusInternalServerError, "INTERNAL", "internal error", nil)
		return
	}
	writeRaw(w, status, "application/json", b)
}

func hashBody(v any) (string, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return "", err
	}
	sum := sha256.Sum256(b)
	return hex.EncodeToString(sum[:]), nil
}
