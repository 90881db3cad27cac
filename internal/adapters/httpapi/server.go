package httpapi

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/campflow/camp-registration-api/internal/app/camps"
	"github.com/campflow/camp-registration-api/internal/app/users"
	"github.com/campflow/camp-registration-api/internal/platform/logging"
	"github.com/campflow/camp-registration-api/internal/ports/out/idempotency"
)

const maxBodyBytes = 1 << 20

// Server is the HTTP adapter over the camp and user services.
type Server struct {
	Camps *camps.Service
	Users *users.Service
	Idem  idempotency.Store
	Log   logging.Logger
}

func NewServer(campsSvc *camps.Service, usersSvc *users.Service, idem idempotency.Store, log logging.Logger) *Server {
	return &Server{
		Camps: campsSvc,
		Users: usersSvc,
		Idem:  idem,
		Log:   log,
	}
}

func (s *Server) log() logging.Logger {
	if s.Log == nil {
		return logging.Nop()
	}
	return s.Log
}

// encodeJSON renders v so the same bytes can be written and stored for replay.
func encodeJSON(v any) ([]byte, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return append(b, '\n'), nil
}

func writeRaw(w http.ResponseWriter, status int, contentType string, body []byte) {
	w.Header().Set("Content-Type", contentType)
	w.WriteHeader(status)
	_, _ = w.Write(body)
}

func (s *Server) writeJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	b, err := encodeJSON(v)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeRaw(w, status, "application/json", b)
}

// decodeJSON reads a single JSON document into dst. On failure it writes a 422 and
// returns false.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	if r.Body == nil {
		writeValidation(w, r, "body", "missing request body")
		return false
	}
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			writeValidation(w, r, "body", "missing request body")
			return false
		}
		writeValidation(w, r, "body", "malformed JSON: "+err.Error())
		return false
	}
	if dec.More() {
		writeValidation(w, r, "body", "trailing data after JSON document")
		return false
	}
	return true
}
