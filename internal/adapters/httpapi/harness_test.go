package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	memcamprepo "github.com/campflow/camp-registration-api/internal/adapters/memory/camprepo"
	memclock "github.com/campflow/camp-registration-api/internal/adapters/memory/clock"
	memidempotency "github.com/campflow/camp-registration-api/internal/adapters/memory/idempotency"
	memregistrationrepo "github.com/campflow/camp-registration-api/internal/adapters/memory/registrationrepo"
	memuserrepo "github.com/campflow/camp-registration-api/internal/adapters/memory/userrepo"
	"github.com/campflow/camp-registration-api/internal/app/camps"
	"github.com/campflow/camp-registration-api/internal/app/seed"
	"github.com/campflow/camp-registration-api/internal/app/users"
	"github.com/campflow/camp-registration-api/internal/platform/logging"
)

const (
	subjectAdmin  = seed.SubjectPrefix + "1" // Jane, ADMIN
	subjectJoiner = seed.SubjectPrefix + "2" // John, JOINER
	subjectEmily  = seed.SubjectPrefix + "3" // Emily, JOINER
)

// newTestAPI wires the router over seeded in-memory repositories and the dev auth shim with
// no default subject, so every request must carry X-Debug-Subject.
func newTestAPI(t *testing.T) http.Handler {
	t.Helper()

	clk := memclock.NewManualClock(time.Date(2024, 1, 10, 9, 0, 0, 0, time.UTC))
	campRepo := memcamprepo.NewRepo()
	regRepo := memregistrationrepo.NewRepo()
	userRepo := memuserrepo.NewRepo()
	if _, err := seed.Load(context.Background(), campRepo, userRepo); err != nil {
		t.Fatalf("seed.Load err=%v", err)
	}

	api := NewServer(
		camps.NewService(campRepo, regRepo, userRepo, clk),
		users.NewService(userRepo, clk),
		memidempotency.NewStore(),
		logging.Nop(),
	)
	return NewRouterWithOptions(api, RouterOptions{AuthMiddleware: NewDevAuthMiddleware("")})
}

func do(t *testing.T, h http.Handler, method, path, subject string, body any, headers ...string) *httptest.ResponseRecorder {
	t.Helper()

	var buf *bytes.Buffer
	switch b := body.(type) {
	case nil:
		buf = &bytes.Buffer{}
	case string:
		buf = bytes.NewBufferString(b)
	default:
		raw, err := json.Marshal(b)
		if err != nil {
			t.Fatalf("marshal body err=%v", err)
		}
		buf = bytes.NewBuffer(raw)
	}
	req := httptest.NewRequest(method, path, buf)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if subject != "" {
		req.Header.Set("X-Debug-Subject", subject)
	}
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode err=%v body=%s", err, rec.Body.String())
	}
	return out
}

func requireStatus(t *testing.T, rec *httptest.ResponseRecorder, want int) {
	t.Helper()
	if rec.Code != want {
		t.Fatalf("status=%d want=%d body=%s", rec.Code, want, rec.Body.String())
	}
}

func requireErrorCode(t *testing.T, rec *httptest.ResponseRecorder, wantStatus int, wantCode string) ErrorResponse {
	t.Helper()
	requireStatus(t, rec, wantStatus)
	er := decode[ErrorResponse](t, rec)
	if er.Error.Code != wantCode {
		t.Fatalf("error.code=%q want=%q body=%s", er.Error.Code, wantCode, rec.Body.String())
	}
	return er
}
