package itest

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/campflow/camp-registration-api/internal/adapters/httpapi"
	memcamprepo "github.com/campflow/camp-registration-api/internal/adapters/memory/camprepo"
	memclock "github.com/campflow/camp-registration-api/internal/adapters/memory/clock"
	memidempotency "github.com/campflow/camp-registration-api/internal/adapters/memory/idempotency"
	memregistrationrepo "github.com/campflow/camp-registration-api/internal/adapters/memory/registrationrepo"
	memuserrepo "github.com/campflow/camp-registration-api/internal/adapters/memory/userrepo"
	pgcamprepo "github.com/campflow/camp-registration-api/internal/adapters/postgres/camprepo"
	pgidempotency "github.com/campflow/camp-registration-api/internal/adapters/postgres/idempotency"
	pgregistrationrepo "github.com/campflow/camp-registration-api/internal/adapters/postgres/registrationrepo"
	postgres_testutil "github.com/campflow/camp-registration-api/internal/adapters/postgres/testutil"
	pguserrepo "github.com/campflow/camp-registration-api/internal/adapters/postgres/userrepo"
	"github.com/campflow/camp-registration-api/internal/adapters/snapshot"
	"github.com/campflow/camp-registration-api/internal/adapters/sqlite/kvstore"
	"github.com/campflow/camp-registration-api/internal/app/camps"
	"github.com/campflow/camp-registration-api/internal/app/users"
	"github.com/campflow/camp-registration-api/internal/domain"
	"github.com/campflow/camp-registration-api/internal/platform/logging"
	camprepoport "github.com/campflow/camp-registration-api/internal/ports/out/camprepo"
	idempotencyport "github.com/campflow/camp-registration-api/internal/ports/out/idempotency"
	registrationrepoport "github.com/campflow/camp-registration-api/internal/ports/out/registrationrepo"
	userrepoport "github.com/campflow/camp-registration-api/internal/ports/out/userrepo"
)

type backend string

const (
	backendMemory   backend = "memory"
	backendSnapshot backend = "snapshot"
	backendPostgres backend = "postgres"
)

func backendsFromEnv(t *testing.T) []backend {
	t.Helper()
	switch strings.ToLower(strings.TrimSpace(os.Getenv("ITEST_BACKEND"))) {
	case "", "memory":
		return []backend{backendMemory}
	case "snapshot":
		return []backend{backendSnapshot}
	case "postgres":
		return []backend{backendPostgres}
	case "all":
		return []backend{backendMemory, backendSnapshot, backendPostgres}
	default:
		t.Fatalf("unknown ITEST_BACKEND value (expected memory|snapshot|postgres|all)")
		return nil
	}
}

type testServer struct {
	baseURL string
	client  *http.Client

	// adminSubject authenticates as an ADMIN created directly in the repository.
	adminSubject string
	// tag makes emails and subjects unique per run on shared databases.
	tag string
}

func newTestServer(t *testing.T, b backend) *testServer {
	t.Helper()

	const issuer = "itest-issuer"
	clk := memclock.NewManualClock(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))

	var (
		campRepo  camprepoport.Repository
		regRepo   registrationrepoport.Repository
		userRepo  userrepoport.Repository
		idemStore idempotencyport.Store
	)

	switch b {
	case backendPostgres:
		pool := postgres_testutil.OpenMigratedPool(t)
		campRepo = pgcamprepo.NewRepo(pool)
		regRepo = pgregistrationrepo.NewRepo(pool)
		userRepo = pguserrepo.NewRepo(pool, issuer)
		idemStore = pgidempotency.NewStore(pool, issuer)
	case backendSnapshot:
		kv, err := kvstore.Open(context.Background(), ":memory:")
		if err != nil {
			t.Fatalf("kvstore.Open: %v", err)
		}
		t.Cleanup(func() { _ = kv.Close() })
		store, err := snapshot.Open(context.Background(), kv, logging.Nop())
		if err != nil {
			t.Fatalf("snapshot.Open: %v", err)
		}
		campRepo = store.Camps()
		regRepo = store.Registrations()
		userRepo = store.Users()
		idemStore = memidempotency.NewStore()
	case backendMemory:
		campRepo = memcamprepo.NewRepo()
		regRepo = memregistrationrepo.NewRepo()
		userRepo = memuserrepo.NewRepo()
		idemStore = memidempotency.NewStore()
	default:
		t.Fatalf("unknown backend: %s", b)
	}

	tag := uuid.NewString()[:8]
	admin := domain.User{
		ID:        domain.UserID("itest-admin-" + tag),
		Subject:   domain.SubjectID("itest|admin-" + tag),
		Firstname: "Ada",
		Surname:   "Admin",
		Email:     "admin-" + tag + "@example.com",
		Role:      domain.RoleAdmin,
		JoinedAt:  clk.Now(),
		CreatedAt: clk.Now(),
		UpdatedAt: clk.Now(),
	}
	if err := userRepo.Create(context.Background(), admin); err != nil {
		t.Fatalf("create admin: %v", err)
	}

	api := httpapi.NewServer(
		camps.NewService(campRepo, regRepo, userRepo, clk),
		users.NewService(userRepo, clk),
		idemStore,
		logging.Nop(),
	)

	// Empty default subject: requests MUST provide X-Debug-Subject, which keeps auth-failure
	// coverage.
	authMW := httpapi.NewDevAuthMiddleware("")
	handler := httpapi.NewRouterWithOptions(api, httpapi.RouterOptions{AuthMiddleware: authMW})

	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	return &testServer{
		baseURL:      srv.URL,
		client:       srv.Client(),
		adminSubject: string(admin.Subject),
		tag:          tag,
	}
}

func (s *testServer) url(path string) string {
	if strings.HasPrefix(path, "/") {
		return s.baseURL + path
	}
	return s.baseURL + "/" + path
}

func (s *testServer) doJSON(t *testing.T, method string, path string, subject string, body any) (int, []byte, http.Header) {
	t.Helper()

	var r io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		r = bytes.NewReader(b)
	}
	req, err := http.NewRequest(method, s.url(path), r)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	if subject != "" {
		req.Header.Set("X-Debug-Subject", subject)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		t.Fatalf("do request: %v", err)
	}
	defer resp.Body.Close()
	out, _ := io.ReadAll(resp.Body)
	return resp.StatusCode, out, resp.Header
}

type errorResponse struct {
	Error struct {
		Code      string `json:"code"`
		Message   string `json:"message"`
		RequestId string `json:"requestId"`
	} `json:"error"`
}

func mustUnmarshal[T any](t *testing.T, b []byte) T {
	t.Helper()
	var out T
	if err := json.Unmarshal(b, &out); err != nil {
		t.Fatalf("unmarshal: %v\nbody=%s", err, string(b))
	}
	return out
}

func requireStatus(t *testing.T, status int, body []byte, want int) {
	t.Helper()
	if status != want {
		t.Fatalf("status=%d want=%d body=%s", status, want, string(body))
	}
}

func requireErrorCode(t *testing.T, status int, body []byte, wantStatus int, wantCode string) {
	t.Helper()
	requireStatus(t, status, body, wantStatus)
	got := mustUnmarshal[errorResponse](t, body)
	if got.Error.Code != wantCode {
		t.Fatalf("error.code=%q want=%q body=%s", got.Error.Code, wantCode, string(body))
	}
}

func requireHeaderPresent(t *testing.T, h http.Header, key string) {
	t.Helper()
	if strings.TrimSpace(h.Get(key)) == "" {
		t.Fatalf("expected header %q to be present", key)
	}
}
