package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/campflow/camp-registration-api/internal/domain"
	"github.com/campflow/camp-registration-api/internal/platform/logging"
)

type RouterOptions struct {
	// AuthMiddleware authenticates the caller and stores the subject in context.
	// When nil, every route except /healthz answers 401.
	AuthMiddleware func(http.Handler) http.Handler
	// Logger receives one line per request. Defaults to the server's logger.
	Logger logging.Logger
}

// NewRouter constructs the API HTTP router with no authentication installed, so only
// /healthz answers. Production wiring uses NewRouterWithOptions.
func NewRouter(s *Server) http.Handler {
	return NewRouterWithOptions(s, RouterOptions{})
}

func NewRouterWithOptions(s *Server, opts RouterOptions) http.Handler {
	log := opts.Logger
	if log == nil {
		log = s.log()
	}
	auth := opts.AuthMiddleware
	if auth == nil {
		auth = denyAll
	}

	r := chi.NewRouter()

	// Baseline production-safe middleware (minimal but useful).
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger(log))
	r.Use(middleware.Recoverer)

	// Infra health check; unauthenticated.
	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	r.Group(func(r chi.Router) {
		r.Use(auth)

		// Self-service profile; the caller may not be provisioned yet.
		r.Get("/users/me", s.getMe)
		r.Post("/users/me", s.provisionMe)
		r.Patch("/users/me", s.updateMe)

		r.Group(func(r chi.Router) {
			r.Use(s.requireUser)

			r.Get("/camps", s.listCamps)
			r.With(requireRole(domain.RoleAdmin)).Post("/camps", s.createCamp)

			r.Route("/camps/{campId}", func(r chi.Router) {
				r.Get("/", s.getCamp)

				r.Group(func(r chi.Router) {
					r.Use(s.campEditor)
					r.Patch("/", s.updateCamp)
					r.Delete("/", s.deleteCamp)
					r.Post("/days", s.addDay)
					r.Delete("/days/{dayId}", s.removeDay)
					r.Post("/days/{dayId}/activities", s.addActivity)
					r.Delete("/days/{dayId}/activities/{index}", s.removeActivity)
				})

				r.With(requireRole(domain.RoleAdmin)).Get("/participants", s.campParticipants)
				r.Get("/registration", s.getMyRegistration)
				r.With(requireRole(domain.RoleJoiner)).Post("/registration", s.registerForCamp)
			})

			r.With(requireRole(domain.RoleAdmin)).Get("/registrations", s.listRegistrations)
			r.Put("/registrations/{registrationId}", s.updateRegistration)
			r.Get("/me/registrations", s.listMyRegistrations)

			r.Group(func(r chi.Router) {
				r.Use(requireRole(domain.RoleAdmin))
				r.Get("/users", s.listUsers)
				r.Get("/users/{userId}", s.getUser)
				r.Put("/users/{userId}/role", s.changeRole)
			})
		})
	})
	return r
}

func denyAll(http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, r, http.StatusUnauthorized, "UNAUTHORIZED", "authentication is not configured", nil)
	})
}
