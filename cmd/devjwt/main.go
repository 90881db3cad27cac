package main

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/campflow/camp-registration-api/internal/platform/auth/jwks_testutil"
	"github.com/campflow/camp-registration-api/internal/platform/config"
	"github.com/campflow/camp-registration-api/internal/platform/logging"
)

// Tiny dev-only JWT issuer + JWKS server.
//
// This is NOT a full OIDC provider. It exists to support local development against
// real RS256 JWT verification (iss/aud/exp + JWKS). Pair it with the API's
// JWT_JWKS_URL=http://devjwt:5556/.well-known/jwks.json and mint tokens for the
// seeded users with GET /token?sub=seed|1.

type devConfig struct {
	Port     string        `env:"PORT" envDefault:"5556"`
	Issuer   string        `env:"ISSUER" envDefault:"http://devjwt:5556"`
	Audience string        `env:"AUDIENCE" envDefault:"camp-registration-api"`
	Kid      string        `env:"KID" envDefault:"dev-kid-1"`
	TTL      time.Duration `env:"TTL" envDefault:"30m"`

	LogLevel  string `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat string `env:"LOG_FORMAT" envDefault:"text"`
}

func main() {
	ctx := context.Background()

	var cfg devConfig
	if err := config.ParseEnv(&cfg); err != nil {
		logging.New(os.Stderr, "error", "text").Error(ctx, "invalid config", "err", err)
		os.Exit(1)
	}
	log := logging.New(os.Stderr, cfg.LogLevel, cfg.LogFormat)

	kp, err := jwks_testutil.GenerateRSAKeypair(cfg.Kid)
	if err != nil {
		log.Error(ctx, "generate key", "err", err)
		os.Exit(1)
	}
	jwksJSON, err := jwks_testutil.MarshalJWKS([]jwks_testutil.Keypair{kp})
	if err != nil {
		log.Error(ctx, "marshal jwks", "err", err)
		os.Exit(1)
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	// Common JWKS path used by many providers.
	r.Get("/.well-known/jwks.json", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(jwksJSON)
	})

	// Mint a JWT:
	//   GET /token?sub=seed|1
	r.Get("/token", func(w http.ResponseWriter, r *http.Request) {
		sub := strings.TrimSpace(r.URL.Query().Get("sub"))
		if sub == "" {
			http.Error(w, "missing sub", http.StatusBadRequest)
			return
		}

		now := time.Now().UTC()
		skew := -5 * time.Second // small nbf tolerance for local use
		token, err := jwks_testutil.MintRS256JWT(kp, cfg.Issuer, cfg.Audience, sub, now, cfg.TTL, &skew)
		if err != nil {
			log.Error(r.Context(), "mint token", "err", err)
			http.Error(w, "failed to mint token", http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"token": token,
			"sub":   sub,
			"iss":   cfg.Issuer,
			"aud":   cfg.Audience,
			"exp":   now.Add(cfg.TTL).Unix(),
		})
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
	}

	log.Info(ctx, "devjwt listening", "addr", srv.Addr, "iss", cfg.Issuer, "aud", cfg.Audience, "kid", cfg.Kid, "ttl", cfg.TTL)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Error(ctx, "listen", "err", err)
		os.Exit(1)
	}
}
