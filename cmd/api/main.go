package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/campflow/camp-registration-api/internal/adapters/httpapi"
	memcamprepo "github.com/campflow/camp-registration-api/internal/adapters/memory/camprepo"
	memidempotency "github.com/campflow/camp-registration-api/internal/adapters/memory/idempotency"
	memregistrationrepo "github.com/campflow/camp-registration-api/internal/adapters/memory/registrationrepo"
	memuserrepo "github.com/campflow/camp-registration-api/internal/adapters/memory/userrepo"
	postgres "github.com/campflow/camp-registration-api/internal/adapters/postgres"
	pgcamprepo "github.com/campflow/camp-registration-api/internal/adapters/postgres/camprepo"
	pgidempotency "github.com/campflow/camp-registration-api/internal/adapters/postgres/idempotency"
	pgregistrationrepo "github.com/campflow/camp-registration-api/internal/adapters/postgres/registrationrepo"
	pguserrepo "github.com/campflow/camp-registration-api/internal/adapters/postgres/userrepo"
	"github.com/campflow/camp-registration-api/internal/adapters/snapshot"
	"github.com/campflow/camp-registration-api/internal/adapters/sqlite/kvstore"
	"github.com/campflow/camp-registration-api/internal/app/camps"
	"github.com/campflow/camp-registration-api/internal/app/seed"
	"github.com/campflow/camp-registration-api/internal/app/users"
	"github.com/campflow/camp-registration-api/internal/platform/auth/jwtverifier"
	platformclock "github.com/campflow/camp-registration-api/internal/platform/clock"
	"github.com/campflow/camp-registration-api/internal/platform/config"
	"github.com/campflow/camp-registration-api/internal/platform/logging"
	camprepoport "github.com/campflow/camp-registration-api/internal/ports/out/camprepo"
	clockport "github.com/campflow/camp-registration-api/internal/ports/out/clock"
	idempotencyport "github.com/campflow/camp-registration-api/internal/ports/out/idempotency"
	registrationrepoport "github.com/campflow/camp-registration-api/internal/ports/out/registrationrepo"
	userrepoport "github.com/campflow/camp-registration-api/internal/ports/out/userrepo"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logging.New(os.Stderr, "error", "text").Error(context.Background(), "invalid config", "err", err)
		os.Exit(1)
	}
	log := logging.New(os.Stderr, cfg.LogLevel, cfg.LogFormat)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil {
		log.Error(ctx, "api exited", "err", err)
		os.Exit(1)
	}
}

type storage struct {
	camps camprepoport.Repository
	regs  registrationrepoport.Repository
	users userrepoport.Repository
	idem  idempotencyport.Store
	close func()
}

func run(ctx context.Context, cfg config.Config, log *logging.SlogLogger) error {
	// Auth configuration:
	// - Production: require JWT_* env vars and enforce bearer auth
	// - Local dev: AUTH_MODE=dev bypasses JWT verification and uses X-Debug-Subject
	var (
		authMW     func(http.Handler) http.Handler
		authIssuer string
	)
	switch cfg.AuthMode {
	case config.AuthModeDev:
		authMW = httpapi.NewDevAuthMiddleware(cfg.DevSubject)
		authIssuer = "dev"
		log.Warn(ctx, "dev auth enabled; do not use in production", "default_subject", cfg.DevSubject)
	default:
		authMW = httpapi.NewAuthMiddleware(jwtverifier.New(cfg.JWT))
		authIssuer = cfg.JWT.Issuer
	}

	clk := platformclock.System()

	st, err := openStorage(ctx, cfg, log, clk, authIssuer)
	if err != nil {
		return err
	}
	defer st.close()

	if cfg.SeedDemoData {
		res, err := seed.Load(ctx, st.camps, st.users)
		if err != nil {
			return fmt.Errorf("seed demo data: %w", err)
		}
		log.Info(ctx, "demo data seeded", "camps", res.Camps, "users", res.Users)
	}

	api := httpapi.NewServer(
		camps.NewService(st.camps, st.regs, st.users, clk),
		users.NewService(st.users, clk),
		st.idem,
		log,
	)
	handler := httpapi.NewRouterWithOptions(api, httpapi.RouterOptions{AuthMiddleware: authMW})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		ErrorLog:          slog.NewLogLogger(log.Slog().Handler(), slog.LevelError),
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info(ctx, "api listening", "addr", srv.Addr, "storage", cfg.StorageBackend, "auth", cfg.AuthMode)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("listen: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	log.Info(context.Background(), "shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

func openStorage(ctx context.Context, cfg config.Config, log logging.Logger, clk clockport.Clock, issuer string) (storage, error) {
	switch cfg.StorageBackend {
	case config.StoragePostgres:
		pool, err := postgres.NewPool(ctx, cfg.DatabaseURL, postgres.PoolOptions{MaxConns: cfg.DBMaxConns})
		if err != nil {
			return storage{}, fmt.Errorf("open postgres: %w", err)
		}
		if err := postgres.Migrate(ctx, pool); err != nil {
			pool.Close()
			return storage{}, err
		}
		return storage{
			camps: pgcamprepo.NewRepo(pool),
			regs:  pgregistrationrepo.NewRepo(pool),
			users: pguserrepo.NewRepo(pool, issuer),
			idem:  pgidempotency.NewStoreWithOptions(pool, issuer, clk, cfg.IdempotencyRetention),
			close: pool.Close,
		}, nil

	case config.StorageSnapshot:
		kv, err := kvstore.Open(ctx, cfg.SnapshotPath)
		if err != nil {
			return storage{}, fmt.Errorf("open snapshot store: %w", err)
		}
		snap, err := snapshot.Open(ctx, kv, log)
		if err != nil {
			_ = kv.Close()
			return storage{}, err
		}
		return storage{
			camps: snap.Camps(),
			regs:  snap.Registrations(),
			users: snap.Users(),
			idem:  memidempotency.NewStoreWithOptions(clk, cfg.IdempotencyRetention),
			close: func() {
				if err := kv.Close(); err != nil {
					log.Warn(context.Background(), "close snapshot store", "err", err)
				}
			},
		}, nil

	default:
		return storage{
			camps: memcamprepo.NewRepo(),
			regs:  memregistrationrepo.NewRepo(),
			users: memuserrepo.NewRepo(),
			idem:  memidempotency.NewStoreWithOptions(clk, cfg.IdempotencyRetention),
			close: func() {},
		}, nil
	}
}
