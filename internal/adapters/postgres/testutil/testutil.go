// Package testutil opens a migrated Postgres pool for integration tests.
package testutil

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/campflow/camp-registration-api/internal/adapters/postgres"
)

// EnvDatabaseURL names the variable that enables Postgres-backed tests.
const EnvDatabaseURL = "TEST_DATABASE_URL"

// OpenMigratedPool connects to TEST_DATABASE_URL and applies migrations. The test is skipped when
// the variable is unset. Tests share the database, so they must use unique identifiers.
func OpenMigratedPool(t *testing.T) *pgxpool.Pool {
	t.Helper()

	dsn := os.Getenv(EnvDatabaseURL)
	if dsn == "" {
		t.Skipf("%s not set; skipping Postgres integration test", EnvDatabaseURL)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	pool, err := postgres.NewPool(ctx, dsn, postgres.PoolOptions{MaxConns: 4})
	if err != nil {
		t.Fatalf("NewPool: %v", err)
	}
	t.Cleanup(pool.Close)

	if err := postgres.Migrate(ctx, pool); err != nil {
		t.Fatalf("Migrate: %v", err)
	}
	return pool
}
