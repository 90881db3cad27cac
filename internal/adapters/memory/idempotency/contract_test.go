package idempotency

import (
	"testing"
	"time"

	"github.com/campflow/camp-registration-api/internal/adapters/contracttest"
	clockport "github.com/campflow/camp-registration-api/internal/ports/out/clock"
	idempotencyport "github.com/campflow/camp-registration-api/internal/ports/out/idempotency"
)

func TestContract_MemoryIdempotencyStore(t *testing.T) {
	t.Run("records", func(t *testing.T) {
		contracttest.RunIdempotencyStore(t, func(t *testing.T) (idempotencyport.Store, func()) {
			return NewStore(), nil
		})
	})
	t.Run("retention", func(t *testing.T) {
		contracttest.RunIdempotencyRetention(t, func(t *testing.T, clk clockport.Clock, retention time.Duration) (idempotencyport.Store, func()) {
			return NewStoreWithOptions(clk, retention), nil
		})
	})
}
