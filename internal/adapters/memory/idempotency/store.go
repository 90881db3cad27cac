package idempotency

import (
	"context"
	"sync"
	"time"

	platformclock "github.com/campflow/camp-registration-api/internal/platform/clock"
	clockport "github.com/campflow/camp-registration-api/internal/ports/out/clock"
	"github.com/campflow/camp-registration-api/internal/ports/out/idempotency"
)

// Store is an in-memory implementation of idempotency.Store.
// It is safe for concurrent use. Expired records are dropped lazily on Put.
type Store struct {
	mu sync.RWMutex
	m  map[idempotency.Fingerprint]idempotency.Record

	clk       clockport.Clock
	retention time.Duration
}

func NewStore() *Store {
	return NewStoreWithOptions(nil, idempotency.DefaultRetention)
}

// NewStoreWithOptions uses clk (system time when nil) to expire records older than retention.
// A non-positive retention keeps records forever.
func NewStoreWithOptions(clk clockport.Clock, retention time.Duration) *Store {
	return &Store{
		m:         make(map[idempotency.Fingerprint]idempotency.Record),
		clk:       platformclock.OrSystem(clk),
		retention: retention,
	}
}

func (s *Store) Get(ctx context.Context, fp idempotency.Fingerprint) (idempotency.Record, bool, error) {
	_ = ctx
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.m[fp]
	if !ok || s.expired(rec) {
		return idempotency.Record{}, false, nil
	}
	rec.Body = append([]byte(nil), rec.Body...)
	return rec, true, nil
}

func (s *Store) Put(ctx context.Context, fp idempotency.Fingerprint, rec idempotency.Record) error {
	_ = ctx
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = s.clk.Now()
	}
	rec.Body = append([]byte(nil), rec.Body...)

	s.mu.Lock()
	defer s.mu.Unlock()
	for k, v := range s.m {
		if s.expired(v) {
			delete(s.m, k)
		}
	}
	s.m[fp] = rec
	return nil
}

func (s *Store) expired(rec idempotency.Record) bool {
	return s.retention > 0 && s.clk.Now().Sub(rec.CreatedAt) > s.retention
}
