package idempotency

import (
	"context"
	"testing"
	"time"

	memclock "github.com/campflow/camp-registration-api/internal/adapters/memory/clock"
	"github.com/campflow/camp-registration-api/internal/domain"
	"github.com/campflow/camp-registration-api/internal/ports/out/idempotency"
)

func TestStore_PutThenGet(t *testing.T) {
	t.Parallel()

	s := NewStore()
	fp := idempotency.Fingerprint{
		Key:      "k1",
		Subject:  domain.SubjectID("sub-1"),
		Method:   "POST",
		Route:    "/camps/{campId}/registration",
		BodyHash: "abc123",
	}
	rec := idempotency.Record{
		StatusCode:  201,
		ContentType: "application/json",
		Body:        []byte(`{"ok":true}`),
		CreatedAt:   time.Now().UTC(),
	}

	if err := s.Put(context.Background(), fp, rec); err != nil {
		t.Fatalf("Put() err=%v", err)
	}

	got, ok, err := s.Get(context.Background(), fp)
	if err != nil {
		t.Fatalf("Get() err=%v", err)
	}
	if !ok {
		t.Fatalf("Get() ok=false, want true")
	}
	if got.StatusCode != rec.StatusCode || got.ContentType != rec.ContentType || string(got.Body) != string(rec.Body) {
		t.Fatalf("Get()=%+v, want %+v", got, rec)
	}
}

func TestStore_ExpiredRecordIsAbsent(t *testing.T) {
	t.Parallel()

	clk := memclock.NewManualClock(time.Unix(1000, 0).UTC())
	s := NewStoreWithOptions(clk, time.Hour)
	fp := idempotency.Fingerprint{Key: "k1", Subject: "sub-1", Method: "POST", Route: "/camps"}

	if err := s.Put(context.Background(), fp, idempotency.Record{StatusCode: 201, Body: []byte("x")}); err != nil {
		t.Fatalf("Put() err=%v", err)
	}
	clk.Advance(59 * time.Minute)
	if _, ok, _ := s.Get(context.Background(), fp); !ok {
		t.Fatalf("expected record within retention")
	}
	clk.Advance(2 * time.Minute)
	if _, ok, _ := s.Get(context.Background(), fp); ok {
		t.Fatalf("expected record to expire after retention")
	}
}
