package idempotency

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	platformclock "github.com/campflow/camp-registration-api/internal/platform/clock"
	clockport "github.com/campflow/camp-registration-api/internal/ports/out/clock"
	"github.com/campflow/camp-registration-api/internal/ports/out/idempotency"
)

// Store is a Postgres implementation of idempotency.Store.
// Records older than the retention window are ignored on read and purged on write.
type Store struct {
	pool      *pgxpool.Pool
	issuer    string
	clk       clockport.Clock
	retention time.Duration
}

func NewStore(pool *pgxpool.Pool, jwtIssuer string) *Store {
	return NewStoreWithOptions(pool, jwtIssuer, nil, idempotency.DefaultRetention)
}

func NewStoreWithOptions(pool *pgxpool.Pool, jwtIssuer string, clk clockport.Clock, retention time.Duration) *Store {
	if retention <= 0 {
		retention = idempotency.DefaultRetention
	}
	return &Store{pool: pool, issuer: jwtIssuer, clk: platformclock.OrSystem(clk), retention: retention}
}

func (s *Store) Get(ctx context.Context, fp idempotency.Fingerprint) (idempotency.Record, bool, error) {
	if s.pool == nil {
		return idempotency.Record{}, false, errors.New("nil postgres pool")
	}
	row := s.pool.QueryRow(ctx, `
		SELECT status_code, content_type, body, created_at
		FROM idempotency_keys
		WHERE idempotency_key = $1
		  AND subject_iss = $2
		  AND subject_sub = $3
		  AND method = $4
		  AND route = $5
		  AND body_hash = $6
		  AND created_at > $7
	`,
		string(fp.Key),
		s.issuer,
		string(fp.Subject),
		fp.Method,
		fp.Route,
		fp.BodyHash,
		s.cutoff(),
	)
	var rec idempotency.Record
	if err := row.Scan(&rec.StatusCode, &rec.ContentType, &rec.Body, &rec.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return idempotency.Record{}, false, nil
		}
		return idempotency.Record{}, false, err
	}
	rec.CreatedAt = rec.CreatedAt.UTC()
	return rec, true, nil
}

func (s *Store) Put(ctx context.Context, fp idempotency.Fingerprint, rec idempotency.Record) error {
	if s.pool == nil {
		return errors.New("nil postgres pool")
	}
	createdAt := rec.CreatedAt
	if createdAt.IsZero() {
		createdAt = s.clk.Now()
	}
	body := rec.Body
	if body == nil {
		body = []byte{}
	}

	return pgx.BeginFunc(ctx, s.pool, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, `DELETE FROM idempotency_keys WHERE created_at <= $1`, s.cutoff()); err != nil {
			return err
		}
		_, err := tx.Exec(ctx, `
			INSERT INTO idempotency_keys (
				idempotency_key,
				subject_iss,
				subject_sub,
				method,
				route,
				body_hash,
				status_code,
				content_type,
				body,
				created_at
			) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)
			ON CONFLICT (idempotency_key, subject_iss, subject_sub, method, route, body_hash)
			DO UPDATE SET
				status_code = EXCLUDED.status_code,
				content_type = EXCLUDED.content_type,
				body = EXCLUDED.body,
				created_at = EXCLUDED.created_at
		`,
			string(fp.Key),
			s.issuer,
			string(fp.Subject),
			fp.Method,
			fp.Route,
			fp.BodyHash,
			rec.StatusCode,
			rec.ContentType,
			body,
			createdAt.UTC(),
		)
		return err
	})
}

func (s *Store) cutoff() time.Time {
	return s.clk.Now().Add(-s.retention).UTC()
}
