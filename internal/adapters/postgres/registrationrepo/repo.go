package registrationrepo

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	postgres "github.com/campflow/camp-registration-api/internal/adapters/postgres"
	"github.com/campflow/camp-registration-api/internal/domain"
	"github.com/campflow/camp-registration-api/internal/ports/out/registrationrepo"
)

// Repo is a Postgres implementation of registrationrepo.Repository.
// Pair uniqueness is enforced by the registrations_user_camp_unique constraint.
type Repo struct {
	pool *pgxpool.Pool
}

func NewRepo(pool *pgxpool.Pool) *Repo {
	return &Repo{pool: pool}
}

const selectColumns = `SELECT id, user_id, camp_id, day_availability, registration_date FROM registrations`

func (r *Repo) Create(ctx context.Context, reg domain.Registration) error {
	if r.pool == nil {
		return errors.New("nil postgres pool")
	}
	if reg.ID == "" {
		return registrationrepo.ErrAlreadyExists
	}
	_, err := r.pool.Exec(ctx, `
		INSERT INTO registrations (id, user_id, camp_id, day_availability, registration_date)
		VALUES ($1, $2, $3, $4, $5)
	`,
		string(reg.ID),
		string(reg.UserID),
		string(reg.CampID),
		availabilityParam(reg.DayAvailability),
		reg.RegistrationDate.UTC(),
	)
	if err != nil {
		if pe, ok := postgres.AsPgError(err); ok && pe.Code == postgres.UniqueViolationCode {
			switch pe.ConstraintName {
			case "registrations_user_camp_unique":
				return registrationrepo.ErrAlreadyRegistered
			case "registrations_pkey":
				return registrationrepo.ErrAlreadyExists
			}
		}
		return err
	}
	return nil
}

func (r *Repo) Update(ctx context.Context, reg domain.Registration) error {
	if r.pool == nil {
		return errors.New("nil postgres pool")
	}
	ct, err := r.pool.Exec(ctx, `
		UPDATE registrations SET day_availability = $2 WHERE id = $1
	`, string(reg.ID), availabilityParam(reg.DayAvailability))
	if err != nil {
		return err
	}
	if ct.RowsAffected() == 0 {
		return registrationrepo.ErrNotFound
	}
	return nil
}

func (r *Repo) DeleteByCamp(ctx context.Context, campID domain.CampID) (int, error) {
	if r.pool == nil {
		return 0, errors.New("nil postgres pool")
	}
	ct, err := r.pool.Exec(ctx, `DELETE FROM registrations WHERE camp_id = $1`, string(campID))
	if err != nil {
		return 0, err
	}
	return int(ct.RowsAffected()), nil
}

func (r *Repo) GetByID(ctx context.Context, id domain.RegistrationID) (domain.Registration, error) {
	return r.getOne(ctx, selectColumns+` WHERE id = $1`, string(id))
}

func (r *Repo) GetByCampAndUser(ctx context.Context, campID domain.CampID, userID domain.UserID) (domain.Registration, error) {
	return r.getOne(ctx, selectColumns+` WHERE camp_id = $1 AND user_id = $2`, string(campID), string(userID))
}

func (r *Repo) List(ctx context.Context) ([]domain.Registration, error) {
	return r.list(ctx, selectColumns+` ORDER BY seq ASC`)
}

func (r *Repo) ListByCamp(ctx context.Context, campID domain.CampID) ([]domain.Registration, error) {
	return r.list(ctx, selectColumns+` WHERE camp_id = $1 ORDER BY seq ASC`, string(campID))
}

func (r *Repo) ListByUser(ctx context.Context, userID domain.UserID) ([]domain.Registration, error) {
	return r.list(ctx, selectColumns+` WHERE user_id = $1 ORDER BY seq ASC`, string(userID))
}

func (r *Repo) getOne(ctx context.Context, sql string, args ...any) (domain.Registration, error) {
	if r.pool == nil {
		return domain.Registration{}, errors.New("nil postgres pool")
	}
	reg, err := scanRegistration(r.pool.QueryRow(ctx, sql, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Registration{}, registrationrepo.ErrNotFound
		}
		return domain.Registration{}, err
	}
	return reg, nil
}

func (r *Repo) list(ctx context.Context, sql string, args ...any) ([]domain.Registration, error) {
	if r.pool == nil {
		return nil, errors.New("nil postgres pool")
	}
	rows, err := r.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]domain.Registration, 0)
	for rows.Next() {
		reg, err := scanRegistration(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, reg)
	}
	return out, rows.Err()
}

func scanRegistration(row pgx.Row) (domain.Registration, error) {
	var (
		id, userID, campID string
		avail              map[domain.CampDayID]bool
		registeredAt       time.Time
	)
	if err := row.Scan(&id, &userID, &campID, &avail, &registeredAt); err != nil {
		return domain.Registration{}, err
	}
	if avail == nil {
		avail = map[domain.CampDayID]bool{}
	}
	return domain.Registration{
		ID:               domain.RegistrationID(id),
		UserID:           domain.UserID(userID),
		CampID:           domain.CampID(campID),
		DayAvailability:  avail,
		RegistrationDate: registeredAt.UTC(),
	}, nil
}

// availabilityParam never encodes JSON null, which the NOT NULL column rejects.
func availabilityParam(m map[domain.CampDayID]bool) map[domain.CampDayID]bool {
	if m == nil {
		return map[domain.CampDayID]bool{}
	}
	return m
}
