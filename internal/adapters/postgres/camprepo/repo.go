package camprepo

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	postgres "github.com/campflow/camp-registration-api/internal/adapters/postgres"
	"github.com/campflow/camp-registration-api/internal/domain"
	"github.com/campflow/camp-registration-api/internal/ports/out/camprepo"
)

// Repo is a Postgres implementation of camprepo.Repository.
// Days live in camp_days and are rewritten wholesale on every Update.
type Repo struct {
	pool *pgxpool.Pool
}

func NewRepo(pool *pgxpool.Pool) *Repo {
	return &Repo{pool: pool}
}

type querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

func (r *Repo) Create(ctx context.Context, c domain.Camp) error {
	if r.pool == nil {
		return errors.New("nil postgres pool")
	}
	if c.ID == "" {
		return camprepo.ErrAlreadyExists
	}

	return pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		_, err := tx.Exec(ctx, `
			INSERT INTO camps (id, name, description, location, start_date, end_date, image_url, owner_id)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		`,
			string(c.ID),
			c.Name,
			c.Description,
			c.Location,
			toDate(c.StartDate),
			toDate(c.EndDate),
			c.ImageURL,
			ownerParam(c.OwnerID),
		)
		if err != nil {
			if pe, ok := postgres.AsPgError(err); ok && pe.Code == postgres.UniqueViolationCode && pe.ConstraintName == "camps_pkey" {
				return camprepo.ErrAlreadyExists
			}
			return err
		}
		return insertDays(ctx, tx, c)
	})
}

func (r *Repo) Update(ctx context.Context, c domain.Camp) error {
	if r.pool == nil {
		return errors.New("nil postgres pool")
	}

	return pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		ct, err := tx.Exec(ctx, `
			UPDATE camps
			SET name = $2,
			    description = $3,
			    location = $4,
			    start_date = $5,
			    end_date = $6,
			    image_url = $7,
			    owner_id = $8
			WHERE id = $1
		`,
			string(c.ID),
			c.Name,
			c.Description,
			c.Location,
			toDate(c.StartDate),
			toDate(c.EndDate),
			c.ImageURL,
			ownerParam(c.OwnerID),
		)
		if err != nil {
			return err
		}
		if ct.RowsAffected() == 0 {
			return camprepo.ErrNotFound
		}
		if _, err := tx.Exec(ctx, `DELETE FROM camp_days WHERE camp_id = $1`, string(c.ID)); err != nil {
			return err
		}
		return insertDays(ctx, tx, c)
	})
}

// Delete removes the camp; its days and registrations go with it through ON DELETE CASCADE.
func (r *Repo) Delete(ctx context.Context, id domain.CampID) error {
	if r.pool == nil {
		return errors.New("nil postgres pool")
	}
	ct, err := r.pool.Exec(ctx, `DELETE FROM camps WHERE id = $1`, string(id))
	if err != nil {
		return err
	}
	if ct.RowsAffected() == 0 {
		return camprepo.ErrNotFound
	}
	return nil
}

func (r *Repo) GetByID(ctx context.Context, id domain.CampID) (domain.Camp, error) {
	if r.pool == nil {
		return domain.Camp{}, errors.New("nil postgres pool")
	}
	row := r.pool.QueryRow(ctx, `
		SELECT id, name, description, location, start_date, end_date, image_url, owner_id
		FROM camps
		WHERE id = $1
	`, string(id))
	c, err := scanCamp(row)
	if err != nil {
		return domain.Camp{}, err
	}

	days, err := listDays(ctx, r.pool, `WHERE camp_id = $1`, string(id))
	if err != nil {
		return domain.Camp{}, err
	}
	if d, ok := days[c.ID]; ok {
		c.Days = d
	}
	return c, nil
}

func (r *Repo) List(ctx context.Context) ([]domain.Camp, error) {
	if r.pool == nil {
		return nil, errors.New("nil postgres pool")
	}
	rows, err := r.pool.Query(ctx, `
		SELECT id, name, description, location, start_date, end_date, image_url, owner_id
		FROM camps
		ORDER BY seq ASC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]domain.Camp, 0)
	for rows.Next() {
		c, err := scanCamp(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	days, err := listDays(ctx, r.pool, ``)
	if err != nil {
		return nil, err
	}
	for i := range out {
		if d, ok := days[out[i].ID]; ok {
			out[i].Days = d
		}
	}
	return out, nil
}

func insertDays(ctx context.Context, tx pgx.Tx, c domain.Camp) error {
	if len(c.Days) == 0 {
		return nil
	}
	batch := &pgx.Batch{}
	for i, d := range c.Days {
		acts := d.Activities
		if acts == nil {
			acts = []string{}
		}
		batch.Queue(`
			INSERT INTO camp_days (camp_id, id, day_number, date, activities)
			VALUES ($1, $2, $3, $4, $5)
		`, string(c.ID), string(d.ID), i+1, toDate(d.Date), acts)
	}
	return tx.SendBatch(ctx, batch).Close()
}

func listDays(ctx context.Context, q querier, where string, args ...any) (map[domain.CampID][]domain.CampDay, error) {
	rows, err := q.Query(ctx, `
		SELECT camp_id, id, day_number, date, activities
		FROM camp_days
		`+where+`
		ORDER BY camp_id, day_number ASC
	`, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make(map[domain.CampID][]domain.CampDay)
	for rows.Next() {
		var (
			campID, dayID string
			dayNumber     int
			date          pgtype.Date
			activities    []string
		)
		if err := rows.Scan(&campID, &dayID, &dayNumber, &date, &activities); err != nil {
			return nil, err
		}
		if activities == nil {
			activities = []string{}
		}
		id := domain.CampID(campID)
		out[id] = append(out[id], domain.CampDay{
			ID:         domain.CampDayID(dayID),
			DayNumber:  dayNumber,
			Date:       fromDate(date),
			Activities: activities,
		})
	}
	return out, rows.Err()
}

func scanCamp(row pgx.Row) (domain.Camp, error) {
	var (
		id, name, description, location, imageURL string
		start, end                                pgtype.Date
		owner                                     pgtype.Text
	)
	if err := row.Scan(&id, &name, &description, &location, &start, &end, &imageURL, &owner); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Camp{}, camprepo.ErrNotFound
		}
		return domain.Camp{}, err
	}
	c := domain.Camp{
		ID:          domain.CampID(id),
		Name:        name,
		Description: description,
		Location:    location,
		StartDate:   fromDate(start),
		EndDate:     fromDate(end),
		ImageURL:    imageURL,
		Days:        []domain.CampDay{},
	}
	if owner.Valid {
		c.OwnerID = domain.UserID(owner.String)
	}
	return c, nil
}

func toDate(t time.Time) pgtype.Date {
	return pgtype.Date{Time: domain.DateOnly(t), Valid: !t.IsZero()}
}

func fromDate(d pgtype.Date) time.Time {
	if !d.Valid {
		return time.Time{}
	}
	return domain.DateOnly(d.Time)
}

func ownerParam(id domain.UserID) pgtype.Text {
	return pgtype.Text{String: string(id), Valid: id != ""}
}
