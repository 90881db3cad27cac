package userrepo

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	postgres "github.com/campflow/camp-registration-api/internal/adapters/postgres"
	"github.com/campflow/camp-registration-api/internal/domain"
	"github.com/campflow/camp-registration-api/internal/ports/out/userrepo"
)

// Repo is a Postgres implementation of userrepo.Repository.
// Subjects are scoped by the configured JWT issuer.
type Repo struct {
	pool   *pgxpool.Pool
	issuer string
}

func NewRepo(pool *pgxpool.Pool, jwtIssuer string) *Repo {
	return &Repo{pool: pool, issuer: jwtIssuer}
}

const selectColumns = `
	SELECT
		id,
		subject_sub,
		firstname,
		surname,
		nickname,
		email,
		phone,
		role,
		region,
		line_id,
		food_allergy,
		personal_medical_condition,
		bio,
		title,
		joined_at,
		created_at,
		updated_at
	FROM users
`

func (r *Repo) Create(ctx context.Context, u domain.User) error {
	if r.pool == nil {
		return errors.New("nil postgres pool")
	}
	if u.ID == "" {
		return userrepo.ErrAlreadyExists
	}
	_, err := r.pool.Exec(ctx, `
		INSERT INTO users (
			id,
			subject_iss,
			subject_sub,
			firstname,
			surname,
			nickname,
			email,
			phone,
			role,
			region,
			line_id,
			food_allergy,
			personal_medical_condition,
			bio,
			title,
			joined_at,
			created_at,
			updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18)
	`,
		string(u.ID),
		r.issuer,
		subjectParam(u.Subject),
		u.Firstname,
		u.Surname,
		u.Nickname,
		u.Email,
		u.Phone,
		string(u.Role),
		regionParam(u.Region),
		u.LineID,
		u.FoodAllergy,
		u.PersonalMedicalCondition,
		u.Bio,
		u.Title,
		u.JoinedAt.UTC(),
		u.CreatedAt.UTC(),
		u.UpdatedAt.UTC(),
	)
	if err != nil {
		if pe, ok := postgres.AsPgError(err); ok && pe.Code == postgres.UniqueViolationCode {
			switch pe.ConstraintName {
			case "users_subject_unique":
				return userrepo.ErrSubjectAlreadyBound
			case "users_pkey":
				return userrepo.ErrAlreadyExists
			}
		}
		return err
	}
	return nil
}

func (r *Repo) Update(ctx context.Context, u domain.User) error {
	if r.pool == nil {
		return errors.New("nil postgres pool")
	}

	return pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		var existing pgtype.Text
		err := tx.QueryRow(ctx, `SELECT subject_sub FROM users WHERE id = $1 FOR UPDATE`, string(u.ID)).Scan(&existing)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return userrepo.ErrNotFound
			}
			return err
		}
		// Subject binding is immutable once set.
		if existing.Valid && existing.String != string(u.Subject) {
			return userrepo.ErrSubjectAlreadyBound
		}

		_, err = tx.Exec(ctx, `
			UPDATE users
			SET subject_iss = $2,
			    subject_sub = $3,
			    firstname = $4,
			    surname = $5,
			    nickname = $6,
			    email = $7,
			    phone = $8,
			    role = $9,
			    region = $10,
			    line_id = $11,
			    food_allergy = $12,
			    personal_medical_condition = $13,
			    bio = $14,
			    title = $15,
			    joined_at = $16,
			    updated_at = $17
			WHERE id = $1
		`,
			string(u.ID),
			r.issuer,
			subjectParam(u.Subject),
			u.Firstname,
			u.Surname,
			u.Nickname,
			u.Email,
			u.Phone,
			string(u.Role),
			regionParam(u.Region),
			u.LineID,
			u.FoodAllergy,
			u.PersonalMedicalCondition,
			u.Bio,
			u.Title,
			u.JoinedAt.UTC(),
			u.UpdatedAt.UTC(),
		)
		if err != nil {
			if pe, ok := postgres.AsPgError(err); ok && pe.Code == postgres.UniqueViolationCode && pe.ConstraintName == "users_subject_unique" {
				return userrepo.ErrSubjectAlreadyBound
			}
			return err
		}
		return nil
	})
}

func (r *Repo) GetByID(ctx context.Context, id domain.UserID) (domain.User, error) {
	return r.getOne(ctx, selectColumns+` WHERE id = $1`, string(id))
}

func (r *Repo) GetBySubject(ctx context.Context, subject domain.SubjectID) (domain.User, error) {
	if subject == "" {
		return domain.User{}, userrepo.ErrNotFound
	}
	return r.getOne(ctx, selectColumns+` WHERE subject_iss = $1 AND subject_sub = $2`, r.issuer, string(subject))
}

func (r *Repo) GetByEmail(ctx context.Context, email string) (domain.User, error) {
	email = strings.TrimSpace(email)
	if email == "" {
		return domain.User{}, userrepo.ErrNotFound
	}
	return r.getOne(ctx, selectColumns+` WHERE email <> '' AND lower(email) = lower($1) ORDER BY created_at, id LIMIT 1`, email)
}

func (r *Repo) List(ctx context.Context) ([]domain.User, error) {
	if r.pool == nil {
		return nil, errors.New("nil postgres pool")
	}
	rows, err := r.pool.Query(ctx, selectColumns)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]domain.User, 0)
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, u)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	// Display name falls back across columns, so ordering happens here rather than in SQL.
	domain.SortUsersByDisplayName(out)
	return out, nil
}

func (r *Repo) getOne(ctx context.Context, sql string, args ...any) (domain.User, error) {
	if r.pool == nil {
		return domain.User{}, errors.New("nil postgres pool")
	}
	u, err := scanUser(r.pool.QueryRow(ctx, sql, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.User{}, userrepo.ErrNotFound
		}
		return domain.User{}, err
	}
	return u, nil
}

func scanUser(row pgx.Row) (domain.User, error) {
	var (
		id, firstname, surname, nickname, email, phone, role string
		subject, region                                      pgtype.Text
		lineID, foodAllergy, medical, bio, title             *string
		joinedAt, createdAt, updatedAt                       time.Time
	)
	if err := row.Scan(
		&id,
		&subject,
		&firstname,
		&surname,
		&nickname,
		&email,
		&phone,
		&role,
		&region,
		&lineID,
		&foodAllergy,
		&medical,
		&bio,
		&title,
		&joinedAt,
		&createdAt,
		&updatedAt,
	); err != nil {
		return domain.User{}, err
	}

	u := domain.User{
		ID:                       domain.UserID(id),
		Firstname:                firstname,
		Surname:                  surname,
		Nickname:                 nickname,
		Email:                    email,
		Phone:                    phone,
		Role:                     domain.Role(role),
		LineID:                   lineID,
		FoodAllergy:              foodAllergy,
		PersonalMedicalCondition: medical,
		Bio:                      bio,
		Title:                    title,
		JoinedAt:                 joinedAt.UTC(),
		CreatedAt:                createdAt.UTC(),
		UpdatedAt:                updatedAt.UTC(),
	}
	if subject.Valid {
		u.Subject = domain.SubjectID(subject.String)
	}
	if region.Valid {
		rg := domain.Region(region.String)
		u.Region = &rg
	}
	return u, nil
}

func subjectParam(s domain.SubjectID) pgtype.Text {
	return pgtype.Text{String: string(s), Valid: s != ""}
}

func regionParam(r *domain.Region) pgtype.Text {
	if r == nil {
		return pgtype.Text{}
	}
	return pgtype.Text{String: string(*r), Valid: true}
}
