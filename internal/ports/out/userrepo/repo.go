package userrepo

import (
	"context"

	"github.com/campflow/camp-registration-api/internal/domain"
)

// Repository provides access to persisted users.
//
// Result ordering expectations:
// - List returns users ordered by display name ascending (ties broken by ID) to keep behavior deterministic.
//
// Users without a Subject (e.g. seeded directory entries) are allowed; a non-empty Subject binds
// to at most one user.
type Repository interface {
	Create(ctx context.Context, u domain.User) error
	Update(ctx context.Context, u domain.User) error

	GetByID(ctx context.Context, id domain.UserID) (domain.User, error)
	GetBySubject(ctx context.Context, subject domain.SubjectID) (domain.User, error)
	// GetByEmail matches case-insensitively.
	GetByEmail(ctx context.Context, email string) (domain.User, error)

	List(ctx context.Context) ([]domain.User, error)
}
