package camprepo

import (
	"context"

	"github.com/campflow/camp-registration-api/internal/domain"
)

// Repository provides access to persisted camps.
//
// List returns camps in insertion order. Days are stored and returned in DayNumber order;
// callers are responsible for renumbering before Create/Update.
type Repository interface {
	Create(ctx context.Context, c domain.Camp) error
	Update(ctx context.Context, c domain.Camp) error
	Delete(ctx context.Context, id domain.CampID) error

	GetByID(ctx context.Context, id domain.CampID) (domain.Camp, error)
	List(ctx context.Context) ([]domain.Camp, error)
}
