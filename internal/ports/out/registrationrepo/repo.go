package registrationrepo

import (
	"context"

	"github.com/campflow/camp-registration-api/internal/domain"
)

// Repository provides access to persisted registrations.
//
// Create is an atomic insert-if-absent on (UserID, CampID): when a registration for the pair
// already exists it returns ErrAlreadyRegistered and stores nothing.
// List methods return registrations in insertion order.
type Repository interface {
	Create(ctx context.Context, r domain.Registration) error
	Update(ctx context.Context, r domain.Registration) error

	// DeleteByCamp removes every registration for the camp and reports how many were removed.
	DeleteByCamp(ctx context.Context, campID domain.CampID) (int, error)

	GetByID(ctx context.Context, id domain.RegistrationID) (domain.Registration, error)
	GetByCampAndUser(ctx context.Context, campID domain.CampID, userID domain.UserID) (domain.Registration, error)

	List(ctx context.Context) ([]domain.Registration, error)
	ListByCamp(ctx context.Context, campID domain.CampID) ([]domain.Registration, error)
	ListByUser(ctx context.Context, userID domain.UserID) ([]domain.Registration, error)
}
