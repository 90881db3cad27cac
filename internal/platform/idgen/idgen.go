// Package idgen generates prefixed, time-ordered identifiers for new entities.
package idgen

import (
	"github.com/google/uuid"

	"github.com/campflow/camp-registration-api/internal/domain"
)

// New returns prefix + "-" + a UUIDv7. UUIDv7 sorts by creation time, which keeps
// ids roughly aligned with insertion order.
func New(prefix string) string {
	id, err := uuid.NewV7()
	if err != nil {
		id = uuid.New()
	}
	return prefix + "-" + id.String()
}

func CampID() domain.CampID                 { return domain.CampID(New("camp")) }
func CampDayID() domain.CampDayID           { return domain.CampDayID(New("day")) }
func RegistrationID() domain.RegistrationID { return domain.RegistrationID(New("reg")) }
func UserID() domain.UserID                 { return domain.UserID(New("user")) }
