package camps

import (
	"time"

	"github.com/campflow/camp-registration-api/internal/domain"
)

// Optional is a tri-state field used to distinguish:
// - unspecified (omitted)
// - specified as null
// - specified with a value
type Optional[T any] struct {
	specified bool
	isNull    bool
	value     T
}

func Unspecified[T any]() Optional[T] { return Optional[T]{} }
func Null[T any]() Optional[T]        { return Optional[T]{specified: true, isNull: true} }
func Some[T any](v T) Optional[T]     { return Optional[T]{specified: true, value: v} }

func (o Optional[T]) IsSpecified() bool { return o.specified }
func (o Optional[T]) IsNull() bool      { return o.specified && o.isNull }
func (o Optional[T]) Value() T          { return o.value }

// DayInput describes one day when creating a camp or replacing its schedule.
// An empty ID asks the service to generate one; DayNumber is always derived from position.
type DayInput struct {
	ID         domain.CampDayID
	Date       time.Time
	Activities []string
}

type CreateCampInput struct {
	Name        string
	Description string
	Location    string
	StartDate   time.Time
	EndDate     time.Time
	ImageURL    string
	Days        []DayInput

	// OwnerID defaults to the caller when empty.
	OwnerID domain.UserID
}

// UpdateCampInput is a shallow patch. Days, when specified, replaces the whole schedule.
type UpdateCampInput struct {
	// Name cannot be null.
	Name        Optional[string]
	Description Optional[string]
	Location    Optional[string]
	// StartDate and EndDate cannot be null.
	StartDate Optional[time.Time]
	EndDate   Optional[time.Time]
	ImageURL  Optional[string]

	Days Optional[[]DayInput] // null clears the schedule

	OwnerID Optional[domain.UserID] // null makes the camp editable by any admin
}
