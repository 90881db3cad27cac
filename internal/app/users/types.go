package users

import "github.com/campflow/camp-registration-api/internal/domain"

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

type ProvisionMeInput struct {
	Firstname string
	Surname   string
	Nickname  string
	Email     string
	Phone     string
	Region    *domain.Region

	LineID                   *string
	FoodAllergy              *string
	PersonalMedicalCondition *string
	Bio                      *string
	Title                    *string
}

// UpdateMeInput patches the caller's own profile. Role is not part of it.
type UpdateMeInput struct {
	Firstname Optional[string] // cannot be null
	Surname   Optional[string]
	Nickname  Optional[string]
	Email     Optional[string] // cannot be null
	Phone     Optional[string]
	Region    Optional[domain.Region]

	LineID                   Optional[string]
	FoodAllergy              Optional[string]
	PersonalMedicalCondition Optional[string]
	Bio                      Optional[string]
	Title                    Optional[string]
}
