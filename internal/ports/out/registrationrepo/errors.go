package registrationrepo

import "errors"

var (
	// ErrNotFound indicates the requested registration does not exist.
	ErrNotFound = errors.New("registration not found")

	// ErrAlreadyExists indicates a registration already exists with the provided ID.
	ErrAlreadyExists = errors.New("registration already exists")

	// ErrAlreadyRegistered indicates a registration already exists for the (user, camp) pair.
	ErrAlreadyRegistered = errors.New("user already registered for camp")
)
