package camprepo

import "errors"

var (
	// ErrNotFound indicates the requested camp does not exist.
	ErrNotFound = errors.New("camp not found")

	// ErrAlreadyExists indicates a camp already exists with the provided ID.
	ErrAlreadyExists = errors.New("camp already exists")
)
