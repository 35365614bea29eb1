package repository

import "errors"

var (
	// ErrNotFound is returned when a record does not exist.
	ErrNotFound = errors.New("not found")
	// ErrEmailExists is returned when a user insert hits the unique email index.
	ErrEmailExists = errors.New("email already in use")
)
