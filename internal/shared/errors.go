package shared

import "errors"

var (
	// ErrNotFound indicates resource not found.
	ErrNotFound = errors.New("not found")
	// ErrInvalidCredentials indicates login failure.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrDuplicateEmail occurs when registering an email already in use.
	ErrDuplicateEmail = errors.New("email already registered")
	// ErrOwnership occurs when an author mutates content it does not own.
	ErrOwnership = errors.New("not the owner of this resource")
)
