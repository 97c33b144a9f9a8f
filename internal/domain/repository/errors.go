package repository

import "errors"

var (
	// ErrNotFound is returned when the requested record does not exist.
	ErrNotFound = errors.New("not found")
	// ErrDenied is returned by a verifier that reports the user does not own the product.
	ErrDenied = errors.New("denied")
	// ErrUnavailable marks transport failures and non-success responses from a remote source.
	ErrUnavailable = errors.New("unavailable")
)
