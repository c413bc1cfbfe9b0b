package domain

import "errors"

var (
	// ErrUnauthenticated is returned when a request carries no usable identity.
	ErrUnauthenticated = errors.New("unauthenticated")
	ErrInvalidToken    = errors.New("invalid token")
	ErrTokenExpired    = errors.New("token expired")

	// ErrUnauthorized is returned for bad login credentials. It is the same
	// error for an unknown email and a wrong password.
	ErrUnauthorized = errors.New("invalid email or password")

	ErrConflict = errors.New("resource already exists")
	ErrNotFound = errors.New("resource not found")

	ErrInvalidCursor = errors.New("invalid cursor")
)
