package auth

import (
	"errors"
	"fmt"
)

var (
	// ErrUnauthenticated is returned when a credential cannot be resolved to a caller.
	ErrUnauthenticated = errors.New("unauthenticated")

	// ErrMissingCredential is returned when the request carries no Authorization header.
	ErrMissingCredential = errors.New("missing Authorization header")

	// ErrMalformedCredential is returned when the Authorization header is not "Bearer <token>".
	ErrMalformedCredential = errors.New("invalid Authorization header format, expected 'Bearer <token>'")

	// ErrTokenExpired wraps ErrUnauthenticated for expired access tokens.
	ErrTokenExpired = fmt.Errorf("%w: token expired", ErrUnauthenticated)
)
