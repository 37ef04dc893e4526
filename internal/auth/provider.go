package auth

import (
	"context"
	"errors"
)

// IdentityProvider resolves an opaque credential (bearer token) to a user id.
// Implementations return an error wrapping ErrUnauthenticated on failure.
type IdentityProvider interface {
	ResolveCaller(ctx context.Context, credential string) (string, error)
}

// Chain tries each provider in order and returns the first resolved caller.
type Chain []IdentityProvider

func (c Chain) ResolveCaller(ctx context.Context, credential string) (string, error) {
	for _, p := range c {
		userID, err := p.ResolveCaller(ctx, credential)
		if err == nil {
			return userID, nil
		}
		if !errors.Is(err, ErrUnauthenticated) {
			return "", err
		}
	}
	return "", ErrUnauthenticated
}

type callerKey struct{}

// WithCaller returns a context carrying the authenticated user id.
func WithCaller(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, callerKey{}, userID)
}

// CallerFrom returns the authenticated user id or "" when the request is anonymous.
func CallerFrom(ctx context.Context) string {
	id, _ := ctx.Value(callerKey{}).(string)
	return id
}
