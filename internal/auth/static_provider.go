package auth

import (
	"context"
	"fmt"
)

// StaticProvider maps fixed bearer tokens to user ids. Used for local
// development (GEOTAGGER_DEV_TOKEN) and tests.
type StaticProvider struct {
	tokens map[string]string
}

// NewStaticProvider creates a provider from a token → user id map.
func NewStaticProvider(tokens map[string]string) *StaticProvider {
	cp := make(map[string]string, len(tokens))
	for k, v := range tokens {
		cp[k] = v
	}
	return &StaticProvider{tokens: cp}
}

func (s *StaticProvider) ResolveCaller(_ context.Context, credential string) (string, error) {
	if credential == "" {
		return "", ErrUnauthenticated
	}
	userID, ok := s.tokens[credential]
	if !ok {
		return "", fmt.Errorf("%w: unknown static token", ErrUnauthenticated)
	}
	return userID, nil
}
