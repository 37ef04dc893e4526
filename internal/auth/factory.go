package auth

import (
	"github.com/Jetrca92/geotagger-backend/internal/config"
)

// NewProvider builds the identity provider for the configuration. Local builds
// with GEOTAGGER_DEV_TOKEN set additionally accept that token for devUserID.
func NewProvider(cfg *config.Config, devUserID string) (*JWTProvider, IdentityProvider, error) {
	jwtp, err := NewJWTProvider(jwtSecret(cfg), cfg.JWTTTL())
	if err != nil {
		return nil, nil, err
	}
	if cfg.BuildTarget == "local" && cfg.DevToken != "" && devUserID != "" {
		return jwtp, Chain{jwtp, NewStaticProvider(map[string]string{cfg.DevToken: devUserID})}, nil
	}
	return jwtp, jwtp, nil
}

// jwtSecret falls back to a fixed development secret outside production;
// ResolveDefaults rejects an empty secret in production.
func jwtSecret(cfg *config.Config) string {
	if cfg.JWTSecret != "" {
		return cfg.JWTSecret
	}
	return "geotagger-development-secret"
}
