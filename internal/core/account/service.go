// Package account registers users and issues access tokens.
package account

import (
	"context"
	"errors"
	"net/mail"
	"strings"

	"github.com/rs/zerolog"

	"github.com/Jetrca92/geotagger-backend/internal/auth"
	"github.com/Jetrca92/geotagger-backend/internal/core/errs"
	"github.com/Jetrca92/geotagger-backend/internal/model"
	"github.com/Jetrca92/geotagger-backend/internal/store"
)

const MinPasswordLength = 6

// TokenIssuer signs access tokens for authenticated users.
type TokenIssuer interface {
	Issue(userID, email string) (string, error)
}

type RegisterInput struct {
	Email     string
	Password  string
	FirstName string
	LastName  string
	AvatarURL *string
}

// ProfilePatch holds the profile fields a user may change; nil fields are kept.
type ProfilePatch struct {
	Email     *string
	FirstName *string
	LastName  *string
	AvatarURL *string
}

type Token struct {
	AccessToken string `json:"accessToken"`
}

type Service struct {
	users         store.Users
	tokens        TokenIssuer
	initialPoints int
	log           zerolog.Logger
}

func NewService(users store.Users, tokens TokenIssuer, initialPoints int, log zerolog.Logger) *Service {
	return &Service{
		users:         users,
		tokens:        tokens,
		initialPoints: initialPoints,
		log:           log.With().Str("component", "account").Logger(),
	}
}

// Register creates a user holding the initial points grant.
func (s *Service) Register(ctx context.Context, in RegisterInput) (*model.User, error) {
	email := normalizeEmail(in.Email)
	if _, err := mail.ParseAddress(email); err != nil || email == "" {
		return nil, errs.NewValidationError("email", "invalid email")
	}
	if len(in.Password) < MinPasswordLength {
		return nil, errs.NewValidationError("password", "password must be at least 6 characters")
	}
	if strings.TrimSpace(in.FirstName) == "" || strings.TrimSpace(in.LastName) == "" {
		return nil, errs.NewValidationError("name", "first and last name are required")
	}

	hash, err := auth.HashPassword(in.Password)
	if err != nil {
		return nil, err
	}

	u, err := s.users.Create(ctx, &model.User{
		Email:     email,
		FirstName: strings.TrimSpace(in.FirstName),
		LastName:  strings.TrimSpace(in.LastName),
		Points:    s.initialPoints,
		AvatarURL: in.AvatarURL,
	}, hash)
	if err != nil {
		if errors.Is(err, model.ErrConflict) {
			return nil, errs.NewConflictError("email", "email already registered")
		}
		s.log.Error().Err(err).Str("email", email).Msg("Failed to create user")
		return nil, err
	}
	s.log.Info().Str("userID", u.ID).Int("points", u.Points).Msg("User registered")
	return u, nil
}

// Login checks credentials and returns a signed access token.
func (s *Service) Login(ctx context.Context, email, password string) (*Token, error) {
	email = normalizeEmail(email)
	if email == "" || password == "" {
		return nil, errs.NewValidationError("credentials", "email and password are required")
	}
	u, hash, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			return nil, errs.NewNotFoundError("email", "no user with this email")
		}
		return nil, err
	}
	if err := auth.CheckPassword(hash, password); err != nil {
		if errors.Is(err, auth.ErrPasswordMismatch) {
			return nil, errs.NewValidationError("password", "invalid credentials")
		}
		return nil, err
	}
	tok, err := s.tokens.Issue(u.ID, u.Email)
	if err != nil {
		return nil, err
	}
	return &Token{AccessToken: tok}, nil
}

// Me returns the caller's profile including the current balance.
func (s *Service) Me(ctx context.Context, userID string) (*model.User, error) {
	if userID == "" {
		return nil, errs.NewUnauthenticatedError("login required")
	}
	u, err := s.users.Get(ctx, userID)
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			return nil, errs.NewNotFoundError("user", "user not found")
		}
		return nil, err
	}
	return u, nil
}

// UpdateProfile edits the caller's name, email or avatar. Points are never touched.
func (s *Service) UpdateProfile(ctx context.Context, userID string, in ProfilePatch) (*model.User, error) {
	if userID == "" {
		return nil, errs.NewUnauthenticatedError("login required")
	}
	var patch model.UserPatch
	if in.Email != nil {
		email := normalizeEmail(*in.Email)
		if _, err := mail.ParseAddress(email); err != nil || email == "" {
			return nil, errs.NewValidationError("email", "invalid email")
		}
		patch.Email = &email
	}
	for _, f := range []struct {
		name string
		in   *string
		out  **string
	}{
		{"firstName", in.FirstName, &patch.FirstName},
		{"lastName", in.LastName, &patch.LastName},
	} {
		if f.in == nil {
			continue
		}
		v := strings.TrimSpace(*f.in)
		if v == "" {
			return nil, errs.NewValidationError(f.name, f.name+" cannot be empty")
		}
		*f.out = &v
	}
	patch.AvatarURL = in.AvatarURL
	if patch.Empty() {
		return nil, errs.NewValidationError("body", "nothing to update")
	}

	u, err := s.users.Update(ctx, userID, patch)
	if err != nil {
		switch {
		case errors.Is(err, model.ErrConflict):
			return nil, errs.NewConflictError("email", "email already registered")
		case errors.Is(err, model.ErrNotFound):
			return nil, errs.NewNotFoundError("user", "user not found")
		}
		s.log.Error().Err(err).Str("userID", userID).Msg("Failed to update profile")
		return nil, err
	}
	s.log.Info().Str("userID", userID).Msg("Profile updated")
	return u, nil
}

// UpdatePassword replaces the caller's password after checking the current one.
// The new password must differ from the current one.
func (s *Service) UpdatePassword(ctx context.Context, userID, current, next string) error {
	if userID == "" {
		return errs.NewUnauthenticatedError("login required")
	}
	if len(next) < MinPasswordLength {
		return errs.NewValidationError("newPassword", "password must be at least 6 characters")
	}
	if next == current {
		return errs.NewValidationError("newPassword", "new password must differ from the current one")
	}
	hash, err := s.users.PasswordHash(ctx, userID)
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			return errs.NewNotFoundError("user", "user not found")
		}
		return err
	}
	if err := auth.CheckPassword(hash, current); err != nil {
		if errors.Is(err, auth.ErrPasswordMismatch) {
			return errs.NewValidationError("currentPassword", "current password is incorrect")
		}
		return err
	}
	newHash, err := auth.HashPassword(next)
	if err != nil {
		return err
	}
	if err := s.users.SetPasswordHash(ctx, userID, newHash); err != nil {
		if errors.Is(err, model.ErrNotFound) {
			return errs.NewNotFoundError("user", "user not found")
		}
		return err
	}
	s.log.Info().Str("userID", userID).Msg("Password changed")
	return nil
}

// EnsureUser returns the user with email, registering it when missing. Used
// to provision the local development account.
func (s *Service) EnsureUser(ctx context.Context, in RegisterInput) (*model.User, error) {
	u, _, err := s.users.GetByEmail(ctx, normalizeEmail(in.Email))
	if err == nil {
		return u, nil
	}
	if !errors.Is(err, model.ErrNotFound) {
		return nil, err
	}
	return s.Register(ctx, in)
}

func normalizeEmail(e string) string { return strings.ToLower(strings.TrimSpace(e)) }
