// Package location manages the uploaded locations players guess against.
package location

import (
	"context"
	"errors"
	"math/rand/v2"
	"strings"

	"github.com/go-openapi/strfmt"
	"github.com/rs/zerolog"

	"github.com/Jetrca92/geotagger-backend/internal/core/errs"
	"github.com/Jetrca92/geotagger-backend/internal/model"
	"github.com/Jetrca92/geotagger-backend/internal/store"
)

const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)

type CreateInput struct {
	Latitude  float64
	Longitude float64
	Address   string
	ImageURL  *string
}

type Service struct {
	locations store.Locations
	log       zerolog.Logger
	intn      func(n int) int
}

func NewService(locations store.Locations, log zerolog.Logger) *Service {
	return &Service{
		locations: locations,
		log:       log.With().Str("component", "location").Logger(),
		intn:      rand.IntN,
	}
}

// Create stores a location owned by the caller.
func (s *Service) Create(ctx context.Context, callerID string, in CreateInput) (*model.Location, error) {
	if callerID == "" {
		return nil, errs.NewUnauthenticatedError("login required")
	}
	if err := validateCoordinates(in.Latitude, in.Longitude); err != nil {
		return nil, err
	}
	if strings.TrimSpace(in.Address) == "" {
		return nil, errs.NewValidationError("address", "address is required")
	}
	l, err := s.locations.Create(ctx, &model.Location{
		Latitude:  in.Latitude,
		Longitude: in.Longitude,
		Address:   strings.TrimSpace(in.Address),
		ImageURL:  in.ImageURL,
		OwnerID:   callerID,
	})
	if err != nil {
		s.log.Error().Err(err).Str("ownerID", callerID).Msg("Failed to create location")
		return nil, err
	}
	s.log.Info().Str("locationID", l.ID).Str("ownerID", callerID).Msg("Location created")
	return l, nil
}

// Get implements the lookup the guess orchestrator consumes; it returns
// model.ErrNotFound unchanged so callers can classify it.
func (s *Service) Get(ctx context.Context, locationID string) (*model.Location, error) {
	return s.locations.Get(ctx, locationID)
}

// Find is Get with typed errors for API callers.
func (s *Service) Find(ctx context.Context, locationID string) (*model.Location, error) {
	if !strfmt.IsUUID(locationID) {
		return nil, errs.NewValidationError("locationId", "must be a UUID")
	}
	l, err := s.locations.Get(ctx, locationID)
	if errors.Is(err, model.ErrNotFound) {
		return nil, errs.NewNotFoundError("location", "location not found")
	}
	return l, err
}

// List pages through all locations, newest first.
func (s *Service) List(ctx context.Context, limit, offset int) ([]*model.Location, error) {
	if limit <= 0 {
		limit = DefaultPageSize
	}
	if limit > MaxPageSize {
		limit = MaxPageSize
	}
	if offset < 0 {
		offset = 0
	}
	out, err := s.locations.List(ctx, limit, offset)
	if out == nil && err == nil {
		out = []*model.Location{}
	}
	return out, err
}

func (s *Service) ListByOwner(ctx context.Context, ownerID string) ([]*model.Location, error) {
	if ownerID == "" {
		return nil, errs.NewUnauthenticatedError("login required")
	}
	out, err := s.locations.ListByOwner(ctx, ownerID)
	if out == nil && err == nil {
		out = []*model.Location{}
	}
	return out, err
}

// Random returns a uniformly chosen location.
func (s *Service) Random(ctx context.Context) (*model.Location, error) {
	n, err := s.locations.Count(ctx)
	if err != nil {
		return nil, err
	}
	if n == 0 {
		return nil, errs.NewNotFoundError("location", "no locations yet")
	}
	page, err := s.locations.List(ctx, 1, s.intn(n))
	if err != nil {
		return nil, err
	}
	if len(page) == 0 {
		// Deleted between Count and List.
		return nil, errs.NewNotFoundError("location", "no locations yet")
	}
	return page[0], nil
}

// Update applies a partial edit. Only the owner may edit.
func (s *Service) Update(ctx context.Context, callerID, locationID string, patch model.LocationPatch) (*model.Location, error) {
	if patch.Empty() {
		return nil, errs.NewValidationError("body", "nothing to update")
	}
	if patch.Latitude != nil || patch.Longitude != nil {
		lat, lng := 0.0, 0.0
		if patch.Latitude != nil {
			lat = *patch.Latitude
		}
		if patch.Longitude != nil {
			lng = *patch.Longitude
		}
		if err := validateCoordinates(lat, lng); err != nil {
			return nil, err
		}
	}
	if patch.Address != nil && strings.TrimSpace(*patch.Address) == "" {
		return nil, errs.NewValidationError("address", "address cannot be blank")
	}
	if _, err := s.owned(ctx, callerID, locationID); err != nil {
		return nil, err
	}
	return s.locations.Update(ctx, locationID, patch)
}

// Delete removes the location and, by cascade, its guesses.
func (s *Service) Delete(ctx context.Context, callerID, locationID string) error {
	if _, err := s.owned(ctx, callerID, locationID); err != nil {
		return err
	}
	if err := s.locations.Delete(ctx, locationID); err != nil {
		return err
	}
	s.log.Info().Str("locationID", locationID).Str("ownerID", callerID).Msg("Location deleted")
	return nil
}

func (s *Service) owned(ctx context.Context, callerID, locationID string) (*model.Location, error) {
	if callerID == "" {
		return nil, errs.NewUnauthenticatedError("login required")
	}
	l, err := s.Find(ctx, locationID)
	if err != nil {
		return nil, err
	}
	if l.OwnerID != callerID {
		return nil, errs.NewForbiddenError("only the owner can modify this location")
	}
	return l, nil
}

func validateCoordinates(lat, lng float64) error {
	if lat < -90 || lat > 90 {
		return errs.NewValidationError("latitude", "must be within [-90, 90]")
	}
	if lng < -180 || lng > 180 {
		return errs.NewValidationError("longitude", "must be within [-180, 180]")
	}
	return nil
}
