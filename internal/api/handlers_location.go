package api

import (
	"context"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/Jetrca92/geotagger-backend/internal/api/respond"
	"github.com/Jetrca92/geotagger-backend/internal/api/validate"
	"github.com/Jetrca92/geotagger-backend/internal/auth"
	"github.com/Jetrca92/geotagger-backend/internal/core/location"
	"github.com/Jetrca92/geotagger-backend/internal/model"
)

type Locations interface {
	Create(ctx context.Context, callerID string, in location.CreateInput) (*model.Location, error)
	Find(ctx context.Context, locationID string) (*model.Location, error)
	List(ctx context.Context, limit, offset int) ([]*model.Location, error)
	ListByOwner(ctx context.Context, ownerID string) ([]*model.Location, error)
	Random(ctx context.Context) (*model.Location, error)
	Update(ctx context.Context, callerID, locationID string, patch model.LocationPatch) (*model.Location, error)
	Delete(ctx context.Context, callerID, locationID string) error
}

type LocationHandler struct {
	locations Locations
}

func NewLocationHandler(locations Locations) *LocationHandler {
	return &LocationHandler{locations: locations}
}

type createLocationRequest struct {
	Latitude  *float64 `json:"latitude" validate:"required,min=-90,max=90"`
	Longitude *float64 `json:"longitude" validate:"required,min=-180,max=180"`
	Address   string   `json:"address" validate:"required,max=255"`
	ImageURL  *string  `json:"imageUrl" validate:"omitempty,url"`
}

type updateLocationRequest struct {
	Latitude  *float64 `json:"latitude" validate:"omitempty,min=-90,max=90"`
	Longitude *float64 `json:"longitude" validate:"omitempty,min=-180,max=180"`
	Address   *string  `json:"address" validate:"omitempty,max=255"`
	ImageURL  *string  `json:"imageUrl" validate:"omitempty,url"`
}

// Create handles POST /api/locations
func (h *LocationHandler) Create(w http.ResponseWriter, r *http.Request) {
	var in createLocationRequest
	if err := decodeBody(w, r, &in); err != nil {
		respond.WriteBadRequest(w, err.Error())
		return
	}
	l, err := h.locations.Create(r.Context(), auth.CallerFrom(r.Context()), location.CreateInput{
		Latitude:  *in.Latitude,
		Longitude: *in.Longitude,
		Address:   in.Address,
		ImageURL:  in.ImageURL,
	})
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	respond.WriteJSON(w, http.StatusCreated, l)
}

// Get handles GET /api/locations/{locationId}
func (h *LocationHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["locationId"]
	if err := validate.UUID("locationId", id); err != nil {
		respond.WriteBadRequest(w, err.Error())
		return
	}
	l, err := h.locations.Find(r.Context(), id)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	respond.WriteJSON(w, http.StatusOK, l)
}

// List handles GET /api/locations?limit&offset
func (h *LocationHandler) List(w http.ResponseWriter, r *http.Request) {
	limit, err := queryInt(r, "limit", 0)
	if err != nil {
		respond.WriteBadRequest(w, err.Error())
		return
	}
	offset, err := queryInt(r, "offset", 0)
	if err != nil {
		respond.WriteBadRequest(w, err.Error())
		return
	}
	out, err := h.locations.List(r.Context(), limit, offset)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	respond.WriteJSON(w, http.StatusOK, out)
}

// Mine handles GET /api/locations/mine
func (h *LocationHandler) Mine(w http.ResponseWriter, r *http.Request) {
	out, err := h.locations.ListByOwner(r.Context(), auth.CallerFrom(r.Context()))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	respond.WriteJSON(w, http.StatusOK, out)
}

// Random handles GET /api/locations/random
func (h *LocationHandler) Random(w http.ResponseWriter, r *http.Request) {
	l, err := h.locations.Random(r.Context())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	respond.WriteJSON(w, http.StatusOK, l)
}

// Update handles PATCH /api/locations/{locationId}
func (h *LocationHandler) Update(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["locationId"]
	if err := validate.UUID("locationId", id); err != nil {
		respond.WriteBadRequest(w, err.Error())
		return
	}
	var in updateLocationRequest
	if err := decodeBody(w, r, &in); err != nil {
		respond.WriteBadRequest(w, err.Error())
		return
	}
	if in.Address != nil {
		if err := validate.NonEmpty("address", *in.Address); err != nil {
			respond.WriteBadRequest(w, err.Error())
			return
		}
	}
	l, err := h.locations.Update(r.Context(), auth.CallerFrom(r.Context()), id, model.LocationPatch{
		Latitude:  in.Latitude,
		Longitude: in.Longitude,
		Address:   in.Address,
		ImageURL:  in.ImageURL,
	})
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	respond.WriteJSON(w, http.StatusOK, l)
}

// Delete handles DELETE /api/locations/{locationId}
func (h *LocationHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["locationId"]
	if err := validate.UUID("locationId", id); err != nil {
		respond.WriteBadRequest(w, err.Error())
		return
	}
	if err := h.locations.Delete(r.Context(), auth.CallerFrom(r.Context()), id); err != nil {
		writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
