package api

import (
	"context"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/Jetrca92/geotagger-backend/internal/api/respond"
	"github.com/Jetrca92/geotagger-backend/internal/auth"
	"github.com/Jetrca92/geotagger-backend/internal/core/guess"
	"github.com/Jetrca92/geotagger-backend/internal/model"
)

type Guesses interface {
	SubmitGuess(ctx context.Context, callerID, locationID string, in guess.Submission) (*model.Guess, error)
	TopGuesses(ctx context.Context, locationID string, limit int) ([]*model.Guess, error)
	HistoryFor(ctx context.Context, userID string) ([]*model.Guess, error)
}

type GuessHandler struct {
	guesses Guesses
}

func NewGuessHandler(guesses Guesses) *GuessHandler { return &GuessHandler{guesses: guesses} }

type submitGuessRequest struct {
	Latitude  *float64 `json:"latitude" validate:"required,min=-90,max=90"`
	Longitude *float64 `json:"longitude" validate:"required,min=-180,max=180"`
	Address   string   `json:"address" validate:"max=255"`
}

// Submit handles POST /api/locations/{locationId}/guesses. The orchestrator
// validates the location id itself so malformed ids map to INVALID_REQUEST.
func (h *GuessHandler) Submit(w http.ResponseWriter, r *http.Request) {
	var in submitGuessRequest
	if err := decodeBody(w, r, &in); err != nil {
		respond.WriteBadRequest(w, err.Error())
		return
	}
	g, err := h.guesses.SubmitGuess(r.Context(), auth.CallerFrom(r.Context()), mux.Vars(r)["locationId"], guess.Submission{
		Latitude:  *in.Latitude,
		Longitude: *in.Longitude,
		Address:   in.Address,
	})
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	respond.WriteJSON(w, http.StatusCreated, g)
}

// Leaderboard handles GET /api/locations/{locationId}/guesses?limit
func (h *GuessHandler) Leaderboard(w http.ResponseWriter, r *http.Request) {
	limit, err := queryInt(r, "limit", 0)
	if err != nil {
		respond.WriteBadRequest(w, err.Error())
		return
	}
	out, err := h.guesses.TopGuesses(r.Context(), mux.Vars(r)["locationId"], limit)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	respond.WriteJSON(w, http.StatusOK, out)
}

// History handles GET /api/users/me/guesses
func (h *GuessHandler) History(w http.ResponseWriter, r *http.Request) {
	out, err := h.guesses.HistoryFor(r.Context(), auth.CallerFrom(r.Context()))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	respond.WriteJSON(w, http.StatusOK, out)
}
