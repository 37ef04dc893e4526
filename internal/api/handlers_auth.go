package api

import (
	"context"
	"net/http"

	"github.com/Jetrca92/geotagger-backend/internal/api/respond"
	"github.com/Jetrca92/geotagger-backend/internal/auth"
	"github.com/Jetrca92/geotagger-backend/internal/core/account"
	"github.com/Jetrca92/geotagger-backend/internal/model"
)

// Accounts is the account service surface used by the HTTP layer.
type Accounts interface {
	Register(ctx context.Context, in account.RegisterInput) (*model.User, error)
	Login(ctx context.Context, email, password string) (*account.Token, error)
	Me(ctx context.Context, userID string) (*model.User, error)
	UpdateProfile(ctx context.Context, userID string, patch account.ProfilePatch) (*model.User, error)
	UpdatePassword(ctx context.Context, userID, current, next string) error
}

type AuthHandler struct {
	accounts Accounts
}

func NewAuthHandler(accounts Accounts) *AuthHandler { return &AuthHandler{accounts: accounts} }

type registerRequest struct {
	Email     string  `json:"email" validate:"required,email,max=320"`
	Password  string  `json:"password" validate:"required,min=6,max=72"`
	FirstName string  `json:"firstName" validate:"required,max=100"`
	LastName  string  `json:"lastName" validate:"required,max=100"`
	AvatarURL *string `json:"avatarUrl" validate:"omitempty,url"`
}

type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type updateProfileRequest struct {
	Email     *string `json:"email" validate:"omitempty,email,max=320"`
	FirstName *string `json:"firstName" validate:"omitempty,max=100"`
	LastName  *string `json:"lastName" validate:"omitempty,max=100"`
	AvatarURL *string `json:"avatarUrl" validate:"omitempty,url"`
}

type updatePasswordRequest struct {
	CurrentPassword string `json:"currentPassword" validate:"required"`
	NewPassword     string `json:"newPassword" validate:"required,min=6,max=72"`
}

// Register handles POST /api/auth/register
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var in registerRequest
	if err := decodeBody(w, r, &in); err != nil {
		respond.WriteBadRequest(w, err.Error())
		return
	}
	u, err := h.accounts.Register(r.Context(), account.RegisterInput{
		Email:     in.Email,
		Password:  in.Password,
		FirstName: in.FirstName,
		LastName:  in.LastName,
		AvatarURL: in.AvatarURL,
	})
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	respond.WriteJSON(w, http.StatusCreated, u)
}

// Login handles POST /api/auth/login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var in loginRequest
	if err := decodeBody(w, r, &in); err != nil {
		respond.WriteBadRequest(w, err.Error())
		return
	}
	tok, err := h.accounts.Login(r.Context(), in.Email, in.Password)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	respond.WriteJSON(w, http.StatusOK, tok)
}

// Me handles GET /api/users/me
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	u, err := h.accounts.Me(r.Context(), auth.CallerFrom(r.Context()))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	respond.WriteJSON(w, http.StatusOK, u)
}

// UpdateMe handles PATCH /api/users/me
func (h *AuthHandler) UpdateMe(w http.ResponseWriter, r *http.Request) {
	var in updateProfileRequest
	if err := decodeBody(w, r, &in); err != nil {
		respond.WriteBadRequest(w, err.Error())
		return
	}
	u, err := h.accounts.UpdateProfile(r.Context(), auth.CallerFrom(r.Context()), account.ProfilePatch{
		Email:     in.Email,
		FirstName: in.FirstName,
		LastName:  in.LastName,
		AvatarURL: in.AvatarURL,
	})
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	respond.WriteJSON(w, http.StatusOK, u)
}

// UpdatePassword handles PATCH /api/users/me/password
func (h *AuthHandler) UpdatePassword(w http.ResponseWriter, r *http.Request) {
	var in updatePasswordRequest
	if err := decodeBody(w, r, &in); err != nil {
		respond.WriteBadRequest(w, err.Error())
		return
	}
	err := h.accounts.UpdatePassword(r.Context(), auth.CallerFrom(r.Context()), in.CurrentPassword, in.NewPassword)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
