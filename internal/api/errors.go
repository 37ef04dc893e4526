package api

import (
	"errors"
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/Jetrca92/geotagger-backend/internal/api/respond"
	"github.com/Jetrca92/geotagger-backend/internal/auth"
	"github.com/Jetrca92/geotagger-backend/internal/core/errs"
	"github.com/Jetrca92/geotagger-backend/internal/core/guess"
	"github.com/Jetrca92/geotagger-backend/internal/model"
)

// retryAfterSeconds is advertised on retryable failures.
const retryAfterSeconds = 2

// writeServiceError maps service errors to HTTP responses.
func writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	if kind := guess.KindOf(err); kind != guess.KindUnknown {
		var ge *guess.Error
		errors.As(err, &ge)
		if kind.Retryable() {
			respond.WriteRetryable(w, kind.HTTPStatus(), kind.Code(), ge.Message, retryAfterSeconds)
			return
		}
		respond.WriteError(w, kind.HTTPStatus(), kind.Code(), ge.Message)
		return
	}

	var (
		ve errs.ValidationError
		ne errs.NotFoundError
		ce errs.ConflictError
		fe errs.ForbiddenError
		ue errs.UnauthenticatedError
	)
	switch {
	case errors.As(err, &ve):
		respond.WriteError(w, http.StatusBadRequest, "INVALID_REQUEST", ve.Message)
	case errors.As(err, &ne):
		respond.WriteError(w, http.StatusNotFound, "NOT_FOUND", ne.Message)
	case errors.As(err, &ce):
		respond.WriteError(w, http.StatusConflict, "CONFLICT", ce.Message)
	case errors.As(err, &fe):
		respond.WriteError(w, http.StatusForbidden, "FORBIDDEN", fe.Message)
	case errors.As(err, &ue), errors.Is(err, auth.ErrUnauthenticated):
		respond.WriteUnauthorized(w, "authentication required")
	case errors.Is(err, model.ErrNotFound):
		respond.WriteNotFound(w, "resource not found")
	default:
		log.Error().Err(err).Str("method", r.Method).Str("path", r.URL.Path).Msg("Unhandled service error")
		respond.WriteInternalError(w, "internal error")
	}
}
