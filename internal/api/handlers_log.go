package api

import (
	"context"
	"net/http"

	"github.com/Jetrca92/geotagger-backend/internal/api/respond"
	"github.com/Jetrca92/geotagger-backend/internal/auth"
	"github.com/Jetrca92/geotagger-backend/internal/core/activity"
	"github.com/Jetrca92/geotagger-backend/internal/model"
)

type Activity interface {
	Create(ctx context.Context, userID string, in activity.ActionInput) (*model.ActionLog, error)
	Recent(ctx context.Context, limit int) ([]*model.ActionLog, error)
}

type LogHandler struct {
	activity Activity
}

func NewLogHandler(a Activity) *LogHandler { return &LogHandler{activity: a} }

type createLogRequest struct {
	Action        string  `json:"action" validate:"required,oneof=CLICK SCROLL ADDED_VALUE CHANGED_VALUE GUESS_SUBMITTED"`
	ComponentType *string `json:"componentType" validate:"omitempty,oneof=BUTTON INPUT LINK MAP"`
	NewValue      *string `json:"newValue" validate:"omitempty,max=1000"`
	Location      string  `json:"location" validate:"required,max=500"`
}

// Create handles POST /api/logs
func (h *LogHandler) Create(w http.ResponseWriter, r *http.Request) {
	var in createLogRequest
	if err := decodeBody(w, r, &in); err != nil {
		respond.WriteBadRequest(w, err.Error())
		return
	}
	var component *model.ComponentType
	if in.ComponentType != nil {
		c := model.ComponentType(*in.ComponentType)
		component = &c
	}
	out, err := h.activity.Create(r.Context(), auth.CallerFrom(r.Context()), activity.ActionInput{
		Action:        model.ActionType(in.Action),
		ComponentType: component,
		NewValue:      in.NewValue,
		Location:      in.Location,
	})
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	respond.WriteJSON(w, http.StatusCreated, out)
}

// Recent handles GET /api/logs?limit
func (h *LogHandler) Recent(w http.ResponseWriter, r *http.Request) {
	limit, err := queryInt(r, "limit", 0)
	if err != nil {
		respond.WriteBadRequest(w, err.Error())
		return
	}
	out, err := h.activity.Recent(r.Context(), limit)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	respond.WriteJSON(w, http.StatusOK, out)
}
