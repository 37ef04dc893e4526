// Package activity stores the user action log.
package activity

import (
	"context"
	"strings"

	"github.com/rs/zerolog"

	"github.com/Jetrca92/geotagger-backend/internal/core/errs"
	"github.com/Jetrca92/geotagger-backend/internal/model"
	"github.com/Jetrca92/geotagger-backend/internal/store"
)

const DefaultRecentLimit = 100

var validActions = map[model.ActionType]bool{
	model.ActionClick:          true,
	model.ActionScroll:         true,
	model.ActionAddedValue:     true,
	model.ActionChangedValue:   true,
	model.ActionGuessSubmitted: true,
}

var validComponents = map[model.ComponentType]bool{
	model.ComponentButton: true,
	model.ComponentInput:  true,
	model.ComponentLink:   true,
	model.ComponentMap:    true,
}

type ActionInput struct {
	Action        model.ActionType
	ComponentType *model.ComponentType
	NewValue      *string
	Location      string
}

type Service struct {
	actions     store.Actions
	recentLimit int
	log         zerolog.Logger
}

func NewService(actions store.Actions, recentLimit int, log zerolog.Logger) *Service {
	if recentLimit <= 0 {
		recentLimit = DefaultRecentLimit
	}
	return &Service{actions: actions, recentLimit: recentLimit, log: log.With().Str("component", "activity").Logger()}
}

func (s *Service) Create(ctx context.Context, userID string, in ActionInput) (*model.ActionLog, error) {
	if userID == "" {
		return nil, errs.NewUnauthenticatedError("login required")
	}
	if !validActions[in.Action] {
		return nil, errs.NewValidationError("action", "unknown action "+string(in.Action))
	}
	if in.ComponentType != nil && !validComponents[*in.ComponentType] {
		return nil, errs.NewValidationError("componentType", "unknown component "+string(*in.ComponentType))
	}
	if strings.TrimSpace(in.Location) == "" {
		return nil, errs.NewValidationError("location", "location is required")
	}
	return s.actions.Create(ctx, &model.ActionLog{
		UserID:        userID,
		Action:        in.Action,
		ComponentType: in.ComponentType,
		NewValue:      in.NewValue,
		Location:      in.Location,
	})
}

// Recent returns the newest actions; limit <= 0 or above the configured cap uses the cap.
func (s *Service) Recent(ctx context.Context, limit int) ([]*model.ActionLog, error) {
	if limit <= 0 || limit > s.recentLimit {
		limit = s.recentLimit
	}
	out, err := s.actions.ListRecent(ctx, limit)
	if out == nil && err == nil {
		out = []*model.ActionLog{}
	}
	return out, err
}
