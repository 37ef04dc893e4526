package activity

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/Jetrca92/geotagger-backend/internal/events"
	"github.com/Jetrca92/geotagger-backend/internal/metrics"
	"github.com/Jetrca92/geotagger-backend/internal/model"
	"github.com/Jetrca92/geotagger-backend/internal/store"
)

// Recorder appends a GUESS_SUBMITTED action for every guess event on the bus.
type Recorder struct {
	events  <-chan events.Event
	actions store.Actions
	log     zerolog.Logger
}

func NewRecorder(bus *events.Bus, actions store.Actions, log zerolog.Logger) *Recorder {
	return &Recorder{events: bus.Subscribe(), actions: actions, log: log.With().Str("component", "activity_recorder").Logger()}
}

// Run consumes events until ctx is canceled or the bus is closed.
func (r *Recorder) Run(ctx context.Context) error {
	r.log.Info().Msg("activity recorder starting")
	for {
		select {
		case <-ctx.Done():
			r.log.Info().Msg("activity recorder stopping")
			return nil
		case evt, ok := <-r.events:
			if !ok {
				r.log.Info().Msg("event bus closed")
				return nil
			}
			if err := r.handle(ctx, evt); err != nil {
				// Best effort; the guess itself is already committed.
				metrics.ActivityRecordFailed()
				r.log.Warn().Err(err).Str("guessID", evt.GuessID).Msg("record guess activity")
			}
		}
	}
}

func (r *Recorder) handle(ctx context.Context, evt events.Event) error {
	if evt.Kind != events.EventGuessSubmitted {
		return nil
	}
	component := model.ComponentMap
	value := fmt.Sprintf("%.1f", evt.ErrorDistance)
	_, err := r.actions.Create(ctx, &model.ActionLog{
		UserID:        evt.UserID,
		Action:        model.ActionGuessSubmitted,
		ComponentType: &component,
		NewValue:      &value,
		Location:      "/locations/" + evt.LocationID,
		CreatedAt:     evt.At,
	})
	return err
}
