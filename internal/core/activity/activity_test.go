package activity

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Jetrca92/geotagger-backend/internal/core/errs"
	"github.com/Jetrca92/geotagger-backend/internal/events"
	"github.com/Jetrca92/geotagger-backend/internal/model"
	"github.com/Jetrca92/geotagger-backend/internal/store"
	"github.com/Jetrca92/geotagger-backend/internal/store/sqlite"
	"github.com/Jetrca92/geotagger-backend/internal/store/storetest"
)

func newStore(t *testing.T) store.Store {
	t.Helper()
	db, err := sqlite.Open(filepath.Join(t.TempDir(), "geotagger.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	require.NoError(t, sqlite.EnsureSchema(db))
	return sqlite.NewWithDB(db)
}

func TestCreateAndRecent(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)
	u := storetest.NewUser(t, s, 10)
	svc := NewService(s.Actions(), 2, zerolog.Nop())

	btn := model.ComponentButton
	for _, loc := range []string{"/a", "/b", "/c"} {
		_, err := svc.Create(ctx, u.ID, ActionInput{Action: model.ActionClick, ComponentType: &btn, Location: loc})
		require.NoError(t, err)
	}

	recent, err := svc.Recent(ctx, 50)
	require.NoError(t, err)
	require.Len(t, recent, 2)
	assert.Equal(t, "Ana", recent[0].User.FirstName)
}

func TestCreate_Validation(t *testing.T) {
	svc := NewService(newStore(t).Actions(), 0, zerolog.Nop())
	bogus := model.ComponentType("SLIDER")
	tests := map[string]ActionInput{
		"unknown action":    {Action: "HOVER", Location: "/"},
		"unknown component": {Action: model.ActionClick, ComponentType: &bogus, Location: "/"},
		"no location":       {Action: model.ActionClick},
	}
	for name, in := range tests {
		_, err := svc.Create(context.Background(), "u1", in)
		assert.True(t, errs.IsValidationError(err), name)
	}
	_, err := svc.Create(context.Background(), "", ActionInput{Action: model.ActionClick, Location: "/"})
	assert.True(t, errs.IsUnauthenticatedError(err))
}

func TestRecorder_WritesGuessActions(t *testing.T) {
	s := newStore(t)
	u := storetest.NewUser(t, s, 10)
	bus := events.NewBus(8)
	rec := NewRecorder(bus, s.Actions(), zerolog.Nop())

	done := make(chan error, 1)
	go func() { done <- rec.Run(context.Background()) }()

	require.True(t, bus.Publish(events.Event{
		Kind:          events.EventGuessSubmitted,
		UserID:        u.ID,
		LocationID:    "loc-1",
		GuessID:       "g-1",
		ErrorDistance: 236776.7,
		At:            time.Now().UTC(),
	}))
	bus.Close()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("recorder did not stop after bus close")
	}

	logs, err := s.Actions().ListRecent(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, logs, 1)
	assert.Equal(t, model.ActionGuessSubmitted, logs[0].Action)
	assert.Equal(t, "/locations/loc-1", logs[0].Location)
	require.NotNil(t, logs[0].NewValue)
	assert.Equal(t, "236776.7", *logs[0].NewValue)
}

func TestRecorder_StopsOnCancel(t *testing.T) {
	rec := NewRecorder(events.NewBus(1), newStore(t).Actions(), zerolog.Nop())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.NoError(t, rec.Run(ctx))
}
