package geotaggerservice

import (
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Jetrca92/geotagger-backend/internal/api"
	"github.com/Jetrca92/geotagger-backend/internal/config"
	"github.com/Jetrca92/geotagger-backend/internal/events"
	"github.com/Jetrca92/geotagger-backend/internal/factory"
	"github.com/Jetrca92/geotagger-backend/internal/store"
)

func TestCalculateStartupHealthTimeout(t *testing.T) {
	tests := []struct {
		name     string
		interval int
		want     int
	}{
		{"zero interval uses minimum", 0, 60},
		{"short interval uses minimum", 10, 60},
		{"exactly half of minimum", 30, 60},
		{"long interval doubles", 45, 90},
		{"very long interval", 300, 600},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, calculateStartupHealthTimeout(tt.interval))
		})
	}
}

func newTestStore(t *testing.T, cfg *config.Config) store.Store {
	t.Helper()
	cfg.SQLitePath = filepath.Join(t.TempDir(), "geotagger.db")
	st, db, err := factory.NewStore(context.Background(), cfg, zerolog.Nop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return st
}

func TestWaitUntilHealthy_SQLite(t *testing.T) {
	cfg := config.NewForTesting()
	cfg.HealthIntervalSeconds = 1
	st := newTestStore(t, cfg)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	bus := events.NewBus(4)
	svcHealth := startHealthCheckers(ctx, cfg, zerolog.Nop(), st, bus)
	require.NoError(t, waitUntilHealthy(ctx, cfg, svcHealth))
	assert.Equal(t, map[string]bool{"store": true, "events": true}, svcHealth.Snapshot())

	bus.Close()
	assert.Eventually(t, func() bool { return !svcHealth.IsHealthy() }, 5*time.Second, 100*time.Millisecond)
	assert.Equal(t, map[string]bool{"store": true, "events": false}, svcHealth.Snapshot())
}

func TestWaitUntilHealthy_Canceled(t *testing.T) {
	cfg := config.NewForTesting()
	st := newTestStore(t, cfg)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	svcHealth := startHealthCheckers(ctx, cfg, zerolog.Nop(), st, events.NewBus(1))
	err := waitUntilHealthy(ctx, cfg, svcHealth)
	if err != nil {
		assert.ErrorIs(t, err, context.Canceled)
	}
}

func TestBuildDeps_DevToken(t *testing.T) {
	cfg := config.NewForTesting()
	cfg.DevToken = "local-dev"
	st := newTestStore(t, cfg)

	bus := events.NewBus(4)
	defer bus.Close()

	deps, err := buildDeps(context.Background(), cfg, zerolog.Nop(), st, bus)
	require.NoError(t, err)

	caller, err := deps.Identity.ResolveCaller(context.Background(), "local-dev")
	require.NoError(t, err)

	u, err := st.Users().Get(context.Background(), caller)
	require.NoError(t, err)
	assert.Equal(t, devUserEmail, u.Email)
	assert.Equal(t, cfg.InitialPoints, u.Points)

	// A second startup reuses the provisioned account.
	again, err := buildDeps(context.Background(), cfg, zerolog.Nop(), st, bus)
	require.NoError(t, err)
	caller2, err := again.Identity.ResolveCaller(context.Background(), "local-dev")
	require.NoError(t, err)
	assert.Equal(t, caller, caller2)
}

func TestBuildDeps_NoDevTokenOutsideLocal(t *testing.T) {
	cfg := config.NewForTesting()
	cfg.DevToken = "local-dev"
	st := newTestStore(t, cfg)
	cfg.BuildTarget = "cloud-dev"

	deps, err := buildDeps(context.Background(), cfg, zerolog.Nop(), st, events.NewBus(1))
	require.NoError(t, err)

	_, err = deps.Identity.ResolveCaller(context.Background(), "local-dev")
	assert.Error(t, err)

	_, _, err = st.Users().GetByEmail(context.Background(), devUserEmail)
	assert.Error(t, err)
}

type alwaysHealthy struct{}

func (alwaysHealthy) IsHealthy() bool           { return true }
func (alwaysHealthy) Snapshot() map[string]bool { return map[string]bool{"store": true} }

func TestBuildDeps_ServesRoutes(t *testing.T) {
	cfg := config.NewForTesting()
	st := newTestStore(t, cfg)

	deps, err := buildDeps(context.Background(), cfg, zerolog.Nop(), st, events.NewBus(4))
	require.NoError(t, err)
	deps.Health = alwaysHealthy{}

	srv := httptest.NewServer(api.NewRouter(deps))
	defer srv.Close()

	resp, err := http.Post(srv.URL+"/api/auth/register", "application/json", strings.NewReader(
		`{"email":"ana@example.com","password":"secret1","firstName":"Ana","lastName":"Novak"}`))
	require.NoError(t, err)
	_ = resp.Body.Close()
	assert.Equal(t, http.StatusCreated, resp.StatusCode)

	client := &http.Client{Timeout: 5 * time.Second}
	resp, err = client.Get(srv.URL + "/api/health")
	require.NoError(t, err)
	_ = resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}
