package geotaggerservice

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/Jetrca92/geotagger-backend/internal/api"
	"github.com/Jetrca92/geotagger-backend/internal/auth"
	"github.com/Jetrca92/geotagger-backend/internal/config"
	"github.com/Jetrca92/geotagger-backend/internal/core/account"
	"github.com/Jetrca92/geotagger-backend/internal/core/activity"
	"github.com/Jetrca92/geotagger-backend/internal/core/guess"
	"github.com/Jetrca92/geotagger-backend/internal/core/location"
	"github.com/Jetrca92/geotagger-backend/internal/events"
	"github.com/Jetrca92/geotagger-backend/internal/factory"
	"github.com/Jetrca92/geotagger-backend/internal/health"
	"github.com/Jetrca92/geotagger-backend/internal/ledger"
	"github.com/Jetrca92/geotagger-backend/internal/logger"
	"github.com/Jetrca92/geotagger-backend/internal/store"
)

const (
	serviceName  = "geotagger-service"
	devUserEmail = "dev@geotagger.local"
)

// Run starts the geotagger HTTP service and blocks until shutdown or error.
// A non-empty buildTarget overrides GEOTAGGER_BUILD_TARGET.
func Run(buildTarget string) error {
	cfg, err := config.New()
	if err != nil {
		bootLog := logger.New(serviceName, "")
		bootLog.Error().Err(err).Msg("Failed to load configuration")
		return err
	}
	log := logger.New(serviceName, cfg.LogLevel)

	if buildTarget != "" {
		cfg.BuildTarget = buildTarget
		if _, ok := os.LookupEnv("GEOTAGGER_DB_DRIVER"); !ok {
			cfg.DBDriver = ""
		}
		if err := cfg.ResolveDefaults(); err != nil {
			log.Error().Err(err).Msg("Invalid build-target override")
			return err
		}
	}

	// Create cancellable root context bound to SIGINT/SIGTERM
	ctx, stop := newServerContext()
	defer stop()

	return RunWithConfig(ctx, cfg, log)
}

// RunWithConfig runs the service until ctx is cancelled.
func RunWithConfig(ctx context.Context, cfg *config.Config, log zerolog.Logger) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	log.Info().
		Str("build_target", cfg.BuildTarget).
		Str("db_driver", cfg.DBDriver).
		Int("http_port", cfg.HTTPPort).
		Msg("Geotagger service starting")

	st, db, err := factory.NewStore(ctx, cfg, log)
	if err != nil {
		log.Error().Stack().Err(err).Msg("Store adapter unavailable")
		return err
	}
	defer func() { _ = db.Close() }()

	g, gctx := errgroup.WithContext(ctx)

	bus := events.NewBus(cfg.EventBuffer)
	svcHealth := startHealthCheckers(gctx, cfg, log, st, bus)

	deps, err := buildDeps(ctx, cfg, log, st, bus)
	if err != nil {
		return err
	}
	deps.Health = svcHealth

	// Block startup until dependencies report healthy; fail fast otherwise
	if err := waitUntilHealthy(gctx, cfg, svcHealth); err != nil {
		log.Error().Stack().Err(err).Msg("startup health check failed")
		return err
	}

	recorder := activity.NewRecorder(bus, st.Actions(), log)
	g.Go(func() error { return recorder.Run(gctx) })

	server := newHTTPServer(gctx, cfg, api.NewRouter(deps))
	g.Go(func() error {
		log.Info().Int("port", cfg.HTTPPort).Msg("HTTP server starting")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})

	// Graceful shutdown on context cancel or a failed component
	g.Go(func() error {
		<-gctx.Done()
		log.Info().Msg("Shutting down server")
		ctxShutdown, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		err := server.Shutdown(ctxShutdown)
		bus.Close()
		if err != nil {
			log.Error().Stack().Err(err).Msg("Server forced to shutdown")
			return err
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		log.Error().Stack().Err(err).Msg("Service stopped with error")
		return err
	}
	log.Info().Int64("events_dropped", bus.Dropped()).Msg("Server exited")
	return nil
}

// buildDeps constructs the services behind the HTTP API.
func buildDeps(ctx context.Context, cfg *config.Config, log zerolog.Logger, st store.Store, bus *events.Bus) (api.Deps, error) {
	jwtp, identity, err := auth.NewProvider(cfg, "")
	if err != nil {
		return api.Deps{}, err
	}
	accounts := account.NewService(st.Users(), jwtp, cfg.InitialPoints, log)

	if cfg.BuildTarget == "local" && cfg.DevToken != "" {
		u, err := accounts.EnsureUser(ctx, account.RegisterInput{
			Email:     devUserEmail,
			Password:  uuid.NewString(),
			FirstName: "Local",
			LastName:  "Developer",
		})
		if err != nil {
			return api.Deps{}, fmt.Errorf("provision dev user: %w", err)
		}
		if _, identity, err = auth.NewProvider(cfg, u.ID); err != nil {
			return api.Deps{}, err
		}
		log.Warn().Str("userID", u.ID).Msg("Static dev token enabled")
	}

	locations := location.NewService(st.Locations(), log)
	guesses := guess.NewService(locations, st, st.Guesses(), ledger.New(), guess.Config{
		Schedule:         cfg.CostSchedule(),
		LeaderboardLimit: cfg.LeaderboardLimit,
	}, bus, log)

	return api.Deps{
		Accounts:       accounts,
		Locations:      locations,
		Guesses:        guesses,
		Activity:       activity.NewService(st.Actions(), cfg.RecentActionsLimit, log),
		Identity:       identity,
		GuessRateLimit: cfg.RateLimitPerMinute,
	}, nil
}

// startHealthCheckers starts component checkers and the service-level aggregator.
func startHealthCheckers(ctx context.Context, cfg *config.Config, log zerolog.Logger, st store.Store, bus *events.Bus) *health.ServiceHealthChecker {
	storeChecker := store.NewStoreHealthChecker(st, log, cfg.HealthProbeTimeout())
	go storeChecker.Start(ctx, cfg.HealthInterval())

	busChecker := events.NewBusHealthChecker(bus, log)
	go busChecker.Start(ctx, cfg.HealthInterval())

	svcHealth := health.NewServiceHealthChecker(log, storeChecker, busChecker)
	go svcHealth.Start(ctx, cfg.HealthInterval())
	return svcHealth
}

func newHTTPServer(ctx context.Context, cfg *config.Config, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:              cfg.GetHTTPAddr(),
		Handler:           handler,
		ReadTimeout:       15 * time.Second,
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}
}

// calculateStartupHealthTimeout returns the startup health timeout in seconds,
// calculated as interval*2 with a minimum of 60 seconds.
func calculateStartupHealthTimeout(healthIntervalSeconds int) int {
	timeout := healthIntervalSeconds * 2
	if timeout < 60 {
		return 60
	}
	return timeout
}

// waitUntilHealthy blocks until service health is healthy or the startup window expires.
func waitUntilHealthy(ctx context.Context, cfg *config.Config, svcHealth *health.ServiceHealthChecker) error {
	timeoutSeconds := calculateStartupHealthTimeout(cfg.HealthIntervalSeconds)
	deadline := time.Now().Add(time.Duration(timeoutSeconds) * time.Second)
	ticker := time.NewTicker(250 * time.Millisecond)
	defer ticker.Stop()
	for {
		if svcHealth.IsHealthy() {
			return nil
		}
		if time.Now().After(deadline) {
			return fmt.Errorf("startup aborted: dependencies not healthy within %d seconds", timeoutSeconds)
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

// newServerContext returns a cancellable context that is cancelled on SIGINT/SIGTERM.
func newServerContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
}
