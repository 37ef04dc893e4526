package api

import (
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/Jetrca92/geotagger-backend/internal/api/recovery"
	"github.com/Jetrca92/geotagger-backend/internal/auth"
)

// Deps are the services the router exposes.
type Deps struct {
	Accounts  Accounts
	Locations Locations
	Guesses   Guesses
	Activity  Activity
	Health    ServiceHealth
	Identity  auth.IdentityProvider
	// GuessRateLimit caps guess submissions per caller per minute; 0 disables it.
	GuessRateLimit int
}

// NewRouter creates the HTTP router with all API routes.
func NewRouter(d Deps) *mux.Router {
	router := mux.NewRouter()

	// Global middlewares
	router.Use(RequestID)
	router.Use(recovery.Middleware)

	authn := NewAuthenticator(d.Identity)
	limiter := NewRateLimiter(d.GuessRateLimit)

	authHandler := NewAuthHandler(d.Accounts)
	locationHandler := NewLocationHandler(d.Locations)
	guessHandler := NewGuessHandler(d.Guesses)
	logHandler := NewLogHandler(d.Activity)
	healthHandler := NewHealthHandler(d.Health)

	router.HandleFunc("/api/health", healthHandler.CheckHealth).Methods("GET")
	router.Handle("/metrics", promhttp.Handler()).Methods("GET")

	// Auth and profile
	router.HandleFunc("/api/auth/register", authHandler.Register).Methods("POST")
	router.HandleFunc("/api/auth/login", authHandler.Login).Methods("POST")
	router.HandleFunc("/api/users/me", authn.Require(authHandler.Me)).Methods("GET")
	router.HandleFunc("/api/users/me", authn.Require(authHandler.UpdateMe)).Methods("PATCH")
	router.HandleFunc("/api/users/me/password", authn.Require(authHandler.UpdatePassword)).Methods("PATCH")
	router.HandleFunc("/api/users/me/guesses", authn.Require(guessHandler.History)).Methods("GET")

	// Locations; literal paths registered before the {locationId} routes
	router.HandleFunc("/api/locations", locationHandler.List).Methods("GET")
	router.HandleFunc("/api/locations", authn.Require(locationHandler.Create)).Methods("POST")
	router.HandleFunc("/api/locations/random", locationHandler.Random).Methods("GET")
	router.HandleFunc("/api/locations/mine", authn.Require(locationHandler.Mine)).Methods("GET")
	router.HandleFunc("/api/locations/{locationId}", locationHandler.Get).Methods("GET")
	router.HandleFunc("/api/locations/{locationId}", authn.Require(locationHandler.Update)).Methods("PATCH")
	router.HandleFunc("/api/locations/{locationId}", authn.Require(locationHandler.Delete)).Methods("DELETE")

	// Guesses
	router.HandleFunc("/api/locations/{locationId}/guesses", authn.Require(limiter.Limit(guessHandler.Submit))).Methods("POST")
	router.HandleFunc("/api/locations/{locationId}/guesses", guessHandler.Leaderboard).Methods("GET")

	// Action log
	router.HandleFunc("/api/logs", authn.Require(logHandler.Create)).Methods("POST")
	router.HandleFunc("/api/logs", logHandler.Recent).Methods("GET")

	return router
}
