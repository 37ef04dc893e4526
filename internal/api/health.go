package api

import (
	"net/http"
	"time"

	"github.com/Jetrca92/geotagger-backend/internal/api/respond"
)

// ServiceHealth reports aggregated dependency health.
type ServiceHealth interface {
	IsHealthy() bool
	Snapshot() map[string]bool
}

// HealthHandler handles health check endpoints
type HealthHandler struct {
	health ServiceHealth
}

// NewHealthHandler creates a new health handler; a nil health reports healthy.
func NewHealthHandler(h ServiceHealth) *HealthHandler { return &HealthHandler{health: h} }

// CheckHealth handles GET /api/health
// Always returns 200; body reports healthy/unhealthy. 500 indicates handler failure only.
func (h *HealthHandler) CheckHealth(w http.ResponseWriter, r *http.Request) {
	status := "healthy"
	checks := map[string]bool{}
	if h.health != nil {
		if !h.health.IsHealthy() {
			status = "unhealthy"
		}
		checks = h.health.Snapshot()
	}
	respond.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"status":    status,
		"checks":    checks,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}
