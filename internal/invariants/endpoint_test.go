//go:build invariants

package invariants

import (
	"net/http"
	"os"
	"testing"

	"github.com/stretchr/testify/require"
)

// TestDeployedSystemInvariants runs the suite against a running service,
// e.g. one started with docker compose or `geotagger-service --build-target local`.
func TestDeployedSystemInvariants(t *testing.T) {
	baseURL := os.Getenv("GEOTAGGER_INVARIANTS_URL")
	if baseURL == "" {
		baseURL = "http://localhost:8080"
	}

	resp, err := http.Get(baseURL + "/api/health")
	require.NoError(t, err, "service must be running at %s", baseURL)
	_ = resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode, "service health check failed")

	checker := NewInvariantChecker(baseURL)
	t.Run("PointsConservation", checker.TestPointsConservationInvariant)
	t.Run("SelfGuessForbidden", checker.TestSelfGuessInvariant)
	t.Run("LeaderboardOrdering", checker.TestLeaderboardOrderingInvariant)
	t.Run("HistoryIsolation", checker.TestHistoryIsolationInvariant)
}
