// Package invariants checks system invariants through the public HTTP API.
// The checker treats the service as an external system, so the same suite
// runs in-process against an httptest server or against a deployed instance.
package invariants

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sort"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Jetrca92/geotagger-backend/internal/model"
)

// InvariantChecker tests system invariants using customer-facing APIs.
type InvariantChecker struct {
	baseURL string
	client  *http.Client
}

// NewInvariantChecker creates a new invariant checker
func NewInvariantChecker(baseURL string) *InvariantChecker {
	return &InvariantChecker{
		baseURL: baseURL,
		client: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// Player is a registered account and its bearer token.
type Player struct {
	ID    string
	Token string
}

// INVARIANT: a player's balance never goes negative, every accepted guess
// debits a positive cost that never decreases for the same location, and a
// rejected guess leaves the balance untouched.
func (ic *InvariantChecker) TestPointsConservationInvariant(t *testing.T) {
	owner := ic.RegisterPlayer(t)
	player := ic.RegisterPlayer(t)
	loc := ic.CreateLocation(t, owner, 46.3683, 14.1146, "Bled")

	balance := ic.Points(t, player)
	require.GreaterOrEqual(t, balance, 0)

	accepted := 0
	lastCost := 0
	for round := 0; round < 100; round++ {
		status, _ := ic.submitGuess(t, player, loc.ID, 45.0786, 13.6386)
		after := ic.Points(t, player)
		require.GreaterOrEqual(t, after, 0, "balance must never be negative")

		if status == http.StatusPaymentRequired {
			assert.Equal(t, balance, after, "rejected guess must not debit")
			break
		}
		require.Equal(t, http.StatusCreated, status)
		cost := balance - after
		assert.Positive(t, cost, "accepted guess must cost points")
		assert.GreaterOrEqual(t, cost, lastCost, "cost must not decrease across attempts")
		lastCost = cost
		balance = after
		accepted++
	}

	history := ic.History(t, player)
	assert.Len(t, history, accepted, "history must hold exactly the accepted guesses")
}

// INVARIANT: an owner can never guess their own location.
func (ic *InvariantChecker) TestSelfGuessInvariant(t *testing.T) {
	owner := ic.RegisterPlayer(t)
	loc := ic.CreateLocation(t, owner, 46.0569, 14.5058, "Ljubljana")
	before := ic.Points(t, owner)

	status, _ := ic.submitGuess(t, owner, loc.ID, 46.0569, 14.5058)
	assert.Equal(t, http.StatusForbidden, status)
	assert.Equal(t, before, ic.Points(t, owner))
	assert.Empty(t, ic.Leaderboard(t, loc.ID))
}

// INVARIANT: a leaderboard is ordered by error distance ascending and every
// entry belongs to the requested location.
func (ic *InvariantChecker) TestLeaderboardOrderingInvariant(t *testing.T) {
	owner := ic.RegisterPlayer(t)
	loc := ic.CreateLocation(t, owner, 45.8150, 15.9819, "Zagreb")

	guesses := [][2]float64{{46.0569, 14.5058}, {45.8, 16.0}, {48.2082, 16.3738}, {45.3271, 14.4422}}
	for _, g := range guesses {
		p := ic.RegisterPlayer(t)
		status, _ := ic.submitGuess(t, p, loc.ID, g[0], g[1])
		require.Equal(t, http.StatusCreated, status)
	}

	board := ic.Leaderboard(t, loc.ID)
	require.Len(t, board, len(guesses))
	assert.True(t, sort.SliceIsSorted(board, func(i, j int) bool {
		return board[i].ErrorDistance < board[j].ErrorDistance
	}), "leaderboard must be sorted by error distance")
	for _, g := range board {
		assert.Equal(t, loc.ID, g.LocationID)
		assert.GreaterOrEqual(t, g.ErrorDistance, 0.0)
	}
}

// INVARIANT: a player's history only ever contains their own guesses.
func (ic *InvariantChecker) TestHistoryIsolationInvariant(t *testing.T) {
	owner := ic.RegisterPlayer(t)
	loc := ic.CreateLocation(t, owner, 44.8125, 20.4612, "Belgrade")
	a := ic.RegisterPlayer(t)
	b := ic.RegisterPlayer(t)

	status, _ := ic.submitGuess(t, a, loc.ID, 45.0, 20.0)
	require.Equal(t, http.StatusCreated, status)
	status, _ = ic.submitGuess(t, b, loc.ID, 44.0, 21.0)
	require.Equal(t, http.StatusCreated, status)

	for _, p := range []Player{a, b} {
		history := ic.History(t, p)
		require.Len(t, history, 1)
		assert.Equal(t, p.ID, history[0].OwnerID)
	}
}

// RegisterPlayer creates a uniquely named account and logs it in.
func (ic *InvariantChecker) RegisterPlayer(t *testing.T) Player {
	t.Helper()
	email := fmt.Sprintf("invariant-%s@example.com", uuid.NewString())
	body := ic.makeRequest(t, http.MethodPost, "/api/auth/register", "", map[string]string{
		"email":     email,
		"password":  "secret1",
		"firstName": "Invariant",
		"lastName":  "Player",
	}, http.StatusCreated)
	var u model.User
	require.NoError(t, json.Unmarshal(body, &u))

	body = ic.makeRequest(t, http.MethodPost, "/api/auth/login", "", map[string]string{
		"email":    email,
		"password": "secret1",
	}, http.StatusOK)
	var tok struct {
		AccessToken string `json:"accessToken"`
	}
	require.NoError(t, json.Unmarshal(body, &tok))
	return Player{ID: u.ID, Token: tok.AccessToken}
}

func (ic *InvariantChecker) CreateLocation(t *testing.T, owner Player, lat, lng float64, address string) model.Location {
	t.Helper()
	body := ic.makeRequest(t, http.MethodPost, "/api/locations", owner.Token, map[string]interface{}{
		"latitude":  lat,
		"longitude": lng,
		"address":   address,
	}, http.StatusCreated)
	var l model.Location
	require.NoError(t, json.Unmarshal(body, &l))
	return l
}

func (ic *InvariantChecker) Points(t *testing.T, p Player) int {
	t.Helper()
	var u model.User
	require.NoError(t, json.Unmarshal(ic.makeRequest(t, http.MethodGet, "/api/users/me", p.Token, nil, http.StatusOK), &u))
	return u.Points
}

func (ic *InvariantChecker) History(t *testing.T, p Player) []model.Guess {
	t.Helper()
	var out []model.Guess
	require.NoError(t, json.Unmarshal(ic.makeRequest(t, http.MethodGet, "/api/users/me/guesses", p.Token, nil, http.StatusOK), &out))
	return out
}

func (ic *InvariantChecker) Leaderboard(t *testing.T, locationID string) []model.Guess {
	t.Helper()
	var out []model.Guess
	require.NoError(t, json.Unmarshal(ic.makeRequest(t, http.MethodGet, "/api/locations/"+locationID+"/guesses", "", nil, http.StatusOK), &out))
	return out
}

func (ic *InvariantChecker) submitGuess(t *testing.T, p Player, locationID string, lat, lng float64) (int, []byte) {
	t.Helper()
	resp := ic.do(t, http.MethodPost, "/api/locations/"+locationID+"/guesses", p.Token, map[string]float64{
		"latitude":  lat,
		"longitude": lng,
	})
	defer func() { _ = resp.Body.Close() }()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, body
}

func (ic *InvariantChecker) do(t *testing.T, method, path, token string, body interface{}) *http.Response {
	t.Helper()
	var reqBody []byte
	var err error

	if body != nil {
		reqBody, err = json.Marshal(body)
		require.NoError(t, err)
	}

	req, err := http.NewRequest(method, ic.baseURL+path, bytes.NewBuffer(reqBody))
	require.NoError(t, err)

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := ic.client.Do(req)
	require.NoError(t, err)
	return resp
}

func (ic *InvariantChecker) makeRequest(t *testing.T, method, path, token string, body interface{}, expectedStatus int) []byte {
	t.Helper()
	resp := ic.do(t, method, path, token, body)
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	require.Equal(t, expectedStatus, resp.StatusCode,
		"Expected status %d but got %d for %s %s: %s", expectedStatus, resp.StatusCode, method, path, respBody)
	return respBody
}
