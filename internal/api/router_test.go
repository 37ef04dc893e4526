package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Jetrca92/geotagger-backend/internal/api/respond"
	"github.com/Jetrca92/geotagger-backend/internal/auth"
	"github.com/Jetrca92/geotagger-backend/internal/core/account"
	"github.com/Jetrca92/geotagger-backend/internal/core/activity"
	"github.com/Jetrca92/geotagger-backend/internal/core/guess"
	"github.com/Jetrca92/geotagger-backend/internal/core/location"
	"github.com/Jetrca92/geotagger-backend/internal/ledger"
	"github.com/Jetrca92/geotagger-backend/internal/model"
	"github.com/Jetrca92/geotagger-backend/internal/scoring"
	"github.com/Jetrca92/geotagger-backend/internal/store"
	"github.com/Jetrca92/geotagger-backend/internal/store/sqlite"
)

type fakeHealth struct{ ok bool }

func (f fakeHealth) IsHealthy() bool           { return f.ok }
func (f fakeHealth) Snapshot() map[string]bool { return map[string]bool{"store": f.ok} }

type testServer struct {
	t     *testing.T
	srv   *httptest.Server
	store store.Store
}

func newTestServer(t *testing.T, rateLimit int) *testServer {
	t.Helper()
	db, err := sqlite.Open(filepath.Join(t.TempDir(), "geotagger.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	require.NoError(t, sqlite.EnsureSchema(db))
	s := sqlite.NewWithDB(db)

	jwtp, err := auth.NewJWTProvider("test-secret", time.Hour)
	require.NoError(t, err)
	locations := location.NewService(s.Locations(), zerolog.Nop())

	router := NewRouter(Deps{
		Accounts:  account.NewService(s.Users(), jwtp, 10, zerolog.Nop()),
		Locations: locations,
		Guesses: guess.NewService(locations, s, s.Guesses(), ledger.New(),
			guess.Config{Schedule: scoring.Schedule{First: 3, Second: 5, Ceiling: 8}, LeaderboardLimit: 13}, nil, zerolog.Nop()),
		Activity:       activity.NewService(s.Actions(), 100, zerolog.Nop()),
		Health:         fakeHealth{ok: true},
		Identity:       jwtp,
		GuessRateLimit: rateLimit,
	})
	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)
	return &testServer{t: t, srv: srv, store: s}
}

func (ts *testServer) do(method, path, token string, body interface{}) *http.Response {
	ts.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(ts.t, json.NewEncoder(&buf).Encode(body))
	}
	req, err := http.NewRequest(method, ts.srv.URL+path, &buf)
	require.NoError(ts.t, err)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := http.DefaultClient.Do(req)
	require.NoError(ts.t, err)
	ts.t.Cleanup(func() { _ = resp.Body.Close() })
	return resp
}

func decode[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	var out T
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return out
}

// signup registers and logs in a user, returning the user and its token.
func (ts *testServer) signup(email string) (*model.User, string) {
	ts.t.Helper()
	resp := ts.do("POST", "/api/auth/register", "", map[string]string{
		"email": email, "password": "secret1", "firstName": "Ana", "lastName": "Novak",
	})
	require.Equal(ts.t, http.StatusCreated, resp.StatusCode)
	u := decode[model.User](ts.t, resp)

	resp = ts.do("POST", "/api/auth/login", "", map[string]string{"email": email, "password": "secret1"})
	require.Equal(ts.t, http.StatusOK, resp.StatusCode)
	tok := decode[account.Token](ts.t, resp)
	require.NotEmpty(ts.t, tok.AccessToken)
	return &u, tok.AccessToken
}

func (ts *testServer) createLocation(token string, lat, lng float64) *model.Location {
	ts.t.Helper()
	resp := ts.do("POST", "/api/locations", token, map[string]interface{}{
		"latitude": lat, "longitude": lng, "address": "Bled",
	})
	require.Equal(ts.t, http.StatusCreated, resp.StatusCode)
	l := decode[model.Location](ts.t, resp)
	return &l
}

func errorCode(t *testing.T, resp *http.Response) string {
	t.Helper()
	return decode[respond.ErrorResponse](t, resp).Code
}

func TestGuessFlow(t *testing.T) {
	ts := newTestServer(t, 0)
	_, ownerTok := ts.signup("owner@example.com")
	player, playerTok := ts.signup("player@example.com")
	loc := ts.createLocation(ownerTok, 46.378, 13.837)
	path := "/api/locations/" + loc.ID + "/guesses"
	body := map[string]interface{}{"latitude": 44.258, "longitude": 14.121, "address": "Rab"}

	resp := ts.do("POST", path, playerTok, body)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	g := decode[map[string]interface{}](t, resp)
	assert.Equal(t, loc.ID, g["locationId"])
	assert.Equal(t, player.ID, g["ownerId"])
	assert.InDelta(t, 236_777, g["errorDistance"].(float64), 5)
	owner := g["owner"].(map[string]interface{})
	assert.Equal(t, "Ana", owner["firstName"])

	resp = ts.do("POST", path, playerTok, body)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	resp = ts.do("POST", path, playerTok, body)
	require.Equal(t, http.StatusPaymentRequired, resp.StatusCode)
	assert.Equal(t, "INSUFFICIENT_POINTS", errorCode(t, resp))

	resp = ts.do("GET", "/api/users/me", playerTok, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, 2, decode[model.User](t, resp).Points)

	resp = ts.do("GET", "/api/users/me/guesses", playerTok, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Len(t, decode[[]model.Guess](t, resp), 2)

	resp = ts.do("GET", path+"?limit=1", "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Len(t, decode[[]model.Guess](t, resp), 1)
}

func TestGuessErrors(t *testing.T) {
	ts := newTestServer(t, 0)
	_, ownerTok := ts.signup("owner@example.com")
	_, playerTok := ts.signup("player@example.com")
	loc := ts.createLocation(ownerTok, 46.378, 13.837)
	body := map[string]interface{}{"latitude": 45.0, "longitude": 14.0}

	tests := []struct {
		name   string
		token  string
		path   string
		body   interface{}
		status int
		code   string
	}{
		{"no token", "", "/api/locations/" + loc.ID + "/guesses", body, http.StatusUnauthorized, "UNAUTHENTICATED"},
		{"bad token", "garbage", "/api/locations/" + loc.ID + "/guesses", body, http.StatusUnauthorized, "UNAUTHENTICATED"},
		{"malformed id", playerTok, "/api/locations/not-a-uuid/guesses", body, http.StatusBadRequest, "INVALID_REQUEST"},
		{"unknown location", playerTok, "/api/locations/" + uuid.NewString() + "/guesses", body, http.StatusNotFound, "LOCATION_NOT_FOUND"},
		{"own location", ownerTok, "/api/locations/" + loc.ID + "/guesses", body, http.StatusForbidden, "FORBIDDEN"},
		{"latitude out of range", playerTok, "/api/locations/" + loc.ID + "/guesses", map[string]interface{}{"latitude": 95.0, "longitude": 1.0}, http.StatusBadRequest, "INVALID_REQUEST"},
		{"missing longitude", playerTok, "/api/locations/" + loc.ID + "/guesses", map[string]interface{}{"latitude": 1.0}, http.StatusBadRequest, "INVALID_REQUEST"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := ts.do("POST", tt.path, tt.token, tt.body)
			assert.Equal(t, tt.status, resp.StatusCode)
			assert.Equal(t, tt.code, errorCode(t, resp))
		})
	}

	resp := ts.do("GET", "/api/locations/not-a-uuid/guesses", "", nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = ts.do("GET", "/api/locations/"+loc.ID+"/guesses", "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Empty(t, decode[[]model.Guess](t, resp))
}

func TestGuessRateLimit(t *testing.T) {
	ts := newTestServer(t, 1)
	_, ownerTok := ts.signup("owner@example.com")
	_, playerTok := ts.signup("player@example.com")
	loc := ts.createLocation(ownerTok, 46.378, 13.837)
	path := "/api/locations/" + loc.ID + "/guesses"
	body := map[string]interface{}{"latitude": 45.0, "longitude": 14.0}

	resp := ts.do("POST", path, playerTok, body)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	resp = ts.do("POST", path, playerTok, body)
	assert.Equal(t, http.StatusTooManyRequests, resp.StatusCode)
	assert.Equal(t, "60", resp.Header.Get("Retry-After"))
}

func TestAuthEndpoints(t *testing.T) {
	ts := newTestServer(t, 0)
	ts.signup("ana@example.com")

	resp := ts.do("POST", "/api/auth/register", "", map[string]string{
		"email": "ana@example.com", "password": "secret1", "firstName": "Ana", "lastName": "Novak",
	})
	assert.Equal(t, http.StatusConflict, resp.StatusCode)

	resp = ts.do("POST", "/api/auth/register", "", map[string]string{
		"email": "bob@example.com", "password": "123", "firstName": "Bob", "lastName": "Kos",
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = ts.do("POST", "/api/auth/login", "", map[string]string{"email": "ana@example.com", "password": "wrong-one"})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = ts.do("POST", "/api/auth/login", "", map[string]string{"email": "ghost@example.com", "password": "secret1"})
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp = ts.do("GET", "/api/users/me", "", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestLocationEndpoints(t *testing.T) {
	ts := newTestServer(t, 0)
	_, ownerTok := ts.signup("owner@example.com")
	_, otherTok := ts.signup("other@example.com")

	resp := ts.do("GET", "/api/locations/random", "", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	loc := ts.createLocation(ownerTok, 46.378, 13.837)

	resp = ts.do("GET", "/api/locations/"+loc.ID, "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, loc.ID, decode[model.Location](t, resp).ID)

	resp = ts.do("GET", "/api/locations/random", "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp = ts.do("GET", "/api/locations?limit=5&offset=0", "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Len(t, decode[[]model.Location](t, resp), 1)

	resp = ts.do("GET", "/api/locations?limit=-1", "", nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = ts.do("GET", "/api/locations/mine", otherTok, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Empty(t, decode[[]model.Location](t, resp))

	resp = ts.do("PATCH", "/api/locations/"+loc.ID, otherTok, map[string]string{"address": "Lake Bled"})
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp = ts.do("PATCH", "/api/locations/"+loc.ID, ownerTok, map[string]string{})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = ts.do("PATCH", "/api/locations/"+loc.ID, ownerTok, map[string]string{"address": " "})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = ts.do("PATCH", "/api/locations/"+loc.ID, ownerTok, map[string]string{"address": "Lake Bled"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "Lake Bled", decode[model.Location](t, resp).Address)

	resp = ts.do("DELETE", "/api/locations/"+loc.ID, otherTok, nil)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp = ts.do("DELETE", "/api/locations/"+loc.ID, ownerTok, nil)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp = ts.do("GET", "/api/locations/"+loc.ID, "", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestLogEndpoints(t *testing.T) {
	ts := newTestServer(t, 0)
	_, tok := ts.signup("ana@example.com")

	resp := ts.do("POST", "/api/logs", tok, map[string]string{"action": "CLICK", "componentType": "BUTTON", "location": "/home"})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	resp = ts.do("POST", "/api/logs", tok, map[string]string{"action": "HOVER", "location": "/home"})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = ts.do("POST", "/api/logs", "", map[string]string{"action": "CLICK", "location": "/home"})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp = ts.do("GET", "/api/logs", "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	logs := decode[[]model.ActionLog](t, resp)
	require.Len(t, logs, 1)
	assert.Equal(t, model.ActionClick, logs[0].Action)
	assert.Equal(t, "Ana", logs[0].User.FirstName)
}

func TestHealthAndRequestID(t *testing.T) {
	ts := newTestServer(t, 0)

	resp := ts.do("GET", "/api/health", "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.NotEmpty(t, resp.Header.Get(requestIDHeader))
	body := decode[map[string]interface{}](t, resp)
	assert.Equal(t, "healthy", body["status"])
	assert.Equal(t, map[string]interface{}{"store": true}, body["checks"])

	req, err := http.NewRequestWithContext(context.Background(), "GET", ts.srv.URL+"/api/health", nil)
	require.NoError(t, err)
	req.Header.Set(requestIDHeader, "req-123")
	resp2, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer func() { _ = resp2.Body.Close() }()
	assert.Equal(t, "req-123", resp2.Header.Get(requestIDHeader))

	resp = ts.do("GET", "/metrics", "", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestHealthHandler_Unhealthy(t *testing.T) {
	rr := httptest.NewRecorder()
	NewHealthHandler(fakeHealth{ok: false}).CheckHealth(rr, httptest.NewRequest("GET", "/api/health", nil))
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), `"unhealthy"`)
}

func TestProfileEndpoints(t *testing.T) {
	ts := newTestServer(t, 0)
	ana, tok := ts.signup("ana@example.com")
	ts.signup("bob@example.com")

	resp := ts.do("PATCH", "/api/users/me", tok, map[string]string{"firstName": "Maja", "avatarUrl": "https://img.example.com/a.png"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	u := decode[model.User](t, resp)
	assert.Equal(t, ana.ID, u.ID)
	assert.Equal(t, "Maja", u.FirstName)
	assert.Equal(t, "Novak", u.LastName)
	assert.Equal(t, ana.Points, u.Points)

	resp = ts.do("PATCH", "/api/users/me", tok, map[string]interface{}{"email": "bob@example.com", "points": 999})
	assert.Equal(t, http.StatusConflict, resp.StatusCode)

	resp = ts.do("PATCH", "/api/users/me", tok, map[string]string{"email": "not-an-email"})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = ts.do("PATCH", "/api/users/me", "", map[string]string{"firstName": "Eve"})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp = ts.do("GET", "/api/users/me", tok, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, ana.Points, decode[model.User](t, resp).Points)
}

func TestPasswordEndpoint(t *testing.T) {
	ts := newTestServer(t, 0)
	_, tok := ts.signup("ana@example.com")
	path := "/api/users/me/password"

	resp := ts.do("PATCH", path, tok, map[string]string{"currentPassword": "wrong-one", "newPassword": "secret2"})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = ts.do("PATCH", path, tok, map[string]string{"currentPassword": "secret1", "newPassword": "secret1"})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = ts.do("PATCH", path, "", map[string]string{"currentPassword": "secret1", "newPassword": "secret2"})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp = ts.do("PATCH", path, tok, map[string]string{"currentPassword": "secret1", "newPassword": "secret2"})
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp = ts.do("POST", "/api/auth/login", "", map[string]string{"email": "ana@example.com", "password": "secret1"})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	resp = ts.do("POST", "/api/auth/login", "", map[string]string{"email": "ana@example.com", "password": "secret2"})
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

type failingGuesses struct{}

func (failingGuesses) SubmitGuess(context.Context, string, string, guess.Submission) (*model.Guess, error) {
	return nil, &guess.Error{Kind: guess.PersistenceFailure, Message: "store unavailable"}
}

func (failingGuesses) TopGuesses(context.Context, string, int) ([]*model.Guess, error) {
	return nil, &guess.Error{Kind: guess.PersistenceFailure, Message: "store unavailable"}
}

func (failingGuesses) HistoryFor(context.Context, string) ([]*model.Guess, error) { return nil, nil }

func TestGuessPersistenceFailure(t *testing.T) {
	jwtp, err := auth.NewJWTProvider("test-secret", time.Hour)
	require.NoError(t, err)
	srv := httptest.NewServer(NewRouter(Deps{Guesses: failingGuesses{}, Identity: jwtp}))
	t.Cleanup(srv.Close)
	ts := &testServer{t: t, srv: srv}

	tok, err := jwtp.Issue(uuid.NewString(), "ana@example.com")
	require.NoError(t, err)
	locPath := "/api/locations/" + uuid.NewString() + "/guesses"

	resp := ts.do("POST", locPath, tok, map[string]interface{}{"latitude": 46.0, "longitude": 14.0})
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
	assert.Equal(t, "2", resp.Header.Get("Retry-After"))
	assert.Equal(t, "PERSISTENCE_FAILURE", errorCode(t, resp))

	resp = ts.do("GET", locPath, "", nil)
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
	assert.Equal(t, "2", resp.Header.Get("Retry-After"))
}
