package respond

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteError(t *testing.T) {
	rr := httptest.NewRecorder()
	WriteError(rr, http.StatusPaymentRequired, "INSUFFICIENT_POINTS", "not enough points")

	assert.Equal(t, http.StatusPaymentRequired, rr.Code)
	assert.Equal(t, "application/json", rr.Header().Get("Content-Type"))

	var body ErrorResponse
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&body))
	assert.Equal(t, ErrorResponse{Error: "Payment Required", Code: "INSUFFICIENT_POINTS", Message: "not enough points"}, body)
}

func TestWriteRetryable(t *testing.T) {
	rr := httptest.NewRecorder()
	WriteRetryable(rr, http.StatusServiceUnavailable, "PERSISTENCE_FAILURE", "try again", 2)
	assert.Equal(t, http.StatusServiceUnavailable, rr.Code)
	assert.Equal(t, "2", rr.Header().Get("Retry-After"))
}
