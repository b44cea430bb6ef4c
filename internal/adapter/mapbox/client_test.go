package mapbox

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testToken         = "test-token"
	contentTypeJSON   = "application/json"
	headerContentType = "Content-Type"
)

func testClient(baseURL string) *Client {
	return &Client{
		token:      testToken,
		httpClient: &http.Client{Timeout: 5 * time.Second},
		baseURL:    baseURL,
		logger:     slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
}

func TestClient_Geocode_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Contains(t, r.URL.Path, "Lodi Rd, Delhi")
		assert.Equal(t, "1", r.URL.Query().Get("limit"))
		assert.Equal(t, testToken, r.URL.Query().Get("access_token"))

		w.Header().Set(headerContentType, contentTypeJSON)
		_, _ = w.Write([]byte(`{
			"type": "FeatureCollection",
			"features": [{
				"id": "address.123",
				"text": "Lodi Road",
				"relevance": 0.95,
				"place_name": "Lodi Road, New Delhi, Delhi, India",
				"center": [77.22, 28.59]
			}]
		}`))
	}))
	defer srv.Close()

	result, err := testClient(srv.URL).Geocode(context.Background(), "Lodi Rd, Delhi")
	require.NoError(t, err)

	assert.Equal(t, 28.59, result.Lat)
	assert.Equal(t, 77.22, result.Lng)
	assert.Equal(t, "Lodi Road, New Delhi, Delhi, India", result.FormattedAddress)
}

func TestClient_Geocode_NoResults(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set(headerContentType, contentTypeJSON)
		require.NoError(t, json.NewEncoder(w).Encode(response{Features: []feature{}}))
	}))
	defer srv.Close()

	result, err := testClient(srv.URL).Geocode(context.Background(), "NONEXISTENT")
	require.NoError(t, err)
	assert.True(t, result.IsZero())
}

func TestClient_Geocode_MalformedCenter(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set(headerContentType, contentTypeJSON)
		require.NoError(t, json.NewEncoder(w).Encode(response{Features: []feature{{Center: []float64{77.22}}}}))
	}))
	defer srv.Close()

	_, err := testClient(srv.URL).Geocode(context.Background(), "Lodi Rd")
	require.Error(t, err)
}

func TestClient_Geocode_APIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"message":"Not Authorized"}`))
	}))
	defer srv.Close()

	c := testClient(srv.URL)
	c.token = "bad-token"

	_, err := c.Geocode(context.Background(), "Lodi Rd, Delhi")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "401")
}

func TestClient_Geocode_Timeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		time.Sleep(200 * time.Millisecond)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	c := testClient(srv.URL)
	c.httpClient = &http.Client{Timeout: 50 * time.Millisecond}

	_, err := c.Geocode(context.Background(), "Lodi Rd, Delhi")
	require.Error(t, err)
}
