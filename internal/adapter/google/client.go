// Package google implements photo and geocode providers on the Google Maps
// Platform web services.
package google

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/couchcryptid/hidden-gems-service/internal/domain"
)

const (
	defaultBaseURL = "https://maps.googleapis.com/maps/api"

	// locationBiasMeters is the radius of the circle used to prefer candidates
	// near known coordinates.
	locationBiasMeters = 2000
)

// Client implements domain.PhotoProvider and domain.GeocodeProvider.
type Client struct {
	apiKey     string
	httpClient *http.Client
	baseURL    string
	maxWidth   int
	logger     *slog.Logger
}

// NewClient creates a Google Maps client. maxWidth bounds the photo size
// requested from the Place Photo endpoint.
func NewClient(apiKey string, timeout time.Duration, maxWidth int, logger *slog.Logger) *Client {
	return &Client{
		apiKey: apiKey,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		baseURL:  defaultBaseURL,
		maxWidth: maxWidth,
		logger:   logger,
	}
}

// FindPhoto looks up the place by name, biased towards lat/lng when both are
// known, and returns the public image URL of its first photo. An empty URL
// means the place or its photos were not found.
func (c *Client) FindPhoto(ctx context.Context, name string, lat, lng *float64) (string, error) {
	params := url.Values{
		"input":     {name},
		"inputtype": {"textquery"},
		"fields":    {"place_id,photos"},
		"key":       {c.apiKey},
	}
	if lat != nil && lng != nil {
		params.Set("locationbias", fmt.Sprintf("circle:%d@%.6f,%.6f", locationBiasMeters, *lat, *lng))
	}

	var resp findPlaceResponse
	if err := c.get(ctx, "/place/findplacefromtext/json", params, &resp); err != nil {
		return "", fmt.Errorf("find place: %w", err)
	}
	if err := checkStatus(resp.Status, resp.ErrorMessage); err != nil {
		return "", fmt.Errorf("find place: %w", err)
	}

	for _, cand := range resp.Candidates {
		for _, p := range cand.Photos {
			if p.PhotoReference != "" {
				return c.photoURL(ctx, p.PhotoReference)
			}
		}
	}
	c.logger.Debug("google places returned no photo", "name", name, "candidates", len(resp.Candidates))
	return "", nil
}

// Geocode resolves an address with the Geocoding API. A zero result means
// nothing matched.
func (c *Client) Geocode(ctx context.Context, address string) (domain.GeocodeResult, error) {
	params := url.Values{
		"address": {address},
		"key":     {c.apiKey},
	}

	var resp geocodeResponse
	if err := c.get(ctx, "/geocode/json", params, &resp); err != nil {
		return domain.GeocodeResult{}, fmt.Errorf("geocode: %w", err)
	}
	if err := checkStatus(resp.Status, resp.ErrorMessage); err != nil {
		return domain.GeocodeResult{}, fmt.Errorf("geocode: %w", err)
	}
	if len(resp.Results) == 0 {
		return domain.GeocodeResult{}, nil
	}

	r := resp.Results[0]
	return domain.GeocodeResult{
		Lat:              r.Geometry.Location.Lat,
		Lng:              r.Geometry.Location.Lng,
		FormattedAddress: r.FormattedAddress,
	}, nil
}

// photoURL resolves a photo reference to the keyless image URL the Place
// Photo endpoint redirects to. The endpoint URL itself carries the API key
// and must never leave the service.
func (c *Client) photoURL(ctx context.Context, ref string) (string, error) {
	params := url.Values{
		"maxwidth":        {strconv.Itoa(c.maxWidth)},
		"photo_reference": {ref},
		"key":             {c.apiKey},
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/place/photo?"+params.Encode(), nil)
	if err != nil {
		return "", fmt.Errorf("place photo: create request: %w", err)
	}

	noRedirect := *c.httpClient
	noRedirect.CheckRedirect = func(*http.Request, []*http.Request) error {
		return http.ErrUseLastResponse
	}
	resp, err := noRedirect.Do(req)
	if err != nil {
		return "", fmt.Errorf("place photo: request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 300 || resp.StatusCode >= 400 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return "", fmt.Errorf("place photo: unexpected status %d: %s", resp.StatusCode, body)
	}
	loc, err := resp.Location()
	if err != nil {
		return "", fmt.Errorf("place photo: %w", err)
	}
	if loc.Query().Has("key") {
		return "", fmt.Errorf("place photo: redirect target carries an API key")
	}
	return loc.String(), nil
}

func (c *Client) get(ctx context.Context, path string, params url.Values, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path+"?"+params.Encode(), nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("google maps API error: status %d: %s", resp.StatusCode, body)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// checkStatus maps the API status field. ZERO_RESULTS is a successful empty reply.
func checkStatus(status, message string) error {
	switch status {
	case "OK", "ZERO_RESULTS":
		return nil
	}
	if message != "" {
		return fmt.Errorf("status %s: %s", status, message)
	}
	return fmt.Errorf("status %s", status)
}

// Google Maps API response types.

type findPlaceResponse struct {
	Candidates []struct {
		PlaceID string  `json:"place_id"`
		Photos  []photo `json:"photos"`
	} `json:"candidates"`
	Status       string `json:"status"`
	ErrorMessage string `json:"error_message"`
}

type photo struct {
	PhotoReference string `json:"photo_reference"`
	Width          int    `json:"width"`
	Height         int    `json:"height"`
}

type geocodeResponse struct {
	Results []struct {
		FormattedAddress string `json:"formatted_address"`
		Geometry         struct {
			Location struct {
				Lat float64 `json:"lat"`
				Lng float64 `json:"lng"`
			} `json:"location"`
		} `json:"geometry"`
	} `json:"results"`
	Status       string `json:"status"`
	ErrorMessage string `json:"error_message"`
}
