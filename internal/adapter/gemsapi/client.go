// Package gemsapi is the client for the backend's hidden-gems REST routes.
package gemsapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/couchcryptid/hidden-gems-service/internal/auth"
	"github.com/couchcryptid/hidden-gems-service/internal/domain"
)

const gemsPath = "/hidden-gems"

// Client lists and creates gems over HTTP.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *slog.Logger
}

// NewClient creates a client for the API rooted at baseURL (for example
// "http://localhost:5000/api").
func NewClient(baseURL string, timeout time.Duration, logger *slog.Logger) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger,
	}
}

type listResponse struct {
	Gems []domain.RawGem `json:"gems"`
}

type createResponse struct {
	Gem *domain.RawGem `json:"gem"`
}

// ListGems fetches every gem, most recent first.
func (c *Client) ListGems(ctx context.Context) ([]domain.RawGem, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+gemsPath, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	var out listResponse
	if err := c.do(req, &out); err != nil {
		return nil, fmt.Errorf("list gems: %w", err)
	}
	return out.Gems, nil
}

// CreateGem persists g with the caller's bearer token from ctx and returns
// the stored record.
func (c *Client) CreateGem(ctx context.Context, g domain.NewGem) (domain.RawGem, error) {
	body, err := json.Marshal(g)
	if err != nil {
		return domain.RawGem{}, fmt.Errorf("encode gem: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+gemsPath, bytes.NewReader(body))
	if err != nil {
		return domain.RawGem{}, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Content-Type", "application/json")
	if token := auth.TokenFromContext(ctx); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	var out createResponse
	if err := c.do(req, &out); err != nil {
		return domain.RawGem{}, fmt.Errorf("create gem: %w", err)
	}
	if out.Gem == nil {
		return domain.RawGem{}, fmt.Errorf("create gem: response has no gem")
	}
	return *out.Gem, nil
}

func (c *Client) do(req *http.Request, out any) error {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		c.logger.Debug("gems api error", "method", req.Method, "status", resp.StatusCode)
		return &StatusError{Code: resp.StatusCode, Body: strings.TrimSpace(string(b))}
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// StatusError is a non-2xx reply from the API.
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("gems API status %d: %s", e.Code, e.Body)
}
