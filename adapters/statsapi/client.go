// Package statsapi is the HTTP client for the player statistics service.
package statsapi

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strings"
	"time"

	"playerscout/internal/errors"
	"playerscout/models"

	"github.com/tidwall/gjson"
)

const (
	searchPath      = "/api/player/search"
	maxResponseSize = 4 << 20
)

// Client queries GET /api/player/search on the statistics service
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a client for baseURL. A nil httpClient uses a client
// without its own timeout; callers bound each search with a context.
func NewClient(baseURL string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: httpClient,
	}
}

// SearchURL returns the lookup URL for name, escaped as a query value
func (c *Client) SearchURL(name string) string {
	escaped := strings.ReplaceAll(url.QueryEscape(name), "+", "%20")
	return c.baseURL + searchPath + "?name=" + escaped
}

// Search performs one lookup. The envelope is decoded whatever the HTTP
// status, since the service reports rejections as JSON with 4xx/5xx codes.
// Any response that is not a JSON object with a success field is an error.
func (c *Client) Search(ctx context.Context, name string) (*models.SearchResponse, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.SearchURL(name), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		log.Printf("[StatsAPI] Request for %q failed: %v", name, err)
		return nil, errors.ExternalServiceError("statsapi", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}
	log.Printf("[StatsAPI] %q -> %d (%d bytes in %v)", name, resp.StatusCode, len(body), time.Since(start).Round(time.Millisecond))

	if !gjson.ValidBytes(body) {
		return nil, fmt.Errorf("invalid JSON response (status %d)", resp.StatusCode)
	}
	root := gjson.ParseBytes(body)
	if !root.IsObject() || !root.Get("success").Exists() {
		return nil, fmt.Errorf("unexpected response shape (status %d)", resp.StatusCode)
	}

	var envelope models.SearchResponse
	if err := json.Unmarshal(body, &envelope); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}
	return &envelope, nil
}
