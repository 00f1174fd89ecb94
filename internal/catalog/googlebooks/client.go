// Package googlebooks is a catalog.Catalog backed by the Google Books volumes API.
package googlebooks

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/storyspine/storyspine-server/internal/catalog"
	"github.com/storyspine/storyspine-server/internal/domain"
	"github.com/storyspine/storyspine-server/internal/ratelimit"
)

const (
	defaultBaseURL    = "https://www.googleapis.com/books/v1"
	defaultTimeout    = 8 * time.Second
	defaultMaxResults = 20
	maxMaxResults     = 40 // API ceiling

	maxBodyBytes = 4 << 20
)

// Config configures the client. Zero values take the defaults.
type Config struct {
	BaseURL    string
	APIKey     string
	Timeout    time.Duration // Bounds rate-limit wait plus the request
	MaxResults int
	RPS        float64
	Burst      int
}

// Client is a rate-limited Google Books client.
type Client struct {
	http       *http.Client
	limiter    *ratelimit.KeyedRateLimiter
	logger     *slog.Logger
	baseURL    *url.URL
	apiKey     string
	timeout    time.Duration
	maxResults int
}

var _ catalog.Catalog = (*Client)(nil)

// New creates a new Google Books client.
func New(cfg Config, logger *slog.Logger) (*Client, error) {
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultBaseURL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}
	if cfg.MaxResults <= 0 {
		cfg.MaxResults = defaultMaxResults
	}
	if cfg.RPS <= 0 {
		cfg.RPS = 5
	}
	if cfg.Burst <= 0 {
		cfg.Burst = 10
	}

	base, err := url.Parse(strings.TrimRight(cfg.BaseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("parse catalog base url: %w", err)
	}

	return &Client{
		http:       &http.Client{Timeout: cfg.Timeout},
		limiter:    ratelimit.New(cfg.RPS, cfg.Burst),
		logger:     logger,
		baseURL:    base,
		apiKey:     cfg.APIKey,
		timeout:    cfg.Timeout,
		maxResults: min(cfg.MaxResults, maxMaxResults),
	}, nil
}

// Close releases resources held by the client.
func (c *Client) Close() {
	c.limiter.Stop()
}

// GetByExternalID fetches one volume.
func (c *Client) GetByExternalID(ctx context.Context, externalID string) (*domain.CatalogBook, error) {
	externalID = strings.TrimSpace(externalID)
	if externalID == "" || strings.ContainsAny(externalID, "/?#") {
		return nil, catalog.WrapError("get", externalID, catalog.ErrNotFound)
	}

	var v rawVolume
	if err := c.get(ctx, "/volumes/"+externalID, nil, &v); err != nil {
		return nil, catalog.WrapError("get", externalID, err)
	}
	if v.ID == "" {
		v.ID = externalID
	}
	return toCatalogBook(v), nil
}

// Search runs a free-text query. maxResults <= 0 uses the configured default;
// larger values are capped.
func (c *Client) Search(ctx context.Context, query string, maxResults int) ([]domain.CatalogSearchResult, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return []domain.CatalogSearchResult{}, nil
	}
	if maxResults <= 0 || maxResults > c.maxResults {
		maxResults = c.maxResults
	}

	params := url.Values{}
	params.Set("q", query)
	params.Set("maxResults", strconv.Itoa(maxResults))
	params.Set("printType", "books")

	var resp rawVolumes
	if err := c.get(ctx, "/volumes", params, &resp); err != nil {
		return nil, catalog.WrapError("search", query, err)
	}

	results := make([]domain.CatalogSearchResult, 0, len(resp.Items))
	for _, v := range resp.Items {
		if v.ID == "" {
			continue
		}
		results = append(results, toSearchResult(v))
	}
	return results, nil
}

// get performs one bounded, rate-limited GET and decodes the JSON body into out.
func (c *Client) get(ctx context.Context, path string, params url.Values, out any) error {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	if err := c.limiter.Wait(ctx, c.baseURL.Host); err != nil {
		return fmt.Errorf("%w: rate limit wait: %v", catalog.ErrUnavailable, err)
	}

	if params == nil {
		params = url.Values{}
	}
	if c.apiKey != "" {
		params.Set("key", c.apiKey)
	}
	u := *c.baseURL
	u.Path += path
	u.RawQuery = params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", "StorySpine/1.0")

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", catalog.ErrUnavailable, err)
	}
	defer resp.Body.Close()

	c.logger.Debug("catalog request",
		"path", path,
		"status", resp.StatusCode,
		"duration", time.Since(start),
	)

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return fmt.Errorf("%w: read response: %v", catalog.ErrUnavailable, err)
	}

	switch {
	case resp.StatusCode == http.StatusOK:
	case resp.StatusCode == http.StatusNotFound, resp.StatusCode == http.StatusBadRequest:
		return catalog.ErrNotFound
	case resp.StatusCode == http.StatusTooManyRequests, resp.StatusCode >= 500:
		return fmt.Errorf("%w: status %d", catalog.ErrUnavailable, resp.StatusCode)
	default:
		return fmt.Errorf("%w: unexpected status %d", catalog.ErrUnavailable, resp.StatusCode)
	}

	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("%w: decode response: %v", catalog.ErrUnavailable, err)
	}
	return nil
}
