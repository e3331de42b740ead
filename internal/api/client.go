package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rileyhilliard/plantdash/internal/errors"
	"github.com/rileyhilliard/plantdash/internal/logger"
)

// Backend is everything the dashboard needs from the plant backend.
type Backend interface {
	ListPlants(ctx context.Context) ([]PlantProfile, error)
	ListSavedConfigs(ctx context.Context) ([]SavedConfig, error)
	CreateSavedConfig(ctx context.Context, cfg Configuration) (*SavedConfig, error)
	GetConfig(ctx context.Context) (*Configuration, error)
	SaveConfig(ctx context.Context, cfg Configuration) (*Configuration, error)
	ActivateConfig(ctx context.Context, plantConfigID string) (*Configuration, error)
	LatestObservations(ctx context.Context, q Query) ([]Sample, error)
	LatestRecommendations(ctx context.Context, q Query) (*RecommendationsResponse, error)
}

// StatusError is a non-2xx answer. Body is the raw response text.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("http %d: %s", e.StatusCode, e.Body)
}

// Client is the HTTP implementation of Backend.
type Client struct {
	base string
	http *http.Client
	log  logger.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithTimeout bounds every request. Zero (the default) means no timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.http.Timeout = d
	}
}

// WithHTTPClient swaps the underlying http.Client.
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) {
		if h != nil {
			c.http = h
		}
	}
}

// WithLogger routes request diagnostics to l.
func WithLogger(l logger.Logger) Option {
	return func(c *Client) {
		if l != nil {
			c.log = l
		}
	}
}

// NewClient creates a client for the API rooted at baseURL
// (e.g., "http://localhost:5000/api").
func NewClient(baseURL string, opts ...Option) *Client {
	c := &Client{
		base: strings.TrimRight(baseURL, "/"),
		http: &http.Client{},
		log:  logger.Noop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// BaseURL returns the API root the client talks to.
func (c *Client) BaseURL() string {
	return c.base
}

var _ Backend = (*Client)(nil)

func (c *Client) ListPlants(ctx context.Context) ([]PlantProfile, error) {
	var out []PlantProfile
	if err := c.do(ctx, http.MethodGet, "/plants", nil, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) ListSavedConfigs(ctx context.Context) ([]SavedConfig, error) {
	var out []SavedConfig
	if err := c.do(ctx, http.MethodGet, "/plants/configs", nil, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) CreateSavedConfig(ctx context.Context, cfg Configuration) (*SavedConfig, error) {
	var out SavedConfig
	if err := c.do(ctx, http.MethodPost, "/plants/configs", nil, cfg, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) GetConfig(ctx context.Context) (*Configuration, error) {
	var out Configuration
	if err := c.do(ctx, http.MethodGet, "/config", nil, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) SaveConfig(ctx context.Context, cfg Configuration) (*Configuration, error) {
	var out Configuration
	if err := c.do(ctx, http.MethodPost, "/config", nil, cfg, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) ActivateConfig(ctx context.Context, plantConfigID string) (*Configuration, error) {
	body := map[string]string{"plantConfigId": plantConfigID}
	var out Configuration
	if err := c.do(ctx, http.MethodPost, "/config/activate", nil, body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) LatestObservations(ctx context.Context, q Query) ([]Sample, error) {
	var out ObservationsResponse
	if err := c.do(ctx, http.MethodGet, "/observations/latest", q.Values(), nil, &out); err != nil {
		return nil, err
	}
	return out.Items, nil
}

func (c *Client) LatestRecommendations(ctx context.Context, q Query) (*RecommendationsResponse, error) {
	var out RecommendationsResponse
	if err := c.do(ctx, http.MethodGet, "/recommendations/latest", q.Values(), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Health probes GET /health. Not part of Backend; only doctor needs it.
func (c *Client) Health(ctx context.Context) (*HealthStatus, error) {
	var out HealthStatus
	if err := c.do(ctx, http.MethodGet, "/health", nil, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// do performs one JSON round-trip. Transport failures come back as
// ErrNetwork, non-2xx answers as ErrBackend carrying the body text.
func (c *Client) do(ctx context.Context, method, path string, query url.Values, body, out interface{}) error {
	endpoint := c.base + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return errors.WrapWithCode(err, errors.ErrInput, "Could not encode request", "")
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return errors.WrapWithCode(err, errors.ErrConfig,
			"Invalid backend URL: "+endpoint,
			"Check api.base_url in .plantdash.yaml")
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.log.Debug("%s %s failed after %s: %v", method, path, time.Since(start), err)
		return errors.WrapWithCode(err, errors.ErrNetwork,
			"Backend unreachable",
			"Run 'plantdash doctor' to check the connection")
	}
	defer resp.Body.Close()

	c.log.Debug("%s %s -> %d (%s)", method, path, resp.StatusCode, time.Since(start))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		raw, _ := io.ReadAll(resp.Body)
		text := strings.TrimSpace(string(raw))
		if text == "" {
			text = http.StatusText(resp.StatusCode)
		}
		return errors.WrapWithCode(&StatusError{StatusCode: resp.StatusCode, Body: text},
			errors.ErrBackend, text, "")
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return errors.WrapWithCode(err, errors.ErrBackend,
			fmt.Sprintf("Unexpected response from %s %s", method, path), "")
	}
	return nil
}
