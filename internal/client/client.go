// Package client talks to the remote crop simulation service.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/cropsim/crop-dashboard/internal/domain"
)

// RequestIDHeader carries the per-request correlation id.
const RequestIDHeader = "X-Request-ID"

// maxBodyBytes bounds how much of a response is read.
const maxBodyBytes = 16 << 20

// Service is the remote crop simulation API
type Service interface {
	ListCrops(ctx context.Context) ([]domain.Crop, error)
	Simulate(ctx context.Context, cropID string, req domain.SimulateRequest) (*domain.SimulationResult, error)
	Compare(ctx context.Context, req domain.CompareRequest) (domain.Comparison, error)
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithTimeout bounds every request. Zero means no timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.timeout = d }
}

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(c *Client) {
		if l != nil {
			c.log = l
		}
	}
}

// Client is the HTTP implementation of Service
type Client struct {
	base    *url.URL
	http    *http.Client
	timeout time.Duration
	log     *zap.Logger
	newID   func() string
}

var _ Service = (*Client)(nil)

// New creates a client for the service rooted at baseURL.
func New(baseURL string, opts ...Option) (*Client, error) {
	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("invalid base URL %q: %w", baseURL, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("invalid base URL %q: scheme must be http or https", baseURL)
	}
	if u.Host == "" {
		return nil, fmt.Errorf("invalid base URL %q: missing host", baseURL)
	}
	c := &Client{
		base:  u,
		http:  http.DefaultClient,
		log:   zap.NewNop(),
		newID: func() string { return uuid.NewString() },
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// BaseURL returns the service root.
func (c *Client) BaseURL() string { return c.base.String() }

// ListCrops fetches the crop catalog.
func (c *Client) ListCrops(ctx context.Context) ([]domain.Crop, error) {
	data, err := c.do(ctx, "list", http.MethodGet, "/list", nil)
	if err != nil {
		return nil, err
	}
	var crops []domain.Crop
	if err := json.Unmarshal(data, &crops); err != nil {
		return nil, &domain.DecodeError{Op: "list", Err: err}
	}
	if crops == nil {
		return nil, &domain.DecodeError{Op: "list", Err: errors.New("expected a JSON array of crops")}
	}
	return crops, nil
}

// Simulate runs a multi-year simulation for one crop.
func (c *Client) Simulate(ctx context.Context, cropID string, req domain.SimulateRequest) (*domain.SimulationResult, error) {
	data, err := c.do(ctx, "simulate", http.MethodPost, "/simulate/"+url.PathEscape(cropID), req)
	if err != nil {
		return nil, err
	}
	return domain.DecodeSimulation(data)
}

// Compare compares two crops in the mode named by req.Option.
func (c *Client) Compare(ctx context.Context, req domain.CompareRequest) (domain.Comparison, error) {
	data, err := c.do(ctx, "compare", http.MethodPost, "/compare", req)
	if err != nil {
		return nil, err
	}
	return domain.DecodeComparison(req.Option, data)
}

func (c *Client) do(ctx context.Context, op, method, path string, body any) ([]byte, error) {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("%s: failed to encode request: %w", op, err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.base.String()+path, reader)
	if err != nil {
		return nil, &domain.NetworkError{Op: op, Err: err}
	}
	id := c.newID()
	req.Header.Set(RequestIDHeader, id)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	log := c.log.With(zap.String("op", op), zap.String("request_id", id))
	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		log.Warn("request failed", zap.Error(err))
		return nil, &domain.NetworkError{Op: op, Err: err}
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		log.Warn("reading response failed", zap.Error(err))
		return nil, &domain.NetworkError{Op: op, StatusCode: resp.StatusCode, Err: err}
	}
	log.Debug("request complete",
		zap.String("method", method),
		zap.String("path", path),
		zap.Int("status", resp.StatusCode),
		zap.Duration("elapsed", time.Since(start)))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &domain.NetworkError{Op: op, StatusCode: resp.StatusCode, Err: errors.New(errorDetail(resp.Status, data))}
	}
	return data, nil
}

// errorDetail extracts the service's {"detail": ...} message, falling back
// to the HTTP status text.
func errorDetail(status string, data []byte) string {
	var body struct {
		Detail json.RawMessage `json:"detail"`
	}
	if err := json.Unmarshal(data, &body); err != nil || len(body.Detail) == 0 {
		return status
	}
	var msg string
	if err := json.Unmarshal(body.Detail, &msg); err == nil && msg != "" {
		return msg
	}
	// validation failures carry a list of {loc, msg} objects
	var items []struct {
		Loc []any  `json:"loc"`
		Msg string `json:"msg"`
	}
	if err := json.Unmarshal(body.Detail, &items); err == nil && len(items) > 0 {
		parts := make([]string, 0, len(items))
		for _, it := range items {
			loc := make([]string, 0, len(it.Loc))
			for _, l := range it.Loc {
				loc = append(loc, fmt.Sprint(l))
			}
			if len(loc) > 0 {
				parts = append(parts, strings.Join(loc, ".")+": "+it.Msg)
			} else {
				parts = append(parts, it.Msg)
			}
		}
		return strings.Join(parts, "; ")
	}
	return status
}
