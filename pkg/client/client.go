// Package client provides the HTTP client for the upstream employee server.
// It translates domain reads and writes into upstream calls, decodes the
// response envelope and classifies every failure. It never touches the cache.
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
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/Sternrassler/employee-api/pkg/employee"
	"github.com/Sternrassler/employee-api/pkg/ratelimit"
)

// Prometheus metrics for upstream client operations.
var (
	upstreamRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "employee_upstream_requests_total",
		Help: "Total upstream employee server requests by operation and status",
	}, []string{"op", "status"})

	upstreamRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "employee_upstream_request_duration_seconds",
		Help:    "Upstream request duration in seconds by operation",
		Buckets: []float64{0.01, 0.05, 0.1, 0.5, 1, 2, 5, 10},
	}, []string{"op"})

	upstreamErrorsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "employee_upstream_errors_total",
		Help: "Total upstream errors by class",
	}, []string{"class"})
)

// Operation names used in logs, metrics and errors.
const (
	OpFetchAll  = "fetch_all"
	OpFetchByID = "fetch_by_id"
	OpCreate    = "create"
	OpDelete    = "delete"
)

// Client talks to the upstream employee server.
type Client struct {
	httpClient *http.Client
	baseURL    string
	throttle   *ratelimit.Tracker
	config     Config
	logger     zerolog.Logger
}

// Config holds the client configuration.
type Config struct {
	// BaseURL is the employee collection URL,
	// e.g. "http://localhost:8112/api/v1/employee".
	BaseURL string

	// UserAgent header sent with every request.
	UserAgent string

	// Timeout bounds each HTTP round trip.
	Timeout time.Duration

	// Retry controls retries of server and network failures.
	Retry RetryConfig

	// Throttle is shared by every client of the same upstream server.
	// New creates one when nil.
	Throttle *ratelimit.Tracker

	// HTTPClient overrides the underlying HTTP client (Timeout is then ignored).
	HTTPClient *http.Client
}

// DefaultConfig returns a safe default configuration.
func DefaultConfig(baseURL string) Config {
	return Config{
		BaseURL:   baseURL,
		UserAgent: "employee-api/0.1.0",
		Timeout:   30 * time.Second,
		Retry:     DefaultRetryConfig(),
	}
}

// New creates a new upstream client.
func New(cfg Config) (*Client, error) {
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("base url is required")
	}

	parsed, err := url.Parse(cfg.BaseURL)
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return nil, fmt.Errorf("base url must be absolute (got %q)", cfg.BaseURL)
	}

	if cfg.UserAgent == "" {
		return nil, fmt.Errorf("user-agent is required")
	}

	if cfg.Retry.MaxAttempts < 1 {
		return nil, fmt.Errorf("retry max_attempts must be >= 1 (got %d)", cfg.Retry.MaxAttempts)
	}

	logger := log.With().Str("component", "employee-client").Logger()

	throttle := cfg.Throttle
	if throttle == nil {
		throttle = ratelimit.NewTracker(logger)
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.Timeout}
	}

	return &Client{
		httpClient: httpClient,
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		throttle:   throttle,
		config:     cfg,
		logger:     logger,
	}, nil
}

// FetchAll returns every employee known to the upstream server.
func (c *Client) FetchAll(ctx context.Context) ([]employee.Employee, error) {
	var env envelope[[]*entity]
	if err := c.do(ctx, OpFetchAll, http.MethodGet, c.baseURL, nil, &env); err != nil {
		c.logger.Error().Err(err).Str("op", OpFetchAll).Msg("Failed to load employees from upstream")
		return nil, err
	}

	if env.Data == nil {
		err := &UpstreamError{Op: OpFetchAll, StatusCode: http.StatusOK, ErrorClass: ErrorClassDecode, Message: "envelope has no data"}
		upstreamErrorsTotal.WithLabelValues(string(ErrorClassDecode)).Inc()
		c.logger.Error().Err(err).Str("op", OpFetchAll).Msg("Failed to load employees from upstream")
		return nil, err
	}

	employees := make([]employee.Employee, 0, len(env.Data))
	for _, e := range env.Data {
		if e == nil {
			continue
		}
		employees = append(employees, *e.toEmployee())
	}
	return employees, nil
}

// FetchByID returns a single employee. It returns an error wrapping
// ErrNotFound when the upstream server has no such record.
func (c *Client) FetchByID(ctx context.Context, id uuid.UUID) (*employee.Employee, error) {
	var env envelope[*entity]
	err := c.do(ctx, OpFetchByID, http.MethodGet, c.byIDURL(id), nil, &env)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			c.logger.Info().Str("id", id.String()).Msg("Employee not found upstream")
		} else {
			c.logger.Error().Err(err).Str("op", OpFetchByID).Str("id", id.String()).
				Msg("Failed to load employee by id from upstream")
		}
		return nil, err
	}

	if env.Data == nil {
		c.logger.Info().Str("id", id.String()).Msg("Upstream returned no employee data")
		return nil, fmt.Errorf("%s %s: %w", OpFetchByID, id, ErrNotFound)
	}

	return env.Data.toEmployee(), nil
}

// Create stores a new employee upstream and returns the full record the
// server assigned (identifier, email, ...).
func (c *Client) Create(ctx context.Context, input employee.CreateInput) (*employee.Employee, error) {
	var env envelope[*entity]
	if err := c.do(ctx, OpCreate, http.MethodPost, c.baseURL, newCreatePayload(input), &env); err != nil {
		c.logger.Error().Err(err).Str("op", OpCreate).Str("name", input.Name).
			Msg("Failed to save new employee upstream")
		return nil, err
	}

	if env.Data == nil {
		err := &UpstreamError{Op: OpCreate, StatusCode: http.StatusOK, ErrorClass: ErrorClassDecode, Message: "envelope has no data"}
		upstreamErrorsTotal.WithLabelValues(string(ErrorClassDecode)).Inc()
		c.logger.Error().Err(err).Str("op", OpCreate).Msg("Failed to save new employee upstream")
		return nil, err
	}

	return env.Data.toEmployee(), nil
}

// Remove deletes the employee with the given id and returns its name.
//
// The upstream delete is keyed by name, so the record is fetched first; the
// lookup always goes to the server. A missing record short-circuits with
// ErrNotFound before any delete is sent, and an unconfirmed delete returns
// ErrNotDeleted.
func (c *Client) Remove(ctx context.Context, id uuid.UUID) (string, error) {
	existing, err := c.FetchByID(ctx, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			c.logger.Info().Str("id", id.String()).Msg("Employee not found, cannot delete")
		}
		return "", err
	}

	var env envelope[*bool]
	if err := c.do(ctx, OpDelete, http.MethodDelete, c.baseURL, deletePayload{Name: existing.Name}, &env); err != nil {
		c.logger.Error().Err(err).Str("op", OpDelete).Str("id", id.String()).
			Msg("Failed to delete employee upstream")
		return "", err
	}

	if env.Data == nil || !*env.Data {
		c.logger.Warn().Str("id", id.String()).Str("name", existing.Name).
			Msg("Upstream did not confirm delete")
		return "", fmt.Errorf("%s %s: %w", OpDelete, id, ErrNotDeleted)
	}

	return existing.Name, nil
}

// Throttle returns the tracker gating this client's requests.
func (c *Client) Throttle() *ratelimit.Tracker {
	return c.throttle
}

// Close releases idle connections.
func (c *Client) Close() error {
	c.httpClient.CloseIdleConnections()
	return nil
}

func (c *Client) byIDURL(id uuid.UUID) string {
	return c.baseURL + "/" + id.String()
}

// do performs one upstream call (with retries if configured) and decodes
// the envelope into out.
func (c *Client) do(ctx context.Context, op, method, target string, body any, out any) error {
	startTime := time.Now()
	defer func() {
		upstreamRequestDuration.WithLabelValues(op).Observe(time.Since(startTime).Seconds())
	}()

	if !c.throttle.ShouldAllowRequest() {
		upstreamRequestsTotal.WithLabelValues(op, "throttled").Inc()
		upstreamErrorsTotal.WithLabelValues(string(ErrorClassRateLimit)).Inc()
		return &UpstreamError{
			Op:         op,
			StatusCode: http.StatusTooManyRequests,
			ErrorClass: ErrorClassRateLimit,
			Message:    "upstream cooldown active",
		}
	}

	var payload []byte
	if body != nil {
		var err error
		payload, err = json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode %s request: %w", op, err)
		}
	}

	return retryWithBackoff(ctx, c.config.Retry, func() error {
		return c.attempt(ctx, op, method, target, payload, out)
	})
}

func (c *Client) attempt(ctx context.Context, op, method, target string, payload []byte, out any) error {
	var bodyReader io.Reader
	if payload != nil {
		bodyReader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, target, bodyReader)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", c.config.UserAgent)
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	c.logger.Debug().
		Str("op", op).
		Str("method", method).
		Str("url", target).
		Msg("Executing upstream request")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		upstreamErrorsTotal.WithLabelValues(string(ErrorClassNetwork)).Inc()
		upstreamRequestsTotal.WithLabelValues(op, "network_error").Inc()
		return &UpstreamError{Op: op, ErrorClass: ErrorClassNetwork, Message: "request failed", Err: err}
	}
	defer resp.Body.Close()

	c.throttle.UpdateFromResponse(resp.StatusCode, resp.Header)
	upstreamRequestsTotal.WithLabelValues(op, strconv.Itoa(resp.StatusCode)).Inc()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		errClass := classifyStatus(resp.StatusCode)
		upstreamErrorsTotal.WithLabelValues(string(errClass)).Inc()

		upstreamErr := &UpstreamError{
			Op:         op,
			StatusCode: resp.StatusCode,
			ErrorClass: errClass,
			Message:    errorMessage(resp),
		}
		if resp.StatusCode == http.StatusNotFound {
			upstreamErr.Err = ErrNotFound
		}
		return upstreamErr
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		upstreamErrorsTotal.WithLabelValues(string(ErrorClassDecode)).Inc()
		return &UpstreamError{
			Op:         op,
			StatusCode: resp.StatusCode,
			ErrorClass: ErrorClassDecode,
			Message:    "decode response envelope",
			Err:        err,
		}
	}

	return nil
}

// classifyStatus categorizes a non-2xx status for observability and retry.
func classifyStatus(statusCode int) ErrorClass {
	switch {
	case statusCode == http.StatusTooManyRequests:
		return ErrorClassRateLimit
	case statusCode >= 500:
		return ErrorClassServer
	default:
		return ErrorClassClient
	}
}

// errorMessage prefers the envelope's error field over the bare status line.
func errorMessage(resp *http.Response) string {
	var env envelope[json.RawMessage]
	data, err := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	if err == nil && json.Unmarshal(data, &env) == nil && env.Error != "" {
		return env.Error
	}
	return resp.Status
}
