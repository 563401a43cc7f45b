// Package validator checks candidate tenants against the platform backend.
// This is part of the Imperative Shell - it performs the one network call of
// the routing pipeline.
package validator

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/belovedchibuikem/smart-housing-pro-sub007/internal/core/tenant"
	"github.com/belovedchibuikem/smart-housing-pro-sub007/internal/shell/metrics"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
)

// ErrUnavailable is returned when the backend could not be reached.
// Callers proceed without tenant identity.
var ErrUnavailable = errors.New("tenant validation backend unavailable")

// maxResponseBytes bounds the validation response body.
const maxResponseBytes = 64 << 10

// Result is the outcome of a validation call that reached the backend.
type Result struct {
	Valid  bool
	Tenant *tenant.Identity // may be nil even when Valid
}

// Validator validates a host (and optional slug hint) against the backend.
type Validator interface {
	Validate(ctx context.Context, host, slug string) (Result, error)
}

// Config holds validator client configuration.
type Config struct {
	BaseURL string        // backend API base URL, e.g., "https://api.platform.com/v1"
	Timeout time.Duration // per-call timeout; zero means 3s
}

// Client calls GET {BaseURL}/tenant/validate.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *slog.Logger
}

// NewClient creates a new validator client.
func NewClient(cfg Config, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 3 * time.Second
	}
	return &Client{
		baseURL: strings.TrimSuffix(cfg.BaseURL, "/"),
		httpClient: &http.Client{
			Timeout: timeout,
		},
		logger: logger.With("component", "validator"),
	}
}

// validateResponse is the backend's response body.
type validateResponse struct {
	Valid  bool             `json:"valid"`
	Tenant *tenant.Identity `json:"tenant,omitempty"`
}

// Validate issues a single request, without retry.
// Non-2xx responses, malformed bodies and valid:false all report not found
// with a nil error. Transport failures and timeouts wrap ErrUnavailable.
func (c *Client) Validate(ctx context.Context, host, slug string) (Result, error) {
	start := time.Now()

	query := url.Values{"host": {host}}
	if slug != "" {
		query.Set("slug", slug)
	}
	endpoint := c.baseURL + "/tenant/validate?" + query.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		metrics.RecordValidation(metrics.OutcomeUnavailable, time.Since(start).Seconds())
		return Result{}, fmt.Errorf("%w: create request: %w", ErrUnavailable, err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", requestID(ctx))

	resp, err := c.httpClient.Do(req)
	if err != nil {
		metrics.RecordValidation(metrics.OutcomeUnavailable, time.Since(start).Seconds())
		return Result{}, fmt.Errorf("%w: send request: %w", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		io.Copy(io.Discard, io.LimitReader(resp.Body, maxResponseBytes))
		c.logger.Debug("tenant validation rejected",
			"host", host,
			"slug", slug,
			"status", resp.StatusCode,
		)
		metrics.RecordValidation(metrics.OutcomeNotFound, time.Since(start).Seconds())
		return Result{}, nil
	}

	var body validateResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxResponseBytes)).Decode(&body); err != nil {
		c.logger.Warn("malformed tenant validation response",
			"host", host,
			"slug", slug,
			"error", err,
		)
		metrics.RecordValidation(metrics.OutcomeNotFound, time.Since(start).Seconds())
		return Result{}, nil
	}

	if !body.Valid {
		metrics.RecordValidation(metrics.OutcomeNotFound, time.Since(start).Seconds())
		return Result{}, nil
	}

	metrics.RecordValidation(metrics.OutcomeFound, time.Since(start).Seconds())
	return Result{Valid: true, Tenant: body.Tenant}, nil
}

// requestID returns the chi request id of ctx, or a fresh one.
func requestID(ctx context.Context) string {
	if id := middleware.GetReqID(ctx); id != "" {
		return id
	}
	return uuid.NewString()
}
