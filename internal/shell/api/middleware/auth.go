// Package middleware provides HTTP middleware shared by the edge's own
// endpoints.
package middleware

import (
	"crypto/subtle"
	"encoding/json"
	"log/slog"
	"net/http"
)

// HeaderEdgeSecret carries the admin shared secret.
const HeaderEdgeSecret = "X-Edge-Secret"

// =============================================================================
// Secret Configuration
// =============================================================================

// SecretConfig holds configuration for the shared-secret middleware.
type SecretConfig struct {
	// SharedSecret must match the X-Edge-Secret header. An empty secret
	// rejects every request.
	SharedSecret string

	// Logger for middleware logging.
	Logger *slog.Logger
}

// =============================================================================
// Secret Middleware
// =============================================================================

// SecretMiddleware guards admin endpoints with a shared secret.
type SecretMiddleware struct {
	config SecretConfig
}

// NewSecretMiddleware creates a new shared-secret middleware.
func NewSecretMiddleware(cfg SecretConfig) *SecretMiddleware {
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	return &SecretMiddleware{config: cfg}
}

// Handler returns the middleware handler function.
func (m *SecretMiddleware) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !m.valid(r.Header.Get(HeaderEdgeSecret)) {
			m.config.Logger.Warn("invalid edge secret",
				"remote_addr", r.RemoteAddr,
				"path", r.URL.Path,
			)
			WriteJSONError(w, http.StatusForbidden, "Forbidden", "Invalid edge secret", "forbidden")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (m *SecretMiddleware) valid(got string) bool {
	if m.config.SharedSecret == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(got), []byte(m.config.SharedSecret)) == 1
}

// =============================================================================
// JSON Error Response
// =============================================================================

// JSONError represents a single error object.
type JSONError struct {
	Status string `json:"status"`
	Title  string `json:"title"`
	Detail string `json:"detail,omitempty"`
	Code   string `json:"code,omitempty"`
}

// JSONErrorResponse represents an error response body.
type JSONErrorResponse struct {
	Errors []JSONError `json:"errors"`
}

// WriteJSONError writes a JSON error response.
func WriteJSONError(w http.ResponseWriter, status int, title, detail, code string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(JSONErrorResponse{
		Errors: []JSONError{
			{
				Status: http.StatusText(status),
				Title:  title,
				Detail: detail,
				Code:   code,
			},
		},
	})
}
