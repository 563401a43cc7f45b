// Package api provides the edge's admin HTTP handlers: routing dry-runs and
// validation cache control.
package api

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/belovedchibuikem/smart-housing-pro-sub007/internal/core/routing"
	"github.com/belovedchibuikem/smart-housing-pro-sub007/internal/core/tenant"
	"github.com/belovedchibuikem/smart-housing-pro-sub007/internal/shell/api/middleware"
	"github.com/belovedchibuikem/smart-housing-pro-sub007/internal/shell/gateway"
	"github.com/belovedchibuikem/smart-housing-pro-sub007/internal/shell/metrics"
	"github.com/go-chi/chi/v5"
)

// maxBodyBytes bounds admin request bodies.
const maxBodyBytes = 4 << 10

// Cache is the validation cache surface the admin API controls.
type Cache interface {
	Invalidate(host string) int
	InvalidateSlug(slug string) int
	Purge()
	Len() int
}

// =============================================================================
// Handler
// =============================================================================

// Handler provides the admin HTTP handlers.
type Handler struct {
	resolver tenant.Resolver
	policy   routing.Policy
	dryRun   *gateway.Router
	cache    Cache
	secret   string
	logger   *slog.Logger
}

// NewHandler creates a new admin handler. cache may be nil when caching is
// disabled, in which case the cache routes are not mounted.
func NewHandler(resolver tenant.Resolver, policy routing.Policy, cache Cache, secret string, l *slog.Logger) *Handler {
	if l == nil {
		l = slog.Default()
	}
	l = l.With("component", "admin_api")
	return &Handler{
		resolver: resolver,
		policy:   policy,
		dryRun:   gateway.NewRouter(resolver, policy, nil, l),
		cache:    cache,
		secret:   secret,
		logger:   l,
	}
}

// Routes returns the admin router, relative to its mount point.
func (h *Handler) Routes() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.NewSecretMiddleware(middleware.SecretConfig{
		SharedSecret: h.secret,
		Logger:       h.logger,
	}).Handler)
	r.Use(h.jsonContentType)

	r.Get("/resolve", h.handleResolve)
	if h.cache != nil {
		r.Get("/cache", h.handleCacheStats)
		r.Post("/cache/invalidate", h.handleInvalidate)
		r.Delete("/cache", h.handlePurge)
	}

	return r
}

func (h *Handler) jsonContentType(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		next.ServeHTTP(w, r)
	})
}

// =============================================================================
// Resolve Handler
// =============================================================================

// handleResolve handles GET /resolve?host=&path=[&tenant=].
// Nothing is sent to the validation backend.
func (h *Handler) handleResolve(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	host := strings.TrimSpace(q.Get("host"))
	if host == "" {
		h.writeError(w, http.StatusBadRequest, "host is required", "missing_host")
		return
	}
	urlPath := q.Get("path")
	if urlPath == "" {
		urlPath = "/"
	}
	if !strings.HasPrefix(urlPath, "/") {
		h.writeError(w, http.StatusBadRequest, "path must start with /", "invalid_path")
		return
	}

	probe := &http.Request{
		Method: http.MethodGet,
		Host:   host,
		URL:    &url.URL{Path: urlPath},
		Header: http.Header{},
	}
	if hint := q.Get(gateway.DevTenantQuery); hint != "" {
		probe.URL.RawQuery = url.Values{gateway.DevTenantQuery: {hint}}.Encode()
	}

	res := h.resolver.Resolve(host)
	validHostname := !res.CustomDomain || tenant.ValidHostname(res.Host)
	d, _ := h.dryRun.Decide(probe)

	h.writeJSON(w, http.StatusOK, ResolveResponse{
		Resolution:    res,
		Skipped:       h.policy.ShouldSkip(urlPath),
		WouldValidate: res.HasTenant() && !res.IsDevelopment() && validHostname && !h.policy.ShouldSkip(urlPath),
		ValidHostname: validHostname,
		Decision:      decisionToResponse(d),
	})
}

// =============================================================================
// Cache Handlers
// =============================================================================

// handleCacheStats handles GET /cache.
func (h *Handler) handleCacheStats(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, CacheStatsResponse{Entries: h.cache.Len()})
}

// handleInvalidate handles POST /cache/invalidate.
func (h *Handler) handleInvalidate(w http.ResponseWriter, r *http.Request) {
	var req InvalidateRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "Invalid request body", "invalid_body")
		return
	}

	host := tenant.NormalizeHost(req.Host)
	slug := strings.ToLower(strings.TrimSpace(req.Slug))
	if host == "" && slug == "" {
		h.writeError(w, http.StatusBadRequest, "host or slug is required", "missing_target")
		return
	}

	removed := 0
	if host != "" {
		removed += h.cache.Invalidate(host)
	}
	if slug != "" {
		removed += h.cache.InvalidateSlug(slug)
	}
	metrics.RecordInvalidation("admin")

	h.logger.Info("validation cache invalidated", "host", host, "slug", slug, "removed", removed)
	w.WriteHeader(http.StatusNoContent)
}

// handlePurge handles DELETE /cache.
func (h *Handler) handlePurge(w http.ResponseWriter, r *http.Request) {
	h.cache.Purge()
	metrics.RecordInvalidation("admin")

	h.logger.Info("validation cache purged")
	w.WriteHeader(http.StatusNoContent)
}

// =============================================================================
// Helpers
// =============================================================================

func (h *Handler) writeJSON(w http.ResponseWriter, status int, v any) {
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.logger.Error("failed to encode JSON", "error", err)
	}
}

func (h *Handler) writeError(w http.ResponseWriter, status int, message, code string) {
	middleware.WriteJSONError(w, status, http.StatusText(status), message, code)
}

func decisionToResponse(d routing.Decision) DecisionResponse {
	resp := DecisionResponse{
		Kind:    d.Kind.String(),
		Reason:  d.Reason,
		Target:  d.Target,
		Status:  d.Status,
		Headers: d.Headers,
	}
	if d.Err != nil {
		resp.Error = d.Err.Type.Code()
	}
	return resp
}
