package gateway

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httputil"
	"net/url"
	"strings"

	"github.com/belovedchibuikem/smart-housing-pro-sub007/internal/core/routing"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// AdminPrefix is where the admin API is mounted.
const AdminPrefix = "/_edge"

// Config holds edge server configuration.
type Config struct {
	PlatformDomain string // Platform root domain, e.g., "platform.com"
	UpstreamURL    string // Web front-end, e.g., "http://localhost:3000"
}

// DefaultConfig returns sensible default configuration.
func DefaultConfig() Config {
	return Config{
		UpstreamURL: "http://localhost:3000",
	}
}

// Server is the HTTP handler tree that routes requests to the web front-end.
type Server struct {
	router   *Router
	upstream *url.URL
	admin    http.Handler
	logger   *slog.Logger
	config   Config
	handler  http.Handler
}

// NewServer creates a new edge server. admin may be nil, in which case the
// admin API is not mounted.
func NewServer(cfg Config, router *Router, admin http.Handler, logger *slog.Logger) (*Server, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if router == nil {
		return nil, errors.New("router is required")
	}

	upstream, err := url.Parse(cfg.UpstreamURL)
	if err != nil {
		return nil, fmt.Errorf("parse upstream url: %w", err)
	}
	if upstream.Scheme == "" || upstream.Host == "" {
		return nil, fmt.Errorf("upstream url %q must be absolute", cfg.UpstreamURL)
	}

	s := &Server{
		router:   router,
		upstream: upstream,
		admin:    admin,
		logger:   logger.With("component", "edge_server"),
		config:   cfg,
	}
	s.handler = s.routes()
	return s, nil
}

// Handler returns the root HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.handler
}

// Upstream returns the parsed upstream URL.
func (s *Server) Upstream() *url.URL {
	return s.upstream
}

func (s *Server) routes() http.Handler {
	r := chi.NewRouter()

	tenantRoutes := s.router.Middleware(s.reverseProxy())

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(s.tenantHostsBypassEdge(tenantRoutes))

	// Edge endpoints, platform and development hosts only
	r.Get("/health", s.serveHealth)
	r.Handle("/metrics", promhttp.Handler())
	if s.admin != nil {
		r.Mount(AdminPrefix, s.admin)
	}

	r.Handle("/*", tenantRoutes)
	return r
}

// tenantHostsBypassEdge sends every request for a tenant host straight to
// tenantRoutes, so tenant domains never reach the edge's own endpoints.
func (s *Server) tenantHostsBypassEdge(tenantRoutes http.Handler) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if s.router.resolver.Resolve(r.Host).HasTenant() {
				tenantRoutes.ServeHTTP(w, r)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func (s *Server) reverseProxy() http.Handler {
	reverseProxy := httputil.NewSingleHostReverseProxy(s.upstream)

	originalDirector := reverseProxy.Director
	reverseProxy.Director = func(req *http.Request) {
		originalDirector(req)
		req.Header.Set("X-Forwarded-Host", req.Host)
		req.Header.Set("X-Real-IP", getRealIP(req))
		if id := middleware.GetReqID(req.Context()); id != "" {
			req.Header.Set("X-Request-ID", id)
		}
	}

	reverseProxy.ErrorHandler = func(w http.ResponseWriter, r *http.Request, err error) {
		s.logger.Error("upstream error",
			"hostname", r.Host,
			"path", r.URL.Path,
			"tenant", r.Header.Get(routing.HeaderTenantSlug),
			"error", err,
		)
		writeRouteError(w, routing.NewUpstreamError(r.Host))
	}

	return reverseProxy
}

// getRealIP extracts the real client IP from the request.
func getRealIP(r *http.Request) string {
	// Check X-Real-IP header first (from upstream proxy)
	if ip := r.Header.Get("X-Real-IP"); ip != "" {
		return ip
	}

	// Check X-Forwarded-For header
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		// Take the first IP in the chain
		if idx := strings.Index(xff, ","); idx != -1 {
			return strings.TrimSpace(xff[:idx])
		}
		return strings.TrimSpace(xff)
	}

	// Fall back to remote address
	return r.RemoteAddr
}

// HealthResponse is the JSON response for the health endpoint.
type HealthResponse struct {
	Status         string `json:"status"`
	PlatformDomain string `json:"platform_domain"`
	Upstream       string `json:"upstream"`
}

func (s *Server) serveHealth(w http.ResponseWriter, r *http.Request) {
	resp := HealthResponse{
		Status:         "ok",
		PlatformDomain: s.config.PlatformDomain,
		Upstream:       s.upstream.String(),
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(resp)
}
