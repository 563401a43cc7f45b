// Package gateway implements the tenant edge: the request router middleware
// that resolves and validates the tenant of every request, and the HTTP
// server that forwards routed requests to the web front-end.
package gateway

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/belovedchibuikem/smart-housing-pro-sub007/internal/core/routing"
	"github.com/belovedchibuikem/smart-housing-pro-sub007/internal/core/tenant"
	"github.com/belovedchibuikem/smart-housing-pro-sub007/internal/shell/api/middleware"
	"github.com/belovedchibuikem/smart-housing-pro-sub007/internal/shell/metrics"
	"github.com/belovedchibuikem/smart-housing-pro-sub007/internal/shell/validator"
)

// Dev override inputs, honored on development hosts only.
const (
	DevTenantQuery  = "tenant"
	DevTenantHeader = "X-Dev-Tenant"
)

// Router decides, per request, whether to forward, redirect or reject.
// It holds no mutable state.
type Router struct {
	resolver  tenant.Resolver
	policy    routing.Policy
	validator validator.Validator
	logger    *slog.Logger
}

// NewRouter creates a router. A nil validator skips validation entirely.
func NewRouter(resolver tenant.Resolver, policy routing.Policy, v validator.Validator, logger *slog.Logger) *Router {
	if logger == nil {
		logger = slog.Default()
	}
	return &Router{
		resolver:  resolver,
		policy:    policy,
		validator: v,
		logger:    logger.With("component", "router"),
	}
}

// Middleware wraps next with tenant routing.
func (rt *Router) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		StripIdentityHeaders(r.Header)

		d, res := rt.Decide(r)
		metrics.RecordDecision(d.Kind.String(), d.Reason)

		switch d.Kind {
		case routing.KindRedirect:
			http.Redirect(w, r, d.Target, d.Status)
		case routing.KindReject:
			writeRouteError(w, *d.Err)
		case routing.KindPassThrough:
			for name, value := range d.Headers {
				r.Header.Set(name, value)
			}
			next.ServeHTTP(w, r)
		default:
			next.ServeHTTP(w, r)
		}

		rt.logDecision(r, res, d)
	})
}

// Decide runs the routing state machine for r. It does not modify r.
func (rt *Router) Decide(r *http.Request) (routing.Decision, tenant.Resolution) {
	urlPath := r.URL.Path

	// Dot segments would let a skip prefix hide a guarded path
	if d, ok := rt.policy.Canonical(urlPath, r.URL.RawQuery); !ok {
		return d, tenant.Resolution{}
	}

	// Skip
	if rt.policy.ShouldSkip(urlPath) {
		return routing.Continue("skip"), tenant.Resolution{}
	}

	// Resolve
	res := rt.resolver.Resolve(r.Host)

	// DevOverride
	if res.IsDevelopment() {
		if hint := devHint(r); hint != "" {
			if tenant.ValidSlug(hint) {
				res.Slug = hint
				return rt.policy.DevOverride(hint), res
			}
			rt.logger.Debug("ignoring invalid dev tenant hint", "host", res.Host, "hint", hint)
		}
	}

	// Validate
	var identity *tenant.Identity
	if res.HasTenant() && !res.IsDevelopment() {
		found, id := rt.validate(r, res)
		if !found {
			if d, ok := rt.policy.NotFound(res, urlPath); !ok {
				return d, res
			}
		}
		identity = id
	}

	// PathGuards
	if d, ok := rt.policy.Guard(res, urlPath); !ok {
		return d, res
	}

	return rt.policy.PassThrough(res, identity), res
}

// validate asks the backend about res. An unreachable backend counts as
// found without identity.
func (rt *Router) validate(r *http.Request, res tenant.Resolution) (bool, *tenant.Identity) {
	if res.CustomDomain && !tenant.ValidHostname(res.Host) {
		return false, nil
	}
	if rt.validator == nil {
		return true, nil
	}

	result, err := rt.validator.Validate(r.Context(), res.Host, res.Slug)
	if err != nil {
		if !errors.Is(err, validator.ErrUnavailable) {
			rt.logger.Error("tenant validation failed", "host", res.Host, "slug", res.Slug, "error", err)
		} else {
			rt.logger.Warn("tenant validation unavailable, continuing without identity",
				"host", res.Host,
				"slug", res.Slug,
				"error", err,
			)
		}
		return true, nil
	}
	if !result.Valid {
		return false, nil
	}
	return true, result.Tenant
}

func (rt *Router) logDecision(r *http.Request, res tenant.Resolution, d routing.Decision) {
	attrs := []any{
		"host", r.Host,
		"path", r.URL.Path,
		"slug", res.Slug,
		"custom_domain", res.CustomDomain,
		"class", res.Class,
		"decision", d.Kind.String(),
		"reason", d.Reason,
	}
	if d.Target != "" {
		attrs = append(attrs, "target", d.Target)
	}
	if d.Terminal() {
		rt.logger.Info("request routed", attrs...)
		return
	}
	rt.logger.Debug("request routed", attrs...)
}

// StripIdentityHeaders removes client-supplied identity headers.
func StripIdentityHeaders(h http.Header) {
	for _, name := range routing.IdentityHeaders() {
		h.Del(name)
	}
}

func devHint(r *http.Request) string {
	hint := r.URL.Query().Get(DevTenantQuery)
	if hint == "" {
		hint = r.Header.Get(DevTenantHeader)
	}
	return strings.ToLower(strings.TrimSpace(hint))
}

func writeRouteError(w http.ResponseWriter, err routing.RouteError) {
	middleware.WriteJSONError(w, err.StatusCode, http.StatusText(err.StatusCode), err.Message, err.Type.Code())
}
