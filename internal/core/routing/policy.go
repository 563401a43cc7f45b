package routing

import (
	"net/url"
	"path"
	"strings"

	"github.com/belovedchibuikem/smart-housing-pro-sub007/internal/core/tenant"
)

// Enforcement selects how illegal requests are answered.
type Enforcement string

const (
	// EnforceRedirect answers with redirects (browser clients).
	EnforceRedirect Enforcement = "redirect"
	// EnforceStatus answers with 404/403 (API clients).
	EnforceStatus Enforcement = "status"
)

// Policy holds the path rules of the platform.
type Policy struct {
	PlatformDomain   string      // e.g., "platform.com"
	Scheme           string      // scheme of absolute redirects to the platform, e.g., "https"
	MarketingPrefix  string      // marketing section, also the landing path, e.g., "/platform"
	OnboardingPrefix string      // onboarding flow, e.g., "/onboarding"
	SuperAdminPrefix string      // super-admin console, e.g., "/super-admin"
	SkipPrefixes     []string    // paths that bypass tenant resolution
	Enforcement      Enforcement // redirect (default) or status
}

// DefaultPolicy returns the default path rules for platformDomain.
func DefaultPolicy(platformDomain string) Policy {
	return Policy{
		PlatformDomain:   platformDomain,
		Scheme:           "https",
		MarketingPrefix:  "/platform",
		OnboardingPrefix: "/onboarding",
		SuperAdminPrefix: "/super-admin",
		SkipPrefixes:     DefaultSkipPrefixes(),
		Enforcement:      EnforceRedirect,
	}
}

// DefaultSkipPrefixes returns the static-asset and API prefixes.
func DefaultSkipPrefixes() []string {
	return []string{"/_next", "/api", "/static"}
}

// =============================================================================
// Path Classification
// =============================================================================

// HasPathPrefix reports whether p equals prefix or lies below it.
// "/super-admin/roles" has prefix "/super-admin"; "/super-administrator" does not.
func HasPathPrefix(p, prefix string) bool {
	if prefix == "" || prefix == "/" {
		return false
	}
	prefix = strings.TrimSuffix(prefix, "/")
	return p == prefix || strings.HasPrefix(p, prefix+"/")
}

// CleanPath returns the canonical form of p: rooted, with dot segments and
// repeated slashes folded. A trailing slash is kept.
//
//	CleanPath("/api/../super-admin")  // "/super-admin"
//	CleanPath("//members/")           // "/members/"
func CleanPath(p string) string {
	if p == "" {
		return "/"
	}
	cleaned := path.Clean("/" + p)
	if strings.HasSuffix(p, "/") && cleaned != "/" {
		cleaned += "/"
	}
	return cleaned
}

// Canonical redirects a non-canonical path to its cleaned form. Every later
// rule must see the path the upstream will serve.
func (p Policy) Canonical(urlPath, rawQuery string) (Decision, bool) {
	if urlPath == "" {
		return Decision{}, true
	}
	cleaned := CleanPath(urlPath)
	if cleaned == urlPath {
		return Decision{}, true
	}
	if rawQuery != "" {
		cleaned += "?" + rawQuery
	}
	return Redirect(cleaned, "non_canonical_path"), false
}

// ShouldSkip reports whether p bypasses tenant resolution: static assets,
// API routes and any path whose last segment has a file extension.
func (p Policy) ShouldSkip(urlPath string) bool {
	for _, prefix := range p.SkipPrefixes {
		if HasPathPrefix(urlPath, prefix) {
			return true
		}
	}
	return path.Ext(path.Base(urlPath)) != "" && !strings.HasSuffix(urlPath, "/")
}

// tenantOnlyForbidden reports whether p is reserved for the bare platform root.
func (p Policy) tenantOnlyForbidden(urlPath string) bool {
	return HasPathPrefix(urlPath, p.SuperAdminPrefix) ||
		HasPathPrefix(urlPath, p.MarketingPrefix) ||
		HasPathPrefix(urlPath, p.OnboardingPrefix)
}

// =============================================================================
// Decisions
// =============================================================================

// Guard enforces which paths are legal for the host class of res.
// It returns ok=false with a terminal decision when the request must not be
// forwarded.
func (p Policy) Guard(res tenant.Resolution, urlPath string) (Decision, bool) {
	if res.HasTenant() {
		if p.tenantOnlyForbidden(urlPath) {
			if p.Enforcement == EnforceStatus {
				return Reject(NewForbiddenPathError(res.Host, urlPath), "forbidden_path"), false
			}
			return Redirect("/", "forbidden_path"), false
		}
		return Decision{}, true
	}

	if urlPath == "/" || urlPath == "" {
		return Redirect(p.landingPath(), "platform_landing"), false
	}
	return Decision{}, true
}

// NotFound returns the decision for a tenant the backend does not know.
// Requests already inside the marketing section are let through (ok=true)
// so the not-found page itself never loops.
func (p Policy) NotFound(res tenant.Resolution, urlPath string) (Decision, bool) {
	if urlPath != "/" && HasPathPrefix(urlPath, p.MarketingPrefix) {
		return Decision{}, true
	}
	if p.Enforcement == EnforceStatus {
		return Reject(NewTenantNotFoundError(res.Host), "tenant_not_found"), false
	}
	return Redirect(p.NotFoundURL(), "tenant_not_found"), false
}

// NotFoundURL returns the platform marketing page carrying the not-found error.
func (p Policy) NotFoundURL() string {
	scheme := p.Scheme
	if scheme == "" {
		scheme = "https"
	}
	u := url.URL{
		Scheme:   scheme,
		Host:     p.PlatformDomain,
		Path:     p.landingPath(),
		RawQuery: url.Values{"error": {ErrorTenantNotFound.Code()}}.Encode(),
	}
	return u.String()
}

// PassThrough builds the forwarding decision for res. identity may be nil when
// validation was skipped or the backend was unreachable.
func (p Policy) PassThrough(res tenant.Resolution, identity *tenant.Identity) Decision {
	headers := make(map[string]string)
	if res.Slug != "" {
		headers[HeaderTenantSlug] = res.Slug
	}
	if res.CustomDomain {
		headers[HeaderCustomDomain] = res.Host
	}
	if identity != nil {
		headers[HeaderTenantID] = identity.ID
		headers[HeaderTenantName] = identity.Name
		if res.CustomDomain && identity.Slug != "" {
			headers[HeaderTenantSlug] = identity.Slug
		}
	}
	if len(headers) == 0 {
		return Continue("platform")
	}
	return PassThrough(headers, "tenant")
}

// DevOverride builds the decision for a development tenant hint.
func (p Policy) DevOverride(slug string) Decision {
	return PassThrough(map[string]string{
		HeaderTenantSlug: slug,
		HeaderDevMode:    "true",
	}, "dev_override")
}

func (p Policy) landingPath() string {
	if p.MarketingPrefix == "" {
		return "/"
	}
	return p.MarketingPrefix
}
