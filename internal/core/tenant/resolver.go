package tenant

import "strings"

// Resolver maps host names to tenants.
// Pure - no I/O, safe for concurrent use.
type Resolver struct {
	PlatformDomain string     // e.g., "platform.com"
	Rules          []HostRule // development/preview rules; nil means DefaultRules(DefaultPreviewDomains())
	Reserved       []string   // nil means DefaultReservedSlugs()
}

// NewResolver creates a resolver for platformDomain with the default development
// rules plus the given preview domains.
func NewResolver(platformDomain string, previewDomains, reserved []string) Resolver {
	if previewDomains == nil {
		previewDomains = DefaultPreviewDomains()
	}
	if reserved == nil {
		reserved = DefaultReservedSlugs()
	}
	return Resolver{
		PlatformDomain: normalizeHost(platformDomain),
		Rules:          DefaultRules(previewDomains),
		Reserved:       reserved,
	}
}

// Resolve classifies hostname. It never fails: anything that cannot name a
// tenant resolves to a Resolution without slug or custom domain.
//
//	"acme.platform.com"      → Slug "acme"
//	"acme.localhost:3000"    → Slug "acme", development
//	"platform.com"           → platform root
//	"a.b.platform.com"       → malformed
//	"custom-coop.org"        → CustomDomain
//	"my-pr.vercel.app"       → preview
func (r Resolver) Resolve(hostname string) Resolution {
	host := normalizeHost(hostname)
	if host == "" {
		return Resolution{Class: HostClassMalformed}
	}

	// 1-2. Development and preview hosts
	if rule, ok := matchRule(r.rules(), host); ok {
		res := Resolution{Host: host, Class: rule.Class}
		if rule.Class == HostClassDevelopment {
			res.Slug = r.singleLabel(host, rule.Pattern)
		}
		return res
	}

	// 3. Outside the platform domain
	platform := normalizeHost(r.PlatformDomain)
	if platform == "" || (host != platform && !strings.HasSuffix(host, "."+platform)) {
		return Resolution{Host: host, CustomDomain: true, Class: HostClassCustomDomain}
	}

	// 4. Platform root
	if host == platform {
		return Resolution{Host: host, Class: HostClassPlatformRoot}
	}

	// 5. Tenant subdomain
	label := strings.TrimSuffix(host, "."+platform)
	if label == "" || strings.Contains(label, ".") {
		return Resolution{Host: host, Class: HostClassMalformed}
	}
	if IsReserved(label, r.reserved()) {
		return Resolution{Host: host, Class: HostClassReserved}
	}
	return Resolution{Host: host, Slug: label, Class: HostClassSubdomain}
}

// singleLabel returns the label in front of suffix if host is exactly
// "<label>.<suffix>" and the label is not reserved.
func (r Resolver) singleLabel(host, suffix string) string {
	label := strings.TrimSuffix(host, "."+suffix)
	if label == host || label == "" || strings.Contains(label, ".") {
		return ""
	}
	if IsReserved(label, r.reserved()) {
		return ""
	}
	return label
}

func (r Resolver) rules() []HostRule {
	if r.Rules == nil {
		return DefaultRules(DefaultPreviewDomains())
	}
	return r.Rules
}

func (r Resolver) reserved() []string {
	if r.Reserved == nil {
		return DefaultReservedSlugs()
	}
	return r.Reserved
}

// =============================================================================
// Host Normalization
// =============================================================================

// NormalizeHost lower-cases hostname and strips the port and trailing dot.
func NormalizeHost(hostname string) string {
	return normalizeHost(hostname)
}

func normalizeHost(hostname string) string {
	host := strings.ToLower(strings.TrimSpace(hostname))
	host = stripPort(host)
	return strings.TrimSuffix(host, ".")
}

// stripPort removes a trailing ":<digits>" from host.
// Bracketed IPv6 literals keep their brackets; bare IPv6 literals gain them.
func stripPort(host string) string {
	if strings.HasPrefix(host, "[") {
		if idx := strings.Index(host, "]"); idx != -1 {
			return host[:idx+1]
		}
		return host
	}
	if strings.Count(host, ":") > 1 {
		return "[" + host + "]"
	}

	idx := strings.LastIndex(host, ":")
	if idx == -1 {
		return host
	}
	potentialPort := host[idx+1:]
	if potentialPort == "" {
		return host[:idx]
	}
	for _, c := range potentialPort {
		if c < '0' || c > '9' {
			return host
		}
	}
	return host[:idx]
}
