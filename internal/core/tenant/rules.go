package tenant

import "strings"

// MatchKind selects how a HostRule compares its pattern.
type MatchKind int

const (
	// MatchExact matches only the pattern itself.
	MatchExact MatchKind = iota
	// MatchSuffix matches the pattern and any host ending in "."+pattern.
	MatchSuffix
)

// HostRule classifies hosts that must never be treated as tenant domains.
// Rules are evaluated in slice order; the first match wins.
type HostRule struct {
	Name    string
	Pattern string
	Match   MatchKind
	Class   HostClass
}

// Matches reports whether host (lower-cased, without port) satisfies the rule.
func (r HostRule) Matches(host string) bool {
	if host == "" || r.Pattern == "" {
		return false
	}
	if host == r.Pattern {
		return true
	}
	return r.Match == MatchSuffix && strings.HasSuffix(host, "."+r.Pattern)
}

// DefaultPreviewDomains lists hosted-preview infrastructure domains.
// Preview deployments under these are never mistaken for tenant domains.
func DefaultPreviewDomains() []string {
	return []string{
		"vercel.app",
		"netlify.app",
		"ngrok-free.app",
		"ngrok.io",
		"pages.dev",
	}
}

// DevelopmentRules returns the local development host rules.
// "acme.localhost" matches the suffix rule; the label is extracted by the resolver.
func DevelopmentRules() []HostRule {
	return []HostRule{
		{Name: "localhost", Pattern: "localhost", Match: MatchSuffix, Class: HostClassDevelopment},
		{Name: "loopback-v4", Pattern: "127.0.0.1", Match: MatchSuffix, Class: HostClassDevelopment},
		{Name: "loopback-v6", Pattern: "[::1]", Match: MatchExact, Class: HostClassDevelopment},
	}
}

// PreviewRules builds suffix rules for the given preview domains.
func PreviewRules(domains []string) []HostRule {
	rules := make([]HostRule, 0, len(domains))
	for _, d := range domains {
		d = normalizeHost(d)
		if d == "" {
			continue
		}
		rules = append(rules, HostRule{
			Name:    "preview:" + d,
			Pattern: d,
			Match:   MatchSuffix,
			Class:   HostClassPreview,
		})
	}
	return rules
}

// DefaultRules returns development rules followed by preview rules.
func DefaultRules(previewDomains []string) []HostRule {
	return append(DevelopmentRules(), PreviewRules(previewDomains)...)
}

// matchRule returns the first rule matching host.
func matchRule(rules []HostRule, host string) (HostRule, bool) {
	for _, rule := range rules {
		if rule.Matches(host) {
			return rule, true
		}
	}
	return HostRule{}, false
}
