package tenant

import (
	"regexp"
	"strings"
)

// =============================================================================
// Slug Rules
// =============================================================================

var slugRegex = regexp.MustCompile(`^[a-z0-9]([a-z0-9-]{0,61}[a-z0-9])?$`)

// DefaultReservedSlugs returns labels that never name a tenant.
func DefaultReservedSlugs() []string {
	return []string{"www", "api"}
}

// ValidSlug reports whether s is a usable tenant slug: a single DNS label of
// lowercase letters, digits and inner hyphens.
//
// Example:
//
//	ValidSlug("acme")        // true
//	ValidSlug("acme-homes")  // true
//	ValidSlug("Acme")        // false
//	ValidSlug("acme.homes")  // false
func ValidSlug(s string) bool {
	return slugRegex.MatchString(s)
}

// IsReserved reports whether label appears in reserved (case-insensitive).
func IsReserved(label string, reserved []string) bool {
	for _, r := range reserved {
		if strings.EqualFold(label, r) {
			return true
		}
	}
	return false
}

// =============================================================================
// Hostname Rules
// =============================================================================

var hostnameRegex = regexp.MustCompile(`^([a-zA-Z0-9]([a-zA-Z0-9\-]{0,61}[a-zA-Z0-9])?\.)+[a-zA-Z]{2,}$`)

// ValidHostname reports whether hostname could be a registered custom domain.
func ValidHostname(hostname string) bool {
	hostname = strings.TrimSpace(strings.ToLower(hostname))
	if hostname == "" || len(hostname) > 253 {
		return false
	}
	return hostnameRegex.MatchString(hostname)
}
