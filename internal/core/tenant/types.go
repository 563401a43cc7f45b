// Package tenant provides pure types and functions for mapping an incoming
// host name to a tenant of the platform.
// This package has no I/O dependencies and is tested with values in/out.
package tenant

// HostClass names the host rule that produced a Resolution.
type HostClass string

const (
	HostClassMalformed    HostClass = "malformed"
	HostClassDevelopment  HostClass = "development"
	HostClassPreview      HostClass = "preview"
	HostClassPlatformRoot HostClass = "platform_root"
	HostClassReserved     HostClass = "reserved"
	HostClassSubdomain    HostClass = "tenant_subdomain"
	HostClassCustomDomain HostClass = "custom_domain"
)

// Resolution is the result of resolving a host name.
// At most one of Slug and CustomDomain is set.
type Resolution struct {
	// Host is the lower-cased host name without port.
	Host string `json:"host" yaml:"host"`

	// Slug is the tenant slug taken from a subdomain label, empty when absent.
	Slug string `json:"slug,omitempty" yaml:"slug,omitempty"`

	// CustomDomain is true for hosts outside the platform domain that are
	// neither development nor preview hosts.
	CustomDomain bool `json:"custom_domain" yaml:"custom_domain"`

	// Class is the host rule that matched.
	Class HostClass `json:"class" yaml:"class"`
}

// HasTenant returns true if the host names a tenant, either through a
// subdomain slug or as a custom domain.
func (r Resolution) HasTenant() bool {
	return r.Slug != "" || r.CustomDomain
}

// IsDevelopment returns true if the host is a local development host.
func (r Resolution) IsDevelopment() bool {
	return r.Class == HostClassDevelopment
}

// Identity is the tenant identity reported by the validation backend.
// It is fetched per request (or served from cache) and never mutated.
type Identity struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Slug string `json:"slug"`
}
