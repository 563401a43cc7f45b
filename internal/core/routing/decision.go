// Package routing provides the pure routing policy of the tenant edge:
// which paths bypass tenant resolution, which paths are legal for a host
// class, and the terminal decision produced for every request.
package routing

import "net/http"

// =============================================================================
// Identity Headers
// =============================================================================

const (
	HeaderTenantSlug   = "X-Tenant-Slug"
	HeaderTenantID     = "X-Tenant-Id"
	HeaderTenantName   = "X-Tenant-Name"
	HeaderCustomDomain = "X-Custom-Domain"
	HeaderDevMode      = "X-Dev-Mode"
)

// IdentityHeaders lists the headers only the edge may set on forwarded requests.
func IdentityHeaders() []string {
	return []string{
		HeaderTenantSlug,
		HeaderTenantID,
		HeaderTenantName,
		HeaderCustomDomain,
		HeaderDevMode,
	}
}

// =============================================================================
// Decision
// =============================================================================

// Kind is the terminal action taken for a request.
type Kind int

const (
	// KindContinue forwards the request unchanged.
	KindContinue Kind = iota
	// KindRedirect answers with a redirect to Target.
	KindRedirect
	// KindPassThrough forwards the request with Headers attached.
	KindPassThrough
	// KindReject answers with Err's status code (status enforcement mode only).
	KindReject
)

func (k Kind) String() string {
	switch k {
	case KindContinue:
		return "continue"
	case KindRedirect:
		return "redirect"
	case KindPassThrough:
		return "pass_through"
	case KindReject:
		return "reject"
	default:
		return "unknown"
	}
}

// Decision is produced once per request.
type Decision struct {
	Kind    Kind
	Target  string            // redirect location
	Status  int               // redirect or reject status code
	Headers map[string]string // headers added to the forwarded request
	Reason  string            // short label for logs and metrics
	Err     *RouteError       // set for KindReject
}

// Continue forwards the request untouched.
func Continue(reason string) Decision {
	return Decision{Kind: KindContinue, Reason: reason}
}

// Redirect answers with a temporary redirect to target.
func Redirect(target, reason string) Decision {
	return Decision{
		Kind:   KindRedirect,
		Target: target,
		Status: http.StatusTemporaryRedirect,
		Reason: reason,
	}
}

// PassThrough forwards the request with headers attached.
func PassThrough(headers map[string]string, reason string) Decision {
	return Decision{Kind: KindPassThrough, Headers: headers, Reason: reason}
}

// Reject answers with the error's status code.
func Reject(err RouteError, reason string) Decision {
	return Decision{Kind: KindReject, Status: err.StatusCode, Err: &err, Reason: reason}
}

// Terminal returns true if the request is answered by the edge itself.
func (d Decision) Terminal() bool {
	return d.Kind == KindRedirect || d.Kind == KindReject
}
