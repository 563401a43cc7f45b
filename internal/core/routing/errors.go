package routing

import "fmt"

// ErrorType defines the type of routing error.
type ErrorType int

const (
	ErrorTenantNotFound ErrorType = iota
	ErrorForbiddenPath
	ErrorUpstream
)

// Code returns the machine-readable code used in error bodies and redirects.
func (t ErrorType) Code() string {
	switch t {
	case ErrorTenantNotFound:
		return "tenant_not_found"
	case ErrorForbiddenPath:
		return "forbidden_path"
	case ErrorUpstream:
		return "upstream_unavailable"
	default:
		return "unknown"
	}
}

// RouteError represents a request the edge refuses to forward.
type RouteError struct {
	Type       ErrorType
	Hostname   string
	Path       string
	Message    string
	StatusCode int
}

// Error implements the error interface.
func (e RouteError) Error() string {
	return e.Message
}

// NewTenantNotFoundError creates an error for a host the backend does not know.
func NewTenantNotFoundError(hostname string) RouteError {
	return RouteError{
		Type:       ErrorTenantNotFound,
		Hostname:   hostname,
		Message:    fmt.Sprintf("tenant not found: %s", hostname),
		StatusCode: 404,
	}
}

// NewForbiddenPathError creates an error for a path not legal on this host class.
func NewForbiddenPathError(hostname, path string) RouteError {
	return RouteError{
		Type:       ErrorForbiddenPath,
		Hostname:   hostname,
		Path:       path,
		Message:    fmt.Sprintf("path not available on %s", hostname),
		StatusCode: 403,
	}
}

// NewUpstreamError creates an error for an unreachable web front-end.
func NewUpstreamError(hostname string) RouteError {
	return RouteError{
		Type:       ErrorUpstream,
		Hostname:   hostname,
		Message:    fmt.Sprintf("upstream unavailable for %s", hostname),
		StatusCode: 502,
	}
}
