package routing

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewTenantNotFoundError(t *testing.T) {
	err := NewTenantNotFoundError("custom-coop.org")

	assert.Equal(t, ErrorTenantNotFound, err.Type)
	assert.Equal(t, "custom-coop.org", err.Hostname)
	assert.Equal(t, 404, err.StatusCode)
	assert.Contains(t, err.Error(), "custom-coop.org")
}

func TestNewForbiddenPathError(t *testing.T) {
	err := NewForbiddenPathError("acme.platform.com", "/super-admin")

	assert.Equal(t, ErrorForbiddenPath, err.Type)
	assert.Equal(t, "/super-admin", err.Path)
	assert.Equal(t, 403, err.StatusCode)
	// The message never echoes the internal path
	assert.NotContains(t, err.Error(), "super-admin")
}

func TestNewUpstreamError(t *testing.T) {
	err := NewUpstreamError("acme.platform.com")

	assert.Equal(t, ErrorUpstream, err.Type)
	assert.Equal(t, 502, err.StatusCode)
}

func TestRouteError_ErrorsAs(t *testing.T) {
	var err error = NewTenantNotFoundError("x.org")

	var routeErr RouteError
	assert.True(t, errors.As(err, &routeErr))
	assert.Equal(t, "tenant_not_found", routeErr.Type.Code())
}

func TestErrorType_Code(t *testing.T) {
	assert.Equal(t, "tenant_not_found", ErrorTenantNotFound.Code())
	assert.Equal(t, "forbidden_path", ErrorForbiddenPath.Code())
	assert.Equal(t, "upstream_unavailable", ErrorUpstream.Code())
	assert.Equal(t, "unknown", ErrorType(9).Code())
}
