package routing

import (
	"net/http"
	"testing"

	"github.com/belovedchibuikem/smart-housing-pro-sub007/internal/core/tenant"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	rootRes   = tenant.Resolution{Host: "platform.com", Class: tenant.HostClassPlatformRoot}
	acmeRes   = tenant.Resolution{Host: "acme.platform.com", Slug: "acme", Class: tenant.HostClassSubdomain}
	customRes = tenant.Resolution{Host: "custom-coop.org", CustomDomain: true, Class: tenant.HostClassCustomDomain}
)

func TestHasPathPrefix(t *testing.T) {
	tests := []struct {
		path   string
		prefix string
		want   bool
	}{
		{"/super-admin", "/super-admin", true},
		{"/super-admin/roles", "/super-admin", true},
		{"/super-administrator", "/super-admin", false},
		{"/platform/pricing", "/platform/", true},
		{"/", "/", false},
		{"/anything", "", false},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, HasPathPrefix(tt.path, tt.prefix), "%s ~ %s", tt.path, tt.prefix)
	}
}

func TestCleanPath(t *testing.T) {
	tests := []struct {
		path string
		want string
	}{
		{"", "/"},
		{"/", "/"},
		{"/dashboard", "/dashboard"},
		{"/members/", "/members/"},
		{"/api/../super-admin/roles", "/super-admin/roles"},
		{"/_next/../onboarding/start", "/onboarding/start"},
		{"/static/./../platform/", "/platform/"},
		{"//platform//pricing", "/platform/pricing"},
		{"/../..", "/"},
		{"dashboard", "/dashboard"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, CleanPath(tt.path), tt.path)
	}
}

func TestPolicy_Canonical(t *testing.T) {
	policy := DefaultPolicy("platform.com")

	for _, p := range []string{"", "/", "/dashboard", "/members/", "/api/anything"} {
		_, ok := policy.Canonical(p, "")
		assert.True(t, ok, p)
	}

	d, ok := policy.Canonical("/api/../super-admin/roles", "")
	require.False(t, ok)
	assert.Equal(t, KindRedirect, d.Kind)
	assert.Equal(t, "/super-admin/roles", d.Target)
	assert.Equal(t, http.StatusTemporaryRedirect, d.Status)
	assert.Equal(t, "non_canonical_path", d.Reason)

	d, ok = policy.Canonical("/static/../platform/x", "ref=mail&x=1")
	require.False(t, ok)
	assert.Equal(t, "/platform/x?ref=mail&x=1", d.Target)
}

func TestPolicy_ShouldSkip(t *testing.T) {
	policy := DefaultPolicy("platform.com")

	tests := []struct {
		path string
		want bool
	}{
		{"/_next/static/chunks/main.js", true},
		{"/api", true},
		{"/api/anything", true},
		{"/static/logo.svg", true},
		{"/favicon.ico", true},
		{"/robots.txt", true},
		{"/dashboard", false},
		{"/", false},
		{"/apiary", false},
		{"/super-admin/roles", false},
		{"/members/", false},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, policy.ShouldSkip(tt.path), tt.path)
	}
}

func TestPolicy_Guard(t *testing.T) {
	policy := DefaultPolicy("platform.com")

	tests := []struct {
		name       string
		res        tenant.Resolution
		path       string
		wantOK     bool
		wantTarget string
	}{
		{"root super-admin is legal", rootRes, "/super-admin/roles", true, ""},
		{"root marketing is legal", rootRes, "/platform/pricing", true, ""},
		{"root onboarding is legal", rootRes, "/onboarding", true, ""},
		{"root slash goes to landing", rootRes, "/", false, "/platform"},
		{"root other path is legal", rootRes, "/login", true, ""},
		{"tenant super-admin redirects home", acmeRes, "/super-admin/roles", false, "/"},
		{"tenant marketing redirects home", acmeRes, "/platform", false, "/"},
		{"tenant onboarding redirects home", acmeRes, "/onboarding/step-2", false, "/"},
		{"tenant dashboard is legal", acmeRes, "/dashboard", true, ""},
		{"tenant slash is legal", acmeRes, "/", true, ""},
		{"custom super-admin redirects home", customRes, "/super-admin", false, "/"},
		{"custom dashboard is legal", customRes, "/dashboard", true, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, ok := policy.Guard(tt.res, tt.path)
			assert.Equal(t, tt.wantOK, ok)
			if !tt.wantOK {
				assert.Equal(t, KindRedirect, d.Kind)
				assert.Equal(t, tt.wantTarget, d.Target)
				assert.Equal(t, http.StatusTemporaryRedirect, d.Status)
			}
		})
	}
}

func TestPolicy_Guard_StatusEnforcement(t *testing.T) {
	policy := DefaultPolicy("platform.com")
	policy.Enforcement = EnforceStatus

	d, ok := policy.Guard(acmeRes, "/super-admin")
	assert.False(t, ok)
	assert.Equal(t, KindReject, d.Kind)
	assert.Equal(t, http.StatusForbidden, d.Status)
	require.NotNil(t, d.Err)
	assert.Equal(t, ErrorForbiddenPath, d.Err.Type)

	// Landing redirect is navigational and stays a redirect
	d, ok = policy.Guard(rootRes, "/")
	assert.False(t, ok)
	assert.Equal(t, KindRedirect, d.Kind)
}

func TestPolicy_NotFound(t *testing.T) {
	policy := DefaultPolicy("platform.com")

	d, ok := policy.NotFound(customRes, "/dashboard")
	assert.False(t, ok)
	assert.Equal(t, KindRedirect, d.Kind)
	assert.Equal(t, "https://platform.com/platform?error=tenant_not_found", d.Target)

	d, ok = policy.NotFound(acmeRes, "/")
	assert.False(t, ok)
	assert.Equal(t, KindRedirect, d.Kind)

	// Already in the marketing section
	_, ok = policy.NotFound(acmeRes, "/platform/not-found")
	assert.True(t, ok)
}

func TestPolicy_NotFound_StatusEnforcement(t *testing.T) {
	policy := DefaultPolicy("platform.com")
	policy.Enforcement = EnforceStatus

	d, ok := policy.NotFound(acmeRes, "/dashboard")
	assert.False(t, ok)
	assert.Equal(t, KindReject, d.Kind)
	assert.Equal(t, http.StatusNotFound, d.Status)
	assert.Equal(t, "tenant_not_found", d.Err.Type.Code())
}

func TestPolicy_NotFoundURL(t *testing.T) {
	policy := DefaultPolicy("platform.com")
	policy.Scheme = "http"
	policy.MarketingPrefix = "/welcome"

	assert.Equal(t, "http://platform.com/welcome?error=tenant_not_found", policy.NotFoundURL())

	policy.Scheme = ""
	policy.MarketingPrefix = ""
	assert.Equal(t, "https://platform.com/?error=tenant_not_found", policy.NotFoundURL())
}

func TestPolicy_PassThrough(t *testing.T) {
	policy := DefaultPolicy("platform.com")

	d := policy.PassThrough(acmeRes, nil)
	assert.Equal(t, KindPassThrough, d.Kind)
	assert.Equal(t, map[string]string{HeaderTenantSlug: "acme"}, d.Headers)

	d = policy.PassThrough(acmeRes, &tenant.Identity{ID: "t_1", Name: "Acme Homes", Slug: "acme"})
	assert.Equal(t, map[string]string{
		HeaderTenantSlug: "acme",
		HeaderTenantID:   "t_1",
		HeaderTenantName: "Acme Homes",
	}, d.Headers)

	d = policy.PassThrough(customRes, &tenant.Identity{ID: "t_2", Name: "Custom Coop", Slug: "custom"})
	assert.Equal(t, map[string]string{
		HeaderCustomDomain: "custom-coop.org",
		HeaderTenantSlug:   "custom",
		HeaderTenantID:     "t_2",
		HeaderTenantName:   "Custom Coop",
	}, d.Headers)

	d = policy.PassThrough(rootRes, nil)
	assert.Equal(t, KindContinue, d.Kind)
	assert.Empty(t, d.Headers)
}

func TestPolicy_DevOverride(t *testing.T) {
	d := DefaultPolicy("platform.com").DevOverride("acme")

	assert.Equal(t, KindPassThrough, d.Kind)
	assert.Equal(t, "acme", d.Headers[HeaderTenantSlug])
	assert.Equal(t, "true", d.Headers[HeaderDevMode])
}

func TestKind_String(t *testing.T) {
	assert.Equal(t, "continue", KindContinue.String())
	assert.Equal(t, "redirect", KindRedirect.String())
	assert.Equal(t, "pass_through", KindPassThrough.String())
	assert.Equal(t, "reject", KindReject.String())
	assert.Equal(t, "unknown", Kind(42).String())
}

func TestDecision_Terminal(t *testing.T) {
	assert.True(t, Redirect("/", "x").Terminal())
	assert.True(t, Reject(NewTenantNotFoundError("h"), "x").Terminal())
	assert.False(t, Continue("x").Terminal())
	assert.False(t, PassThrough(nil, "x").Terminal())
}
