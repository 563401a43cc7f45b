package tenant

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidSlug(t *testing.T) {
	tests := []struct {
		slug string
		want bool
	}{
		{"acme", true},
		{"acme-homes", true},
		{"coop42", true},
		{"a", true},
		{strings.Repeat("a", 63), true},
		{strings.Repeat("a", 64), false},
		{"", false},
		{"Acme", false},
		{"acme.homes", false},
		{"-acme", false},
		{"acme-", false},
		{"ac_me", false},
		{"acme homes", false},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, ValidSlug(tt.slug), "slug %q", tt.slug)
	}
}

func TestIsReserved(t *testing.T) {
	reserved := DefaultReservedSlugs()

	assert.True(t, IsReserved("www", reserved))
	assert.True(t, IsReserved("API", reserved))
	assert.False(t, IsReserved("acme", reserved))
	assert.False(t, IsReserved("www", nil))
}

func TestValidHostname(t *testing.T) {
	tests := []struct {
		hostname string
		want     bool
	}{
		{"custom-coop.org", true},
		{"members.custom-coop.org", true},
		{"Custom-Coop.ORG", true},
		{"coop.co.uk", true},
		{"", false},
		{"localhost", false},
		{"coop_site.org", false},
		{"-coop.org", false},
		{"coop.o", false},
		{"10.0.0.1", false},
		{strings.Repeat("a", 250) + ".com", false},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, ValidHostname(tt.hostname), "hostname %q", tt.hostname)
	}
}
