package api

import "github.com/belovedchibuikem/smart-housing-pro-sub007/internal/core/tenant"

// =============================================================================
// Request Types
// =============================================================================

// InvalidateRequest is the request body for invalidating cache entries.
type InvalidateRequest struct {
	Host string `json:"host,omitempty"`
	Slug string `json:"slug,omitempty"`
}

// =============================================================================
// Response Types
// =============================================================================

// ResolveResponse is the response for a routing dry-run.
type ResolveResponse struct {
	Resolution    tenant.Resolution `json:"resolution"`
	Skipped       bool              `json:"skipped"`
	WouldValidate bool              `json:"would_validate"`
	ValidHostname bool              `json:"valid_hostname"`
	Decision      DecisionResponse  `json:"decision"`
}

// DecisionResponse describes a routing decision.
type DecisionResponse struct {
	Kind    string            `json:"kind"`
	Reason  string            `json:"reason"`
	Target  string            `json:"target,omitempty"`
	Status  int               `json:"status,omitempty"`
	Headers map[string]string `json:"headers,omitempty"`
	Error   string            `json:"error,omitempty"`
}

// CacheStatsResponse is the response for cache statistics.
type CacheStatsResponse struct {
	Entries int `json:"entries"`
}
