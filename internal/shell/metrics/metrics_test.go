package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func counterValue(t *testing.T, c prometheus.Counter) float64 {
	t.Helper()
	var m dto.Metric
	require.NoError(t, c.Write(&m))
	return m.GetCounter().GetValue()
}

func TestRecordDecision(t *testing.T) {
	c := RouteDecisions.WithLabelValues("redirect", "tenant_not_found")
	before := counterValue(t, c)

	RecordDecision("redirect", "tenant_not_found")
	RecordDecision("redirect", "tenant_not_found")

	assert.Equal(t, before+2, counterValue(t, c))
}

func TestRecordValidation(t *testing.T) {
	c := ValidationTotal.WithLabelValues(OutcomeUnavailable)
	before := counterValue(t, c)

	RecordValidation(OutcomeUnavailable, 0.25)

	assert.Equal(t, before+1, counterValue(t, c))
}

func TestRecordCacheLookupAndInvalidation(t *testing.T) {
	hit := CacheLookups.WithLabelValues("hit")
	admin := CacheInvalidations.WithLabelValues("admin")
	hitBefore, adminBefore := counterValue(t, hit), counterValue(t, admin)

	RecordCacheLookup("hit")
	RecordInvalidation("admin")

	assert.Equal(t, hitBefore+1, counterValue(t, hit))
	assert.Equal(t, adminBefore+1, counterValue(t, admin))
}

func TestMetricsRegistered(t *testing.T) {
	RecordValidation(OutcomeFound, 0.01)

	families, err := prometheus.DefaultGatherer.Gather()
	require.NoError(t, err)

	names := make(map[string]bool)
	for _, f := range families {
		names[f.GetName()] = true
	}
	assert.True(t, names["edge_validation_total"])
	assert.True(t, names["edge_validation_duration_seconds"])
}
