package metrics

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
)

func collect(t *testing.T, reader *sdkmetric.ManualReader) map[string]metricdata.Aggregation {
	t.Helper()
	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))

	out := map[string]metricdata.Aggregation{}
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			out[m.Name] = m.Data
		}
	}
	return out
}

func TestObserveQuery(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	m, err := New(provider.Meter(MeterName))
	require.NoError(t, err)

	ctx := context.Background()
	m.ObserveQuery(ctx, "select_user_by_id", time.Now(), nil)
	m.ObserveQuery(ctx, "select_user_by_id", time.Now(), errors.New("boom"))

	got := collect(t, reader)

	hist, ok := got["db_query_duration_seconds"].(metricdata.Histogram[float64])
	require.True(t, ok)
	require.Len(t, hist.DataPoints, 1)
	assert.Equal(t, uint64(2), hist.DataPoints[0].Count)

	errs, ok := got["db_query_errors_total"].(metricdata.Sum[int64])
	require.True(t, ok)
	require.Len(t, errs.DataPoints, 1)
	assert.Equal(t, int64(1), errs.DataPoints[0].Value)
}

func TestOutcomeLabelsCounters(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	m, err := New(provider.Meter(MeterName))
	require.NoError(t, err)

	ctx := context.Background()
	m.LoginRequestsTotal.Add(ctx, 1, Outcome("success"))
	m.LoginRequestsTotal.Add(ctx, 1, Outcome("invalid_credentials"))
	m.LoginRequestsTotal.Add(ctx, 1, Outcome("invalid_credentials"))

	sum, ok := collect(t, reader)["login_requests_total"].(metricdata.Sum[int64])
	require.True(t, ok)

	byOutcome := map[string]int64{}
	for _, dp := range sum.DataPoints {
		v, _ := dp.Attributes.Value("outcome")
		byOutcome[v.AsString()] = dp.Value
	}
	assert.Equal(t, map[string]int64{"success": 1, "invalid_credentials": 2}, byOutcome)
}

func TestNewNoop(t *testing.T) {
	m := NewNoop()
	require.NotNil(t, m)
	assert.NotPanics(t, func() {
		m.ObserveQuery(context.Background(), "noop", time.Now(), errors.New("ignored"))
		m.TokenRejectionsTotal.Add(context.Background(), 1, Outcome("missing"))
	})
}
