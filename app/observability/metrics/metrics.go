package metrics

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
)

const MeterName = "go-auth-api"

// AppMetrics holds the application's metric instruments.
type AppMetrics struct {
	RegisterRequestsTotal   metric.Int64Counter
	RegisterDurationSeconds metric.Float64Histogram
	LoginRequestsTotal      metric.Int64Counter
	LoginDurationSeconds    metric.Float64Histogram
	TokenRejectionsTotal    metric.Int64Counter
	DbQueryDurationSeconds  metric.Float64Histogram
	DbQueryErrorsTotal      metric.Int64Counter
}

// New creates every instrument from the given meter.
func New(meter metric.Meter) (*AppMetrics, error) {
	var err error
	m := &AppMetrics{}

	if m.RegisterRequestsTotal, err = meter.Int64Counter(
		"register_requests_total",
		metric.WithDescription("Total number of register requests completed"),
		metric.WithUnit("{request}"),
	); err != nil {
		return nil, fmt.Errorf("register_requests_total: %w", err)
	}

	if m.RegisterDurationSeconds, err = meter.Float64Histogram(
		"register_duration_seconds",
		metric.WithDescription("Duration of register requests in seconds"),
		metric.WithUnit("s"),
	); err != nil {
		return nil, fmt.Errorf("register_duration_seconds: %w", err)
	}

	if m.LoginRequestsTotal, err = meter.Int64Counter(
		"login_requests_total",
		metric.WithDescription("Total number of login attempts completed"),
		metric.WithUnit("{request}"),
	); err != nil {
		return nil, fmt.Errorf("login_requests_total: %w", err)
	}

	if m.LoginDurationSeconds, err = meter.Float64Histogram(
		"login_duration_seconds",
		metric.WithDescription("Duration of login requests in seconds"),
		metric.WithUnit("s"),
	); err != nil {
		return nil, fmt.Errorf("login_duration_seconds: %w", err)
	}

	if m.TokenRejectionsTotal, err = meter.Int64Counter(
		"token_rejections_total",
		metric.WithDescription("Requests rejected by the authentication gate"),
		metric.WithUnit("{request}"),
	); err != nil {
		return nil, fmt.Errorf("token_rejections_total: %w", err)
	}

	if m.DbQueryDurationSeconds, err = meter.Float64Histogram(
		"db_query_duration_seconds",
		metric.WithDescription("Duration of database queries in seconds"),
		metric.WithUnit("s"),
	); err != nil {
		return nil, fmt.Errorf("db_query_duration_seconds: %w", err)
	}

	if m.DbQueryErrorsTotal, err = meter.Int64Counter(
		"db_query_errors_total",
		metric.WithDescription("Total number of database query errors"),
		metric.WithUnit("{error}"),
	); err != nil {
		return nil, fmt.Errorf("db_query_errors_total: %w", err)
	}

	return m, nil
}

// NewNoop returns instruments that record nothing. Used by tests and when metrics are disabled.
func NewNoop() *AppMetrics {
	m, _ := New(noop.NewMeterProvider().Meter(MeterName))
	return m
}

// ObserveQuery records the duration and, on failure, the error count of one database query.
func (m *AppMetrics) ObserveQuery(ctx context.Context, operation string, start time.Time, err error) {
	attrs := metric.WithAttributes(attribute.String("db.operation", operation))
	m.DbQueryDurationSeconds.Record(ctx, time.Since(start).Seconds(), attrs)
	if err != nil {
		m.DbQueryErrorsTotal.Add(ctx, 1, attrs)
	}
}

// Outcome is the result label attached to request counters.
func Outcome(outcome string) metric.MeasurementOption {
	return metric.WithAttributes(attribute.String("outcome", outcome))
}
