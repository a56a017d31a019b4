package infrastructure

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/otel/attribute"
	otelprom "go.opentelemetry.io/otel/exporters/prometheus"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"

	"valuationcli/pkg/contracts"
)

// Metrics records pipeline counters through OpenTelemetry into a private
// Prometheus registry. A batch run has no scrape endpoint, so the registry
// is dumped to a node_exporter textfile at exit.
type Metrics struct {
	registry *prometheus.Registry
	provider *sdkmetric.MeterProvider

	rowsFetched  metric.Int64Counter
	rowsDropped  metric.Int64Counter
	latestValue  metric.Float64Gauge
	stepDuration metric.Float64Histogram
}

// NewMetrics creates the meter provider and instruments
func NewMetrics() (*Metrics, error) {
	registry := prometheus.NewRegistry()

	exporter, err := otelprom.New(
		otelprom.WithRegisterer(registry),
		otelprom.WithoutScopeInfo(),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create prometheus exporter: %w", err)
	}

	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(exporter))
	meter := provider.Meter(MeterName, metric.WithInstrumentationVersion(contracts.Version))

	m := &Metrics{registry: registry, provider: provider}

	if m.rowsFetched, err = meter.Int64Counter(
		"valuation_rows_fetched",
		metric.WithDescription("Raw rows returned by the source"),
	); err != nil {
		return nil, err
	}

	if m.rowsDropped, err = meter.Int64Counter(
		"valuation_rows_dropped",
		metric.WithDescription("Rows dropped during normalization"),
	); err != nil {
		return nil, err
	}

	if m.latestValue, err = meter.Float64Gauge(
		"valuation_latest_value",
		metric.WithDescription("Most recent value of the series"),
	); err != nil {
		return nil, err
	}

	if m.stepDuration, err = meter.Float64Histogram(
		"valuation_step_duration",
		metric.WithDescription("Pipeline step duration"),
		metric.WithUnit("s"),
	); err != nil {
		return nil, err
	}

	return m, nil
}

// RecordRows records fetched and dropped row counts for a variant
func (m *Metrics) RecordRows(ctx context.Context, variant string, fetched, dropped int) {
	attrs := metric.WithAttributes(attribute.String("variant", variant))
	m.rowsFetched.Add(ctx, int64(fetched), attrs)
	m.rowsDropped.Add(ctx, int64(dropped), attrs)
}

// RecordLatest records the latest value of a series
func (m *Metrics) RecordLatest(ctx context.Context, variant, series string, value float64) {
	m.latestValue.Record(ctx, value, metric.WithAttributes(
		attribute.String("variant", variant),
		attribute.String("series", series),
	))
}

// RecordStep records how long a pipeline step took
func (m *Metrics) RecordStep(ctx context.Context, variant, step string, d time.Duration, failed bool) {
	m.stepDuration.Record(ctx, d.Seconds(), metric.WithAttributes(
		attribute.String("variant", variant),
		attribute.String("step", step),
		attribute.Bool("failed", failed),
	))
}

// Gatherer exposes the registry
func (m *Metrics) Gatherer() prometheus.Gatherer {
	return m.registry
}

// WriteTextfile writes the registry in text exposition format
func (m *Metrics) WriteTextfile(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create metrics directory: %w", err)
	}
	return prometheus.WriteToTextfile(path, m.registry)
}

// Shutdown stops the meter provider
func (m *Metrics) Shutdown(ctx context.Context) error {
	return m.provider.Shutdown(ctx)
}
