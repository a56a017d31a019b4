package infrastructure

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"

	"valuationcli/internal/config"
	"valuationcli/pkg/contracts"
)

const (
	ServiceName = "valuationcli"
	TracerName  = "valuationcli"
	MeterName   = "valuationcli"
)

// Tracing holds the tracer used by the pipeline and a shutdown hook that
// flushes pending spans.
type Tracing struct {
	Tracer   trace.Tracer
	provider *sdktrace.TracerProvider
	file     *os.File
}

// InitializeTracing returns a stdout-exporting tracer when tracing is
// enabled and a no-op tracer otherwise. Spans go to cfg.TraceFile when set,
// else to stdout.
func InitializeTracing(cfg config.TelemetryConfig, stdout io.Writer, logger *slog.Logger) (*Tracing, error) {
	if !cfg.Tracing {
		return &Tracing{Tracer: noop.NewTracerProvider().Tracer(TracerName)}, nil
	}

	t := &Tracing{}
	out := stdout
	if cfg.TraceFile != "" {
		if err := os.MkdirAll(filepath.Dir(cfg.TraceFile), 0755); err != nil {
			return nil, fmt.Errorf("failed to create trace directory: %w", err)
		}
		f, err := os.OpenFile(cfg.TraceFile, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
		if err != nil {
			return nil, fmt.Errorf("failed to open trace file: %w", err)
		}
		t.file = f
		out = f
	}

	exporter, err := stdouttrace.New(
		stdouttrace.WithWriter(out),
		stdouttrace.WithPrettyPrint(),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create trace exporter: %w", err)
	}

	res := resource.NewWithAttributes(
		semconv.SchemaURL,
		semconv.ServiceName(ServiceName),
		semconv.ServiceVersion(contracts.Version),
		attribute.String("service.instance.id", GenerateTraceID()),
	)

	t.provider = sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
	)
	t.Tracer = t.provider.Tracer(TracerName, trace.WithInstrumentationVersion(contracts.Version))
	otel.SetTracerProvider(t.provider)

	logger.Debug("Tracing initialized", slog.String("trace_file", cfg.TraceFile))

	return t, nil
}

// Shutdown flushes spans and closes the trace file
func (t *Tracing) Shutdown(ctx context.Context) error {
	if t.provider == nil {
		return nil
	}
	err := t.provider.Shutdown(ctx)
	if t.file != nil {
		if cerr := t.file.Close(); err == nil {
			err = cerr
		}
	}
	return err
}
