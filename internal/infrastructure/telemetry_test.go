package infrastructure

import (
	"bytes"
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"valuationcli/internal/config"
)

func TestInitializeTracing_Disabled(t *testing.T) {
	var buf bytes.Buffer
	tr, err := InitializeTracing(config.TelemetryConfig{}, &buf, slog.Default())
	require.NoError(t, err)

	_, span := tr.Tracer.Start(context.Background(), "noop")
	span.End()

	require.NoError(t, tr.Shutdown(context.Background()))
	assert.Empty(t, buf.String())
}

func TestInitializeTracing_File(t *testing.T) {
	traceFile := filepath.Join(t.TempDir(), "traces", "run.json")

	tr, err := InitializeTracing(config.TelemetryConfig{Tracing: true, TraceFile: traceFile}, &bytes.Buffer{}, slog.Default())
	require.NoError(t, err)

	_, span := tr.Tracer.Start(context.Background(), "normalize")
	span.End()
	require.NoError(t, tr.Shutdown(context.Background()))

	content, err := os.ReadFile(traceFile)
	require.NoError(t, err)
	assert.Contains(t, string(content), `"Name": "normalize"`)
}

func TestMetrics_WriteTextfile(t *testing.T) {
	m, err := NewMetrics()
	require.NoError(t, err)

	ctx := context.Background()
	m.RecordRows(ctx, "cape-source", 1850, 3)
	m.RecordLatest(ctx, "cape-source", "shiller_pe", 38.5)
	m.RecordStep(ctx, "buffett", "fetch", 150*time.Millisecond, false)

	families, err := m.Gatherer().Gather()
	require.NoError(t, err)
	names := make(map[string]bool)
	for _, f := range families {
		names[f.GetName()] = true
	}
	assert.True(t, names["valuation_rows_fetched_total"])
	assert.True(t, names["valuation_rows_dropped_total"])
	assert.True(t, names["valuation_latest_value"])
	assert.True(t, names["valuation_step_duration_seconds"])

	path := filepath.Join(t.TempDir(), "textfile", "valuation.prom")
	require.NoError(t, m.WriteTextfile(path))

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(content), "valuation_rows_fetched_total{")
	assert.Contains(t, string(content), `variant="cape-source"`)
	assert.Contains(t, string(content), "} 1850")
	assert.Contains(t, string(content), `valuation_step_duration_seconds_count{failed="false",step="fetch",variant="buffett"} 1`)

	require.NoError(t, m.Shutdown(ctx))
}
