package config

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewPaths(t *testing.T) {
	base := t.TempDir()
	abs := filepath.Join(t.TempDir(), "elsewhere")

	p := NewPaths(PathsConfig{
		BaseDir:    base,
		DataDir:    "data",
		ChartsDir:  "charts",
		FiguresDir: abs,
		LogsDir:    "logs",
	})

	assert.Equal(t, filepath.Join(base, "data"), p.DataDir)
	assert.Equal(t, filepath.Join(base, "charts"), p.ChartsDir)
	assert.Equal(t, abs, p.FiguresDir)
	assert.Equal(t, filepath.Join(base, "data", CAPESeriesCSV), p.CAPESeriesCSV)
	assert.Equal(t, filepath.Join(base, "data", BuffettCSV), p.BuffettCSV)
	assert.Equal(t, filepath.Join(base, "charts", "x.png"), p.GetChartPath("x.png"))
	assert.Equal(t, filepath.Join(abs, "y.png"), p.GetFigurePath("y.png"))
}

func TestNewPaths_EmptyBase(t *testing.T) {
	p := NewPaths(PathsConfig{DataDir: "data"})
	assert.Equal(t, "data", p.DataDir)
}

func TestGetDataPath_Absolute(t *testing.T) {
	p := NewPaths(Default().Paths)
	abs := filepath.Join(t.TempDir(), "ie_data.xlsx")

	assert.Equal(t, abs, p.GetDataPath(abs))
	assert.Equal(t, filepath.Join("data", "ie_data.xlsx"), p.GetDataPath("ie_data.xlsx"))
}

func TestEnsureDirectories(t *testing.T) {
	base := t.TempDir()
	cfg := Default().Paths
	cfg.BaseDir = base
	p := NewPaths(cfg)

	require.NoError(t, p.EnsureDirectories())

	assert.True(t, FileExists(p.DataDir))
	assert.True(t, FileExists(p.ChartsDir))
	assert.True(t, FileExists(p.FiguresDir))
	assert.False(t, FileExists(filepath.Join(base, "missing")))
}
