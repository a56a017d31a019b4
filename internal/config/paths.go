package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
)

// Paths contains all the application paths.
// Every artifact location is derived from here.
type Paths struct {
	BaseDir    string
	DataDir    string
	ChartsDir  string
	FiguresDir string
	LogsDir    string

	// Well-known files
	CAPESeriesCSV  string
	CAPEScrapedCSV string
	BuffettCSV     string
}

// NewPaths resolves the configured directories against BaseDir. Absolute
// directory settings are kept as they are.
func NewPaths(cfg PathsConfig) *Paths {
	base := cfg.BaseDir
	if base == "" {
		base = "."
	}
	resolve := func(dir string) string {
		if filepath.IsAbs(dir) {
			return dir
		}
		return filepath.Join(base, dir)
	}

	dataDir := resolve(cfg.DataDir)

	return &Paths{
		BaseDir:    base,
		DataDir:    dataDir,
		ChartsDir:  resolve(cfg.ChartsDir),
		FiguresDir: resolve(cfg.FiguresDir),
		LogsDir:    resolve(cfg.LogsDir),

		CAPESeriesCSV:  filepath.Join(dataDir, CAPESeriesCSV),
		CAPEScrapedCSV: filepath.Join(dataDir, CAPEScrapedCSV),
		BuffettCSV:     filepath.Join(dataDir, BuffettCSV),
	}
}

// EnsureDirectories creates the output directories if they don't exist
func (p *Paths) EnsureDirectories() error {
	directories := []string{
		p.DataDir,
		p.ChartsDir,
		p.FiguresDir,
	}

	for _, dir := range directories {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
		slog.Debug("Ensured directory exists", slog.String("directory", dir))
	}

	return nil
}

// FileExists checks if a file exists
func FileExists(path string) bool {
	_, err := os.Stat(path)
	return !os.IsNotExist(err)
}

// GetDataPath returns the path for a data file
func (p *Paths) GetDataPath(filename string) string {
	if filepath.IsAbs(filename) {
		return filename
	}
	return filepath.Join(p.DataDir, filename)
}

// GetChartPath returns the path for a chart image
func (p *Paths) GetChartPath(filename string) string {
	return filepath.Join(p.ChartsDir, filename)
}

// GetFigurePath returns the path for an analysis figure
func (p *Paths) GetFigurePath(filename string) string {
	return filepath.Join(p.FiguresDir, filename)
}

// GetLogPath returns the path for a log file
func (p *Paths) GetLogPath(filename string) string {
	return filepath.Join(p.LogsDir, filename)
}

// LogPathResolution logs the resolved layout for debugging
func (p *Paths) LogPathResolution(logger *slog.Logger) {
	logger.Debug("Path resolution summary",
		slog.Group("directories",
			slog.String("base", p.BaseDir),
			slog.String("data", p.DataDir),
			slog.String("charts", p.ChartsDir),
			slog.String("figures", p.FiguresDir),
			slog.String("logs", p.LogsDir),
		),
		slog.Group("files",
			slog.String("cape_series_csv", p.CAPESeriesCSV),
			slog.String("cape_scraped_csv", p.CAPEScrapedCSV),
			slog.String("buffett_csv", p.BuffettCSV),
		))
}
