package config

import (
	"fmt"
	"os"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v2"
)

// Config represents the complete application configuration
type Config struct {
	Logging   LoggingConfig   `yaml:"logging" envconfig:"LOGGING"`
	Paths     PathsConfig     `yaml:"paths" envconfig:"PATHS"`
	Sources   SourcesConfig   `yaml:"sources" envconfig:"SOURCES"`
	FRED      FREDConfig      `yaml:"fred" envconfig:"FRED"`
	Stats     StatsConfig     `yaml:"stats" envconfig:"STATS"`
	Telemetry TelemetryConfig `yaml:"telemetry" envconfig:"TELEMETRY"`
	Export    ExportConfig    `yaml:"export" envconfig:"EXPORT"`
	Publish   PublishConfig   `yaml:"publish" envconfig:"PUBLISH"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level      string `yaml:"level" envconfig:"LEVEL" validate:"oneof=debug info warn warning error"`
	Output     string `yaml:"output" envconfig:"OUTPUT" validate:"oneof=console file both"`
	FilePath   string `yaml:"file_path" envconfig:"FILE_PATH"`
	MaxSizeMB  int    `yaml:"max_size_mb" envconfig:"MAX_SIZE_MB" validate:"gte=0"`
	MaxAgeDays int    `yaml:"max_age_days" envconfig:"MAX_AGE_DAYS" validate:"gte=0"`
}

// PathsConfig contains file system paths configuration
type PathsConfig struct {
	BaseDir    string `yaml:"base_dir" envconfig:"BASE_DIR" validate:"required"`
	DataDir    string `yaml:"data_dir" envconfig:"DATA_DIR" validate:"required"`
	ChartsDir  string `yaml:"charts_dir" envconfig:"CHARTS_DIR" validate:"required"`
	FiguresDir string `yaml:"figures_dir" envconfig:"FIGURES_DIR" validate:"required"`
	LogsDir    string `yaml:"logs_dir" envconfig:"LOGS_DIR" validate:"required"`
}

// SourcesConfig locates the CAPE inputs
type SourcesConfig struct {
	CAPEPageURL   string        `yaml:"cape_page_url" envconfig:"CAPE_PAGE_URL" validate:"required,url"`
	CAPETableID   string        `yaml:"cape_table_id" envconfig:"CAPE_TABLE_ID"`
	WorkbookFile  string        `yaml:"workbook_file" envconfig:"WORKBOOK_FILE" validate:"required"`
	WorkbookSheet string        `yaml:"workbook_sheet" envconfig:"WORKBOOK_SHEET" validate:"required"`
	HeaderRow     int           `yaml:"header_row" envconfig:"HEADER_ROW" validate:"gte=0"`
	DateColumn    string        `yaml:"date_column" envconfig:"DATE_COLUMN" validate:"required"`
	ValuePrefix   string        `yaml:"value_prefix" envconfig:"VALUE_PREFIX" validate:"required"`
	FetchTimeout  time.Duration `yaml:"fetch_timeout" envconfig:"FETCH_TIMEOUT" validate:"gt=0"`
	UseBrowser    bool          `yaml:"use_browser" envconfig:"USE_BROWSER"`
}

// FREDConfig configures the macro-data API. The key is never read from the
// YAML file.
type FREDConfig struct {
	APIKey          string        `yaml:"-" envconfig:"API_KEY"`
	BaseURL         string        `yaml:"base_url" envconfig:"BASE_URL" validate:"required,url"`
	MarketCapSeries string        `yaml:"market_cap_series" envconfig:"MARKET_CAP_SERIES" validate:"required"`
	GDPSeries       string        `yaml:"gdp_series" envconfig:"GDP_SERIES" validate:"required"`
	MarketCapScale  float64       `yaml:"market_cap_scale" envconfig:"MARKET_CAP_SCALE" validate:"gt=0"`
	Timeout         time.Duration `yaml:"timeout" envconfig:"TIMEOUT" validate:"gt=0"`
	RateLimit       float64       `yaml:"rate_limit" envconfig:"RATE_LIMIT" validate:"gt=0"`
	Burst           int           `yaml:"burst" envconfig:"BURST" validate:"gte=1"`
}

// StatsConfig holds the statistic windows
type StatsConfig struct {
	Windows []int `yaml:"windows" envconfig:"WINDOWS" validate:"required,min=1,dive,gt=0"`
}

// TelemetryConfig enables tracing and the metrics textfile
type TelemetryConfig struct {
	Tracing         bool   `yaml:"tracing" envconfig:"TRACING"`
	TraceFile       string `yaml:"trace_file" envconfig:"TRACE_FILE"`
	MetricsTextfile string `yaml:"metrics_textfile" envconfig:"METRICS_TEXTFILE"`
}

// ExportConfig shapes the written CSV files
type ExportConfig struct {
	// ExcelBOM prefixes CSVs with a UTF-8 BOM so Excel detects the encoding
	ExcelBOM bool `yaml:"excel_bom" envconfig:"EXCEL_BOM"`
}

// PublishConfig uploads artifacts to S3-compatible storage when enabled
type PublishConfig struct {
	Enabled         bool   `yaml:"enabled" envconfig:"ENABLED"`
	Bucket          string `yaml:"bucket" envconfig:"BUCKET" validate:"required_if=Enabled true"`
	Prefix          string `yaml:"prefix" envconfig:"PREFIX"`
	Region          string `yaml:"region" envconfig:"REGION"`
	Endpoint        string `yaml:"endpoint" envconfig:"ENDPOINT" validate:"omitempty,url"`
	PathStyle       bool   `yaml:"path_style" envconfig:"PATH_STYLE"`
	AccessKeyID     string `yaml:"-" envconfig:"ACCESS_KEY_ID"`
	SecretAccessKey string `yaml:"-" envconfig:"SECRET_ACCESS_KEY"`
}

// Load loads configuration from the first config file found in the usual
// locations, then from the environment.
func Load() (*Config, error) {
	return LoadFrom(getConfigFilePath())
}

// LoadFrom applies, in order of increasing precedence: defaults, the YAML
// file at configFile (if non-empty), a .env file in the working directory,
// and VALUATION_* environment variables.
func LoadFrom(configFile string) (*Config, error) {
	cfg := Default()

	if configFile != "" {
		if err := loadFromFile(configFile, cfg); err != nil {
			return nil, fmt.Errorf("failed to load config from file: %w", err)
		}
	}

	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to load .env file: %w", err)
	}

	if err := envconfig.Process(EnvPrefix, cfg); err != nil {
		return nil, fmt.Errorf("failed to load config from env: %w", err)
	}

	if cfg.FRED.APIKey == "" {
		cfg.FRED.APIKey = os.Getenv(FREDAPIKeyEnv)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// loadFromFile overlays the YAML file onto cfg. Keys absent from the file
// keep their current value.
func loadFromFile(filePath string, cfg *Config) error {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return err
	}
	return yaml.Unmarshal(data, cfg)
}

// Validate checks field constraints
func (c *Config) Validate() error {
	return validator.New().Struct(c)
}

// ResolvePaths resolves the directory layout under BaseDir
func (c *Config) ResolvePaths() *Paths {
	return NewPaths(c.Paths)
}

// getConfigFilePath returns the path to the config file
func getConfigFilePath() string {
	locations := []string{
		"config.yaml",
		"configs/config.yaml",
	}

	for _, location := range locations {
		if _, err := os.Stat(location); err == nil {
			return location
		}
	}

	return "" // No config file found, use env vars only
}

// Default returns default configuration
func Default() *Config {
	return &Config{
		Logging: LoggingConfig{
			Level:      "info",
			Output:     "console",
			FilePath:   "",
			MaxSizeMB:  10,
			MaxAgeDays: 30,
		},
		Paths: PathsConfig{
			BaseDir:    ".",
			DataDir:    DefaultDataDir,
			ChartsDir:  DefaultChartsDir,
			FiguresDir: DefaultFiguresDir,
			LogsDir:    DefaultLogsDir,
		},
		Sources: SourcesConfig{
			CAPEPageURL:   DefaultCAPEPageURL,
			CAPETableID:   DefaultCAPETableID,
			WorkbookFile:  DefaultWorkbookFile,
			WorkbookSheet: DefaultWorkbookSheet,
			HeaderRow:     DefaultHeaderRow,
			DateColumn:    DefaultDateColumn,
			ValuePrefix:   DefaultCAPEPrefix,
			FetchTimeout:  DefaultFetchTimeout,
		},
		FRED: FREDConfig{
			BaseURL:         DefaultFREDBaseURL,
			MarketCapSeries: DefaultMarketCapID,
			GDPSeries:       DefaultGDPID,
			MarketCapScale:  DefaultMarketCapUnit,
			Timeout:         DefaultFetchTimeout,
			RateLimit:       DefaultFREDRateLimit,
			Burst:           DefaultFREDBurst,
		},
		Stats: StatsConfig{
			Windows: []int{DefaultShortWindow, DefaultLongWindow},
		},
	}
}
