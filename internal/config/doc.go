// Package config provides centralized configuration management for valuationcli.
// It handles loading configuration from multiple sources, validation, and
// resolution of the on-disk layout used by every pipeline variant.
//
// # Configuration Sources
//
// Configuration is loaded from the following sources in order of precedence:
//
//	1. Environment variables (highest priority)
//	2. A .env file in the working directory
//	3. config.yaml or configs/config.yaml
//	4. Default values (lowest priority)
//
// # Environment Variables
//
// All environment variables follow the pattern VALUATION_* for namespacing:
//
//	VALUATION_LOGGING_LEVEL=debug
//	VALUATION_PATHS_BASE_DIR=/srv/valuation
//	VALUATION_SOURCES_HEADER_ROW=7
//	VALUATION_STATS_WINDOWS=120,360
//	VALUATION_TELEMETRY_METRICS_TEXTFILE=/var/lib/node_exporter/valuation.prom
//
// The FRED API key is read from VALUATION_FRED_API_KEY or FRED_API_KEY.
// It has no default and is never read from the YAML file.
//
// # Paths
//
// Paths resolves data/, charts/, figures/ and logs/ under the base
// directory:
//
//	paths := cfg.ResolvePaths()
//	csv := paths.CAPESeriesCSV // data/shiller_cape_series.csv
package config
