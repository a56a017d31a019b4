package config

import "time"

// Application constants
const (
	AppName = "valuationcli"

	// EnvPrefix namespaces every environment variable read by Load
	EnvPrefix = "VALUATION"

	// FREDAPIKeyEnv is the conventional, unprefixed variable for the FRED key
	FREDAPIKeyEnv = "FRED_API_KEY"

	// Network
	DefaultFetchTimeout  = 20 * time.Second
	DefaultFREDRateLimit = 2.0 // requests per second; FRED allows 120/min
	DefaultFREDBurst     = 1

	// Sources
	DefaultCAPEPageURL   = "https://www.multpl.com/shiller-pe/table/by-month"
	DefaultCAPETableID   = "datatable"
	DefaultFREDBaseURL   = "https://api.stlouisfed.org"
	DefaultMarketCapID   = "NCBEILQ027S" // market cap proxy, millions of $
	DefaultGDPID         = "GDP"         // nominal GDP, billions of $, SAAR
	DefaultMarketCapUnit = 1000.0        // millions -> billions
	DefaultWorkbookFile  = "ie_data.xlsx"
	DefaultWorkbookSheet = "Data"
	DefaultHeaderRow     = 7
	DefaultDateColumn    = "Date"
	DefaultCAPEPrefix    = "CAPE"

	// Statistics
	DefaultShortWindow = 120
	DefaultLongWindow  = 360

	// Directory layout, relative to the base directory
	DefaultDataDir    = "data"
	DefaultChartsDir  = "charts"
	DefaultFiguresDir = "figures"
	DefaultLogsDir    = "logs"

	// Output files
	CAPESeriesCSV        = "shiller_cape_series.csv"
	CAPEScrapedCSV       = "shiller_pe_scraped.csv"
	BuffettCSV           = "buffett_indicator.csv"
	CAPELineChart        = "cape_line.png"
	CAPEScrapedChart     = "shiller_pe_scraped.png"
	BuffettChart         = "buffett_indicator.png"
	CAPEHistoryFigure    = "shiller_pe_history.png"
	BuffettHistoryFigure = "buffett_indicator_history.png"
	CAPEValueColumn      = "shiller_pe"
	BuffettValueColumn   = "buffett_indicator"
	MarketCapColumn      = "mcap_billions"
	GDPColumn            = "gdp_billions"
)
