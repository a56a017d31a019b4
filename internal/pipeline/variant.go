package pipeline

import (
	"fmt"
	"path/filepath"
	"sort"

	"valuationcli/internal/config"
	apperrors "valuationcli/internal/errors"
	"valuationcli/pkg/contracts/domain"
)

// SourceKind selects the fetcher a variant reads from
type SourceKind string

const (
	SourceSpreadsheet SourceKind = "spreadsheet"
	SourceHTMLTable   SourceKind = "html"
	SourceFRED        SourceKind = "fred"
	SourceCSV         SourceKind = "csv"
)

// Variant names
const (
	VariantCAPESource = "cape-source"
	VariantCAPEScrape = "cape-scrape"
	VariantBuffett    = "buffett"
	VariantAnalyze    = "analyze"
)

// Variant is one parameterization of the pipeline. Everything that differs
// between the commands lives here; the steps themselves are shared.
type Variant struct {
	Name        string
	Description string
	Source      SourceKind
	ValueColumn string
	Frequency   domain.Frequency

	// Windows overrides the configured rolling windows when set
	Windows []int

	// Output
	OutputCSV      string // file name in the data directory; empty writes no CSV
	CSVDerived     bool   // append rolling and expanding columns to the CSV
	Chart          string
	ChartInFigures bool // place the chart in the figures directory

	// Presentation
	Title          string
	ValueLabel     string
	XLabel         string
	YLabel         string
	SeriesLabel    string
	Grid           bool
	Overlays       bool // draw rolling and expanding lines over the series
	ReferenceLines bool // draw the historical mean and median

	// SourceCSV only
	InputCSV string
	Producer string

	// SourceHTMLTable only
	TableDateColumn  string
	TableValuePrefix string
}

// CAPESource reads the CAPE column from the spreadsheet archive
func CAPESource() Variant {
	return Variant{
		Name:        VariantCAPESource,
		Description: "Extract the Shiller CAPE series from the ie_data workbook",
		Source:      SourceSpreadsheet,
		ValueColumn: config.CAPEValueColumn,
		Frequency:   domain.FrequencyMonthly,
		OutputCSV:   config.CAPESeriesCSV,
		Chart:       config.CAPELineChart,
		Title:       "Shiller CAPE (updated daily within month)",
		ValueLabel:  "Shiller P/E",
		YLabel:      "CAPE",
	}
}

// CAPEScrape reads the monthly P/E table from multpl.com
func CAPEScrape() Variant {
	return Variant{
		Name:             VariantCAPEScrape,
		Description:      "Scrape the monthly Shiller P/E table and compare with its history",
		Source:           SourceHTMLTable,
		ValueColumn:      config.CAPEValueColumn,
		Frequency:        domain.FrequencyMonthly,
		OutputCSV:        config.CAPEScrapedCSV,
		CSVDerived:       true,
		Chart:            config.CAPEScrapedChart,
		Title:            "Shiller P/E by Month",
		ValueLabel:       "Shiller P/E",
		XLabel:           "Date",
		YLabel:           "P/E",
		SeriesLabel:      "Shiller P/E",
		Grid:             true,
		Overlays:         true,
		TableDateColumn:  "Date",
		TableValuePrefix: "Value",
	}
}

// Buffett divides the market cap proxy by nominal GDP
func Buffett() Variant {
	return Variant{
		Name:        VariantBuffett,
		Description: "Derive the Buffett Indicator from FRED market cap and GDP series",
		Source:      SourceFRED,
		ValueColumn: config.BuffettValueColumn,
		Frequency:   domain.FrequencyQuarterly,
		// 10 and 30 years of quarters
		Windows:     []int{40, 120},
		OutputCSV:   config.BuffettCSV,
		CSVDerived:  true,
		Chart:       config.BuffettChart,
		Title:       "Buffett Indicator (market cap / GDP)",
		ValueLabel:  "Buffett Indicator",
		XLabel:      "Date",
		YLabel:      "% of GDP",
		SeriesLabel: "Market cap / GDP",
		Grid:        true,
		Overlays:    true,
	}
}

// Analyze charts a CSV written by an earlier command
func Analyze() Variant {
	return Variant{
		Name:           VariantAnalyze,
		Description:    "Chart the full CAPE history and compare the latest value with it",
		Source:         SourceCSV,
		ValueColumn:    config.CAPEValueColumn,
		Frequency:      domain.FrequencyMonthly,
		Chart:          config.CAPEHistoryFigure,
		ChartInFigures: true,
		Title:          "Shiller P/E (CAPE): Full History",
		ValueLabel:     "Shiller P/E",
		XLabel:         "Date",
		YLabel:         "P/E",
		SeriesLabel:    "Shiller P/E (CAPE)",
		Grid:           true,
		Overlays:       true,
		ReferenceLines: true,
		InputCSV:       config.CAPESeriesCSV,
		Producer:       VariantCAPESource,
	}
}

var variants = map[string]func() Variant{
	VariantCAPESource: CAPESource,
	VariantCAPEScrape: CAPEScrape,
	VariantBuffett:    Buffett,
	VariantAnalyze:    Analyze,
}

// Lookup returns the variant called name
func Lookup(name string) (Variant, error) {
	build, ok := variants[name]
	if !ok {
		return Variant{}, apperrors.NewConfigError(fmt.Sprintf("unknown variant %q", name), nil).
			WithContext("known", Names())
	}
	return build(), nil
}

// Names lists the variant names in sorted order
func Names() []string {
	names := make([]string, 0, len(variants))
	for name := range variants {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// WithWindows returns v with its rolling windows replaced. An empty list
// keeps the variant's own.
func (v Variant) WithWindows(windows []int) Variant {
	if len(windows) > 0 {
		v.Windows = append([]int(nil), windows...)
	}
	return v
}

// WithInput points a csv-source variant at path. The value column,
// frequency and producer follow the command that writes that file.
func (v Variant) WithInput(path string) Variant {
	if v.Source != SourceCSV || path == "" {
		return v
	}
	v.InputCSV = path
	switch filepath.Base(path) {
	case config.CAPEScrapedCSV:
		v.Producer = VariantCAPEScrape
	case config.BuffettCSV:
		b := Buffett()
		v.Producer = VariantBuffett
		v.ValueColumn = b.ValueColumn
		v.Frequency = b.Frequency
		v.Windows = b.Windows
		v.Chart = config.BuffettHistoryFigure
		v.Title = "Buffett Indicator: Full History"
		v.ValueLabel = b.ValueLabel
		v.YLabel = b.YLabel
		v.SeriesLabel = b.SeriesLabel
	default:
		v.Producer = VariantCAPESource
	}
	return v
}

// windows returns the variant's windows, which the command line may have
// replaced, or the configured ones
func (v Variant) windows(cfg config.StatsConfig) []int {
	if len(v.Windows) > 0 {
		return v.Windows
	}
	return cfg.Windows
}
