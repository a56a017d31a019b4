package dataprocessing

import (
	"fmt"
	"log/slog"
	"math"
	"strconv"
	"strings"
	"time"
	"unicode"

	apperrors "valuationcli/internal/errors"
	"valuationcli/pkg/contracts/domain"
)

// NormalizeOptions maps one source table onto the canonical schema
type NormalizeOptions struct {
	// DateColumn is matched exactly (trimmed, case-insensitive)
	DateColumn string
	// ValuePrefix is matched as a label prefix; the first match wins
	ValuePrefix string
	// OutputName is the canonical value column name, e.g. "shiller_pe"
	OutputName string
	Frequency  domain.Frequency
	ParseDate  func(string) (time.Time, error)
}

// NormalizeResult is the cleaned series plus row accounting
type NormalizeResult struct {
	Series     domain.Series
	ValueLabel string
	RowsIn     int
	BadDates   int
	BadValues  int
	Duplicates int
}

// Dropped is the number of input rows not present in the series
func (r NormalizeResult) Dropped() int {
	return r.RowsIn - r.Series.Len()
}

// Normalizer turns raw source tables into canonical series
type Normalizer struct {
	logger *slog.Logger
}

// NewNormalizer creates a normalizer that logs through logger
func NewNormalizer(logger *slog.Logger) *Normalizer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Normalizer{logger: logger}
}

// Normalize selects the date and value columns, parses every row, drops rows
// whose date or value fails to parse, then sorts by date and keeps the first
// row for each date. Column lookup failures abort; row failures do not.
func (n *Normalizer) Normalize(table domain.RawTable, opts NormalizeOptions) (NormalizeResult, error) {
	if opts.ParseDate == nil {
		opts.ParseDate = ParseFractionalMonth
	}
	if opts.OutputName == "" {
		return NormalizeResult{}, apperrors.NewConfigError("output column name is empty", nil)
	}

	dateIdx, err := RequireColumn(table.Headers, opts.DateColumn)
	if err != nil {
		return NormalizeResult{}, err
	}
	valueIdx, valueLabel, err := DetectColumn(table.Headers, opts.ValuePrefix)
	if err != nil {
		return NormalizeResult{}, err
	}

	n.logger.Info("Detected columns",
		slog.String("source", table.Source),
		slog.String("date_column", table.Headers[dateIdx]),
		slog.String("value_column", valueLabel),
		slog.Int("value_index", valueIdx))

	result := NormalizeResult{ValueLabel: valueLabel, RowsIn: len(table.Rows)}
	points := make([]domain.TimeSeriesPoint, 0, len(table.Rows))

	for i := range table.Rows {
		date, err := opts.ParseDate(table.Cell(i, dateIdx))
		if err != nil {
			result.BadDates++
			n.logger.Debug("Dropped row: date", slog.Int("row", i), slog.String("error", err.Error()))
			continue
		}
		value, err := ParseValue(table.Cell(i, valueIdx))
		if err != nil {
			result.BadValues++
			n.logger.Debug("Dropped row: value", slog.Int("row", i), slog.String("error", err.Error()))
			continue
		}
		points = append(points, domain.TimeSeriesPoint{Date: date, Value: value})
	}

	result.Series = domain.NewSeries(opts.OutputName, opts.Frequency, points)
	result.Duplicates = len(points) - result.Series.Len()

	n.logger.Info("Normalized table",
		slog.String("source", table.Source),
		slog.String("series", opts.OutputName),
		slog.Int("rows_in", result.RowsIn),
		slog.Int("rows_out", result.Series.Len()),
		slog.Int("bad_dates", result.BadDates),
		slog.Int("bad_values", result.BadValues),
		slog.Int("duplicates", result.Duplicates))

	return result, nil
}

// ParseValue coerces a cell to a finite float. Surrounding whitespace
// (including non-breaking and en spaces) and thousands separators are
// ignored.
func ParseValue(cell string) (float64, error) {
	s := strings.TrimFunc(cell, unicode.IsSpace)
	s = strings.ReplaceAll(s, ",", "")
	if s == "" {
		return 0, apperrors.NewParsingError("empty value", nil)
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, apperrors.NewParsingError(fmt.Sprintf("invalid value %q", cell), err)
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, apperrors.NewParsingError(fmt.Sprintf("non-finite value %q", cell), nil)
	}
	return v, nil
}
