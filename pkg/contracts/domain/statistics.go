package domain

import (
	"fmt"
	"time"
)

// OptionalFloat is a float that may be undefined, e.g. a rolling mean
// before the window is full.
type OptionalFloat struct {
	Value float64
	Valid bool
}

// Some wraps a defined value
func Some(v float64) OptionalFloat {
	return OptionalFloat{Value: v, Valid: true}
}

// None is the undefined value
func None() OptionalFloat {
	return OptionalFloat{}
}

// DerivedColumn is a named per-point statistic aligned with a Series
type DerivedColumn struct {
	Name   string          `json:"name"`
	Values []OptionalFloat `json:"values"`
}

// DerivedStatistics describes the latest point against its history
type DerivedStatistics struct {
	SeriesName      string                `json:"series_name"`
	Date            time.Time             `json:"date"`
	Latest          float64               `json:"latest"`
	Count           int                   `json:"count"`
	RollingMeans    map[int]OptionalFloat `json:"rolling_means"`
	ExpandingMean   float64               `json:"expanding_mean"`
	ExpandingMedian float64               `json:"expanding_median"`
	PercentileRank  float64               `json:"percentile_rank"`
}

// RollingColumnName is the CSV/legend label for a rolling mean window
func RollingColumnName(window int) string {
	return fmt.Sprintf("rolling_mean_%d", window)
}

// Outcome is the qualitative result of comparing two values
type Outcome string

const (
	OutcomeAbove Outcome = "ABOVE"
	OutcomeBelow Outcome = "BELOW"
	OutcomeEqual Outcome = "EQUAL"
)

// Comparison is a current value set against a labelled reference
type Comparison struct {
	Label     string  `json:"label"`
	Current   float64 `json:"current"`
	Reference float64 `json:"reference"`
	Outcome   Outcome `json:"outcome"`
}

// RatioSeries is a ratio derived from two series joined on date
type RatioSeries struct {
	Numerator   Series  `json:"numerator"`
	Denominator Series  `json:"denominator"`
	Scale       float64 `json:"scale"`
	Ratio       Series  `json:"ratio"`
}
