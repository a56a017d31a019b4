package testutil

import (
	"time"

	"valuationcli/pkg/contracts/domain"
)

// Month returns midnight UTC on the first day of the given month
func Month(year int, month time.Month) time.Time {
	return time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
}

// MonthlySeries builds a monthly series with one point per value,
// starting at start and advancing one month per point.
func MonthlySeries(name string, start time.Time, values ...float64) domain.Series {
	points := make([]domain.TimeSeriesPoint, len(values))
	for i, v := range values {
		points[i] = domain.TimeSeriesPoint{Date: start.AddDate(0, i, 0), Value: v}
	}
	return domain.NewSeries(name, domain.FrequencyMonthly, points)
}

// QuarterlySeries is MonthlySeries with a three month step
func QuarterlySeries(name string, start time.Time, values ...float64) domain.Series {
	points := make([]domain.TimeSeriesPoint, len(values))
	for i, v := range values {
		points[i] = domain.TimeSeriesPoint{Date: start.AddDate(0, 3*i, 0), Value: v}
	}
	return domain.NewSeries(name, domain.FrequencyQuarterly, points)
}

// Ramp returns n values 1, 2, ..., n
func Ramp(n int) []float64 {
	values := make([]float64, n)
	for i := range values {
		values[i] = float64(i + 1)
	}
	return values
}
