package analytics

import (
	"fmt"
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	apperrors "valuationcli/internal/errors"
	"valuationcli/pkg/contracts/domain"
)

// RollingMean returns the trailing mean of window values at each index.
// Entries before index window-1 are undefined. A non-positive window yields
// all undefined entries.
func RollingMean(values []float64, window int) []domain.OptionalFloat {
	out := make([]domain.OptionalFloat, len(values))
	if window <= 0 {
		return out
	}
	for i := window - 1; i < len(values); i++ {
		out[i] = domain.Some(stat.Mean(values[i-window+1:i+1], nil))
	}
	return out
}

// ExpandingMean returns the mean of values[0..i] at each index
func ExpandingMean(values []float64) []float64 {
	out := make([]float64, len(values))
	var sum float64
	for i, v := range values {
		sum += v
		out[i] = sum / float64(i+1)
	}
	return out
}

// ExpandingMedian returns the median of values[0..i] at each index. Even
// length prefixes average the two middle values.
func ExpandingMedian(values []float64) []float64 {
	out := make([]float64, len(values))
	sorted := make([]float64, 0, len(values))
	for i, v := range values {
		pos := sort.SearchFloat64s(sorted, v)
		sorted = append(sorted, 0)
		copy(sorted[pos+1:], sorted[pos:])
		sorted[pos] = v
		out[i] = medianOfSorted(sorted)
	}
	return out
}

// Median returns the median of values, or 0 for an empty slice
func Median(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)
	return medianOfSorted(sorted)
}

func medianOfSorted(sorted []float64) float64 {
	n := len(sorted)
	if n == 0 {
		return 0
	}
	if n%2 == 0 {
		return (sorted[n/2-1] + sorted[n/2]) / 2
	}
	return sorted[n/2]
}

// PercentileRank returns the percentage of history at or below value using
// the "mean" kind: (count(<v) + count(<=v)) / 2 / n * 100. An empty
// history ranks 0.
func PercentileRank(value float64, history []float64) float64 {
	if len(history) == 0 {
		return 0
	}
	var below, atOrBelow int
	for _, h := range history {
		if h < value {
			below++
		}
		if h <= value {
			atOrBelow++
		}
	}
	return float64(below+atOrBelow) / 2 / float64(len(history)) * 100
}

// Compare sets current against reference. Equality is exact float
// equality, so values that differ only by rounding compare ABOVE or BELOW.
func Compare(current, reference float64, label string) domain.Comparison {
	outcome := domain.OutcomeEqual
	switch {
	case current > reference:
		outcome = domain.OutcomeAbove
	case current < reference:
		outcome = domain.OutcomeBelow
	}
	return domain.Comparison{
		Label:     label,
		Current:   current,
		Reference: reference,
		Outcome:   outcome,
	}
}

// Describe computes the statistics of the latest point of s against its
// full history. Rolling means are undefined for windows longer than s.
func Describe(s domain.Series, windows []int) (domain.DerivedStatistics, error) {
	latest, ok := s.Latest()
	if !ok {
		return domain.DerivedStatistics{}, apperrors.NewConfigError(
			fmt.Sprintf("series %q has no valid rows", s.Name), nil)
	}

	values := s.Values()
	stats := domain.DerivedStatistics{
		SeriesName:      s.Name,
		Date:            latest.Date,
		Latest:          latest.Value,
		Count:           len(values),
		RollingMeans:    make(map[int]domain.OptionalFloat, len(windows)),
		ExpandingMean:   floats.Sum(values) / float64(len(values)),
		ExpandingMedian: Median(values),
		PercentileRank:  PercentileRank(latest.Value, values),
	}
	for _, w := range windows {
		if w <= 0 || w > len(values) {
			stats.RollingMeans[w] = domain.None()
			continue
		}
		stats.RollingMeans[w] = domain.Some(stat.Mean(values[len(values)-w:], nil))
	}
	return stats, nil
}

// Column names for expanding statistics
const (
	ExpandingMeanColumn   = "expanding_mean"
	ExpandingMedianColumn = "expanding_median"
)

// DerivedColumns computes the per-point columns written next to a series:
// one rolling mean per window, then the expanding mean and median when
// expanding is set.
func DerivedColumns(s domain.Series, windows []int, expanding bool) []domain.DerivedColumn {
	values := s.Values()
	cols := make([]domain.DerivedColumn, 0, len(windows)+2)
	for _, w := range windows {
		cols = append(cols, domain.DerivedColumn{
			Name:   domain.RollingColumnName(w),
			Values: RollingMean(values, w),
		})
	}
	if expanding {
		cols = append(cols,
			domain.DerivedColumn{Name: ExpandingMeanColumn, Values: defined(ExpandingMean(values))},
			domain.DerivedColumn{Name: ExpandingMedianColumn, Values: defined(ExpandingMedian(values))},
		)
	}
	return cols
}

func defined(values []float64) []domain.OptionalFloat {
	out := make([]domain.OptionalFloat, len(values))
	for i, v := range values {
		out[i] = domain.Some(v)
	}
	return out
}
