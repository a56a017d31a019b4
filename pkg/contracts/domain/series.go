package domain

import (
	"sort"
	"time"
)

// Frequency is the sampling period of a series
type Frequency string

const (
	FrequencyMonthly   Frequency = "monthly"
	FrequencyQuarterly Frequency = "quarterly"
)

// TimeSeriesPoint is one observation, dated to the first day of its period
type TimeSeriesPoint struct {
	Date  time.Time `json:"date"`
	Value float64   `json:"value"`
}

// Series is an ordered sequence of points, strictly ascending by date
type Series struct {
	Name      string            `json:"name"`
	Frequency Frequency         `json:"frequency"`
	Points    []TimeSeriesPoint `json:"points"`
}

// NewSeries builds a Series from points in any order. Points are stably
// sorted by date and only the first point for each date is kept.
func NewSeries(name string, freq Frequency, points []TimeSeriesPoint) Series {
	sorted := make([]TimeSeriesPoint, len(points))
	copy(sorted, points)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Date.Before(sorted[j].Date)
	})

	out := sorted[:0]
	for i, p := range sorted {
		if i > 0 && p.Date.Equal(out[len(out)-1].Date) {
			continue
		}
		out = append(out, p)
	}

	return Series{Name: name, Frequency: freq, Points: out}
}

// Len returns the number of points
func (s Series) Len() int {
	return len(s.Points)
}

// Values returns the point values in date order
func (s Series) Values() []float64 {
	values := make([]float64, len(s.Points))
	for i, p := range s.Points {
		values[i] = p.Value
	}
	return values
}

// Dates returns the point dates in order
func (s Series) Dates() []time.Time {
	dates := make([]time.Time, len(s.Points))
	for i, p := range s.Points {
		dates[i] = p.Date
	}
	return dates
}

// Latest returns the most recent point
func (s Series) Latest() (TimeSeriesPoint, bool) {
	if len(s.Points) == 0 {
		return TimeSeriesPoint{}, false
	}
	return s.Points[len(s.Points)-1], true
}

// IsAscending reports whether dates are strictly increasing
func (s Series) IsAscending() bool {
	for i := 1; i < len(s.Points); i++ {
		if !s.Points[i].Date.After(s.Points[i-1].Date) {
			return false
		}
	}
	return true
}

// Index returns a date-keyed lookup of values
func (s Series) Index() map[time.Time]float64 {
	idx := make(map[time.Time]float64, len(s.Points))
	for _, p := range s.Points {
		idx[p.Date] = p.Value
	}
	return idx
}
