package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func month(y int, m time.Month) time.Time {
	return time.Date(y, m, 1, 0, 0, 0, 0, time.UTC)
}

func TestNewSeries_SortsAndDedupes(t *testing.T) {
	s := NewSeries("shiller_pe", FrequencyMonthly, []TimeSeriesPoint{
		{Date: month(2020, 3), Value: 3},
		{Date: month(2020, 1), Value: 1},
		{Date: month(2020, 3), Value: 33},
		{Date: month(2020, 2), Value: 2},
	})

	require.Equal(t, 3, s.Len())
	assert.True(t, s.IsAscending())
	assert.Equal(t, []float64{1, 2, 3}, s.Values())
	assert.Equal(t, "shiller_pe", s.Name)
}

func TestNewSeries_DoesNotMutateInput(t *testing.T) {
	in := []TimeSeriesPoint{
		{Date: month(2021, 2), Value: 2},
		{Date: month(2021, 1), Value: 1},
	}
	_ = NewSeries("x", FrequencyMonthly, in)

	assert.Equal(t, 2.0, in[0].Value)
}

func TestSeries_Latest(t *testing.T) {
	_, ok := Series{}.Latest()
	assert.False(t, ok)

	s := NewSeries("x", FrequencyQuarterly, []TimeSeriesPoint{
		{Date: month(2020, 1), Value: 1},
		{Date: month(2020, 4), Value: 4},
	})
	p, ok := s.Latest()
	require.True(t, ok)
	assert.Equal(t, month(2020, 4), p.Date)
	assert.Equal(t, 4.0, p.Value)
}

func TestSeries_IsAscending_RejectsDuplicates(t *testing.T) {
	s := Series{Points: []TimeSeriesPoint{
		{Date: month(2020, 1)},
		{Date: month(2020, 1)},
	}}
	assert.False(t, s.IsAscending())
}

func TestRollingColumnName(t *testing.T) {
	assert.Equal(t, "rolling_mean_120", RollingColumnName(120))
}
