package dataprocessing

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "valuationcli/internal/errors"
)

func TestParseFractionalMonth(t *testing.T) {
	tests := []struct {
		token     string
		wantYear  int
		wantMonth time.Month
		wantErr   bool
	}{
		{token: "2020.1", wantYear: 2020, wantMonth: time.October},
		{token: "2020.4", wantYear: 2020, wantMonth: time.April},
		{token: "2020.12", wantYear: 2020, wantMonth: time.December},
		{token: "2020.10", wantYear: 2020, wantMonth: time.October},
		{token: "2020.11", wantYear: 2020, wantMonth: time.November},
		{token: "1871.01", wantYear: 1871, wantMonth: time.January},
		{token: "1871.09", wantYear: 1871, wantMonth: time.September},
		{token: "2020.123", wantYear: 2020, wantMonth: time.December},
		{token: " 2024.3 ", wantYear: 2024, wantMonth: time.March},
		{token: "2024.0a5", wantYear: 2024, wantMonth: time.May},
		{token: "2020.", wantErr: true},
		{token: "2020", wantErr: true},
		{token: "", wantErr: true},
		{token: "2020.x", wantErr: true},
		{token: "2020.0", wantErr: true},
		{token: "2020.13", wantErr: true},
		{token: "20.5", wantErr: true},
		{token: "Date", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("%q", tt.token), func(t *testing.T) {
			got, err := ParseFractionalMonth(tt.token)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, apperrors.IsType(err, apperrors.ErrTypeParsing))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, time.Date(tt.wantYear, tt.wantMonth, 1, 0, 0, 0, 0, time.UTC), got)
		})
	}
}

func TestParseFractionalMonth_OctoberOnlyForLiteralOne(t *testing.T) {
	tokens := []string{"2020.1", "2020.4", "2020.12"}
	var months []int
	for _, tok := range tokens {
		d, err := ParseFractionalMonth(tok)
		require.NoError(t, err)
		months = append(months, int(d.Month()))
	}
	assert.Equal(t, []int{10, 4, 12}, months)
}

func TestParseFractionalMonth_PaddedRule(t *testing.T) {
	// every fragment other than "1" follows month = int(pad(F)[:2])
	for f := 2; f <= 12; f++ {
		frag := fmt.Sprintf("%d", f)
		d, err := ParseFractionalMonth("1999." + frag)
		require.NoError(t, err, frag)

		padded := frag
		if len(padded) == 1 {
			padded = "0" + padded
		}
		var want int
		_, err = fmt.Sscanf(padded[:2], "%d", &want)
		require.NoError(t, err)
		assert.Equal(t, want, int(d.Month()), frag)
	}
}

func TestParseMonthDate(t *testing.T) {
	tests := []struct {
		name    string
		token   string
		layouts []string
		want    time.Time
		wantErr bool
	}{
		{name: "iso default", token: "2025-07-01", want: time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC)},
		{name: "iso mid month truncated", token: "2025-07-15", want: time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC)},
		{name: "multpl layout", token: "Nov 1, 2025", layouts: []string{LayoutMonthly}, want: time.Date(2025, 11, 1, 0, 0, 0, 0, time.UTC)},
		{name: "second layout", token: "Jan 1, 1871", layouts: []string{LayoutISO, LayoutMonthly}, want: time.Date(1871, 1, 1, 0, 0, 0, 0, time.UTC)},
		{name: "garbage", token: "soon", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseMonthDate(tt.token, tt.layouts...)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDateParserFor(t *testing.T) {
	d, err := DateParserFor("fractional")("2001.1")
	require.NoError(t, err)
	assert.Equal(t, time.October, d.Month())

	d, err = DateParserFor("")("2001.2")
	require.NoError(t, err)
	assert.Equal(t, time.February, d.Month())

	d, err = DateParserFor(LayoutMonthly)("Feb 1, 2001")
	require.NoError(t, err)
	assert.Equal(t, time.February, d.Month())
}
