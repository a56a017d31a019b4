package dataprocessing

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	apperrors "valuationcli/internal/errors"
)

var (
	nonDigitRe = regexp.MustCompile(`\D`)
	yearRe     = regexp.MustCompile(`^\d{4}$`)
)

// ParseFractionalMonth converts a "YYYY.F" spreadsheet date token to the
// first day of that month (UTC).
//
// The fraction is stripped of non-digits, then:
//   - exactly "1" means October (the source writes 1871.10 as the number 1871.1)
//   - a single digit is left-padded with "0"
//   - the first two characters are the month
//
// A missing or empty fraction, a non four-digit year, or a month outside
// 1..12 yields a parsing error.
func ParseFractionalMonth(token string) (time.Time, error) {
	raw := strings.TrimSpace(token)
	yearPart, frac, found := strings.Cut(raw, ".")
	if !found {
		return time.Time{}, parseError(token, "no month fraction")
	}
	if !yearRe.MatchString(yearPart) {
		return time.Time{}, parseError(token, "year is not four digits")
	}

	frac = nonDigitRe.ReplaceAllString(frac, "")
	switch {
	case frac == "":
		return time.Time{}, parseError(token, "empty month fraction")
	case frac == "1":
		frac = "10"
	case len(frac) == 1:
		frac = "0" + frac
	}

	month, err := strconv.Atoi(frac[:2])
	if err != nil || month < 1 || month > 12 {
		return time.Time{}, parseError(token, fmt.Sprintf("month %q out of range", frac[:2]))
	}
	year, _ := strconv.Atoi(yearPart)

	return time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC), nil
}

// Common layouts for conventional date strings
const (
	LayoutISO     = "2006-01-02"
	LayoutMonthly = "Jan 2, 2006"
)

// ParseMonthDate parses token with the first layout that accepts it and
// truncates the result to the first day of its month.
func ParseMonthDate(token string, layouts ...string) (time.Time, error) {
	raw := strings.TrimSpace(token)
	if len(layouts) == 0 {
		layouts = []string{LayoutISO}
	}
	for _, layout := range layouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return FirstOfMonth(t), nil
		}
	}
	return time.Time{}, parseError(token, "no layout matched")
}

// FirstOfMonth truncates t to midnight UTC on the first day of its month
func FirstOfMonth(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
}

// DateParserFor returns the parser for a named date format: "fractional"
// for spreadsheet tokens, anything else is used as a time layout.
func DateParserFor(format string) func(string) (time.Time, error) {
	if format == "" || format == "fractional" {
		return ParseFractionalMonth
	}
	return func(token string) (time.Time, error) {
		return ParseMonthDate(token, format)
	}
}

func parseError(token, reason string) error {
	return apperrors.NewParsingError(fmt.Sprintf("invalid date %q: %s", token, reason), nil).
		WithContext("token", token)
}
