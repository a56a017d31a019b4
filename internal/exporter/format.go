package exporter

import (
	"strconv"

	"valuationcli/pkg/contracts/domain"
)

// FormatValue formats a float with the fewest digits that parse back to the
// same value, so a CSV round trip is exact
func FormatValue(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// formatOptional formats a defined value, or "" when undefined
func formatOptional(v domain.OptionalFloat) string {
	if !v.Valid {
		return ""
	}
	return FormatValue(v.Value)
}

// formatFixed formats f with a fixed number of decimals for display
func formatFixed(f float64, decimals int) string {
	return strconv.FormatFloat(f, 'f', decimals, 64)
}
