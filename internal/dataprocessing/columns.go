package dataprocessing

import (
	"strings"

	apperrors "valuationcli/internal/errors"
)

// normalizeLabel trims and upper-cases a header label for matching
func normalizeLabel(label string) string {
	return strings.ToUpper(strings.TrimSpace(label))
}

// DetectColumn returns the first label, in column order, that starts with
// prefix after trimming and ignoring case. No match is a configuration
// error: statistics on a wrong column would be meaningless.
func DetectColumn(labels []string, prefix string) (int, string, error) {
	want := normalizeLabel(prefix)
	if want == "" {
		return -1, "", apperrors.NewConfigError("column prefix is empty", nil)
	}
	for i, label := range labels {
		if strings.HasPrefix(normalizeLabel(label), want) {
			return i, label, nil
		}
	}
	return -1, "", apperrors.NewColumnNotFoundError(prefix, labels)
}

// RequireColumn returns the index of the label equal to name after trimming
// and ignoring case.
func RequireColumn(labels []string, name string) (int, error) {
	want := normalizeLabel(name)
	for i, label := range labels {
		if normalizeLabel(label) == want {
			return i, nil
		}
	}
	return -1, apperrors.NewColumnNotFoundError(name, labels)
}
