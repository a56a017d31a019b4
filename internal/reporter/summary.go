// Package reporter renders the human-readable summary of a run: row count,
// the latest observation and how it compares with its history.
package reporter

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"valuationcli/internal/analytics"
	"valuationcli/pkg/contracts/domain"
)

// Reference labels used in comparison sentences
const (
	LabelAverage = "historical average"
	LabelMedian  = "historical median"
)

// Summary is everything printed at the end of a run
type Summary struct {
	Title       string // e.g. "Shiller P/E (CAPE)"
	ValueLabel  string // e.g. "Shiller P/E"
	Stats       domain.DerivedStatistics
	First       domain.TimeSeriesPoint
	Comparisons []domain.Comparison
	Artifacts   []string
}

// NewSummary compares the latest value of s with its expanding mean and
// median, then with every defined rolling mean in ascending window order.
func NewSummary(title, valueLabel string, s domain.Series, stats domain.DerivedStatistics) Summary {
	sum := Summary{Title: title, ValueLabel: valueLabel, Stats: stats}
	if s.Len() > 0 {
		sum.First = s.Points[0]
	}

	sum.Comparisons = append(sum.Comparisons,
		analytics.Compare(stats.Latest, stats.ExpandingMean, LabelAverage),
		analytics.Compare(stats.Latest, stats.ExpandingMedian, LabelMedian),
	)

	windows := make([]int, 0, len(stats.RollingMeans))
	for w := range stats.RollingMeans {
		windows = append(windows, w)
	}
	sort.Ints(windows)
	for _, w := range windows {
		mean := stats.RollingMeans[w]
		if !mean.Valid {
			continue
		}
		sum.Comparisons = append(sum.Comparisons,
			analytics.Compare(stats.Latest, mean.Value, fmt.Sprintf("%d-period rolling mean", w)))
	}
	return sum
}

// Sentence renders one comparison
func Sentence(valueLabel string, c domain.Comparison) string {
	verb := string(c.Outcome)
	if c.Outcome == domain.OutcomeEqual {
		verb += " to"
	}
	return fmt.Sprintf("Current %s of %.2f is %s its %s of %.2f.", valueLabel, c.Current, verb, c.Label, c.Reference)
}

// PercentileSentence places the latest value in the full history
func PercentileSentence(valueLabel string, stats domain.DerivedStatistics, since domain.TimeSeriesPoint) string {
	return fmt.Sprintf("Current %s of %.2f sits at the %.1fth percentile of %d observations since %s.",
		valueLabel, stats.Latest, stats.PercentileRank, stats.Count, since.Date.Format("Jan 2006"))
}

// Sentences returns the comparison sentences followed by the percentile
// sentence
func (s Summary) Sentences() []string {
	out := make([]string, 0, len(s.Comparisons)+1)
	for _, c := range s.Comparisons {
		out = append(out, Sentence(s.ValueLabel, c))
	}
	return append(out, PercentileSentence(s.ValueLabel, s.Stats, s.First))
}

// Write prints the summary block
func (s Summary) Write(w io.Writer) error {
	var b strings.Builder
	fmt.Fprintf(&b, "%s\n", s.Title)
	fmt.Fprintf(&b, "Rows: %d\n", s.Stats.Count)
	fmt.Fprintf(&b, "Last row: %s  %s=%s\n",
		s.Stats.Date.Format("2006-01-02"), s.Stats.SeriesName, formatValue(s.Stats.Latest))
	for _, line := range s.Sentences() {
		fmt.Fprintf(&b, "%s\n", line)
	}
	for _, a := range s.Artifacts {
		fmt.Fprintf(&b, "Saved %s\n", a)
	}
	_, err := io.WriteString(w, b.String())
	return err
}

func formatValue(v float64) string {
	return strings.TrimRight(strings.TrimRight(fmt.Sprintf("%.4f", v), "0"), ".")
}
