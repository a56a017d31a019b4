// Package analytics computes descriptive statistics over date-ordered series.
//
// All functions are pure and operate on values already sorted ascending by
// date; callers build series with domain.NewSeries, which guarantees that
// order. Windowed statistics that cannot be computed (a rolling mean before
// its window is full) are reported as undefined rather than zero.
//
// Percentile ranks use the "mean" definition: the average of the strict and
// weak ranks, so tied values share a rank and the result never decreases as
// the value grows.
package analytics
