// Package exporter writes run artifacts: series CSV files and PNG charts.
//
// CSVWriter writes a series as "date,<name>[,derived...]" with ISO dates in
// ascending order. Values use the shortest representation that parses back
// to the same float64, so ReadSeries returns exactly what was written.
// Undefined derived values (a rolling mean before its window is full) are
// empty cells.
//
// ChartRenderer draws a series with optional overlay lines and horizontal
// reference lines to a PNG, 10x5 inches at 150 dpi by default.
//
// Example usage:
//
//	w := exporter.NewCSVWriter(paths, logger)
//	path, err := w.WriteSeries(config.CAPESeriesCSV, series)
//
//	r := exporter.NewChartRenderer(logger)
//	err = r.Render(paths.GetChartPath(config.CAPELineChart), exporter.ChartSpec{
//		Title:  "Shiller CAPE",
//		YLabel: "CAPE",
//		Series: series,
//	})
package exporter
