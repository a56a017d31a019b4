package pipeline

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"valuationcli/internal/analytics"
	"valuationcli/internal/config"
	"valuationcli/internal/dataprocessing"
	apperrors "valuationcli/internal/errors"
	"valuationcli/internal/exporter"
	"valuationcli/internal/fetcher"
	"valuationcli/internal/operations"
	"valuationcli/internal/reporter"
	"valuationcli/internal/validation"
	"valuationcli/pkg/contracts/domain"
)

// Context keys used only inside the pipeline
const (
	contextKeyJoined    = "joined_columns"
	contextKeyPublished = "published_keys"
)

func requireContext(state *operations.OperationState, keys ...string) error {
	for _, key := range keys {
		if _, ok := state.GetContext(key); !ok {
			return fmt.Errorf("missing %q from an earlier step", key)
		}
	}
	return nil
}

func spreadsheetSpec(v Variant, src config.SourcesConfig) dataprocessing.NormalizeOptions {
	return dataprocessing.NormalizeOptions{
		DateColumn:  src.DateColumn,
		ValuePrefix: src.ValuePrefix,
		OutputName:  v.ValueColumn,
		Frequency:   v.Frequency,
		ParseDate:   dataprocessing.ParseFractionalMonth,
	}
}

func htmlTableSpec(v Variant) dataprocessing.NormalizeOptions {
	return dataprocessing.NormalizeOptions{
		DateColumn:  v.TableDateColumn,
		ValuePrefix: v.TableValuePrefix,
		OutputName:  v.ValueColumn,
		Frequency:   v.Frequency,
		ParseDate: func(token string) (time.Time, error) {
			return dataprocessing.ParseMonthDate(token, dataprocessing.LayoutMonthly, dataprocessing.LayoutISO)
		},
	}
}

func fredSpec(seriesID, name string, freq domain.Frequency) dataprocessing.NormalizeOptions {
	return dataprocessing.NormalizeOptions{
		DateColumn:  "date",
		ValuePrefix: seriesID,
		OutputName:  name,
		Frequency:   freq,
		ParseDate:   dataprocessing.DateParserFor(dataprocessing.LayoutISO),
	}
}

// FetchStage reads every source table of the variant
type FetchStage struct {
	operations.BaseStage
	variant   string
	fetchers  []fetcher.TableFetcher
	workbook  string
	validator *validation.FileValidator
	logger    *slog.Logger
}

func newFetchStage(v Variant, src sources, validator *validation.FileValidator, logger *slog.Logger) *FetchStage {
	return &FetchStage{
		BaseStage: operations.NewBaseStage(operations.StepIDFetch, operations.StepNameFetch),
		variant:   v.Name,
		fetchers:  src.fetchers,
		workbook:  src.workbook,
		validator: validator,
		logger:    logger,
	}
}

// Validate implements operations.Step. A local workbook is checked before
// it is opened.
func (s *FetchStage) Validate(state *operations.OperationState) error {
	if s.workbook == "" {
		return nil
	}
	return s.validator.ValidateWorkbook(s.workbook)
}

// Execute implements operations.Step
func (s *FetchStage) Execute(ctx context.Context, state *operations.OperationState) error {
	tables := make([]domain.RawTable, 0, len(s.fetchers))
	rows := 0
	for _, f := range s.fetchers {
		s.logger.InfoContext(ctx, "Fetching source", slog.String("source", f.Describe()))
		table, err := f.FetchTable(ctx)
		if err != nil {
			return err
		}
		s.logger.InfoContext(ctx, "Fetched source",
			slog.String("source", table.Source),
			slog.Int("columns", len(table.Headers)),
			slog.Int("rows", len(table.Rows)))
		s.logger.DebugContext(ctx, "Source columns", slog.Any("headers", table.Headers))
		tables = append(tables, table)
		rows += len(table.Rows)
	}
	state.SetContext(operations.ContextKeyTables, tables)
	state.SetContext(operations.ContextKeyRowsIn, rows)
	state.GetStage(s.ID()).SetMetadata("rows", rows)
	return nil
}

// NormalizeStage turns the fetched tables into the series, dividing the
// first by the second when the variant is a ratio
type NormalizeStage struct {
	operations.BaseStage
	variant    Variant
	normalizer *dataprocessing.Normalizer
	options    []dataprocessing.NormalizeOptions
	ratio      *ratioSpec
	metrics    Metrics
	logger     *slog.Logger
}

func newNormalizeStage(v Variant, src sources, metrics Metrics, logger *slog.Logger) *NormalizeStage {
	return &NormalizeStage{
		BaseStage:  operations.NewBaseStage(operations.StepIDNormalize, operations.StepNameNormalize),
		variant:    v,
		normalizer: dataprocessing.NewNormalizer(logger),
		options:    src.options,
		ratio:      src.ratio,
		metrics:    metrics,
		logger:     logger,
	}
}

// Validate implements operations.Step
func (s *NormalizeStage) Validate(state *operations.OperationState) error {
	return requireContext(state, operations.ContextKeyTables)
}

// Execute implements operations.Step
func (s *NormalizeStage) Execute(ctx context.Context, state *operations.OperationState) error {
	tables, err := operations.ContextValue[[]domain.RawTable](state, operations.ContextKeyTables)
	if err != nil {
		return err
	}
	if len(tables) != len(s.options) {
		return fmt.Errorf("got %d tables for %d column mappings", len(tables), len(s.options))
	}

	var (
		series           []domain.Series
		fetched, dropped int
	)
	for i, table := range tables {
		res, err := s.normalizer.Normalize(table, s.options[i])
		if err != nil {
			return err
		}
		fetched += res.RowsIn
		dropped += res.Dropped()
		series = append(series, res.Series)
	}

	out := series[0]
	if s.ratio != nil {
		if len(series) != 2 {
			return fmt.Errorf("ratio needs two series, got %d", len(series))
		}
		ratio, err := analytics.DeriveRatio(series[0], series[1], s.ratio.scale, s.variant.ValueColumn)
		if err != nil {
			return err
		}
		s.logger.InfoContext(ctx, "Derived ratio",
			slog.String("series", ratio.Ratio.Name),
			slog.Int("numerator_rows", series[0].Len()),
			slog.Int("denominator_rows", series[1].Len()),
			slog.Int("joined_rows", ratio.Ratio.Len()))
		state.SetContext(operations.ContextKeyRatio, ratio)
		state.SetContext(contextKeyJoined, analytics.JoinedColumns(ratio, s.ratio.numeratorName, s.ratio.denominatorName))
		out = ratio.Ratio
	}

	if out.Len() == 0 {
		return apperrors.NewConfigError(fmt.Sprintf("no valid rows left in %s after cleaning", out.Name), nil).
			WithContext("fetched", fetched)
	}

	s.metrics.RecordRows(ctx, s.variant.Name, fetched, dropped)
	state.SetContext(operations.ContextKeySeries, out)
	state.SetContext(operations.ContextKeyRowsOut, out.Len())
	state.GetStage(s.ID()).SetMetadata("dropped", dropped)
	return nil
}

// LoadStage reads the series from a CSV written by another command
type LoadStage struct {
	operations.BaseStage
	variant   Variant
	path      string
	validator *validation.FileValidator
	logger    *slog.Logger
}

func newLoadStage(v Variant, path string, validator *validation.FileValidator, logger *slog.Logger) *LoadStage {
	return &LoadStage{
		BaseStage: operations.NewBaseStage(operations.StepIDFetch, "Load Series CSV"),
		variant:   v,
		path:      path,
		validator: validator,
		logger:    logger,
	}
}

// Validate implements operations.Step
func (s *LoadStage) Validate(state *operations.OperationState) error {
	return s.validator.ValidateSeriesCSV(s.path, s.variant.Producer)
}

// Execute implements operations.Step
func (s *LoadStage) Execute(ctx context.Context, state *operations.OperationState) error {
	series, err := exporter.ReadSeries(s.path, s.variant.ValueColumn, s.variant.Producer, s.variant.Frequency)
	if err != nil {
		return err
	}
	if series.Len() == 0 {
		return apperrors.NewConfigError(fmt.Sprintf("%s has no %s values", s.path, s.variant.ValueColumn), nil)
	}
	s.logger.InfoContext(ctx, "Loaded series",
		slog.String("path", s.path),
		slog.String("series", series.Name),
		slog.Int("rows", series.Len()))
	state.SetContext(operations.ContextKeySeries, series)
	state.SetContext(operations.ContextKeyRowsIn, series.Len())
	state.SetContext(operations.ContextKeyRowsOut, series.Len())
	return nil
}

// StatisticsStage describes the latest point and builds the derived columns
type StatisticsStage struct {
	operations.BaseStage
	variant string
	windows []int
	metrics Metrics
	logger  *slog.Logger
}

func newStatisticsStage(v Variant, windows []int, metrics Metrics, logger *slog.Logger) *StatisticsStage {
	return &StatisticsStage{
		BaseStage: operations.NewBaseStage(operations.StepIDStatistics, operations.StepNameStatistics),
		variant:   v.Name,
		windows:   windows,
		metrics:   metrics,
		logger:    logger,
	}
}

// Validate implements operations.Step
func (s *StatisticsStage) Validate(state *operations.OperationState) error {
	return requireContext(state, operations.ContextKeySeries)
}

// Execute implements operations.Step
func (s *StatisticsStage) Execute(ctx context.Context, state *operations.OperationState) error {
	series, err := operations.ContextValue[domain.Series](state, operations.ContextKeySeries)
	if err != nil {
		return err
	}
	stats, err := analytics.Describe(series, s.windows)
	if err != nil {
		return err
	}

	attrs := []any{
		slog.String("series", stats.SeriesName),
		slog.Time("date", stats.Date),
		slog.Float64("latest", stats.Latest),
		slog.Float64("expanding_mean", stats.ExpandingMean),
		slog.Float64("expanding_median", stats.ExpandingMedian),
		slog.Float64("percentile_rank", stats.PercentileRank),
	}
	for _, w := range s.windows {
		if m := stats.RollingMeans[w]; m.Valid {
			attrs = append(attrs, slog.Float64(domain.RollingColumnName(w), m.Value))
		}
	}
	s.logger.InfoContext(ctx, "Derived statistics", attrs...)

	s.metrics.RecordLatest(ctx, s.variant, stats.SeriesName, stats.Latest)
	state.SetContext(operations.ContextKeyStatistics, stats)
	state.SetContext(operations.ContextKeyDerived, analytics.DerivedColumns(series, s.windows, true))
	return nil
}

// ExportStage writes the series CSV
type ExportStage struct {
	operations.BaseStage
	variant   Variant
	writer    *exporter.CSVWriter
	path      string
	validator *validation.FileValidator
	logger    *slog.Logger
}

func newExportStage(v Variant, writer *exporter.CSVWriter, path string, validator *validation.FileValidator, logger *slog.Logger) *ExportStage {
	return &ExportStage{
		BaseStage: operations.NewBaseStage(operations.StepIDExport, operations.StepNameExport),
		variant:   v,
		writer:    writer,
		path:      path,
		validator: validator,
		logger:    logger,
	}
}

// Validate implements operations.Step
func (s *ExportStage) Validate(state *operations.OperationState) error {
	if err := requireContext(state, operations.ContextKeySeries, operations.ContextKeyDerived); err != nil {
		return err
	}
	return s.validator.ValidateOutputFile(s.path)
}

// Execute implements operations.Step
func (s *ExportStage) Execute(ctx context.Context, state *operations.OperationState) error {
	series, err := operations.ContextValue[domain.Series](state, operations.ContextKeySeries)
	if err != nil {
		return err
	}

	var columns []domain.DerivedColumn
	if joined, ok := state.GetContext(contextKeyJoined); ok {
		columns = append(columns, joined.([]domain.DerivedColumn)...)
	}
	if s.variant.CSVDerived {
		derived, err := operations.ContextValue[[]domain.DerivedColumn](state, operations.ContextKeyDerived)
		if err != nil {
			return err
		}
		columns = append(columns, derived...)
	}

	path, err := s.writer.WriteSeries(s.path, series, columns...)
	if err != nil {
		return err
	}
	state.AddArtifact(path)
	return nil
}

// ChartStage renders the series chart
type ChartStage struct {
	operations.BaseStage
	variant   Variant
	renderer  *exporter.ChartRenderer
	path      string
	validator *validation.FileValidator
}

func newChartStage(v Variant, renderer *exporter.ChartRenderer, path string, validator *validation.FileValidator) *ChartStage {
	return &ChartStage{
		BaseStage: operations.NewBaseStage(operations.StepIDChart, operations.StepNameChart),
		variant:   v,
		renderer:  renderer,
		path:      path,
		validator: validator,
	}
}

// Validate implements operations.Step
func (s *ChartStage) Validate(state *operations.OperationState) error {
	err := requireContext(state, operations.ContextKeySeries, operations.ContextKeyStatistics, operations.ContextKeyDerived)
	if err != nil {
		return err
	}
	return s.validator.ValidateOutputFile(s.path)
}

// Execute implements operations.Step
func (s *ChartStage) Execute(ctx context.Context, state *operations.OperationState) error {
	series, err := operations.ContextValue[domain.Series](state, operations.ContextKeySeries)
	if err != nil {
		return err
	}
	stats, err := operations.ContextValue[domain.DerivedStatistics](state, operations.ContextKeyStatistics)
	if err != nil {
		return err
	}

	spec := exporter.ChartSpec{
		Title:       s.variant.Title,
		XLabel:      s.variant.XLabel,
		YLabel:      s.variant.YLabel,
		SeriesLabel: s.variant.SeriesLabel,
		Series:      series,
		Grid:        s.variant.Grid,
	}
	if s.variant.Overlays {
		derived, err := operations.ContextValue[[]domain.DerivedColumn](state, operations.ContextKeyDerived)
		if err != nil {
			return err
		}
		spec.Overlays = derived
	}
	if s.variant.ReferenceLines {
		spec.References = []exporter.ReferenceLine{
			{Label: "Historical mean", Value: stats.ExpandingMean},
			{Label: "Historical median", Value: stats.ExpandingMedian},
		}
	}

	if err := s.renderer.Render(s.path, spec); err != nil {
		return err
	}
	state.AddArtifact(s.path)
	return nil
}

// ReportStage prints the summary and comparison sentences
type ReportStage struct {
	operations.BaseStage
	variant Variant
	out     io.Writer
}

func newReportStage(v Variant, out io.Writer) *ReportStage {
	return &ReportStage{
		BaseStage: operations.NewBaseStage(operations.StepIDReport, operations.StepNameReport),
		variant:   v,
		out:       out,
	}
}

// Validate implements operations.Step
func (s *ReportStage) Validate(state *operations.OperationState) error {
	return requireContext(state, operations.ContextKeySeries, operations.ContextKeyStatistics)
}

// Execute implements operations.Step
func (s *ReportStage) Execute(ctx context.Context, state *operations.OperationState) error {
	series, err := operations.ContextValue[domain.Series](state, operations.ContextKeySeries)
	if err != nil {
		return err
	}
	stats, err := operations.ContextValue[domain.DerivedStatistics](state, operations.ContextKeyStatistics)
	if err != nil {
		return err
	}

	summary := reporter.NewSummary(s.variant.Title, s.variant.ValueLabel, series, stats)
	summary.Artifacts = state.GetArtifacts()
	state.SetContext(operations.ContextKeySummary, summary)
	return summary.Write(s.out)
}

// PublishStage uploads the artifacts written by the run
type PublishStage struct {
	operations.BaseStage
	variant   string
	publisher Publisher
	logger    *slog.Logger
}

func newPublishStage(v Variant, publisher Publisher, logger *slog.Logger) *PublishStage {
	return &PublishStage{
		BaseStage: operations.NewBaseStage(operations.StepIDPublish, operations.StepNamePublish),
		variant:   v.Name,
		publisher: publisher,
		logger:    logger,
	}
}

// Execute implements operations.Step
func (s *PublishStage) Execute(ctx context.Context, state *operations.OperationState) error {
	files := state.GetArtifacts()
	if len(files) == 0 {
		s.logger.InfoContext(ctx, "Nothing to publish")
		return nil
	}
	keys, err := s.publisher.Publish(ctx, s.variant, files...)
	if err != nil {
		return err
	}
	state.SetContext(contextKeyPublished, keys)
	return nil
}
