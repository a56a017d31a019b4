package pipeline

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"go.opentelemetry.io/otel/trace"

	"valuationcli/internal/config"
	"valuationcli/internal/dataprocessing"
	apperrors "valuationcli/internal/errors"
	"valuationcli/internal/exporter"
	"valuationcli/internal/fetcher"
	"valuationcli/internal/infrastructure"
	"valuationcli/internal/operations"
	"valuationcli/internal/validation"
)

// Metrics receives the run's observations. *infrastructure.Metrics
// satisfies it.
type Metrics interface {
	operations.StepRecorder
	RecordRows(ctx context.Context, variant string, fetched, dropped int)
	RecordLatest(ctx context.Context, variant, series string, value float64)
}

// Publisher uploads finished artifacts. *publish.S3Publisher satisfies it.
type Publisher interface {
	Publish(ctx context.Context, variant string, files ...string) ([]string, error)
}

// Deps are the collaborators shared by every variant
type Deps struct {
	Config    *config.Config
	Paths     *config.Paths
	Logger    *slog.Logger
	Tracer    trace.Tracer
	Metrics   Metrics
	Publisher Publisher // nil skips the publish step
	Stdout    io.Writer
}

type nopMetrics struct{}

func (nopMetrics) RecordStep(context.Context, string, string, time.Duration, bool) {}
func (nopMetrics) RecordRows(context.Context, string, int, int) {}
func (nopMetrics) RecordLatest(context.Context, string, string, float64) {}

var _ Metrics = (*infrastructure.Metrics)(nil)

func (d Deps) withDefaults() (Deps, error) {
	if d.Config == nil {
		return d, apperrors.NewConfigError("pipeline has no configuration", nil)
	}
	if d.Paths == nil {
		d.Paths = d.Config.ResolvePaths()
	}
	if d.Logger == nil {
		d.Logger = slog.Default()
	}
	if d.Metrics == nil {
		d.Metrics = nopMetrics{}
	}
	if d.Stdout == nil {
		d.Stdout = os.Stdout
	}
	return d, nil
}

// Build registers the steps of v on a new manager:
// fetch, normalize, statistics, export, chart, report and publish. Steps a
// variant does not need are left out. Source construction errors, such as a
// missing API key, are returned before any network call.
func Build(v Variant, deps Deps) (*operations.Manager, error) {
	deps, err := deps.withDefaults()
	if err != nil {
		return nil, err
	}
	logger := infrastructure.WithComponent(deps.Logger, "pipeline").With(slog.String("variant", v.Name))
	cfg := deps.Config
	windows := v.windows(cfg.Stats)
	if len(windows) == 0 {
		return nil, apperrors.NewConfigError("no rolling windows configured", nil)
	}

	registry := operations.NewRegistry()
	validator := validation.NewFileValidator(logger)
	var steps []operations.Step

	switch v.Source {
	case SourceCSV:
		input := deps.Paths.GetDataPath(v.InputCSV)
		steps = append(steps, newLoadStage(v, input, validator, logger))
	default:
		src, err := newSources(v, deps, logger)
		if err != nil {
			return nil, err
		}
		steps = append(steps,
			newFetchStage(v, src, validator, logger),
			newNormalizeStage(v, src, deps.Metrics, logger),
		)
	}

	steps = append(steps, newStatisticsStage(v, windows, deps.Metrics, logger))

	if v.OutputCSV != "" {
		writer := exporter.NewCSVWriter(deps.Paths, logger)
		writer.BOMPrefix = cfg.Export.ExcelBOM
		steps = append(steps, newExportStage(v, writer, deps.Paths.GetDataPath(v.OutputCSV), validator, logger))
	}
	if v.Chart != "" {
		chartPath := deps.Paths.GetChartPath(v.Chart)
		if v.ChartInFigures {
			chartPath = deps.Paths.GetFigurePath(v.Chart)
		}
		steps = append(steps, newChartStage(v, exporter.NewChartRenderer(logger), chartPath, validator))
	}
	steps = append(steps, newReportStage(v, deps.Stdout))
	if deps.Publisher != nil {
		steps = append(steps, newPublishStage(v, deps.Publisher, logger))
	}

	for _, s := range steps {
		if err := registry.Register(s); err != nil {
			return nil, fmt.Errorf("register step %s: %w", s.ID(), err)
		}
	}

	logger.Debug("Pipeline built", slog.Any("steps", registry.ListIDs()))
	return operations.NewManager(registry, logger, deps.Tracer, deps.Metrics), nil
}

// Run builds and executes v
func Run(ctx context.Context, v Variant, deps Deps) (*operations.OperationResponse, error) {
	manager, err := Build(v, deps)
	if err != nil {
		return nil, err
	}
	return manager.Execute(ctx, operations.OperationRequest{Variant: v.Name})
}

// sources holds the fetchers of a variant and how to normalize each table
type sources struct {
	fetchers []fetcher.TableFetcher
	options  []dataprocessing.NormalizeOptions
	ratio    *ratioSpec
	// workbook is set when the source is a local spreadsheet
	workbook string
}

type ratioSpec struct {
	scale           float64
	numeratorName   string
	denominatorName string
}

func newSources(v Variant, deps Deps, logger *slog.Logger) (sources, error) {
	cfg := deps.Config
	switch v.Source {
	case SourceSpreadsheet:
		path := deps.Paths.GetDataPath(cfg.Sources.WorkbookFile)
		return sources{
			fetchers: []fetcher.TableFetcher{
				fetcher.NewSpreadsheetReader(path, cfg.Sources.WorkbookSheet, cfg.Sources.HeaderRow, logger),
			},
			options:  []dataprocessing.NormalizeOptions{spreadsheetSpec(v, cfg.Sources)},
			workbook: path,
		}, nil

	case SourceHTMLTable:
		var f fetcher.TableFetcher
		if cfg.Sources.UseBrowser {
			f = fetcher.NewBrowserTableFetcher(cfg.Sources.CAPEPageURL, cfg.Sources.CAPETableID, cfg.Sources.FetchTimeout, logger)
		} else {
			f = fetcher.NewHTTPTableFetcher(cfg.Sources.CAPEPageURL, cfg.Sources.CAPETableID, cfg.Sources.FetchTimeout, logger)
		}
		return sources{
			fetchers: []fetcher.TableFetcher{f},
			options:  []dataprocessing.NormalizeOptions{htmlTableSpec(v)},
		}, nil

	case SourceFRED:
		client, err := fetcher.NewFREDClient(fetcher.FREDOptions{
			BaseURL:   cfg.FRED.BaseURL,
			APIKey:    cfg.FRED.APIKey,
			Timeout:   cfg.FRED.Timeout,
			RateLimit: cfg.FRED.RateLimit,
			Burst:     cfg.FRED.Burst,
		}, logger)
		if err != nil {
			return sources{}, err
		}
		return sources{
			fetchers: []fetcher.TableFetcher{
				fetcher.FREDSeriesFetcher{Client: client, SeriesID: cfg.FRED.MarketCapSeries},
				fetcher.FREDSeriesFetcher{Client: client, SeriesID: cfg.FRED.GDPSeries},
			},
			options: []dataprocessing.NormalizeOptions{
				fredSpec(cfg.FRED.MarketCapSeries, config.MarketCapColumn, v.Frequency),
				fredSpec(cfg.FRED.GDPSeries, config.GDPColumn, v.Frequency),
			},
			ratio: &ratioSpec{
				scale:           cfg.FRED.MarketCapScale,
				numeratorName:   config.MarketCapColumn,
				denominatorName: config.GDPColumn,
			},
		}, nil
	}
	return sources{}, apperrors.NewConfigError(fmt.Sprintf("variant %s has unsupported source %q", v.Name, v.Source), nil)
}
