package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"valuationcli/internal/config"
	apperrors "valuationcli/internal/errors"
	"valuationcli/internal/infrastructure"
	"valuationcli/internal/operations"
	"valuationcli/internal/pipeline"
	"valuationcli/internal/publish"
	"valuationcli/pkg/contracts"
)

func main() {
	os.Exit(execute(os.Args[1:], os.Stdout, os.Stderr))
}

// options are the flags shared by every command
type options struct {
	configFile string
	baseDir    string
	logLevel   string
	browser    bool
	windows    []int
	input      string
	publish    bool
	tracing    bool
}

func execute(args []string, stdout, stderr io.Writer) int {
	root := newRootCmd(stdout, stderr)
	root.SetArgs(args)
	if err := root.Execute(); err != nil {
		fmt.Fprintf(stderr, "Error: %s\n", describeError(err))
		return 1
	}
	return 0
}

func newRootCmd(stdout, stderr io.Writer) *cobra.Command {
	opts := &options{}

	root := &cobra.Command{
		Use:   "valuation",
		Short: "Retrieve and analyze market valuation series",
		Long: `valuation fetches the Shiller CAPE and Buffett Indicator series, cleans them
into monthly or quarterly series, compares the latest value with its history
and writes CSV and PNG artifacts.

The FRED API key is read from FRED_API_KEY (or VALUATION_FRED_API_KEY).`,
		Version:       contracts.GetFullVersionString(),
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.SetOut(stdout)
	root.SetErr(stderr)

	flags := root.PersistentFlags()
	flags.StringVar(&opts.configFile, "config", "", "YAML config file (default: config.yaml or configs/config.yaml when present)")
	flags.StringVar(&opts.baseDir, "base-dir", "", "directory holding data/, charts/ and figures/")
	flags.StringVar(&opts.logLevel, "log-level", "", "debug | info | warn | error")
	flags.IntSliceVar(&opts.windows, "window", nil, "rolling mean window in periods (repeatable)")
	flags.BoolVar(&opts.publish, "publish", false, "upload artifacts to the configured bucket")
	flags.BoolVar(&opts.tracing, "trace", false, "export OpenTelemetry spans")

	for _, build := range []func() pipeline.Variant{
		pipeline.CAPESource, pipeline.CAPEScrape, pipeline.Buffett, pipeline.Analyze,
	} {
		v := build()
		cmd := &cobra.Command{
			Use:   v.Name,
			Short: v.Description,
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				return runVariant(cmd.Context(), v, opts, stdout, stderr)
			},
		}
		switch v.Source {
		case pipeline.SourceHTMLTable:
			cmd.Flags().BoolVar(&opts.browser, "browser", false, "render the page in headless Chrome before reading the table")
		case pipeline.SourceCSV:
			cmd.Flags().StringVar(&opts.input, "input", "", "series CSV to analyze: a file name in the data directory or a path (default: "+v.InputCSV+")")
		}
		root.AddCommand(cmd)
	}

	return root
}

// loadConfig reads the configuration and applies command line overrides
func loadConfig(opts *options) (*config.Config, error) {
	var (
		cfg *config.Config
		err error
	)
	if opts.configFile != "" {
		cfg, err = config.LoadFrom(opts.configFile)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return nil, apperrors.NewConfigError("load configuration", err)
	}

	if opts.baseDir != "" {
		cfg.Paths.BaseDir = opts.baseDir
	}
	if opts.logLevel != "" {
		cfg.Logging.Level = opts.logLevel
	}
	if len(opts.windows) > 0 {
		cfg.Stats.Windows = opts.windows
	}
	if opts.browser {
		cfg.Sources.UseBrowser = true
	}
	if opts.publish {
		cfg.Publish.Enabled = true
	}
	if opts.tracing {
		cfg.Telemetry.Tracing = true
	}
	if err := cfg.Validate(); err != nil {
		return nil, apperrors.NewConfigError("invalid configuration", err)
	}
	return cfg, nil
}

func runVariant(ctx context.Context, v pipeline.Variant, opts *options, stdout, stderr io.Writer) error {
	cfg, err := loadConfig(opts)
	if err != nil {
		return err
	}
	if v.Source == pipeline.SourceCSV && opts.input != "" {
		input, err := resolveInput(opts.input)
		if err != nil {
			return err
		}
		v = v.WithInput(input)
	}
	v = v.WithWindows(opts.windows)

	logger, closer, err := infrastructure.NewLogger(cfg.Logging, stderr)
	if err != nil {
		return apperrors.NewConfigError("initialize logger", err)
	}
	defer closer.Close()
	slog.SetDefault(logger)

	if ctx == nil {
		ctx = context.Background()
	}
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx = infrastructure.EnsureTraceID(ctx)

	paths := cfg.ResolvePaths()
	if err := paths.EnsureDirectories(); err != nil {
		return apperrors.NewStorageError("create output directories", err)
	}
	paths.LogPathResolution(logger)

	tracing, err := infrastructure.InitializeTracing(cfg.Telemetry, stderr, logger)
	if err != nil {
		return apperrors.NewConfigError("initialize tracing", err)
	}
	metrics, err := infrastructure.NewMetrics()
	if err != nil {
		return apperrors.NewConfigError("initialize metrics", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if cfg.Telemetry.MetricsTextfile != "" {
			if werr := metrics.WriteTextfile(cfg.Telemetry.MetricsTextfile); werr != nil {
				logger.Warn("Failed to write metrics textfile", slog.String("error", werr.Error()))
			}
		}
		if serr := metrics.Shutdown(shutdownCtx); serr != nil {
			logger.Warn("Failed to stop metrics", slog.String("error", serr.Error()))
		}
		if serr := tracing.Shutdown(shutdownCtx); serr != nil {
			logger.Warn("Failed to flush traces", slog.String("error", serr.Error()))
		}
	}()

	deps := pipeline.Deps{
		Config:  cfg,
		Paths:   paths,
		Logger:  logger,
		Tracer:  tracing.Tracer,
		Metrics: metrics,
		Stdout:  stdout,
	}
	if cfg.Publish.Enabled {
		publisher, err := publish.NewS3Publisher(ctx, cfg.Publish, logger)
		if err != nil {
			return err
		}
		deps.Publisher = publisher
	}

	logger.InfoContext(ctx, "Starting run",
		slog.String("variant", v.Name),
		slog.String("version", contracts.Version),
		slog.String("base_dir", paths.BaseDir))

	resp, err := pipeline.Run(ctx, v, deps)
	if resp != nil {
		logger.InfoContext(ctx, "Run finished",
			slog.String("operation_id", resp.ID),
			slog.String("status", string(resp.Status)),
			slog.Duration("duration", resp.Duration),
			slog.Int("artifacts", len(resp.Artifacts)))
	}
	return err
}

// resolveInput keeps a bare file name, which names a file in the data
// directory, and makes a path with a directory absolute against the working
// directory
func resolveInput(input string) (string, error) {
	if filepath.IsAbs(input) || filepath.Base(input) == input {
		return input, nil
	}
	abs, err := filepath.Abs(input)
	if err != nil {
		return "", apperrors.NewConfigError(fmt.Sprintf("resolve input %s", input), err)
	}
	return abs, nil
}

// describeError reports the underlying application error without the step
// wrapper, since the message already names the failing input
func describeError(err error) string {
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		msg := appErr.Message
		if appErr.Cause != nil {
			msg = fmt.Sprintf("%s: %v", msg, appErr.Cause)
		}
		if step := operations.FailedStep(err); step != "" {
			return fmt.Sprintf("%s (step %s)", msg, step)
		}
		return msg
	}
	return err.Error()
}
