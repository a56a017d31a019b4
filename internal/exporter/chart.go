package exporter

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgimg"

	apperrors "valuationcli/internal/errors"
	"valuationcli/pkg/contracts/domain"
)

// Chart defaults: a 10x5 inch figure at 150 dpi
const (
	DefaultChartWidth  = 10 * vg.Inch
	DefaultChartHeight = 5 * vg.Inch
	DefaultChartDPI    = 150
)

// ReferenceLine is a horizontal line across the whole chart
type ReferenceLine struct {
	Label string
	Value float64
}

// ChartSpec describes one line chart
type ChartSpec struct {
	Title       string
	XLabel      string
	YLabel      string
	SeriesLabel string // legend entry for the series; no legend when empty
	Series      domain.Series
	Overlays    []domain.DerivedColumn
	References  []ReferenceLine
	Grid        bool
	Width       vg.Length
	Height      vg.Length
	DPI         int
}

// ChartRenderer draws series charts as PNG files
type ChartRenderer struct {
	logger *slog.Logger
}

// NewChartRenderer creates a renderer that logs through logger
func NewChartRenderer(logger *slog.Logger) *ChartRenderer {
	if logger == nil {
		logger = slog.Default()
	}
	return &ChartRenderer{logger: logger}
}

// Render draws spec to a PNG at path, creating the directory when absent.
// Overlay entries that are undefined are left out of their line.
func (r *ChartRenderer) Render(path string, spec ChartSpec) error {
	if spec.Series.Len() == 0 {
		return apperrors.NewStorageError(fmt.Sprintf("series %q has no points to plot", spec.Series.Name), nil).
			WithContext("path", path)
	}
	if !strings.EqualFold(filepath.Ext(path), ".png") {
		return apperrors.NewConfigError("chart path must end in .png", nil).WithContext("path", path)
	}

	p := plot.New()
	p.Title.Text = spec.Title
	p.X.Label.Text = spec.XLabel
	p.Y.Label.Text = spec.YLabel
	p.X.Tick.Marker = plot.TimeTicks{Format: "2006"}
	p.Legend.Top = true
	p.Legend.Left = true
	if spec.Grid {
		p.Add(plotter.NewGrid())
	}

	base, err := plotter.NewLine(seriesXYs(spec.Series))
	if err != nil {
		return apperrors.NewStorageError("build series line", err)
	}
	base.LineStyle.Width = vg.Points(1.2)
	base.LineStyle.Color = plotutil.Color(0)
	p.Add(base)
	if spec.SeriesLabel != "" {
		p.Legend.Add(spec.SeriesLabel, base)
	}

	for i, col := range spec.Overlays {
		xys := overlayXYs(spec.Series, col)
		if len(xys) == 0 {
			r.logger.Debug("Skipped empty overlay", slog.String("column", col.Name))
			continue
		}
		line, err := plotter.NewLine(xys)
		if err != nil {
			return apperrors.NewStorageError("build overlay "+col.Name, err)
		}
		line.LineStyle.Width = vg.Points(1)
		line.LineStyle.Color = plotutil.Color(i + 1)
		line.LineStyle.Dashes = plotutil.Dashes(i + 1)
		p.Add(line)
		p.Legend.Add(col.Name, line)
	}

	first, last := seriesBounds(spec.Series)
	for i, ref := range spec.References {
		line, err := plotter.NewLine(plotter.XYs{{X: first, Y: ref.Value}, {X: last, Y: ref.Value}})
		if err != nil {
			return apperrors.NewStorageError("build reference line "+ref.Label, err)
		}
		line.LineStyle.Width = vg.Points(0.8)
		line.LineStyle.Color = plotutil.Color(len(spec.Overlays) + i + 1)
		line.LineStyle.Dashes = []vg.Length{vg.Points(4), vg.Points(2)}
		p.Add(line)
		p.Legend.Add(fmt.Sprintf("%s (%s)", ref.Label, formatFixed(ref.Value, 2)), line)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return apperrors.NewStorageError("create chart directory", err).WithContext("path", path)
	}

	width, height, dpi := spec.Width, spec.Height, spec.DPI
	if width <= 0 {
		width = DefaultChartWidth
	}
	if height <= 0 {
		height = DefaultChartHeight
	}
	if dpi <= 0 {
		dpi = DefaultChartDPI
	}

	canvas := vgimg.NewWith(vgimg.UseWH(width, height), vgimg.UseDPI(dpi))
	p.Draw(draw.New(canvas))

	f, err := os.Create(path)
	if err != nil {
		return apperrors.NewStorageError("create chart file", err).WithContext("path", path)
	}
	defer f.Close()
	if _, err := (vgimg.PngCanvas{Canvas: canvas}).WriteTo(f); err != nil {
		return apperrors.NewStorageError("encode PNG", err).WithContext("path", path)
	}
	if err := f.Close(); err != nil {
		return apperrors.NewStorageError("close chart file", err).WithContext("path", path)
	}

	r.logger.Info("Chart saved",
		slog.String("path", path),
		slog.String("series", spec.Series.Name),
		slog.Int("points", spec.Series.Len()),
		slog.Int("overlays", len(spec.Overlays)))
	return nil
}

func seriesXYs(s domain.Series) plotter.XYs {
	xys := make(plotter.XYs, s.Len())
	for i, p := range s.Points {
		xys[i].X = float64(p.Date.Unix())
		xys[i].Y = p.Value
	}
	return xys
}

func overlayXYs(s domain.Series, col domain.DerivedColumn) plotter.XYs {
	xys := make(plotter.XYs, 0, len(col.Values))
	for i, v := range col.Values {
		if !v.Valid || i >= s.Len() {
			continue
		}
		xys = append(xys, plotter.XY{X: float64(s.Points[i].Date.Unix()), Y: v.Value})
	}
	return xys
}

func seriesBounds(s domain.Series) (float64, float64) {
	return float64(s.Points[0].Date.Unix()), float64(s.Points[s.Len()-1].Date.Unix())
}
