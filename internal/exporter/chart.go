package exporter

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	chart "github.com/wcharczuk/go-chart/v2"

	apperrors "vacstat/internal/errors"
	"vacstat/pkg/contracts/domain"
)

const (
	chartWidth  = 1024
	chartHeight = 512
)

// ChartExporter renders the aggregation output as PNG images: salary and
// vacancy-count trends by year, salary level per city, vacancy share per
// city.
type ChartExporter struct {
	logger *slog.Logger
}

// NewChartExporter creates a chart exporter.
func NewChartExporter(logger *slog.Logger) *ChartExporter {
	if logger == nil {
		logger = slog.Default()
	}
	return &ChartExporter{logger: logger}
}

// Write renders all four charts into dir using prefix for file names and
// returns the paths of the written images.
func (c *ChartExporter) Write(ctx context.Context, stats *domain.Statistics, dir, prefix string) ([]string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, apperrors.NewStorageError("failed to create chart directory", err)
	}

	renders := []struct {
		suffix string
		fn     func(*domain.Statistics, string) error
	}{
		{"salary_by_year", c.salaryByYear},
		{"count_by_year", c.countByYear},
		{"salary_by_city", c.salaryByCity},
		{"share_by_city", c.shareByCity},
	}

	paths := make([]string, 0, len(renders))
	for _, r := range renders {
		path := filepath.Join(dir, fmt.Sprintf("%s_%s.png", prefix, r.suffix))
		if err := r.fn(stats, path); err != nil {
			return nil, err
		}
		paths = append(paths, path)
	}

	c.logger.InfoContext(ctx, "charts written",
		slog.String("dir", dir),
		slog.Int("charts", len(paths)))

	return paths, nil
}

// salaryByYear draws the overall and profession average salary trends.
func (c *ChartExporter) salaryByYear(stats *domain.Statistics, path string) error {
	return c.yearTrend(stats, path, "Salary level by year",
		intSeries(stats.Years, stats.SalaryByYear),
		intSeries(stats.Years, stats.SalaryByYearNeeded))
}

// countByYear draws the overall and profession vacancy count trends.
func (c *ChartExporter) countByYear(stats *domain.Statistics, path string) error {
	return c.yearTrend(stats, path, "Vacancy count by year",
		intSeries(stats.Years, stats.CountByYear),
		intSeries(stats.Years, stats.CountByYearNeeded))
}

func (c *ChartExporter) yearTrend(stats *domain.Statistics, path, title string, all, needed []float64) error {
	if len(stats.Years) == 0 {
		return apperrors.NewValidationError("no year buckets to chart")
	}

	xs := make([]float64, len(stats.Years))
	for i, year := range stats.Years {
		xs[i] = float64(year)
	}

	graph := chart.Chart{
		Title:  title,
		Width:  chartWidth,
		Height: chartHeight,
		Background: chart.Style{
			Padding: chart.Box{Top: 40, Left: 20, Right: 20, Bottom: 20},
		},
		XAxis: chart.XAxis{
			ValueFormatter: func(v interface{}) string {
				if f, ok := v.(float64); ok {
					return fmt.Sprintf("%.0f", f)
				}
				return ""
			},
		},
		Series: []chart.Series{
			chart.ContinuousSeries{
				Name:    "All vacancies",
				XValues: xs,
				YValues: all,
			},
			chart.ContinuousSeries{
				Name:    stats.Profession,
				XValues: xs,
				YValues: needed,
			},
		},
	}

	// A single-year dataset or a flat series gives the renderer a
	// zero-delta range it cannot scale; pin an explicit padded range.
	ys := make([]float64, 0, len(all)+len(needed))
	ys = append(ys, all...)
	ys = append(ys, needed...)
	if r := flatRange(xs); r != nil {
		graph.XAxis.Range = r
	}
	if r := flatRange(ys); r != nil {
		graph.YAxis.Range = r
	}

	graph.Elements = []chart.Renderable{chart.Legend(&graph)}

	return c.render(path, graph.Render)
}

// flatRange returns a padded axis range when every value is identical,
// and nil when the values span a usable range on their own.
func flatRange(values []float64) *chart.ContinuousRange {
	min, max := values[0], values[0]
	for _, v := range values[1:] {
		if v < min {
			min = v
		}
		if v > max {
			max = v
		}
	}
	if max > min {
		return nil
	}
	return &chart.ContinuousRange{Min: min - 1, Max: max + 1}
}

// salaryByCity draws a bar per ranked city.
func (c *ChartExporter) salaryByCity(stats *domain.Statistics, path string) error {
	if len(stats.TopAreasBySalary) == 0 {
		return apperrors.NewValidationError("no ranked areas to chart")
	}

	bars := make([]chart.Value, 0, len(stats.TopAreasBySalary))
	var max float64
	for _, entry := range stats.TopAreasBySalary {
		bars = append(bars, chart.Value{Label: entry.Area, Value: entry.Value})
		if entry.Value > max {
			max = entry.Value
		}
	}
	if max == 0 {
		max = 1
	}

	graph := chart.BarChart{
		Title:  "Salary level by city",
		Width:  chartWidth,
		Height: chartHeight,
		Background: chart.Style{
			Padding: chart.Box{Top: 40, Left: 20, Right: 20, Bottom: 20},
		},
		BarWidth: 60,
		YAxis: chart.YAxis{
			Range: &chart.ContinuousRange{Min: 0, Max: max * 1.1},
		},
		Bars: bars,
	}

	return c.render(path, graph.Render)
}

// shareByCity draws the vacancy share distribution as a pie chart.
func (c *ChartExporter) shareByCity(stats *domain.Statistics, path string) error {
	if len(stats.TopAreasByShare) == 0 {
		return apperrors.NewValidationError("no ranked areas to chart")
	}

	values := make([]chart.Value, 0, len(stats.TopAreasByShare))
	for _, entry := range stats.TopAreasByShare {
		values = append(values, chart.Value{Label: entry.Area, Value: entry.Value})
	}

	graph := chart.PieChart{
		Title:  "Vacancy share by city",
		Width:  chartHeight,
		Height: chartHeight,
		Values: values,
	}

	return c.render(path, graph.Render)
}

// intSeries projects a year-keyed bucket map onto the ordered year axis.
func intSeries(years []int, values map[int]int) []float64 {
	out := make([]float64, len(years))
	for i, year := range years {
		out[i] = float64(values[year])
	}
	return out
}

// render writes one chart to a PNG file, closing it on every exit path.
func (c *ChartExporter) render(path string, render func(chart.RendererProvider, io.Writer) error) error {
	file, err := os.Create(path)
	if err != nil {
		return apperrors.NewStorageError("failed to create chart file", err)
	}
	defer file.Close()

	if err := render(chart.PNG, file); err != nil {
		return apperrors.NewStorageError("failed to render chart", err)
	}
	return nil
}
