// Package chart renders dataset summaries to standalone HTML charts:
// trend lines with moving average and fitted trend, bar and pie breakdowns
// by group, and a year-over-year heatmap.
package chart

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"

	"taskninja/internal/aggregate"
	apperrors "taskninja/internal/errors"
	"taskninja/internal/trend"
)

// TrendLine renders the series plus its rolling mean and least-squares fit.
func TrendLine(series *trend.Series, window int, title string) *charts.Line {
	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{Title: title}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true), Trigger: "axis"}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(true)}),
	)

	values := series.Values()
	actual := make([]opts.LineData, len(values))
	for i, v := range values {
		actual[i] = opts.LineData{Value: v}
	}

	means, oks := trend.RollingMean(values, window)
	rolling := make([]opts.LineData, len(values))
	for i := range values {
		if oks[i] {
			rolling[i] = opts.LineData{Value: means[i]}
		} else {
			rolling[i] = opts.LineData{Value: "-"}
		}
	}

	fitted := trend.FitLine(values)
	fit := make([]opts.LineData, len(fitted))
	for i, v := range fitted {
		fit[i] = opts.LineData{Value: v}
	}

	line.SetXAxis(series.Labels()).
		AddSeries("Actual", actual).
		AddSeries(fmt.Sprintf("%d-Period Moving Average", window), rolling).
		AddSeries("Trend Line", fit)
	return line
}

// GroupBar renders one bar per group sum.
func GroupBar(summary *aggregate.Summary, title string) *charts.Bar {
	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{Title: title}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
	)

	labels := make([]string, len(summary.Groups))
	data := make([]opts.BarData, len(summary.Groups))
	for i, g := range summary.Groups {
		labels[i] = groupLabel(g)
		data[i] = opts.BarData{Value: g.Sum}
	}
	bar.SetXAxis(labels).AddSeries("Total "+summary.ValueColumn, data)
	return bar
}

// GroupPie renders the share of each group's sum.
func GroupPie(summary *aggregate.Summary, title string) *charts.Pie {
	pie := charts.NewPie()
	pie.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{Title: title}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
	)

	data := make([]opts.PieData, len(summary.Groups))
	for i, g := range summary.Groups {
		data[i] = opts.PieData{Name: groupLabel(g), Value: g.Sum}
	}
	pie.AddSeries("Total "+summary.ValueColumn, data)
	return pie
}

// YearMonthHeatmap renders month buckets (x) against years (y).
func YearMonthHeatmap(series *trend.Series, title string) *charts.HeatMap {
	hm := charts.NewHeatMap()

	months := []string{"Jan", "Feb", "Mar", "Apr", "May", "Jun", "Jul", "Aug", "Sep", "Oct", "Nov", "Dec"}

	var years []string
	yearIndex := map[int]int{}
	maxVal := 0.0
	var data []opts.HeatMapData
	for _, p := range series.Points {
		year := p.Period.Year()
		idx, ok := yearIndex[year]
		if !ok {
			idx = len(years)
			yearIndex[year] = idx
			years = append(years, fmt.Sprintf("%d", year))
		}
		data = append(data, opts.HeatMapData{Value: [3]any{int(p.Period.Month()) - 1, idx, p.Value}})
		if p.Value > maxVal {
			maxVal = p.Value
		}
	}

	hm.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{Title: title}),
		charts.WithXAxisOpts(opts.XAxis{Type: "category", Data: months}),
		charts.WithYAxisOpts(opts.YAxis{Type: "category", Data: years}),
		charts.WithVisualMapOpts(opts.VisualMap{
			Calculable: opts.Bool(true),
			Max:        float32(maxVal),
		}),
	)
	hm.AddSeries("Sales", data)
	return hm
}

// renderable is what every go-echarts chart type implements.
type renderable interface {
	Render(w io.Writer) error
}

// Save renders a chart into an HTML file under dir.
func Save(c renderable, dir, filename string) (string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", apperrors.Wrap(apperrors.CodeIO, "failed to create chart directory", err)
	}
	path := filepath.Join(dir, filename)
	f, err := os.Create(path)
	if err != nil {
		return "", apperrors.Wrap(apperrors.CodeIO, fmt.Sprintf("failed to create %s", path), err)
	}
	defer f.Close()

	if err := c.Render(f); err != nil {
		return "", apperrors.Wrap(apperrors.CodeIO, "failed to render chart", err)
	}
	slog.Info("rendered chart", slog.String("path", path))
	return path, nil
}

func groupLabel(g aggregate.GroupRow) string {
	label := ""
	for i, k := range g.Keys {
		if i > 0 {
			label += " / "
		}
		label += k
	}
	return label
}
