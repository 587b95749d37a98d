package exporter

import (
	"bytes"
	"fmt"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"

	"purchdash/internal/analytics"
)

const (
	chartWidth  = 8 * vg.Inch
	chartHeight = 4 * vg.Inch
)

// MonthlyBarChart renders month-bucketed totals as a PNG bar chart.
func MonthlyBarChart(title string, groups []analytics.GroupSum) ([]byte, error) {
	p := plot.New()
	p.Title.Text = title
	p.Y.Label.Text = "EUR"

	values := make(plotter.Values, len(groups))
	labels := make([]string, len(groups))
	for i, g := range groups {
		values[i] = g.Amount
		labels[i] = g.Bucket
	}

	bars, err := plotter.NewBarChart(values, vg.Points(18))
	if err != nil {
		return nil, fmt.Errorf("build bar chart: %w", err)
	}
	bars.Color = plotutil.Color(0)
	bars.LineStyle.Width = 0
	p.Add(bars)
	p.NominalX(labels...)

	return renderPNG(p)
}

// ForecastLineChart renders history plus projection as two line series.
func ForecastLineChart(fc analytics.ForecastResult) ([]byte, error) {
	p := plot.New()
	p.Title.Text = fmt.Sprintf("6-month forecast: %s", fc.Value)
	p.Y.Label.Text = "EUR"
	p.X.Tick.Marker = plot.TimeTicks{Format: "2006-01"}

	history := monthlyXYs(fc.History)
	projection := monthlyXYs(fc.Projection)

	histLine, err := plotter.NewLine(history)
	if err != nil {
		return nil, fmt.Errorf("build history line: %w", err)
	}
	histLine.Color = plotutil.Color(0)
	p.Add(histLine)
	p.Legend.Add("history", histLine)

	if len(projection) > 0 {
		projLine, err := plotter.NewLine(projection)
		if err != nil {
			return nil, fmt.Errorf("build projection line: %w", err)
		}
		projLine.Color = plotutil.Color(1)
		projLine.Dashes = plotutil.Dashes(1)
		p.Add(projLine)
		p.Legend.Add("projection", projLine)
	}
	p.Legend.Top = true

	return renderPNG(p)
}

// DistributionBarChart renders a categorical count distribution.
func DistributionBarChart(title string, counts []analytics.CountItem) ([]byte, error) {
	p := plot.New()
	p.Title.Text = title
	p.Y.Label.Text = "orders"

	values := make(plotter.Values, len(counts))
	labels := make([]string, len(counts))
	for i, c := range counts {
		values[i] = float64(c.Count)
		labels[i] = c.Label
	}

	bars, err := plotter.NewBarChart(values, vg.Points(24))
	if err != nil {
		return nil, fmt.Errorf("build distribution chart: %w", err)
	}
	bars.Color = plotutil.Color(2)
	bars.LineStyle.Width = 0
	p.Add(bars)
	p.NominalX(labels...)

	return renderPNG(p)
}

func monthlyXYs(points []analytics.MonthlyPoint) plotter.XYs {
	xys := make(plotter.XYs, len(points))
	for i, pt := range points {
		xys[i].X = float64(pt.Month.Unix())
		xys[i].Y = pt.Amount
	}
	return xys
}

func renderPNG(p *plot.Plot) ([]byte, error) {
	w, err := p.WriterTo(chartWidth, chartHeight, "png")
	if err != nil {
		return nil, fmt.Errorf("render chart: %w", err)
	}
	var buf bytes.Buffer
	if _, err := w.WriteTo(&buf); err != nil {
		return nil, fmt.Errorf("encode chart png: %w", err)
	}
	return buf.Bytes(), nil
}
