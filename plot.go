package main

import (
	"image/color"
	"os"
	"strconv"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"
	"github.com/pkg/errors"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
)

const plotTitle = "Processed Raman Spectrum"

var rawLineColor = color.RGBA{B: 255, A: 255}

// drawPlot saves a 10x6 inch PNG of intensity against Raman shift.
func drawPlot(name string, shift, intensity []float64) error {
	if len(shift) != len(intensity) {
		return errors.Errorf("plot needs equal lengths, got %d and %d", len(shift), len(intensity))
	}
	p := plot.New()
	p.Title.Text = plotTitle
	p.X.Label.Text = "Raman Shift (cm^-1)"
	p.Y.Label.Text = "Intensity (a.u.)"

	pts := make(plotter.XYs, len(shift))
	for i := range pts {
		pts[i].X = shift[i]
		pts[i].Y = intensity[i]
	}
	line, err := plotter.NewLine(pts)
	if err != nil {
		return errors.Wrap(err, "building plot line")
	}
	line.Color = rawLineColor
	p.Add(line)

	if err := p.Save(10*vg.Inch, 6*vg.Inch, name); err != nil {
		return errors.Wrapf(err, "saving plot %s", name)
	}
	return nil
}

type chartSeries struct {
	name   string
	values []float64
}

// drawChart renders an interactive line chart with one series per intensity trace.
func drawChart(name, subtitle string, shift []float64, series ...chartSeries) error {
	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{
			Title:    plotTitle,
			Subtitle: subtitle,
		}),
		charts.WithXAxisOpts(opts.XAxis{Name: "Raman shift (cm-1)"}),
		charts.WithYAxisOpts(opts.YAxis{Name: "Intensity (a.u.)"}),
		charts.WithDataZoomOpts(opts.DataZoom{Type: "slider"}),
	)

	labels := make([]string, len(shift))
	for i, v := range shift {
		labels[i] = strconv.FormatFloat(v, 'f', 2, 64)
	}
	line.SetXAxis(labels)
	for _, s := range series {
		if len(s.values) != len(shift) {
			return errors.Errorf("series %q has %d points for %d shifts", s.name, len(s.values), len(shift))
		}
		data := make([]opts.LineData, len(s.values))
		for i, v := range s.values {
			data[i] = opts.LineData{Value: v}
		}
		line.AddSeries(s.name, data)
	}

	f, err := os.Create(name)
	if err != nil {
		return errors.Wrap(err, "creating chart")
	}
	if err := line.Render(f); err != nil {
		f.Close()
		return errors.Wrapf(err, "rendering chart %s", name)
	}
	return errors.Wrapf(f.Close(), "closing chart %s", name)
}
