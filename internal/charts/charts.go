// Package charts renders the dashboard charts: the daily sales trend and the
// channel structure.
package charts

import (
	"bytes"
	"errors"
	"fmt"
	"time"

	"github.com/dustin/go-humanize"
	chart "github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"
	"salespro-go/internal/types"
)

var ErrNoData = errors.New("nothing to chart")

// Format is an output image format.
type Format string

const (
	PNG Format = "png"
	SVG Format = "svg"
)

// ContentType is the MIME type of f.
func (f Format) ContentType() string {
	if f == SVG {
		return "image/svg+xml"
	}
	return "image/png"
}

// ParseFormat accepts "png" or "svg".
func ParseFormat(s string) (Format, error) {
	switch Format(s) {
	case PNG, SVG:
		return Format(s), nil
	}
	return "", fmt.Errorf("unsupported chart format %q", s)
}

func (f Format) renderer() chart.RendererProvider {
	if f == SVG {
		return chart.SVG
	}
	return chart.PNG
}

var (
	trendColor = drawing.ColorFromHex("00CC96")
	pieColors  = []drawing.Color{
		drawing.ColorFromHex("636EFA"),
		drawing.ColorFromHex("EF553B"),
		drawing.ColorFromHex("00CC96"),
		drawing.ColorFromHex("AB63FA"),
		drawing.ColorFromHex("FFA15A"),
		drawing.ColorFromHex("19D3F3"),
	}
)

const (
	width  = 900
	height = 360
)

func amount(v any) string {
	if f, ok := v.(float64); ok {
		return humanize.FormatFloat("#,###.", f)
	}
	return fmt.Sprint(v)
}

// Trend draws daily sales as a filled line. Dated points use a time axis; when
// some label is not a date the points are spaced by index.
func Trend(points []types.DailyPoint, f Format) ([]byte, error) {
	if len(points) == 0 {
		return nil, ErrNoData
	}
	style := chart.Style{
		StrokeColor: trendColor,
		StrokeWidth: 2,
		FillColor:   trendColor.WithAlpha(64),
	}

	ys := make([]float64, len(points))
	dated := true
	for i, p := range points {
		ys[i] = p.Sales
		if p.Date.IsZero() {
			dated = false
		}
	}

	var series chart.Series
	xAxis := chart.XAxis{Name: "Дата"}
	if dated {
		xs := make([]time.Time, len(points))
		for i, p := range points {
			xs[i] = p.Date
		}
		// go-chart needs two distinct X values
		if len(xs) == 1 {
			xs = append(xs, xs[0].Add(24*time.Hour))
			ys = append(ys, ys[0])
		}
		series = chart.TimeSeries{Name: "Продажи", XValues: xs, YValues: ys, Style: style}
		xAxis.ValueFormatter = chart.TimeDateValueFormatter
	} else {
		xs := make([]float64, len(points))
		ticks := make([]chart.Tick, len(points))
		for i, p := range points {
			xs[i] = float64(i)
			ticks[i] = chart.Tick{Value: float64(i), Label: p.Label}
		}
		if len(xs) == 1 {
			xs = append(xs, 1)
			ys = append(ys, ys[0])
		}
		series = chart.ContinuousSeries{Name: "Продажи", XValues: xs, YValues: ys, Style: style}
		xAxis.Ticks = ticks
	}

	graph := chart.Chart{
		Width:      width,
		Height:     height,
		Background: chart.Style{Padding: chart.Box{Top: 20, Left: 20, Right: 20, Bottom: 20}},
		XAxis:      xAxis,
		YAxis:      chart.YAxis{Name: "Продажи", ValueFormatter: amount},
		Series:     []chart.Series{series},
	}
	var buf bytes.Buffer
	if err := graph.Render(f.renderer(), &buf); err != nil {
		return nil, fmt.Errorf("render trend chart: %w", err)
	}
	return buf.Bytes(), nil
}

// ChannelPie draws the channel structure. Channels without sales are left out.
func ChannelPie(shares []types.ChannelShare, f Format) ([]byte, error) {
	var values []chart.Value
	for i, s := range shares {
		if s.Sales <= 0 {
			continue
		}
		values = append(values, chart.Value{
			Value: s.Sales,
			Label: fmt.Sprintf("%s %.0f%%", s.Channel, s.Share*100),
			Style: chart.Style{FillColor: pieColors[i%len(pieColors)], StrokeColor: drawing.ColorWhite},
		})
	}
	if len(values) == 0 {
		return nil, ErrNoData
	}

	pie := chart.DonutChart{
		Width:  height,
		Height: height,
		Values: values,
	}
	var buf bytes.Buffer
	if err := pie.Render(f.renderer(), &buf); err != nil {
		return nil, fmt.Errorf("render channel chart: %w", err)
	}
	return buf.Bytes(), nil
}
