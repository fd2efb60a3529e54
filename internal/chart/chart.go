// Package chart renders dashboard charts as SVG.
package chart

import (
	"errors"
	"fmt"
	"io"
	"math"

	gochart "github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"
)

// ErrNoData is returned, with nothing written, when there is nothing to plot
var ErrNoData = errors.New("no data to plot")

const (
	DefaultWidth  = 960
	DefaultHeight = 400
)

var palette = []drawing.Color{
	drawing.ColorFromHex("5c7829"),
	drawing.ColorFromHex("4f46e5"),
	drawing.ColorFromHex("f59e0b"),
	drawing.ColorFromHex("ef4444"),
	drawing.ColorFromHex("06b6d4"),
	drawing.ColorFromHex("8b5cf6"),
	drawing.ColorFromHex("ec4899"),
	drawing.ColorFromHex("84cc16"),
}

// Series is one named line of (x, y) values
type Series struct {
	Name string
	X    []float64
	Y    []float64
}

// LineSpec describes a line chart with years on the x axis
type LineSpec struct {
	Title  string
	XLabel string
	YLabel string
	Width  int
	Height int
	Series []Series
}

// Line renders one or more series as lines. A legend is drawn when there is
// more than one series.
func Line(w io.Writer, spec LineSpec) error {
	var series []gochart.Series
	xr, yr := newBounds(), newBounds()
	for i, s := range spec.Series {
		n := min(len(s.X), len(s.Y))
		if n == 0 {
			continue
		}
		color := palette[i%len(palette)]
		series = append(series, gochart.ContinuousSeries{
			Name:    s.Name,
			XValues: s.X[:n],
			YValues: s.Y[:n],
			Style: gochart.Style{
				StrokeColor: color,
				StrokeWidth: 2,
				DotColor:    color,
				DotWidth:    3,
			},
		})
		xr.add(s.X[:n]...)
		yr.add(s.Y[:n]...)
	}
	if len(series) == 0 {
		return ErrNoData
	}

	ch := gochart.Chart{
		Title:      spec.Title,
		Width:      orDefault(spec.Width, DefaultWidth),
		Height:     orDefault(spec.Height, DefaultHeight),
		Background: gochart.Style{Padding: gochart.Box{Top: 50, Left: 20, Right: 20, Bottom: 20}},
		XAxis: gochart.XAxis{
			Name:           spec.XLabel,
			ValueFormatter: yearFormatter,
			Range:          xr.rangeOf(),
		},
		YAxis: gochart.YAxis{
			Name:  spec.YLabel,
			Range: yr.rangeOf(),
		},
		Series: series,
	}
	if len(series) > 1 {
		ch.Elements = []gochart.Renderable{gochart.Legend(&ch)}
	}

	if err := ch.Render(gochart.SVG, w); err != nil {
		return fmt.Errorf("rendering line chart: %w", err)
	}
	return nil
}

// Bar is one labelled bar
type Bar struct {
	Label string
	Value float64
}

// BarSpec describes a vertical bar chart
type BarSpec struct {
	Title  string
	Width  int
	Height int
	Bars   []Bar
}

// Bars renders a bar chart. Negative values hang below a zero baseline.
func Bars(w io.Writer, spec BarSpec) error {
	if len(spec.Bars) == 0 {
		return ErrNoData
	}

	width := orDefault(spec.Width, DefaultWidth)
	barWidth := max(4, (width-160)/len(spec.Bars)*2/3)

	yr := newBounds()
	yr.add(0)
	values := make([]gochart.Value, 0, len(spec.Bars))
	for _, b := range spec.Bars {
		yr.add(b.Value)
		color := palette[0]
		if b.Value < 0 {
			color = palette[3]
		}
		values = append(values, gochart.Value{
			Label: b.Label,
			Value: b.Value,
			Style: gochart.Style{FillColor: color, StrokeColor: color},
		})
	}

	bc := gochart.BarChart{
		Title:        spec.Title,
		Width:        width,
		Height:       orDefault(spec.Height, DefaultHeight),
		Background:   gochart.Style{Padding: gochart.Box{Top: 50, Left: 20, Right: 20, Bottom: 20}},
		BarWidth:     barWidth,
		BarSpacing:   max(2, barWidth/3),
		UseBaseValue: true,
		BaseValue:    0,
		YAxis:        gochart.YAxis{Range: yr.rangeOf()},
		Bars:         values,
	}

	if err := bc.Render(gochart.SVG, w); err != nil {
		return fmt.Errorf("rendering bar chart: %w", err)
	}
	return nil
}

// ScatterSpec describes a GDP-vs-usage scatter. Color, when set, holds one
// value per point in [0, 100] mapped onto the Viridis scale.
type ScatterSpec struct {
	Title  string
	XLabel string
	YLabel string
	Width  int
	Height int
	X      []float64
	Y      []float64
	Color  []float64
	XMax   float64 // clips the x axis, 0 means fit the data
}

// Scatter renders points without connecting lines
func Scatter(w io.Writer, spec ScatterSpec) error {
	n := min(len(spec.X), len(spec.Y))
	if n == 0 {
		return ErrNoData
	}

	xr, yr := newBounds(), newBounds()
	xr.add(spec.X[:n]...)
	yr.add(spec.Y[:n]...)
	xrange := xr.rangeOf()
	if spec.XMax > xrange.Min {
		xrange.Max = spec.XMax
	}

	colors := spec.Color
	dotColor := func(_, _ gochart.Range, index int, _, _ float64) drawing.Color {
		if index < len(colors) {
			return gochart.Viridis(colors[index], 0, 100)
		}
		return palette[0]
	}

	ch := gochart.Chart{
		Title:      spec.Title,
		Width:      orDefault(spec.Width, DefaultWidth),
		Height:     orDefault(spec.Height, DefaultHeight),
		Background: gochart.Style{Padding: gochart.Box{Top: 50, Left: 20, Right: 20, Bottom: 20}},
		XAxis:      gochart.XAxis{Name: spec.XLabel, Range: xrange},
		YAxis:      gochart.YAxis{Name: spec.YLabel, Range: yr.rangeOf()},
		Series: []gochart.Series{
			gochart.ContinuousSeries{
				XValues: spec.X[:n],
				YValues: spec.Y[:n],
				Style: gochart.Style{
					StrokeWidth:      gochart.Disabled,
					DotWidth:         5,
					DotColorProvider: dotColor,
				},
			},
		},
	}

	if err := ch.Render(gochart.SVG, w); err != nil {
		return fmt.Errorf("rendering scatter chart: %w", err)
	}
	return nil
}

// bounds tracks the extent of plotted values so every axis gets an explicit,
// non-degenerate range.
type bounds struct {
	min, max float64
	set      bool
}

func newBounds() *bounds {
	return &bounds{}
}

func (b *bounds) add(vals ...float64) {
	for _, v := range vals {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			continue
		}
		if !b.set || v < b.min {
			b.min = v
		}
		if !b.set || v > b.max {
			b.max = v
		}
		b.set = true
	}
}

func (b *bounds) rangeOf() *gochart.ContinuousRange {
	lo, hi := b.min, b.max
	if !b.set {
		lo, hi = 0, 1
	}
	if lo == hi {
		pad := math.Max(1, math.Abs(lo)*0.1)
		lo, hi = lo-pad, hi+pad
	}
	return &gochart.ContinuousRange{Min: lo, Max: hi}
}

func yearFormatter(v interface{}) string {
	if f, ok := v.(float64); ok {
		return fmt.Sprintf("%.0f", f)
	}
	return ""
}

func orDefault(v, def int) int {
	if v <= 0 {
		return def
	}
	return v
}
