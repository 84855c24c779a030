// Package render draws chart specs as PNG images with go-chart. It sits
// outside the engine: nothing in the pipeline calls it.
package render

import (
	"fmt"
	"io"
	"math"
	"strings"

	"github.com/paveg/plotdeck/internal/chart"
	"github.com/paveg/plotdeck/internal/errors"
	gochart "github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"
)

// Default image size in pixels
const (
	DefaultWidth  = 1024
	DefaultHeight = 576
)

// Renderer turns specs into PNG images
type Renderer struct {
	Width  int
	Height int
}

// New returns a Renderer with the default size
func New() *Renderer {
	return &Renderer{Width: DefaultWidth, Height: DefaultHeight}
}

type renderable interface {
	Render(rp gochart.RendererProvider, w io.Writer) error
}

// PNG writes spec to w. Layouts split by category (clustered bars, stacked
// and side by side histograms) are drawn as one line per category with a
// legend since go-chart has no grouped bar chart and its stacked bars are
// normalized to 100%.
func (r *Renderer) PNG(spec *chart.Spec, w io.Writer) error {
	if spec == nil || len(spec.Data.Rows) == 0 {
		return errors.NewSelectionError("render", "", "no rows to plot")
	}

	var c renderable
	switch {
	case spec.Type == chart.Histogram:
		c = r.histogram(spec)
	case spec.Type.IsHistogram():
		c = r.groupedHistogram(spec)
	case spec.Type == chart.Bar:
		c = r.bars(spec)
	case spec.Type == chart.ClusteredBar:
		c = r.clusteredBars(spec)
	default:
		c = r.continuous(spec)
	}

	if err := c.Render(gochart.PNG, w); err != nil {
		return errors.NewInternalError("render", err)
	}
	return nil
}

func (r *Renderer) histogram(spec *chart.Spec) *gochart.BarChart {
	bars := make([]gochart.Value, len(spec.Bins))
	top := 0.0
	for i, bin := range spec.Bins {
		bars[i] = gochart.Value{
			Label: bin.Label,
			Value: float64(bin.Count),
			Style: fill(bin.Color),
		}
		top = math.Max(top, float64(bin.Count))
	}
	return r.barChart(spec, bars, top)
}

func (r *Renderer) bars(spec *chart.Spec) *gochart.BarChart {
	bars := make([]gochart.Value, 0, len(spec.Data.Rows))
	top := 0.0
	for i, row := range spec.Data.Rows {
		v, ok := number(row[1])
		if !ok {
			continue
		}
		bars = append(bars, gochart.Value{
			Label: label(row[0]),
			Value: v,
			Style: fill(colorAt(spec.Colors, i)),
		})
		top = math.Max(top, v)
	}
	return r.barChart(spec, bars, top)
}

func (r *Renderer) barChart(spec *chart.Spec, bars []gochart.Value, top float64) *gochart.BarChart {
	barWidth := 40
	if len(bars) > 0 {
		barWidth = max(4, min(60, (r.Width-120)/len(bars)-4))
	}
	return &gochart.BarChart{
		Title:      spec.Title,
		Width:      r.Width,
		Height:     r.Height,
		BarWidth:   barWidth,
		Background: gochart.Style{Padding: gochart.Box{Top: 40, Left: 16, Right: 16, Bottom: 16}},
		XAxis:      gochart.Style{TextRotationDegrees: rotation(len(bars))},
		YAxis: gochart.YAxis{
			Name:  spec.YTitle,
			Range: &gochart.ContinuousRange{Min: 0, Max: math.Max(top, 1)},
		},
		Bars: bars,
	}
}

// categorySeries draws one line per category over shared x positions
func (r *Renderer) categorySeries(spec *chart.Spec, xs []float64, ticks []gochart.Tick, counts map[string][]float64) *gochart.Chart {
	series := make([]gochart.Series, 0, len(spec.Categories))
	for i, category := range spec.Categories {
		ys, ok := counts[category]
		if !ok {
			continue
		}
		c := color(colorAt(spec.Colors, i))
		series = append(series, gochart.ContinuousSeries{
			Name:    category,
			XValues: xs,
			YValues: ys,
			Style:   gochart.Style{StrokeColor: c, StrokeWidth: 2, DotWidth: 3, DotColor: c},
		})
	}

	top := 1.0
	for _, ys := range counts {
		for _, y := range ys {
			top = math.Max(top, y)
		}
	}

	xAxis := gochart.XAxis{Name: spec.XTitle, Range: padded(xs)}
	if len(ticks) > 0 {
		xAxis.Ticks = ticks
	}
	c := &gochart.Chart{
		Title:      spec.Title,
		Width:      r.Width,
		Height:     r.Height,
		Background: gochart.Style{Padding: gochart.Box{Top: 40, Left: 16, Right: 16, Bottom: 16}},
		XAxis:      xAxis,
		YAxis:      gochart.YAxis{Name: spec.YTitle, Range: &gochart.ContinuousRange{Min: 0, Max: top}},
		Series:     series,
	}
	c.Elements = []gochart.Renderable{gochart.Legend(c)}
	return c
}

// groupedHistogram plots each category's bin counts, numeric bins at
// their midpoint and categorical bins at their index
func (r *Renderer) groupedHistogram(spec *chart.Spec) *gochart.Chart {
	xs := make([]float64, len(spec.Bins))
	var ticks []gochart.Tick
	counts := make(map[string][]float64, len(spec.Categories))
	for _, c := range spec.Categories {
		counts[c] = make([]float64, len(spec.Bins))
	}

	for i, bin := range spec.Bins {
		if bin.Lo != nil && bin.Hi != nil {
			xs[i] = (*bin.Lo + *bin.Hi) / 2
		} else {
			xs[i] = float64(i)
			ticks = append(ticks, gochart.Tick{Value: xs[i], Label: bin.Label})
		}
		for _, seg := range bin.Segments {
			counts[seg.Category][i] = float64(seg.Count)
		}
	}
	return r.categorySeries(spec, xs, ticks, counts)
}

// clusteredBars plots each category's value at the x positions in
// first-seen order; missing combinations are zero
func (r *Renderer) clusteredBars(spec *chart.Spec) *gochart.Chart {
	var xs []float64
	var ticks []gochart.Tick
	index := map[string]int{}
	type point struct {
		x        int
		category string
		value    float64
	}
	var points []point
	for _, row := range spec.Data.Rows {
		v, ok := number(row[1])
		if !ok {
			continue
		}
		x := label(row[0])
		i, seen := index[x]
		if !seen {
			i = len(xs)
			index[x] = i
			xs = append(xs, float64(i))
			ticks = append(ticks, gochart.Tick{Value: float64(i), Label: x})
		}
		points = append(points, point{x: i, category: label(row[2]), value: v})
	}

	counts := make(map[string][]float64, len(spec.Categories))
	for _, c := range spec.Categories {
		counts[c] = make([]float64, len(xs))
	}
	for _, p := range points {
		if ys, ok := counts[p.category]; ok {
			ys[p.x] = p.value
		}
	}
	return r.categorySeries(spec, xs, ticks, counts)
}

func (r *Renderer) continuous(spec *chart.Spec) *gochart.Chart {
	xs := make([]float64, 0, len(spec.Data.Rows))
	ys := make([]float64, 0, len(spec.Data.Rows))

	// categorical x values are placed at their first-seen position
	var ticks []gochart.Tick
	positions := map[string]float64{}
	for _, row := range spec.Data.Rows {
		y, ok := number(row[1])
		if !ok || row[0] == nil {
			continue
		}
		x, numeric := number(row[0])
		if !numeric {
			key := label(row[0])
			pos, seen := positions[key]
			if !seen {
				pos = float64(len(positions))
				positions[key] = pos
				ticks = append(ticks, gochart.Tick{Value: pos, Label: key})
			}
			x = pos
		}
		xs = append(xs, x)
		ys = append(ys, y)
	}

	colour := color(colorAt(spec.Colors, 0))
	style := gochart.Style{StrokeColor: colour, StrokeWidth: 2}
	if spec.Mark == chart.MarkPoint {
		style = gochart.Style{
			StrokeColor: drawing.ColorTransparent,
			DotWidth:    4,
			DotColor:    colour,
		}
	}

	xAxis := gochart.XAxis{Name: spec.XTitle, Range: padded(xs)}
	if len(ticks) > 0 {
		xAxis.Ticks = ticks
	}

	return &gochart.Chart{
		Title:      spec.Title,
		Width:      r.Width,
		Height:     r.Height,
		Background: gochart.Style{Padding: gochart.Box{Top: 40, Left: 16, Right: 16, Bottom: 16}},
		XAxis:      xAxis,
		YAxis:      gochart.YAxis{Name: spec.YTitle, Range: padded(ys)},
		Series: []gochart.Series{
			gochart.ContinuousSeries{Name: spec.Y, XValues: xs, YValues: ys, Style: style},
		},
	}
}

// padded widens a degenerate range so go-chart can scale it
func padded(values []float64) *gochart.ContinuousRange {
	if len(values) == 0 {
		return &gochart.ContinuousRange{Min: 0, Max: 1}
	}
	lo, hi := values[0], values[0]
	for _, v := range values[1:] {
		lo, hi = math.Min(lo, v), math.Max(hi, v)
	}
	if lo == hi {
		lo, hi = lo-1, hi+1
	}
	return &gochart.ContinuousRange{Min: lo, Max: hi}
}

func number(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, !math.IsNaN(n)
	case int64:
		return float64(n), true
	default:
		return 0, false
	}
}

func label(v any) string {
	if v == nil {
		return ""
	}
	return fmt.Sprint(v)
}

func rotation(bars int) float64 {
	if bars > 12 {
		return 45
	}
	return 0
}

func colorAt(colors []string, i int) string {
	return chart.Palette(colors).At(i)
}

func color(hex string) drawing.Color {
	return drawing.ColorFromHex(strings.TrimPrefix(hex, "#"))
}

func fill(hex string) gochart.Style {
	if hex == "" {
		return gochart.Style{}
	}
	c := color(hex)
	return gochart.Style{FillColor: c, StrokeColor: c}
}
