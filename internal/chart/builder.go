package chart

import (
	"fmt"
	"strings"

	"github.com/paveg/plotdeck/internal/aggregate"
	"github.com/paveg/plotdeck/internal/dataframe"
	"github.com/paveg/plotdeck/internal/errors"
	"github.com/paveg/plotdeck/internal/series"
	"github.com/paveg/plotdeck/internal/validation"
)

const (
	// DefaultBins is the fixed histogram bin count
	DefaultBins = 30
	// DefaultTopCategories is the category cap for stacked and side-by-side histograms
	DefaultTopCategories = 10
)

// Options configures a Builder
type Options struct {
	Bins          int
	TopCategories int
	Palette       Palette
}

// DefaultOptions returns the standard builder configuration
func DefaultOptions() Options {
	return Options{
		Bins:          DefaultBins,
		TopCategories: DefaultTopCategories,
		Palette:       DefaultPalette,
	}
}

// Input is everything the builder needs: resolved columns plus the frame
// that has already been filtered and, for non-histograms, aggregated.
type Input struct {
	Type     Type
	X        string
	Y        string
	Category string
	Method   aggregate.Method
	Frame    *dataframe.Frame
}

// Builder turns resolved inputs into chart specs
type Builder struct {
	opts Options
}

// NewBuilder creates a Builder, filling unset options with defaults
func NewBuilder(opts Options) *Builder {
	def := DefaultOptions()
	if opts.Bins <= 0 {
		opts.Bins = def.Bins
	}
	if opts.TopCategories <= 0 {
		opts.TopCategories = def.TopCategories
	}
	if len(opts.Palette) == 0 {
		opts.Palette = def.Palette
	}
	return &Builder{opts: opts}
}

// Build produces the Spec for in. Columns must exist in the frame; the
// category column is required for chart types that use one.
func (b *Builder) Build(in Input) (*Spec, error) {
	if in.Frame == nil {
		return nil, errors.NewInternalError("chart", fmt.Errorf("no data to build %s from", in.Type))
	}
	columns := []string{in.X}
	if in.Type.UsesYAxis() {
		columns = append(columns, in.Y)
	}
	if in.Type.UsesCategory() {
		columns = append(columns, in.Category)
	}
	if err := validation.ValidateColumns(in.Frame, "chart", columns...); err != nil {
		return nil, err
	}

	if in.Type.IsHistogram() {
		return b.buildHistogram(in)
	}
	return b.buildXY(in), nil
}

func (b *Builder) buildXY(in Input) *Spec {
	spec := &Spec{
		Type:        in.Type,
		X:           in.X,
		Y:           in.Y,
		Aggregation: in.Method,
		Title:       Title(in.Type, in.Method, in.X, in.Y, in.Category),
		XTitle:      in.X,
		YTitle:      in.Y,
	}

	switch in.Type {
	case Bar:
		spec.Mark = MarkBar
		spec.Colors = b.opts.Palette.Take(in.Frame.Len())
		spec.ShowValues = true
		spec.Data = NewTable(in.Frame, in.X, in.Y)
	case ClusteredBar:
		spec.Mark = MarkBar
		spec.Color = in.Category
		spec.BarMode = BarModeGroup
		spec.Categories = in.Frame.Distinct(in.Category)
		spec.Colors = b.opts.Palette.Take(len(spec.Categories))
		spec.Data = NewTable(in.Frame, in.X, in.Y, in.Category)
	case Line:
		spec.Mark = MarkLine
		spec.Colors = b.opts.Palette.Take(1)
		spec.Data = NewTable(in.Frame, in.X, in.Y)
	default:
		spec.Mark = MarkPoint
		spec.Colors = b.opts.Palette.Take(1)
		spec.Data = NewTable(in.Frame, in.X, in.Y)
	}
	return spec
}

func (b *Builder) buildHistogram(in Input) (*Spec, error) {
	spec := &Spec{
		Type:     in.Type,
		Mark:     MarkBar,
		X:        in.X,
		Title:    Title(in.Type, aggregate.None, in.X, "", in.Category),
		XTitle:   in.X,
		YTitle:   "Count",
		BinCount: b.opts.Bins,
	}

	frame := in.Frame
	if in.Type.UsesCategory() {
		top, categories, err := TopCategories(in.Frame, in.Category, b.opts.TopCategories)
		if err != nil {
			return nil, errors.NewSelectionError("chart", in.Category, err.Error())
		}
		defer top.Release()
		frame = top

		spec.Color = in.Category
		spec.Categories = categories
		spec.Colors = b.opts.Palette.Take(len(categories))
		spec.BarMode = BarModeStack
		if in.Type == SideBySideHistogram {
			spec.BarMode = BarModeGroup
		}
	}

	xCol, _ := frame.Column(in.X)
	var bn binner
	if kind, _ := frame.Kind(in.X); kind == series.Numeric {
		bn = newNumericBinner(xCol, b.opts.Bins)
	} else {
		bn = newCategoricalBinner(frame, xCol)
	}

	if in.Type.UsesCategory() {
		b.fillSegments(frame, in.Category, spec, bn)
		spec.Data = NewTable(frame, in.X, in.Category)
	} else {
		b.fillCounts(spec, bn, frame.Len())
		spec.ShowValues = true
		spec.Data = NewTable(frame, in.X)
	}
	return spec, nil
}

func (b *Builder) fillCounts(spec *Spec, bn binner, rows int) {
	for row := range rows {
		if idx, ok := bn.index(row); ok {
			bn.bins[idx].Count++
		}
	}
	for i := range bn.bins {
		bn.bins[i].Color = b.opts.Palette.At(i)
	}
	spec.Bins = bn.bins
}

func (b *Builder) fillSegments(frame *dataframe.Frame, category string, spec *Spec, bn binner) {
	position := make(map[string]int, len(spec.Categories))
	for i, c := range spec.Categories {
		position[c] = i
	}
	for i := range bn.bins {
		segments := make([]Segment, len(spec.Categories))
		for j, c := range spec.Categories {
			segments[j] = Segment{Category: c, Color: spec.Colors[j]}
		}
		bn.bins[i].Segments = segments
	}

	catCol, _ := frame.Column(category)
	for row := range frame.Len() {
		idx, ok := bn.index(row)
		if !ok {
			continue
		}
		key, present := catCol.Key(row)
		if !present {
			continue
		}
		bn.bins[idx].Count++
		bn.bins[idx].Segments[position[key]].Count++
	}
	spec.Bins = bn.bins
}

// Title derives the chart title from the resolved selection
func Title(t Type, method aggregate.Method, x, y, category string) string {
	switch t {
	case Histogram:
		return fmt.Sprintf("Distribution of %s", x)
	case StackedHistogram, SideBySideHistogram:
		return fmt.Sprintf("%s of %s by %s", strings.ReplaceAll(t.Label(), "-", " "), x, category)
	}

	title := fmt.Sprintf("%s vs %s", x, y)
	if method != aggregate.None {
		title = fmt.Sprintf("%s of %s", method, title)
	}
	if t == ClusteredBar && category != "" {
		title = fmt.Sprintf("%s by %s", title, category)
	}
	return title
}
