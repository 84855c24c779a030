// Package plotdeck turns tabular files into chart specifications.
// This package is the public API; everything else lives under internal/.
//
// A Dataset is decoded once, its columns are classified as numeric or
// categorical, and each Resolve call validates a Request, filters,
// optionally aggregates and returns a side-effect-free Spec:
//
//	ds, err := plotdeck.ReadFile("sales.csv")
//	if err != nil {
//		return err
//	}
//	defer ds.Release()
//
//	spec, err := ds.Resolve(plotdeck.Request{
//		Chart:       plotdeck.Bar,
//		X:           "City",
//		Y:           "Sales",
//		Aggregation: plotdeck.Total,
//	})
package plotdeck

import (
	"io"
	"os"
	"path/filepath"

	"github.com/apache/arrow-go/v18/arrow/memory"
	"github.com/paveg/plotdeck/internal/aggregate"
	"github.com/paveg/plotdeck/internal/chart"
	"github.com/paveg/plotdeck/internal/dataframe"
	"github.com/paveg/plotdeck/internal/errors"
	"github.com/paveg/plotdeck/internal/filter"
	plio "github.com/paveg/plotdeck/internal/io"
	"github.com/paveg/plotdeck/internal/pipeline"
	"github.com/paveg/plotdeck/internal/render"
	"github.com/paveg/plotdeck/internal/series"
)

// Chart types, re-exported from the engine
type ChartType = chart.Type

const (
	Bar                 = chart.Bar
	ClusteredBar        = chart.ClusteredBar
	Scatter             = chart.Scatter
	Line                = chart.Line
	Histogram           = chart.Histogram
	StackedHistogram    = chart.StackedHistogram
	SideBySideHistogram = chart.SideBySideHistogram
)

// Method is an aggregation method
type Method = aggregate.Method

const (
	None    = aggregate.None
	Average = aggregate.Average
	Total   = aggregate.Total
)

// Request, Spec and Constraint are the engine's input and output types
type (
	Request      = pipeline.Request
	Spec         = chart.Spec
	Constraint   = filter.Constraint
	ControlsView = pipeline.ControlsView
	Profile      = dataframe.DatasetProfile
	Column       = series.Column
	Options      = pipeline.Options
)

// DefaultOptions returns the engine defaults: 30 histogram bins, the first
// 5 categorical values selected and the top 10 categories kept
func DefaultOptions() Options {
	return pipeline.DefaultOptions()
}

// Range is a closed numeric constraint
func Range(lo, hi float64) Constraint {
	return filter.Range(lo, hi)
}

// OneOf is a discrete value-set constraint
func OneOf(values ...string) Constraint {
	return filter.OneOf(values...)
}

// ParseChartType accepts "bar" as well as "Bar Chart"
func ParseChartType(s string) (ChartType, error) {
	return chart.ParseType(s)
}

// ParseMethod accepts none, average and total with their usual aliases
func ParseMethod(s string) (Method, error) {
	return aggregate.ParseMethod(s)
}

// NewColumn creates a column from values; nil mem uses the Go allocator
func NewColumn[T series.Element](name string, values []T, mem memory.Allocator) *Column {
	if mem == nil {
		mem = memory.NewGoAllocator()
	}
	return series.New(name, values, mem)
}

// Dataset is an immutable, classified table
type Dataset struct {
	df     *dataframe.Frame
	engine *pipeline.Engine
}

// NewDataset takes ownership of columns
func NewDataset(columns ...*Column) *Dataset {
	return wrap(dataframe.New(columns...))
}

func wrap(df *dataframe.Frame) *Dataset {
	return &Dataset{df: df, engine: pipeline.NewEngine(pipeline.DefaultOptions())}
}

// WithOptions returns a dataset sharing d's columns whose requests run on
// an engine built from opts. Release only one of them.
func (d *Dataset) WithOptions(opts Options) *Dataset {
	return &Dataset{df: d.df, engine: pipeline.NewEngine(opts)}
}

// Decode reads r in the format named by filename's extension: csv, xlsx
// or xls
func Decode(filename string, r io.ReadSeeker) (*Dataset, error) {
	df, err := plio.Decode(filename, r, memory.NewGoAllocator())
	if err != nil {
		return nil, err
	}
	return wrap(df), nil
}

// ReadFile decodes the file at path
func ReadFile(path string) (*Dataset, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.NewMissingFileError(err.Error())
	}
	defer f.Close()
	return Decode(filepath.Base(path), f)
}

// ReadCSV reads CSV with a header row from r
func ReadCSV(r io.Reader) (*Dataset, error) {
	df, err := plio.NewCSVReader(r, plio.DefaultCSVOptions(), memory.NewGoAllocator()).Read()
	if err != nil {
		return nil, errors.NewDecodeError(err)
	}
	return wrap(df), nil
}

// Release frees the Arrow memory behind the dataset
func (d *Dataset) Release() {
	d.df.Release()
}

// Columns returns the column names in order
func (d *Dataset) Columns() []string {
	return d.df.Columns()
}

// Len returns the number of rows
func (d *Dataset) Len() int {
	return d.df.Len()
}

// Width returns the number of columns
func (d *Dataset) Width() int {
	return d.df.Width()
}

// WithCategorical returns a view treating the named numeric columns as
// labels. The view holds its own references and is released separately.
func (d *Dataset) WithCategorical(names ...string) *Dataset {
	return &Dataset{df: d.df.WithCategorical(names...), engine: d.engine}
}

// Profile returns row/column counts and per-column distinct values
func (d *Dataset) Profile() Profile {
	return dataframe.Profile(d.df, dataframe.DefaultPreviewColumns)
}

// Controls returns the eligible column lists and default constraints for
// chart type t and the current x and y
func (d *Dataset) Controls(t ChartType, x, y string) (ControlsView, error) {
	return d.engine.Controls(d.df, t, x, y)
}

// Resolve runs req through validation, filtering, aggregation and the
// spec builder
func (d *Dataset) Resolve(req Request) (*Spec, error) {
	return d.engine.Resolve(d.df, req)
}

// Preview returns the unfiltered scatter shown after an upload
func (d *Dataset) Preview() (*Spec, error) {
	return d.engine.Preview(d.df)
}

// WriteCSV writes the dataset with a header row; nulls become empty cells
func (d *Dataset) WriteCSV(w io.Writer) error {
	return plio.NewCSVWriter(w, plio.DefaultCSVOptions()).Write(d.df)
}

// RenderPNG draws spec with the default renderer
func RenderPNG(spec *Spec, w io.Writer) error {
	return render.New().PNG(spec, w)
}
