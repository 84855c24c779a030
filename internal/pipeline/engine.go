package pipeline

import (
	"slices"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
	"github.com/paveg/plotdeck/internal/aggregate"
	"github.com/paveg/plotdeck/internal/chart"
	"github.com/paveg/plotdeck/internal/dataframe"
	"github.com/paveg/plotdeck/internal/errors"
	"github.com/paveg/plotdeck/internal/filter"
	"github.com/paveg/plotdeck/internal/monitoring"
	"github.com/paveg/plotdeck/internal/selection"
	"github.com/paveg/plotdeck/internal/series"
	"github.com/paveg/plotdeck/internal/validation"
)

// Stage names used for timing
const (
	StageValidate  = "validate"
	StageFilter    = "filter"
	StageAggregate = "aggregate"
	StageBuild     = "build"
)

// Options configures an Engine
type Options struct {
	Chart         chart.Options
	CategoryLimit int
	Collector     *monitoring.MetricsCollector
	Logger        log.Logger
}

// DefaultOptions returns the standard engine configuration
func DefaultOptions() Options {
	return Options{
		Chart:         chart.DefaultOptions(),
		CategoryLimit: filter.DefaultCategoryLimit,
	}
}

// Engine resolves chart requests. It holds no per-request state and is
// safe for concurrent use.
type Engine struct {
	builder       *chart.Builder
	categoryLimit int
	collector     *monitoring.MetricsCollector
	logger        log.Logger
}

// NewEngine creates an Engine
func NewEngine(opts Options) *Engine {
	if opts.CategoryLimit <= 0 {
		opts.CategoryLimit = filter.DefaultCategoryLimit
	}
	if opts.Logger == nil {
		opts.Logger = log.NewNopLogger()
	}
	return &Engine{
		builder:       chart.NewBuilder(opts.Chart),
		categoryLimit: opts.CategoryLimit,
		collector:     opts.Collector,
		logger:        opts.Logger,
	}
}

var defaultEngine = NewEngine(DefaultOptions())

// Resolve runs req against df with the default options
func Resolve(df *dataframe.Frame, req Request) (*chart.Spec, error) {
	return defaultEngine.Resolve(df, req)
}

// Resolve validates req against the columns df offers, fills default
// constraints, filters in x, y, category order, aggregates when the chart
// type and method call for it, and builds the chart Spec. Either a Spec or
// an error is returned.
func (e *Engine) Resolve(df *dataframe.Frame, req Request) (*chart.Spec, error) {
	var controls selection.Controls
	var constraints map[string]filter.Constraint
	cols := []string{}

	err := e.collector.RecordOperation(StageValidate, func() error {
		controls = selection.Resolve(df.Schema(), req.Chart, req.X, req.Y)
		if err := validation.ValidateSelection(controls, "resolve", req.X, req.Y, req.Category); err != nil {
			return err
		}
		cols = req.columns(controls)
		for name := range req.Filters {
			if !slices.Contains(cols, name) {
				return errors.NewSelectionError("filter", name, "column is not used by this chart")
			}
		}
		var err error
		constraints, err = filter.Defaults(df, cols, req.Filters, e.categoryLimit)
		return err
	})
	if err != nil {
		level.Debug(e.logger).Log("msg", "rejected chart request", "chart", req.Chart, "err", err)
		return nil, err
	}

	clauses := make([]filter.Clause, 0, len(cols))
	for _, name := range cols {
		clauses = append(clauses, filter.On(name, constraints[name]))
	}

	var filtered *dataframe.Frame
	err = e.collector.RecordRows(StageFilter, func() (int, error) {
		var err error
		filtered, err = filter.Apply(df, clauses...)
		if err != nil {
			return 0, err
		}
		return filtered.Len(), nil
	})
	if err != nil {
		return nil, err
	}
	defer filtered.Release()

	method := req.Aggregation
	if !controls.Aggregation {
		method = aggregate.None
	}

	plotted := filtered
	if method != aggregate.None {
		err = e.collector.RecordRows(StageAggregate, func() (int, error) {
			var err error
			plotted, err = aggregate.Aggregate(filtered, req.groupKeys(), req.Y, method)
			if err != nil {
				return 0, err
			}
			return plotted.Len(), nil
		})
		if err != nil {
			return nil, err
		}
		defer plotted.Release()
	}

	var spec *chart.Spec
	err = e.collector.RecordOperation(StageBuild, func() error {
		var err error
		spec, err = e.builder.Build(chart.Input{
			Type:     req.Chart,
			X:        req.X,
			Y:        req.Y,
			Category: req.Category,
			Method:   method,
			Frame:    plotted,
		})
		return err
	})
	if err != nil {
		return nil, err
	}

	level.Debug(e.logger).Log(
		"msg", "resolved chart",
		"chart", req.Chart,
		"x", req.X,
		"y", req.Y,
		"category", req.Category,
		"aggregation", method,
		"rows_in", df.Len(),
		"rows_filtered", filtered.Len(),
		"rows_plotted", plotted.Len(),
	)
	return spec, nil
}

// Controls returns the resolver output for chart type t and the current x
// and y, together with the default constraint of each participating column
func (e *Engine) Controls(df *dataframe.Frame, t chart.Type, x, y string) (ControlsView, error) {
	controls := selection.Resolve(df.Schema(), t, x, y)
	view := ControlsView{Controls: controls, Constraints: map[string]filter.Constraint{}}
	if len(controls.XOptions) == 0 {
		return view, nil
	}

	req := Request{
		Chart:    t,
		X:        controls.Defaults.X,
		Y:        controls.Defaults.Y,
		Category: controls.Defaults.Category,
	}
	for _, name := range req.columns(controls) {
		if name == "" {
			continue
		}
		c, err := filter.Default(df, name, e.categoryLimit)
		if err != nil {
			return ControlsView{}, err
		}
		view.Constraints[name] = c
	}
	return view, nil
}

// Preview builds the unfiltered scatter shown right after an upload:
// column 0 against column 1, or against the first numeric column when
// column 1 is not numeric.
func (e *Engine) Preview(df *dataframe.Frame) (*chart.Spec, error) {
	if df.Width() < 2 {
		return nil, errors.NewInsufficientColumnsError(df.Width())
	}

	schema := df.Schema()
	x, y := schema[0].Name, schema[1].Name
	if schema[1].Kind != series.Numeric {
		controls := selection.Resolve(schema, chart.Scatter, x, "")
		if len(controls.YOptions) == 0 {
			return nil, errors.NewSelectionError("preview", "", "no numeric column to plot")
		}
		y = controls.YOptions[0]
	}

	return e.builder.Build(chart.Input{
		Type:   chart.Scatter,
		X:      x,
		Y:      y,
		Method: aggregate.None,
		Frame:  df,
	})
}
