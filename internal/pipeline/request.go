// Package pipeline runs the chart engine: it resolves a request against a
// dataset, filters, aggregates and builds the chart spec.
package pipeline

import (
	"slices"

	"github.com/paveg/plotdeck/internal/aggregate"
	"github.com/paveg/plotdeck/internal/chart"
	"github.com/paveg/plotdeck/internal/filter"
	"github.com/paveg/plotdeck/internal/selection"
)

// Request is the user's resolved chart selection
type Request struct {
	Chart       chart.Type                   `json:"chart"`
	X           string                       `json:"x"`
	Y           string                       `json:"y,omitempty"`
	Category    string                       `json:"category,omitempty"`
	Aggregation aggregate.Method             `json:"aggregation"`
	Filters     map[string]filter.Constraint `json:"filters,omitempty"`
}

// columns returns the participating columns in filter order: x, then y,
// then category. Repeats are dropped.
func (r Request) columns(controls selection.Controls) []string {
	cols := []string{r.X}
	if controls.YAxis && !slices.Contains(cols, r.Y) {
		cols = append(cols, r.Y)
	}
	if controls.Category && !slices.Contains(cols, r.Category) {
		cols = append(cols, r.Category)
	}
	return cols
}

// groupKeys returns the grouping columns for aggregated chart types
func (r Request) groupKeys() []string {
	if r.Chart == chart.ClusteredBar {
		return []string{r.X, r.Category}
	}
	return []string{r.X}
}

// ControlsView is the resolver output plus the default constraint of each
// participating column, as a front end needs it to draw the form
type ControlsView struct {
	selection.Controls
	Constraints map[string]filter.Constraint `json:"constraints"`
}
