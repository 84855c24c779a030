// Package selection decides which controls apply to a chart type and which
// columns are eligible for each role.
package selection

import (
	"slices"

	"github.com/paveg/plotdeck/internal/chart"
	"github.com/paveg/plotdeck/internal/dataframe"
	"github.com/paveg/plotdeck/internal/series"
)

// Defaults is the selection a fresh form would show
type Defaults struct {
	X        string `json:"x"`
	Y        string `json:"y,omitempty"`
	Category string `json:"category,omitempty"`
}

// Controls lists the eligible columns per role and the enabled controls
// for one chart type and the current X/Y selection.
type Controls struct {
	Chart           chart.Type `json:"chart"`
	XOptions        []string   `json:"x_options"`
	YOptions        []string   `json:"y_options"`
	CategoryOptions []string   `json:"category_options"`
	YAxis           bool       `json:"y_axis"`
	Aggregation     bool       `json:"aggregation"`
	Category        bool       `json:"category"`
	Defaults        Defaults   `json:"defaults"`
}

// Resolve computes the controls for chart type t given the current x and y.
// An empty or stale x falls back to the first column, an empty or
// ineligible y to the first eligible Y column. Resolve never fails: a
// column that cannot fill a role is simply absent from that role's list.
func Resolve(schema []dataframe.ColumnInfo, t chart.Type, x, y string) Controls {
	c := Controls{
		Chart:           t,
		XOptions:        make([]string, 0, len(schema)),
		YOptions:        []string{},
		CategoryOptions: []string{},
		YAxis:           t.UsesYAxis(),
		Aggregation:     t.UsesAggregation(),
		Category:        t.UsesCategory(),
	}

	for _, col := range schema {
		c.XOptions = append(c.XOptions, col.Name)
	}
	if len(c.XOptions) == 0 {
		return c
	}

	if !slices.Contains(c.XOptions, x) {
		x = c.XOptions[0]
	}
	c.Defaults.X = x

	if c.YAxis {
		for _, col := range schema {
			if col.Kind != series.Numeric {
				continue
			}
			if t.ExcludesXFromY() && col.Name == x {
				continue
			}
			c.YOptions = append(c.YOptions, col.Name)
		}
		if !slices.Contains(c.YOptions, y) {
			y = ""
			if len(c.YOptions) > 0 {
				y = c.YOptions[0]
			}
		}
		c.Defaults.Y = y
	} else {
		y = ""
	}

	if c.Category {
		for _, col := range c.XOptions {
			if col == x {
				continue
			}
			if t == chart.ClusteredBar && col == y {
				continue
			}
			c.CategoryOptions = append(c.CategoryOptions, col)
		}
		if len(c.CategoryOptions) > 0 {
			c.Defaults.Category = c.CategoryOptions[0]
		}
	}

	return c
}

// ChartLabel returns the display name of the chart type
func (c Controls) ChartLabel() string {
	return c.Chart.Label()
}

// UsesYAxis reports whether the chart type takes a Y column
func (c Controls) UsesYAxis() bool {
	return c.YAxis
}

// UsesCategory reports whether the chart type takes a category column
func (c Controls) UsesCategory() bool {
	return c.Category
}

// AllowsX reports whether name is eligible as the X column
func (c Controls) AllowsX(name string) bool {
	return slices.Contains(c.XOptions, name)
}

// AllowsY reports whether name is eligible as the Y column
func (c Controls) AllowsY(name string) bool {
	return c.YAxis && slices.Contains(c.YOptions, name)
}

// AllowsCategory reports whether name is eligible as the category column
func (c Controls) AllowsCategory(name string) bool {
	return c.Category && slices.Contains(c.CategoryOptions, name)
}
