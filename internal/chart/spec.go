package chart

import (
	"github.com/paveg/plotdeck/internal/aggregate"
	"github.com/paveg/plotdeck/internal/dataframe"
)

// Mark is the geometric primitive a renderer draws for each datum
type Mark string

const (
	MarkBar   Mark = "bar"
	MarkPoint Mark = "point"
	MarkLine  Mark = "line"
)

// BarMode is how bars sharing one X position are laid out
type BarMode string

const (
	BarModeNone  BarMode = ""
	BarModeStack BarMode = "stack"
	BarModeGroup BarMode = "group"
)

// Table is a JSON-friendly copy of the plotted rows
type Table struct {
	Columns []string `json:"columns"`
	Rows    [][]any  `json:"rows"`
}

// NewTable copies the named columns of df, in the given order
func NewTable(df *dataframe.Frame, columns ...string) Table {
	view := df.Select(columns...)
	defer view.Release()

	return Table{
		Columns: view.Columns(),
		Rows:    view.Records(),
	}
}

// Segment is the share of one category within a histogram bin
type Segment struct {
	Category string `json:"category"`
	Count    int    `json:"count"`
	Color    string `json:"color"`
}

// Bin is one histogram bar. Numeric bins cover [Lo, Hi) except the last,
// which is closed. Categorical bins have Label only.
type Bin struct {
	Label    string    `json:"label"`
	Lo       *float64  `json:"lo,omitempty"`
	Hi       *float64  `json:"hi,omitempty"`
	Count    int       `json:"count"`
	Color    string    `json:"color,omitempty"`
	Segments []Segment `json:"segments,omitempty"`
}

// Spec is a complete, side-effect-free chart description
type Spec struct {
	Type        Type             `json:"type"`
	Mark        Mark             `json:"mark"`
	X           string           `json:"x"`
	Y           string           `json:"y,omitempty"`
	Color       string           `json:"color,omitempty"`
	Aggregation aggregate.Method `json:"aggregation"`
	Title       string           `json:"title"`
	XTitle      string           `json:"x_title"`
	YTitle      string           `json:"y_title"`
	BarMode     BarMode          `json:"bar_mode,omitempty"`
	BinCount    int              `json:"bin_count,omitempty"`
	Bins        []Bin            `json:"bins,omitempty"`
	Categories  []string         `json:"categories,omitempty"`
	Colors      []string         `json:"colors,omitempty"`
	ShowValues  bool             `json:"show_values,omitempty"`
	Data        Table            `json:"data"`
}
