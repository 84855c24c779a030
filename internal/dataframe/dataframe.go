// Package dataframe provides the in-memory dataset the chart engine works on
package dataframe

import (
	"fmt"
	"slices"
	"strings"

	"github.com/apache/arrow-go/v18/arrow/memory"
	"github.com/paveg/plotdeck/internal/series"
)

// ColumnInfo describes one column of a Frame
type ColumnInfo struct {
	Name string      `json:"name"`
	Kind series.Kind `json:"kind"`
}

// Frame represents a table of data with typed, classified columns.
// Kinds are inferred once at construction and travel with derived frames.
type Frame struct {
	columns map[string]*series.Column
	kinds   map[string]series.Kind
	order   []string // Maintains column order
}

// New creates a new Frame from columns, classifying each one
func New(columns ...*series.Column) *Frame {
	df := &Frame{
		columns: make(map[string]*series.Column, len(columns)),
		kinds:   make(map[string]series.Kind, len(columns)),
		order:   make([]string, 0, len(columns)),
	}

	for _, c := range columns {
		name := c.Name()
		if _, exists := df.columns[name]; !exists {
			df.order = append(df.order, name)
		}
		df.columns[name] = c
		df.kinds[name] = series.Classify(c)
	}

	return df
}

// WithCategorical returns a Frame sharing the same columns where the named
// columns are treated as Categorical regardless of their Arrow type.
// Unknown names are ignored.
func (df *Frame) WithCategorical(names ...string) *Frame {
	out := df.derive(df.order)
	for _, name := range names {
		if _, exists := out.columns[name]; exists {
			out.kinds[name] = series.Categorical
		}
	}
	return out
}

// Columns returns the names of all columns in order
func (df *Frame) Columns() []string {
	if len(df.order) == 0 {
		return []string{}
	}
	return append([]string(nil), df.order...)
}

// Schema returns every column with its semantic kind, in column order
func (df *Frame) Schema() []ColumnInfo {
	schema := make([]ColumnInfo, 0, len(df.order))
	for _, name := range df.order {
		schema = append(schema, ColumnInfo{Name: name, Kind: df.kinds[name]})
	}
	return schema
}

// Len returns the number of rows
func (df *Frame) Len() int {
	if len(df.order) == 0 {
		return 0
	}
	return df.columns[df.order[0]].Len()
}

// Width returns the number of columns
func (df *Frame) Width() int {
	return len(df.order)
}

// Column returns the column with the given name
func (df *Frame) Column(name string) (*series.Column, bool) {
	c, exists := df.columns[name]
	return c, exists
}

// Kind returns the semantic kind of the named column
func (df *Frame) Kind(name string) (series.Kind, bool) {
	k, exists := df.kinds[name]
	return k, exists
}

// HasColumn checks if a column exists
func (df *Frame) HasColumn(name string) bool {
	_, exists := df.columns[name]
	return exists
}

// Select returns a new Frame with only the specified columns.
// Columns are shared with the receiver, not copied.
func (df *Frame) Select(names ...string) *Frame {
	keep := make([]string, 0, len(names))
	for _, name := range names {
		if df.HasColumn(name) && !slices.Contains(keep, name) {
			keep = append(keep, name)
		}
	}
	return df.derive(keep)
}

// Take returns a new Frame holding the rows at indices, in that order
func (df *Frame) Take(indices []int) *Frame {
	mem := memory.NewGoAllocator()

	out := &Frame{
		columns: make(map[string]*series.Column, len(df.order)),
		kinds:   make(map[string]series.Kind, len(df.order)),
		order:   append([]string(nil), df.order...),
	}
	for _, name := range df.order {
		out.columns[name] = df.columns[name].Take(indices, mem)
		out.kinds[name] = df.kinds[name]
	}
	return out
}

// Distinct returns the distinct non-null keys of a column in first-seen order
func (df *Frame) Distinct(name string) []string {
	c, exists := df.columns[name]
	if !exists {
		return nil
	}

	seen := make(map[string]struct{})
	var values []string
	for i := range c.Len() {
		key, ok := c.Key(i)
		if !ok {
			continue
		}
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		values = append(values, key)
	}
	return values
}

// Records returns the rows as plain Go values, nulls as nil
func (df *Frame) Records() [][]any {
	rows := make([][]any, df.Len())
	for i := range rows {
		row := make([]any, len(df.order))
		for j, name := range df.order {
			row[j] = df.columns[name].Value(i)
		}
		rows[i] = row
	}
	return rows
}

// String returns a string representation of the Frame
func (df *Frame) String() string {
	if len(df.order) == 0 {
		return "Frame[empty]"
	}

	parts := []string{fmt.Sprintf("Frame[%dx%d]", df.Len(), df.Width())}
	for _, name := range df.order {
		parts = append(parts, fmt.Sprintf("  %s: %s (%s)", name, df.columns[name].DataType(), df.kinds[name]))
	}
	return strings.Join(parts, "\n")
}

// Release releases all underlying Arrow memory held by this Frame
func (df *Frame) Release() {
	for _, c := range df.columns {
		c.Release()
	}
}

// derive builds a Frame over the named columns, taking a reference on each
func (df *Frame) derive(names []string) *Frame {
	out := &Frame{
		columns: make(map[string]*series.Column, len(names)),
		kinds:   make(map[string]series.Kind, len(names)),
		order:   make([]string, 0, len(names)),
	}
	for _, name := range names {
		arr := df.columns[name].Array()
		out.columns[name] = series.FromArray(name, arr)
		arr.Release()
		out.kinds[name] = df.kinds[name]
		out.order = append(out.order, name)
	}
	return out
}
