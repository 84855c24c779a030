// Package chart builds declarative chart descriptions from filtered and
// aggregated frames. It never renders anything itself.
package chart

import (
	"fmt"
	"strings"
)

// Type is one of the supported chart types
type Type int

const (
	Bar Type = iota
	ClusteredBar
	Scatter
	Line
	Histogram
	StackedHistogram
	SideBySideHistogram
)

var typeNames = []struct {
	slug  string
	label string
}{
	Bar:                 {"bar", "Bar Chart"},
	ClusteredBar:        {"clustered_bar", "Clustered Bar Chart"},
	Scatter:             {"scatter", "Scatter Plot"},
	Line:                {"line", "Line Chart"},
	Histogram:           {"histogram", "Histogram"},
	StackedHistogram:    {"stacked_histogram", "Stacked Histogram"},
	SideBySideHistogram: {"side_by_side_histogram", "Side-by-side Histogram"},
}

// Types returns every chart type in menu order
func Types() []Type {
	return []Type{Bar, ClusteredBar, Scatter, Line, Histogram, StackedHistogram, SideBySideHistogram}
}

// String returns the snake_case identifier used on the wire
func (t Type) String() string {
	if t < 0 || int(t) >= len(typeNames) {
		return fmt.Sprintf("type(%d)", int(t))
	}
	return typeNames[t].slug
}

// Label returns the display name, e.g. "Clustered Bar Chart"
func (t Type) Label() string {
	if t < 0 || int(t) >= len(typeNames) {
		return t.String()
	}
	return typeNames[t].label
}

// ParseType accepts either the identifier or the display name, case-insensitively
func ParseType(s string) (Type, error) {
	needle := strings.TrimSpace(s)
	for _, t := range Types() {
		if strings.EqualFold(needle, typeNames[t].slug) || strings.EqualFold(needle, typeNames[t].label) {
			return t, nil
		}
	}
	return 0, fmt.Errorf("unknown chart type %q", s)
}

// MarshalText implements encoding.TextMarshaler
func (t Type) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler
func (t *Type) UnmarshalText(text []byte) error {
	parsed, err := ParseType(string(text))
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

// IsHistogram reports whether t belongs to the histogram family
func (t Type) IsHistogram() bool {
	return t == Histogram || t == StackedHistogram || t == SideBySideHistogram
}

// UsesYAxis reports whether t plots a value column on the Y axis
func (t Type) UsesYAxis() bool {
	return !t.IsHistogram()
}

// UsesAggregation reports whether the aggregation control applies to t
func (t Type) UsesAggregation() bool {
	return t == Bar || t == ClusteredBar || t == Scatter || t == Line
}

// UsesCategory reports whether t needs a category/color column
func (t Type) UsesCategory() bool {
	return t == ClusteredBar || t == StackedHistogram || t == SideBySideHistogram
}

// ExcludesXFromY reports whether the Y options must not contain the X column
func (t Type) ExcludesXFromY() bool {
	return t == Bar || t == ClusteredBar
}
