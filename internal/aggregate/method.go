// Package aggregate collapses filtered frames into one row per group
package aggregate

import (
	"fmt"
	"strings"
)

// Method is the aggregation applied to the value column of each group
type Method int

const (
	// None leaves the frame untouched
	None Method = iota
	// Average replaces the value column by the arithmetic mean of each group
	Average
	// Total replaces the value column by the sum of each group
	Total
)

// String returns the display name used in chart titles
func (m Method) String() string {
	switch m {
	case None:
		return "None"
	case Average:
		return "Average"
	case Total:
		return "Total"
	default:
		return fmt.Sprintf("method(%d)", int(m))
	}
}

// ParseMethod accepts the display names plus the mean/avg/sum aliases
func ParseMethod(s string) (Method, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "none":
		return None, nil
	case "average", "mean", "avg":
		return Average, nil
	case "total", "sum":
		return Total, nil
	default:
		return None, fmt.Errorf("unknown aggregation method %q", s)
	}
}

// MarshalText implements encoding.TextMarshaler
func (m Method) MarshalText() ([]byte, error) {
	return []byte(strings.ToLower(m.String())), nil
}

// UnmarshalText implements encoding.TextUnmarshaler
func (m *Method) UnmarshalText(text []byte) error {
	parsed, err := ParseMethod(string(text))
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}
