// Package filter narrows a Frame to the rows that satisfy per-column
// constraints. Numeric columns take closed ranges, categorical columns take
// explicit allowed-value sets.
package filter

import (
	"encoding/json"
	"fmt"
	"math"

	"github.com/paveg/plotdeck/internal/dataframe"
	"github.com/paveg/plotdeck/internal/errors"
	"github.com/paveg/plotdeck/internal/series"
	"github.com/paveg/plotdeck/internal/validation"
)

// DefaultCategoryLimit is the number of distinct values selected by default
// for a categorical column with many values
const DefaultCategoryLimit = 5

// Constraint is either a closed interval [Lo, Hi] or an allowed-value set
type Constraint struct {
	kind   series.Kind
	Lo     float64
	Hi     float64
	Values []string
}

// Range returns a closed numeric interval constraint
func Range(lo, hi float64) Constraint {
	return Constraint{kind: series.Numeric, Lo: lo, Hi: hi}
}

// OneOf returns a discrete-value constraint. Values are canonical keys as
// produced by series.Column.Key.
func OneOf(values ...string) Constraint {
	if values == nil {
		values = []string{}
	}
	return Constraint{kind: series.Categorical, Values: values}
}

// Kind returns the column kind this constraint applies to
func (c Constraint) Kind() series.Kind {
	return c.kind
}

// IsRange reports whether c is a numeric interval
func (c Constraint) IsRange() bool {
	return c.kind == series.Numeric
}

// String returns a compact representation, e.g. "[1, 5]" or "{A, B}"
func (c Constraint) String() string {
	if c.IsRange() {
		return fmt.Sprintf("[%g, %g]", c.Lo, c.Hi)
	}
	return fmt.Sprintf("%v", c.Values)
}

// Validate checks c against the kind of the column it will be applied to
func (c Constraint) Validate(column string, kind series.Kind) error {
	if c.kind != kind {
		return errors.NewSelectionError("filter", column,
			fmt.Sprintf("%s constraint cannot apply to a %s column", c.kind, kind))
	}
	if c.IsRange() {
		if math.IsNaN(c.Lo) || math.IsNaN(c.Hi) {
			return errors.NewSelectionError("filter", column, "range bounds must be numbers")
		}
		if c.Lo > c.Hi {
			return errors.NewSelectionError("filter", column,
				fmt.Sprintf("range lower bound %g exceeds upper bound %g", c.Lo, c.Hi))
		}
	}
	return nil
}

// Predicate returns the row test for col. Nulls never match.
func (c Constraint) Predicate(col *series.Column) func(int) bool {
	if c.IsRange() {
		lo, hi := c.Lo, c.Hi
		return func(i int) bool {
			v, ok := col.Float(i)
			return ok && v >= lo && v <= hi
		}
	}

	allowed := make(map[string]struct{}, len(c.Values))
	for _, v := range c.Values {
		allowed[v] = struct{}{}
	}
	return func(i int) bool {
		key, ok := col.Key(i)
		if !ok {
			return false
		}
		_, hit := allowed[key]
		return hit
	}
}

// Default returns the constraint a user sees before choosing one: the full
// observed range for numeric columns, and for categorical columns the first
// limit distinct values in first-seen order (all of them when there are no
// more than limit). A non-positive limit means DefaultCategoryLimit.
func Default(df *dataframe.Frame, column string, limit int) (Constraint, error) {
	if err := validation.ValidateColumns(df, "filter", column); err != nil {
		return Constraint{}, err
	}
	col, _ := df.Column(column)
	kind, _ := df.Kind(column)

	if kind == series.Numeric {
		lo, hi, found := observedRange(col)
		if !found {
			return Range(0, 0), nil
		}
		return Range(lo, hi), nil
	}

	if limit <= 0 {
		limit = DefaultCategoryLimit
	}
	values := df.Distinct(column)
	if len(values) > limit {
		values = values[:limit]
	}
	return OneOf(values...), nil
}

// observedRange returns min and max over the non-null, non-NaN values
func observedRange(col *series.Column) (lo, hi float64, found bool) {
	for i := range col.Len() {
		v, ok := col.Float(i)
		if !ok || math.IsNaN(v) {
			continue
		}
		if !found {
			lo, hi, found = v, v, true
			continue
		}
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}
	return lo, hi, found
}

type constraintJSON struct {
	Min    *float64 `json:"min,omitempty"`
	Max    *float64 `json:"max,omitempty"`
	Values []string `json:"values,omitempty"`
}

// MarshalJSON encodes a range as {"min","max"} and a set as {"values"}
func (c Constraint) MarshalJSON() ([]byte, error) {
	if c.IsRange() {
		lo, hi := c.Lo, c.Hi
		return json.Marshal(constraintJSON{Min: &lo, Max: &hi})
	}
	return json.Marshal(struct {
		Values []string `json:"values"`
	}{Values: c.Values})
}

// UnmarshalJSON accepts the forms written by MarshalJSON
func (c *Constraint) UnmarshalJSON(data []byte) error {
	var raw constraintJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	hasRange := raw.Min != nil || raw.Max != nil
	switch {
	case hasRange && raw.Values != nil:
		return fmt.Errorf("constraint has both a range and values")
	case hasRange:
		if raw.Min == nil || raw.Max == nil {
			return fmt.Errorf("range constraint needs both min and max")
		}
		*c = Range(*raw.Min, *raw.Max)
	default:
		*c = OneOf(raw.Values...)
	}
	return nil
}
