package chart

import (
	"fmt"
	"math"
	"slices"

	"github.com/paveg/plotdeck/internal/dataframe"
	"github.com/paveg/plotdeck/internal/filter"
	"github.com/paveg/plotdeck/internal/series"
	"github.com/paveg/plotdeck/internal/validation"
)

// TopCategories keeps the rows whose column value is among the n most
// frequent values, ties broken by first appearance. Rows with a null value
// are dropped. The kept values are returned in first-seen order. When the
// column has at most n distinct values every non-null row survives.
func TopCategories(df *dataframe.Frame, column string, n int) (*dataframe.Frame, []string, error) {
	if err := validation.ValidateColumns(df, "histogram", column); err != nil {
		return nil, nil, err
	}
	col, _ := df.Column(column)

	counts := make(map[string]int)
	var order []string
	for i := range col.Len() {
		key, present := col.Key(i)
		if !present {
			continue
		}
		if _, seen := counts[key]; !seen {
			order = append(order, key)
		}
		counts[key]++
	}

	kept := order
	if n > 0 && len(order) > n {
		ranked := slices.Clone(order)
		slices.SortStableFunc(ranked, func(a, b string) int {
			return counts[b] - counts[a]
		})
		top := make(map[string]struct{}, n)
		for _, key := range ranked[:n] {
			top[key] = struct{}{}
		}
		kept = make([]string, 0, n)
		for _, key := range order {
			if _, hit := top[key]; hit {
				kept = append(kept, key)
			}
		}
	}

	out, err := keepKeys(df, column, kept)
	if err != nil {
		return nil, nil, err
	}
	if kept == nil {
		kept = []string{}
	}
	return out, kept, nil
}

// keepKeys filters df to the rows whose canonical key in column is in keys.
// Numeric category columns are matched on their keys as well.
func keepKeys(df *dataframe.Frame, column string, keys []string) (*dataframe.Frame, error) {
	if kind, _ := df.Kind(column); kind == series.Categorical {
		return filter.Apply(df, filter.On(column, filter.OneOf(keys...)))
	}

	col, _ := df.Column(column)
	keep := filter.OneOf(keys...).Predicate(col)
	indices := make([]int, 0, df.Len())
	for i := range df.Len() {
		if keep(i) {
			indices = append(indices, i)
		}
	}
	if len(indices) == df.Len() {
		return df.Select(df.Columns()...), nil
	}
	return df.Take(indices), nil
}

// binner maps rows to histogram bins
type binner struct {
	bins  []Bin
	index func(row int) (int, bool)
}

// newNumericBinner splits [min, max] of col into n equal-width bins.
// A constant column gets a single bin.
func newNumericBinner(col *series.Column, n int) binner {
	lo, hi, found := math.Inf(1), math.Inf(-1), false
	for i := range col.Len() {
		v, ok := col.Float(i)
		if !ok {
			continue
		}
		lo, hi, found = math.Min(lo, v), math.Max(hi, v), true
	}
	if !found {
		return binner{bins: []Bin{}, index: func(int) (int, bool) { return 0, false }}
	}

	if lo == hi {
		bin := Bin{Label: fmt.Sprintf("[%g, %g]", lo, hi), Lo: ptr(lo), Hi: ptr(hi)}
		return binner{
			bins: []Bin{bin},
			index: func(row int) (int, bool) {
				v, ok := col.Float(row)
				return 0, ok && v == lo
			},
		}
	}

	width := (hi - lo) / float64(n)
	edge := func(i int) float64 { return lo + float64(i)*width }
	offset := func(v float64) float64 { return (v - lo) / width }
	if math.IsInf(hi-lo, 0) {
		// the span overflows float64; interpolate the edges instead
		width = hi/float64(n) - lo/float64(n)
		edge = func(i int) float64 {
			t := float64(i) / float64(n)
			return lo*(1-t) + hi*t
		}
		offset = func(v float64) float64 { return v/width - lo/width }
	}

	bins := make([]Bin, n)
	for i := range bins {
		start, end := edge(i), edge(i+1)
		if i == n-1 {
			end = hi
			bins[i] = Bin{Label: fmt.Sprintf("[%g, %g]", start, end), Lo: ptr(start), Hi: ptr(end)}
			continue
		}
		bins[i] = Bin{Label: fmt.Sprintf("[%g, %g)", start, end), Lo: ptr(start), Hi: ptr(end)}
	}

	return binner{
		bins: bins,
		index: func(row int) (int, bool) {
			v, ok := col.Float(row)
			if !ok {
				return 0, false
			}
			idx := int(offset(v))
			return min(max(idx, 0), n-1), true
		},
	}
}

// newCategoricalBinner makes one bin per distinct value in first-seen order
func newCategoricalBinner(df *dataframe.Frame, col *series.Column) binner {
	values := df.Distinct(col.Name())
	positions := make(map[string]int, len(values))
	bins := make([]Bin, len(values))
	for i, v := range values {
		positions[v] = i
		bins[i] = Bin{Label: v}
	}

	return binner{
		bins: bins,
		index: func(row int) (int, bool) {
			key, ok := col.Key(row)
			if !ok {
				return 0, false
			}
			idx, hit := positions[key]
			return idx, hit
		},
	}
}

func ptr(v float64) *float64 {
	return &v
}
