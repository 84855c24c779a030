package aggregate

import (
	"fmt"
	"math"
	"slices"
	"strings"

	"github.com/apache/arrow-go/v18/arrow/memory"
	xxhash "github.com/cespare/xxhash/v2"
	"github.com/paveg/plotdeck/internal/dataframe"
	"github.com/paveg/plotdeck/internal/errors"
	"github.com/paveg/plotdeck/internal/series"
	"github.com/paveg/plotdeck/internal/validation"
)

const keySeparator = "\x1f"

// group accumulates one distinct key tuple
type group struct {
	keys  []string
	first int // first row holding this key tuple
	sum   float64
	count int
}

// groupIndex buckets rows by key tuple. Buckets are addressed by the xxhash
// of the joined keys and resolved by exact tuple comparison.
type groupIndex struct {
	buckets map[uint64][]*group
	groups  []*group
}

func newGroupIndex(estimatedSize int) *groupIndex {
	return &groupIndex{
		buckets: make(map[uint64][]*group, estimatedSize),
	}
}

func (gi *groupIndex) lookup(keys []string, row int) *group {
	hash := xxhash.Sum64String(strings.Join(keys, keySeparator))
	for _, g := range gi.buckets[hash] {
		if slices.Equal(g.keys, keys) {
			return g
		}
	}

	g := &group{keys: slices.Clone(keys), first: row}
	gi.buckets[hash] = append(gi.buckets[hash], g)
	gi.groups = append(gi.groups, g)
	return g
}

// Aggregate groups df by keys and reduces the value column with method.
//
// None returns df itself (the caller keeps ownership). Average and Total
// return a new Frame with one row per distinct key tuple: the key columns
// keep their original values and types, the value column holds the float64
// mean or sum, and every other column is dropped. Rows are ordered
// ascending by key tuple. Rows with a null key are dropped; null values are
// skipped, so a group with no values has a null mean and a zero total. A sum
// that overflows float64 fails with InvalidSelection.
func Aggregate(df *dataframe.Frame, keys []string, value string, method Method) (*dataframe.Frame, error) {
	if method == None {
		return df, nil
	}
	if method != Average && method != Total {
		return nil, errors.NewSelectionError("aggregate", value, fmt.Sprintf("unsupported method %s", method))
	}
	if len(keys) == 0 {
		return nil, errors.NewSelectionError("aggregate", value, "at least one grouping column is required")
	}

	if err := validation.ValidateColumns(df, "aggregate", append(slices.Clone(keys), value)...); err != nil {
		return nil, err
	}

	keyCols := make([]*series.Column, len(keys))
	for i, name := range keys {
		keyCols[i], _ = df.Column(name)
	}

	valueCol, _ := df.Column(value)
	if kind, _ := df.Kind(value); kind != series.Numeric {
		return nil, errors.NewSelectionError("aggregate", value, "must be numeric to aggregate")
	}

	index := newGroupIndex(df.Len())
	tuple := make([]string, len(keys))
	for row := range df.Len() {
		valid := true
		for i, col := range keyCols {
			key, present := col.Key(row)
			if !present {
				valid = false
				break
			}
			tuple[i] = key
		}
		if !valid {
			continue
		}

		g := index.lookup(tuple, row)
		if v, present := valueCol.Float(row); present {
			g.sum += v
			g.count++
		}
	}

	groups := index.groups
	for _, g := range groups {
		if math.IsInf(g.sum, 0) || math.IsNaN(g.sum) {
			return nil, errors.NewSelectionError("aggregate", value, "total is not a finite number")
		}
	}
	slices.SortStableFunc(groups, func(a, b *group) int {
		for _, col := range keyCols {
			if c := col.Compare(a.first, b.first); c != 0 {
				return c
			}
		}
		return 0
	})

	return buildResult(df, keys, keyCols, value, method, groups), nil
}

func buildResult(df *dataframe.Frame, keys []string, keyCols []*series.Column, value string, method Method, groups []*group) *dataframe.Frame {
	mem := memory.NewGoAllocator()

	firsts := make([]int, len(groups))
	values := make([]float64, len(groups))
	valid := make([]bool, len(groups))
	for i, g := range groups {
		firsts[i] = g.first
		switch {
		case method == Total:
			values[i], valid[i] = g.sum, true
		case g.count > 0:
			values[i], valid[i] = g.sum/float64(g.count), true
		}
	}

	cols := make([]*series.Column, 0, len(keys)+1)
	var labels []string
	for i, col := range keyCols {
		cols = append(cols, col.Take(firsts, mem))
		if kind, _ := df.Kind(keys[i]); kind == series.Categorical {
			labels = append(labels, keys[i])
		}
	}
	// a value column that is also a key keeps the key's values
	if !slices.Contains(keys, value) {
		cols = append(cols, series.NewNullable(value, values, valid, mem))
	}

	out := dataframe.New(cols...)
	if len(labels) == 0 {
		return out
	}
	labeled := out.WithCategorical(labels...)
	out.Release()
	return labeled
}
