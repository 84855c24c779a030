package filter

import (
	"encoding/json"
	"fmt"
	"math"
	"testing"

	"github.com/apache/arrow-go/v18/arrow/memory"
	"github.com/paveg/plotdeck/internal/dataframe"
	"github.com/paveg/plotdeck/internal/errors"
	"github.com/paveg/plotdeck/internal/series"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newFrame(t *testing.T) *dataframe.Frame {
	t.Helper()
	mem := memory.NewGoAllocator()
	return dataframe.New(
		series.New("City", []string{"A", "B", "A", "C"}, mem),
		series.New("Sales", []int64{10, 20, 30, 40}, mem),
		series.New("Price", []float64{1.5, 2.5, 3.5, 4.5}, mem),
	)
}

func TestDefaultNumeric(t *testing.T) {
	df := newFrame(t)
	defer df.Release()

	c, err := Default(df, "Sales", 0)
	require.NoError(t, err)
	assert.True(t, c.IsRange())
	assert.Equal(t, 10.0, c.Lo)
	assert.Equal(t, 40.0, c.Hi)
}

func TestDefaultConstantColumn(t *testing.T) {
	mem := memory.NewGoAllocator()
	df := dataframe.New(series.New("Age", []int64{20, 20, 20}, mem))
	defer df.Release()

	c, err := Default(df, "Age", 0)
	require.NoError(t, err)
	assert.Equal(t, Range(20, 20), c)

	filtered, err := Apply(df, On("Age", c))
	require.NoError(t, err)
	defer filtered.Release()
	assert.Equal(t, 3, filtered.Len())
}

func TestDefaultCategorical(t *testing.T) {
	mem := memory.NewGoAllocator()

	t.Run("few values keeps all", func(t *testing.T) {
		df := dataframe.New(series.New("C", []string{"x", "y", "x", "z"}, mem))
		defer df.Release()

		c, err := Default(df, "C", 0)
		require.NoError(t, err)
		assert.Equal(t, OneOf("x", "y", "z"), c)
	})

	t.Run("many values keeps first five seen", func(t *testing.T) {
		df := dataframe.New(series.New("C", []string{"g", "f", "g", "e", "d", "c", "b", "a"}, mem))
		defer df.Release()

		c, err := Default(df, "C", 0)
		require.NoError(t, err)
		assert.Equal(t, []string{"g", "f", "e", "d", "c"}, c.Values)
	})

	t.Run("exactly five keeps all", func(t *testing.T) {
		df := dataframe.New(series.New("C", []string{"a", "b", "c", "d", "e"}, mem))
		defer df.Release()

		c, err := Default(df, "C", 0)
		require.NoError(t, err)
		assert.Len(t, c.Values, 5)
	})

	t.Run("numeric labels", func(t *testing.T) {
		base := dataframe.New(series.New("Zip", []int64{3, 1, 3, 2}, mem))
		defer base.Release()
		df := base.WithCategorical("Zip")
		defer df.Release()

		c, err := Default(df, "Zip", 0)
		require.NoError(t, err)
		assert.Equal(t, OneOf("3", "1", "2"), c)
	})
}

func TestDefaultUnknownColumn(t *testing.T) {
	df := newFrame(t)
	defer df.Release()

	_, err := Default(df, "Missing", 0)
	assert.ErrorIs(t, err, errors.ErrInvalidSelection)
}

func TestApplyRange(t *testing.T) {
	df := newFrame(t)
	defer df.Release()

	filtered, err := Apply(df, On("Sales", Range(15, 30)))
	require.NoError(t, err)
	defer filtered.Release()

	assert.Equal(t, [][]any{
		{"B", int64(20), 2.5},
		{"A", int64(30), 3.5},
	}, filtered.Records())
}

func TestApplyOneOf(t *testing.T) {
	df := newFrame(t)
	defer df.Release()

	filtered, err := Apply(df, On("City", OneOf("A", "C")))
	require.NoError(t, err)
	defer filtered.Release()

	assert.Equal(t, 3, filtered.Len())
	assert.Equal(t, []string{"A", "C"}, filtered.Distinct("City"))
}

func TestApplyAndsClauses(t *testing.T) {
	df := newFrame(t)
	defer df.Release()

	filtered, err := Apply(df,
		On("City", OneOf("A")),
		On("Sales", Range(0, 20)),
	)
	require.NoError(t, err)
	defer filtered.Release()

	assert.Equal(t, [][]any{{"A", int64(10), 1.5}}, filtered.Records())
}

func TestApplyFullRangeIsNoOp(t *testing.T) {
	df := newFrame(t)
	defer df.Release()

	clauses := make([]Clause, 0, df.Width())
	for _, name := range df.Columns() {
		c, err := Default(df, name, 0)
		require.NoError(t, err)
		clauses = append(clauses, On(name, c))
	}

	filtered, err := Apply(df, clauses...)
	require.NoError(t, err)
	defer filtered.Release()

	assert.Equal(t, df.Records(), filtered.Records())
	assert.Equal(t, df.Schema(), filtered.Schema())
}

func TestApplyNullsNeverMatch(t *testing.T) {
	mem := memory.NewGoAllocator()
	df := dataframe.New(
		series.NewNullable("V", []float64{1, 0, 3, math.NaN()}, []bool{true, false, true, true}, mem),
		series.NewNullable("L", []string{"a", "", "a", "a"}, []bool{true, false, true, true}, mem),
	)
	defer df.Release()

	byRange, err := Apply(df, On("V", Range(-100, 100)))
	require.NoError(t, err)
	defer byRange.Release()
	assert.Equal(t, 2, byRange.Len())

	bySet, err := Apply(df, On("L", OneOf("a", "")))
	require.NoError(t, err)
	defer bySet.Release()
	assert.Equal(t, 3, bySet.Len())
}

func TestApplyErrors(t *testing.T) {
	df := newFrame(t)
	defer df.Release()

	tests := []struct {
		name   string
		clause Clause
	}{
		{"range on categorical", On("City", Range(0, 1))},
		{"set on numeric", On("Sales", OneOf("10"))},
		{"inverted range", On("Sales", Range(30, 10))},
		{"NaN bound", On("Sales", Range(math.NaN(), 10))},
		{"unknown column", On("Missing", OneOf("x"))},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Apply(df, tt.clause)
			require.Error(t, err)
			assert.Equal(t, errors.InvalidSelection, errors.KindOf(err))
		})
	}
}

func TestDefaults(t *testing.T) {
	df := newFrame(t)
	defer df.Release()

	existing := map[string]Constraint{"Sales": Range(0, 15)}
	got, err := Defaults(df, []string{"City", "Sales"}, existing, 0)
	require.NoError(t, err)

	assert.Equal(t, OneOf("A", "B", "C"), got["City"])
	assert.Equal(t, Range(0, 15), got["Sales"])
}

func TestConstraintJSON(t *testing.T) {
	tests := []struct {
		input    string
		expected Constraint
	}{
		{`{"min": 1, "max": 2.5}`, Range(1, 2.5)},
		{`{"min": 0, "max": 0}`, Range(0, 0)},
		{`{"values": ["A", "B"]}`, OneOf("A", "B")},
		{`{"values": []}`, OneOf()},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			var c Constraint
			require.NoError(t, json.Unmarshal([]byte(tt.input), &c))
			assert.Equal(t, tt.expected, c)

			encoded, err := json.Marshal(c)
			require.NoError(t, err)
			assert.JSONEq(t, tt.input, string(encoded))
		})
	}

	for _, bad := range []string{`{"min": 1}`, `{"min": 1, "max": 2, "values": ["a"]}`, `[1]`} {
		var c Constraint
		assert.Error(t, json.Unmarshal([]byte(bad), &c), fmt.Sprintf("input %s", bad))
	}
}
