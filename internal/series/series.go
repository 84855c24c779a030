// Package series provides Arrow-backed columns and their semantic classification
package series

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/memory"
)

// Element lists the Go types a Column can be built from
type Element interface {
	~string | ~int64 | ~float64 | ~bool
}

// Column represents a named data column with an Apache Arrow backend
type Column struct {
	name  string
	array arrow.Array
}

// New creates a new Column from a slice of values
func New[T Element](name string, values []T, mem memory.Allocator) *Column {
	return NewNullable(name, values, nil, mem)
}

// NewNullable creates a new Column from values and a validity slice.
// A nil validity slice marks every value as present.
func NewNullable[T Element](name string, values []T, valid []bool, mem memory.Allocator) *Column {
	if mem == nil {
		mem = memory.NewGoAllocator()
	}

	isValid := func(i int) bool {
		return valid == nil || (i < len(valid) && valid[i])
	}

	var arr arrow.Array

	switch v := any(values).(type) {
	case []string:
		builder := array.NewStringBuilder(mem)
		defer builder.Release()
		for i, val := range v {
			if isValid(i) {
				builder.Append(val)
			} else {
				builder.AppendNull()
			}
		}
		arr = builder.NewArray()
	case []int64:
		builder := array.NewInt64Builder(mem)
		defer builder.Release()
		for i, val := range v {
			if isValid(i) {
				builder.Append(val)
			} else {
				builder.AppendNull()
			}
		}
		arr = builder.NewArray()
	case []float64:
		builder := array.NewFloat64Builder(mem)
		defer builder.Release()
		for i, val := range v {
			if isValid(i) {
				builder.Append(val)
			} else {
				builder.AppendNull()
			}
		}
		arr = builder.NewArray()
	case []bool:
		builder := array.NewBooleanBuilder(mem)
		defer builder.Release()
		for i, val := range v {
			if isValid(i) {
				builder.Append(val)
			} else {
				builder.AppendNull()
			}
		}
		arr = builder.NewArray()
	default:
		panic(fmt.Sprintf("unsupported type: %T", values))
	}

	return &Column{
		name:  name,
		array: arr,
	}
}

// FromArray wraps an existing Arrow array. The column takes its own reference.
func FromArray(name string, arr arrow.Array) *Column {
	arr.Retain()
	return &Column{name: name, array: arr}
}

// Name returns the column name
func (c *Column) Name() string {
	return c.name
}

// Len returns the length of the column
func (c *Column) Len() int {
	if c.array == nil {
		return 0
	}
	return c.array.Len()
}

// DataType returns the Arrow data type
func (c *Column) DataType() arrow.DataType {
	return c.array.DataType()
}

// IsNull reports whether the value at index is missing. NaN and infinite
// floats count as missing.
func (c *Column) IsNull(index int) bool {
	if c.array.IsNull(index) {
		return true
	}
	if arr, ok := c.array.(*array.Float64); ok {
		v := arr.Value(index)
		return math.IsNaN(v) || math.IsInf(v, 0)
	}
	return false
}

// Float returns the value at index as float64 for numeric columns.
// The second result is false for nulls and non-numeric columns.
func (c *Column) Float(index int) (float64, bool) {
	if index < 0 || index >= c.Len() || c.IsNull(index) {
		return 0, false
	}

	switch arr := c.array.(type) {
	case *array.Float64:
		return arr.Value(index), true
	case *array.Int64:
		return float64(arr.Value(index)), true
	default:
		return 0, false
	}
}

// Key returns the canonical string form of the value at index, used for
// discrete-value filtering and grouping. The second result is false for nulls.
func (c *Column) Key(index int) (string, bool) {
	if index < 0 || index >= c.Len() || c.IsNull(index) {
		return "", false
	}

	switch arr := c.array.(type) {
	case *array.String:
		return arr.Value(index), true
	case *array.Int64:
		return strconv.FormatInt(arr.Value(index), 10), true
	case *array.Float64:
		return strconv.FormatFloat(arr.Value(index), 'g', -1, 64), true
	case *array.Boolean:
		return strconv.FormatBool(arr.Value(index)), true
	default:
		return "", false
	}
}

// Value returns the value at index as a plain Go value, or nil for nulls
func (c *Column) Value(index int) any {
	if index < 0 || index >= c.Len() || c.IsNull(index) {
		return nil
	}

	switch arr := c.array.(type) {
	case *array.String:
		return arr.Value(index)
	case *array.Int64:
		return arr.Value(index)
	case *array.Float64:
		return arr.Value(index)
	case *array.Boolean:
		return arr.Value(index)
	default:
		return nil
	}
}

// Compare orders the values at i and j ascending: numbers numerically,
// strings lexicographically, false before true. Nulls sort last.
func (c *Column) Compare(i, j int) int {
	iNull, jNull := c.IsNull(i), c.IsNull(j)
	switch {
	case iNull && jNull:
		return 0
	case iNull:
		return 1
	case jNull:
		return -1
	}

	switch arr := c.array.(type) {
	case *array.String:
		return strings.Compare(arr.Value(i), arr.Value(j))
	case *array.Int64:
		return compareOrdered(arr.Value(i), arr.Value(j))
	case *array.Float64:
		return compareOrdered(arr.Value(i), arr.Value(j))
	case *array.Boolean:
		a, b := arr.Value(i), arr.Value(j)
		switch {
		case a == b:
			return 0
		case !a:
			return -1
		default:
			return 1
		}
	default:
		return 0
	}
}

// Take returns a new column holding the rows at indices, in that order
func (c *Column) Take(indices []int, mem memory.Allocator) *Column {
	if mem == nil {
		mem = memory.NewGoAllocator()
	}

	var arr arrow.Array

	switch typed := c.array.(type) {
	case *array.String:
		builder := array.NewStringBuilder(mem)
		defer builder.Release()
		for _, idx := range indices {
			if typed.IsNull(idx) {
				builder.AppendNull()
			} else {
				builder.Append(typed.Value(idx))
			}
		}
		arr = builder.NewArray()
	case *array.Int64:
		builder := array.NewInt64Builder(mem)
		defer builder.Release()
		for _, idx := range indices {
			if typed.IsNull(idx) {
				builder.AppendNull()
			} else {
				builder.Append(typed.Value(idx))
			}
		}
		arr = builder.NewArray()
	case *array.Float64:
		builder := array.NewFloat64Builder(mem)
		defer builder.Release()
		for _, idx := range indices {
			if typed.IsNull(idx) {
				builder.AppendNull()
			} else {
				builder.Append(typed.Value(idx))
			}
		}
		arr = builder.NewArray()
	case *array.Boolean:
		builder := array.NewBooleanBuilder(mem)
		defer builder.Release()
		for _, idx := range indices {
			if typed.IsNull(idx) {
				builder.AppendNull()
			} else {
				builder.Append(typed.Value(idx))
			}
		}
		arr = builder.NewArray()
	default:
		panic(fmt.Sprintf("unsupported array type: %T", typed))
	}

	return &Column{name: c.name, array: arr}
}

// String returns a string representation of the column
func (c *Column) String() string {
	return fmt.Sprintf("Column[%s]: %s (len=%d)", c.array.DataType().Name(), c.name, c.Len())
}

// Array returns the underlying Arrow array (retains a reference)
func (c *Column) Array() arrow.Array {
	if c.array != nil {
		c.array.Retain()
		return c.array
	}
	return nil
}

// Release releases the underlying Arrow memory
func (c *Column) Release() {
	if c.array != nil {
		c.array.Release()
	}
}
