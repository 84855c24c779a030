// Package testutil holds the datasets and assertions shared by the chart
// engine tests.
package testutil

import (
	"fmt"
	"strings"
	"testing"

	"github.com/apache/arrow-go/v18/arrow/memory"
	"github.com/paveg/plotdeck/internal/dataframe"
	"github.com/paveg/plotdeck/internal/series"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const defaultRowCount = 4

// FrameOption configures SalesFrame
type FrameOption func(*frameConfig)

type frameConfig struct {
	rowCount     int
	includeNulls bool
	withOpen     bool
}

// WithRowCount sets the number of rows
func WithRowCount(count int) FrameOption {
	return func(cfg *frameConfig) {
		cfg.rowCount = count
	}
}

// WithNulls makes every third Sales value null
func WithNulls() FrameOption {
	return func(cfg *frameConfig) {
		cfg.includeNulls = true
	}
}

// WithOpenColumn adds a boolean "Open" column
func WithOpenColumn() FrameOption {
	return func(cfg *frameConfig) {
		cfg.withOpen = true
	}
}

// SalesFrame builds the standard City/Region/Sales/Units dataset.
//
// Default rows:
//
//	City  Region  Sales  Units
//	A     north   10     1
//	B     south   20     2
//	A     south   30     3
//	C     north   40     4
func SalesFrame(mem memory.Allocator, opts ...FrameOption) *dataframe.Frame {
	cfg := &frameConfig{rowCount: defaultRowCount}
	for _, opt := range opts {
		opt(cfg)
	}

	cities := cycle(cfg.rowCount, "A", "B", "A", "C")
	regions := cycle(cfg.rowCount, "north", "south", "south", "north")
	sales := make([]float64, cfg.rowCount)
	valid := make([]bool, cfg.rowCount)
	units := make([]int64, cfg.rowCount)
	for i := range cfg.rowCount {
		sales[i] = float64(10 * (i%4 + 1))
		valid[i] = !cfg.includeNulls || i%3 != 2
		units[i] = int64(i + 1)
	}

	columns := []*series.Column{
		series.New("City", cities, mem),
		series.New("Region", regions, mem),
		series.NewNullable("Sales", sales, valid, mem),
		series.New("Units", units, mem),
	}
	if cfg.withOpen {
		columns = append(columns, series.New("Open", cycle(cfg.rowCount, true, false), mem))
	}
	return dataframe.New(columns...)
}

// SalesCSV renders the default SalesFrame rows as CSV text
func SalesCSV() string {
	var b strings.Builder
	b.WriteString("City,Region,Sales,Units\n")
	cities := cycle(defaultRowCount, "A", "B", "A", "C")
	regions := cycle(defaultRowCount, "north", "south", "south", "north")
	for i := range defaultRowCount {
		fmt.Fprintf(&b, "%s,%s,%d,%d\n", cities[i], regions[i], 10*(i+1), i+1)
	}
	return b.String()
}

// AssertFrameEqual compares schema and row values
func AssertFrameEqual(t testing.TB, expected, actual *dataframe.Frame) {
	t.Helper()

	require.NotNil(t, expected, "expected Frame should not be nil")
	require.NotNil(t, actual, "actual Frame should not be nil")

	assert.Equal(t, expected.Schema(), actual.Schema(), "schemas should match")
	assert.Equal(t, expected.Records(), actual.Records(), "rows should match")
}

// AssertFrameHasColumns verifies the column names in order
func AssertFrameHasColumns(t testing.TB, df *dataframe.Frame, expected ...string) {
	t.Helper()

	require.NotNil(t, df, "Frame should not be nil")
	assert.Equal(t, expected, df.Columns())
}

func cycle[T any](count int, base ...T) []T {
	out := make([]T, count)
	for i := range count {
		out[i] = base[i%len(base)]
	}
	return out
}
