package testutil

import (
	"strings"
	"testing"

	"github.com/apache/arrow-go/v18/arrow/memory"
	"github.com/paveg/plotdeck/internal/series"
	"github.com/stretchr/testify/assert"
)

func TestSalesFrame(t *testing.T) {
	mem := memory.NewGoAllocator()

	t.Run("defaults", func(t *testing.T) {
		df := SalesFrame(mem)
		defer df.Release()

		AssertFrameHasColumns(t, df, "City", "Region", "Sales", "Units")
		assert.Equal(t, []any{"C", "north", 40.0, int64(4)}, df.Records()[3])

		kind, _ := df.Kind("Sales")
		assert.Equal(t, series.Numeric, kind)
	})

	t.Run("options", func(t *testing.T) {
		df := SalesFrame(mem, WithRowCount(6), WithNulls(), WithOpenColumn())
		defer df.Release()

		assert.Equal(t, 6, df.Len())
		AssertFrameHasColumns(t, df, "City", "Region", "Sales", "Units", "Open")
		sales, _ := df.Column("Sales")
		assert.True(t, sales.IsNull(2))
		assert.True(t, sales.IsNull(5))
		assert.False(t, sales.IsNull(3))
	})
}

func TestSalesCSV(t *testing.T) {
	lines := strings.Split(strings.TrimSpace(SalesCSV()), "\n")
	assert.Len(t, lines, 5)
	assert.Equal(t, "A,south,30,3", lines[3])
}
