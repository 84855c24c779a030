package render

import (
	"bytes"
	"fmt"
	"testing"

	"github.com/apache/arrow-go/v18/arrow/memory"
	"github.com/paveg/plotdeck/internal/aggregate"
	"github.com/paveg/plotdeck/internal/chart"
	"github.com/paveg/plotdeck/internal/errors"
	"github.com/paveg/plotdeck/internal/pipeline"
	"github.com/paveg/plotdeck/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var pngMagic = []byte("\x89PNG\r\n\x1a\n")

func TestRendererPNG(t *testing.T) {
	df := testutil.SalesFrame(memory.NewGoAllocator(), testutil.WithRowCount(12))
	defer df.Release()

	requests := []pipeline.Request{
		{Chart: chart.Bar, X: "City", Y: "Sales", Aggregation: aggregate.Total},
		{Chart: chart.ClusteredBar, X: "City", Y: "Sales", Category: "Region", Aggregation: aggregate.Average},
		{Chart: chart.Scatter, X: "Units", Y: "Sales"},
		{Chart: chart.Scatter, X: "City", Y: "Sales"},
		{Chart: chart.Line, X: "Units", Y: "Sales"},
		{Chart: chart.Histogram, X: "Sales"},
		{Chart: chart.Histogram, X: "City"},
		{Chart: chart.StackedHistogram, X: "Units", Category: "Region"},
		{Chart: chart.SideBySideHistogram, X: "Units", Category: "City"},
	}

	r := New()
	for _, req := range requests {
		t.Run(fmt.Sprintf("%s/%s", req.Chart, req.X), func(t *testing.T) {
			spec, err := pipeline.Resolve(df, req)
			require.NoError(t, err)

			var buf bytes.Buffer
			require.NoError(t, r.PNG(spec, &buf))
			assert.True(t, bytes.HasPrefix(buf.Bytes(), pngMagic))
		})
	}
}

func TestRendererSingleValue(t *testing.T) {
	df := testutil.SalesFrame(memory.NewGoAllocator(), testutil.WithRowCount(1))
	defer df.Release()

	spec, err := pipeline.Resolve(df, pipeline.Request{Chart: chart.Line, X: "Units", Y: "Sales"})
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, New().PNG(spec, &buf))
	assert.True(t, bytes.HasPrefix(buf.Bytes(), pngMagic))
}

func TestRendererRejectsEmptySpec(t *testing.T) {
	var buf bytes.Buffer
	err := New().PNG(&chart.Spec{Type: chart.Scatter}, &buf)
	assert.Equal(t, errors.InvalidSelection, errors.KindOf(err))
	assert.Zero(t, buf.Len())
}

func TestPadded(t *testing.T) {
	r := padded([]float64{3, 3})
	assert.InDelta(t, 2.0, r.Min, 0)
	assert.InDelta(t, 4.0, r.Max, 0)

	r = padded([]float64{5, -1, 2})
	assert.InDelta(t, -1.0, r.Min, 0)
	assert.InDelta(t, 5.0, r.Max, 0)
}
