package selection

import (
	"testing"

	"github.com/paveg/plotdeck/internal/chart"
	"github.com/paveg/plotdeck/internal/dataframe"
	"github.com/paveg/plotdeck/internal/series"
	"github.com/stretchr/testify/assert"
)

var schema = []dataframe.ColumnInfo{
	{Name: "City", Kind: series.Categorical},
	{Name: "Sales", Kind: series.Numeric},
	{Name: "Profit", Kind: series.Numeric},
	{Name: "Region", Kind: series.Categorical},
}

func TestResolveXOptions(t *testing.T) {
	for _, typ := range chart.Types() {
		t.Run(typ.String(), func(t *testing.T) {
			c := Resolve(schema, typ, "City", "Sales")
			assert.Equal(t, []string{"City", "Sales", "Profit", "Region"}, c.XOptions)
		})
	}
}

func TestResolveYEligibility(t *testing.T) {
	tests := []struct {
		name     string
		typ      chart.Type
		x        string
		expected []string
	}{
		{"bar excludes x", chart.Bar, "Sales", []string{"Profit"}},
		{"clustered bar excludes x", chart.ClusteredBar, "Profit", []string{"Sales"}},
		{"bar with categorical x", chart.Bar, "City", []string{"Sales", "Profit"}},
		{"scatter keeps x", chart.Scatter, "Sales", []string{"Sales", "Profit"}},
		{"line keeps x", chart.Line, "Sales", []string{"Sales", "Profit"}},
		{"histogram has none", chart.Histogram, "Sales", []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := Resolve(schema, tt.typ, tt.x, "")
			assert.Equal(t, tt.expected, c.YOptions)
			assert.NotContains(t, c.YOptions, "City")
			assert.NotContains(t, c.YOptions, "Region")
		})
	}
}

func TestResolveCategoryOptions(t *testing.T) {
	c := Resolve(schema, chart.ClusteredBar, "City", "Sales")
	assert.True(t, c.Category)
	assert.Equal(t, []string{"Profit", "Region"}, c.CategoryOptions)

	c = Resolve(schema, chart.StackedHistogram, "City", "Sales")
	assert.True(t, c.Category)
	assert.Equal(t, []string{"Sales", "Profit", "Region"}, c.CategoryOptions)

	c = Resolve(schema, chart.Bar, "City", "Sales")
	assert.False(t, c.Category)
	assert.Empty(t, c.CategoryOptions)
}

func TestResolveControlFlags(t *testing.T) {
	tests := []struct {
		typ         chart.Type
		yAxis       bool
		aggregation bool
		category    bool
	}{
		{chart.Bar, true, true, false},
		{chart.ClusteredBar, true, true, true},
		{chart.Scatter, true, true, false},
		{chart.Line, true, true, false},
		{chart.Histogram, false, false, false},
		{chart.StackedHistogram, false, false, true},
		{chart.SideBySideHistogram, false, false, true},
	}

	for _, tt := range tests {
		t.Run(tt.typ.String(), func(t *testing.T) {
			c := Resolve(schema, tt.typ, "", "")
			assert.Equal(t, tt.yAxis, c.YAxis)
			assert.Equal(t, tt.aggregation, c.Aggregation)
			assert.Equal(t, tt.category, c.Category)
		})
	}
}

func TestResolveStaleSelection(t *testing.T) {
	// y was Profit, then x changed to Profit
	c := Resolve(schema, chart.Bar, "Profit", "Profit")
	assert.False(t, c.AllowsY("Profit"))
	assert.Equal(t, "Sales", c.Defaults.Y)

	c = Resolve(schema, chart.Bar, "Gone", "")
	assert.Equal(t, "City", c.Defaults.X)
	assert.Equal(t, "Sales", c.Defaults.Y)
}

func TestResolveDefaults(t *testing.T) {
	c := Resolve(schema, chart.ClusteredBar, "", "")
	assert.Equal(t, Defaults{X: "City", Y: "Sales", Category: "Profit"}, c.Defaults)

	c = Resolve(schema, chart.Histogram, "Sales", "Profit")
	assert.Equal(t, Defaults{X: "Sales"}, c.Defaults)
}

func TestResolveEmptySchema(t *testing.T) {
	c := Resolve(nil, chart.Bar, "x", "y")
	assert.Empty(t, c.XOptions)
	assert.Empty(t, c.YOptions)
	assert.Equal(t, Defaults{}, c.Defaults)
}

func TestResolveNoNumericColumns(t *testing.T) {
	labels := []dataframe.ColumnInfo{
		{Name: "A", Kind: series.Categorical},
		{Name: "B", Kind: series.Categorical},
	}
	c := Resolve(labels, chart.Scatter, "A", "B")
	assert.Empty(t, c.YOptions)
	assert.Equal(t, "", c.Defaults.Y)
	assert.False(t, c.AllowsY("B"))
}
