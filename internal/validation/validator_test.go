package validation_test

import (
	"testing"

	"github.com/paveg/plotdeck/internal/chart"
	"github.com/paveg/plotdeck/internal/dataframe"
	plerrors "github.com/paveg/plotdeck/internal/errors"
	"github.com/paveg/plotdeck/internal/selection"
	"github.com/paveg/plotdeck/internal/series"
	"github.com/paveg/plotdeck/internal/validation"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// columnSet implements ColumnProvider for testing.
type columnSet []string

func (c columnSet) HasColumn(name string) bool {
	for _, col := range c {
		if col == name {
			return true
		}
	}
	return false
}

var schema = []dataframe.ColumnInfo{
	{Name: "City", Kind: series.Categorical},
	{Name: "Sales", Kind: series.Numeric},
	{Name: "Region", Kind: series.Categorical},
}

func TestColumnValidator(t *testing.T) {
	mockDF := columnSet{"id", "name"}

	t.Run("Valid columns", func(t *testing.T) {
		require.NoError(t, validation.NewColumnValidator(mockDF, "filter", "id", "name").Validate())
	})

	t.Run("Mixed valid and invalid columns", func(t *testing.T) {
		err := validation.ValidateColumns(mockDF, "filter", "id", "missing", "name")
		require.Error(t, err)

		var plErr *plerrors.Error
		require.ErrorAs(t, err, &plErr)
		assert.Equal(t, plerrors.InvalidSelection, plErr.Kind)
		assert.Equal(t, "filter", plErr.Op)
		assert.Equal(t, "missing", plErr.Column)
		assert.Equal(t, "column does not exist", plErr.Message)
	})
}

func TestRoleValidator(t *testing.T) {
	bar := selection.Resolve(schema, chart.Bar, "City", "Sales")

	tests := []struct {
		name    string
		role    validation.Role
		column  string
		wantErr bool
	}{
		{"x any column", validation.RoleX, "Region", false},
		{"x unknown", validation.RoleX, "Missing", true},
		{"y numeric", validation.RoleY, "Sales", false},
		{"y categorical", validation.RoleY, "Region", true},
		{"y empty", validation.RoleY, "", true},
		{"category unused by bar", validation.RoleCategory, "Region", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validation.NewRoleValidator(bar, tt.role, tt.column, "resolve").Validate()
			if !tt.wantErr {
				require.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.ErrorIs(t, err, plerrors.ErrInvalidSelection)
		})
	}
}

func TestValidateSelection(t *testing.T) {
	t.Run("bar y equal to x", func(t *testing.T) {
		controls := selection.Resolve(schema, chart.Bar, "Sales", "Sales")
		err := validation.ValidateSelection(controls, "resolve", "Sales", "Sales", "")
		require.Error(t, err)
		assert.Equal(t, "Sales: not eligible as y axis for Bar Chart", plerrors.Message(err))
	})

	t.Run("histogram ignores y", func(t *testing.T) {
		controls := selection.Resolve(schema, chart.Histogram, "City", "")
		require.NoError(t, validation.ValidateSelection(controls, "resolve", "City", "Region", ""))
	})

	t.Run("clustered bar needs category", func(t *testing.T) {
		controls := selection.Resolve(schema, chart.ClusteredBar, "City", "Sales")
		require.Error(t, validation.ValidateSelection(controls, "resolve", "City", "Sales", ""))
		require.Error(t, validation.ValidateSelection(controls, "resolve", "City", "Sales", "City"))
		require.NoError(t, validation.ValidateSelection(controls, "resolve", "City", "Sales", "Region"))
	})
}

func TestCompoundValidator(t *testing.T) {
	mockDF := columnSet{"a"}
	v := validation.NewCompoundValidator(
		validation.NewColumnValidator(mockDF, "op", "a"),
		validation.NewColumnValidator(mockDF, "op", "b"),
		validation.NewColumnValidator(mockDF, "op", "c"),
	)
	err := v.Validate()
	require.Error(t, err)

	var plErr *plerrors.Error
	require.ErrorAs(t, err, &plErr)
	assert.Equal(t, "b", plErr.Column)
}

func TestValidateColumnsOnFrame(t *testing.T) {
	df := dataframe.New(series.New("City", []string{"A"}, nil))
	defer df.Release()

	require.NoError(t, validation.ValidateColumns(df, "aggregate", "City"))
	err := validation.ValidateColumns(df, "aggregate", "City", "Sales")
	assert.Equal(t, "Sales: column does not exist", plerrors.Message(err))
}

func TestRoleString(t *testing.T) {
	assert.Equal(t, "y axis", validation.RoleY.String())
	assert.Equal(t, "role(9)", validation.Role(9).String())
}
