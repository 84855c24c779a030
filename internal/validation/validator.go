// Package validation checks chart requests against the columns a dataset
// offers for each role. Validators are composable and return the first
// InvalidSelection error they meet.
package validation

import (
	"fmt"

	"github.com/paveg/plotdeck/internal/errors"
)

// Validator interface for input validation
type Validator interface {
	Validate() error
}

// ColumnProvider is anything that can report whether it holds a column
type ColumnProvider interface {
	HasColumn(name string) bool
}

// Eligibility reports which columns may fill each role of one chart type
type Eligibility interface {
	ChartLabel() string
	UsesYAxis() bool
	UsesCategory() bool
	AllowsX(name string) bool
	AllowsY(name string) bool
	AllowsCategory(name string) bool
}

// ColumnValidator validates column existence
type ColumnValidator struct {
	df      ColumnProvider
	columns []string
	op      string
}

// NewColumnValidator creates a validator for column existence
func NewColumnValidator(df ColumnProvider, op string, columns ...string) *ColumnValidator {
	return &ColumnValidator{
		df:      df,
		columns: columns,
		op:      op,
	}
}

// Validate checks if all columns exist in the dataset
func (v *ColumnValidator) Validate() error {
	for _, column := range v.columns {
		if !v.df.HasColumn(column) {
			return errors.NewSelectionError(v.op, column, "column does not exist")
		}
	}
	return nil
}

// Role is the part a column plays in a chart
type Role int

const (
	RoleX Role = iota
	RoleY
	RoleCategory
)

// String returns the role as used in messages
func (r Role) String() string {
	switch r {
	case RoleX:
		return "x axis"
	case RoleY:
		return "y axis"
	case RoleCategory:
		return "category"
	default:
		return fmt.Sprintf("role(%d)", int(r))
	}
}

// RoleValidator validates that a column is eligible for a role
type RoleValidator struct {
	controls Eligibility
	role     Role
	column   string
	op       string
}

// NewRoleValidator creates a validator for one column in one role
func NewRoleValidator(controls Eligibility, role Role, column, op string) *RoleValidator {
	return &RoleValidator{
		controls: controls,
		role:     role,
		column:   column,
		op:       op,
	}
}

// Validate checks the column against the eligible list for its role
func (v *RoleValidator) Validate() error {
	if v.column == "" {
		return errors.NewSelectionError(v.op, "", fmt.Sprintf("%s column is required for %s", v.role, v.controls.ChartLabel()))
	}

	var allowed bool
	switch v.role {
	case RoleX:
		allowed = v.controls.AllowsX(v.column)
	case RoleY:
		allowed = v.controls.AllowsY(v.column)
	case RoleCategory:
		allowed = v.controls.AllowsCategory(v.column)
	}
	if !allowed {
		return errors.NewSelectionError(v.op, v.column,
			fmt.Sprintf("not eligible as %s for %s", v.role, v.controls.ChartLabel()))
	}
	return nil
}

// CompoundValidator combines multiple validators
type CompoundValidator struct {
	validators []Validator
}

// NewCompoundValidator creates a validator that checks multiple conditions
func NewCompoundValidator(validators ...Validator) *CompoundValidator {
	return &CompoundValidator{
		validators: validators,
	}
}

// Validate runs all validators and returns the first error encountered
func (v *CompoundValidator) Validate() error {
	for _, validator := range v.validators {
		if err := validator.Validate(); err != nil {
			return err
		}
	}
	return nil
}

// ValidateColumns fails with InvalidSelection on the first column df does
// not hold
func ValidateColumns(df ColumnProvider, op string, columns ...string) error {
	return NewColumnValidator(df, op, columns...).Validate()
}

// ValidateSelection checks x, y and category against controls. Y is only
// checked when the chart has a Y axis, category only when it uses one.
func ValidateSelection(controls Eligibility, op, x, y, category string) error {
	validators := []Validator{NewRoleValidator(controls, RoleX, x, op)}
	if controls.UsesYAxis() {
		validators = append(validators, NewRoleValidator(controls, RoleY, y, op))
	}
	if controls.UsesCategory() {
		validators = append(validators, NewRoleValidator(controls, RoleCategory, category, op))
	}
	return NewCompoundValidator(validators...).Validate()
}
