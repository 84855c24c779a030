package filter

import (
	"github.com/paveg/plotdeck/internal/dataframe"
	"github.com/paveg/plotdeck/internal/validation"
)

// Clause binds a constraint to a column
type Clause struct {
	Column     string
	Constraint Constraint
}

// On builds a Clause for column
func On(column string, c Constraint) Clause {
	return Clause{Column: column, Constraint: c}
}

// Apply returns the rows of df that satisfy every clause, in original row
// order. Clauses are ANDed in the order given. The result is always a new
// Frame the caller must release; when every row survives it shares the
// receiver's columns.
func Apply(df *dataframe.Frame, clauses ...Clause) (*dataframe.Frame, error) {
	names := make([]string, len(clauses))
	for i, clause := range clauses {
		names[i] = clause.Column
	}
	if err := validation.ValidateColumns(df, "filter", names...); err != nil {
		return nil, err
	}

	predicates := make([]func(int) bool, 0, len(clauses))
	for _, clause := range clauses {
		col, _ := df.Column(clause.Column)
		kind, _ := df.Kind(clause.Column)
		if err := clause.Constraint.Validate(clause.Column, kind); err != nil {
			return nil, err
		}
		predicates = append(predicates, clause.Constraint.Predicate(col))
	}

	n := df.Len()
	indices := make([]int, 0, n)
	for i := range n {
		pass := true
		for _, keep := range predicates {
			if !keep(i) {
				pass = false
				break
			}
		}
		if pass {
			indices = append(indices, i)
		}
	}

	if len(indices) == n {
		return df.Select(df.Columns()...), nil
	}
	return df.Take(indices), nil
}

// Defaults returns the default constraint of every named column, skipping
// names already present in existing. Unknown columns are reported.
func Defaults(df *dataframe.Frame, columns []string, existing map[string]Constraint, limit int) (map[string]Constraint, error) {
	out := make(map[string]Constraint, len(columns))
	for name, c := range existing {
		out[name] = c
	}
	for _, name := range columns {
		if _, set := out[name]; set {
			continue
		}
		c, err := Default(df, name, limit)
		if err != nil {
			return nil, err
		}
		out[name] = c
	}
	return out, nil
}
