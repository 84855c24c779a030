package io

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/apache/arrow-go/v18/arrow/memory"
	"github.com/paveg/plotdeck/internal/dataframe"
	"github.com/paveg/plotdeck/internal/parallel"
	"github.com/paveg/plotdeck/internal/series"
)

const (
	// Boolean string constants
	trueStr  = "true"
	falseStr = "false"
)

type columnType int

const (
	stringType columnType = iota
	boolType
	intType
	floatType
)

// missingValues are the cell texts read as nulls
var missingValues = map[string]struct{}{
	"":     {},
	"NA":   {},
	"N/A":  {},
	"#N/A": {},
	"NaN":  {},
	"nan":  {},
	"null": {},
	"NULL": {},
	"None": {},
}

func isMissing(value string) bool {
	_, missing := missingValues[strings.TrimSpace(value)]
	return missing
}

// buildFrame turns a header row and string records into a typed Frame.
// Short rows are padded with nulls, long rows are truncated.
func buildFrame(header []string, records [][]string, mem memory.Allocator) *dataframe.Frame {
	if mem == nil {
		mem = memory.NewGoAllocator()
	}

	names := columnNames(header)
	columns := make([]*series.Column, len(names))
	_ = parallel.Each(context.Background(), 0, names, func(_ context.Context, i int, name string) error {
		cells := make([]string, len(records))
		for j, row := range records {
			if i < len(row) {
				cells[j] = row[i]
			}
		}
		columns[i] = columnFromStrings(name, cells, mem)
		return nil
	})

	return dataframe.New(columns...)
}

// columnNames fills blank headers and disambiguates repeats with a numeric
// suffix: "a", "a.1", "a.2"
func columnNames(header []string) []string {
	names := make([]string, len(header))
	used := make(map[string]struct{}, len(header))
	for i, raw := range header {
		name := strings.TrimSpace(raw)
		if name == "" {
			name = fmt.Sprintf("Unnamed: %d", i)
		}
		candidate := name
		for n := 1; ; n++ {
			if _, taken := used[candidate]; !taken {
				break
			}
			candidate = fmt.Sprintf("%s.%d", name, n)
		}
		used[candidate] = struct{}{}
		names[i] = candidate
	}
	return names
}

// columnFromStrings creates a column from string data, inferring the most
// specific type that every non-missing value parses as
func columnFromStrings(name string, data []string, mem memory.Allocator) *series.Column {
	valid := make([]bool, len(data))
	for i, value := range data {
		valid[i] = !isMissing(value)
	}

	switch inferDataType(data) {
	case boolType:
		values := make([]bool, len(data))
		for i, value := range data {
			values[i] = valid[i] && strings.EqualFold(strings.TrimSpace(value), trueStr)
		}
		return series.NewNullable(name, values, valid, mem)
	case intType:
		values := make([]int64, len(data))
		for i, value := range data {
			if valid[i] {
				values[i], _ = strconv.ParseInt(strings.TrimSpace(value), 10, 64)
			}
		}
		return series.NewNullable(name, values, valid, mem)
	case floatType:
		values := make([]float64, len(data))
		for i, value := range data {
			if valid[i] {
				values[i], _ = strconv.ParseFloat(strings.TrimSpace(value), 64)
				// inf, overflow and NaN spellings are kept as nulls
				valid[i] = !math.IsInf(values[i], 0) && !math.IsNaN(values[i])
			}
		}
		return series.NewNullable(name, values, valid, mem)
	default:
		return series.NewNullable(name, data, valid, mem)
	}
}

// inferDataType determines the most appropriate data type for the given string data
func inferDataType(data []string) columnType {
	canBeInt := true
	canBeFloat := true
	canBeBool := true
	hasValue := false

	for _, raw := range data {
		if isMissing(raw) {
			continue
		}
		hasValue = true
		value := strings.TrimSpace(raw)

		if canBeBool {
			lower := strings.ToLower(value)
			if lower != trueStr && lower != falseStr {
				canBeBool = false
			}
		}

		if canBeInt {
			if _, err := strconv.ParseInt(value, 10, 64); err != nil {
				canBeInt = false
			}
		}

		if canBeFloat {
			if _, err := strconv.ParseFloat(value, 64); err != nil && !errors.Is(err, strconv.ErrRange) {
				canBeFloat = false
			}
		}

		if !canBeBool && !canBeInt && !canBeFloat {
			break
		}
	}

	switch {
	case !hasValue:
		return stringType
	case canBeBool:
		return boolType
	case canBeInt:
		return intType
	case canBeFloat:
		return floatType
	default:
		return stringType
	}
}
