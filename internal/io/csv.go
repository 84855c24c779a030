package io

import (
	"encoding/csv"
	"fmt"

	"github.com/paveg/plotdeck/internal/dataframe"
	"github.com/pkg/errors"
)

// Read reads CSV data and returns a Frame. Rows may be ragged; short rows
// are padded with nulls.
func (r *CSVReader) Read() (*dataframe.Frame, error) {
	csvReader := csv.NewReader(r.reader)
	if r.options.Delimiter != 0 {
		csvReader.Comma = r.options.Delimiter
	}
	csvReader.Comment = r.options.Comment
	csvReader.TrimLeadingSpace = r.options.SkipInitialSpace
	csvReader.FieldsPerRecord = -1

	records, err := csvReader.ReadAll()
	if err != nil {
		return nil, errors.Wrap(err, "reading CSV")
	}

	if len(records) == 0 {
		return dataframe.New(), nil
	}

	var headers []string
	var dataRows [][]string

	if r.options.Header {
		headers = records[0]
		dataRows = records[1:]
	} else {
		numCols := 0
		for _, row := range records {
			numCols = max(numCols, len(row))
		}
		headers = make([]string, numCols)
		for i := range numCols {
			headers[i] = fmt.Sprintf("column_%d", i)
		}
		dataRows = records
	}

	return buildFrame(headers, dataRows, r.mem), nil
}

// Write writes the Frame to CSV format. Nulls are written as empty cells.
func (w *CSVWriter) Write(df *dataframe.Frame) error {
	csvWriter := csv.NewWriter(w.writer)
	if w.options.Delimiter != 0 {
		csvWriter.Comma = w.options.Delimiter
	}

	names := df.Columns()
	if w.options.Header {
		if err := csvWriter.Write(names); err != nil {
			return errors.Wrap(err, "writing headers")
		}
	}

	row := make([]string, len(names))
	for i := 0; i < df.Len(); i++ {
		for j, name := range names {
			column, _ := df.Column(name)
			row[j], _ = column.Key(i)
		}
		if err := csvWriter.Write(row); err != nil {
			return errors.Wrapf(err, "writing row %d", i)
		}
	}

	csvWriter.Flush()
	return errors.Wrap(csvWriter.Error(), "flushing CSV")
}
