package io

import (
	"io"

	"github.com/apache/arrow-go/v18/arrow/memory"
	"github.com/extrame/xls"
	"github.com/paveg/plotdeck/internal/dataframe"
	"github.com/pkg/errors"
)

const xlsCharset = "utf-8"

// XLSReader reads the first sheet of a legacy BIFF workbook
type XLSReader struct {
	reader io.ReadSeeker
	mem    memory.Allocator
}

// NewXLSReader creates a reader for .xls data
func NewXLSReader(reader io.ReadSeeker, mem memory.Allocator) *XLSReader {
	return &XLSReader{reader: reader, mem: mem}
}

// Read decodes the first sheet. Missing rows come back as empty records.
func (r *XLSReader) Read() (df *dataframe.Frame, err error) {
	// the BIFF parser panics on some malformed records
	defer func() {
		if p := recover(); p != nil {
			df, err = nil, errors.Errorf("malformed workbook: %v", p)
		}
	}()

	wb, err := xls.OpenReader(r.reader, xlsCharset)
	if err != nil {
		return nil, errors.Wrap(err, "opening workbook")
	}
	if wb.NumSheets() == 0 {
		return dataframe.New(), nil
	}

	sheet := wb.GetSheet(0)
	if sheet == nil {
		return nil, errors.New("workbook has no readable sheet")
	}

	var records [][]string
	for i := 0; i <= int(sheet.MaxRow); i++ {
		row := sheet.Row(i)
		if row == nil {
			records = append(records, nil)
			continue
		}
		cells := make([]string, row.LastCol())
		for j := range cells {
			cells[j] = row.Col(j)
		}
		records = append(records, cells)
	}

	// trailing empty rows are padding, not data
	for len(records) > 0 && len(records[len(records)-1]) == 0 {
		records = records[:len(records)-1]
	}
	if len(records) == 0 {
		return dataframe.New(), nil
	}

	return buildFrame(records[0], records[1:], r.mem), nil
}
