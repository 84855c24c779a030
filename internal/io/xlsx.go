package io

import (
	"io"
	"strconv"
	"strings"

	"github.com/apache/arrow-go/v18/arrow/memory"
	"github.com/paveg/plotdeck/internal/dataframe"
	"github.com/pkg/errors"
	"github.com/xuri/excelize/v2"
)

// XLSXReader reads the first sheet of an Office Open XML workbook
type XLSXReader struct {
	reader io.Reader
	mem    memory.Allocator
}

// NewXLSXReader creates a reader for .xlsx data
func NewXLSXReader(reader io.Reader, mem memory.Allocator) *XLSXReader {
	return &XLSXReader{reader: reader, mem: mem}
}

// Read decodes the first sheet. Cell values are read raw so numbers keep
// their stored precision instead of the display format. Date and time cells
// are the exception: they keep their displayed text and decode as
// categorical values rather than serial day numbers.
func (r *XLSXReader) Read() (*dataframe.Frame, error) {
	f, err := excelize.OpenReader(r.reader)
	if err != nil {
		return nil, errors.Wrap(err, "opening workbook")
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return dataframe.New(), nil
	}

	sheet := sheets[0]
	rows, err := f.GetRows(sheet, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, errors.Wrapf(err, "reading sheet %q", sheet)
	}
	if len(rows) == 0 {
		return dataframe.New(), nil
	}

	if err := formatDateCells(f, sheet, rows); err != nil {
		return nil, err
	}
	return buildFrame(rows[0], rows[1:], r.mem), nil
}

// formatDateCells replaces the raw serial of every date-styled numeric cell
// below the header with its formatted text
func formatDateCells(f *excelize.File, sheet string, rows [][]string) error {
	dateStyles := make(map[int]bool)
	for i := 1; i < len(rows); i++ {
		for j, value := range rows[i] {
			if _, err := strconv.ParseFloat(strings.TrimSpace(value), 64); err != nil {
				continue
			}
			cell, err := excelize.CoordinatesToCellName(j+1, i+1)
			if err != nil {
				return errors.WithStack(err)
			}
			styleID, err := f.GetCellStyle(sheet, cell)
			if err != nil {
				return errors.Wrapf(err, "reading style of %s", cell)
			}
			isDate, seen := dateStyles[styleID]
			if !seen {
				style, err := f.GetStyle(styleID)
				isDate = err == nil && isDateFormat(style)
				dateStyles[styleID] = isDate
			}
			if !isDate {
				continue
			}
			formatted, err := f.GetCellValue(sheet, cell)
			if err != nil {
				return errors.Wrapf(err, "formatting %s", cell)
			}
			rows[i][j] = formatted
		}
	}
	return nil
}

// builtinDateFormats are the built-in number format ranges that render dates
// and times, including the East Asian locale ones
var builtinDateFormats = [][2]int{{14, 22}, {27, 36}, {45, 47}, {50, 58}}

// isDateFormat reports whether style renders its number as a date or time
func isDateFormat(style *excelize.Style) bool {
	if style.CustomNumFmt != nil {
		return hasDateTokens(*style.CustomNumFmt)
	}
	for _, r := range builtinDateFormats {
		if style.NumFmt >= r[0] && style.NumFmt <= r[1] {
			return true
		}
	}
	return false
}

// hasDateTokens scans a custom number format for date or time codes,
// ignoring quoted literals, escaped characters and bracketed sections
// other than elapsed-time codes such as [h]
func hasDateTokens(format string) bool {
	var b strings.Builder
	quoted, bracket := false, false
	for i := 0; i < len(format); i++ {
		c := format[i]
		switch {
		case quoted:
			quoted = c != '"'
		case bracket:
			if c == ']' {
				bracket = false
			} else if strings.IndexByte("hms", lower(c)) >= 0 {
				b.WriteByte(c)
			}
		case c == '"':
			quoted = true
		case c == '[':
			bracket = true
		case c == '\\':
			i++
		default:
			b.WriteByte(c)
		}
	}
	return strings.ContainsAny(strings.ToLower(b.String()), "ydhms")
}

func lower(c byte) byte {
	if c >= 'A' && c <= 'Z' {
		return c + 'a' - 'A'
	}
	return c
}
