// Package io decodes uploaded tabular files into Frames and writes Frames
// back out as CSV.
//
// Supported inputs are CSV with type inference, XLSX through excelize and
// legacy XLS workbooks. The first row is always the header and only the
// first sheet of a workbook is read.
//
// Memory management: Frames returned by the readers own Arrow buffers and
// must be released by the caller.
package io

import (
	"io"

	"github.com/apache/arrow-go/v18/arrow/memory"
	"github.com/paveg/plotdeck/internal/dataframe"
)

// DataReader defines the interface for reading a Frame from a source
type DataReader interface {
	// Read reads data from the source and returns a Frame
	Read() (*dataframe.Frame, error)
}

// DataWriter defines the interface for writing a Frame to a destination
type DataWriter interface {
	// Write writes the Frame to the destination
	Write(df *dataframe.Frame) error
}

// CSVOptions contains configuration options for CSV operations
type CSVOptions struct {
	// Delimiter is the field delimiter (default: comma)
	Delimiter rune
	// Comment is the comment character (default: 0 = disabled)
	Comment rune
	// Header indicates whether the first row contains headers
	Header bool
	// SkipInitialSpace indicates whether to skip initial whitespace
	SkipInitialSpace bool
}

// DefaultCSVOptions returns default CSV options
func DefaultCSVOptions() CSVOptions {
	return CSVOptions{
		Delimiter: ',',
		Header:    true,
	}
}

// CSVReader reads CSV data and converts it to a Frame
type CSVReader struct {
	reader  io.Reader
	options CSVOptions
	mem     memory.Allocator
}

// NewCSVReader creates a new CSV reader with the specified options
func NewCSVReader(reader io.Reader, options CSVOptions, mem memory.Allocator) *CSVReader {
	return &CSVReader{
		reader:  reader,
		options: options,
		mem:     mem,
	}
}

// CSVWriter writes Frames to CSV format
type CSVWriter struct {
	writer  io.Writer
	options CSVOptions
}

// NewCSVWriter creates a new CSV writer with the specified options
func NewCSVWriter(writer io.Writer, options CSVOptions) *CSVWriter {
	return &CSVWriter{
		writer:  writer,
		options: options,
	}
}

var (
	_ DataReader = (*CSVReader)(nil)
	_ DataReader = (*XLSXReader)(nil)
	_ DataReader = (*XLSReader)(nil)
	_ DataWriter = (*CSVWriter)(nil)
)
