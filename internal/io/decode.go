package io

import (
	"io"
	"path/filepath"
	"slices"
	"strings"

	"github.com/apache/arrow-go/v18/arrow/memory"
	"github.com/paveg/plotdeck/internal/dataframe"
	plerrors "github.com/paveg/plotdeck/internal/errors"
)

// AllowedExtensions are the upload extensions Decode understands
var AllowedExtensions = []string{"csv", "xlsx", "xls"}

// Extension returns the lowercase extension of filename without the dot
func Extension(filename string) string {
	return strings.ToLower(strings.TrimPrefix(filepath.Ext(filename), "."))
}

// Allowed reports whether filename has a supported extension
func Allowed(filename string) bool {
	return slices.Contains(AllowedExtensions, Extension(filename))
}

// Decode reads r as the tabular format named by filename's extension.
// Unknown extensions fail with InvalidFileType, decoder failures with
// DecodeFailure wrapping the cause.
func Decode(filename string, r io.ReadSeeker, mem memory.Allocator) (*dataframe.Frame, error) {
	var reader DataReader
	switch Extension(filename) {
	case "csv":
		reader = NewCSVReader(r, DefaultCSVOptions(), mem)
	case "xlsx":
		reader = NewXLSXReader(r, mem)
	case "xls":
		reader = NewXLSReader(r, mem)
	default:
		return nil, plerrors.NewInvalidFileTypeError(filename)
	}

	df, err := reader.Read()
	if err != nil {
		return nil, plerrors.NewDecodeError(err)
	}
	return df, nil
}
