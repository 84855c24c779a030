// Package errors provides the error kinds surfaced by the chart engine and its
// front ends. Every failure that reaches a boundary is an *Error carrying a
// Kind, the operation, an optional column and a human-readable message.
package errors

import (
	stderrors "errors"
	"fmt"
)

// Kind classifies an error for boundary handling
type Kind int

const (
	// Internal is any failure without a more specific kind
	Internal Kind = iota
	// InvalidFileType is an upload whose extension is not csv, xlsx or xls
	InvalidFileType
	// DecodeFailure is a failure raised by the tabular decoder
	DecodeFailure
	// InsufficientColumns is a dataset with fewer than two columns
	InsufficientColumns
	// InvalidSelection is a column chosen for a role it is not eligible for
	InvalidSelection
	// MissingFile is an upload request without a usable file
	MissingFile
	// FileTooLarge is an upload over the configured size cap
	FileTooLarge
	// SessionNotFound is a request for a session that was replaced or never existed
	SessionNotFound
)

var kindNames = map[Kind]string{
	Internal:            "internal",
	InvalidFileType:     "invalid_file_type",
	DecodeFailure:       "decode_failure",
	InsufficientColumns: "insufficient_columns",
	InvalidSelection:    "invalid_selection",
	MissingFile:         "missing_file",
	FileTooLarge:        "file_too_large",
	SessionNotFound:     "session_not_found",
}

// String returns the snake_case name of the kind
func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// Error represents a classified failure
type Error struct {
	Kind    Kind   // Error classification
	Op      string // Operation name (e.g., "upload", "filter", "aggregate")
	Column  string // Column name if applicable
	Message string // Human-readable error description
	Cause   error  // Underlying error cause
}

// Error implements the error interface
func (e *Error) Error() string {
	msg := e.Message
	if e.Cause != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Cause)
	}
	if e.Column != "" {
		return fmt.Sprintf("%s operation failed on column '%s': %s", e.Op, e.Column, msg)
	}
	return fmt.Sprintf("%s operation failed: %s", e.Op, msg)
}

// Unwrap returns the underlying cause for error wrapping support
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is reports whether target is an *Error of the same kind
func (e *Error) Is(target error) bool {
	if t, ok := target.(*Error); ok {
		return e.Kind == t.Kind
	}
	return false
}

// KindOf returns the Kind of the first *Error in err's chain, or Internal
func KindOf(err error) Kind {
	var e *Error
	if stderrors.As(err, &e) {
		return e.Kind
	}
	return Internal
}

// Message returns the human-readable text of err for display at a boundary
func Message(err error) string {
	var e *Error
	if !stderrors.As(err, &e) {
		return err.Error()
	}
	if e.Kind == DecodeFailure && e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	if e.Column != "" && e.Kind == InvalidSelection {
		return fmt.Sprintf("%s: %s", e.Column, e.Message)
	}
	return e.Message
}

// Sentinels usable with errors.Is
var (
	ErrInvalidFileType     = &Error{Kind: InvalidFileType, Op: "upload", Message: "Invalid file type"}
	ErrDecodeFailure       = &Error{Kind: DecodeFailure, Op: "decode", Message: "Error processing file"}
	ErrInsufficientColumns = &Error{Kind: InsufficientColumns, Op: "preview", Message: "Not enough columns for visualization"}
	ErrInvalidSelection    = &Error{Kind: InvalidSelection, Op: "resolve", Message: "invalid selection"}
	ErrMissingFile         = &Error{Kind: MissingFile, Op: "upload", Message: "No file part"}
	ErrFileTooLarge        = &Error{Kind: FileTooLarge, Op: "upload", Message: "File too large"}
	ErrSessionNotFound     = &Error{Kind: SessionNotFound, Op: "session", Message: "session not found"}
)

// NewInvalidFileTypeError creates an error for an unsupported upload extension
func NewInvalidFileTypeError(filename string) *Error {
	return &Error{
		Kind:    InvalidFileType,
		Op:      "upload",
		Message: "Invalid file type",
		Cause:   fmt.Errorf("unsupported extension in %q", filename),
	}
}

// NewDecodeError wraps a failure raised while decoding an uploaded file
func NewDecodeError(cause error) *Error {
	return &Error{
		Kind:    DecodeFailure,
		Op:      "decode",
		Message: "Error processing file",
		Cause:   cause,
	}
}

// NewInsufficientColumnsError creates an error for datasets too narrow to plot
func NewInsufficientColumnsError(width int) *Error {
	return &Error{
		Kind:    InsufficientColumns,
		Op:      "preview",
		Message: "Not enough columns for visualization",
		Cause:   fmt.Errorf("dataset has %d column(s)", width),
	}
}

// NewSelectionError creates an error for a column used in an ineligible role
func NewSelectionError(op, column, message string) *Error {
	return &Error{
		Kind:    InvalidSelection,
		Op:      op,
		Column:  column,
		Message: message,
	}
}

// NewMissingFileError creates an error for an upload without a usable file
func NewMissingFileError(message string) *Error {
	return &Error{
		Kind:    MissingFile,
		Op:      "upload",
		Message: message,
	}
}

// NewFileTooLargeError creates an error for an upload over the size cap
func NewFileTooLargeError(limit string) *Error {
	return &Error{
		Kind:    FileTooLarge,
		Op:      "upload",
		Message: fmt.Sprintf("File too large (limit %s)", limit),
	}
}

// NewSessionNotFoundError creates an error for an unknown or replaced session
func NewSessionNotFoundError(id string) *Error {
	return &Error{
		Kind:    SessionNotFound,
		Op:      "session",
		Message: fmt.Sprintf("session %q not found; upload the file again", id),
	}
}

// NewInternalError creates an error for unexpected internal failures
func NewInternalError(op string, cause error) *Error {
	return &Error{
		Kind:    Internal,
		Op:      op,
		Message: "internal error occurred",
		Cause:   cause,
	}
}
