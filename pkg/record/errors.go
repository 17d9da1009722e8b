package record

import (
	"errors"
	"fmt"
)

// ErrUnsupportedFormat indicates a file whose suffix is neither .csv nor .json.
var ErrUnsupportedFormat = errors.New("unsupported file format: only .csv and .json are accepted")

// ParseError is a terminal failure to decode an upload.
// Line is the 1-based source line for CSV input (the header is line 1) and 0 for JSON.
type ParseError struct {
	Format Format
	Line   int
	Err    error
}

func (e *ParseError) Error() string {
	if e.Format == FormatJSON {
		return fmt.Sprintf("invalid JSON format: %v", e.Err)
	}
	if e.Line > 0 {
		return fmt.Sprintf("error parsing CSV line %d: %v", e.Line, e.Err)
	}
	return fmt.Sprintf("error parsing CSV: %v", e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// FieldError describes a problem with a single named field.
type FieldError struct {
	Field string
	Msg   string
}

func (e *FieldError) Error() string {
	return e.Msg
}

func missing(field string) error {
	return &FieldError{Field: field, Msg: field + " is required"}
}
