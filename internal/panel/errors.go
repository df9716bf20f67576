package panel

import (
	"errors"
	"fmt"
)

var (
	// ErrSchema is matched by every SchemaError.
	ErrSchema = errors.New("panel schema error")

	// ErrMalformedKey is matched by ParseErrors caused by the composite key.
	ErrMalformedKey = errors.New("malformed county-year key")

	// ErrUnsupportedFormat is returned for files that are neither CSV nor XLSX.
	ErrUnsupportedFormat = errors.New("unsupported panel file format")

	// ErrEmptyInput is returned when the input has no header row.
	ErrEmptyInput = errors.New("panel input is empty")
)

// SchemaError reports that a required column is missing. It halts the load.
type SchemaError struct {
	Column string
	Header []string
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("required column %q not found in header %v", e.Column, e.Header)
}

func (e *SchemaError) Is(target error) bool {
	return target == ErrSchema
}

// ParseError describes a single dropped row.
type ParseError struct {
	Line int
	Key  string
	Err  error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("line %d: key %q: %v", e.Line, e.Key, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// UnknownColumnError is returned when a column name does not match any
// known numeric column.
type UnknownColumnError struct {
	Name string
}

func (e *UnknownColumnError) Error() string {
	return fmt.Sprintf("unknown panel column %q", e.Name)
}
