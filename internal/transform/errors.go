package transform

import "fmt"

// ParseError describes a row that could not be converted. Line is the
// 1-based physical line in the file; the header is line 1.
type ParseError struct {
	Path  string
	Line  int
	Field string
	Value string
	Err   error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("%s:%d: field %q value %q: %v", e.Path, e.Line, e.Field, e.Value, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }
