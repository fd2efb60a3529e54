package dataset

import (
	"errors"
	"fmt"
)

var (
	ErrMissingFile  = errors.New("file not found")
	ErrBadHeader    = errors.New("unexpected column set")
	ErrDuplicateKey = errors.New("duplicate (country, year) key")
	ErrMalformedRow = errors.New("malformed row")
)

// LoadError reports why a source file could not be loaded. Line is the
// 1-based CSV line, or 0 when the failure is not tied to a row.
type LoadError struct {
	Path   string
	Line   int
	Reason string
	Err    error
}

func (e *LoadError) Error() string {
	msg := e.Path
	if e.Line > 0 {
		msg = fmt.Sprintf("%s:%d", e.Path, e.Line)
	}
	if e.Reason != "" {
		return fmt.Sprintf("loading %s: %v: %s", msg, e.Err, e.Reason)
	}
	return fmt.Sprintf("loading %s: %v", msg, e.Err)
}

func (e *LoadError) Unwrap() error {
	return e.Err
}

func loadErr(path string, line int, err error, format string, args ...any) *LoadError {
	return &LoadError{Path: path, Line: line, Err: err, Reason: fmt.Sprintf(format, args...)}
}
