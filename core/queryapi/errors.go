package queryapi

import (
	"fmt"

	"github.com/pkg/errors"
)

var (
	// ErrNoCurrent is returned by Current when no positioning call (Valid, Seek, First)
	// succeeded since the iterator last moved.
	ErrNoCurrent = errors.New("no current record: call Valid, Seek or First first")

	// ErrStalledLocator is returned when queryMore answers with an unfinished, empty page
	// carrying the same query locator, so iteration would never progress.
	ErrStalledLocator = errors.New("query locator did not advance")

	// ErrSeekBehindPage is returned when seeking to a record of a page that was already
	// released. Only the current page is held in memory.
	ErrSeekBehindPage = errors.New("cannot seek before the current page")
)

// DecodeError reports a record that could not be materialized: a malformed extension
// fragment, an unparsable typed value, or a field whose type cannot be resolved.
type DecodeError struct {
	Entity string
	Field  string
	Err    error
}

func (e *DecodeError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("decode %s: %v", e.Entity, e.Err)
	}
	return fmt.Sprintf("decode %s.%s: %v", e.Entity, e.Field, e.Err)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

// Cause lets errors.Cause reach the underlying failure.
func (e *DecodeError) Cause() error {
	return e.Err
}

func newDecodeError(entity, field string, err error) error {
	return &DecodeError{Entity: entity, Field: field, Err: err}
}
