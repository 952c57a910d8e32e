package types

import (
	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"
)

// QueryPage is one server response to a query or queryMore call.
//
// A QueryPage is treated as immutable once it has been handed to a RecordIterator: the
// iterator replaces its reference with the next page instead of modifying the current one.
type QueryPage struct {
	// Records in server order. Duplicates are allowed and order must be preserved.
	Records []RawRecord
	// TotalSize is the number of records across all pages of the query.
	TotalSize int `validate:"gte=0"`
	// QueryLocator fetches the next page. Empty once Done is true.
	QueryLocator string `validate:"required_if=Done false"`
	// Done is true when no further pages exist.
	Done bool
}

var pageValidator = validator.New()

// NewQueryPage builds a page, copying records so later changes by the caller are not
// observed by iterators holding the page.
func NewQueryPage(records []RawRecord, totalSize int, queryLocator string, done bool) *QueryPage {
	copied := make([]RawRecord, len(records))
	copy(copied, records)
	if done {
		queryLocator = ""
	}
	return &QueryPage{
		Records:      copied,
		TotalSize:    totalSize,
		QueryLocator: queryLocator,
		Done:         done,
	}
}

// Validate checks that a page that is not done carries a query locator.
func (p *QueryPage) Validate() error {
	if p == nil {
		return errors.New("query page is nil")
	}
	if err := pageValidator.Struct(p); err != nil {
		return errors.Wrap(err, "invalid query page")
	}
	return nil
}

// Record returns the raw record at index i of this page.
func (p *QueryPage) Record(i int) (RawRecord, bool) {
	if i < 0 || i >= len(p.Records) {
		return nil, false
	}
	return p.Records[i], true
}

// Len is the number of records carried by this page, not the query total.
func (p *QueryPage) Len() int {
	return len(p.Records)
}
