package queryapi

import (
	"context"

	"github.com/pkg/errors"
	"github.com/sforcekit/sdk-go/core/types"
	"go.uber.org/zap"
)

// RecordIterator presents the records of a query as one sequence, fetching follow-up
// pages through queryMore when the current page runs out.
//
// Only the current page is held. Pages are fetched lazily: Next never fetches, Valid and
// Seek fetch only when the position lies past the current page. A RecordIterator is not
// safe for concurrent use.
//
// Usage:
//
//	for ; ; it.Next() {
//	    ok, err := it.Valid(ctx)
//	    if err != nil {
//	        return err
//	    }
//	    if !ok {
//	        break
//	    }
//	    record, _ := it.Current()
//	    ...
//	}
type RecordIterator struct {
	materializer *Materializer
	page         *types.QueryPage
	converter    Converter

	// offset is the number of records in the pages before page.
	offset int
	// position indexes page.Records. It may point past the page until the next Valid.
	position int

	current    types.TypedRecord
	hasCurrent bool
	exhausted  bool
}

type IteratorOption func(*RecordIterator)

// WithConverter sets the post-processing applied to every record the iterator reports.
func WithConverter(converter Converter) IteratorOption {
	return func(it *RecordIterator) {
		it.converter = converter
	}
}

// NewRecordIterator creates an iterator positioned before the first record of page.
func NewRecordIterator(materializer *Materializer, page *types.QueryPage, options ...IteratorOption) (*RecordIterator, error) {
	if materializer == nil {
		return nil, errors.New("materializer is required")
	}
	if err := page.Validate(); err != nil {
		return nil, err
	}
	it := &RecordIterator{
		materializer: materializer,
		page:         page,
	}
	for _, option := range options {
		option(it)
	}
	return it, nil
}

// Valid reports whether a record exists at the current position, materializing and
// caching it. When the position lies past the current page and more pages exist, the
// next page is fetched first.
//
// A fetch failure is returned as reported by the query port, and the iterator is left
// unchanged so the call can be retried. Exhaustion is reported as (false, nil).
func (it *RecordIterator) Valid(ctx context.Context) (bool, error) {
	if it.hasCurrent {
		return true, nil
	}

	for {
		if raw, ok := it.page.Record(it.position); ok {
			record, err := it.materializer.Materialize(ctx, "", raw, it.converter)
			if err != nil {
				return false, err
			}
			it.current = record
			it.hasCurrent = true
			return true, nil
		}

		if it.page.Done {
			if !it.exhausted {
				it.exhausted = true
				it.materializer.logger.Debug("query result exhausted",
					zap.Int("key", it.Key()),
					zap.Int("totalSize", it.page.TotalSize))
			}
			return false, nil
		}

		if err := it.queryMore(ctx); err != nil {
			return false, err
		}
	}
}

// queryMore replaces the current page with the next one. The overshoot of position past
// the current page carries into the new page.
func (it *RecordIterator) queryMore(ctx context.Context) error {
	locator := it.page.QueryLocator
	it.materializer.logger.Debug("fetching next query page",
		zap.String("queryLocator", locator),
		zap.Int("offset", it.offset+it.page.Len()))

	next, err := it.materializer.port.QueryMore(ctx, locator)
	if err != nil {
		return err
	}
	if err := next.Validate(); err != nil {
		return err
	}
	if !next.Done && next.Len() == 0 && next.QueryLocator == locator {
		return errors.Wrapf(ErrStalledLocator, "query locator %s", locator)
	}

	it.materializer.logger.Debug("fetched query page",
		zap.Int("records", next.Len()),
		zap.Int("totalSize", next.TotalSize),
		zap.Bool("done", next.Done))

	it.position -= it.page.Len()
	it.offset += it.page.Len()
	it.page = next
	return nil
}

// Current returns the record cached by the last successful Valid, Seek or First call.
// It returns ErrNoCurrent when there is none.
func (it *RecordIterator) Current() (types.TypedRecord, error) {
	if !it.hasCurrent {
		return nil, ErrNoCurrent
	}
	return it.current, nil
}

// Next moves to the following record. It neither fetches nor materializes.
func (it *RecordIterator) Next() {
	it.position++
	it.invalidate()
}

// Key returns the index of the current position counted from the first record of the
// query.
func (it *RecordIterator) Key() int {
	return it.offset + it.position
}

// Rewind moves back to the first record of the current page. Earlier pages are not
// fetched again.
func (it *RecordIterator) Rewind() {
	it.position = 0
	it.exhausted = false
	it.invalidate()
}

// Seek moves to the record with the given key and materializes it. Keys past the
// current page fetch as many pages as needed, landing on the same record as advancing
// with Next would. Keys before the current page fail with ErrSeekBehindPage. After a
// failed fetch the iterator stays on key, so Seek or Valid can be retried.
func (it *RecordIterator) Seek(ctx context.Context, key int) (types.TypedRecord, bool, error) {
	if key < it.offset {
		return nil, false, errors.Wrapf(ErrSeekBehindPage, "key %d, current page starts at %d", key, it.offset)
	}

	it.position = key - it.offset
	it.exhausted = false
	it.invalidate()

	ok, err := it.Valid(ctx)
	if err != nil || !ok {
		return nil, false, err
	}
	return it.current, true, nil
}

// First rewinds to the start of the current page and returns its first record.
func (it *RecordIterator) First(ctx context.Context) (types.TypedRecord, bool, error) {
	it.Rewind()
	ok, err := it.Valid(ctx)
	if err != nil || !ok {
		return nil, false, err
	}
	return it.current, true, nil
}

// Count returns the server-reported number of records across all pages.
func (it *RecordIterator) Count() int {
	return it.page.TotalSize
}

// QueryPage returns the page currently held by the iterator.
func (it *RecordIterator) QueryPage() *types.QueryPage {
	return it.page
}

// SetConverter replaces the post-processing applied to reported records.
func (it *RecordIterator) SetConverter(converter Converter) {
	it.converter = converter
	it.invalidate()
}

// ForEach calls fn for every record from the current position on, stopping at the first
// error.
func (it *RecordIterator) ForEach(ctx context.Context, fn func(key int, record types.TypedRecord) error) error {
	for ; ; it.Next() {
		ok, err := it.Valid(ctx)
		if err != nil {
			return err
		}
		if !ok {
			return nil
		}
		if err := fn(it.Key(), it.current); err != nil {
			return err
		}
	}
}

func (it *RecordIterator) invalidate() {
	it.current = nil
	it.hasCurrent = false
}
