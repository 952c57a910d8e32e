package queryapi

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/golang-sql/civil"
	"github.com/sforcekit/sdk-go/core/types"
	"github.com/sforcekit/sdk-go/core/util"
)

// SortCurrentPage returns the records of the current page ordered by field, ascending.
//
// Only the page already in memory is sorted; no other page is fetched. Sort across the
// whole result in the query itself instead. The field name is capitalized before lookup,
// so "name" sorts by Name. Records whose field is absent or empty go last in their
// original order. The iterator's position and page are left untouched, and the iterator's
// converter is not applied.
func (it *RecordIterator) SortCurrentPage(ctx context.Context, field string) ([]types.TypedRecord, error) {
	field = util.UpperFirst(field)

	records := make([]types.TypedRecord, 0, it.page.Len())
	for _, raw := range it.page.Records {
		record, err := it.materializer.Materialize(ctx, "", raw, nil)
		if err != nil {
			return nil, err
		}
		records = append(records, record)
	}

	keys := make([]string, len(records))
	present := make([]bool, len(records))
	for i, record := range records {
		value, ok := record[field]
		if ok && !util.IsFalsy(value) {
			keys[i] = sortKey(value)
			present[i] = true
		}
	}

	order := make([]int, len(records))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		ia, ib := order[a], order[b]
		if !present[ia] {
			return false
		}
		if !present[ib] {
			return true
		}
		return keys[ia] < keys[ib]
	})

	sorted := make([]types.TypedRecord, len(order))
	for i, idx := range order {
		sorted[i] = records[idx]
	}
	return sorted, nil
}

// fixed width, so keys of time values order chronologically
const sortTimeLayout = "2006-01-02T15:04:05.000000000Z07:00"

func sortKey(value any) string {
	switch v := value.(type) {
	case string:
		return v
	case []byte:
		return string(v)
	case time.Time:
		return v.UTC().Format(sortTimeLayout)
	case civil.Date:
		return v.String()
	case fmt.Stringer:
		return v.String()
	default:
		return fmt.Sprint(v)
	}
}
