// Package paging implements cursor-based pagination over collections ordered
// by a monotonically assigned sequence id. Cursors are exclusive lower bounds
// on that id, so the walk is stable under concurrent inserts: a row created
// mid-walk has a higher sequence id and shows up on a later page, never as a
// duplicate or a gap.
package paging

// DefaultLimit applies when the caller does not request a page size.
const DefaultLimit = 10

// Page is one slice of a cursor walk. NextCursor is nil on the final page.
type Page[T any] struct {
	Data       []T    `json:"data"`
	NextCursor *int64 `json:"nextCursor"`
	HasMore    bool   `json:"hasMore"`
}

// Limit normalizes a requested page size. Callers SHOULD cap the value at the
// boundary; no upper cap is enforced here.
func Limit(requested int) int {
	if requested <= 0 {
		return DefaultLimit
	}
	return requested
}

// Slice turns the rows of a limit+1 query into a page. Rows must be ordered
// ascending by sequence id and fetched with the sentinel row included; the
// extra row signals there are more results without a second count query.
// seq extracts the sequence id of a row.
func Slice[T any](rows []T, limit int, seq func(T) int64) Page[T] {
	if limit <= 0 {
		limit = DefaultLimit
	}
	if len(rows) <= limit {
		return Page[T]{Data: rows, HasMore: false}
	}

	kept := rows[:limit]
	cursor := seq(kept[limit-1])
	return Page[T]{Data: kept, NextCursor: &cursor, HasMore: true}
}
