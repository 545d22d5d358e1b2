// Package listctl implements the server-paginated, filterable,
// status-transitioning resource list shared by every management page:
// filter and pagination state, a generation-tagged fetcher, the status to
// action dispatcher and the confirm-then-mutate state machine.
package listctl

import (
	"context"
	"maps"
	"sort"
)

// DefaultPageSize is used when a resource does not configure one.
const DefaultPageSize = 10

// Query is the applied fetch criteria. Page is zero-based.
type Query struct {
	Filters  map[string]string
	Page     int
	PageSize int
}

// NewQuery returns page 0 with the given size and applied filters.
func NewQuery(pageSize int, filters map[string]string) Query {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	return Query{Filters: compact(filters), Page: 0, PageSize: pageSize}
}

// Validate checks the page bounds.
func (q Query) Validate() error {
	if q.Page < 0 || q.PageSize <= 0 {
		return ErrInvalidQuery
	}
	return nil
}

// Offset returns the index of the first row on the page.
func (q Query) Offset() int {
	return q.Page * q.PageSize
}

// Filter returns the applied value for name.
func (q Query) Filter(name string) string {
	return q.Filters[name]
}

// Clone returns a deep copy.
func (q Query) Clone() Query {
	q.Filters = maps.Clone(q.Filters)
	return q
}

// Equal reports whether both queries fetch the same page.
func (q Query) Equal(o Query) bool {
	if q.Page != o.Page || q.PageSize != o.PageSize {
		return false
	}
	return maps.Equal(compact(q.Filters), compact(o.Filters))
}

// FilterNames returns applied filter names in a stable order.
func (q Query) FilterNames() []string {
	names := make([]string, 0, len(q.Filters))
	for name, value := range q.Filters {
		if value != "" {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names
}

// PageResult is one normalized page of rows.
type PageResult[R any] struct {
	Rows       []R
	TotalCount int
}

// TotalPages returns the number of pages for the given size.
func (p PageResult[R]) TotalPages(pageSize int) int {
	if pageSize <= 0 || p.TotalCount <= 0 {
		return 0
	}
	return (p.TotalCount + pageSize - 1) / pageSize
}

// Source fetches one page of a resource.
type Source[R any] interface {
	List(ctx context.Context, q Query) (PageResult[R], error)
}

// SourceFunc adapts a function to Source.
type SourceFunc[R any] func(ctx context.Context, q Query) (PageResult[R], error)

// List implements Source.
func (f SourceFunc[R]) List(ctx context.Context, q Query) (PageResult[R], error) {
	return f(ctx, q)
}

// Row is a record rendered in the grid.
type Row[S comparable] interface {
	RowID() string
	RowStatus() S
}

// normalize enforces len(rows) <= pageSize and len(rows) <= total.
// It reports whether the page had to be corrected.
func normalize[R any](page PageResult[R], pageSize int) (PageResult[R], bool) {
	fixed := false
	if pageSize > 0 && len(page.Rows) > pageSize {
		page.Rows = page.Rows[:pageSize]
		fixed = true
	}
	if page.TotalCount < len(page.Rows) {
		page.TotalCount = len(page.Rows)
		fixed = true
	}
	if page.Rows == nil {
		page.Rows = []R{}
	}
	return page, fixed
}

func compact(filters map[string]string) map[string]string {
	out := make(map[string]string, len(filters))
	for name, value := range filters {
		if value != "" {
			out[name] = value
		}
	}
	return out
}
