package grid

import (
	"fmt"
	"net/url"
	"strconv"
)

// Direction is a sort direction.
type Direction string

const (
	Asc  Direction = "asc"
	Desc Direction = "desc"
)

// PageSizeAll is the sentinel page size that disables pagination.
// It is encoded as the literal "all" on the wire.
const PageSizeAll = 0

// PageSizes is the fixed catalogue offered by every table.
var PageSizes = []int{10, 25, 50, 100, PageSizeAll}

// Query is the search/sort/paginate state of one grid view. It is the
// single source of truth mirrored into deep links: encoding then decoding
// a Query reproduces the identical view.
type Query struct {
	Search        string
	SortField     string // empty means unsorted
	SortDirection Direction
	Page          int // 1-based
	PageSize      int // PageSizeAll disables pagination
}

// NewQuery returns the default query for a table with the given default
// page size.
func NewQuery(pageSize int) Query {
	return Query{Page: 1, PageSize: pageSize, SortDirection: Asc}
}

// SetSearch replaces the search term, resetting to page 1 on change.
func (q *Query) SetSearch(term string) {
	if q.Search == term {
		return
	}
	q.Search = term
	q.Page = 1
}

// ToggleSort activates field ascending, or flips direction when field is
// already active. Any change resets to page 1.
func (q *Query) ToggleSort(field string) {
	if q.SortField == field {
		if q.SortDirection == Asc {
			q.SortDirection = Desc
		} else {
			q.SortDirection = Asc
		}
	} else {
		q.SortField = field
		q.SortDirection = Asc
	}
	q.Page = 1
}

// SetSort sets an absolute sort state (persisted preferences, deep links).
// Page resets only when the effective ordering actually changes.
func (q *Query) SetSort(field string, dir Direction) {
	if dir != Desc {
		dir = Asc
	}
	if q.SortField == field && q.SortDirection == dir {
		return
	}
	q.SortField = field
	q.SortDirection = dir
	q.Page = 1
}

// SetPage moves to a page, clamped to at least 1.
func (q *Query) SetPage(page int) {
	if page < 1 {
		page = 1
	}
	q.Page = page
}

// SetPageSize switches the page size, resetting to page 1 on change.
func (q *Query) SetPageSize(size int) {
	if q.PageSize == size {
		return
	}
	q.PageSize = size
	q.Page = 1
}

// TotalPages computes the page count for a record total under the query's
// page size, floored at 1. PageSizeAll always yields a single page.
func (q Query) TotalPages(totalRecords int) int {
	return totalPages(totalRecords, q.PageSize)
}

func totalPages(totalRecords, pageSize int) int {
	if pageSize == PageSizeAll || totalRecords <= 0 {
		return 1
	}
	pages := (totalRecords + pageSize - 1) / pageSize
	if pages < 1 {
		return 1
	}
	return pages
}

// FormatPageSize renders a page size for display and wire use.
func FormatPageSize(size int) string {
	if size == PageSizeAll {
		return "all"
	}
	return strconv.Itoa(size)
}

// ParsePageSize parses a wire page size, accepting the "all" sentinel.
func ParsePageSize(s string) (int, error) {
	if s == "all" {
		return PageSizeAll, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < 1 {
		return 0, fmt.Errorf("invalid page size %q", s)
	}
	return n, nil
}

// Wire parameter names shared by search requests and deep links.
const (
	ParamPage          = "page"
	ParamPageSize      = "pageSize"
	ParamSearch        = "search"
	ParamSortField     = "sortField"
	ParamSortDirection = "sortDirection"
)

// EncodeQuery reflects a query into URL parameters, omitting every value
// equal to its default: page 1, the table's default page size, empty
// search, no sort (direction is omitted while ascending). The same
// encoding drives backend search requests and shareable deep links.
func EncodeQuery(q Query, defaultPageSize int) url.Values {
	v := url.Values{}
	if q.Page > 1 {
		v.Set(ParamPage, strconv.Itoa(q.Page))
	}
	if q.PageSize != defaultPageSize {
		v.Set(ParamPageSize, FormatPageSize(q.PageSize))
	}
	if q.Search != "" {
		v.Set(ParamSearch, q.Search)
	}
	if q.SortField != "" {
		v.Set(ParamSortField, q.SortField)
		if q.SortDirection == Desc {
			v.Set(ParamSortDirection, string(Desc))
		}
	}
	return v
}

// DecodeQuery rebuilds a query from URL parameters, filling omitted values
// with their defaults. Unparseable numbers fall back to defaults rather
// than failing: a mangled link still lands on a usable view.
func DecodeQuery(v url.Values, defaultPageSize int) Query {
	q := NewQuery(defaultPageSize)
	if raw := v.Get(ParamPage); raw != "" {
		if page, err := strconv.Atoi(raw); err == nil && page >= 1 {
			q.Page = page
		}
	}
	if raw := v.Get(ParamPageSize); raw != "" {
		if size, err := ParsePageSize(raw); err == nil {
			q.PageSize = size
		}
	}
	q.Search = v.Get(ParamSearch)
	if field := v.Get(ParamSortField); field != "" {
		q.SortField = field
		if Direction(v.Get(ParamSortDirection)) == Desc {
			q.SortDirection = Desc
		}
	}
	return q
}
