package grid

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"golang.org/x/text/cases"
)

// Pipeline is the client-mode query pipeline: case-insensitive substring
// search over the registry's searchable fields (OR-combined), a
// field-keyed comparator, then a page slice. Server-mode tables never use
// it — the backend's ordering and counts are authoritative there.
type Pipeline struct {
	searchFields []string
}

// NewPipeline builds the pipeline for a registry's searchable field set.
func NewPipeline(reg *Registry) *Pipeline {
	return &Pipeline{searchFields: reg.SearchKeys()}
}

// Apply runs search, sort, and slice in that order and returns the page
// the query asks for together with the filtered totals. Safe for
// overlapping calls: a Caser carries transformer state, so each Apply
// folds with its own.
func (p *Pipeline) Apply(rows []Row, q Query) Result {
	fold := cases.Fold()

	filtered := p.filter(fold, rows, q.Search)
	sortRows(fold, filtered, q.SortField, q.SortDirection)

	total := len(filtered)
	return Result{
		Rows:         slicePage(filtered, q.Page, q.PageSize),
		TotalRecords: total,
		TotalPages:   totalPages(total, q.PageSize),
	}
}

func (p *Pipeline) filter(fold cases.Caser, rows []Row, term string) []Row {
	if term == "" {
		out := make([]Row, len(rows))
		copy(out, rows)
		return out
	}
	needle := fold.String(term)
	var out []Row
	for _, row := range rows {
		for _, field := range p.searchFields {
			if strings.Contains(fold.String(stringify(row.Value(field))), needle) {
				out = append(out, row)
				break
			}
		}
	}
	return out
}

func sortRows(fold cases.Caser, rows []Row, field string, dir Direction) {
	if field == "" {
		return
	}
	sort.SliceStable(rows, func(i, j int) bool {
		c := compareValues(fold, rows[i].Value(field), rows[j].Value(field))
		if dir == Desc {
			return c > 0
		}
		return c < 0
	})
}

// compareValues orders two field values: strings case-insensitively,
// booleans as 0/1, numbers and timestamps naturally. Mismatched or unknown
// types fall back to their printed form.
func compareValues(fold cases.Caser, a, b any) int {
	switch av := a.(type) {
	case string:
		if bv, ok := b.(string); ok {
			return strings.Compare(fold.String(av), fold.String(bv))
		}
	case bool:
		if bv, ok := b.(bool); ok {
			return boolInt(av) - boolInt(bv)
		}
	case time.Time:
		if bv, ok := b.(time.Time); ok {
			switch {
			case av.Before(bv):
				return -1
			case av.After(bv):
				return 1
			default:
				return 0
			}
		}
	default:
		if af, aok := toFloat(a); aok {
			if bf, bok := toFloat(b); bok {
				switch {
				case af < bf:
					return -1
				case af > bf:
					return 1
				default:
					return 0
				}
			}
		}
	}
	return strings.Compare(fold.String(stringify(a)), fold.String(stringify(b)))
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint64:
		return float64(n), true
	case float32:
		return float64(n), true
	case float64:
		return n, true
	}
	return 0, false
}

func stringify(v any) string {
	switch s := v.(type) {
	case nil:
		return ""
	case string:
		return s
	}
	return fmt.Sprint(v)
}

func slicePage(rows []Row, page, pageSize int) []Row {
	if pageSize == PageSizeAll {
		return rows
	}
	if page < 1 {
		page = 1
	}
	start := (page - 1) * pageSize
	if start >= len(rows) {
		return nil
	}
	end := start + pageSize
	if end > len(rows) {
		end = len(rows)
	}
	return rows[start:end]
}
