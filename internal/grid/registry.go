// Package grid implements the customizable data grid engine behind the
// console's list views: per-table column registries, operator-adjustable
// layout state (visibility, widths, order), search/sort/paginate query
// handling in server and client modes, row virtualization, the header
// interaction engines (resize, reorder, sort), and row selection.
//
// The package is UI-toolkit agnostic. It owns state and arithmetic only;
// the terminal binding lives in internal/tui/gridview.
package grid

import (
	"fmt"
)

// Reserved pseudo-column keys. Both are pinned: always visible, excluded
// from reordering and sorting, rendered at fixed ends of every table.
const (
	KeySelect  = "_select"  // leading checkbox column
	KeyActions = "_actions" // trailing row-actions column
)

// MinColumnWidth is the smallest width, in pixels, a data column may take.
// Every width write is clamped to it.
const MinColumnWidth = 60

// Align positions cell content within a column.
type Align int

const (
	AlignStart Align = iota
	AlignCenter
	AlignEnd
)

// Column describes one data column of a table. Descriptors are immutable;
// all operator-adjustable state lives in Layout.
type Column struct {
	// Key uniquely identifies the column within its table.
	Key string
	// Label is the header text.
	Label string
	// Sortable marks the column as a sort target.
	Sortable bool
	// SortKey is the field name handed to the query pipeline when it
	// differs from Key. Empty means Key.
	SortKey string
	// DefaultWidth is the initial width in pixels, at least MinColumnWidth.
	DefaultWidth int
	// DefaultVisible controls whether the column shows before any
	// preference is applied.
	DefaultVisible bool
	// Align positions cell content.
	Align Align
	// Searchable includes the column's field in the client-mode search set.
	Searchable bool
}

// sortField returns the field name sent to the query pipeline.
func (c Column) sortField() string {
	if c.SortKey != "" {
		return c.SortKey
	}
	return c.Key
}

// Registry is the static, per-table declaration of available columns.
// A misconfigured registry is a programming error and fails construction;
// everything downstream may assume a valid registry.
type Registry struct {
	table string
	cols  []Column
	byKey map[string]Column
}

// NewRegistry validates the descriptors and builds the registry for table.
func NewRegistry(table string, cols []Column) (*Registry, error) {
	if table == "" {
		return nil, fmt.Errorf("registry: empty table name")
	}
	if len(cols) == 0 {
		return nil, fmt.Errorf("registry %s: no columns", table)
	}

	byKey := make(map[string]Column, len(cols))
	for _, c := range cols {
		if c.Key == "" {
			return nil, fmt.Errorf("registry %s: column with empty key", table)
		}
		if c.Key == KeySelect || c.Key == KeyActions {
			return nil, fmt.Errorf("registry %s: column key %q is reserved", table, c.Key)
		}
		if _, dup := byKey[c.Key]; dup {
			return nil, fmt.Errorf("registry %s: duplicate column key %q", table, c.Key)
		}
		if c.DefaultWidth < MinColumnWidth {
			return nil, fmt.Errorf("registry %s: column %q default width %d below minimum %d",
				table, c.Key, c.DefaultWidth, MinColumnWidth)
		}
		byKey[c.Key] = c
	}

	return &Registry{table: table, cols: cols, byKey: byKey}, nil
}

// MustRegistry is NewRegistry that panics on error, for static table
// definitions validated at startup.
func MustRegistry(table string, cols []Column) *Registry {
	r, err := NewRegistry(table, cols)
	if err != nil {
		panic(err)
	}
	return r
}

// Table returns the table identity used to address persisted preferences.
func (r *Registry) Table() string { return r.table }

// Columns returns the data columns in default order.
func (r *Registry) Columns() []Column {
	out := make([]Column, len(r.cols))
	copy(out, r.cols)
	return out
}

// Column looks up a data column by key.
func (r *Registry) Column(key string) (Column, bool) {
	c, ok := r.byKey[key]
	return c, ok
}

// Has reports whether key names a data column or a pinned pseudo-column.
func (r *Registry) Has(key string) bool {
	if key == KeySelect || key == KeyActions {
		return true
	}
	_, ok := r.byKey[key]
	return ok
}

// IsPinned reports whether key is one of the reserved pseudo-columns.
func (r *Registry) IsPinned(key string) bool {
	return key == KeySelect || key == KeyActions
}

// DataKeys returns the data column keys in default order.
func (r *Registry) DataKeys() []string {
	keys := make([]string, len(r.cols))
	for i, c := range r.cols {
		keys[i] = c.Key
	}
	return keys
}

// Keys returns the full default order sequence: the leading checkbox
// column, the data columns, then the trailing actions column.
func (r *Registry) Keys() []string {
	keys := make([]string, 0, len(r.cols)+2)
	keys = append(keys, KeySelect)
	keys = append(keys, r.DataKeys()...)
	keys = append(keys, KeyActions)
	return keys
}

// SearchKeys returns the keys of the searchable columns, in default order.
func (r *Registry) SearchKeys() []string {
	var keys []string
	for _, c := range r.cols {
		if c.Searchable {
			keys = append(keys, c.Key)
		}
	}
	return keys
}

// SortFieldFor resolves the query-pipeline field for a column key.
// The second return is false for unknown, pinned, or unsortable columns.
func (r *Registry) SortFieldFor(key string) (string, bool) {
	c, ok := r.byKey[key]
	if !ok || !c.Sortable {
		return "", false
	}
	return c.sortField(), true
}

// SortableField reports whether field is the sort field of any sortable
// column. Used to validate persisted and deep-linked sort state.
func (r *Registry) SortableField(field string) bool {
	if field == "" {
		return false
	}
	for _, c := range r.cols {
		if c.Sortable && c.sortField() == field {
			return true
		}
	}
	return false
}
