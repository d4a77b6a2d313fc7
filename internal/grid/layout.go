package grid

// Snapshot is the serialized form of a table's layout exchanged with the
// preference backend. PUT semantics are full-replace: the console always
// sends a complete snapshot, never a partial patch. GET responses may be
// partial (older clients, trimmed records); merging handles that.
type Snapshot struct {
	Widths        map[string]int  `json:"columnWidths,omitempty"`
	Order         []string        `json:"columnOrder,omitempty"`
	Visibility    map[string]bool `json:"columnVisibility,omitempty"`
	SortField     string          `json:"sortField,omitempty"`
	SortDirection string          `json:"sortDirection,omitempty"`
}

// Layout holds the operator-adjustable column state for one table: the
// visibility map, the width map, and the order sequence. One Layout is
// owned by exactly one grid view; instances are never shared.
//
// The order sequence is always a permutation of the registry's full key
// set, pinned pseudo-columns included at their fixed ends. Merging a
// persisted snapshot preserves that invariant regardless of snapshot shape.
type Layout struct {
	reg        *Registry
	visibility map[string]bool
	widths     map[string]int
	order      []string
	onChange   func()
}

// NewLayout seeds a layout from registry defaults. Seeding is synchronous
// so the first paint never shows unordered or unsized columns.
func NewLayout(reg *Registry) *Layout {
	l := &Layout{reg: reg}
	l.seedDefaults()
	return l
}

// OnChange registers a hook fired after every effective mutation. The grid
// view uses it to arm the debounced preference save.
func (l *Layout) OnChange(fn func()) { l.onChange = fn }

func (l *Layout) seedDefaults() {
	cols := l.reg.Columns()
	l.visibility = make(map[string]bool, len(cols))
	l.widths = make(map[string]int, len(cols))
	for _, c := range cols {
		l.visibility[c.Key] = c.DefaultVisible
		l.widths[c.Key] = c.DefaultWidth
	}
	l.order = l.reg.Keys()
}

func (l *Layout) changed() {
	if l.onChange != nil {
		l.onChange()
	}
}

// MergePersisted overlays a persisted snapshot on top of the current state,
// field by field. Keys unknown to the registry are dropped; registry keys
// absent from the snapshot keep their current value. Widths are clamped on
// the way in. Idempotent, and safe to call after local edits: persisted
// values win the first-load race by design.
//
// Sort fields ride along in the snapshot but belong to query state; the
// caller applies them separately.
func (l *Layout) MergePersisted(snap Snapshot) {
	for key, v := range snap.Visibility {
		if _, ok := l.reg.Column(key); ok {
			l.visibility[key] = v
		}
	}
	for key, w := range snap.Widths {
		if _, ok := l.reg.Column(key); ok {
			l.widths[key] = clampWidth(w)
		}
	}
	if len(snap.Order) > 0 {
		l.order = mergeOrder(l.reg, snap.Order)
	}
}

// mergeOrder rebuilds a complete order sequence from a persisted one:
// known data keys keep their persisted relative order, data keys the
// snapshot never saw are appended in registry-default relative order, and
// the pinned pseudo-columns are forced back to their fixed ends.
func mergeOrder(reg *Registry, persisted []string) []string {
	seen := make(map[string]bool, len(persisted))
	merged := make([]string, 0, len(reg.DataKeys())+2)

	merged = append(merged, KeySelect)
	for _, key := range persisted {
		if reg.IsPinned(key) || seen[key] {
			continue
		}
		if _, ok := reg.Column(key); !ok {
			continue
		}
		seen[key] = true
		merged = append(merged, key)
	}
	for _, key := range reg.DataKeys() {
		if !seen[key] {
			merged = append(merged, key)
		}
	}
	merged = append(merged, KeyActions)
	return merged
}

func clampWidth(px int) int {
	if px < MinColumnWidth {
		return MinColumnWidth
	}
	return px
}

// SetVisibility shows or hides a data column. Pinned and unknown keys are
// no-ops.
func (l *Layout) SetVisibility(key string, visible bool) {
	if _, ok := l.reg.Column(key); !ok {
		return
	}
	if l.visibility[key] == visible {
		return
	}
	l.visibility[key] = visible
	l.changed()
}

// SetWidth writes a data column width, clamped to MinColumnWidth. Called
// on every move event of a resize drag; debouncing happens only at the
// persistence boundary.
func (l *Layout) SetWidth(key string, px int) {
	if _, ok := l.reg.Column(key); !ok {
		return
	}
	px = clampWidth(px)
	if l.widths[key] == px {
		return
	}
	l.widths[key] = px
	l.changed()
}

// Reorder removes fromKey from the order sequence and reinserts it at the
// slot toKey occupies at call time. Pinned keys, unknown keys, and
// self-drops are no-ops.
func (l *Layout) Reorder(fromKey, toKey string) {
	if fromKey == toKey {
		return
	}
	if l.reg.IsPinned(fromKey) || l.reg.IsPinned(toKey) {
		return
	}
	if !l.reg.Has(fromKey) || !l.reg.Has(toKey) {
		return
	}

	target := indexOf(l.order, toKey)
	from := indexOf(l.order, fromKey)
	if target < 0 || from < 0 {
		return
	}

	rest := make([]string, 0, len(l.order))
	rest = append(rest, l.order[:from]...)
	rest = append(rest, l.order[from+1:]...)
	if target > len(rest) {
		target = len(rest)
	}

	next := make([]string, 0, len(l.order))
	next = append(next, rest[:target]...)
	next = append(next, fromKey)
	next = append(next, rest[target:]...)
	l.order = next
	l.changed()
}

func indexOf(keys []string, key string) int {
	for i, k := range keys {
		if k == key {
			return i
		}
	}
	return -1
}

// ResetToDefaults restores registry defaults for all three maps. It does
// not touch the backend; the caller issues the preference DELETE and must
// disarm any pending debounced save first.
func (l *Layout) ResetToDefaults() {
	l.seedDefaults()
}

// Visible reports whether a column is currently shown. Pinned columns are
// always visible.
func (l *Layout) Visible(key string) bool {
	if l.reg.IsPinned(key) {
		return true
	}
	return l.visibility[key]
}

// Width returns the current width of a data column in pixels.
func (l *Layout) Width(key string) int { return l.widths[key] }

// Order returns a copy of the full order sequence, pinned ends included.
func (l *Layout) Order() []string {
	out := make([]string, len(l.order))
	copy(out, l.order)
	return out
}

// VisibleKeys returns the order sequence filtered to visible columns.
// The pinned pseudo-columns are always present at the ends.
func (l *Layout) VisibleKeys() []string {
	var keys []string
	for _, key := range l.order {
		if l.Visible(key) {
			keys = append(keys, key)
		}
	}
	return keys
}

// VisibleColumns returns the visible data columns in display order.
func (l *Layout) VisibleColumns() []Column {
	var cols []Column
	for _, key := range l.order {
		if l.reg.IsPinned(key) || !l.visibility[key] {
			continue
		}
		if c, ok := l.reg.Column(key); ok {
			cols = append(cols, c)
		}
	}
	return cols
}

// Snapshot serializes the complete layout for a full-replace PUT. Sort
// fields are filled in by the caller, which owns query state.
func (l *Layout) Snapshot() Snapshot {
	vis := make(map[string]bool, len(l.visibility))
	for k, v := range l.visibility {
		vis[k] = v
	}
	widths := make(map[string]int, len(l.widths))
	for k, w := range l.widths {
		widths[k] = w
	}
	order := make([]string, len(l.order))
	copy(order, l.order)
	return Snapshot{Widths: widths, Order: order, Visibility: vis}
}
