package grid

// ResizeState is the resize engine's phase.
type ResizeState int

const (
	// ResizeIdle means no drag is in progress.
	ResizeIdle ResizeState = iota
	// ResizeActive means a divider drag is in progress.
	ResizeActive
	// ResizeGuarded covers the short window after release during which the
	// synthesized header click must still be suppressed.
	ResizeGuarded
)

// Resizer is the column-resize state machine: idle → resizing → guarded →
// idle. Pointer-up on a header also fires the header's click handler, which
// would toggle sort; the guarded phase outlives the release so that click
// is swallowed. The owner clears the guard after a short delay.
type Resizer struct {
	state      ResizeState
	key        string
	startX     int
	startWidth int
}

// Begin starts a drag on a column divider, capturing the pointer origin and
// the column's width at that instant. Returns false while a previous drag
// is still active or guarded.
func (r *Resizer) Begin(key string, x, width int) bool {
	if r.state != ResizeIdle || key == "" {
		return false
	}
	r.state = ResizeActive
	r.key = key
	r.startX = x
	r.startWidth = width
	return true
}

// Move computes the width for the current pointer position:
// max(MinColumnWidth, startWidth + dx). The caller writes it to the layout
// on every move; debouncing belongs to the persistence boundary only.
func (r *Resizer) Move(x int) (key string, width int, ok bool) {
	if r.state != ResizeActive {
		return "", 0, false
	}
	width = r.startWidth + (x - r.startX)
	if width < MinColumnWidth {
		width = MinColumnWidth
	}
	return r.key, width, true
}

// End releases the drag and enters the guarded phase.
func (r *Resizer) End() {
	if r.state == ResizeActive {
		r.state = ResizeGuarded
	}
}

// ClearGuard returns the engine to idle once the post-release delay has
// passed.
func (r *Resizer) ClearGuard() {
	if r.state == ResizeGuarded {
		r.state = ResizeIdle
		r.key = ""
	}
}

// Resizing reports whether a drag is currently active.
func (r *Resizer) Resizing() bool { return r.state == ResizeActive }

// Guarding reports whether header clicks must be suppressed: true during
// the drag and through the guarded phase after release.
func (r *Resizer) Guarding() bool { return r.state != ResizeIdle }

// Key returns the column being resized, empty when idle.
func (r *Resizer) Key() string { return r.key }
