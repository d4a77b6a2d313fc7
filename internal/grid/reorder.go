package grid

// Reorderer is the header drag-and-drop state machine: idle → dragging →
// idle. It only tracks gesture state; the order mutation itself is
// Layout.Reorder, applied with the pair Drop returns.
type Reorderer struct {
	reg      *Registry
	dragging string
	target   string
}

// NewReorderer builds the reorder engine for a table's registry.
func NewReorderer(reg *Registry) *Reorderer {
	return &Reorderer{reg: reg}
}

// Begin starts dragging a header cell. Pinned and unknown keys refuse.
func (r *Reorderer) Begin(key string) bool {
	if !r.reg.Has(key) || r.reg.IsPinned(key) {
		return false
	}
	r.dragging = key
	r.target = ""
	return true
}

// Over marks the cell currently hovered as the drop target. Pinned cells,
// unknown keys, and the dragged cell itself never become targets; hovering
// them clears the highlight instead.
func (r *Reorderer) Over(key string) {
	if r.dragging == "" {
		return
	}
	if key == r.dragging || !r.reg.Has(key) || r.reg.IsPinned(key) {
		r.target = ""
		return
	}
	r.target = key
}

// Drop ends the gesture and returns the (from, to) pair to apply when the
// drop landed on a valid target. Dropping onto a pinned column, onto the
// dragged column itself, or outside any target is a no-op. Drag state is
// cleared regardless of outcome.
func (r *Reorderer) Drop() (from, to string, ok bool) {
	from, to = r.dragging, r.target
	r.dragging = ""
	r.target = ""
	if from == "" || to == "" {
		return "", "", false
	}
	return from, to, true
}

// Cancel clears the gesture without applying anything.
func (r *Reorderer) Cancel() {
	r.dragging = ""
	r.target = ""
}

// Active reports whether a drag is in progress.
func (r *Reorderer) Active() bool { return r.dragging != "" }

// Dragging returns the key being dragged, empty when idle.
func (r *Reorderer) Dragging() string { return r.dragging }

// Target returns the current drop target, empty when none.
func (r *Reorderer) Target() string { return r.target }
