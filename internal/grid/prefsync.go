package grid

import (
	"context"
	"time"
)

// DefaultSaveDebounce is how long the syncer waits after the last layout
// edit before persisting, collapsing an edit burst into one write.
const DefaultSaveDebounce = time.Second

// PreferenceStore is the persistence contract for table layouts, addressed
// by table name. Get returns (nil, nil) when no preference exists — absence
// is a normal state, not an error.
type PreferenceStore interface {
	Get(ctx context.Context, table string) (*Snapshot, error)
	Put(ctx context.Context, table string, snap Snapshot) error
	Delete(ctx context.Context, table string) error
}

// Syncer coordinates layout persistence for one grid view. It owns two
// pieces of policy:
//
//   - the "preferences loaded" gate: no write may be issued before the
//     initial load has resolved (successfully or not), so an early save
//     cannot clobber the persisted snapshot before it has been merged;
//   - the save debounce: layout edits arm a deadline instead of writing
//     immediately, and edits inside the window collapse into one PUT.
//
// The syncer holds no timers. The grid view's tick drives it by asking
// TakeDue, which keeps every mutation on the UI loop and makes the policy
// testable with a plain clock.
type Syncer struct {
	debounce time.Duration

	loaded bool
	armed  bool
	due    time.Time
}

// NewSyncer builds a syncer with the given debounce window; zero or
// negative means DefaultSaveDebounce.
func NewSyncer(debounce time.Duration) *Syncer {
	if debounce <= 0 {
		debounce = DefaultSaveDebounce
	}
	return &Syncer{debounce: debounce}
}

// MarkLoaded opens the write gate. Called once the initial preference load
// has resolved, whether it produced a snapshot, an absence, or an error —
// a failed load still leaves the console on defaults with saving allowed.
func (s *Syncer) MarkLoaded() { s.loaded = true }

// Loaded reports whether the write gate is open.
func (s *Syncer) Loaded() bool { return s.loaded }

// NoteChange records a layout mutation at time now. Before the gate it is
// a no-op: pre-gate edits apply locally and ride along in the next
// post-gate snapshot, which is a full replace anyway. After the gate every
// call re-arms the deadline, sliding the window under a burst of edits.
func (s *Syncer) NoteChange(now time.Time) {
	if !s.loaded {
		return
	}
	s.armed = true
	s.due = now.Add(s.debounce)
}

// TakeDue reports whether a save is due at time now, and consumes the
// armed state when it is. The caller then issues the PUT with a complete
// snapshot. A failed PUT is reported to the operator but never rolls back
// local state; the next edit re-arms and retries.
func (s *Syncer) TakeDue(now time.Time) bool {
	if !s.armed || !s.loaded || now.Before(s.due) {
		return false
	}
	s.armed = false
	return true
}

// Pending reports whether an armed save has not fired yet.
func (s *Syncer) Pending() bool { return s.armed }

// Disarm cancels a pending save. Required before the explicit reset
// action's DELETE, otherwise the trailing debounced PUT would resurrect
// the preference it just removed.
func (s *Syncer) Disarm() { s.armed = false }
