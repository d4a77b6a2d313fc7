package grid

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestResizer_DragComputesClampedWidths(t *testing.T) {
	var r Resizer

	assert.True(t, r.Begin("username", 100, 160))
	assert.True(t, r.Resizing())

	key, w, ok := r.Move(140)
	assert.True(t, ok)
	assert.Equal(t, "username", key)
	assert.Equal(t, 200, w, "width follows the pointer delta")

	_, w, _ = r.Move(60)
	assert.Equal(t, 120, w, "shrinking follows too")

	_, w, _ = r.Move(-900)
	assert.Equal(t, MinColumnWidth, w, "never below the minimum")
}

func TestResizer_GuardSuppressesTheReleaseClick(t *testing.T) {
	var r Resizer

	r.Begin("username", 100, 160)
	r.Move(150)
	assert.True(t, r.Guarding(), "clicks suppressed during the drag")

	r.End()
	assert.False(t, r.Resizing())
	assert.True(t, r.Guarding(), "the release click is still suppressed")

	r.ClearGuard()
	assert.False(t, r.Guarding(), "a later plain click sorts normally")
	assert.Empty(t, r.Key())
}

func TestResizer_PlainClickIsNotGuarded(t *testing.T) {
	var r Resizer
	// No drag ever started: nothing suppresses the header click.
	assert.False(t, r.Guarding())
}

func TestResizer_BeginRefusesWhileBusy(t *testing.T) {
	var r Resizer

	assert.True(t, r.Begin("username", 0, 160))
	assert.False(t, r.Begin("email", 0, 220), "one drag at a time")

	r.End()
	assert.False(t, r.Begin("email", 0, 220), "guarded still refuses")

	r.ClearGuard()
	assert.True(t, r.Begin("email", 0, 220))
}

func TestResizer_MoveAfterEndIsIgnored(t *testing.T) {
	var r Resizer

	r.Begin("username", 0, 160)
	r.End()

	_, _, ok := r.Move(50)
	assert.False(t, ok)
}
