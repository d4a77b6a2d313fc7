package grid

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// assertPermutation checks the core order invariant: a set-equal
// permutation of the registry's keys, pinned pseudo-columns at the ends.
func assertPermutation(t *testing.T, reg *Registry, order []string) {
	t.Helper()
	require.Len(t, order, len(reg.DataKeys())+2)
	assert.Equal(t, KeySelect, order[0])
	assert.Equal(t, KeyActions, order[len(order)-1])

	seen := make(map[string]int)
	for _, key := range order {
		assert.True(t, reg.Has(key), "order contains unknown key %q", key)
		seen[key]++
	}
	for key, n := range seen {
		assert.Equal(t, 1, n, "key %q appears %d times", key, n)
	}
}

func TestLayout_Defaults(t *testing.T) {
	reg := testRegistry(t)
	l := NewLayout(reg)

	assertPermutation(t, reg, l.Order())
	assert.True(t, l.Visible("username"))
	assert.False(t, l.Visible("balance"), "balance defaults hidden")
	assert.True(t, l.Visible(KeySelect), "pinned columns always visible")
	assert.Equal(t, 160, l.Width("username"))
}

func TestLayout_MergePersisted_PermutationInvariant(t *testing.T) {
	reg := testRegistry(t)

	snapshots := map[string]Snapshot{
		"empty":       {},
		"only widths": {Widths: map[string]int{"username": 300}},
		"partial order": {
			Order: []string{"email", "username"},
		},
		"order with unknown keys": {
			Order: []string{"ghost", "email", "username", "zombie"},
		},
		"order with duplicates": {
			Order: []string{"email", "email", "username", "email"},
		},
		"order smuggling pinned keys inside": {
			Order: []string{"email", KeyActions, "username", KeySelect},
		},
		"full stale order from older registry": {
			Order: []string{KeySelect, "email", "legacy_col", "username", "name", KeyActions},
		},
		"everything": {
			Widths:     map[string]int{"username": 10, "ghost": 500},
			Visibility: map[string]bool{"balance": true, "ghost": false},
			Order:      []string{"created", "status", "nope"},
		},
	}

	for name, snap := range snapshots {
		t.Run(name, func(t *testing.T) {
			l := NewLayout(reg)
			l.MergePersisted(snap)
			assertPermutation(t, reg, l.Order())

			// Idempotent: merging the same snapshot again changes nothing.
			before := l.Order()
			l.MergePersisted(snap)
			assert.Equal(t, before, l.Order())
		})
	}
}

func TestLayout_MergePersisted_FieldByField(t *testing.T) {
	reg := testRegistry(t)
	l := NewLayout(reg)

	l.MergePersisted(Snapshot{
		Widths:     map[string]int{"username": 320, "ghost": 99},
		Visibility: map[string]bool{"balance": true, "email": false, "ghost": true},
		Order:      []string{"name", "username"},
	})

	assert.Equal(t, 320, l.Width("username"))
	assert.Equal(t, 220, l.Width("email"), "unmentioned keys keep defaults")
	assert.True(t, l.Visible("balance"))
	assert.False(t, l.Visible("email"))

	order := l.Order()
	assert.Equal(t, []string{KeySelect, "name", "username"}, order[:3],
		"persisted relative order leads")
	// Remaining data keys follow in registry-default relative order.
	assert.Equal(t, []string{"email", "status", "balance", "created"}, order[3:len(order)-1])
}

func TestLayout_MergePersisted_ClampsWidths(t *testing.T) {
	reg := testRegistry(t)
	l := NewLayout(reg)

	l.MergePersisted(Snapshot{Widths: map[string]int{"username": 8}})
	assert.Equal(t, MinColumnWidth, l.Width("username"))
}

func TestLayout_MergePersisted_WinsOverEarlyLocalEdit(t *testing.T) {
	reg := testRegistry(t)
	l := NewLayout(reg)

	// Operator drags a width in the first instant, then the persisted
	// snapshot arrives: the persisted value wins the race.
	l.SetWidth("username", 400)
	l.MergePersisted(Snapshot{Widths: map[string]int{"username": 250}})
	assert.Equal(t, 250, l.Width("username"))
}

func TestLayout_SetWidth(t *testing.T) {
	reg := testRegistry(t)
	l := NewLayout(reg)

	writes := []int{10, 500, 59, 60, 61, -100, 240}
	for _, w := range writes {
		l.SetWidth("username", w)
		assert.GreaterOrEqual(t, l.Width("username"), MinColumnWidth,
			"width after SetWidth(%d)", w)
	}
	assert.Equal(t, 240, l.Width("username"), "last write wins")

	l.SetWidth("missing", 300)
	assert.Equal(t, 0, l.Width("missing"), "unknown keys are no-ops")
}

func TestLayout_SetVisibility(t *testing.T) {
	reg := testRegistry(t)
	l := NewLayout(reg)

	l.SetVisibility("email", false)
	assert.False(t, l.Visible("email"))

	l.SetVisibility(KeySelect, false)
	assert.True(t, l.Visible(KeySelect), "pinned columns cannot hide")
}

func TestLayout_Reorder(t *testing.T) {
	reg := testRegistry(t)

	t.Run("moves dragged key into target slot", func(t *testing.T) {
		l := NewLayout(reg)
		// Default data order: username name email status balance created.
		l.Reorder("username", "email")
		assertPermutation(t, reg, l.Order())
		assert.Equal(t, []string{KeySelect, "name", "email", "username", "status", "balance", "created", KeyActions}, l.Order())
	})

	t.Run("adjacent double reorder restores original order", func(t *testing.T) {
		l := NewLayout(reg)
		original := l.Order()

		l.Reorder("username", "name")
		l.Reorder("name", "username")
		assert.Equal(t, original, l.Order())
	})

	t.Run("inverse restores adjacency for distant keys", func(t *testing.T) {
		l := NewLayout(reg)
		l.Reorder("username", "created")
		l.Reorder("created", "username")
		assertPermutation(t, reg, l.Order())

		order := l.Order()
		ui := indexOf(order, "username")
		ci := indexOf(order, "created")
		assert.Equal(t, 1, abs(ui-ci), "the two keys end adjacent")
	})

	t.Run("pinned, self and unknown drops are no-ops", func(t *testing.T) {
		l := NewLayout(reg)
		original := l.Order()

		l.Reorder("username", KeyActions)
		l.Reorder(KeySelect, "email")
		l.Reorder("username", "username")
		l.Reorder("username", "ghost")
		l.Reorder("ghost", "username")

		assert.Equal(t, original, l.Order())
	})
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}

func TestLayout_ResetToDefaults(t *testing.T) {
	reg := testRegistry(t)
	l := NewLayout(reg)
	pristine := NewLayout(reg)

	l.SetWidth("username", 500)
	l.SetVisibility("balance", true)
	l.Reorder("email", "username")

	l.ResetToDefaults()
	assert.Equal(t, pristine.Order(), l.Order())
	assert.Equal(t, pristine.Width("username"), l.Width("username"))
	assert.Equal(t, pristine.Visible("balance"), l.Visible("balance"))
}

func TestLayout_OnChange(t *testing.T) {
	reg := testRegistry(t)
	l := NewLayout(reg)

	var fired int
	l.OnChange(func() { fired++ })

	l.SetWidth("username", 200)
	l.SetWidth("username", 200) // no-op: same value
	l.SetVisibility("email", false)
	l.SetVisibility("email", false) // no-op
	l.Reorder("username", "email")
	l.Reorder("username", "username") // no-op

	assert.Equal(t, 3, fired, "only effective mutations fire the hook")
}

func TestLayout_Snapshot(t *testing.T) {
	reg := testRegistry(t)
	l := NewLayout(reg)

	l.SetWidth("username", 321)
	l.SetVisibility("balance", true)

	snap := l.Snapshot()
	assert.Equal(t, 321, snap.Widths["username"])
	assert.True(t, snap.Visibility["balance"])
	assertPermutation(t, reg, snap.Order)

	// The snapshot is a full serialization: every data key is present.
	for _, key := range reg.DataKeys() {
		assert.Contains(t, snap.Widths, key)
		assert.Contains(t, snap.Visibility, key)
	}

	// Mutating the snapshot must not reach back into the layout.
	snap.Widths["username"] = 1
	assert.Equal(t, 321, l.Width("username"))
}

func TestLayout_VisibleColumns(t *testing.T) {
	reg := testRegistry(t)
	l := NewLayout(reg)

	l.SetVisibility("email", false)
	l.Reorder("created", "username")

	var keys []string
	for _, c := range l.VisibleColumns() {
		keys = append(keys, c.Key)
	}
	assert.Equal(t, []string{"created", "username", "name", "status"}, keys)
}
