package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAxisStoreAddDefaultsLabelToColumn(t *testing.T) {
	store := NewAxisFieldStore([]string{AxisX})
	store.Add(AxisX, FieldDescriptor{Name: "status", StreamAlias: "logs"})

	fields := store.Fields(AxisX)
	require.Len(t, fields, 1)
	assert.Equal(t, "status", fields[0].Column)
	assert.Equal(t, "status", fields[0].Label)
	assert.Nil(t, fields[0].Aggregation)
}

func TestAxisStoreRemoveAtShiftsLeft(t *testing.T) {
	store := NewAxisFieldStore([]string{AxisY})
	for _, name := range []string{"a", "b", "c"} {
		store.Add(AxisY, FieldDescriptor{Name: name})
	}

	store.RemoveAt(AxisY, 1)
	assert.Equal(t, []string{"a", "c"}, columns(store, AxisY))

	// Out-of-range indexes are ignored.
	store.RemoveAt(AxisY, 5)
	store.RemoveAt(AxisY, -1)
	assert.Equal(t, []string{"a", "c"}, columns(store, AxisY))
}

func TestAxisStoreReorderSplices(t *testing.T) {
	cases := []struct {
		name     string
		from, to int
		want     []string
	}{
		{"forward", 0, 2, []string{"b", "c", "a", "d"}},
		{"backward", 3, 1, []string{"a", "d", "b", "c"}},
		{"noop", 2, 2, []string{"a", "b", "c", "d"}},
		{"clamp high", 1, 9, []string{"a", "c", "d", "b"}},
		{"clamp low", 2, -4, []string{"c", "a", "b", "d"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			store := NewAxisFieldStore([]string{AxisY})
			for _, name := range []string{"a", "b", "c", "d"} {
				store.Add(AxisY, FieldDescriptor{Name: name})
			}
			store.Reorder(AxisY, tc.from, tc.to)
			assert.Equal(t, tc.want, columns(store, AxisY))
		})
	}
}

func TestAxisStoreReorderNotifiesOnce(t *testing.T) {
	store := NewAxisFieldStore([]string{AxisY})
	for _, name := range []string{"a", "b", "c"} {
		store.Add(AxisY, FieldDescriptor{Name: name})
	}

	var changes int
	store.OnChange(func(axis string) {
		assert.Equal(t, AxisY, axis)
		changes++
	})

	// A reorder is one coherent change, never a remove plus an insert.
	store.Reorder(AxisY, 0, 2)
	assert.Equal(t, 1, changes)

	// A from==to reorder changes nothing and stays silent.
	store.Reorder(AxisY, 1, 1)
	assert.Equal(t, 1, changes)
}

func TestAxisStoreSnapshotSkipsEmptyAxes(t *testing.T) {
	store := NewAxisFieldStore([]string{AxisX, AxisY, AxisZ})
	store.Add(AxisY, FieldDescriptor{Name: "a"})

	snap := store.Snapshot()
	require.Len(t, snap, 1)
	assert.Contains(t, snap, AxisY)
}
