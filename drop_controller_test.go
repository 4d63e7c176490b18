package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type capturedNotices struct {
	messages []string
}

func (n *capturedNotices) notify(msg string) {
	n.messages = append(n.messages, msg)
}

func newTestController(chartType string) (*DropController, *DragContext, *AxisFieldStore, *capturedNotices) {
	axes := axesForChartType(chartType)
	ctx := NewDragContext()
	store := NewAxisFieldStore(axes)
	notices := &capturedNotices{}
	c := NewDropController(chartType, ctx, store, StoreMutators(store, axes), notices.notify)
	return c, ctx, store, notices
}

func descriptorElement(name string) *DragElement {
	return &DragElement{Descriptor: &FieldDescriptor{Name: name}}
}

func columns(store *AxisFieldStore, axis string) []string {
	fields := store.Fields(axis)
	out := make([]string, len(fields))
	for i, f := range fields {
		out[i] = f.Column
	}
	return out
}

func assertContextReset(t *testing.T, ctx *DragContext) {
	t.Helper()
	assert.False(t, ctx.Dragging)
	assert.Equal(t, "", ctx.DragSource)
	assert.Equal(t, -1, ctx.DragSourceIndex)
	assert.Nil(t, ctx.DragElement)
	assert.Equal(t, "", ctx.CurrentDragArea)
	assert.Equal(t, -1, ctx.TargetDragIndex)
}

func TestDropRejectsSecondFieldOnFullAxis(t *testing.T) {
	c, ctx, store, notices := newTestController(ChartBar)
	store.Add(AxisX, FieldDescriptor{Name: "status"})

	c.OnDragStart(descriptorElement("method"), SourceFieldList, -1)
	c.OnDragEnter(AxisX, 1)
	c.OnDrop(AxisX, 1)

	require.Equal(t, []string{"Max 1 field(s) in X-Axis is allowed."}, notices.messages)
	assert.Equal(t, []string{"status"}, columns(store, AxisX))
	assertContextReset(t, ctx)
}

func TestDropSameAxisReorder(t *testing.T) {
	c, ctx, store, _ := newTestController(ChartTable)
	for _, name := range []string{"a", "b", "c"} {
		store.Add(AxisY, FieldDescriptor{Name: name})
	}

	c.OnDragStart(&DragElement{Assignment: store.Fields(AxisY)[0]}, AxisY, 0)
	c.OnDrop(AxisY, 2)

	assert.Equal(t, []string{"b", "c", "a"}, columns(store, AxisY))
	assertContextReset(t, ctx)
}

func TestDropFieldListOntoGeomapLatitude(t *testing.T) {
	c, ctx, store, notices := newTestController(ChartGeomap)

	var added []FieldDescriptor
	inner := c.mutators.Add[AxisLatitude]
	c.mutators.Add[AxisLatitude] = func(f FieldDescriptor) {
		added = append(added, f)
		inner(f)
	}

	c.OnDragStart(descriptorElement("lat_col"), SourceFieldList, -1)
	c.OnDragEnter(AxisLatitude, 0)
	c.OnDrop(AxisLatitude, 0)

	require.Len(t, added, 1)
	assert.Equal(t, FieldDescriptor{Name: "lat_col"}, added[0])
	assert.Equal(t, []string{"lat_col"}, columns(store, AxisLatitude))
	assert.Empty(t, notices.messages)
	assertContextReset(t, ctx)
}

func TestDropSankeyChipMovesSourceToTarget(t *testing.T) {
	c, ctx, store, notices := newTestController(ChartSankey)
	store.Add(AxisSource, FieldDescriptor{Name: "a"})

	var calls []string
	removeSource := c.mutators.Remove[AxisSource]
	c.mutators.Remove[AxisSource] = func(i int) {
		calls = append(calls, "removeSource")
		removeSource(i)
	}
	addTarget := c.mutators.Add[AxisTarget]
	var addedTarget []FieldDescriptor
	c.mutators.Add[AxisTarget] = func(f FieldDescriptor) {
		calls = append(calls, "addTarget")
		addedTarget = append(addedTarget, f)
		addTarget(f)
	}

	chip := store.Fields(AxisSource)[0]
	c.OnDragStart(&DragElement{Assignment: chip}, AxisSource, 0)
	c.OnDrop(AxisTarget, 0)

	require.Equal(t, []string{"removeSource", "addTarget"}, calls)
	assert.Equal(t, []FieldDescriptor{{Name: "a", StreamAlias: ""}}, addedTarget)
	assert.Empty(t, columns(store, AxisSource))
	assert.Equal(t, []string{"a"}, columns(store, AxisTarget))
	assert.Empty(t, notices.messages)
	assertContextReset(t, ctx)
}

func TestDropWithNilElementIsSilentAbort(t *testing.T) {
	c, ctx, store, notices := newTestController(ChartBar)

	c.OnDragStart(nil, SourceFieldList, -1)
	assert.NotPanics(t, func() { c.OnDrop(AxisX, 0) })

	assert.Empty(t, columns(store, AxisX))
	assert.Empty(t, notices.messages)
	assertContextReset(t, ctx)
}

func TestDropFieldListOntoFilterPseudoAxis(t *testing.T) {
	c, ctx, store, _ := newTestController(ChartBar)

	var filters []FieldDescriptor
	c.mutators.AddFilter = func(f FieldDescriptor) { filters = append(filters, f) }

	c.OnDragStart(descriptorElement("level"), SourceFieldList, -1)
	c.OnDragEnter(AxisFilter, -1)
	c.OnDrop(AxisFilter, 0)

	require.Equal(t, []FieldDescriptor{{Name: "level"}}, filters)
	for _, axis := range axesForChartType(ChartBar) {
		assert.Empty(t, store.Fields(axis), "axis %s must stay untouched", axis)
	}
	assertContextReset(t, ctx)
}

func TestCrossAxisMoveLandsAtDropIndex(t *testing.T) {
	c, ctx, store, _ := newTestController(ChartTable)
	for _, name := range []string{"a", "b", "c"} {
		store.Add(AxisX, FieldDescriptor{Name: name})
	}
	store.Add(AxisY, FieldDescriptor{Name: "moved"})

	chip := store.Fields(AxisY)[0]
	c.OnDragStart(&DragElement{Assignment: chip}, AxisY, 0)
	c.OnDrop(AxisX, 1)

	assert.Equal(t, []string{"a", "moved", "b", "c"}, columns(store, AxisX))
	assert.Empty(t, columns(store, AxisY))
	assertContextReset(t, ctx)
}

func TestCrossAxisMoveRejectedOnCapacityKeepsBothAxes(t *testing.T) {
	c, ctx, store, notices := newTestController(ChartBar)
	store.Add(AxisX, FieldDescriptor{Name: "existing"})
	store.Add(AxisY, FieldDescriptor{Name: "moved"})

	chip := store.Fields(AxisY)[0]
	c.OnDragStart(&DragElement{Assignment: chip}, AxisY, 0)
	c.OnDrop(AxisX, 0)

	require.Equal(t, []string{"Max 1 field(s) in X-Axis is allowed."}, notices.messages)
	assert.Equal(t, []string{"existing"}, columns(store, AxisX))
	assert.Equal(t, []string{"moved"}, columns(store, AxisY))
	assertContextReset(t, ctx)
}

func TestCrossAxisMoveWithoutFieldReference(t *testing.T) {
	c, ctx, store, notices := newTestController(ChartBar)
	store.Add(AxisY, FieldDescriptor{Name: "real"})
	// A chip whose assignment carries neither a field argument nor a column.
	chip := &FieldAssignment{Label: "broken", Args: []AggregationArg{{Type: "number", Value: "0.95"}}}

	c.OnDragStart(&DragElement{Assignment: chip}, AxisY, 0)
	c.OnDrop(AxisX, 0)

	require.Equal(t, []string{"Without field, not able to drag"}, notices.messages)
	assert.Equal(t, []string{"real"}, columns(store, AxisY))
	assert.Empty(t, columns(store, AxisX))
	assertContextReset(t, ctx)
}

func TestCrossAxisMoveValidatesAgainstCatalog(t *testing.T) {
	c, ctx, store, notices := newTestController(ChartTable)
	store.Add(AxisY, FieldDescriptor{Name: "ghost"})
	c.fieldExists = func(name string) bool { return name != "ghost" }

	chip := store.Fields(AxisY)[0]
	c.OnDragStart(&DragElement{Assignment: chip}, AxisY, 0)
	c.OnDrop(AxisX, 0)

	require.Equal(t, []string{"Without field, not able to drag"}, notices.messages)
	assert.Equal(t, []string{"ghost"}, columns(store, AxisY))
	assert.Empty(t, columns(store, AxisX))
	assertContextReset(t, ctx)
}

func TestCrossAxisMoveToUnknownAxisKeepsSource(t *testing.T) {
	c, ctx, store, notices := newTestController(ChartBar)
	store.Add(AxisY, FieldDescriptor{Name: "moved"})

	// A bar session exposes no latitude axis; the chip must stay on y.
	chip := store.Fields(AxisY)[0]
	c.OnDragStart(&DragElement{Assignment: chip}, AxisY, 0)
	c.OnDrop(AxisLatitude, 0)

	assert.Equal(t, []string{"moved"}, columns(store, AxisY))
	assert.Empty(t, notices.messages)
	assertContextReset(t, ctx)
}

func TestCrossAxisMoveToFilterWithoutSinkKeepsSource(t *testing.T) {
	c, ctx, store, _ := newTestController(ChartBar)
	store.Add(AxisY, FieldDescriptor{Name: "moved"})
	c.mutators.AddFilter = nil

	chip := store.Fields(AxisY)[0]
	c.OnDragStart(&DragElement{Assignment: chip}, AxisY, 0)
	c.OnDrop(AxisFilter, 0)

	assert.Equal(t, []string{"moved"}, columns(store, AxisY))
	assertContextReset(t, ctx)
}

func TestCrossAxisMoveTakesFieldArgumentOverColumn(t *testing.T) {
	c, _, store, _ := newTestController(ChartTable)
	agg := AggP95
	store.Add(AxisY, FieldDescriptor{Name: "placeholder"})
	chip := store.Fields(AxisY)[0]
	chip.Column = "placeholder"
	chip.Aggregation = &agg
	chip.Args = []AggregationArg{
		{Type: "number", Value: "0.95"},
		{Type: "field", Value: "duration_ms"},
	}

	c.OnDragStart(&DragElement{Assignment: chip}, AxisY, 0)
	c.OnDrop(AxisX, 0)

	assert.Equal(t, []string{"duration_ms"}, columns(store, AxisX))
}

func TestDragEndWithoutDropClearsState(t *testing.T) {
	c, ctx, _, _ := newTestController(ChartBar)
	c.OnDragStart(descriptorElement("status"), SourceFieldList, -1)
	c.OnDragEnter(AxisY, 0)
	c.OnDragEnd()
	assertContextReset(t, ctx)
}

// Capacity holds over arbitrary drop sequences, not just single drops.
func TestCapacityInvariantUnderDropSequences(t *testing.T) {
	for _, chartType := range []string{ChartBar, ChartPie, ChartMetric, ChartStacked, ChartGeomap, ChartSankey} {
		chartType := chartType
		t.Run(chartType, func(t *testing.T) {
			c, _, store, _ := newTestController(chartType)
			axes := axesForChartType(chartType)
			names := []string{"f1", "f2", "f3", "f4"}
			for _, axis := range axes {
				for i, name := range names {
					c.OnDragStart(descriptorElement(name), SourceFieldList, -1)
					c.OnDrop(axis, i)
				}
			}
			for _, axis := range axes {
				limit := MaxFields(chartType, axis)
				if limit == MaxFieldsUnlimited {
					continue
				}
				assert.LessOrEqual(t, store.Len(axis), limit, "axis %s", axis)
			}
		})
	}
}

func TestReorderIsAPermutation(t *testing.T) {
	c, _, store, _ := newTestController(ChartTable)
	names := []string{"a", "b", "c", "d", "e"}
	for _, name := range names {
		store.Add(AxisY, FieldDescriptor{Name: name})
	}

	moves := [][2]int{{0, 4}, {3, 0}, {2, 2}, {4, 1}, {1, 3}}
	for _, m := range moves {
		chip := store.Fields(AxisY)[m[0]]
		c.OnDragStart(&DragElement{Assignment: chip}, AxisY, m[0])
		c.OnDrop(AxisY, m[1])
	}

	assert.ElementsMatch(t, names, columns(store, AxisY))
	assert.Len(t, columns(store, AxisY), len(names))
}
