package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDragContextLifecycle(t *testing.T) {
	dc := NewDragContext()
	assertContextReset(t, dc)

	el := descriptorElement("status")
	dc.BeginDrag(el, SourceFieldList, -1)
	assert.True(t, dc.Dragging)
	assert.Equal(t, SourceFieldList, dc.DragSource)
	assert.Equal(t, -1, dc.DragSourceIndex)
	assert.Same(t, el, dc.DragElement)

	assert.True(t, dc.OnDragEnter(AxisY, 2))
	assert.Equal(t, AxisY, dc.CurrentDragArea)
	assert.Equal(t, 2, dc.TargetDragIndex)

	dc.EndDrag()
	assertContextReset(t, dc)
}

func TestDragEnterKeepsIndexWhenTargetIndexNegative(t *testing.T) {
	dc := NewDragContext()
	dc.BeginDrag(descriptorElement("status"), SourceFieldList, -1)

	dc.OnDragEnter(AxisY, 3)
	// Entering the container itself (no child slot) must not reset the index.
	dc.OnDragEnter(AxisY, -1)
	assert.Equal(t, 3, dc.TargetDragIndex)
}

func TestDragEnterBlocksAxisToFilter(t *testing.T) {
	dc := NewDragContext()
	dc.BeginDrag(descriptorElement("status"), AxisY, 0)
	dc.OnDragEnter(AxisX, 0)

	suppress := dc.OnDragEnter(AxisFilter, 0)
	assert.True(t, suppress, "platform default must still be suppressed")
	assert.Equal(t, AxisX, dc.CurrentDragArea, "drag area must never become the filter slot")
}

func TestDragEnterAllowsFieldListToFilter(t *testing.T) {
	dc := NewDragContext()
	dc.BeginDrag(descriptorElement("status"), SourceFieldList, -1)

	assert.True(t, dc.OnDragEnter(AxisFilter, -1))
	assert.Equal(t, AxisFilter, dc.CurrentDragArea)
}

func TestDragEnterWhileIdleIsIgnored(t *testing.T) {
	dc := NewDragContext()
	assert.False(t, dc.OnDragEnter(AxisX, 0))
	assert.Equal(t, "", dc.CurrentDragArea)
}

func TestSecondBeginDragOverwritesState(t *testing.T) {
	dc := NewDragContext()
	dc.BeginDrag(descriptorElement("first"), AxisX, 0)
	dc.OnDragEnter(AxisY, 1)

	dc.BeginDrag(descriptorElement("second"), SourceFieldList, -1)
	assert.Equal(t, SourceFieldList, dc.DragSource)
	assert.Equal(t, "", dc.CurrentDragArea)
	assert.Equal(t, -1, dc.TargetDragIndex)
	assert.Equal(t, "second", dc.DragElement.Descriptor.Name)
}
