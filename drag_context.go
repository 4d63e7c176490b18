package main

// DragContext holds the transient state of the single in-flight drag gesture
// of one builder session. Pointer-drag gestures are serialized by the client
// OS, so a second BeginDrag while dragging simply overwrites the state.
type DragContext struct {
	Dragging        bool         `json:"dragging"`
	DragSource      string       `json:"drag_source"`       // axis name, SourceFieldList, or ""
	DragSourceIndex int          `json:"drag_source_index"` // -1 when unset
	DragElement     *DragElement `json:"drag_element,omitempty"`
	CurrentDragArea string       `json:"current_drag_area"`
	TargetDragIndex int          `json:"target_drag_index"` // -1 when unset
}

// NewDragContext creates an idle drag context
func NewDragContext() *DragContext {
	dc := &DragContext{}
	dc.Reset()
	return dc
}

// BeginDrag records a new drag gesture. It never fails.
func (dc *DragContext) BeginDrag(element *DragElement, sourceAxis string, sourceIndex int) {
	dc.Dragging = true
	dc.DragElement = element
	dc.DragSource = sourceAxis
	dc.DragSourceIndex = sourceIndex
	dc.CurrentDragArea = ""
	dc.TargetDragIndex = -1
}

// OnDragEnter updates the highlighted drop area. The target index is only
// taken when non-negative, so entering a container without a specific child
// slot keeps the previous index instead of flickering back to the end.
//
// Returns true when the caller must suppress the platform default to keep the
// drop cursor valid. Filters only accept drops that originate from the field
// catalog; for an axis-to-filter entry the default is still suppressed but
// CurrentDragArea is left untouched so downstream checks never see "f".
func (dc *DragContext) OnDragEnter(targetAxis string, targetIndex int) bool {
	if !dc.Dragging {
		return false
	}
	if targetAxis == AxisFilter && dc.DragSource != SourceFieldList {
		return true
	}
	dc.CurrentDragArea = targetAxis
	if targetIndex >= 0 {
		dc.TargetDragIndex = targetIndex
	}
	return true
}

// OnDragOver reports whether the platform default must be suppressed while
// hovering. It changes no state.
func (dc *DragContext) OnDragOver(targetAxis string) bool {
	return dc.Dragging
}

// EndDrag unconditionally zeroes the whole context. It runs after every drop,
// successful or rejected, and on drag-cancel.
func (dc *DragContext) EndDrag() {
	dc.Reset()
}

// Reset restores the idle state
func (dc *DragContext) Reset() {
	dc.Dragging = false
	dc.DragSource = ""
	dc.DragSourceIndex = -1
	dc.DragElement = nil
	dc.CurrentDragArea = ""
	dc.TargetDragIndex = -1
}
