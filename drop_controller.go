package main

import "time"

// Rejection shown when a dragged chip carries no resolvable field name.
const errNoFieldMessage = "Without field, not able to drag"

// AxisMutators is the add/remove function set a chart variant exposes. The
// DropController is a thin orchestrator over whichever set the host chart
// type wires in; the functions must mutate the controller's AxisFieldStore so
// that post-insert reordering sees the appended entry.
type AxisMutators struct {
	Add       map[string]func(FieldDescriptor)
	Remove    map[string]func(index int)
	AddFilter func(FieldDescriptor)
}

// StoreMutators builds the default store-backed mutator set for the given axes
func StoreMutators(store *AxisFieldStore, axes []string) AxisMutators {
	m := AxisMutators{
		Add:    make(map[string]func(FieldDescriptor), len(axes)),
		Remove: make(map[string]func(int), len(axes)),
	}
	for _, axis := range axes {
		axis := axis
		m.Add[axis] = func(f FieldDescriptor) { store.Add(axis, f) }
		m.Remove[axis] = func(i int) { store.RemoveAt(axis, i) }
	}
	return m
}

// DropController resolves drag gestures against one panel's axis lists:
// same-axis reorder, new field from the catalog, cross-axis move, or
// reject-with-notification. Every path, including rejections, ends with a full
// DragContext reset.
type DropController struct {
	chartType string
	ctx       *DragContext
	store     *AxisFieldStore
	mutators  AxisMutators
	notify    func(message string)

	// fieldExists validates extracted names against the stream catalog on
	// cross-axis moves. nil disables validation.
	fieldExists func(name string) bool

	dragStartedAt time.Time
}

// NewDropController wires a controller for one builder session
func NewDropController(chartType string, ctx *DragContext, store *AxisFieldStore, mutators AxisMutators, notify func(string)) *DropController {
	if notify == nil {
		notify = func(string) {}
	}
	return &DropController{
		chartType: chartType,
		ctx:       ctx,
		store:     store,
		mutators:  mutators,
		notify:    notify,
	}
}

// OnDragStart records a new drag gesture
func (c *DropController) OnDragStart(element *DragElement, sourceAxis string, sourceIndex int) {
	c.ctx.BeginDrag(element, sourceAxis, sourceIndex)
	c.dragStartedAt = time.Now()
}

// OnDragEnter updates the highlighted area; returns true when the client must
// suppress the platform default.
func (c *DropController) OnDragEnter(targetAxis string, targetIndex int) bool {
	return c.ctx.OnDragEnter(targetAxis, targetIndex)
}

// OnDragOver reports whether the client must suppress the platform default
func (c *DropController) OnDragOver(targetAxis string) bool {
	return c.ctx.OnDragOver(targetAxis)
}

// OnDragEnd handles a drag that finished without a drop (released outside any
// target, or cancelled). No state may survive it.
func (c *DropController) OnDragEnd() {
	c.cleanupDraggingFields()
}

// OnDrop resolves a drop on targetAxis at droppedAtIndex. Cleanup is
// unconditional: it runs on success, rejection and abort alike.
func (c *DropController) OnDrop(targetAxis string, droppedAtIndex int) {
	defer c.cleanupDraggingFields()

	if !c.ctx.Dragging {
		return
	}

	// Drops on a container without a child slot carry no index; the last
	// drag-enter index stands in for it.
	if droppedAtIndex < 0 {
		droppedAtIndex = c.ctx.TargetDragIndex
	}

	switch {
	case c.ctx.DragSource == targetAxis:
		// Same-axis reorder. Count is unchanged, no policy check needed.
		if droppedAtIndex >= 0 {
			c.store.Reorder(targetAxis, c.ctx.DragSourceIndex, droppedAtIndex)
		}
		c.recordDrop("reorder")
	case c.ctx.DragSource == SourceFieldList:
		c.dropFromFieldList(targetAxis)
	default:
		c.moveAcrossAxes(targetAxis, droppedAtIndex)
	}
}

// dropFromFieldList handles a new field dragged in from the field catalog
func (c *DropController) dropFromFieldList(targetAxis string) {
	el := c.ctx.DragElement
	if el.IsZero() || el.Descriptor == nil || el.Descriptor.Name == "" {
		// Stale or cancelled drag delivered a drop with no payload.
		c.recordDrop("stale")
		return
	}
	field := *el.Descriptor

	if targetAxis == AxisFilter {
		if c.mutators.AddFilter != nil {
			c.mutators.AddFilter(field)
		}
		c.recordDrop("filter_add")
		return
	}

	if c.rejectIfFull(targetAxis) {
		return
	}

	add, ok := c.mutators.Add[targetAxis]
	if !ok {
		c.recordDrop("unknown_axis")
		return
	}
	add(field)
	c.recordDrop("add")
}

// moveAcrossAxes handles a chip dragged from one axis onto another. The move
// is modeled as remove-then-insert so an assignment never lives in two lists.
func (c *DropController) moveAcrossAxes(targetAxis string, droppedAtIndex int) {
	name, ok := fieldNameOf(c.ctx.DragElement)
	if !ok {
		c.notify(errNoFieldMessage)
		c.recordRejection("missing_field")
		return
	}
	if c.fieldExists != nil && !c.fieldExists(name) {
		c.notify(errNoFieldMessage)
		c.recordRejection("missing_field")
		return
	}

	// Capacity is checked before either axis is touched, so a rejected move
	// leaves both lists exactly as they were.
	if targetAxis != AxisFilter && c.rejectIfFull(targetAxis) {
		return
	}

	// Resolve the destination before touching the source, so a drop on an
	// axis this chart type does not expose leaves both lists untouched.
	var add func(FieldDescriptor)
	if targetAxis == AxisFilter {
		// Filters hold conditions, not axis entries.
		add = c.mutators.AddFilter
	} else {
		add = c.mutators.Add[targetAxis]
	}
	if add == nil {
		c.recordDrop("unknown_axis")
		return
	}

	if !c.removeByLastDragSource() {
		c.recordDrop("unknown_axis")
		return
	}

	add(FieldDescriptor{Name: name, StreamAlias: ""})

	if targetAxis == AxisFilter {
		c.recordDrop("filter_add")
		return
	}
	// The mutator appends; splice the new entry to where the user dropped it.
	if last := c.store.Len(targetAxis) - 1; droppedAtIndex >= 0 && droppedAtIndex < last {
		c.store.Reorder(targetAxis, last, droppedAtIndex)
	}
	c.recordDrop("move")
}

// removeByLastDragSource deletes the entry the in-flight drag started from
func (c *DropController) removeByLastDragSource() bool {
	remove, ok := c.mutators.Remove[c.ctx.DragSource]
	if !ok {
		return false
	}
	remove(c.ctx.DragSourceIndex)
	return true
}

// rejectIfFull enforces the per-chart-type capacity table against the target axis
func (c *DropController) rejectIfFull(targetAxis string) bool {
	limit := MaxFields(c.chartType, targetAxis)
	if limit == MaxFieldsUnlimited || c.store.Len(targetAxis) < limit {
		return false
	}
	c.notify(maxFieldsMessage(c.chartType, targetAxis, limit))
	c.recordRejection("capacity")
	return true
}

// cleanupDraggingFields resets the drag context and observes the gesture
// duration. It is the final step of every drop and drag-end.
func (c *DropController) cleanupDraggingFields() {
	if c.ctx.Dragging && !c.dragStartedAt.IsZero() {
		dragDuration.Observe(time.Since(c.dragStartedAt).Seconds())
	}
	c.dragStartedAt = time.Time{}
	c.ctx.EndDrag()
}

func (c *DropController) recordDrop(outcome string) {
	dropsTotal.WithLabelValues(c.chartType, outcome).Inc()
}

func (c *DropController) recordRejection(reason string) {
	dropsTotal.WithLabelValues(c.chartType, "rejected").Inc()
	rejectionsTotal.WithLabelValues(reason).Inc()
}

// fieldNameOf extracts the underlying column name from a dragged element. For
// axis chips the first field-typed aggregation argument wins, then the bound
// column; for catalog fields it is the descriptor name.
func fieldNameOf(el *DragElement) (string, bool) {
	if el.IsZero() {
		return "", false
	}
	if el.Assignment != nil {
		for _, arg := range el.Assignment.Args {
			if arg.Type == "field" && arg.Value != "" {
				return arg.Value, true
			}
		}
		if el.Assignment.Column != "" {
			return el.Assignment.Column, true
		}
		return "", false
	}
	if el.Descriptor.Name != "" {
		return el.Descriptor.Name, true
	}
	return "", false
}
