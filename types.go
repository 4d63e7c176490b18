package main

import "encoding/json"

// Axis names a field can be dropped onto. The filter pseudo-axis "f" is not a
// real axis list; drops on it are routed to the filter collaborator.
const (
	AxisX         = "x"
	AxisY         = "y"
	AxisZ         = "z"
	AxisBreakdown = "breakdown"
	AxisLatitude  = "latitude"
	AxisLongitude = "longitude"
	AxisWeight    = "weight"
	AxisSource    = "source"
	AxisTarget    = "target"
	AxisValue     = "value"
	AxisFilter    = "f"
)

// SourceFieldList marks a drag that originates from the external field catalog
// rather than from an existing axis chip.
const SourceFieldList = "fieldList"

// Aggregation function names accepted on a FieldAssignment.
const (
	AggCount         = "count"
	AggCountDistinct = "count-distinct"
	AggSum           = "sum"
	AggAvg           = "avg"
	AggMin           = "min"
	AggMax           = "max"
	AggP50           = "p50"
	AggP90           = "p90"
	AggP95           = "p95"
	AggP99           = "p99"
	AggHistogram     = "histogram"
)

// FieldDescriptor is a raw field from the stream catalog
type FieldDescriptor struct {
	Name        string `json:"name"`
	StreamAlias string `json:"streamAlias"`
}

// AggregationArg is one typed argument of an aggregation function. Args of
// type "field" carry the underlying column name.
type AggregationArg struct {
	Type  string `json:"type"` // "field", "number", "string"
	Value string `json:"value"`
}

// FieldAssignment represents one field bound to an axis slot
type FieldAssignment struct {
	Column      string           `json:"column"`
	Label       string           `json:"label"`
	Aggregation *string          `json:"aggregationFunction,omitempty"`
	Args        []AggregationArg `json:"args,omitempty"`
	Color       *string          `json:"color,omitempty"`
}

// FilterCondition is a filter entry created by dropping a catalog field onto
// the filter pseudo-axis. Condition editing itself lives outside this agent.
type FilterCondition struct {
	Column      string `json:"column"`
	StreamAlias string `json:"streamAlias"`
	Operator    string `json:"operator,omitempty"`
	Value       string `json:"value,omitempty"`
}

// DragElement is the payload of a drag gesture: an existing axis chip or a raw
// catalog field, never both.
type DragElement struct {
	Assignment *FieldAssignment `json:"assignment,omitempty"`
	Descriptor *FieldDescriptor `json:"field,omitempty"`
}

// IsZero reports whether the element carries no payload at all.
func (e *DragElement) IsZero() bool {
	return e == nil || (e.Assignment == nil && e.Descriptor == nil)
}

// DragEvent types accepted on the WebSocket.
const (
	EventDragStart = "drag_start"
	EventDragEnter = "drag_enter"
	EventDragOver  = "drag_over"
	EventDrop      = "drop"
	EventDragEnd   = "drag_end"
)

// DragEvent is an inbound WebSocket message from a builder client
type DragEvent struct {
	Type        string           `json:"type"`
	SessionID   string           `json:"session_id"`
	Axis        string           `json:"axis,omitempty"`
	Index       *int             `json:"index,omitempty"`
	SourceAxis  string           `json:"source_axis,omitempty"`
	SourceIndex *int             `json:"source_index,omitempty"`
	Field       *FieldDescriptor `json:"field,omitempty"`
	Assignment  *FieldAssignment `json:"assignment,omitempty"`
	Raw         json.RawMessage  `json:"raw,omitempty"`
}

// DragAck tells the client whether to suppress the platform default for the
// event it just sent (required to allow dropping) and whether the highlighted
// drag area changed.
type DragAck struct {
	Type            string `json:"type"` // "drag_ack"
	Event           string `json:"event"`
	SuppressDefault bool   `json:"suppress_default"`
	DragArea        string `json:"drag_area,omitempty"`
}

// ErrorNotice is a fire-and-forget user-facing error pushed to the client
type ErrorNotice struct {
	Type    string `json:"type"` // "notify_error"
	Message string `json:"message"`
}

// PanelState is the snapshot broadcast after every successful mutation
type PanelState struct {
	Type      string                        `json:"type"` // "panel_state"
	SessionID string                        `json:"session_id"`
	ChartType string                        `json:"chart_type"`
	Axes      map[string][]*FieldAssignment `json:"axes"`
	Filters   []FilterCondition             `json:"filters,omitempty"`
}

// StreamSchema is one stream's field list as served by the catalog
type StreamSchema struct {
	Stream string            `json:"stream"`
	Fields []FieldDescriptor `json:"fields"`
}
