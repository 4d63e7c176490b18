package main

import (
	"fmt"
	"sync"
	"sync/atomic"
	"time"
)

// axesForChartType returns the droppable axis lists a chart variant exposes.
// The filter pseudo-axis is not listed; it has no axis list.
func axesForChartType(chartType string) []string {
	switch chartType {
	case ChartGeomap, ChartMaps:
		return []string{AxisLatitude, AxisLongitude, AxisWeight}
	case ChartSankey:
		return []string{AxisSource, AxisTarget, AxisValue}
	default:
		return []string{AxisX, AxisY, AxisZ, AxisBreakdown}
	}
}

// BuilderSession is one client's panel-builder state: the drag context, the
// axis lists, the filter conditions and the drop controller wired over them.
// Events for a session are applied under its lock, so a drop is never
// re-entered while another is resolving.
type BuilderSession struct {
	ID        string
	ChartType string

	mu         sync.Mutex
	ctx        *DragContext
	store      *AxisFieldStore
	controller *DropController
	filters    []FilterCondition
	notify     func(message string)
	mutations  uint64
}

// NewBuilderSession creates a session for the given chart type. notify
// receives user-facing rejection messages; it may be nil.
func NewBuilderSession(id, chartType string, notify func(string)) *BuilderSession {
	axes := axesForChartType(chartType)
	s := &BuilderSession{
		ID:        id,
		ChartType: chartType,
		ctx:       NewDragContext(),
		store:     NewAxisFieldStore(axes),
		notify:    notify,
	}
	mutators := StoreMutators(s.store, axes)
	mutators.AddFilter = s.addFilter
	s.controller = NewDropController(chartType, s.ctx, s.store, mutators, func(msg string) {
		if s.notify != nil {
			s.notify(msg)
		}
	})
	s.store.OnChange(func(string) { atomic.AddUint64(&s.mutations, 1) })
	return s
}

// Mutations returns the number of panel mutations applied so far. Transports
// compare it around HandleEvent to decide whether to push a fresh snapshot.
func (s *BuilderSession) Mutations() uint64 {
	return atomic.LoadUint64(&s.mutations)
}

// SetNotify replaces the rejection-message sink. Used when the transport for
// a session comes up after the session itself.
func (s *BuilderSession) SetNotify(fn func(message string)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.notify = fn
}

// SetFieldValidator enables catalog validation of cross-axis moves
func (s *BuilderSession) SetFieldValidator(fn func(name string) bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.controller.fieldExists = fn
}

// HandleEvent applies one drag event and returns the acknowledgement for the
// client. Unknown event types are an error; everything else succeeds, with
// rejections reported through the notify collaborator instead.
func (s *BuilderSession) HandleEvent(ev DragEvent) (DragAck, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ack := DragAck{Type: "drag_ack", Event: ev.Type}

	switch ev.Type {
	case EventDragStart:
		var el *DragElement
		if ev.Assignment != nil {
			el = &DragElement{Assignment: ev.Assignment}
		} else if ev.Field != nil {
			el = &DragElement{Descriptor: ev.Field}
		} else if d := descriptorFromRaw(ev.Raw); d != nil {
			el = &DragElement{Descriptor: d}
		}
		s.controller.OnDragStart(el, ev.SourceAxis, intOr(ev.SourceIndex, -1))
	case EventDragEnter:
		ack.SuppressDefault = s.controller.OnDragEnter(ev.Axis, intOr(ev.Index, -1))
	case EventDragOver:
		ack.SuppressDefault = s.controller.OnDragOver(ev.Axis)
	case EventDrop:
		ack.SuppressDefault = true
		s.controller.OnDrop(ev.Axis, intOr(ev.Index, -1))
	case EventDragEnd:
		s.controller.OnDragEnd()
	default:
		return ack, fmt.Errorf("unknown drag event type: %q", ev.Type)
	}

	ack.DragArea = s.ctx.CurrentDragArea
	return ack, nil
}

// addFilter is the filter-collaborator hook for drops on the "f" pseudo-axis.
// It runs under the session lock via HandleEvent.
func (s *BuilderSession) addFilter(field FieldDescriptor) {
	s.filters = append(s.filters, FilterCondition{
		Column:      field.Name,
		StreamAlias: field.StreamAlias,
	})
	atomic.AddUint64(&s.mutations, 1)
}

// Filters returns a copy of the filter conditions
func (s *BuilderSession) Filters() []FilterCondition {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.filtersLocked()
}

func (s *BuilderSession) filtersLocked() []FilterCondition {
	out := make([]FilterCondition, len(s.filters))
	copy(out, s.filters)
	return out
}

// Store exposes the axis lists for handlers and tests
func (s *BuilderSession) Store() *AxisFieldStore {
	return s.store
}

// Context exposes the drag context for handlers and tests
func (s *BuilderSession) Context() *DragContext {
	return s.ctx
}

// Snapshot returns the current panel state
func (s *BuilderSession) Snapshot() PanelState {
	return PanelState{
		Type:      "panel_state",
		SessionID: s.ID,
		ChartType: s.ChartType,
		Axes:      s.store.Snapshot(),
		Filters:   s.Filters(),
	}
}

// SessionRegistry tracks live builder sessions with a TTL sweep for sessions
// whose client went away without deleting them.
type SessionRegistry struct {
	mu        sync.Mutex
	sessions  map[string]*BuilderSession
	lastSeen  map[string]time.Time
	ttl       time.Duration
	validator func(name string) bool
}

// NewSessionRegistry creates a registry and starts its gc loop
func NewSessionRegistry(ttl time.Duration) *SessionRegistry {
	r := &SessionRegistry{
		sessions: make(map[string]*BuilderSession),
		lastSeen: make(map[string]time.Time),
		ttl:      ttl,
	}
	go r.gc()
	return r
}

// SetFieldValidator sets the catalog validator applied to every new session
func (r *SessionRegistry) SetFieldValidator(fn func(name string) bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.validator = fn
}

// Create registers a new session under a generated ID
func (r *SessionRegistry) Create(chartType string, notify func(string)) *BuilderSession {
	s := NewBuilderSession(generateID(), chartType, notify)
	r.mu.Lock()
	if r.validator != nil {
		s.SetFieldValidator(r.validator)
	}
	r.sessions[s.ID] = s
	r.lastSeen[s.ID] = time.Now()
	activeSessionsGauge.Set(float64(len(r.sessions)))
	r.mu.Unlock()
	LogInfo("Builder session created", map[string]interface{}{
		"session_id": s.ID,
		"chart_type": chartType,
	})
	return s
}

// Get returns a session and refreshes its TTL
func (r *SessionRegistry) Get(id string) (*BuilderSession, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.sessions[id]
	if ok {
		r.lastSeen[id] = time.Now()
	}
	return s, ok
}

// Delete removes a session
func (r *SessionRegistry) Delete(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.sessions, id)
	delete(r.lastSeen, id)
	activeSessionsGauge.Set(float64(len(r.sessions)))
}

// List returns all live sessions
func (r *SessionRegistry) List() []*BuilderSession {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*BuilderSession, 0, len(r.sessions))
	for _, s := range r.sessions {
		out = append(out, s)
	}
	return out
}

// ClearAll drops every session
func (r *SessionRegistry) ClearAll() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sessions = make(map[string]*BuilderSession)
	r.lastSeen = make(map[string]time.Time)
	activeSessionsGauge.Set(0)
}

// gc sweeps sessions idle past the TTL
func (r *SessionRegistry) gc() {
	for {
		time.Sleep(time.Minute)
		r.mu.Lock()
		now := time.Now()
		for id, seen := range r.lastSeen {
			if now.Sub(seen) > r.ttl {
				delete(r.sessions, id)
				delete(r.lastSeen, id)
				LogInfo("Builder session expired", map[string]interface{}{
					"session_id": id,
				})
			}
		}
		activeSessionsGauge.Set(float64(len(r.sessions)))
		r.mu.Unlock()
	}
}

func intOr(p *int, def int) int {
	if p == nil {
		return def
	}
	return *p
}
