package main

import "sync"

// AxisFieldStore owns the ordered field lists of one panel, keyed by axis
// name. It performs no capacity validation; MaxFieldPolicy enforcement is the
// DropController's job so the two stay independently testable.
//
// Observers are notified once per mutation, so a reorder appears as one
// coherent change rather than a remove followed by an insert.
type AxisFieldStore struct {
	mu       sync.Mutex
	lists    map[string][]*FieldAssignment
	onChange func(axis string)
}

// NewAxisFieldStore creates an empty store for the given axes
func NewAxisFieldStore(axes []string) *AxisFieldStore {
	lists := make(map[string][]*FieldAssignment, len(axes))
	for _, a := range axes {
		lists[a] = nil
	}
	return &AxisFieldStore{lists: lists}
}

// OnChange registers the observer invoked after each mutation
func (s *AxisFieldStore) OnChange(fn func(axis string)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onChange = fn
}

// Add appends a new assignment built from a raw catalog field. The label
// defaults to the column name until the user edits it.
func (s *AxisFieldStore) Add(axis string, field FieldDescriptor) {
	s.mu.Lock()
	s.lists[axis] = append(s.lists[axis], &FieldAssignment{
		Column: field.Name,
		Label:  field.Name,
	})
	s.mu.Unlock()
	s.notify(axis)
}

// RemoveAt deletes the entry at index, shifting later entries left.
// Out-of-range indexes are ignored.
func (s *AxisFieldStore) RemoveAt(axis string, index int) {
	s.mu.Lock()
	list := s.lists[axis]
	if index < 0 || index >= len(list) {
		s.mu.Unlock()
		return
	}
	s.lists[axis] = append(list[:index], list[index+1:]...)
	s.mu.Unlock()
	s.notify(axis)
}

// Reorder splices the element at from out of the list and reinserts it at to.
// Elements between the two indexes shift by one position; this is not a swap.
func (s *AxisFieldStore) Reorder(axis string, from, to int) {
	s.mu.Lock()
	list := s.lists[axis]
	if from < 0 || from >= len(list) {
		s.mu.Unlock()
		return
	}
	if to < 0 {
		to = 0
	}
	if to >= len(list) {
		to = len(list) - 1
	}
	if from == to {
		s.mu.Unlock()
		return
	}
	el := list[from]
	list = append(list[:from], list[from+1:]...)
	list = append(list, nil)
	copy(list[to+1:], list[to:])
	list[to] = el
	s.lists[axis] = list
	s.mu.Unlock()
	s.notify(axis)
}

// Len returns the current field count of an axis
func (s *AxisFieldStore) Len(axis string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.lists[axis])
}

// Fields returns a copy of an axis list to avoid race conditions
func (s *AxisFieldStore) Fields(axis string) []*FieldAssignment {
	s.mu.Lock()
	defer s.mu.Unlock()
	list := s.lists[axis]
	result := make([]*FieldAssignment, len(list))
	copy(result, list)
	return result
}

// Snapshot returns copies of all non-empty axis lists
func (s *AxisFieldStore) Snapshot() map[string][]*FieldAssignment {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[string][]*FieldAssignment, len(s.lists))
	for axis, list := range s.lists {
		if len(list) == 0 {
			continue
		}
		cp := make([]*FieldAssignment, len(list))
		copy(cp, list)
		out[axis] = cp
	}
	return out
}

func (s *AxisFieldStore) notify(axis string) {
	s.mu.Lock()
	fn := s.onChange
	s.mu.Unlock()
	if fn != nil {
		fn(axis)
	}
}
