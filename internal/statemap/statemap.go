// Package statemap keeps transient per-record UI state: a pending (unsaved)
// value, an in-flight flag and the last record-scoped error.
//
// The map is keyed by record id. A missing key means "no pending edit and not
// in flight", so absent and zero entries are indistinguishable to callers.
// Operations on one key never touch another.
package statemap

import "sync"

// Entry is the state of one record.
type Entry[V any] struct {
	Pending    V
	HasPending bool
	InFlight   bool
	Err        error
}

func (e Entry[V]) empty() bool {
	return !e.HasPending && !e.InFlight && e.Err == nil
}

// Store is a concurrency-safe map of record id to Entry.
type Store[V any] struct {
	mu      sync.Mutex
	entries map[string]Entry[V]
}

// New returns an empty store.
func New[V any]() *Store[V] {
	return &Store[V]{entries: make(map[string]Entry[V])}
}

// Entry returns a copy of the entry for id.
func (s *Store[V]) Entry(id string) Entry[V] {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.entries[id]
}

// SetPending records an unsaved value for id.
func (s *Store[V]) SetPending(id string, v V) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e := s.entries[id]
	e.Pending = v
	e.HasPending = true
	s.entries[id] = e
}

// Pending returns the unsaved value for id, if any.
func (s *Store[V]) Pending(id string) (V, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e := s.entries[id]
	return e.Pending, e.HasPending
}

// Value returns the pending value for id, or persisted when there is none.
func (s *Store[V]) Value(id string, persisted V) V {
	if v, ok := s.Pending(id); ok {
		return v
	}
	return persisted
}

// ClearPending drops the unsaved value for id.
func (s *Store[V]) ClearPending(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.entries[id]
	if !ok {
		return
	}
	var zero V
	e.Pending = zero
	e.HasPending = false
	s.put(id, e)
}

// Begin marks id in flight and clears its error. It returns false if id was
// already in flight.
func (s *Store[V]) Begin(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	e := s.entries[id]
	if e.InFlight {
		return false
	}
	e.InFlight = true
	e.Err = nil
	s.entries[id] = e
	return true
}

// End clears the in-flight flag after a successful mutation.
func (s *Store[V]) End(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.entries[id]
	if !ok {
		return
	}
	e.InFlight = false
	s.put(id, e)
}

// Fail clears the in-flight flag and records err. The pending value is kept.
func (s *Store[V]) Fail(id string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e := s.entries[id]
	e.InFlight = false
	e.Err = err
	s.put(id, e)
}

// Reject records err for id without touching its in-flight flag. Used for
// failures detected before a mutation starts.
func (s *Store[V]) Reject(id string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e := s.entries[id]
	e.Err = err
	s.put(id, e)
}

// ClearErr drops id's error when match reports true for it. A nil match
// clears any error.
func (s *Store[V]) ClearErr(id string, match func(error) bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.entries[id]
	if !ok || e.Err == nil {
		return
	}
	if match != nil && !match(e.Err) {
		return
	}
	e.Err = nil
	s.put(id, e)
}

// InFlight reports whether a mutation for id is outstanding.
func (s *Store[V]) InFlight(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.entries[id].InFlight
}

// Err returns the last record-scoped error for id.
func (s *Store[V]) Err(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.entries[id].Err
}

// Evict removes all state for id.
func (s *Store[V]) Evict(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, id)
}

// Retain evicts entries whose id is not in keep. In-flight entries survive so
// their completion still has somewhere to land. It returns the number evicted.
func (s *Store[V]) Retain(keep map[string]struct{}) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for id, e := range s.entries {
		if _, ok := keep[id]; ok || e.InFlight {
			continue
		}
		delete(s.entries, id)
		n++
	}
	return n
}

// Len returns the number of records with state.
func (s *Store[V]) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

// Reset drops every entry.
func (s *Store[V]) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = make(map[string]Entry[V])
}

// put stores e, or deletes the key when e carries no state.
func (s *Store[V]) put(id string, e Entry[V]) {
	if e.empty() {
		delete(s.entries, id)
		return
	}
	s.entries[id] = e
}
