// Package collection implements the list controller shared by every view:
// fetch a collection, show per-record pending edits, run per-record mutations
// and reconcile the list afterwards.
//
// A Controller is safe for concurrent use. Network calls never run under its
// lock, so a slow mutation on one record does not block reads, fetches or
// mutations on its siblings.
package collection

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"printshop/internal/apperr"
	"printshop/internal/logging"
	"printshop/internal/model"
	"printshop/internal/statemap"
)

var (
	// ErrInFlight is returned when a record already has a mutation outstanding.
	ErrInFlight = errors.New("operation already in progress")
	// ErrCancelled is returned when the user declines a confirmation.
	ErrCancelled = errors.New("cancelled")
	// ErrClosed is returned once the view owning the controller is gone.
	ErrClosed = errors.New("view closed")
)

// Policy decides how the collection is reconciled after a successful mutation.
type Policy int

const (
	// PolicyRemove drops the record locally without a re-fetch.
	PolicyRemove Policy = iota
	// PolicyRefetch issues exactly one full re-fetch.
	PolicyRefetch
	// PolicyResetPending clears only the record's pending value.
	PolicyResetPending
)

func (p Policy) String() string {
	switch p {
	case PolicyRemove:
		return "remove"
	case PolicyRefetch:
		return "refetch"
	case PolicyResetPending:
		return "reset-pending"
	default:
		return fmt.Sprintf("policy(%d)", int(p))
	}
}

// FetchFunc loads the whole collection.
type FetchFunc[R model.Record] func(ctx context.Context) ([]R, error)

// Mutation describes one per-record write.
type Mutation[P any] struct {
	Name   string
	Policy Policy
	// Validate runs before any network call. A non-nil error stops the
	// mutation. hasPending reports whether the user entered anything.
	Validate func(pending P, hasPending bool) error
	// Do performs the remote write.
	Do func(ctx context.Context, id string, pending P) error
}

// DuplicateIDError reports a fetch response that names the same record twice.
type DuplicateIDError struct {
	ID string
}

func (e *DuplicateIDError) Error() string {
	return fmt.Sprintf("response contains duplicate record id %q", e.ID)
}

// Kind marks malformed responses as remote failures.
func (e *DuplicateIDError) Kind() apperr.Kind { return apperr.KindRemote }

// Controller holds one collection of records plus their transient state.
type Controller[R model.Record, P any] struct {
	name  string
	fetch FetchFunc[R]
	log   *logging.Logger
	state *statemap.Store[P]

	mu      sync.Mutex
	records []R
	index   map[string]int
	err     error
	loading bool
	loaded  bool
	seq     uint64
	closed  bool
}

// New creates a controller. name shows up in logs.
func New[R model.Record, P any](name string, fetch FetchFunc[R]) *Controller[R, P] {
	return &Controller[R, P]{
		name:  name,
		fetch: fetch,
		log:   logging.Get(logging.CategoryView).With("view", name),
		state: statemap.New[P](),
		index: make(map[string]int),
	}
}

// Name returns the controller's name.
func (c *Controller[R, P]) Name() string { return c.name }

// Fetch loads the collection. Only the response to the most recently issued
// fetch is applied; older responses are dropped. On failure the previous
// records stay and Err reports the failure.
func (c *Controller[R, P]) Fetch(ctx context.Context) error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return ErrClosed
	}
	c.seq++
	seq := c.seq
	c.loading = true
	c.mu.Unlock()

	timer := logging.StartTimer(logging.CategoryView, c.name+".Fetch")
	records, err := c.fetch(ctx)
	timer.Stop()
	if err == nil {
		err = checkUnique(records)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		c.log.Debug("Discarding fetch #%d: view closed", seq)
		return ErrClosed
	}
	if seq != c.seq {
		c.log.Debug("Discarding stale fetch #%d (latest #%d)", seq, c.seq)
		return nil
	}
	c.loading = false
	if err != nil {
		c.err = err
		c.log.Warn("Fetch failed: %v", err)
		return err
	}

	c.records = records
	c.index = make(map[string]int, len(records))
	keep := make(map[string]struct{}, len(records))
	for i, r := range records {
		c.index[r.RecordID()] = i
		keep[r.RecordID()] = struct{}{}
	}
	c.err = nil
	c.loaded = true
	if n := c.state.Retain(keep); n > 0 {
		c.log.Debug("Evicted transient state for %d vanished records", n)
	}
	c.log.Debug("Fetched %d records", len(records))
	return nil
}

func checkUnique[R model.Record](records []R) error {
	seen := make(map[string]struct{}, len(records))
	for _, r := range records {
		id := r.RecordID()
		if _, dup := seen[id]; dup {
			return &DuplicateIDError{ID: id}
		}
		seen[id] = struct{}{}
	}
	return nil
}

// Submit runs m against record id. Validation failures and a record already
// in flight return before any network call. On failure the persisted record
// and its pending value are untouched and the error is kept for RecordErr.
func (c *Controller[R, P]) Submit(ctx context.Context, id string, m Mutation[P]) error {
	pending, err := c.precheck(id, m)
	if err != nil {
		return err
	}

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return ErrClosed
	}
	if !c.state.Begin(id) {
		c.mu.Unlock()
		return ErrInFlight
	}
	c.mu.Unlock()

	c.log.Debug("%s %s started", m.Name, id)
	err = m.Do(ctx, id, pending)

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		c.log.Debug("%s %s finished after close; result discarded", m.Name, id)
		return ErrClosed
	}
	if err != nil {
		c.state.Fail(id, err)
		c.mu.Unlock()
		c.log.Warn("%s %s failed: %v", m.Name, id, err)
		return err
	}

	switch m.Policy {
	case PolicyRemove:
		c.removeLocked(id)
		c.state.Evict(id)
	case PolicyResetPending, PolicyRefetch:
		c.state.ClearPending(id)
		c.state.End(id)
	}
	c.mu.Unlock()
	c.log.Debug("%s %s succeeded (policy=%s)", m.Name, id, m.Policy)

	if m.Policy == PolicyRefetch {
		if err := c.Fetch(ctx); err != nil && !errors.Is(err, ErrClosed) {
			c.log.Warn("Re-fetch after %s failed: %v", m.Name, err)
		}
	}
	return nil
}

// Confirmer asks the user to approve a destructive or irreversible action.
type Confirmer interface {
	Confirm(ctx context.Context, prompt string) (bool, error)
}

// ConfirmFunc adapts a function to Confirmer.
type ConfirmFunc func(ctx context.Context, prompt string) (bool, error)

// Confirm implements Confirmer.
func (f ConfirmFunc) Confirm(ctx context.Context, prompt string) (bool, error) {
	return f(ctx, prompt)
}

// Always approves without asking.
var Always Confirmer = ConfirmFunc(func(context.Context, string) (bool, error) { return true, nil })

// Confirm gates m behind confirmer. A nil confirmer counts as a decline.
// Declining returns ErrCancelled and changes nothing.
func (c *Controller[R, P]) Confirm(ctx context.Context, id, prompt string, confirmer Confirmer, m Mutation[P]) error {
	if _, err := c.precheck(id, m); err != nil {
		return err
	}

	if confirmer == nil {
		return ErrCancelled
	}
	ok, err := confirmer.Confirm(ctx, prompt)
	if err != nil {
		return fmt.Errorf("confirmation failed: %w", err)
	}
	if !ok {
		c.log.Debug("%s %s declined", m.Name, id)
		return ErrCancelled
	}
	return c.Submit(ctx, id, m)
}

// precheck rejects a mutation that cannot start: closed controller, record
// already in flight, or failed validation. Validate runs without the lock so
// it may read the controller.
func (c *Controller[R, P]) precheck(id string, m Mutation[P]) (P, error) {
	var zero P
	if c.Closed() {
		return zero, ErrClosed
	}
	if c.state.InFlight(id) {
		return zero, ErrInFlight
	}
	pending, has := c.state.Pending(id)
	if m.Validate != nil {
		if err := m.Validate(pending, has); err != nil {
			if c.has(id) {
				c.state.Reject(id, err)
			}
			c.log.Debug("%s %s rejected: %v", m.Name, id, err)
			return zero, err
		}
	}
	return pending, nil
}

func (c *Controller[R, P]) has(id string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.index[id]
	return ok
}

func (c *Controller[R, P]) removeLocked(id string) {
	i, ok := c.index[id]
	if !ok {
		return
	}
	records := make([]R, 0, len(c.records)-1)
	records = append(records, c.records[:i]...)
	records = append(records, c.records[i+1:]...)
	c.records = records
	c.index = make(map[string]int, len(records))
	for j, r := range records {
		c.index[r.RecordID()] = j
	}
}

// SetPending records an unsaved edit for id. A validation error left by an
// earlier attempt is cleared; remote failures stay until the next attempt.
func (c *Controller[R, P]) SetPending(id string, v P) {
	c.state.SetPending(id, v)
	c.state.ClearErr(id, apperr.IsValidation)
}

// Value returns the unsaved edit for id, or persisted when there is none.
func (c *Controller[R, P]) Value(id string, persisted P) P {
	return c.state.Value(id, persisted)
}

// ClearPending drops the unsaved edit for id.
func (c *Controller[R, P]) ClearPending(id string) {
	c.state.ClearPending(id)
}

// Pending returns the unsaved edit for id.
func (c *Controller[R, P]) Pending(id string) (P, bool) {
	return c.state.Pending(id)
}

// InFlight reports whether id has a mutation outstanding.
func (c *Controller[R, P]) InFlight(id string) bool {
	return c.state.InFlight(id)
}

// RecordErr returns the last error scoped to id.
func (c *Controller[R, P]) RecordErr(id string) error {
	return c.state.Err(id)
}

// Records returns a copy of the collection in server order.
func (c *Controller[R, P]) Records() []R {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]R, len(c.records))
	copy(out, c.records)
	return out
}

// Get returns the record with id.
func (c *Controller[R, P]) Get(id string) (R, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	i, ok := c.index[id]
	if !ok {
		var zero R
		return zero, false
	}
	return c.records[i], true
}

// Len returns the number of records.
func (c *Controller[R, P]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.records)
}

// Err returns the collection-level error from the last applied fetch.
func (c *Controller[R, P]) Err() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.err
}

// SetErr replaces the collection-level error. Views use it for failures
// detected before a fetch is issued.
func (c *Controller[R, P]) SetErr(err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.err = err
}

// Loading reports whether the latest fetch is still outstanding.
func (c *Controller[R, P]) Loading() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.loading
}

// Loaded reports whether any fetch has succeeded.
func (c *Controller[R, P]) Loaded() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.loaded
}

// Close dismantles the controller. Outstanding calls finish but their results
// are discarded and further calls return ErrClosed.
func (c *Controller[R, P]) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.closed = true
	c.loading = false
	c.state.Reset()
	c.log.Debug("Closed")
}

// Closed reports whether Close has been called.
func (c *Controller[R, P]) Closed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closed
}
