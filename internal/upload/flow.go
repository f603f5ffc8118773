// Package upload runs the two-step "store the file, then create the order"
// workflow and its single-call analyze variant.
//
// When the file is stored but the order cannot be created, the flow parks in
// the Orphaned state and keeps the stored reference so RetryCreate can finish
// the job without uploading again.
package upload

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"printshop/internal/apperr"
	"printshop/internal/logging"
	"printshop/internal/model"

	"github.com/oklog/ulid/v2"
)

// Variant selects the remote workflow.
type Variant int

const (
	// VariantAnalyze uploads a PDF; the service creates the order and
	// returns an AI analysis in the same call.
	VariantAnalyze Variant = iota
	// VariantUploadThenCreate uploads the file, then creates the order from
	// the returned reference.
	VariantUploadThenCreate
)

func (v Variant) String() string {
	if v == VariantAnalyze {
		return "analyze"
	}
	return "upload-then-create"
}

// Accepts reports whether the variant takes files with extension ext.
func (v Variant) Accepts(ext string) bool {
	switch strings.ToLower(ext) {
	case ".pdf":
		return true
	case ".jpg", ".jpeg", ".png":
		return v == VariantUploadThenCreate
	}
	return false
}

// State is the flow's position.
type State int

const (
	StateIdle State = iota
	StateSelected
	StateUploading
	StateCreating
	StateOrphaned
	StateDone
	StateFailed
)

var stateNames = map[State]string{
	StateIdle:      "idle",
	StateSelected:  "selected",
	StateUploading: "uploading",
	StateCreating:  "creating",
	StateOrphaned:  "orphaned",
	StateDone:      "done",
	StateFailed:    "failed",
}

func (s State) String() string {
	if n, ok := stateNames[s]; ok {
		return n
	}
	return fmt.Sprintf("state(%d)", int(s))
}

var (
	// ErrBusy is returned while an attempt is in flight.
	ErrBusy = errors.New("upload already in progress")
	// ErrNoOrphan is returned by RetryCreate when there is nothing to retry.
	ErrNoOrphan = errors.New("no orphaned upload to retry")
	// ErrClosed is returned after Close.
	ErrClosed = errors.New("upload flow closed")
)

// OrphanError reports a stored file whose order was not created.
type OrphanError struct {
	Attempt   ulid.ULID
	Reference string
	Err       error
}

func (e *OrphanError) Error() string {
	return fmt.Sprintf("upload %s stored at %s but order creation failed: %v", e.Attempt, e.Reference, e.Err)
}

func (e *OrphanError) Unwrap() error { return e.Err }

// Kind implements apperr classification.
func (e *OrphanError) Kind() apperr.Kind { return apperr.KindOrphan }

// UserMessage explains the partial success.
func (e *OrphanError) UserMessage() string {
	msg := "File uploaded, but the order was not created. Retry to finish."
	if inner := apperr.UserMessage(e.Err, ""); inner != "" {
		msg = "File uploaded, but the order was not created: " + inner
	}
	return msg
}

// Service is the remote surface the flow needs. *api.Client satisfies it.
type Service interface {
	UploadAndAnalyze(ctx context.Context, a model.Artifact) (model.UploadResult, error)
	UploadFile(ctx context.Context, a model.Artifact) (string, error)
	CreateOrder(ctx context.Context, fileURL string) error
}

// Refresher reloads the collection that shows the new order.
type Refresher interface {
	Fetch(ctx context.Context) error
}

// Result describes a completed attempt.
type Result struct {
	Attempt   ulid.ULID
	Reference string
	Analysis  *model.Analysis
}

// Flow is one upload form. At most one attempt runs at a time.
type Flow struct {
	variant Variant
	svc     Service
	refresh Refresher
	log     *logging.Logger

	mu       sync.Mutex
	state    State
	selected model.Artifact
	attempt  ulid.ULID
	orphan   *OrphanError
	result   *Result
	err      error
	closed   bool
}

// New creates a flow. refresh may be nil.
func New(variant Variant, svc Service, refresh Refresher) *Flow {
	return &Flow{
		variant: variant,
		svc:     svc,
		refresh: refresh,
		log:     logging.Get(logging.CategoryUpload).With("variant", variant.String()),
	}
}

// Variant returns the configured workflow.
func (f *Flow) Variant() Variant { return f.variant }

func (f *Flow) busyLocked() bool {
	return f.state == StateUploading || f.state == StateCreating
}

// Select chooses the artifact for the next attempt and forgets any orphan.
func (f *Flow) Select(a model.Artifact) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.closed {
		return ErrClosed
	}
	if f.busyLocked() {
		return ErrBusy
	}
	if a.IsZero() {
		return f.rejectLocked(f.missingFileError())
	}
	if !f.variant.Accepts(a.Ext()) {
		return f.rejectLocked(apperr.Validation("file", f.unsupportedMessage()))
	}
	f.discardOrphanLocked()
	f.selected = a
	f.state = StateSelected
	f.err = nil
	f.result = nil
	f.log.Debug("Selected %s (%d bytes)", a.Name, a.Size)
	return nil
}

// Reset clears selection, errors, results and any orphan.
func (f *Flow) Reset() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.busyLocked() {
		return ErrBusy
	}
	f.discardOrphanLocked()
	f.selected = model.Artifact{}
	f.state = StateIdle
	f.err = nil
	f.result = nil
	return nil
}

// Submit starts a new attempt with the selected artifact. Any orphan from a
// previous attempt is discarded first.
func (f *Flow) Submit(ctx context.Context) (Result, error) {
	f.mu.Lock()
	if f.closed {
		f.mu.Unlock()
		return Result{}, ErrClosed
	}
	if f.busyLocked() {
		f.mu.Unlock()
		return Result{}, ErrBusy
	}
	if f.selected.IsZero() {
		err := f.rejectLocked(f.missingFileError())
		f.mu.Unlock()
		return Result{}, err
	}
	f.discardOrphanLocked()
	a := f.selected
	attempt := ulid.Make()
	f.attempt = attempt
	f.state = StateUploading
	f.err = nil
	f.result = nil
	f.mu.Unlock()

	log := f.log.With("attempt", attempt.String())
	log.Info("Uploading %s", a.Name)

	if f.variant == VariantAnalyze {
		res, err := f.svc.UploadAndAnalyze(ctx, a)
		if err != nil {
			return Result{}, f.fail(attempt, err)
		}
		return f.finish(ctx, Result{Attempt: attempt, Reference: res.URL, Analysis: res.Analysis})
	}

	ref, err := f.svc.UploadFile(ctx, a)
	if err != nil {
		return Result{}, f.fail(attempt, err)
	}

	f.mu.Lock()
	if f.closed || f.attempt != attempt {
		f.mu.Unlock()
		return Result{}, ErrClosed
	}
	f.state = StateCreating
	f.mu.Unlock()
	log.Debug("Stored at %s, creating order", ref)

	return f.create(ctx, attempt, ref)
}

// RetryCreate re-sends only the order creation for the orphaned reference.
func (f *Flow) RetryCreate(ctx context.Context) (Result, error) {
	f.mu.Lock()
	if f.closed {
		f.mu.Unlock()
		return Result{}, ErrClosed
	}
	if f.busyLocked() {
		f.mu.Unlock()
		return Result{}, ErrBusy
	}
	if f.orphan == nil {
		f.mu.Unlock()
		return Result{}, ErrNoOrphan
	}
	attempt, ref := f.orphan.Attempt, f.orphan.Reference
	f.attempt = attempt
	f.state = StateCreating
	f.err = nil
	f.mu.Unlock()

	f.log.Info("Retrying order creation for %s (attempt %s)", ref, attempt)
	return f.create(ctx, attempt, ref)
}

func (f *Flow) create(ctx context.Context, attempt ulid.ULID, ref string) (Result, error) {
	if err := f.svc.CreateOrder(ctx, ref); err != nil {
		orphan := &OrphanError{Attempt: attempt, Reference: ref, Err: err}
		f.mu.Lock()
		defer f.mu.Unlock()
		if f.closed || f.attempt != attempt {
			return Result{}, ErrClosed
		}
		f.orphan = orphan
		f.err = orphan
		f.state = StateOrphaned
		f.log.Warn("Order creation failed for stored file %s: %v", ref, err)
		return Result{}, orphan
	}
	return f.finish(ctx, Result{Attempt: attempt, Reference: ref})
}

func (f *Flow) fail(attempt ulid.ULID, err error) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.closed || f.attempt != attempt {
		return ErrClosed
	}
	f.state = StateFailed
	f.err = err
	f.log.Warn("Upload failed: %v", err)
	return err
}

func (f *Flow) finish(ctx context.Context, res Result) (Result, error) {
	f.mu.Lock()
	if f.closed || f.attempt != res.Attempt {
		f.mu.Unlock()
		return Result{}, ErrClosed
	}
	f.orphan = nil
	f.selected = model.Artifact{}
	f.state = StateDone
	f.err = nil
	f.result = &res
	f.mu.Unlock()
	f.log.Info("Order created for %s", res.Reference)

	if f.refresh != nil {
		if err := f.refresh.Fetch(ctx); err != nil {
			f.log.Warn("Refresh after upload failed: %v", err)
		}
	}
	return res, nil
}

func (f *Flow) rejectLocked(err error) error {
	f.err = err
	return err
}

func (f *Flow) discardOrphanLocked() {
	if f.orphan != nil {
		f.log.Info("Discarding orphaned upload %s (%s)", f.orphan.Attempt, f.orphan.Reference)
		f.orphan = nil
	}
}

func (f *Flow) missingFileError() error {
	if f.variant == VariantAnalyze {
		return apperr.Validation("file", "Please select a PDF file.")
	}
	return apperr.Validation("file", "Please select a file to upload.")
}

func (f *Flow) unsupportedMessage() string {
	if f.variant == VariantAnalyze {
		return "Only PDF files can be analyzed."
	}
	return "Only PDF, JPEG and PNG files are accepted."
}

// State returns the current position.
func (f *Flow) State() State {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state
}

// Busy reports whether an attempt is in flight.
func (f *Flow) Busy() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.busyLocked()
}

// Selected returns the chosen artifact.
func (f *Flow) Selected() (model.Artifact, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.selected, !f.selected.IsZero()
}

// Orphan returns the pending orphan, if any.
func (f *Flow) Orphan() *OrphanError {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.orphan
}

// Result returns the last successful attempt.
func (f *Flow) Result() (Result, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.result == nil {
		return Result{}, false
	}
	return *f.result, true
}

// Err returns the error of the last attempt.
func (f *Flow) Err() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.err
}

// Message returns user-facing text for the last error, or "".
func (f *Flow) Message() string {
	err := f.Err()
	if err == nil {
		return ""
	}
	if f.variant == VariantAnalyze {
		return apperr.UserMessage(err, "Upload failed.")
	}
	return apperr.UserMessage(err, "Upload failed. Please try again.")
}

// Close discards the results of any attempt still in flight.
func (f *Flow) Close() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = true
}

// RefreshFunc adapts a function to Refresher.
type RefreshFunc func(ctx context.Context) error

// Fetch implements Refresher.
func (f RefreshFunc) Fetch(ctx context.Context) error { return f(ctx) }
