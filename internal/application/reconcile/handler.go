package reconcile

import (
	"context"
	"fmt"

	"oot/internal/application"
	"oot/internal/domain"
)

// Status is the outcome of handling one event.
type Status string

const (
	StatusOK      Status = "ok"
	StatusIgnored Status = "ignored"
	StatusError   Status = "error"
)

// Result is returned for every handled event. Err is set only for
// StatusError.
type Result struct {
	Status Status
	Err    error
}

type reconcileFunc func(ctx context.Context, ev domain.Event) error

// Handler wraps one reconciliation algorithm: it filters excluded
// documents, isolates failures and flushes the cache after success.
type Handler struct {
	engine *Engine
	kind   domain.EventKind
	impl   reconcileFunc
}

func newHandler(e *Engine, kind domain.EventKind, impl reconcileFunc) *Handler {
	return &Handler{engine: e, kind: kind, impl: impl}
}

// Execute runs the handler and persists the cache on success.
func (h *Handler) Execute(ctx context.Context, ev domain.Event) Result {
	res := h.run(ctx, ev)
	if res.Status != StatusOK {
		return res
	}
	if err := h.engine.flush(ctx); err != nil {
		return h.fail(ev, err)
	}
	return res
}

// run executes the algorithm without flushing. The synchronizer uses it to
// batch a whole pass into one flush.
func (h *Handler) run(ctx context.Context, ev domain.Event) (res Result) {
	ev.Path = domain.NormalizePath(ev.Path)
	if ev.OldPath != "" {
		ev.OldPath = domain.NormalizePath(ev.OldPath)
	}

	doc, err := h.resolve(ctx, ev)
	if err != nil {
		return h.fail(ev, err)
	}
	if doc == nil || h.engine.docs.IsExcluded(*doc) {
		return Result{Status: StatusIgnored}
	}

	defer func() {
		if r := recover(); r != nil {
			res = h.fail(ev, fmt.Errorf("panic: %v", r))
		}
	}()

	if err := h.impl(ctx, ev); err != nil {
		return h.fail(ev, err)
	}
	return Result{Status: StatusOK}
}

// resolve returns the affected document, or nil when it vanished before
// the event could be processed. Deleted documents are described by path
// alone.
func (h *Handler) resolve(ctx context.Context, ev domain.Event) (*domain.Document, error) {
	if ev.Path == "" || ev.Path == "." {
		return nil, &application.ValidationError{Field: "path", Message: "path is required"}
	}
	if h.kind == domain.EventDeleted {
		return &domain.Document{Path: ev.Path}, nil
	}
	doc, ok, err := h.engine.docs.Stat(ctx, ev.Path)
	if err != nil {
		return nil, fmt.Errorf("stat %s: %w", ev.Path, err)
	}
	if !ok {
		return nil, nil
	}
	return &doc, nil
}

func (h *Handler) fail(ev domain.Event, err error) Result {
	wrapped := &application.ReconcileError{Event: h.kind.String(), Path: ev.Path, Err: err}
	h.engine.logger.Error("event failed", "event", h.kind.String(), "path", ev.Path, "error", err)
	return Result{Status: StatusError, Err: wrapped}
}
