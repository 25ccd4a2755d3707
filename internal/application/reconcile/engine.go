// Package reconcile keeps the hierarchy cache consistent with the
// document store. Mutation events are processed one at a time by typed
// handlers; the synchronizer reconciles the whole store at startup.
package reconcile

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"oot/internal/application"
	"oot/internal/domain"
	"oot/internal/hierarchy"
	"oot/internal/ports"
)

// Engine owns the hierarchy cache and serializes every mutation of it.
type Engine struct {
	mu sync.RWMutex

	docs     ports.DocumentStore
	store    ports.StateStore
	cache    *hierarchy.Cache
	settings domain.Settings
	clock    ports.Clock
	logger   *slog.Logger

	handlers map[domain.EventKind]*Handler
	rederive *Handler
	deriving map[string]bool
	running  bool

	// loadedProperty is the parent field name the persisted records were
	// derived with.
	loadedProperty string

	// stateDirty is set when settings tracked in the persisted state
	// changed without touching any record.
	stateDirty bool
}

// Option configures an Engine.
type Option func(*Engine)

// WithClock replaces the wall clock.
func WithClock(c ports.Clock) Option {
	return func(e *Engine) { e.clock = c }
}

// WithLogger sets the logger. A nil logger discards output.
func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.logger = l
		}
	}
}

// New creates an engine. Call Start before handling events.
func New(docs ports.DocumentStore, store ports.StateStore, settings domain.Settings, opts ...Option) *Engine {
	e := &Engine{
		docs:     docs,
		store:    store,
		cache:    hierarchy.New(),
		settings: settings,
		clock:    ports.SystemClock{},
		logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
		deriving: make(map[string]bool),
	}
	for _, opt := range opts {
		opt(e)
	}
	e.cache.SetInitializer(e.derive)
	if e.settings.DeletionPolicy == "" {
		e.settings.DeletionPolicy = domain.DeletionSoft
	}

	e.handlers = map[domain.EventKind]*Handler{
		domain.EventCreated: newHandler(e, domain.EventCreated, e.onCreate),
		domain.EventChanged: newHandler(e, domain.EventChanged, e.onChange),
		domain.EventRenamed: newHandler(e, domain.EventRenamed, e.onRename),
		domain.EventDeleted: newHandler(e, domain.EventDeleted, e.onDelete),
	}
	e.rederive = newHandler(e, domain.EventChanged, e.onReconcile)
	return e
}

// Start loads the persisted cache, applies settings migrations, runs the
// startup synchronizer and flushes the result. Queries are served from
// the moment Start returns.
func (e *Engine) Start(ctx context.Context) (*SyncStats, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.load(ctx); err != nil {
		return nil, err
	}
	if err := e.migrateProperty(ctx); err != nil {
		return nil, err
	}

	stats, err := e.synchronize(ctx)
	if err != nil {
		return stats, err
	}
	if err := e.flush(ctx); err != nil {
		return stats, err
	}
	e.running = true
	return stats, nil
}

// Stop flushes pending changes and stops serving queries.
func (e *Engine) Stop(ctx context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.running = false
	return e.flush(ctx)
}

// Handle processes one mutation event to completion.
func (e *Engine) Handle(ctx context.Context, ev domain.Event) Result {
	e.mu.Lock()
	defer e.mu.Unlock()

	h, ok := e.handlers[ev.Kind]
	if !ok {
		return Result{Status: StatusError, Err: fmt.Errorf("event %v: %w", ev.Kind, application.ErrInvalidOperation)}
	}
	return h.Execute(ctx, ev)
}

// Run handles events in delivery order until the channel is closed or
// ctx is cancelled. report, when set, receives every result.
func (e *Engine) Run(ctx context.Context, events <-chan domain.Event, report func(domain.Event, Result)) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case ev, ok := <-events:
			if !ok {
				return nil
			}
			res := e.Handle(ctx, ev)
			if report != nil {
				report(ev, res)
			}
		}
	}
}

// Reconcile re-derives one document, bypassing the modification time
// guard and the change throttle.
func (e *Engine) Reconcile(ctx context.Context, path string) Result {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.rederive.Execute(ctx, domain.Event{Kind: domain.EventChanged, Path: path})
}

// Synchronize reruns the startup synchronizer against the current store.
func (e *Engine) Synchronize(ctx context.Context) (*SyncStats, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	stats, err := e.synchronize(ctx)
	if err != nil {
		return stats, err
	}
	return stats, e.flush(ctx)
}

// Check verifies the cache invariants.
func (e *Engine) Check() []hierarchy.Violation {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.cache.Check()
}

// Settings returns the settings the engine runs with.
func (e *Engine) Settings() domain.Settings {
	return e.settings
}

func (e *Engine) load(ctx context.Context) error {
	state, issues, err := e.store.Load(ctx)
	if err != nil {
		return fmt.Errorf("load state: %w", err)
	}
	for _, issue := range issues {
		e.logger.Warn("dropped invalid cache entry", "path", issue.Path, "reason", issue.Reason)
	}
	if state == nil {
		state = domain.NewState(e.settings)
		e.stateDirty = true
	}

	e.cache.Load(state.Files)
	if len(issues) > 0 {
		e.stateDirty = true
	}
	for _, issue := range issues {
		if err := e.unlinkDropped(domain.NormalizePath(issue.Path)); err != nil {
			return fmt.Errorf("repair state: %w", err)
		}
	}
	if state.PropertyName == "" {
		state.PropertyName = e.settings.PropertyName
	}
	e.loadedProperty = state.PropertyName
	return nil
}

// unlinkDropped removes every reference to a persisted entry that was
// dropped on load. Records that named it as parent become roots, records
// that listed it as child forget it, and both are marked for
// re-derivation so the synchronizer links them again.
func (e *Engine) unlinkDropped(path string) error {
	if e.cache.Has(path) {
		return nil
	}
	for _, p := range e.cache.Paths() {
		rec, err := e.cache.Get(p)
		if err != nil {
			return err
		}
		touched := false
		if rec.HasChild(path) {
			if err := e.cache.RemoveChild(p, path); err != nil {
				return err
			}
			touched = true
		}
		if rec.Parent == path {
			if err := e.cache.SetParent(p, ""); err != nil {
				return err
			}
			if err := e.cache.SetAncestorChain(p, []string{p}); err != nil {
				return err
			}
			e.cache.PropagateChain(p)
			touched = true
		}
		if touched {
			if err := e.cache.SetLastSynced(p, time.Time{}); err != nil {
				return err
			}
			e.logger.Debug("unlinked dropped entry", "path", p, "dropped", path)
		}
	}
	return nil
}

func (e *Engine) flush(ctx context.Context) error {
	if !e.cache.Dirty() && !e.stateDirty {
		return nil
	}
	state := &domain.State{
		PropertyName:   e.settings.PropertyName,
		IgnoredFolders: append([]string{}, e.settings.IgnoredFolders...),
		Files:          e.cache.Records(),
	}
	if err := e.store.Save(ctx, state); err != nil {
		return fmt.Errorf("flush state: %w", err)
	}
	e.cache.MarkClean()
	e.stateDirty = false
	return nil
}

// syncedAt is the timestamp stored after deriving path: now, or the
// document's modification time if a write we just made pushed it later.
func (e *Engine) syncedAt(ctx context.Context, path string) time.Time {
	now := e.clock.Now()
	doc, ok, err := e.docs.Stat(ctx, path)
	if err != nil || !ok {
		return now
	}
	if doc.ModTime.After(now) {
		return doc.ModTime
	}
	return now
}
