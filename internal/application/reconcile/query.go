package reconcile

import (
	"context"
	"fmt"
	"sort"

	"oot/internal/application"
	"oot/internal/domain"
	"oot/internal/hierarchy"
)

// Query is the read-only surface the engine exposes to the rest of the
// application while it runs.
type Query interface {
	Record(path string) (*domain.Record, error)
	IsAncestorOf(ancestor, path string) (bool, error)
	ErrorState(path string) (domain.ErrorKind, error)
	Errors() ([]*domain.Record, error)
	Records() ([]*domain.Record, error)
	ObjectByPath(ctx context.Context, path string) (*Object, error)
	ObjectByLink(ctx context.Context, link string) (*Object, error)
	Subscribe(fn func(hierarchy.ErrorChange)) (cancel func())
}

var _ Query = (*Engine)(nil)

// Object is a tracked document together with its record.
type Object struct {
	domain.Document
	Record *domain.Record
}

// IsDescendantOf reports whether ancestor is a strict ancestor of the object.
func (o *Object) IsDescendantOf(ancestor string) bool {
	return o.Record.IsDescendantOf(domain.NormalizePath(ancestor))
}

func (e *Engine) ensureRunning() error {
	if !e.running {
		return fmt.Errorf("engine is not running: %w", application.ErrInvalidOperation)
	}
	return nil
}

// Record returns a copy of the record for path.
func (e *Engine) Record(path string) (*domain.Record, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	if err := e.ensureRunning(); err != nil {
		return nil, err
	}
	return e.record(path)
}

func (e *Engine) record(path string) (*domain.Record, error) {
	path = domain.NormalizePath(path)
	if !e.cache.Has(path) {
		return nil, fmt.Errorf("%s: %w", path, application.ErrNotFound)
	}
	return e.cache.Get(path)
}

// IsAncestorOf reports whether ancestor appears above path in its chain.
func (e *Engine) IsAncestorOf(ancestor, path string) (bool, error) {
	rec, err := e.Record(path)
	if err != nil {
		return false, err
	}
	return rec.IsDescendantOf(domain.NormalizePath(ancestor)), nil
}

// ErrorState returns the recorded validation error of path.
func (e *Engine) ErrorState(path string) (domain.ErrorKind, error) {
	rec, err := e.Record(path)
	if err != nil {
		return domain.ErrorNone, err
	}
	return rec.Error, nil
}

// Errors returns every record with a validation error, sorted by path.
func (e *Engine) Errors() ([]*domain.Record, error) {
	all, err := e.Records()
	if err != nil {
		return nil, err
	}
	var out []*domain.Record
	for _, rec := range all {
		if rec.Error != domain.ErrorNone {
			out = append(out, rec)
		}
	}
	return out, nil
}

// Records returns copies of every record sorted by path.
func (e *Engine) Records() ([]*domain.Record, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	if err := e.ensureRunning(); err != nil {
		return nil, err
	}
	records := e.cache.Records()
	out := make([]*domain.Record, 0, len(records))
	for _, rec := range records {
		out = append(out, rec)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Path < out[j].Path })
	return out, nil
}

// ObjectByPath returns the tracked document at path.
func (e *Engine) ObjectByPath(ctx context.Context, path string) (*Object, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	if err := e.ensureRunning(); err != nil {
		return nil, err
	}

	doc, ok, err := e.docs.Stat(ctx, domain.NormalizePath(path))
	if err != nil {
		return nil, err
	}
	if !ok || e.docs.IsExcluded(doc) {
		return nil, fmt.Errorf("%s: %w", path, application.ErrNotFound)
	}
	return e.object(doc)
}

// ObjectByLink resolves a literal [[Link]] to a tracked document.
func (e *Engine) ObjectByLink(ctx context.Context, text string) (*Object, error) {
	link, err := domain.ParseLink(text)
	if err != nil {
		return nil, &application.ValidationError{Field: "link", Message: "must be a literal link in the format [[Link]]"}
	}

	e.mu.RLock()
	defer e.mu.RUnlock()
	if err := e.ensureRunning(); err != nil {
		return nil, err
	}

	doc, ok, err := e.docs.ResolveReference(ctx, link.Target, "")
	if err != nil {
		return nil, err
	}
	if !ok || e.docs.IsExcluded(doc) {
		return nil, fmt.Errorf("%s: %w", text, application.ErrNotFound)
	}
	return e.object(doc)
}

func (e *Engine) object(doc domain.Document) (*Object, error) {
	doc.Path = domain.NormalizePath(doc.Path)
	rec, err := e.record(doc.Path)
	if err != nil {
		return nil, err
	}
	return &Object{Document: doc, Record: rec}, nil
}

// Subscribe registers fn for error state changes. fn runs while the engine
// processes an event and must not call back into the engine.
func (e *Engine) Subscribe(fn func(hierarchy.ErrorChange)) (cancel func()) {
	e.mu.Lock()
	defer e.mu.Unlock()
	unsubscribe := e.cache.Subscribe(fn)
	return func() {
		e.mu.Lock()
		defer e.mu.Unlock()
		unsubscribe()
	}
}
