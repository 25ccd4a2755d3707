package reconcile

import (
	"context"
	"fmt"
	"slices"

	"oot/internal/domain"
)

// onCreate makes sure a record exists for a newly observed document and
// re-derives it when the document changed since it was last derived.
func (e *Engine) onCreate(ctx context.Context, ev domain.Event) error {
	if !e.cache.Has(ev.Path) {
		return e.derive(ctx, ev.Path)
	}

	rec, err := e.cache.Get(ev.Path)
	if err != nil {
		return err
	}
	if rec.IsSoftExcluded() {
		if err := e.cache.ClearSoftExclusion(ev.Path); err != nil {
			return err
		}
		e.logger.Debug("re-included document", "path", ev.Path)
	}

	doc, ok, err := e.docs.Stat(ctx, ev.Path)
	if err != nil {
		return fmt.Errorf("stat %s: %w", ev.Path, err)
	}
	if rec.LastSyncedAt.IsZero() || (ok && doc.ModTime.After(rec.LastSyncedAt)) {
		return e.derive(ctx, ev.Path)
	}
	return nil
}

// derive reads the declared parent of path, validates it and updates the
// cache. A rejected parent demotes the document to a root with a recorded
// error and clears the malformed declaration in the store.
func (e *Engine) derive(ctx context.Context, path string) error {
	if e.deriving[path] {
		return nil
	}
	e.deriving[path] = true
	defer delete(e.deriving, path)

	// The placeholder lets a candidate parent that extends this document
	// see it as a root while it is being derived, which ends the recursion
	// and turns the loop into a CyclicHierarchy error.
	e.cache.Initialize(path)

	parent, kind, err := e.validateParent(ctx, path)
	if err != nil {
		return err
	}
	if kind != domain.ErrorNone {
		return e.demote(ctx, path, kind)
	}
	if err := e.attach(path, parent); err != nil {
		return err
	}
	if err := e.cache.SetError(path, domain.ErrorNone); err != nil {
		return err
	}
	return e.cache.SetLastSynced(path, e.syncedAt(ctx, path))
}

// validateParent resolves the declared parent of path. It returns the
// parent's identity, or an error kind when the declaration is rejected.
// An empty parent with ErrorNone means the document is a root.
func (e *Engine) validateParent(ctx context.Context, path string) (string, domain.ErrorKind, error) {
	value, ok, err := e.docs.ReadDeclaredParent(ctx, path)
	if err != nil {
		return "", domain.ErrorNone, fmt.Errorf("read parent of %s: %w", path, err)
	}
	if !ok || domain.IsEmptyValue(value) {
		return "", domain.ErrorNone, nil
	}

	link, err := domain.ParseLink(value)
	if err != nil {
		return "", domain.ErrorInvalidLinkFormat, nil
	}

	target, found, err := e.docs.ResolveReference(ctx, link.Target, path)
	if err != nil {
		return "", domain.ErrorNone, fmt.Errorf("resolve %q from %s: %w", link.Target, path, err)
	}
	target.Path = domain.NormalizePath(target.Path)
	switch {
	case found && target.Path == path:
		return "", domain.ErrorSelfReference, nil
	case !found:
		return "", domain.ErrorParentNotFound, nil
	case e.docs.IsExcluded(target):
		return "", domain.ErrorParentIgnored, nil
	}

	parent, err := e.cache.GetOrInitialize(ctx, target.Path)
	if err != nil {
		return "", domain.ErrorNone, err
	}
	// The parent's chain was validated when it was computed, so finding
	// path in it is the only way accepting it could close a cycle.
	if parent.ChainContains(path) {
		return "", domain.ErrorCyclicHierarchy, nil
	}
	return target.Path, domain.ErrorNone, nil
}

// attach links path under parent ("" for root), moving it away from any
// previous parent, and propagates the new chain to its descendants when
// it changed.
func (e *Engine) attach(path, parent string) error {
	rec, err := e.cache.Get(path)
	if err != nil {
		return err
	}

	if rec.Parent != parent {
		if err := e.detach(rec); err != nil {
			return err
		}
		if err := e.cache.SetParent(path, parent); err != nil {
			return err
		}
	}

	chain := []string{path}
	if parent != "" {
		if err := e.cache.AddChild(parent, path); err != nil {
			return err
		}
		parentRec, err := e.cache.Get(parent)
		if err != nil {
			return err
		}
		chain = append(slices.Clone(parentRec.Chain), path)
	}

	if slices.Equal(rec.Chain, chain) {
		return nil
	}
	if err := e.cache.SetAncestorChain(path, chain); err != nil {
		return err
	}
	visited := e.cache.PropagateChain(path)
	if len(visited) > 0 {
		e.logger.Debug("propagated ancestor chain", "path", path, "descendants", len(visited))
	}
	return nil
}

// detach removes rec from its parent's children.
func (e *Engine) detach(rec *domain.Record) error {
	if rec.Parent == "" || !e.cache.Has(rec.Parent) {
		return nil
	}
	return e.cache.RemoveChild(rec.Parent, rec.Path)
}

// demote turns path into a root with a recorded error and clears the
// rejected declaration from the document.
func (e *Engine) demote(ctx context.Context, path string, kind domain.ErrorKind) error {
	if err := e.attach(path, ""); err != nil {
		return err
	}
	if err := e.cache.SetError(path, kind); err != nil {
		return err
	}
	e.logger.Warn(kind.Message(), "path", path, "error", kind.String())

	clearErr := e.docs.ClearDeclaredParent(ctx, path)
	if err := e.cache.SetLastSynced(path, e.syncedAt(ctx, path)); err != nil {
		return err
	}
	if clearErr != nil {
		return fmt.Errorf("clear parent of %s: %w", path, clearErr)
	}
	return nil
}
