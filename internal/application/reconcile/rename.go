package reconcile

import (
	"context"
	"fmt"
	"strings"

	"oot/internal/domain"
	"oot/internal/ports"
)

// onRename moves a record to its new identity, rewrites the identity in
// every descendant's chain and in the parent's children, then re-derives
// the document's own parent link.
func (e *Engine) onRename(ctx context.Context, ev domain.Event) error {
	oldPath, newPath := ev.OldPath, ev.Path
	if oldPath == "" || oldPath == newPath || !e.cache.Has(oldPath) {
		return e.onCreate(ctx, domain.Event{Kind: domain.EventCreated, Path: newPath})
	}
	if e.cache.Has(newPath) {
		// A stale record squats the new identity; the moved document wins.
		e.purge(newPath)
	}

	if err := e.cache.RenameIdentity(oldPath, newPath); err != nil {
		return err
	}
	e.cache.SubstituteInDescendants(newPath, oldPath, newPath)

	rec, err := e.cache.Get(newPath)
	if err != nil {
		return err
	}
	if rec.Parent != "" && e.cache.Has(rec.Parent) {
		if err := e.cache.ReplaceChild(rec.Parent, oldPath, newPath); err != nil {
			return err
		}
	}
	for _, child := range rec.Children {
		if !e.cache.Has(child) {
			continue
		}
		if err := e.cache.SetParent(child, newPath); err != nil {
			return err
		}
		if err := e.rewriteChildLink(ctx, child, newPath); err != nil {
			return err
		}
	}
	if rec.IsSoftExcluded() {
		if err := e.cache.ClearSoftExclusion(newPath); err != nil {
			return err
		}
	}

	return e.derive(ctx, newPath)
}

// rewriteChildLink points child's declared parent at the renamed parent
// when the store supports it and the old link no longer resolves there.
func (e *Engine) rewriteChildLink(ctx context.Context, child, parent string) error {
	rw, ok := e.docs.(ports.LinkRewriter)
	if !ok {
		return nil
	}

	value, present, err := e.docs.ReadDeclaredParent(ctx, child)
	if err != nil || !present {
		return err
	}
	link, err := domain.ParseLink(value)
	if err != nil {
		return nil
	}
	if target, found, err := e.docs.ResolveReference(ctx, link.Target, child); err == nil && found && domain.NormalizePath(target.Path) == parent {
		return nil
	}

	link.Target = e.linkTarget(ctx, parent, child)
	if err := rw.RewriteDeclaredParent(ctx, child, link); err != nil {
		return fmt.Errorf("rewrite parent link of %s: %w", child, err)
	}
	e.logger.Debug("rewrote parent link", "path", child, "link", link.String())
	return nil
}

// linkTarget returns the shortest link text that resolves from child to
// parent: the bare name when unambiguous, the full path otherwise.
func (e *Engine) linkTarget(ctx context.Context, parent, child string) string {
	name := domain.Basename(parent)
	if target, found, err := e.docs.ResolveReference(ctx, name, child); err == nil && found && domain.NormalizePath(target.Path) == parent {
		return name
	}
	return strings.TrimSuffix(parent, domain.MarkdownExt)
}
