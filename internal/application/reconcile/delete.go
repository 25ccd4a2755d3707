package reconcile

import (
	"context"

	"oot/internal/domain"
)

// onDelete purges the record of a removed document. The grace period only
// applies to records the synchronizer finds without a tracked document.
func (e *Engine) onDelete(_ context.Context, ev domain.Event) error {
	if !e.cache.Has(ev.Path) {
		return nil
	}
	e.purge(ev.Path)
	return nil
}

// purge removes the record for path. Every descendant's chain is cut right
// after path, direct children become roots and the parent forgets path.
func (e *Engine) purge(path string) {
	rec, err := e.cache.Get(path)
	if err != nil {
		return
	}

	e.cache.TruncateDescendants(path, path)
	for _, child := range rec.Children {
		if e.cache.Has(child) {
			_ = e.cache.SetParent(child, "")
		}
	}
	if rec.Parent != "" && e.cache.Has(rec.Parent) {
		_ = e.cache.RemoveChild(rec.Parent, path)
	}
	e.cache.Delete(path)
	e.logger.Debug("purged record", "path", path, "children", len(rec.Children))
}
