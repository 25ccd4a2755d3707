package reconcile

import (
	"context"
	"fmt"

	"oot/internal/domain"
)

// onChange re-derives an edited document, subject to the throttle.
func (e *Engine) onChange(ctx context.Context, ev domain.Event) error {
	if !e.cache.Has(ev.Path) {
		// Never observed: initialization derives it.
		_, err := e.cache.GetOrInitialize(ctx, ev.Path)
		return err
	}

	rec, err := e.cache.Get(ev.Path)
	if err != nil {
		return err
	}
	doc, ok, err := e.docs.Stat(ctx, ev.Path)
	if err != nil {
		return fmt.Errorf("stat %s: %w", ev.Path, err)
	}
	if !ok || !e.shouldResync(rec, doc) {
		e.logger.Debug("change throttled", "path", ev.Path)
		return nil
	}
	return e.derive(ctx, ev.Path)
}

// shouldResync reports whether a change to doc warrants re-deriving rec:
// the document must have been modified after the last derivation, and
// with throttling enabled the minimum interval must have elapsed.
func (e *Engine) shouldResync(rec *domain.Record, doc domain.Document) bool {
	if rec.LastSyncedAt.IsZero() {
		return true
	}
	if !doc.ModTime.After(rec.LastSyncedAt) {
		return false
	}
	if e.settings.MinSyncInterval <= 0 {
		return true
	}
	return e.clock.Now().Sub(rec.LastSyncedAt) > e.settings.MinSyncInterval
}

func (e *Engine) onReconcile(ctx context.Context, ev domain.Event) error {
	if e.cache.Has(ev.Path) {
		rec, err := e.cache.Get(ev.Path)
		if err != nil {
			return err
		}
		if rec.IsSoftExcluded() {
			if err := e.cache.ClearSoftExclusion(ev.Path); err != nil {
				return err
			}
		}
	}
	return e.derive(ctx, ev.Path)
}
