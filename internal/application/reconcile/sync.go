package reconcile

import (
	"context"
	"fmt"
	"time"

	"oot/internal/domain"
	"oot/internal/ports"
)

// SyncStats summarizes one synchronizer pass.
type SyncStats struct {
	Documents    int // Documents listed by the store
	Tracked      int // Documents that passed the exclusion predicate
	Ignored      int
	Failed       int
	Errors       int // Tracked documents with a recorded validation error
	SoftExcluded int // Records that entered their grace period
	Purged       int
	Duration     time.Duration
}

// synchronize reconciles the whole store against the cache: every live
// document is run through the creation handler, then records without a
// live document are purged or soft-excluded according to the policy.
func (e *Engine) synchronize(ctx context.Context) (*SyncStats, error) {
	start := e.clock.Now()
	stats := &SyncStats{}

	docs, err := e.docs.ListDocuments(ctx)
	if err != nil {
		return stats, fmt.Errorf("list documents: %w", err)
	}
	stats.Documents = len(docs)

	create := e.handlers[domain.EventCreated]
	live := make(map[string]bool, len(docs))
	for _, doc := range docs {
		if err := ctx.Err(); err != nil {
			return stats, err
		}
		path := domain.NormalizePath(doc.Path)
		if e.docs.IsExcluded(doc) {
			stats.Ignored++
			continue
		}
		live[path] = true
		stats.Tracked++

		if res := create.run(ctx, domain.Event{Kind: domain.EventCreated, Path: path}); res.Status == StatusError {
			stats.Failed++
		}
	}

	now := e.clock.Now()
	for _, path := range e.cache.Paths() {
		if live[path] {
			continue
		}
		if e.shouldPurge(path, now) {
			e.purge(path)
			stats.Purged++
			continue
		}
		rec, err := e.cache.Get(path)
		if err != nil || rec.IsSoftExcluded() {
			continue
		}
		if err := e.cache.MarkSoftExcluded(path, now); err != nil {
			return stats, err
		}
		stats.SoftExcluded++
	}

	for path := range live {
		if rec, err := e.cache.Get(path); err == nil && rec.Error != domain.ErrorNone {
			stats.Errors++
		}
	}

	stats.Duration = e.clock.Now().Sub(start)
	e.logger.Info("synchronized",
		"documents", stats.Documents,
		"tracked", stats.Tracked,
		"errors", stats.Errors,
		"soft_excluded", stats.SoftExcluded,
		"purged", stats.Purged,
	)
	return stats, nil
}

// shouldPurge reports whether a record without a live document is due for
// deletion at now.
func (e *Engine) shouldPurge(path string, now time.Time) bool {
	if e.settings.DeletionPolicy == domain.DeletionImmediate {
		return true
	}
	rec, err := e.cache.Get(path)
	if err != nil || !rec.IsSoftExcluded() {
		return false
	}
	return now.Sub(rec.SoftExcludedAt) > e.settings.SoftExclusionGrace
}

// migrateProperty moves the parent declaration of every linked document to
// the configured field name when it differs from the one the persisted
// records were built with.
func (e *Engine) migrateProperty(ctx context.Context) error {
	from, to := e.loadedProperty, e.settings.PropertyName
	if from == "" || from == to {
		return nil
	}
	renamer, ok := e.docs.(ports.FieldRenamer)
	if !ok {
		e.logger.Warn("document store cannot rename fields; keeping documents as they are", "from", from, "to", to)
		e.loadedProperty = to
		e.stateDirty = true
		return nil
	}

	for _, path := range e.cache.Paths() {
		rec, err := e.cache.Get(path)
		if err != nil || rec.Parent == "" || rec.IsSoftExcluded() {
			continue
		}
		if err := renamer.RenameDeclaredField(ctx, path, from, to); err != nil {
			return fmt.Errorf("rename %s to %s in %s: %w", from, to, path, err)
		}
	}
	e.logger.Info("renamed parent property", "from", from, "to", to)
	e.loadedProperty = to
	e.stateDirty = true
	return nil
}
