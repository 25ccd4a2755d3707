// Package hierarchy holds the in-memory hierarchy cache: one record per
// tracked document with its parent, children and ancestor chain.
//
// Mutators never persist. Callers batch a whole reconciliation, including
// propagation to descendants, and then flush the cache through a
// ports.StateStore.
package hierarchy

import (
	"context"
	"fmt"
	"slices"
	"sort"
	"time"

	"oot/internal/application"
	"oot/internal/domain"
)

// Initializer derives a record for a document that is not cached yet.
type Initializer func(ctx context.Context, path string) error

// ErrorChange is delivered to subscribers whenever a record's error state
// changes.
type ErrorChange struct {
	Path     string
	Previous domain.ErrorKind
	Current  domain.ErrorKind
}

// Cache maps document identity to its record.
type Cache struct {
	records     map[string]*domain.Record
	init        Initializer
	dirty       bool
	subscribers map[int]func(ErrorChange)
	nextSub     int
}

// New creates an empty cache.
func New() *Cache {
	return &Cache{
		records:     make(map[string]*domain.Record),
		subscribers: make(map[int]func(ErrorChange)),
	}
}

// FromRecords creates a cache seeded with persisted records.
func FromRecords(records map[string]*domain.Record) *Cache {
	c := New()
	c.Load(records)
	return c
}

// Load replaces every record with copies of records. Subscriptions and
// the initializer are kept.
func (c *Cache) Load(records map[string]*domain.Record) {
	c.records = make(map[string]*domain.Record, len(records))
	for path, rec := range records {
		r := rec.Clone()
		r.Path = path
		c.records[path] = r
	}
	c.dirty = false
}

// SetInitializer installs the function GetOrInitialize uses to derive
// missing records.
func (c *Cache) SetInitializer(fn Initializer) {
	c.init = fn
}

// Has reports whether a record exists for path.
func (c *Cache) Has(path string) bool {
	_, ok := c.records[path]
	return ok
}

// Len returns the number of records.
func (c *Cache) Len() int {
	return len(c.records)
}

// Get returns a copy of the record for path.
func (c *Cache) Get(path string) (*domain.Record, error) {
	rec, ok := c.records[path]
	if !ok {
		return nil, fmt.Errorf("%s: %w", path, application.ErrNotInitialized)
	}
	return rec.Clone(), nil
}

// GetOrInitialize returns the record for path, deriving it through the
// initializer when it is missing. Without an initializer, or when the
// initializer leaves nothing behind, a root record is created.
func (c *Cache) GetOrInitialize(ctx context.Context, path string) (*domain.Record, error) {
	if rec, ok := c.records[path]; ok {
		return rec.Clone(), nil
	}
	if c.init != nil {
		if err := c.init(ctx, path); err != nil {
			return nil, fmt.Errorf("initialize %s: %w", path, err)
		}
	}
	c.Initialize(path)
	return c.records[path].Clone(), nil
}

// Initialize creates a root record for path if none exists and reports
// whether it did.
func (c *Cache) Initialize(path string) bool {
	if _, ok := c.records[path]; ok {
		return false
	}
	c.records[path] = domain.NewRootRecord(path)
	c.dirty = true
	return true
}

// Put stores a copy of rec, replacing any record with the same path.
func (c *Cache) Put(rec *domain.Record) {
	c.records[rec.Path] = rec.Clone()
	c.dirty = true
}

func (c *Cache) mutate(path string, fn func(r *domain.Record)) error {
	rec, ok := c.records[path]
	if !ok {
		return fmt.Errorf("%s: %w", path, application.ErrNotInitialized)
	}
	fn(rec)
	c.dirty = true
	return nil
}

// SetParent sets or clears (parent == "") the parent pointer.
func (c *Cache) SetParent(path, parent string) error {
	return c.mutate(path, func(r *domain.Record) { r.Parent = parent })
}

// AddChild registers child under path. Adding an existing child is a no-op.
func (c *Cache) AddChild(path, child string) error {
	return c.mutate(path, func(r *domain.Record) {
		if !r.HasChild(child) {
			r.Children = append(r.Children, child)
		}
	})
}

// RemoveChild unregisters child from path.
func (c *Cache) RemoveChild(path, child string) error {
	return c.mutate(path, func(r *domain.Record) {
		r.Children = slices.DeleteFunc(r.Children, func(p string) bool { return p == child })
	})
}

// ReplaceChild swaps oldChild for newChild in place.
func (c *Cache) ReplaceChild(path, oldChild, newChild string) error {
	return c.mutate(path, func(r *domain.Record) {
		for i, p := range r.Children {
			if p == oldChild {
				r.Children[i] = newChild
			}
		}
		r.Children = uniq(r.Children)
	})
}

// SetAncestorChain replaces the ancestor chain.
func (c *Cache) SetAncestorChain(path string, chain []string) error {
	return c.mutate(path, func(r *domain.Record) { r.Chain = slices.Clone(chain) })
}

// SetLastSynced records when the record was last derived.
func (c *Cache) SetLastSynced(path string, at time.Time) error {
	return c.mutate(path, func(r *domain.Record) { r.LastSyncedAt = at })
}

// MarkSoftExcluded starts the grace period of a record. An already running
// grace period is kept.
func (c *Cache) MarkSoftExcluded(path string, at time.Time) error {
	return c.mutate(path, func(r *domain.Record) {
		if r.SoftExcludedAt.IsZero() {
			r.SoftExcludedAt = at
		}
	})
}

// ClearSoftExclusion re-includes a record.
func (c *Cache) ClearSoftExclusion(path string) error {
	return c.mutate(path, func(r *domain.Record) { r.SoftExcludedAt = time.Time{} })
}

// SetError records (or clears with domain.ErrorNone) a validation error
// and notifies subscribers when the value changes.
func (c *Cache) SetError(path string, kind domain.ErrorKind) error {
	var prev domain.ErrorKind
	err := c.mutate(path, func(r *domain.Record) {
		prev = r.Error
		r.Error = kind
	})
	if err != nil {
		return err
	}
	if prev != kind {
		c.notify(ErrorChange{Path: path, Previous: prev, Current: kind})
	}
	return nil
}

// RenameIdentity moves the record stored under oldPath to newPath and
// substitutes the identity in its own chain. References held by other
// records are left to the caller.
func (c *Cache) RenameIdentity(oldPath, newPath string) error {
	rec, ok := c.records[oldPath]
	if !ok {
		return fmt.Errorf("%s: %w", oldPath, application.ErrNotInitialized)
	}
	if oldPath == newPath {
		return nil
	}
	if _, taken := c.records[newPath]; taken {
		return fmt.Errorf("rename %s to %s: target exists: %w", oldPath, newPath, application.ErrInvalidOperation)
	}
	delete(c.records, oldPath)
	rec.Path = newPath
	rec.Chain = substitute(rec.Chain, oldPath, newPath)
	c.records[newPath] = rec
	c.dirty = true
	return nil
}

// Delete removes the record for path.
func (c *Cache) Delete(path string) {
	if _, ok := c.records[path]; ok {
		delete(c.records, path)
		c.dirty = true
	}
}

// Paths returns every cached identity in lexical order.
func (c *Cache) Paths() []string {
	paths := make([]string, 0, len(c.records))
	for p := range c.records {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	return paths
}

// Records returns copies of every record keyed by path.
func (c *Cache) Records() map[string]*domain.Record {
	out := make(map[string]*domain.Record, len(c.records))
	for p, r := range c.records {
		out[p] = r.Clone()
	}
	return out
}

// Dirty reports whether the cache changed since the last MarkClean.
func (c *Cache) Dirty() bool {
	return c.dirty
}

// MarkClean resets the dirty flag after a successful flush.
func (c *Cache) MarkClean() {
	c.dirty = false
}

// Subscribe registers fn for error state changes and returns a function
// that removes the subscription.
func (c *Cache) Subscribe(fn func(ErrorChange)) (cancel func()) {
	id := c.nextSub
	c.nextSub++
	c.subscribers[id] = fn
	return func() { delete(c.subscribers, id) }
}

func (c *Cache) notify(change ErrorChange) {
	ids := make([]int, 0, len(c.subscribers))
	for id := range c.subscribers {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	for _, id := range ids {
		c.subscribers[id](change)
	}
}

func substitute(chain []string, oldPath, newPath string) []string {
	out := slices.Clone(chain)
	for i, p := range out {
		if p == oldPath {
			out[i] = newPath
		}
	}
	return out
}

func uniq(paths []string) []string {
	seen := make(map[string]bool, len(paths))
	out := paths[:0]
	for _, p := range paths {
		if seen[p] {
			continue
		}
		seen[p] = true
		out = append(out, p)
	}
	return out
}
