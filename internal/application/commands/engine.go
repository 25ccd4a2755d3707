package commands

import (
	"context"

	"oot/internal/application/reconcile"
	"oot/internal/hierarchy"
)

// Synchronizer reruns the startup synchronizer.
type Synchronizer interface {
	Synchronize(ctx context.Context) (*reconcile.SyncStats, error)
}

// Reconciler re-derives a single document.
type Reconciler interface {
	Reconcile(ctx context.Context, path string) reconcile.Result
}

// Checker verifies the cache invariants.
type Checker interface {
	Check() []hierarchy.Violation
}

var (
	_ Synchronizer = (*reconcile.Engine)(nil)
	_ Reconciler   = (*reconcile.Engine)(nil)
	_ Checker      = (*reconcile.Engine)(nil)
)
