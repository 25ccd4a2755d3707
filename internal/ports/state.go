package ports

import (
	"context"

	"oot/internal/domain"
)

// StateStore persists the hierarchy cache between runs.
type StateStore interface {
	// Load returns the persisted state. Entries that fail validation are
	// dropped individually and reported as issues; a missing state is not
	// an error and yields (nil, nil, nil).
	Load(ctx context.Context) (*domain.State, []domain.LoadIssue, error)

	// Save replaces the persisted state.
	Save(ctx context.Context, state *domain.State) error

	Close() error
}
