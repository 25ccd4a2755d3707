package commands

import (
	"context"
	"fmt"
	"time"

	"oot/internal/application/reconcile"
)

// SyncResult contains the result of a synchronizer pass
type SyncResult struct {
	Stats   *reconcile.SyncStats
	Message string
}

// SyncCommand reconciles the whole vault against the cache
type SyncCommand struct {
	engine Synchronizer
}

// NewSyncCommand creates a new SyncCommand
func NewSyncCommand(engine Synchronizer) *SyncCommand {
	return &SyncCommand{engine: engine}
}

// Execute runs the sync command
func (c *SyncCommand) Execute(ctx context.Context) (*SyncResult, error) {
	stats, err := c.engine.Synchronize(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to synchronize: %w", err)
	}
	return &SyncResult{Stats: stats, Message: FormatSyncStats(stats)}, nil
}

// FormatSyncStats renders a one-line summary of a synchronizer pass.
func FormatSyncStats(s *reconcile.SyncStats) string {
	return fmt.Sprintf("Synchronized %d documents (%d tracked, %d ignored, %d with errors, %d failed, %d soft-excluded, %d purged) in %s",
		s.Documents, s.Tracked, s.Ignored, s.Errors, s.Failed, s.SoftExcluded, s.Purged, s.Duration.Round(time.Millisecond))
}
