package domain

import "time"

// DeletionPolicy selects what happens to a record whose document disappears.
type DeletionPolicy string

const (
	// DeletionSoft keeps a record the synchronizer finds without a tracked
	// document for a grace period before purging it. Delete events always
	// purge.
	DeletionSoft DeletionPolicy = "soft"
	// DeletionImmediate purges such a record on the pass that finds it.
	DeletionImmediate DeletionPolicy = "immediate"
)

// Settings are the engine parameters that shape derived state.
type Settings struct {
	PropertyName       string         // Metadata field declaring the parent
	IgnoredFolders     []string       // Folder prefixes excluded from tracking
	MinSyncInterval    time.Duration  // Change throttle, 0 disables it
	SoftExclusionGrace time.Duration  // Grace period before purging soft-excluded records
	DeletionPolicy     DeletionPolicy // How disappearing documents are handled
}

// DefaultSettings mirrors the out-of-the-box configuration.
func DefaultSettings() Settings {
	return Settings{
		PropertyName:       "extends",
		IgnoredFolders:     []string{},
		MinSyncInterval:    0,
		SoftExclusionGrace: 14 * 24 * time.Hour,
		DeletionPolicy:     DeletionSoft,
	}
}

// State is everything persisted between runs: the settings snapshot the
// records were derived with and the records themselves.
type State struct {
	PropertyName   string
	IgnoredFolders []string
	Files          map[string]*Record
}

// NewState returns an empty state for the given settings.
func NewState(s Settings) *State {
	return &State{
		PropertyName:   s.PropertyName,
		IgnoredFolders: append([]string{}, s.IgnoredFolders...),
		Files:          make(map[string]*Record),
	}
}

// LoadIssue describes one persisted record that was dropped on load.
type LoadIssue struct {
	Path   string
	Reason string
}
