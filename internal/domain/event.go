package domain

// EventKind is the type of a document store mutation notification.
type EventKind int

const (
	EventCreated EventKind = iota
	EventChanged
	EventRenamed
	EventDeleted
)

func (k EventKind) String() string {
	switch k {
	case EventCreated:
		return "created"
	case EventChanged:
		return "changed"
	case EventRenamed:
		return "renamed"
	case EventDeleted:
		return "deleted"
	default:
		return "unknown"
	}
}

// Event is one mutation notification. OldPath is only set for renames.
type Event struct {
	Kind    EventKind
	Path    string
	OldPath string
}
