package domain

import (
	"slices"
	"strings"
	"time"
)

// Record is the cached hierarchy entry of one tracked document.
// The cache in internal/hierarchy owns every Record; other packages only
// receive copies.
type Record struct {
	Path           string    // Identity of the document (vault-relative, slash separated)
	Parent         string    // Path of the extended document, empty for roots
	Children       []string  // Paths of documents extending this one, unique
	Chain          []string  // Ancestor chain from forest root down to and including Path
	LastSyncedAt   time.Time // Last time the record was derived from the document
	SoftExcludedAt time.Time // Zero unless the record is waiting to be purged
	Error          ErrorKind // ErrorNone after a successful validation
}

// NewRootRecord returns the record a document gets when it is first observed.
func NewRootRecord(path string) *Record {
	return &Record{
		Path:     path,
		Children: []string{},
		Chain:    []string{path},
	}
}

// Clone returns a deep copy of the record.
func (r *Record) Clone() *Record {
	if r == nil {
		return nil
	}
	c := *r
	c.Children = slices.Clone(r.Children)
	c.Chain = slices.Clone(r.Chain)
	if c.Children == nil {
		c.Children = []string{}
	}
	return &c
}

// IsRoot reports whether the record has no parent.
func (r *Record) IsRoot() bool {
	return r.Parent == ""
}

// IsSoftExcluded reports whether the record is in its grace period.
func (r *Record) IsSoftExcluded() bool {
	return !r.SoftExcludedAt.IsZero()
}

// HasChild reports whether path is registered as a direct child.
func (r *Record) HasChild(path string) bool {
	return slices.Contains(r.Children, path)
}

// ChainContains reports whether path appears in the ancestor chain,
// the record itself included.
func (r *Record) ChainContains(path string) bool {
	return slices.Contains(r.Chain, path)
}

// IsDescendantOf reports whether ancestor is a strict ancestor of the record.
func (r *Record) IsDescendantOf(ancestor string) bool {
	return ancestor != r.Path && r.ChainContains(ancestor)
}

// Depth returns the number of ancestors above the record.
func (r *Record) Depth() int {
	if len(r.Chain) == 0 {
		return 0
	}
	return len(r.Chain) - 1
}

// Label renders the chain the way it is shown to users: document names
// joined root first.
func (r *Record) Label() string {
	return FormatChain(r.Chain)
}

// FormatChain joins the base names of a chain with " > ".
func FormatChain(chain []string) string {
	names := make([]string, len(chain))
	for i, p := range chain {
		names[i] = Basename(p)
	}
	return strings.Join(names, " > ")
}
