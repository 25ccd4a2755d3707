package commands

import (
	"context"
	"fmt"
	"strings"

	"oot/internal/application"
	"oot/internal/application/reconcile"
)

// AncestorsCommand lists the ancestors of a document, nearest first
type AncestorsCommand struct {
	query reconcile.Query
	Path  string
}

// NewAncestorsCommand creates a new AncestorsCommand
func NewAncestorsCommand(query reconcile.Query, path string) *AncestorsCommand {
	return &AncestorsCommand{query: query, Path: path}
}

// Validate checks if the operation is valid
func (c *AncestorsCommand) Validate() error {
	return application.ValidateDocumentPath("path", c.Path)
}

// Execute runs the ancestors command
func (c *AncestorsCommand) Execute(ctx context.Context) ([]string, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}
	rec, err := c.query.Record(strings.TrimSpace(c.Path))
	if err != nil {
		return nil, err
	}
	ancestors := make([]string, 0, rec.Depth())
	for i := len(rec.Chain) - 2; i >= 0; i-- {
		ancestors = append(ancestors, rec.Chain[i])
	}
	return ancestors, nil
}

// IsAncestorResult contains the answer of an ancestry check
type IsAncestorResult struct {
	Ancestor   string
	Path       string
	IsAncestor bool
	Message    string
}

// IsAncestorCommand checks whether one document is an ancestor of another
type IsAncestorCommand struct {
	query        reconcile.Query
	AncestorPath string
	Path         string
}

// NewIsAncestorCommand creates a new IsAncestorCommand
func NewIsAncestorCommand(query reconcile.Query, ancestor, path string) *IsAncestorCommand {
	return &IsAncestorCommand{query: query, AncestorPath: ancestor, Path: path}
}

// Validate checks if the operation is valid
func (c *IsAncestorCommand) Validate() error {
	if err := application.ValidateDocumentPath("ancestorPath", c.AncestorPath); err != nil {
		return err
	}
	return application.ValidateDocumentPath("path", c.Path)
}

// Execute runs the ancestry check
func (c *IsAncestorCommand) Execute(ctx context.Context) (*IsAncestorResult, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}
	ancestor, path := strings.TrimSpace(c.AncestorPath), strings.TrimSpace(c.Path)
	ok, err := c.query.IsAncestorOf(ancestor, path)
	if err != nil {
		return nil, err
	}
	verb := "is not"
	if ok {
		verb = "is"
	}
	return &IsAncestorResult{
		Ancestor:   ancestor,
		Path:       path,
		IsAncestor: ok,
		Message:    fmt.Sprintf("%s %s an ancestor of %s", ancestor, verb, path),
	}, nil
}
