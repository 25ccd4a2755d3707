package commands

import (
	"context"

	"oot/internal/application/reconcile"
	"oot/internal/domain"
)

// ErrorEntry is a document with a recorded validation error
type ErrorEntry struct {
	Path    string
	Kind    domain.ErrorKind
	Message string
}

// ListErrorsCommand lists every document whose declared parent was rejected
type ListErrorsCommand struct {
	query reconcile.Query
}

// NewListErrorsCommand creates a new ListErrorsCommand
func NewListErrorsCommand(query reconcile.Query) *ListErrorsCommand {
	return &ListErrorsCommand{query: query}
}

// Execute returns the entries sorted by path
func (c *ListErrorsCommand) Execute(ctx context.Context) ([]ErrorEntry, error) {
	records, err := c.query.Errors()
	if err != nil {
		return nil, err
	}
	entries := make([]ErrorEntry, 0, len(records))
	for _, rec := range records {
		entries = append(entries, ErrorEntry{
			Path:    rec.Path,
			Kind:    rec.Error,
			Message: rec.Error.Message(),
		})
	}
	return entries, nil
}
