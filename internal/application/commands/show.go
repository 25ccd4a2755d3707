package commands

import (
	"context"
	"strings"

	"oot/internal/application"
	"oot/internal/application/reconcile"
	"oot/internal/domain"
)

// ShowResult describes one tracked document
type ShowResult struct {
	Record  *domain.Record
	Label   string
	Message string // User-facing notice for the recorded error, if any
}

// ShowCommand looks up the record of a document
type ShowCommand struct {
	query reconcile.Query
	Path  string
}

// NewShowCommand creates a new ShowCommand
func NewShowCommand(query reconcile.Query, path string) *ShowCommand {
	return &ShowCommand{query: query, Path: path}
}

// Validate checks if the show operation is valid
func (c *ShowCommand) Validate() error {
	return application.ValidateDocumentPath("path", c.Path)
}

// Execute runs the show command
func (c *ShowCommand) Execute(ctx context.Context) (*ShowResult, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}
	rec, err := c.query.Record(strings.TrimSpace(c.Path))
	if err != nil {
		return nil, err
	}
	return &ShowResult{
		Record:  rec,
		Label:   rec.Label(),
		Message: rec.Error.Message(),
	}, nil
}

// ObjectByLinkCommand resolves a literal [[Link]] to a tracked document
type ObjectByLinkCommand struct {
	query reconcile.Query
	Link  string
}

// NewObjectByLinkCommand creates a new ObjectByLinkCommand
func NewObjectByLinkCommand(query reconcile.Query, link string) *ObjectByLinkCommand {
	return &ObjectByLinkCommand{query: query, Link: link}
}

// Validate checks if the lookup is valid
func (c *ObjectByLinkCommand) Validate() error {
	return application.ValidateLink("link", c.Link)
}

// Execute runs the lookup
func (c *ObjectByLinkCommand) Execute(ctx context.Context) (*reconcile.Object, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c.query.ObjectByLink(ctx, strings.TrimSpace(c.Link))
}
