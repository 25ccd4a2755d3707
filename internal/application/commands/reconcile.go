package commands

import (
	"context"
	"fmt"
	"strings"

	"oot/internal/application"
	"oot/internal/application/reconcile"
	"oot/internal/domain"
)

// ReconcileResult contains the outcome of re-deriving one document
type ReconcileResult struct {
	Path    string
	Status  reconcile.Status
	Record  *domain.Record // nil when the document was ignored
	Message string
}

// ReconcileCommand forces a document to be re-derived from its declaration
type ReconcileCommand struct {
	engine Reconciler
	query  reconcile.Query
	Path   string
}

// NewReconcileCommand creates a new ReconcileCommand
func NewReconcileCommand(engine Reconciler, query reconcile.Query, path string) *ReconcileCommand {
	return &ReconcileCommand{engine: engine, query: query, Path: path}
}

// Validate checks if the reconcile operation is valid
func (c *ReconcileCommand) Validate() error {
	return application.ValidateDocumentPath("path", c.Path)
}

// Execute runs the reconcile command
func (c *ReconcileCommand) Execute(ctx context.Context) (*ReconcileResult, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}
	path := domain.NormalizePath(strings.TrimSpace(c.Path))

	res := c.engine.Reconcile(ctx, path)
	switch res.Status {
	case reconcile.StatusError:
		return nil, res.Err
	case reconcile.StatusIgnored:
		return &ReconcileResult{
			Path:    path,
			Status:  res.Status,
			Message: fmt.Sprintf("%s is not tracked", path),
		}, nil
	}

	rec, err := c.query.Record(path)
	if err != nil {
		return nil, err
	}
	msg := fmt.Sprintf("Reconciled %s: %s", path, rec.Label())
	if rec.Error != domain.ErrorNone {
		msg = fmt.Sprintf("Reconciled %s: %s", path, rec.Error.Message())
	}
	return &ReconcileResult{Path: path, Status: res.Status, Record: rec, Message: msg}, nil
}
