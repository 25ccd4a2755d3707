package commands

import (
	"context"
	"fmt"
	"sort"
	"time"

	"oot/internal/application"
	"oot/internal/application/reconcile"
	"oot/internal/domain"
	"oot/internal/hierarchy"
)

// fakeQuery serves a fixed set of records.
type fakeQuery struct {
	records map[string]*domain.Record
}

var _ reconcile.Query = (*fakeQuery)(nil)

// newFakeQuery builds R > A > B, a root X with a recorded error and a
// soft-excluded root Gone.
func newFakeQuery() *fakeQuery {
	q := &fakeQuery{records: make(map[string]*domain.Record)}
	q.add(&domain.Record{Path: "R.md", Children: []string{"A.md"}, Chain: []string{"R.md"}})
	q.add(&domain.Record{Path: "A.md", Parent: "R.md", Children: []string{"B.md"}, Chain: []string{"R.md", "A.md"}})
	q.add(&domain.Record{Path: "B.md", Parent: "A.md", Children: []string{}, Chain: []string{"R.md", "A.md", "B.md"}})
	q.add(&domain.Record{Path: "X.md", Children: []string{}, Chain: []string{"X.md"}, Error: domain.ErrorParentNotFound})
	gone := domain.NewRootRecord("Gone.md")
	gone.SoftExcludedAt = time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	q.add(gone)
	return q
}

func (q *fakeQuery) add(rec *domain.Record) { q.records[rec.Path] = rec }

func (q *fakeQuery) Record(path string) (*domain.Record, error) {
	rec, ok := q.records[domain.NormalizePath(path)]
	if !ok {
		return nil, fmt.Errorf("%s: %w", path, application.ErrNotFound)
	}
	return rec.Clone(), nil
}

func (q *fakeQuery) IsAncestorOf(ancestor, path string) (bool, error) {
	rec, err := q.Record(path)
	if err != nil {
		return false, err
	}
	return rec.IsDescendantOf(ancestor), nil
}

func (q *fakeQuery) ErrorState(path string) (domain.ErrorKind, error) {
	rec, err := q.Record(path)
	if err != nil {
		return domain.ErrorNone, err
	}
	return rec.Error, nil
}

func (q *fakeQuery) Errors() ([]*domain.Record, error) {
	all, _ := q.Records()
	var out []*domain.Record
	for _, rec := range all {
		if rec.Error != domain.ErrorNone {
			out = append(out, rec)
		}
	}
	return out, nil
}

func (q *fakeQuery) Records() ([]*domain.Record, error) {
	out := make([]*domain.Record, 0, len(q.records))
	for _, rec := range q.records {
		out = append(out, rec.Clone())
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Path < out[j].Path })
	return out, nil
}

func (q *fakeQuery) ObjectByPath(_ context.Context, path string) (*reconcile.Object, error) {
	rec, err := q.Record(path)
	if err != nil {
		return nil, err
	}
	return &reconcile.Object{Document: domain.Document{Path: rec.Path}, Record: rec}, nil
}

func (q *fakeQuery) ObjectByLink(ctx context.Context, text string) (*reconcile.Object, error) {
	link, err := domain.ParseLink(text)
	if err != nil {
		return nil, &application.ValidationError{Field: "link", Message: "not a link"}
	}
	return q.ObjectByPath(ctx, link.Target+domain.MarkdownExt)
}

func (q *fakeQuery) Subscribe(func(hierarchy.ErrorChange)) func() { return func() {} }

type fakeEngine struct {
	stats      *reconcile.SyncStats
	syncErr    error
	result     reconcile.Result
	reconciled []string
	violations []hierarchy.Violation
}

func (e *fakeEngine) Synchronize(context.Context) (*reconcile.SyncStats, error) {
	return e.stats, e.syncErr
}

func (e *fakeEngine) Reconcile(_ context.Context, path string) reconcile.Result {
	e.reconciled = append(e.reconciled, path)
	return e.result
}

func (e *fakeEngine) Check() []hierarchy.Violation { return e.violations }
