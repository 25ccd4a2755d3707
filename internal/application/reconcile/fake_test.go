package reconcile

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"path"
	"sort"
	"strings"
	"testing"
	"time"

	"oot/internal/domain"
	"oot/internal/ports"
)

type fakeClock struct {
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time { return c.now }

func (c *fakeClock) Advance(d time.Duration) { c.now = c.now.Add(d) }

type memDoc struct {
	parent    any
	hasParent bool
	modTime   time.Time
}

// memStore is an in-memory DocumentStore. Resolution matches the exact
// path, the path plus ".md", then the first basename match.
type memStore struct {
	clock    *fakeClock
	docs     map[string]*memDoc
	ignored  []string
	clearErr error
	panicOn  string
}

func newMemStore(clock *fakeClock) *memStore {
	return &memStore{clock: clock, docs: make(map[string]*memDoc)}
}

// put creates or replaces a document. A nil parent means no declaration.
func (s *memStore) put(p string, parent any) {
	d := &memDoc{modTime: s.clock.Now()}
	if parent != nil {
		d.parent = parent
		d.hasParent = true
	}
	s.docs[p] = d
}

// edit advances the clock and changes the declared parent of p.
func (s *memStore) edit(p string, parent any) {
	s.clock.Advance(time.Second)
	s.put(p, parent)
}

func (s *memStore) move(oldPath, newPath string) {
	s.docs[newPath] = s.docs[oldPath]
	delete(s.docs, oldPath)
}

func (s *memStore) declared(p string) (any, bool) {
	d, ok := s.docs[p]
	if !ok {
		return nil, false
	}
	return d.parent, d.hasParent
}

func (s *memStore) ListDocuments(context.Context) ([]domain.Document, error) {
	paths := make([]string, 0, len(s.docs))
	for p := range s.docs {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	out := make([]domain.Document, 0, len(paths))
	for _, p := range paths {
		out = append(out, domain.Document{Path: p, ModTime: s.docs[p].modTime})
	}
	return out, nil
}

func (s *memStore) Stat(_ context.Context, p string) (domain.Document, bool, error) {
	d, ok := s.docs[p]
	if !ok {
		return domain.Document{}, false, nil
	}
	return domain.Document{Path: p, ModTime: d.modTime}, true, nil
}

func (s *memStore) IsExcluded(doc domain.Document) bool {
	if doc.Ext() != domain.MarkdownExt {
		return true
	}
	for _, prefix := range s.ignored {
		if strings.HasPrefix(doc.Path, prefix) {
			return true
		}
	}
	return false
}

func (s *memStore) ResolveReference(ctx context.Context, text, _ string) (domain.Document, bool, error) {
	for _, candidate := range []string{text, text + ".md"} {
		if doc, ok, _ := s.Stat(ctx, candidate); ok {
			return doc, true, nil
		}
	}
	docs, _ := s.ListDocuments(ctx)
	for _, doc := range docs {
		if domain.Basename(doc.Path) == path.Base(text) {
			return doc, true, nil
		}
	}
	return domain.Document{}, false, nil
}

func (s *memStore) ReadDeclaredParent(_ context.Context, p string) (any, bool, error) {
	if p == s.panicOn {
		panic("corrupt metadata")
	}
	d, ok := s.docs[p]
	if !ok {
		return nil, false, errors.New("no such document")
	}
	return d.parent, d.hasParent, nil
}

func (s *memStore) ClearDeclaredParent(_ context.Context, p string) error {
	if s.clearErr != nil {
		return s.clearErr
	}
	d, ok := s.docs[p]
	if !ok {
		return errors.New("no such document")
	}
	d.parent, d.hasParent = nil, false
	d.modTime = s.clock.Now()
	return nil
}

// renamingStore adds the optional FieldRenamer and LinkRewriter.
type renamingStore struct {
	*memStore
	renames  []string
	rewrites map[string]domain.Link
}

func (s *renamingStore) RenameDeclaredField(_ context.Context, p, from, to string) error {
	s.renames = append(s.renames, p+":"+from+"->"+to)
	return nil
}

func (s *renamingStore) RewriteDeclaredParent(_ context.Context, p string, link domain.Link) error {
	if s.rewrites == nil {
		s.rewrites = make(map[string]domain.Link)
	}
	s.rewrites[p] = link
	d := s.docs[p]
	d.parent, d.hasParent = link.String(), true
	d.modTime = s.clock.Now()
	return nil
}

type memState struct {
	state   *domain.State
	issues  []domain.LoadIssue
	saves   int
	saveErr error
}

func (m *memState) Load(context.Context) (*domain.State, []domain.LoadIssue, error) {
	return m.state, m.issues, nil
}

func (m *memState) Save(_ context.Context, st *domain.State) error {
	if m.saveErr != nil {
		return m.saveErr
	}
	m.saves++
	m.state = st
	return nil
}

func (m *memState) Close() error { return nil }

type fixture struct {
	t      *testing.T
	clock  *fakeClock
	docs   *memStore
	state  *memState
	engine *Engine
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	clock := newFakeClock()
	return &fixture{
		t:     t,
		clock: clock,
		docs:  newMemStore(clock),
		state: &memState{},
	}
}

func testSettings() domain.Settings {
	s := domain.DefaultSettings()
	s.DeletionPolicy = domain.DeletionImmediate
	return s
}

// start builds the engine over the fixture's stores and runs Start.
func (f *fixture) start(settings domain.Settings) *SyncStats {
	f.t.Helper()
	return f.startWith(f.docs, settings)
}

func (f *fixture) startWith(docs ports.DocumentStore, settings domain.Settings) *SyncStats {
	f.t.Helper()
	f.engine = New(docs, f.state, settings,
		WithClock(f.clock),
		WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
	)
	stats, err := f.engine.Start(context.Background())
	if err != nil {
		f.t.Fatalf("Start failed: %v", err)
	}
	f.checkInvariants()
	return stats
}

func (f *fixture) handle(kind domain.EventKind, p string) Result {
	f.t.Helper()
	res := f.engine.Handle(context.Background(), domain.Event{Kind: kind, Path: p})
	f.checkInvariants()
	return res
}

func (f *fixture) rename(oldPath, newPath string) Result {
	f.t.Helper()
	f.docs.move(oldPath, newPath)
	res := f.engine.Handle(context.Background(), domain.Event{Kind: domain.EventRenamed, Path: newPath, OldPath: oldPath})
	f.checkInvariants()
	return res
}

func (f *fixture) record(p string) *domain.Record {
	f.t.Helper()
	rec, err := f.engine.Record(p)
	if err != nil {
		f.t.Fatalf("Record(%s) failed: %v", p, err)
	}
	return rec
}

func (f *fixture) checkInvariants() {
	f.t.Helper()
	for _, v := range f.engine.Check() {
		f.t.Errorf("invariant violated: %s", v)
	}
}
