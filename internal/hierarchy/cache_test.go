package hierarchy

import (
	"context"
	"errors"
	"slices"
	"testing"

	"oot/internal/application"
	"oot/internal/domain"
)

// chainCache builds R > A > B > C plus an unrelated root X.
func chainCache(t *testing.T) *Cache {
	t.Helper()
	c := New()
	for _, rec := range []*domain.Record{
		{Path: "R.md", Children: []string{"A.md"}, Chain: []string{"R.md"}},
		{Path: "A.md", Parent: "R.md", Children: []string{"B.md"}, Chain: []string{"R.md", "A.md"}},
		{Path: "B.md", Parent: "A.md", Children: []string{"C.md"}, Chain: []string{"R.md", "A.md", "B.md"}},
		{Path: "C.md", Parent: "B.md", Chain: []string{"R.md", "A.md", "B.md", "C.md"}},
		{Path: "X.md", Chain: []string{"X.md"}},
	} {
		c.Put(rec)
	}
	if v := c.Check(); len(v) > 0 {
		t.Fatalf("fixture violates invariants: %v", v)
	}
	c.MarkClean()
	return c
}

func TestCache_GetReturnsCopies(t *testing.T) {
	c := chainCache(t)

	rec, err := c.Get("A.md")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	rec.Children[0] = "mutated.md"
	rec.Chain = nil

	again, _ := c.Get("A.md")
	if again.Children[0] != "B.md" || len(again.Chain) != 2 {
		t.Errorf("expected the cached record to be untouched, got %+v", again)
	}
	if c.Dirty() {
		t.Error("expected reads not to dirty the cache")
	}
}

func TestCache_GetMissing(t *testing.T) {
	c := New()
	if _, err := c.Get("nope.md"); !errors.Is(err, application.ErrNotInitialized) {
		t.Errorf("expected ErrNotInitialized, got %v", err)
	}
	if err := c.SetParent("nope.md", "R.md"); !errors.Is(err, application.ErrNotInitialized) {
		t.Errorf("expected ErrNotInitialized from a mutator, got %v", err)
	}
}

func TestCache_GetOrInitialize(t *testing.T) {
	t.Run("without initializer creates a root", func(t *testing.T) {
		c := New()
		rec, err := c.GetOrInitialize(context.Background(), "A.md")
		if err != nil {
			t.Fatalf("GetOrInitialize failed: %v", err)
		}
		if !rec.IsRoot() || !slices.Equal(rec.Chain, []string{"A.md"}) {
			t.Errorf("expected a root record, got %+v", rec)
		}
		if !c.Dirty() {
			t.Error("expected the new record to dirty the cache")
		}
	})

	t.Run("delegates to the initializer", func(t *testing.T) {
		c := New()
		var calls []string
		c.SetInitializer(func(_ context.Context, path string) error {
			calls = append(calls, path)
			c.Put(&domain.Record{Path: "R.md", Children: []string{path}, Chain: []string{"R.md"}})
			c.Put(&domain.Record{Path: path, Parent: "R.md", Chain: []string{"R.md", path}})
			return nil
		})

		rec, err := c.GetOrInitialize(context.Background(), "A.md")
		if err != nil {
			t.Fatalf("GetOrInitialize failed: %v", err)
		}
		if rec.Parent != "R.md" {
			t.Errorf("expected parent R.md, got %q", rec.Parent)
		}
		c.GetOrInitialize(context.Background(), "A.md")
		if len(calls) != 1 {
			t.Errorf("expected one initializer call, got %d", len(calls))
		}
	})

	t.Run("propagates initializer errors", func(t *testing.T) {
		c := New()
		boom := errors.New("boom")
		c.SetInitializer(func(context.Context, string) error { return boom })
		if _, err := c.GetOrInitialize(context.Background(), "A.md"); !errors.Is(err, boom) {
			t.Errorf("expected boom, got %v", err)
		}
	})
}

func TestCache_ChildMutators(t *testing.T) {
	c := chainCache(t)

	c.AddChild("X.md", "Y.md")
	c.AddChild("X.md", "Y.md")
	if rec, _ := c.Get("X.md"); !slices.Equal(rec.Children, []string{"Y.md"}) {
		t.Errorf("expected AddChild to be idempotent, got %v", rec.Children)
	}

	c.ReplaceChild("X.md", "Y.md", "Z.md")
	if rec, _ := c.Get("X.md"); !slices.Equal(rec.Children, []string{"Z.md"}) {
		t.Errorf("expected [Z.md], got %v", rec.Children)
	}

	c.RemoveChild("X.md", "Z.md")
	if rec, _ := c.Get("X.md"); len(rec.Children) != 0 {
		t.Errorf("expected no children, got %v", rec.Children)
	}
}

func TestCache_SoftExclusion(t *testing.T) {
	c := chainCache(t)
	first := testTime(1)

	c.MarkSoftExcluded("A.md", first)
	c.MarkSoftExcluded("A.md", testTime(5))
	if rec, _ := c.Get("A.md"); !rec.SoftExcludedAt.Equal(first) {
		t.Errorf("expected the first exclusion time to be kept, got %v", rec.SoftExcludedAt)
	}

	c.ClearSoftExclusion("A.md")
	if rec, _ := c.Get("A.md"); rec.IsSoftExcluded() {
		t.Error("expected A to be re-included")
	}
}

func TestCache_SetErrorNotifies(t *testing.T) {
	c := chainCache(t)
	var got []ErrorChange
	cancel := c.Subscribe(func(ch ErrorChange) { got = append(got, ch) })

	c.SetError("A.md", domain.ErrorParentNotFound)
	c.SetError("A.md", domain.ErrorParentNotFound)
	c.SetError("A.md", domain.ErrorNone)
	cancel()
	c.SetError("A.md", domain.ErrorSelfReference)

	want := []ErrorChange{
		{Path: "A.md", Previous: domain.ErrorNone, Current: domain.ErrorParentNotFound},
		{Path: "A.md", Previous: domain.ErrorParentNotFound, Current: domain.ErrorNone},
	}
	if !slices.Equal(got, want) {
		t.Errorf("expected %v, got %v", want, got)
	}
}

func TestCache_RenameIdentity(t *testing.T) {
	c := chainCache(t)

	if err := c.RenameIdentity("A.md", "X.md"); !errors.Is(err, application.ErrInvalidOperation) {
		t.Errorf("expected renaming onto an existing record to fail, got %v", err)
	}

	if err := c.RenameIdentity("A.md", "sub/A.md"); err != nil {
		t.Fatalf("RenameIdentity failed: %v", err)
	}
	if c.Has("A.md") {
		t.Error("expected the old identity to be gone")
	}
	rec, err := c.Get("sub/A.md")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if rec.Path != "sub/A.md" || !slices.Equal(rec.Chain, []string{"R.md", "sub/A.md"}) {
		t.Errorf("unexpected renamed record %+v", rec)
	}
}

func TestCache_LoadKeepsSubscriptions(t *testing.T) {
	c := New()
	calls := 0
	c.Subscribe(func(ErrorChange) { calls++ })

	c.Load(map[string]*domain.Record{
		"A.md": {Chain: []string{"A.md"}},
	})
	if c.Dirty() {
		t.Error("expected a freshly loaded cache to be clean")
	}
	rec, err := c.Get("A.md")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if rec.Path != "A.md" {
		t.Errorf("expected the map key to become the path, got %q", rec.Path)
	}

	c.SetError("A.md", domain.ErrorCyclicHierarchy)
	if calls != 1 {
		t.Errorf("expected 1 notification, got %d", calls)
	}
}

func TestCache_Paths(t *testing.T) {
	c := chainCache(t)
	want := []string{"A.md", "B.md", "C.md", "R.md", "X.md"}
	if got := c.Paths(); !slices.Equal(got, want) {
		t.Errorf("expected %v, got %v", want, got)
	}
}
