package domain

import (
	"testing"
)

func TestRecord_Relations(t *testing.T) {
	rec := &Record{
		Path:   "notes/C.md",
		Parent: "B.md",
		Chain:  []string{"R.md", "B.md", "notes/C.md"},
	}

	if rec.IsRoot() {
		t.Error("expected a record with a parent not to be a root")
	}
	if !rec.IsDescendantOf("R.md") {
		t.Error("expected R to be an ancestor")
	}
	if rec.IsDescendantOf("notes/C.md") {
		t.Error("expected a record not to descend from itself")
	}
	if rec.Depth() != 2 {
		t.Errorf("expected depth 2, got %d", rec.Depth())
	}
	if got := rec.Label(); got != "R > B > C" {
		t.Errorf("expected label R > B > C, got %s", got)
	}
}

func TestRecord_Clone(t *testing.T) {
	rec := &Record{Path: "A.md", Chain: []string{"A.md"}}

	c := rec.Clone()
	c.Chain[0] = "changed"
	if rec.Chain[0] != "A.md" {
		t.Error("expected the clone not to share its chain")
	}
	if c.Children == nil {
		t.Error("expected clone children to be non-nil")
	}
}

func TestErrorKind_RoundTrip(t *testing.T) {
	for _, name := range ErrorKindNames() {
		kind, err := ParseErrorKind(name)
		if err != nil {
			t.Fatalf("ParseErrorKind(%s) failed: %v", name, err)
		}
		if kind.String() != name {
			t.Errorf("expected %s, got %s", name, kind.String())
		}
		if kind.Message() == "" {
			t.Errorf("expected a message for %s", name)
		}
	}

	if kind, err := ParseErrorKind(""); err != nil || kind != ErrorNone {
		t.Errorf("expected the empty name to be ErrorNone, got %v, %v", kind, err)
	}
	if _, err := ParseErrorKind("bogus"); err == nil {
		t.Error("expected an error for an unknown name")
	}
}

func TestNormalizePath(t *testing.T) {
	tests := map[string]string{
		"./notes/A.md":     "notes/A.md",
		`notes\A.md`:       "notes/A.md",
		"notes//x/../A.md": "notes/A.md",
	}
	for in, want := range tests {
		if got := NormalizePath(in); got != want {
			t.Errorf("NormalizePath(%q) = %q, want %q", in, got, want)
		}
	}
}
