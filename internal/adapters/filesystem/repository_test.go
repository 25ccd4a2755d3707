package filesystem

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"oot/internal/domain"
)

func setupTestVault(t *testing.T, files map[string]string) (string, func()) {
	t.Helper()

	tmpDir, err := os.MkdirTemp("", "oot-test-*")
	if err != nil {
		t.Fatalf("failed to create temp dir: %v", err)
	}

	for name, content := range files {
		p := filepath.Join(tmpDir, filepath.FromSlash(name))
		if err := os.MkdirAll(filepath.Dir(p), 0755); err != nil {
			t.Fatalf("failed to create dir for %s: %v", name, err)
		}
		if err := os.WriteFile(p, []byte(content), 0644); err != nil {
			t.Fatalf("failed to write %s: %v", name, err)
		}
	}

	cleanup := func() {
		os.RemoveAll(tmpDir)
	}

	return tmpDir, cleanup
}

func readFile(t *testing.T, vaultPath, name string) string {
	t.Helper()
	content, err := os.ReadFile(filepath.Join(vaultPath, filepath.FromSlash(name)))
	if err != nil {
		t.Fatalf("failed to read %s: %v", name, err)
	}
	return string(content)
}

func TestListDocuments_SkipsHiddenDirectories(t *testing.T) {
	vaultPath, cleanup := setupTestVault(t, map[string]string{
		"A.md":               "# A\n",
		"notes/B.md":         "# B\n",
		"notes/image.png":    "png",
		".obsidian/app.json": "{}",
		".oot/data.json":     "{}",
	})
	defer cleanup()

	repo := NewRepository(vaultPath, "extends", nil)
	docs, err := repo.ListDocuments(context.Background())
	if err != nil {
		t.Fatalf("ListDocuments failed: %v", err)
	}

	var paths []string
	for _, d := range docs {
		paths = append(paths, d.Path)
	}
	want := "A.md,notes/B.md,notes/image.png"
	if got := strings.Join(paths, ","); got != want {
		t.Errorf("expected %s, got %s", want, got)
	}
}

func TestIsExcluded(t *testing.T) {
	repo := NewRepository(t.TempDir(), "extends", []string{"Templates/", "/Archive"})

	tests := []struct {
		path string
		want bool
	}{
		{path: "A.md", want: false},
		{path: "notes/B.MD", want: false},
		{path: "image.png", want: true},
		{path: "Canvas.md", want: true},
		{path: "notes/Canvas.md", want: true},
		{path: ".trash/A.md", want: true},
		{path: "Templates/Daily.md", want: true},
		{path: "Archive/Old.md", want: true},
		{path: "Archived/Old.md", want: true},
		{path: "Notes/Templates/x.md", want: false},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			if got := repo.IsExcluded(domain.Document{Path: tt.path}); got != tt.want {
				t.Errorf("expected %v, got %v", tt.want, got)
			}
		})
	}
}

func TestResolveReference(t *testing.T) {
	vaultPath, cleanup := setupTestVault(t, map[string]string{
		"Root.md":              "",
		"projects/Plan.md":     "",
		"projects/web/Plan.md": "",
		"areas/Plan.md":        "",
		"projects/web/Task.md": "",
		"assets/diagram.png":   "",
	})
	defer cleanup()

	repo := NewRepository(vaultPath, "extends", nil)

	tests := []struct {
		name    string
		text    string
		context string
		want    string
		found   bool
	}{
		{name: "exact path", text: "projects/Plan.md", context: "Root.md", want: "projects/Plan.md", found: true},
		{name: "path without extension", text: "areas/Plan", context: "Root.md", want: "areas/Plan.md", found: true},
		{name: "relative to referencing document", text: "Task", context: "projects/web/Other.md", want: "projects/web/Task.md", found: true},
		{name: "closest name match", text: "Plan", context: "projects/web/Task.md", want: "projects/web/Plan.md", found: true},
		{name: "name match sharing a prefix", text: "Plan", context: "projects/Sub/X.md", want: "projects/Plan.md", found: true},
		{name: "lexical tie break", text: "Plan", context: "Root.md", want: "areas/Plan.md", found: true},
		{name: "non markdown file", text: "diagram.png", context: "Root.md", want: "assets/diagram.png", found: true},
		{name: "path suffix", text: "web/Plan", context: "areas/Plan.md", want: "projects/web/Plan.md", found: true},
		{name: "missing", text: "Nope", context: "Root.md", found: false},
		{name: "escaping path", text: "../outside", context: "Root.md", found: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc, found, err := repo.ResolveReference(context.Background(), tt.text, tt.context)
			if err != nil {
				t.Fatalf("ResolveReference failed: %v", err)
			}
			if found != tt.found {
				t.Fatalf("expected found=%v, got %v (%s)", tt.found, found, doc.Path)
			}
			if found && doc.Path != tt.want {
				t.Errorf("expected %s, got %s", tt.want, doc.Path)
			}
		})
	}
}

func TestReadDeclaredParent(t *testing.T) {
	vaultPath, cleanup := setupTestVault(t, map[string]string{
		"quoted.md":   "---\nextends: \"[[Root]]\"\ntags: [a]\n---\n# Body\n",
		"unquoted.md": "---\nextends: [[Root]]\n---\n",
		"toml.md":     "+++\nextends = \"[[Root|r]]\"\n+++\nbody\n",
		"list.md":     "---\nextends:\n  - \"[[Root]]\"\n---\n",
		"none.md":     "# No metadata\n",
		"empty.md":    "---\nextends:\n---\n",
		"broken.md":   "---\nextends: [unclosed\n---\n",
	})
	defer cleanup()

	repo := NewRepository(vaultPath, "extends", nil)

	tests := []struct {
		path    string
		want    any
		ok      bool
		wantErr bool
	}{
		{path: "quoted.md", want: "[[Root]]", ok: true},
		{path: "unquoted.md", want: "[[Root]]", ok: true},
		{path: "toml.md", want: "[[Root|r]]", ok: true},
		{path: "none.md", ok: false},
		{path: "empty.md", want: nil, ok: true},
		{path: "broken.md", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			got, ok, err := repo.ReadDeclaredParent(context.Background(), tt.path)
			if tt.wantErr {
				if !errors.Is(err, ErrMalformedFrontmatter) {
					t.Errorf("expected ErrMalformedFrontmatter, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("ReadDeclaredParent failed: %v", err)
			}
			if ok != tt.ok {
				t.Fatalf("expected ok=%v, got %v", tt.ok, ok)
			}
			if got != tt.want {
				t.Errorf("expected %#v, got %#v", tt.want, got)
			}
		})
	}

	t.Run("list.md", func(t *testing.T) {
		got, ok, err := repo.ReadDeclaredParent(context.Background(), "list.md")
		if err != nil || !ok {
			t.Fatalf("expected a value, got %v, %v", ok, err)
		}
		if _, isList := got.([]any); !isList {
			t.Errorf("expected a list value, got %#v", got)
		}
	})
}

func TestClearDeclaredParent_KeepsOtherKeys(t *testing.T) {
	vaultPath, cleanup := setupTestVault(t, map[string]string{
		"A.md": "---\ntitle: A\nextends: \"[[Missing]]\"\n# keep me\ntags:\n  - x\n---\n# Body\n\ntext\n",
		"B.md": "---\nextends: \"[[Missing]]\"\n---\n# Only\n",
		"C.md": "plain\n",
	})
	defer cleanup()

	repo := NewRepository(vaultPath, "extends", nil)
	ctx := context.Background()

	if err := repo.ClearDeclaredParent(ctx, "A.md"); err != nil {
		t.Fatalf("ClearDeclaredParent failed: %v", err)
	}
	a := readFile(t, vaultPath, "A.md")
	if strings.Contains(a, "extends") {
		t.Errorf("expected extends to be removed, got:\n%s", a)
	}
	for _, keep := range []string{"title: A", "tags:", "# Body\n\ntext\n"} {
		if !strings.Contains(a, keep) {
			t.Errorf("expected %q to survive, got:\n%s", keep, a)
		}
	}
	if strings.Index(a, "title") > strings.Index(a, "tags") {
		t.Errorf("expected key order to be kept, got:\n%s", a)
	}

	if err := repo.ClearDeclaredParent(ctx, "B.md"); err != nil {
		t.Fatalf("ClearDeclaredParent failed: %v", err)
	}
	if b := readFile(t, vaultPath, "B.md"); b != "# Only\n" {
		t.Errorf("expected the emptied frontmatter to be dropped, got %q", b)
	}

	before, _ := os.Stat(filepath.Join(vaultPath, "C.md"))
	if err := repo.ClearDeclaredParent(ctx, "C.md"); err != nil {
		t.Fatalf("ClearDeclaredParent failed: %v", err)
	}
	after, _ := os.Stat(filepath.Join(vaultPath, "C.md"))
	if !after.ModTime().Equal(before.ModTime()) {
		t.Error("expected a document without the field to be left alone")
	}
}

func TestRewriteDeclaredParent(t *testing.T) {
	vaultPath, cleanup := setupTestVault(t, map[string]string{
		"A.md": "---\nextends: \"[[Old|alias]]\"\n---\nbody\n",
		"B.md": "body only\n",
		"C.md": "+++\nextends = \"[[Old]]\"\n+++\n",
	})
	defer cleanup()

	repo := NewRepository(vaultPath, "extends", nil)
	ctx := context.Background()
	link := domain.Link{Target: "New", Alias: "alias"}

	for _, p := range []string{"A.md", "B.md", "C.md"} {
		if err := repo.RewriteDeclaredParent(ctx, p, link); err != nil {
			t.Fatalf("RewriteDeclaredParent(%s) failed: %v", p, err)
		}
		got, ok, err := repo.ReadDeclaredParent(ctx, p)
		if err != nil || !ok {
			t.Fatalf("ReadDeclaredParent(%s) = %v, %v", p, ok, err)
		}
		if got != "[[New|alias]]" {
			t.Errorf("%s: expected [[New|alias]], got %#v", p, got)
		}
	}

	if b := readFile(t, vaultPath, "B.md"); !strings.HasSuffix(b, "---\nbody only\n") {
		t.Errorf("expected the body to follow the new frontmatter, got %q", b)
	}
}

func TestRenameDeclaredField(t *testing.T) {
	vaultPath, cleanup := setupTestVault(t, map[string]string{
		"A.md": "---\nextends: \"[[R]]\"\nup: stale\n---\n",
		"B.md": "+++\nextends = \"[[R]]\"\n+++\n",
	})
	defer cleanup()

	repo := NewRepository(vaultPath, "up", nil)
	ctx := context.Background()

	for _, p := range []string{"A.md", "B.md"} {
		if err := repo.RenameDeclaredField(ctx, p, "extends", "up"); err != nil {
			t.Fatalf("RenameDeclaredField(%s) failed: %v", p, err)
		}
		got, ok, err := repo.ReadDeclaredParent(ctx, p)
		if err != nil || !ok || got != "[[R]]" {
			t.Errorf("%s: expected [[R]] under up, got %#v (%v, %v)", p, got, ok, err)
		}
	}
	if a := readFile(t, vaultPath, "A.md"); strings.Contains(a, "extends") || strings.Contains(a, "stale") {
		t.Errorf("expected a single up key, got:\n%s", a)
	}
}

func TestSafePath_RejectsEscapes(t *testing.T) {
	repo := NewRepository(t.TempDir(), "extends", nil)
	if _, _, err := repo.Stat(context.Background(), "../etc/passwd"); !errors.Is(err, ErrPathEscape) {
		t.Errorf("expected ErrPathEscape, got %v", err)
	}
}
