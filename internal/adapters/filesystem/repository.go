package filesystem

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"oot/internal/domain"
	"oot/internal/ports"
)

// ErrPathEscape is returned when a document path resolves outside the vault.
var ErrPathEscape = errors.New("path escapes vault boundary")

// canvasName is the file name the host application gives new canvases
// before they get their own extension. Writing metadata into it breaks it.
const canvasName = "Canvas.md"

var (
	_ ports.DocumentStore = (*Repository)(nil)
	_ ports.LinkRewriter  = (*Repository)(nil)
	_ ports.FieldRenamer  = (*Repository)(nil)
)

// Repository implements ports.DocumentStore over a vault directory. The
// declared parent lives in each document's frontmatter under the
// configured property name.
type Repository struct {
	vaultPath      string
	property       string
	ignoredFolders []string
}

// NewRepository creates a new filesystem repository
func NewRepository(vaultPath, property string, ignoredFolders []string) *Repository {
	return &Repository{
		vaultPath:      ExpandHome(vaultPath),
		property:       property,
		ignoredFolders: normalizeFolders(ignoredFolders),
	}
}

// ExpandHome expands a leading ~ to the home directory.
func ExpandHome(p string) string {
	if strings.HasPrefix(p, "~") {
		home, _ := os.UserHomeDir()
		return filepath.Join(home, p[1:])
	}
	return p
}

// VaultPath returns the absolute or expanded root of the vault.
func (r *Repository) VaultPath() string {
	return r.vaultPath
}

// AbsPath returns the filesystem path of a document.
func (r *Repository) AbsPath(p string) (string, error) {
	return r.safePath(p)
}

// ListDocuments walks the vault and returns every file outside hidden
// directories, sorted by path.
func (r *Repository) ListDocuments(ctx context.Context) ([]domain.Document, error) {
	var docs []domain.Document
	err := filepath.WalkDir(r.vaultPath, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if d.IsDir() {
			if p != r.vaultPath && strings.HasPrefix(d.Name(), ".") {
				return filepath.SkipDir
			}
			return nil
		}
		info, err := d.Info()
		if err != nil {
			// Removed while walking.
			return nil
		}
		rel, err := filepath.Rel(r.vaultPath, p)
		if err != nil {
			return err
		}
		docs = append(docs, domain.Document{Path: filepath.ToSlash(rel), ModTime: info.ModTime()})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to read vault: %w", err)
	}

	sort.Slice(docs, func(i, j int) bool {
		return docs[i].Path < docs[j].Path
	})
	return docs, nil
}

// Stat returns the document at p, or ok == false when there is no such
// file.
func (r *Repository) Stat(_ context.Context, p string) (domain.Document, bool, error) {
	abs, err := r.safePath(p)
	if err != nil {
		return domain.Document{}, false, err
	}
	info, err := os.Stat(abs)
	if errors.Is(err, fs.ErrNotExist) {
		return domain.Document{}, false, nil
	}
	if err != nil {
		return domain.Document{}, false, fmt.Errorf("failed to stat %s: %w", p, err)
	}
	if info.IsDir() {
		return domain.Document{}, false, nil
	}
	return domain.Document{Path: domain.NormalizePath(p), ModTime: info.ModTime()}, true, nil
}

// IsExcluded reports whether doc is outside the tracked set: not
// markdown, an uninitialized canvas, inside a hidden directory or under
// an ignored folder.
func (r *Repository) IsExcluded(doc domain.Document) bool {
	p := domain.NormalizePath(doc.Path)
	if p == "" || p == "." || doc.Ext() != domain.MarkdownExt || doc.Name() == canvasName {
		return true
	}
	for _, segment := range strings.Split(path.Dir(p), "/") {
		if strings.HasPrefix(segment, ".") && segment != "." {
			return true
		}
	}
	for _, folder := range r.ignoredFolders {
		if strings.HasPrefix(p, folder) {
			return true
		}
	}
	return false
}

// ResolveReference resolves link text as seen from the document at
// contextPath. It tries the vault path with and without the markdown
// extension, then the path relative to the referencing document, then a
// name match anywhere in the vault. Among several name matches the one
// sharing the longest directory prefix with contextPath wins, ties going
// to the lexically smallest path.
func (r *Repository) ResolveReference(ctx context.Context, text, contextPath string) (domain.Document, bool, error) {
	text = strings.TrimPrefix(strings.TrimSpace(filepath.ToSlash(text)), "/")
	if text == "" {
		return domain.Document{}, false, nil
	}

	candidates := []string{text, text + domain.MarkdownExt}
	if contextPath != "" {
		dir := path.Dir(domain.NormalizePath(contextPath))
		rel := path.Join(dir, text)
		candidates = append(candidates, rel, rel+domain.MarkdownExt)
	}
	for _, c := range candidates {
		c = domain.NormalizePath(c)
		if strings.HasPrefix(c, "../") || c == ".." {
			continue
		}
		doc, ok, err := r.Stat(ctx, c)
		if err != nil && !errors.Is(err, ErrPathEscape) {
			return domain.Document{}, false, err
		}
		if ok {
			return doc, true, nil
		}
	}

	docs, err := r.ListDocuments(ctx)
	if err != nil {
		return domain.Document{}, false, err
	}
	var matches []domain.Document
	for _, doc := range docs {
		if matchesName(doc.Path, text) {
			matches = append(matches, doc)
		}
	}
	if len(matches) == 0 {
		return domain.Document{}, false, nil
	}

	contextDir := path.Dir(domain.NormalizePath(contextPath))
	best := matches[0]
	bestScore := sharedDirPrefix(path.Dir(best.Path), contextDir)
	for _, doc := range matches[1:] {
		score := sharedDirPrefix(path.Dir(doc.Path), contextDir)
		if score > bestScore || (score == bestScore && doc.Path < best.Path) {
			best, bestScore = doc, score
		}
	}
	return best, true, nil
}

// ReadDeclaredParent returns the raw value of the parent property.
func (r *Repository) ReadDeclaredParent(_ context.Context, p string) (any, bool, error) {
	fm, err := r.readFrontmatter(p)
	if err != nil {
		return nil, false, err
	}
	return fm.get(r.property)
}

// ClearDeclaredParent removes the parent property from the document.
func (r *Repository) ClearDeclaredParent(_ context.Context, p string) error {
	return r.updateFrontmatter(p, func(fm *frontmatter) bool {
		return fm.remove(r.property)
	})
}

// RewriteDeclaredParent points the parent property at link.
func (r *Repository) RewriteDeclaredParent(_ context.Context, p string, link domain.Link) error {
	return r.updateFrontmatter(p, func(fm *frontmatter) bool {
		fm.set(r.property, link.String())
		return true
	})
}

// RenameDeclaredField moves the value of the from property to to.
func (r *Repository) RenameDeclaredField(_ context.Context, p, from, to string) error {
	return r.updateFrontmatter(p, func(fm *frontmatter) bool {
		return fm.rename(from, to)
	})
}

func (r *Repository) readFrontmatter(p string) (*frontmatter, error) {
	abs, err := r.safePath(p)
	if err != nil {
		return nil, err
	}
	content, err := os.ReadFile(abs)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", p, err)
	}
	fm, err := parseFrontmatter(string(content))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", p, err)
	}
	return fm, nil
}

// updateFrontmatter applies fn and writes the document back when fn
// reports a change.
func (r *Repository) updateFrontmatter(p string, fn func(fm *frontmatter) bool) error {
	fm, err := r.readFrontmatter(p)
	if err != nil {
		return err
	}
	if !fn(fm) {
		return nil
	}
	content, err := fm.render()
	if err != nil {
		return fmt.Errorf("%s: %w", p, err)
	}
	abs, err := r.safePath(p)
	if err != nil {
		return err
	}
	if err := atomicWrite(abs, content); err != nil {
		return fmt.Errorf("failed to write %s: %w", p, err)
	}
	return nil
}

// safePath resolves a vault-relative path and makes sure it stays inside
// the vault.
func (r *Repository) safePath(relPath string) (string, error) {
	absPath, err := filepath.Abs(filepath.Join(r.vaultPath, filepath.FromSlash(relPath)))
	if err != nil {
		return "", fmt.Errorf("resolve path: %w", err)
	}
	vaultAbs, err := filepath.Abs(r.vaultPath)
	if err != nil {
		return "", fmt.Errorf("resolve vault path: %w", err)
	}
	if !strings.HasPrefix(absPath, vaultAbs+string(filepath.Separator)) && absPath != vaultAbs {
		return "", fmt.Errorf("%w: %s", ErrPathEscape, relPath)
	}
	return absPath, nil
}

// atomicWrite writes content to a file via a temp file rename.
func atomicWrite(p, content string) error {
	mode := os.FileMode(0644)
	if info, err := os.Stat(p); err == nil {
		mode = info.Mode().Perm()
	}
	tmp := p + ".tmp"
	if err := os.WriteFile(tmp, []byte(content), mode); err != nil {
		return err
	}
	if err := os.Rename(tmp, p); err != nil {
		os.Remove(tmp)
		return err
	}
	return nil
}

// matchesName reports whether the document at p is addressed by text
// through its name: the base name with or without the markdown extension,
// or a trailing path suffix when text contains a directory.
func matchesName(p, text string) bool {
	lower := strings.ToLower(p)
	want := strings.ToLower(text)
	trimmed := strings.TrimSuffix(lower, domain.MarkdownExt)
	if strings.Contains(want, "/") {
		return strings.HasSuffix(trimmed, "/"+want) || strings.HasSuffix(lower, "/"+want)
	}
	base := path.Base(lower)
	return base == want || strings.TrimSuffix(base, domain.MarkdownExt) == want
}

// sharedDirPrefix counts the leading directory segments a and b share.
func sharedDirPrefix(a, b string) int {
	if a == "." || b == "." {
		return 0
	}
	as, bs := strings.Split(a, "/"), strings.Split(b, "/")
	n := 0
	for n < len(as) && n < len(bs) && as[n] == bs[n] {
		n++
	}
	return n
}

func normalizeFolders(folders []string) []string {
	out := make([]string, 0, len(folders))
	for _, f := range folders {
		f = strings.TrimSpace(filepath.ToSlash(f))
		f = strings.TrimPrefix(f, "./")
		f = strings.TrimPrefix(f, "/")
		if f == "" {
			continue
		}
		out = append(out, f)
	}
	return out
}
