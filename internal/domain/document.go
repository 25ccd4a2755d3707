package domain

import (
	"path"
	"strings"
	"time"
)

// MarkdownExt is the extension of trackable documents.
const MarkdownExt = ".md"

// Document identifies a file in the document store.
type Document struct {
	Path    string    // Vault-relative, slash separated
	ModTime time.Time // Last modification reported by the store
}

// Name returns the file name including extension.
func (d Document) Name() string {
	return path.Base(d.Path)
}

// Ext returns the lower-cased file extension.
func (d Document) Ext() string {
	return strings.ToLower(path.Ext(d.Path))
}

// Basename returns the file name of p without its extension, the form
// wiki links use to address a document.
func Basename(p string) string {
	base := path.Base(p)
	return strings.TrimSuffix(base, path.Ext(base))
}

// NormalizePath converts a store path to the slash separated, cleaned form
// used as record identity.
func NormalizePath(p string) string {
	p = strings.ReplaceAll(p, "\\", "/")
	p = path.Clean(p)
	return strings.TrimPrefix(p, "./")
}
