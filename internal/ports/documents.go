package ports

import (
	"context"

	"oot/internal/domain"
)

// DocumentStore is the source of truth for document content. The engine
// only reads declared parent links through it and clears malformed ones.
type DocumentStore interface {
	// ListDocuments enumerates every document, excluded ones included.
	ListDocuments(ctx context.Context) ([]domain.Document, error)

	// Stat returns the document at path, or ok=false when it does not exist.
	Stat(ctx context.Context, path string) (doc domain.Document, ok bool, err error)

	// IsExcluded reports whether the document is outside the tracked set.
	IsExcluded(doc domain.Document) bool

	// ResolveReference resolves link text written in the document at
	// contextPath. ok is false when nothing matches.
	ResolveReference(ctx context.Context, text, contextPath string) (doc domain.Document, ok bool, err error)

	// ReadDeclaredParent returns the raw value of the parent field; ok is
	// false when the field is absent.
	ReadDeclaredParent(ctx context.Context, path string) (value any, ok bool, err error)

	// ClearDeclaredParent removes the parent field from the document.
	ClearDeclaredParent(ctx context.Context, path string) error
}

// LinkRewriter is implemented by stores that can point a document's
// declared parent at a new target, the way a host application updates
// links when their target is renamed.
type LinkRewriter interface {
	RewriteDeclaredParent(ctx context.Context, path string, link domain.Link) error
}

// FieldRenamer is implemented by stores that can move the parent field to
// a different metadata key.
type FieldRenamer interface {
	RenameDeclaredField(ctx context.Context, path, from, to string) error
}
