package commands

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/disiqueira/gotree/v3"

	"oot/internal/application"
	"oot/internal/application/reconcile"
	"oot/internal/domain"
)

// TreeCommand renders the extends forest, or the subtree under one root
type TreeCommand struct {
	query    reconcile.Query
	RootPath string
}

// NewTreeCommand creates a new TreeCommand. An empty root renders every
// tree in the forest.
func NewTreeCommand(query reconcile.Query, root string) *TreeCommand {
	return &TreeCommand{query: query, RootPath: root}
}

// Validate checks if the tree operation is valid
func (c *TreeCommand) Validate() error {
	if strings.TrimSpace(c.RootPath) == "" {
		return nil
	}
	return application.ValidateDocumentPath("rootPath", c.RootPath)
}

// Execute renders the tree
func (c *TreeCommand) Execute(ctx context.Context) (string, error) {
	if err := c.Validate(); err != nil {
		return "", err
	}
	records, err := c.query.Records()
	if err != nil {
		return "", err
	}
	byPath := make(map[string]*domain.Record, len(records))
	for _, rec := range records {
		byPath[rec.Path] = rec
	}

	if root := strings.TrimSpace(c.RootPath); root != "" {
		rec, ok := byPath[domain.NormalizePath(root)]
		if !ok {
			return "", fmt.Errorf("%s: %w", root, application.ErrNotFound)
		}
		tree := gotree.New(nodeLabel(rec))
		addChildren(tree, rec, byPath, map[string]bool{rec.Path: true})
		return tree.Print(), nil
	}

	tree := gotree.New(".")
	visited := make(map[string]bool)
	for _, rec := range records {
		if !rec.IsRoot() || rec.IsSoftExcluded() {
			continue
		}
		visited[rec.Path] = true
		addChildren(tree.Add(nodeLabel(rec)), rec, byPath, visited)
	}
	return tree.Print(), nil
}

func addChildren(node gotree.Tree, rec *domain.Record, byPath map[string]*domain.Record, visited map[string]bool) {
	children := append([]string{}, rec.Children...)
	sort.Strings(children)
	for _, p := range children {
		child, ok := byPath[p]
		if !ok || visited[p] {
			continue
		}
		visited[p] = true
		addChildren(node.Add(nodeLabel(child)), child, byPath, visited)
	}
}

func nodeLabel(rec *domain.Record) string {
	label := rec.Path
	if rec.Error != domain.ErrorNone {
		label += " [" + rec.Error.String() + "]"
	}
	if rec.IsSoftExcluded() {
		label += " (excluded)"
	}
	return label
}
