package hierarchy

import (
	"slices"

	"oot/internal/domain"
)

// walk visits every descendant of start exactly once, parents before their
// children, using an explicit stack. Children that have no record are
// pruned from their parent on the way. The visited set only matters if an
// invariant was already broken; a forest never revisits a node.
func (c *Cache) walk(start string, visit func(rec *domain.Record)) []string {
	root, ok := c.records[start]
	if !ok {
		return nil
	}

	visited := map[string]bool{start: true}
	var order []string
	stack := c.liveChildren(root)
	slices.Reverse(stack)

	for len(stack) > 0 {
		path := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if visited[path] {
			continue
		}
		visited[path] = true

		rec := c.records[path]
		visit(rec)
		order = append(order, path)

		children := c.liveChildren(rec)
		slices.Reverse(children)
		stack = append(stack, children...)
	}
	return order
}

// liveChildren returns the children of rec that have records and drops
// the dangling ones from rec.
func (c *Cache) liveChildren(rec *domain.Record) []string {
	live := make([]string, 0, len(rec.Children))
	for _, child := range rec.Children {
		if _, ok := c.records[child]; ok {
			live = append(live, child)
		}
	}
	if len(live) != len(rec.Children) {
		rec.Children = slices.Clone(live)
		c.dirty = true
	}
	return live
}

// Descendants returns every transitive child of path in depth-first order.
func (c *Cache) Descendants(path string) []string {
	return c.walk(path, func(*domain.Record) {})
}

// PropagateChain recomputes the ancestor chain of every descendant of path
// from its parent's chain and returns the visited paths.
func (c *Cache) PropagateChain(path string) []string {
	return c.walk(path, func(rec *domain.Record) {
		parent, ok := c.records[rec.Parent]
		if !ok {
			rec.Parent = ""
			rec.Chain = []string{rec.Path}
			c.dirty = true
			return
		}
		chain := make([]string, 0, len(parent.Chain)+1)
		chain = append(chain, parent.Chain...)
		rec.Chain = append(chain, rec.Path)
		c.dirty = true
	})
}

// SubstituteInDescendants replaces oldPath with newPath in the chains of
// every descendant of path.
func (c *Cache) SubstituteInDescendants(path, oldPath, newPath string) []string {
	return c.walk(path, func(rec *domain.Record) {
		rec.Chain = substitute(rec.Chain, oldPath, newPath)
		c.dirty = true
	})
}

// TruncateDescendants drops every chain element up to and including cut
// from the chains of every descendant of path.
func (c *Cache) TruncateDescendants(path, cut string) []string {
	return c.walk(path, func(rec *domain.Record) {
		if i := slices.Index(rec.Chain, cut); i >= 0 {
			rec.Chain = slices.Clone(rec.Chain[i+1:])
			c.dirty = true
		}
	})
}
