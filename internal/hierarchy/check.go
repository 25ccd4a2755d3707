package hierarchy

import (
	"fmt"
	"slices"
)

// Violation describes one broken cache invariant.
type Violation struct {
	Path    string
	Message string
}

func (v Violation) String() string {
	return fmt.Sprintf("%s: %s", v.Path, v.Message)
}

// Check verifies acyclicity, parent/child symmetry, chain consistency and
// referential existence for every record.
func (c *Cache) Check() []Violation {
	var out []Violation
	report := func(path, format string, args ...any) {
		out = append(out, Violation{Path: path, Message: fmt.Sprintf(format, args...)})
	}

	for _, path := range c.Paths() {
		rec := c.records[path]

		seen := make(map[string]bool, len(rec.Chain))
		for _, p := range rec.Chain {
			if seen[p] {
				report(path, "chain contains %s twice", p)
			}
			seen[p] = true
		}
		if len(rec.Chain) == 0 || rec.Chain[len(rec.Chain)-1] != path {
			report(path, "chain does not end with the record itself")
		}

		if rec.Parent == "" {
			if len(rec.Chain) != 1 {
				report(path, "root record has chain %v", rec.Chain)
			}
		} else {
			parent, ok := c.records[rec.Parent]
			switch {
			case !ok:
				report(path, "parent %s has no record", rec.Parent)
			case !parent.HasChild(path):
				report(path, "parent %s does not list it as child", rec.Parent)
			default:
				want := append(slices.Clone(parent.Chain), path)
				if !slices.Equal(rec.Chain, want) {
					report(path, "chain %v, want %v", rec.Chain, want)
				}
			}
		}

		dup := make(map[string]bool, len(rec.Children))
		for _, child := range rec.Children {
			if dup[child] {
				report(path, "child %s listed twice", child)
			}
			dup[child] = true
			childRec, ok := c.records[child]
			if !ok {
				report(path, "child %s has no record", child)
				continue
			}
			if childRec.Parent != path {
				report(path, "child %s has parent %q", child, childRec.Parent)
			}
		}
	}
	return out
}
