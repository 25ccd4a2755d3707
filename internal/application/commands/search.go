package commands

import (
	"context"
	"sort"
	"strings"

	"oot/internal/application/reconcile"
	"oot/internal/domain"
)

// SearchResult is a tracked record with a relevance score
type SearchResult struct {
	Record *domain.Record
	Score  int
}

// SearchCommand finds tracked documents with fuzzy matching
type SearchCommand struct {
	query reconcile.Query
	Query string
}

// NewSearchCommand creates a new SearchCommand
func NewSearchCommand(query reconcile.Query, q string) *SearchCommand {
	return &SearchCommand{
		query: query,
		Query: q,
	}
}

// Execute runs the search command and returns scored, sorted results
func (c *SearchCommand) Execute(ctx context.Context) ([]SearchResult, error) {
	if len(c.Query) < 2 {
		return nil, nil
	}

	records, err := c.query.Records()
	if err != nil {
		return nil, err
	}

	return FuzzySort(records, c.Query), nil
}

// Score weights. A substring hit always outranks a scattered match.
const (
	scoreSubstring   = 100
	scorePrefix      = 50
	scoreConsecutive = 10
	scoreStart       = 15
	scoreBoundary    = 10
	scoreRune        = 1
)

// FuzzyScore calculates a relevance score for how well target matches
// query. Zero means no match.
func FuzzyScore(target, query string) int {
	t := []rune(strings.ToLower(target))
	q := []rune(strings.ToLower(query))
	if len(q) == 0 {
		return 0
	}

	if lt, lq := string(t), string(q); strings.Contains(lt, lq) {
		if strings.HasPrefix(lt, lq) {
			return scoreSubstring + scorePrefix
		}
		return scoreSubstring
	}

	// Every query rune must appear in order.
	score, qi, prev := 0, 0, -2
	for i := 0; i < len(t) && qi < len(q); i++ {
		if t[i] != q[qi] {
			continue
		}
		switch {
		case i == 0:
			score += scoreStart
		case isBoundary(t[i-1]):
			score += scoreBoundary
		}
		if prev == i-1 {
			score += scoreConsecutive
		}
		score += scoreRune
		prev = i
		qi++
	}
	if qi < len(q) {
		return 0
	}
	return score
}

func isBoundary(r rune) bool {
	return r == ' ' || r == '/' || r == '-' || r == '_'
}

// FuzzySort scores records by their name and path and sorts them by
// relevance, ties going to the shorter chain.
func FuzzySort(records []*domain.Record, query string) []SearchResult {
	scored := make([]SearchResult, 0, len(records))

	for _, rec := range records {
		best := max(FuzzyScore(domain.Basename(rec.Path), query), FuzzyScore(rec.Path, query))
		if best > 0 {
			scored = append(scored, SearchResult{Record: rec, Score: best})
		}
	}

	sort.SliceStable(scored, func(i, j int) bool {
		if scored[i].Score != scored[j].Score {
			return scored[i].Score > scored[j].Score
		}
		return scored[i].Record.Depth() < scored[j].Record.Depth()
	})

	return scored
}
