// Package search combines ranked matching with category filtering and
// decides between the browse and search presentations.
package search

import (
	"sort"
	"strings"

	"github.com/starford/vibeindex/internal/catalog"
	"github.com/starford/vibeindex/internal/index"
	"github.com/starford/vibeindex/internal/models"
)

// QueryState is what the consumer is asking for. It is passed by value; the
// engine never changes it.
type QueryState struct {
	Text     string `json:"text"`
	Category string `json:"category"`
}

// DefaultState is the idle state: no query, every category.
func DefaultState() QueryState {
	return QueryState{Category: catalog.All}
}

// Normalized returns the state with the query trimmed and an empty
// category replaced by catalog.All.
func (s QueryState) Normalized() QueryState {
	s.Text = strings.TrimSpace(s.Text)
	if s.Category == "" {
		s.Category = catalog.All
	}
	return s
}

// Active reports whether any filter is applied.
func (s QueryState) Active() bool {
	n := s.Normalized()
	return n.Text != "" || n.Category != catalog.All
}

// Result is one tool in the output with its rank. Browse results always
// carry rank 0.
type Result struct {
	Tool     models.Tool `json:"tool"`
	Position int         `json:"position"`
	Rank     float64     `json:"rank"`
}

// Group is one category's slice of a browse result.
type Group struct {
	Category string   `json:"category"`
	Results  []Result `json:"results"`
}

// Results is the output of one evaluation. Items always holds the flat
// ordered list. Groups is only populated in browse mode.
type Results struct {
	Query    string   `json:"query"`
	Category string   `json:"category"`
	Browse   bool     `json:"browse"`
	Total    int      `json:"total"`
	Items    []Result `json:"items"`
	Groups   []Group  `json:"groups,omitempty"`
}

// Len returns the number of results.
func (r Results) Len() int {
	return len(r.Items)
}

// Evaluate runs state against idx. It never fails: blank queries browse,
// unknown categories yield no results and a nil index matches nothing.
func Evaluate(idx *index.Index, state QueryState) Results {
	state = state.Normalized()
	if idx == nil {
		return Results{Query: state.Text, Category: state.Category, Browse: state.Text == ""}
	}
	c := idx.Catalog()

	out := Results{
		Query:    state.Text,
		Category: state.Category,
		Total:    c.Len(),
		Browse:   state.Text == "",
	}

	if out.Browse {
		for pos := range c.Len() {
			t := c.At(pos)
			if keep(t, state.Category) {
				out.Items = append(out.Items, Result{Tool: t, Position: pos})
			}
		}
		out.Groups = group(out.Items)
		return out
	}

	for _, m := range idx.Search(state.Text) {
		t := c.At(m.Position)
		if keep(t, state.Category) {
			out.Items = append(out.Items, Result{Tool: t, Position: m.Position, Rank: m.Rank})
		}
	}
	return out
}

func keep(t models.Tool, category string) bool {
	return category == catalog.All || t.Category == category
}

// group buckets browse results by category. Groups follow the sorted
// category order and keep catalog order inside each group.
func group(items []Result) []Group {
	if len(items) == 0 {
		return nil
	}
	buckets := make(map[string][]Result)
	var categories []string
	for _, it := range items {
		if _, ok := buckets[it.Tool.Category]; !ok {
			categories = append(categories, it.Tool.Category)
		}
		buckets[it.Tool.Category] = append(buckets[it.Tool.Category], it)
	}
	sort.Strings(categories)

	groups := make([]Group, len(categories))
	for i, cat := range categories {
		groups[i] = Group{Category: cat, Results: buckets[cat]}
	}
	return groups
}
