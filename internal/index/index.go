// Package index builds a weighted approximate-match index over a catalog
// and answers ranked queries against it.
package index

import (
	"math"
	"sort"
	"strings"

	"github.com/starford/vibeindex/internal/catalog"
	"github.com/starford/vibeindex/internal/models"
)

// fieldCount is the number of searchable fields.
const fieldCount = 5

// fields lists the searchable fields in the order Weights.normalized
// returns them.
var fields = [fieldCount]string{
	models.FieldName,
	models.FieldDescription,
	models.FieldCategory,
	models.FieldTags,
	models.FieldURL,
}

// epsilon stands in for a perfect score so that the field weight still
// separates exact matches on different fields.
const epsilon = 2.220446049250313e-16

// entry is the precomputed, lower-cased text of one tool.
type entry struct {
	values [fieldCount][][]rune
}

// Index is an immutable search structure over one catalog. It is safe for
// concurrent use.
type Index struct {
	catalog *catalog.Catalog
	opts    Options
	weights [fieldCount]float64
	entries []entry
}

// Result is one matched tool: its catalog position and relevance rank.
// Lower ranks are better; a rank of zero is never produced.
type Result struct {
	Position int
	Rank     float64
}

// Build indexes every tool in c. Building never fails; a nil or empty
// catalog yields an index that matches nothing.
func Build(c *catalog.Catalog, opts Options) *Index {
	idx := &Index{
		catalog: c,
		opts:    opts,
		weights: opts.Weights.normalized(),
		entries: make([]entry, c.Len()),
	}
	for i := range idx.entries {
		t := c.At(i)
		for f, name := range fields {
			for _, v := range t.Values(name) {
				if strings.TrimSpace(v) == "" {
					continue
				}
				idx.entries[i].values[f] = append(idx.entries[i].values[f], []rune(strings.ToLower(v)))
			}
		}
	}
	return idx
}

// Catalog returns the catalog the index was built from.
func (idx *Index) Catalog() *catalog.Catalog {
	return idx.catalog
}

// Options returns the options the index was built with.
func (idx *Index) Options() Options {
	return idx.opts
}

// Search returns every tool matching query, best rank first. Tools with
// equal rank keep catalog order. A query that is blank after trimming
// returns nil.
func (idx *Index) Search(query string) []Result {
	q := strings.TrimSpace(query)
	if q == "" || idx == nil {
		return nil
	}
	m := newMatcher(q, idx.opts)

	var out []Result
	for pos, e := range idx.entries {
		rank, ok := idx.rank(m, e)
		if ok {
			out = append(out, Result{Position: pos, Rank: rank})
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Rank < out[j].Rank
	})
	return out
}

// rank is the best weighted score over every matched field value.
func (idx *Index) rank(m *matcher, e entry) (float64, bool) {
	best := math.Inf(1)
	found := false
	for f := range fieldCount {
		w := idx.weights[f]
		if w <= 0 {
			continue
		}
		for _, text := range e.values[f] {
			ok, score := m.match(text)
			if !ok {
				continue
			}
			found = true
			best = math.Min(best, weighted(score, w))
		}
	}
	return best, found
}

// weighted raises score to the field weight. Scores lie in [0,1], so a
// heavier field pushes a good score further toward zero.
func weighted(score, weight float64) float64 {
	if score == 0 {
		score = epsilon
	}
	return math.Pow(score, weight)
}
