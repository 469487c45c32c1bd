// Package toolservice is the query surface shared by the CLI, the MCP
// server and the terminal UI.
package toolservice

import (
	"context"
	"strings"

	"github.com/starford/vibeindex/internal/apperr"
	"github.com/starford/vibeindex/internal/catalog"
	"github.com/starford/vibeindex/internal/models"
	"github.com/starford/vibeindex/internal/search"
)

// CategoryInfo is one entry of the category set with its tool count.
type CategoryInfo struct {
	Name  string `json:"name"`
	Label string `json:"label"`
	Count int    `json:"count"`
}

// Info summarises the catalog being served.
type Info struct {
	Title      string `json:"title,omitempty"`
	Tools      int    `json:"tools"`
	Categories int    `json:"categories"`
	Checksum   string `json:"checksum"`
}

// Service answers directory queries against an engine.
type Service struct {
	engine *search.Engine
}

// NewService creates a new tool service.
func NewService(engine *search.Engine) *Service {
	return &Service{engine: engine}
}

// Engine returns the underlying engine.
func (s *Service) Engine() *search.Engine {
	return s.engine
}

// Search runs a ranked query. A positive limit truncates the ranked list.
// A blank query browses instead and is never truncated, so its items and
// groups always agree.
func (s *Service) Search(ctx context.Context, query, category string, limit int) (search.Results, error) {
	if err := ctx.Err(); err != nil {
		return search.Results{}, err
	}
	res := s.engine.Evaluate(search.QueryState{Text: query, Category: category})
	if !res.Browse && limit > 0 && len(res.Items) > limit {
		res.Items = res.Items[:limit]
	}
	return res, nil
}

// Browse lists every tool in category, grouped by category.
func (s *Service) Browse(ctx context.Context, category string) (search.Results, error) {
	if err := ctx.Err(); err != nil {
		return search.Results{}, err
	}
	return s.engine.Evaluate(search.QueryState{Category: category}), nil
}

// Categories returns the category set with per-category tool counts. The
// "all" entry counts every tool.
func (s *Service) Categories(ctx context.Context) ([]CategoryInfo, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	c := s.engine.Catalog()
	counts := make(map[string]int)
	for _, t := range c.Records() {
		counts[t.Category]++
	}

	cats := s.engine.Categories()
	out := make([]CategoryInfo, len(cats))
	for i, name := range cats {
		n := counts[name]
		if name == catalog.All {
			n = c.Len()
		}
		out[i] = CategoryInfo{Name: name, Label: catalog.Label(name), Count: n}
	}
	return out, nil
}

// GetTool returns the first tool whose name equals name, ignoring case and
// surrounding whitespace.
func (s *Service) GetTool(ctx context.Context, name string) (*models.Tool, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	want := strings.TrimSpace(name)
	for _, t := range s.engine.Catalog().Records() {
		if strings.EqualFold(t.Name, want) {
			return &t, nil
		}
	}
	return nil, apperr.ErrNotFound
}

// Info describes the catalog currently served.
func (s *Service) Info(ctx context.Context) (Info, error) {
	if err := ctx.Err(); err != nil {
		return Info{}, err
	}
	c := s.engine.Catalog()
	return Info{
		Title:      c.Title(),
		Tools:      c.Len(),
		Categories: len(s.engine.Categories()) - 1,
		Checksum:   c.Checksum(),
	}, nil
}
