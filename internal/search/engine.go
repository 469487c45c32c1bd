package search

import (
	"log/slog"
	"sync"

	"github.com/starford/vibeindex/internal/catalog"
	"github.com/starford/vibeindex/internal/checksum"
	"github.com/starford/vibeindex/internal/index"
)

// Engine owns the current catalog and the index built over it. The index is
// rebuilt only when SetCatalog installs a different catalog reference, never
// per query. Engine is safe for concurrent use.
type Engine struct {
	mu         sync.RWMutex
	opts       index.Options
	idx        *index.Index
	categories []string
	builds     int
	logger     *slog.Logger
}

// NewEngine builds the index for c.
func NewEngine(c *catalog.Catalog, opts index.Options, logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	e := &Engine{opts: opts, logger: logger}
	e.SetCatalog(c)
	return e
}

// SetCatalog installs c and rebuilds the index if c is a new reference.
func (e *Engine) SetCatalog(c *catalog.Catalog) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.idx != nil && e.idx.Catalog() == c {
		return
	}
	e.idx = index.Build(c, e.opts)
	e.categories = catalog.Categories(c)
	e.builds++
	e.logger.Debug("search: index built",
		slog.Int("tools", c.Len()),
		slog.Int("categories", len(e.categories)-1),
		slog.String("checksum", checksum.Short(c.Checksum())))
}

// Catalog returns the catalog currently searched.
func (e *Engine) Catalog() *catalog.Catalog {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.idx.Catalog()
}

// Categories returns the category set of the current catalog.
func (e *Engine) Categories() []string {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return append([]string(nil), e.categories...)
}

// Evaluate runs state against the current index.
func (e *Engine) Evaluate(state QueryState) Results {
	e.mu.RLock()
	idx := e.idx
	e.mu.RUnlock()
	return Evaluate(idx, state)
}

// Builds reports how many times the index has been built.
func (e *Engine) Builds() int {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.builds
}
