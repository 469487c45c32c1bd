// Package testutil provides shared test fixtures for catalogs and engines.
package testutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/starford/vibeindex/internal/catalog"
	"github.com/starford/vibeindex/internal/index"
	"github.com/starford/vibeindex/internal/models"
	"github.com/starford/vibeindex/internal/search"
)

// Tools is a small catalog spanning three categories, in catalog order.
func Tools() []models.Tool {
	return []models.Tool{
		{Name: "Vibe Marketing", URL: "https://www.jasper.ai/", Description: "AI marketing copy and campaigns", Category: "Marketing", Tags: []string{"copy", "campaigns"}},
		{Name: "Vibe Design", URL: "https://uizard.io/", Description: "Design mockups from prompts", Category: "Design", Tags: []string{"ui", "mockups"}},
		{Name: "Vibe Video", URL: "https://runwayml.com/", Description: "Generate and edit video clips", Category: "Video", Tags: []string{"video"}},
		{Name: "Vibe Product Design", URL: "https://www.usegalileo.ai/", Description: "Product interfaces from text", Category: "Design", Tags: []string{"product"}},
		{Name: "Vibe Branding", URL: "https://looka.com/", Description: "Logos and brand kits", Category: "Marketing", Tags: []string{"logo"}},
	}
}

// Catalog returns Tools as a catalog.
func Catalog(t *testing.T) *catalog.Catalog {
	t.Helper()
	return catalog.New(Tools())
}

// Engine returns an engine over Catalog with default options.
func Engine(t *testing.T) *search.Engine {
	t.Helper()
	return search.NewEngine(Catalog(t), index.DefaultOptions(), nil)
}

// CatalogFile writes doc to a temporary catalog file and returns its path.
func CatalogFile(t *testing.T, doc string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "tools.yaml")
	if err := os.WriteFile(path, []byte(doc), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}
