// Package catalog holds the read-only tool catalog and the category set
// derived from it.
package catalog

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"os"
	"sort"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"

	"github.com/starford/vibeindex/internal/apperr"
	"github.com/starford/vibeindex/internal/checksum"
	"github.com/starford/vibeindex/internal/models"
	"github.com/starford/vibeindex/internal/parser"
)

// All is the category selector that matches every tool.
const All = "all"

//go:embed data/tools.yaml
var defaultDocument []byte

// Catalog is an ordered, immutable sequence of tools. Position in the
// catalog is the browse order and the tie-break order for search ranking.
// A nil *Catalog behaves as an empty catalog.
type Catalog struct {
	title    string
	records  []models.Tool
	checksum string
}

// New builds a catalog from records without validating them. The records
// are copied, so later changes to the caller's slice are not observed.
func New(records []models.Tool) *Catalog {
	owned := make([]models.Tool, len(records))
	for i, r := range records {
		owned[i] = r.Clone()
	}
	return &Catalog{records: owned, checksum: checksum.Sum(encode(owned))}
}

// encode serialises records into a stable byte form for checksumming.
// Fields are unit-separated and records are record-separated, so distinct
// record lists never encode alike.
func encode(records []models.Tool) []byte {
	var b bytes.Buffer
	for _, r := range records {
		for _, v := range []string{r.Name, r.URL, r.Description, r.Category} {
			b.WriteString(v)
			b.WriteByte(0x1f)
		}
		for _, tag := range r.Tags {
			b.WriteString(tag)
			b.WriteByte(0x1d)
		}
		b.WriteByte(0x1e)
	}
	return b.Bytes()
}

// Default returns the compiled-in catalog.
func Default() (*Catalog, error) {
	return Load(defaultDocument)
}

// LoadFile reads, parses and validates a catalog document from disk.
func LoadFile(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("catalog: read %s: %w", path, err)
	}
	c, err := Load(data)
	if err != nil {
		return nil, fmt.Errorf("catalog: load %s: %w", path, err)
	}
	return c, nil
}

// Load parses and validates a catalog document. A document without any
// tools is rejected with apperr.ErrEmptyCatalog; build an empty catalog with
// New(nil) instead.
func Load(data []byte) (*Catalog, error) {
	res, err := parser.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", apperr.ErrInvalidCatalog, err)
	}
	if len(res.Tools) == 0 {
		return nil, apperr.ErrEmptyCatalog
	}
	if err := Validate(res.Tools); err != nil {
		return nil, err
	}
	return &Catalog{
		title:    res.Title,
		records:  res.Tools,
		checksum: checksum.Sum(data),
	}, nil
}

// Validate checks every record against the tool schema: name, a valid URL
// and a category are required, and the category may not be All. All failures are reported together.
func Validate(records []models.Tool) error {
	var errs []error
	for i, r := range records {
		if err := validateTool(r); err != nil {
			errs = append(errs, fmt.Errorf("tool %d (%q): %w", i, r.Name, err))
		}
	}
	if len(errs) == 0 {
		return nil
	}
	return fmt.Errorf("%w: %w", apperr.ErrInvalidCatalog, errors.Join(errs...))
}

func validateTool(t models.Tool) error {
	return validation.ValidateStruct(&t,
		validation.Field(&t.Name, validation.Required),
		validation.Field(&t.URL, validation.Required, is.URL),
		validation.Field(&t.Category, validation.Required, validation.NotIn(All).Error("is reserved")),
	)
}

// Len returns the number of tools.
func (c *Catalog) Len() int {
	if c == nil {
		return 0
	}
	return len(c.records)
}

// At returns a copy of the tool at position i.
func (c *Catalog) At(i int) models.Tool {
	return c.records[i].Clone()
}

// Records returns a copy of every tool in catalog order.
func (c *Catalog) Records() []models.Tool {
	if c == nil {
		return nil
	}
	out := make([]models.Tool, len(c.records))
	for i, r := range c.records {
		out[i] = r.Clone()
	}
	return out
}

// Title returns the document title, if the source had one.
func (c *Catalog) Title() string {
	if c == nil {
		return ""
	}
	return c.title
}

// Checksum returns the SHA-256 digest of the source document.
func (c *Catalog) Checksum() string {
	if c == nil {
		return ""
	}
	return c.checksum
}

// Categories returns the category set: All first, then every distinct
// category in lexicographic order.
func Categories(c *Catalog) []string {
	seen := make(map[string]struct{})
	var distinct []string
	if c != nil {
		for _, r := range c.records {
			if _, ok := seen[r.Category]; ok || r.Category == All {
				continue
			}
			seen[r.Category] = struct{}{}
			distinct = append(distinct, r.Category)
		}
	}
	sort.Strings(distinct)
	return append([]string{All}, distinct...)
}

// Label is the display name of a category selector.
func Label(category string) string {
	if category == All {
		return "All Categories"
	}
	return category
}
