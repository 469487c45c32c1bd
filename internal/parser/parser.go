// Package parser reads catalog documents: YAML lists of tools, optionally
// grouped under category sections.
package parser

import (
	"bytes"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/starford/vibeindex/internal/models"
)

// Result holds the output of parsing a catalog document.
type Result struct {
	Title string
	Tools []models.Tool
}

type document struct {
	Title    string        `yaml:"title"`
	Sections []section     `yaml:"sections"`
	Tools    []models.Tool `yaml:"tools"`
}

type section struct {
	Category string        `yaml:"category"`
	Tools    []models.Tool `yaml:"tools"`
}

// Parse extracts tools from raw YAML bytes in document order. Sections come
// first, then any top-level tools. A tool without its own category inherits
// the category of the section it is listed under.
func Parse(data []byte) (*Result, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return &Result{}, nil
	}

	var doc document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parser: decode catalog: %w", err)
	}

	var tools []models.Tool
	for _, s := range doc.Sections {
		category := strings.TrimSpace(s.Category)
		for _, t := range s.Tools {
			tools = append(tools, normalize(t, category))
		}
	}
	for _, t := range doc.Tools {
		tools = append(tools, normalize(t, ""))
	}

	return &Result{
		Title: strings.TrimSpace(doc.Title),
		Tools: tools,
	}, nil
}

// normalize trims surrounding whitespace and drops blank tags so the index
// never sees padding that was only there for YAML alignment.
func normalize(t models.Tool, inherited string) models.Tool {
	t.Name = strings.TrimSpace(t.Name)
	t.URL = strings.TrimSpace(t.URL)
	t.Description = strings.TrimSpace(t.Description)
	t.Category = strings.TrimSpace(t.Category)
	if t.Category == "" {
		t.Category = inherited
	}

	tags := make([]string, 0, len(t.Tags))
	for _, tag := range t.Tags {
		if tag = strings.TrimSpace(tag); tag != "" {
			tags = append(tags, tag)
		}
	}
	t.Tags = tags
	return t
}
