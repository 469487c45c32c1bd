package mcpserver

// CatalogFormat describes the YAML document accepted by catalog.path so
// that LLM consumers can author or extend a catalog.
const CatalogFormat = `# Vibe Tools Catalog Format

A catalog is a single YAML document listing tools, optionally grouped into
sections by category.

## Structure

` + "```" + `yaml
title: Vibe Tools Directory           # OPTIONAL
sections:
  - category: Design                  # REQUIRED for every section
    tools:
      - name: Vibe Design             # REQUIRED
        url: https://uizard.io/       # REQUIRED, absolute URL
        description: Mockups from text
        tags: [ui, mockups]           # OPTIONAL
tools:                                # OPTIONAL flat list
  - name: Vibe Email
    url: https://www.lavender.ai/
    category: Email and Internal Docs # REQUIRED outside sections
` + "```" + `

## Rules

1. Tools inside a section inherit the section category unless they set one.
2. Document order is catalog order: browse listings and rank ties follow it.
3. Names need not be unique; duplicates are separate entries.
4. Blank tags are dropped. Surrounding whitespace is trimmed from every field.
5. A document with no tools, or with any tool missing a name, URL or
   category, is rejected as a whole.
6. The category name "all" is reserved for the every-category selector.
`
