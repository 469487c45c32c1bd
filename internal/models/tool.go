// Package models defines the domain types for the vibe tools directory.
package models

// Searchable field names, in the order the index scores them.
const (
	FieldName        = "name"
	FieldDescription = "description"
	FieldCategory    = "category"
	FieldTags        = "tags"
	FieldURL         = "url"
)

// Tool is a single directory entry. Tools carry no identity of their own:
// two entries with the same name are distinct and are told apart by their
// position in the catalog.
type Tool struct {
	Name        string   `yaml:"name" json:"name"`
	URL         string   `yaml:"url" json:"url"`
	Description string   `yaml:"description" json:"description"`
	Category    string   `yaml:"category" json:"category"`
	Tags        []string `yaml:"tags" json:"tags"`
}

// Values returns the text stored under a searchable field. Scalar fields
// yield a single value; tags yield one value per tag. Unknown fields and
// missing data yield nothing.
func (t Tool) Values(field string) []string {
	switch field {
	case FieldName:
		return []string{t.Name}
	case FieldDescription:
		return []string{t.Description}
	case FieldCategory:
		return []string{t.Category}
	case FieldURL:
		return []string{t.URL}
	case FieldTags:
		return t.Tags
	}
	return nil
}

// Clone returns a deep copy so callers can never alias catalog storage.
func (t Tool) Clone() Tool {
	c := t
	if t.Tags != nil {
		c.Tags = append([]string(nil), t.Tags...)
	}
	return c
}
