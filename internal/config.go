package internal

import (
	"errors"
	"log/slog"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/starford/vibeindex/internal/debounce"
	"github.com/starford/vibeindex/internal/index"
)

// Config represents the application configuration.
type Config struct {
	App      ApplicationConfig `yaml:"app"`
	Catalog  CatalogConfig     `yaml:"catalog"`
	Search   SearchConfig      `yaml:"search"`
	Debounce DebounceConfig    `yaml:"debounce"`
	MCP      MCPConfig         `yaml:"mcp"`
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if err := c.Catalog.Validate(); err != nil {
		return err
	}
	if err := c.Search.Validate(); err != nil {
		return err
	}
	if err := c.Debounce.Validate(); err != nil {
		return err
	}
	return c.MCP.Validate()
}

// ApplicationConfig holds application-level configuration.
type ApplicationConfig struct {
	LogLevel slog.Level `yaml:"log_level"`
	// LogFile receives logs while the terminal UI owns the screen. Empty
	// discards them.
	LogFile string `yaml:"log_file"`
}

// CatalogConfig selects the catalog source.
type CatalogConfig struct {
	// Path is an external catalog document. Empty uses the compiled-in
	// catalog.
	Path  string `yaml:"path"`
	Watch bool   `yaml:"watch"`
}

// Validate validates the catalog configuration.
func (c *CatalogConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Path, validation.When(c.Watch, validation.Required.Error("is required when watch is enabled"))),
	)
}

// SearchConfig tunes approximate matching.
type SearchConfig struct {
	Threshold      float64       `yaml:"threshold"`
	MinMatchLength int           `yaml:"min_match_length"`
	Location       int           `yaml:"location"`
	Distance       int           `yaml:"distance"`
	IgnoreLocation bool          `yaml:"ignore_location"`
	Weights        WeightsConfig `yaml:"weights"`
}

// Validate validates the search configuration.
func (c *SearchConfig) Validate() error {
	if err := validation.ValidateStruct(c,
		validation.Field(&c.Threshold, validation.Min(0.0), validation.Max(1.0)),
		validation.Field(&c.MinMatchLength, validation.Min(1)),
		validation.Field(&c.Location, validation.Min(0)),
		validation.Field(&c.Distance, validation.Min(0)),
	); err != nil {
		return err
	}
	return c.Weights.Validate()
}

// Options converts the configuration into index options.
func (c *SearchConfig) Options() index.Options {
	return index.Options{
		Threshold:          c.Threshold,
		MinMatchCharLength: c.MinMatchLength,
		Location:           c.Location,
		Distance:           c.Distance,
		IgnoreLocation:     c.IgnoreLocation,
		Weights: index.Weights{
			Name:        c.Weights.Name,
			Description: c.Weights.Description,
			Category:    c.Weights.Category,
			Tags:        c.Weights.Tags,
			URL:         c.Weights.URL,
		},
	}
}

// WeightsConfig holds the relative weight of each searchable field.
type WeightsConfig struct {
	Name        float64 `yaml:"name"`
	Description float64 `yaml:"description"`
	Category    float64 `yaml:"category"`
	Tags        float64 `yaml:"tags"`
	URL         float64 `yaml:"url"`
}

// Validate validates the weights.
func (c *WeightsConfig) Validate() error {
	if err := validation.ValidateStruct(c,
		validation.Field(&c.Name, validation.Min(0.0)),
		validation.Field(&c.Description, validation.Min(0.0)),
		validation.Field(&c.Category, validation.Min(0.0)),
		validation.Field(&c.Tags, validation.Min(0.0)),
		validation.Field(&c.URL, validation.Min(0.0)),
	); err != nil {
		return err
	}
	if c.Name+c.Description+c.Category+c.Tags+c.URL <= 0 {
		return errors.New("weights: at least one weight must be positive")
	}
	return nil
}

// DebounceConfig holds the query debounce window.
type DebounceConfig struct {
	Window time.Duration `yaml:"window"`
}

// Validate validates the debounce configuration.
func (c *DebounceConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Window, validation.Required, validation.Min(time.Millisecond)),
	)
}

// MCPConfig holds the identity the MCP server reports.
type MCPConfig struct {
	Name    string `yaml:"name"`
	Version string `yaml:"version"`
}

// Validate validates the MCP configuration.
func (c *MCPConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Name, validation.Required),
		validation.Field(&c.Version, validation.Required),
	)
}

// NewDefaultConfig returns a new Config with sensible default values.
func NewDefaultConfig() *Config {
	opts := index.DefaultOptions()
	return &Config{
		App: ApplicationConfig{
			LogLevel: slog.LevelInfo,
		},
		Search: SearchConfig{
			Threshold:      opts.Threshold,
			MinMatchLength: opts.MinMatchCharLength,
			Location:       opts.Location,
			Distance:       opts.Distance,
			IgnoreLocation: opts.IgnoreLocation,
			Weights: WeightsConfig{
				Name:        opts.Weights.Name,
				Description: opts.Weights.Description,
				Category:    opts.Weights.Category,
				Tags:        opts.Weights.Tags,
				URL:         opts.Weights.URL,
			},
		},
		Debounce: DebounceConfig{
			Window: debounce.DefaultWindow,
		},
		MCP: MCPConfig{
			Name:    "vibeindex",
			Version: "1.0.0",
		},
	}
}
