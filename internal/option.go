package internal

import (
	"io"
)

// Run modes.
const (
	ModeTUI = "tui"
	ModeMCP = "mcp"
)

// Option is a functional option for configuring the application.
type Option func(*application)

type application struct {
	config *Config
	mode   string
	stdin  io.Reader
	stdout io.Writer
}

// WithConfig sets the application configuration.
func WithConfig(cfg *Config) Option {
	return func(a *application) {
		a.config = cfg
	}
}

// WithMode selects what Run serves: ModeTUI (default) or ModeMCP.
func WithMode(mode string) Option {
	return func(a *application) {
		a.mode = mode
	}
}

// WithStdio replaces the process stdin/stdout used by the MCP transport
// and the terminal UI.
func WithStdio(in io.Reader, out io.Writer) Option {
	return func(a *application) {
		a.stdin = in
		a.stdout = out
	}
}
