package tui

import (
	"context"
	"errors"
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/starford/vibeindex/internal/clock"
	"github.com/starford/vibeindex/internal/search"
)

// App runs the model as a full-screen program.
type App struct {
	model   Model
	program *tea.Program
}

// NewApp prepares the program. opts are passed to bubbletea after the
// defaults, so tests can swap input and output.
func NewApp(ctx context.Context, engine *search.Engine, window time.Duration, opts ...tea.ProgramOption) *App {
	m := NewModel(engine, clock.Real(), window)
	all := append([]tea.ProgramOption{tea.WithContext(ctx), tea.WithAltScreen()}, opts...)
	return &App{model: m, program: tea.NewProgram(m, all...)}
}

// Run blocks until the user quits or ctx is cancelled.
func (a *App) Run(ctx context.Context) error {
	defer a.model.ctrl.Close()
	if _, err := a.program.Run(); err != nil {
		if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
			return nil
		}
		return fmt.Errorf("tui: %w", err)
	}
	return nil
}

// CatalogChanged tells the running program that the engine now serves a
// different catalog. It blocks until the program accepts the message or
// exits.
func (a *App) CatalogChanged() {
	a.program.Send(catalogChangedMsg{})
}
