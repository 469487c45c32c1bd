// Package tui is the interactive terminal front end of the directory.
package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/starford/vibeindex/internal/catalog"
	"github.com/starford/vibeindex/internal/clock"
	"github.com/starford/vibeindex/internal/debounce"
	"github.com/starford/vibeindex/internal/search"
)

const helpText = "type to search • tab/shift+tab category • enter search now • esc clear all filters • ↑/↓ scroll • ctrl+c quit"

// resultsMsg carries a settled evaluation from the debounce controller,
// tagged with the generation it was evaluated for.
type resultsMsg struct {
	gen     uint64
	results search.Results
}

// catalogChangedMsg tells the model the engine switched catalogs.
type catalogChangedMsg struct{}

// Model is the bubbletea model. The debounce controller owns the query
// state; the model mirrors it into the input and category selector.
type Model struct {
	engine *search.Engine
	ctrl   *debounce.Controller
	events chan resultsMsg

	input      textinput.Model
	spinner    spinner.Model
	categories []string
	catIndex   int
	results    search.Results

	width  int
	height int
	offset int
}

// NewModel builds a model over engine. Query changes are evaluated once
// window has passed without further input, timed by clk.
func NewModel(engine *search.Engine, clk clock.Clock, window time.Duration) Model {
	events := make(chan resultsMsg, 1)
	ctrl := debounce.New(engine, clk, window, func(gen uint64, r search.Results) {
		offer(events, resultsMsg{gen: gen, results: r})
	})

	input := textinput.New()
	input.Placeholder = "Search tools, categories, tags…"
	input.Prompt = "› "
	input.Focus()

	sp := spinner.New()
	sp.Spinner = spinner.Dot

	return Model{
		engine:     engine,
		ctrl:       ctrl,
		events:     events,
		input:      input,
		spinner:    sp,
		categories: engine.Categories(),
		results:    ctrl.Current(),
	}
}

// offer replaces any undelivered results with msg without blocking.
func offer(ch chan resultsMsg, msg resultsMsg) {
	for {
		select {
		case ch <- msg:
			return
		default:
		}
		select {
		case <-ch:
		default:
		}
	}
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, listenForResults(m.events))
}

// listenForResults blocks until the controller delivers, then hands the
// results to Update.
func listenForResults(ch <-chan resultsMsg) tea.Cmd {
	return func() tea.Msg {
		msg, ok := <-ch
		if !ok {
			return nil
		}
		return msg
	}
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case resultsMsg:
		// A change made after this evaluation was scheduled supersedes it.
		if msg.gen < m.ctrl.Generation() {
			return m, listenForResults(m.events)
		}
		m.results = msg.results
		m.offset = 0
		return m, listenForResults(m.events)

	case catalogChangedMsg:
		return m.catalogChanged()

	case spinner.TickMsg:
		if !m.ctrl.Busy() {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.input.Width = max(10, msg.Width-4)
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c":
		m.ctrl.Close()
		return m, tea.Quit

	case "esc":
		m.input.SetValue("")
		m.catIndex = 0
		m.ctrl.Reset()
		return m, m.spinner.Tick

	case "tab":
		return m.selectCategory(m.catIndex + 1)

	case "shift+tab":
		return m.selectCategory(m.catIndex - 1)

	case "enter":
		m.ctrl.Flush()
		m.results = m.ctrl.Current()
		m.offset = 0
		return m, nil

	case "up":
		m.offset = max(0, m.offset-1)
		return m, nil

	case "down":
		m.offset++
		return m, nil

	case "pgup":
		m.offset = max(0, m.offset-m.pageSize())
		return m, nil

	case "pgdown":
		m.offset += m.pageSize()
		return m, nil
	}

	before := m.input.Value()
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	if m.input.Value() == before {
		return m, cmd
	}
	m.ctrl.SetQuery(m.input.Value())
	return m, tea.Batch(cmd, m.spinner.Tick)
}

func (m Model) selectCategory(i int) (tea.Model, tea.Cmd) {
	n := len(m.categories)
	if n == 0 {
		return m, nil
	}
	m.catIndex = ((i % n) + n) % n
	m.ctrl.SetCategory(m.categories[m.catIndex])
	return m, m.spinner.Tick
}

func (m Model) catalogChanged() (tea.Model, tea.Cmd) {
	selected := m.categories[m.catIndex]
	m.categories = m.engine.Categories()
	m.catIndex = 0
	for i, c := range m.categories {
		if c == selected {
			m.catIndex = i
			break
		}
	}
	if m.categories[m.catIndex] != selected {
		m.ctrl.SetCategory(catalog.All)
	} else {
		m.ctrl.Refresh()
	}
	return m, m.spinner.Tick
}

func (m Model) pageSize() int {
	return max(1, m.height-8)
}

// Category returns the selected category.
func (m Model) Category() string {
	return m.categories[m.catIndex]
}

// Results returns the results on screen.
func (m Model) Results() search.Results {
	return m.results
}

// Controller returns the debounce controller driving the model.
func (m Model) Controller() *debounce.Controller {
	return m.ctrl
}

// View implements tea.Model.
func (m Model) View() string {
	var b strings.Builder

	title := m.engine.Catalog().Title()
	if title == "" {
		title = "Vibe Tools Directory"
	}
	b.WriteString(titleStyle.Render(title))
	b.WriteString("\n\n")

	b.WriteString(m.input.View())
	if m.ctrl.Busy() {
		b.WriteString("  " + m.spinner.View() + dimStyle.Render(" searching"))
	}
	b.WriteString("\n")
	b.WriteString(m.categoryBar())
	b.WriteString("\n")
	b.WriteString(dimStyle.Render(Summary(m.results)))
	b.WriteString("\n")

	body := Lines(m.results, m.width)
	if m.height > 0 {
		page := m.pageSize()
		start := min(m.offset, max(0, len(body)-page))
		end := min(len(body), start+page)
		body = body[start:end]
	}
	b.WriteString(strings.Join(body, "\n"))
	b.WriteString("\n")
	b.WriteString(helpStyle.Render(helpText))
	return b.String()
}

func (m Model) categoryBar() string {
	label := catalog.Label(m.categories[m.catIndex])
	return dimStyle.Render("Category: ") +
		selectedCatStyle.Render("‹ "+label+" ›") +
		dimStyle.Render(fmt.Sprintf(" (%d/%d)", m.catIndex+1, len(m.categories)))
}
