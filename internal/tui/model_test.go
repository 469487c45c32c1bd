package tui

import (
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/starford/vibeindex/internal/catalog"
	"github.com/starford/vibeindex/internal/clock"
	"github.com/starford/vibeindex/internal/debounce"
	"github.com/starford/vibeindex/internal/index"
	"github.com/starford/vibeindex/internal/models"
	"github.com/starford/vibeindex/internal/search"
	"github.com/starford/vibeindex/internal/testutil"
)

var epoch = time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

func testModel(t *testing.T) (Model, *clock.FakeClock) {
	t.Helper()
	fake := clock.Fake(epoch)
	m := NewModel(testutil.Engine(t), fake, debounce.DefaultWindow)
	t.Cleanup(m.ctrl.Close)
	return m, fake
}

func press(t *testing.T, m Model, msg tea.KeyMsg) Model {
	t.Helper()
	next, _ := m.Update(msg)
	return next.(Model)
}

func typeText(t *testing.T, m Model, s string) Model {
	t.Helper()
	for _, r := range s {
		m = press(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
	}
	return m
}

// settle advances past the debounce window and feeds the delivered
// results back into the model.
func settle(t *testing.T, m Model, fake *clock.FakeClock) Model {
	t.Helper()
	fake.Advance(debounce.DefaultWindow)
	select {
	case msg := <-m.events:
		next, _ := m.Update(msg)
		return next.(Model)
	default:
		t.Fatal("no results delivered after the debounce window")
		return m
	}
}

func TestModel_InitialBrowse(t *testing.T) {
	m, _ := testModel(t)
	if !m.Results().Browse || m.Results().Len() != 5 {
		t.Fatalf("initial results = %+v", m.Results())
	}
	view := m.View()
	for _, want := range []string{"Showing 5 of 5 tools", "All Categories", "Design (2)", "Marketing (2)"} {
		if !strings.Contains(view, want) {
			t.Errorf("view missing %q", want)
		}
	}
}

func TestModel_TypingIsDebounced(t *testing.T) {
	m, fake := testModel(t)
	m = typeText(t, m, "video")

	if !m.ctrl.Busy() {
		t.Fatal("controller should be busy while typing")
	}
	if !strings.Contains(m.View(), "searching") {
		t.Error("view should show the busy indicator")
	}
	if m.Results().Query != "" {
		t.Fatal("results updated before the window elapsed")
	}

	m = settle(t, m, fake)
	if m.Results().Query != "video" || m.Results().Browse {
		t.Fatalf("results = %+v", m.Results())
	}
	if m.Results().Items[0].Tool.Name != "Vibe Video" {
		t.Errorf("top hit = %q", m.Results().Items[0].Tool.Name)
	}
	if strings.Contains(m.View(), "searching") {
		t.Error("busy indicator still shown after results arrived")
	}
}

func TestModel_SupersededResultsAreNotShown(t *testing.T) {
	m, fake := testModel(t)
	m = typeText(t, m, "video")
	fake.Advance(debounce.DefaultWindow)

	var queued resultsMsg
	select {
	case queued = <-m.events:
	default:
		t.Fatal("no results delivered after the debounce window")
	}
	if queued.results.Query != "video" {
		t.Fatalf("queued query = %q", queued.results.Query)
	}

	// A keystroke handled before the queued results reach the model.
	m = typeText(t, m, "x")
	next, cmd := m.Update(queued)
	m = next.(Model)
	if m.Results().Query == "video" {
		t.Fatalf("results for %q shown after %q was typed", "video", m.input.Value())
	}
	if cmd == nil {
		t.Error("model stopped listening for results")
	}
	if !m.ctrl.Busy() || !strings.Contains(m.View(), "searching") {
		t.Error("newer query should still be pending")
	}

	m = settle(t, m, fake)
	if m.Results().Query != "videox" {
		t.Errorf("results query = %q, want videox", m.Results().Query)
	}
}

func TestModel_TabCyclesCategories(t *testing.T) {
	m, fake := testModel(t)
	m = press(t, m, tea.KeyMsg{Type: tea.KeyTab})
	if m.Category() != "Design" {
		t.Fatalf("category = %q, want Design", m.Category())
	}
	m = settle(t, m, fake)
	if m.Results().Len() != 2 || len(m.Results().Groups) != 1 {
		t.Errorf("results = %+v", m.Results())
	}

	m = press(t, m, tea.KeyMsg{Type: tea.KeyShiftTab})
	m = press(t, m, tea.KeyMsg{Type: tea.KeyShiftTab})
	if m.Category() != "Video" {
		t.Errorf("category = %q, want Video after wrapping backwards", m.Category())
	}
}

func TestModel_EscClearsAllFilters(t *testing.T) {
	m, fake := testModel(t)
	m = typeText(t, m, "zzzzznotfound")
	m = press(t, m, tea.KeyMsg{Type: tea.KeyTab})
	m = settle(t, m, fake)
	if !strings.Contains(m.View(), "No tools found") {
		t.Fatal("expected the no-results message")
	}

	m = press(t, m, tea.KeyMsg{Type: tea.KeyEsc})
	if m.input.Value() != "" || m.Category() != catalog.All {
		t.Fatalf("filters not cleared: query=%q category=%q", m.input.Value(), m.Category())
	}
	m = settle(t, m, fake)
	if !m.Results().Browse || m.Results().Len() != 5 {
		t.Errorf("results after clear = %+v", m.Results())
	}
}

func TestModel_EnterFlushes(t *testing.T) {
	m, _ := testModel(t)
	m = typeText(t, m, "brand")
	m = press(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	if m.ctrl.Busy() || m.Results().Query != "brand" {
		t.Fatalf("enter did not evaluate immediately: busy=%v results=%+v", m.ctrl.Busy(), m.Results())
	}
}

func TestModel_CatalogChangedDropsMissingCategory(t *testing.T) {
	engine := testutil.Engine(t)
	fake := clock.Fake(epoch)
	m := NewModel(engine, fake, debounce.DefaultWindow)
	t.Cleanup(m.ctrl.Close)

	m = press(t, m, tea.KeyMsg{Type: tea.KeyTab}) // Design
	m = settle(t, m, fake)

	engine.SetCatalog(catalog.New([]models.Tool{
		{Name: "Vibe Email", URL: "https://www.lavender.ai/", Category: "Email"},
	}))
	next, _ := m.Update(catalogChangedMsg{})
	m = next.(Model)
	if m.Category() != catalog.All {
		t.Fatalf("category = %q, want all", m.Category())
	}
	m = settle(t, m, fake)
	if m.Results().Len() != 1 || m.Results().Items[0].Tool.Name != "Vibe Email" {
		t.Errorf("results = %+v", m.Results())
	}
}

func TestEmptyMessage(t *testing.T) {
	cases := []struct {
		name string
		r    search.Results
		want string
	}{
		{"has results", search.Results{Total: 1, Items: []search.Result{{}}}, ""},
		{"empty catalog", search.Results{Category: catalog.All, Browse: true}, "No tools in the directory yet."},
		{"query", search.Results{Query: "zzz", Total: 3}, `No tools found for "zzz". Try a different search or clear all filters.`},
		{"category", search.Results{Category: "Legal", Total: 3, Browse: true}, "No tools found in Legal."},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := EmptyMessage(tc.r); got != tc.want {
				t.Errorf("EmptyMessage = %q, want %q", got, tc.want)
			}
		})
	}
}

func TestRender_SearchShowsCategories(t *testing.T) {
	engine := search.NewEngine(testutil.Catalog(t), index.DefaultOptions(), nil)
	out := Render(engine.Evaluate(search.QueryState{Text: "design", Category: catalog.All}))
	if !strings.Contains(out, "[Design]") {
		t.Errorf("flat result should show the category:\n%s", out)
	}
	if !strings.HasPrefix(stripANSI(out), "Showing ") {
		t.Errorf("render should start with the summary:\n%s", out)
	}
}

func TestTruncate(t *testing.T) {
	if got := truncate("abcdef", 4); got != "abc…" {
		t.Errorf("truncate = %q", got)
	}
	if got := truncate("abc", 0); got != "abc" {
		t.Errorf("truncate with no width = %q", got)
	}
}

func stripANSI(s string) string {
	var b strings.Builder
	inEscape := false
	for _, r := range s {
		switch {
		case r == '\x1b':
			inEscape = true
		case inEscape && (r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z'):
			inEscape = false
		case !inEscape:
			b.WriteRune(r)
		}
	}
	return b.String()
}
