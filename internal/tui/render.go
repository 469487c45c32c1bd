package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/starford/vibeindex/internal/catalog"
	"github.com/starford/vibeindex/internal/search"
)

var (
	titleStyle       = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("212"))
	groupStyle       = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("99")).MarginTop(1)
	nameStyle        = lipgloss.NewStyle().Bold(true)
	urlStyle         = lipgloss.NewStyle().Foreground(lipgloss.Color("39")).Underline(true)
	dimStyle         = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	categoryStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("99"))
	selectedCatStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("212"))
	emptyStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("214")).MarginTop(1)
	helpStyle        = lipgloss.NewStyle().Foreground(lipgloss.Color("241")).MarginTop(1)
)

// Summary is the result count line, e.g. "Showing 3 of 48 tools".
func Summary(r search.Results) string {
	return fmt.Sprintf("Showing %d of %d tools", r.Len(), r.Total)
}

// EmptyMessage explains an empty result. An empty string means the result
// is not empty.
func EmptyMessage(r search.Results) string {
	if r.Len() > 0 {
		return ""
	}
	if r.Total == 0 {
		return "No tools in the directory yet."
	}
	if r.Query != "" {
		return fmt.Sprintf("No tools found for %q. Try a different search or clear all filters.", r.Query)
	}
	return fmt.Sprintf("No tools found in %s.", catalog.Label(r.Category))
}

// Lines renders results one display line per slice element. Browse
// results are shown under category headings; search results as a ranked
// flat list. width limits descriptions; zero means unlimited.
func Lines(r search.Results, width int) []string {
	if msg := EmptyMessage(r); msg != "" {
		return []string{emptyStyle.Render(msg)}
	}

	var lines []string
	if r.Browse {
		for _, g := range r.Groups {
			lines = append(lines, groupStyle.Render(fmt.Sprintf("%s (%d)", g.Category, len(g.Results))))
			for _, it := range g.Results {
				lines = append(lines, toolLines(it, false, width)...)
			}
		}
		return lines
	}
	for _, it := range r.Items {
		lines = append(lines, toolLines(it, true, width)...)
	}
	return lines
}

func toolLines(it search.Result, showCategory bool, width int) []string {
	head := "  " + nameStyle.Render(it.Tool.Name)
	if showCategory {
		head += " " + categoryStyle.Render("["+it.Tool.Category+"]")
	}
	out := []string{head}
	if d := strings.TrimSpace(it.Tool.Description); d != "" {
		out = append(out, "    "+truncate(d, width-4))
	}
	out = append(out, "    "+urlStyle.Render(it.Tool.URL))
	return out
}

// Render is Lines joined for non-interactive output.
func Render(r search.Results) string {
	lines := append([]string{dimStyle.Render(Summary(r))}, Lines(r, 0)...)
	return strings.Join(lines, "\n") + "\n"
}

func truncate(s string, width int) string {
	if width <= 0 {
		return s
	}
	runes := []rune(s)
	if len(runes) <= width {
		return s
	}
	if width <= 1 {
		return string(runes[:width])
	}
	return string(runes[:width-1]) + "…"
}
