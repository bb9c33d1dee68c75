package cli

import (
	"fmt"
	"io"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"

	"github.com/dyike/CortexChat/internal/persona"
)

// UI styles
var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#7C3AED")).
			Background(lipgloss.Color("#1F2937")).
			Padding(0, 1)

	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#3B82F6"))

	thinkingStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#F59E0B")).
			Bold(true)

	completedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#10B981")).
			Bold(true)

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#EF4444")).
			Bold(true)

	mutedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#6B7280"))

	retrievalStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#8B5CF6"))
)

// markdownRenderer renders answers for the terminal. With no glamour renderer
// it passes markdown through unchanged.
type markdownRenderer struct {
	term *glamour.TermRenderer
}

func newMarkdownRenderer(plain bool) *markdownRenderer {
	if plain {
		return &markdownRenderer{}
	}
	term, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(100),
	)
	if err != nil {
		return &markdownRenderer{}
	}
	return &markdownRenderer{term: term}
}

func (r *markdownRenderer) Render(md string) string {
	if r.term != nil {
		if out, err := r.term.Render(md); err == nil {
			return out
		}
	}
	return md + "\n\n"
}

func printPersonas(out io.Writer, personas []persona.Persona) {
	fmt.Fprintln(out, headerStyle.Render("🎭 Available personas"))
	for _, p := range personas {
		line := fmt.Sprintf("  %-10s %s", p.ID, p.DisplayName)
		if p.UsesRetrieval {
			line += " " + retrievalStyle.Render("(grounded in ingested documents)")
		}
		fmt.Fprintln(out, line)
	}
}
