package report

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
)

var (
	passColor = lipgloss.Color("#9ece6a")
	failColor = lipgloss.Color("#f7768e")
	dimColor  = lipgloss.Color("#6c6c6c")

	passStyle = lipgloss.NewStyle().Foreground(passColor).Bold(true)
	failStyle = lipgloss.NewStyle().Foreground(failColor).Bold(true)
	dimStyle  = lipgloss.NewStyle().Foreground(dimColor)
)

// Render renders Markdown for the terminal. On renderer errors the input is
// returned unchanged.
func Render(markdown string, width int) string {
	if width <= 0 {
		width = 80
	}
	renderer, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return markdown
	}
	out, err := renderer.Render(markdown)
	if err != nil {
		return markdown
	}
	return strings.TrimSpace(out)
}

// StatusLine is a one-line colored summary, e.g. "PASS 12 scenarios (12 passed)".
func StatusLine(r *Run) string {
	label := passStyle.Render("PASS")
	if !r.Passed() {
		label = failStyle.Render("FAIL")
	}

	var parts []string
	for _, status := range statusOrder {
		if n := r.Count(status); n > 0 {
			parts = append(parts, fmt.Sprintf("%d %s", n, status))
		}
	}
	detail := dimStyle.Render(fmt.Sprintf("(%s) in %s", strings.Join(parts, ", "), round(r.Duration)))
	return fmt.Sprintf("%s %d scenarios %s", label, len(r.Scenarios), detail)
}
