package diagram

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

var (
	summaryTitleStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(lipgloss.Color("#FAFAFA")).
				Background(lipgloss.Color("#7D56F4")).
				Padding(0, 1)

	summaryBoxStyle = lipgloss.NewStyle().
			Padding(0, 2).
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("63"))

	warnStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("208"))
)

// SummaryBox frames the headline results of an analysis.
func SummaryBox(title string, lines []string) string {
	body := summaryTitleStyle.Render(title)
	if len(lines) > 0 {
		body += "\n\n" + strings.Join(lines, "\n")
	}
	return summaryBoxStyle.Render(body)
}

// Warning renders a highlighted one-line notice.
func Warning(msg string) string {
	return warnStyle.Render("⚠ " + msg)
}
