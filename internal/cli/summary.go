package cli

import (
	"fmt"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/dshills/docimpact/internal/report"
)

var (
	summaryTitle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#5B8DEF"))
	summaryLabel = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#888888"))
	summaryAlert = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FF6B6B"))
	summaryBox = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#444444")).
			Padding(0, 1)
)

// renderSummary returns the boxed run summary printed to stderr after a
// report is written. path is empty when the report went to stdout.
func renderSummary(r *report.Report, path string) string {
	userFacing := fmt.Sprintf("%d", r.UserFacingCount)
	if r.UserFacingCount > 0 {
		userFacing = summaryAlert.Render(userFacing)
	}
	dest := "stdout"
	if path != "" {
		dest = path
	}

	lines := lipgloss.JoinVertical(lipgloss.Left,
		summaryTitle.Render("docimpact: "+r.RepoRef),
		summaryLabel.Render("Since:       ")+r.Since.Format(time.DateOnly),
		summaryLabel.Render("Analyzed:    ")+fmt.Sprintf("%d", r.TotalCount),
		summaryLabel.Render("User-facing: ")+userFacing,
		summaryLabel.Render("Failed:      ")+fmt.Sprintf("%d", r.FailedCount()),
		summaryLabel.Render("Report:      ")+dest,
	)
	return summaryBox.Render(lines)
}
