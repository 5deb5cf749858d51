package render

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/Tiliavir/trivial-time-reconciler/internal/reconcile"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("230")).
			Background(lipgloss.Color("62")).
			Padding(0, 1)

	boxStyle = lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("240")).
			Padding(0, 1)

	labelStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	matchedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("46"))
	missingStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("226")).Bold(true)
	onlyStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("69"))
	skippedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
)

// Summary renders the counts of a report as a framed block.
func Summary(s reconcile.Summary) string {
	lines := []string{
		line("GitLab period", periodText(s.FeedPeriod)),
		line("Toggl period", periodText(s.LedgerPeriod)),
		line("GitLab events", fmt.Sprint(s.TotalFeedEvents)),
		line("Toggl entries", fmt.Sprint(s.TotalLedgerEntries)),
		line("Matched", matchedStyle.Render(fmt.Sprint(s.MatchedCount))),
		line("Missing", missingStyle.Render(fmt.Sprint(s.MissingCount))),
		line("Toggl only", onlyStyle.Render(fmt.Sprint(s.SourceOnlyCount))),
		line("To import", fmt.Sprint(s.SquashedCount)),
	}
	if s.UnnumberedFeedEvents > 0 {
		lines = append(lines, line("Without task", fmt.Sprint(s.UnnumberedFeedEvents)))
	}
	if s.SkippedRecords > 0 {
		lines = append(lines, line("Skipped", skippedStyle.Render(fmt.Sprintf("%d (gitlab %d, toggl %d)",
			s.SkippedRecords, s.SkippedFeedEvents, s.SkippedLedgerEntries))))
	}
	body := strings.Join(lines, "\n")
	return lipgloss.JoinVertical(lipgloss.Left,
		titleStyle.Render("GitLab / Toggl comparison"),
		boxStyle.Render(body),
	)
}

func line(label, value string) string {
	return labelStyle.Render(fmt.Sprintf("%-14s", label)) + " " + value
}

func periodText(p reconcile.Period) string {
	start, end := p.Start, p.End
	if start == "" {
		start = "N/A"
	}
	if end == "" {
		end = "N/A"
	}
	return start + " to " + end
}
