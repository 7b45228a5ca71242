package statsui

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"github.com/verte-zerg/tuiano/internal/model"
	"github.com/verte-zerg/tuiano/internal/stats"
)

var (
	cardStyle = lipgloss.NewStyle().
			Padding(0, 1).
			Border(lipgloss.RoundedBorder(), true).
			BorderForeground(lipgloss.Color("#4A4A4A"))
	cardTitleStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#8C8C8C"))
	cardValueStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#F0F0F0")).Bold(true)
)

var noteColumnWidths = []int{5, 9, 13, 8, 7}

func renderOverview(sessions []model.SessionAggregate, window, width int) string {
	if len(sessions) == 0 {
		return "No sessions found."
	}
	summary := renderSummaryCards(sessions, width)
	var buf bytes.Buffer
	if err := stats.RenderCurvesWithSize(&buf, sessions, window, width, plotHeight, true); err != nil {
		return summary + "\n\n" + fmt.Sprintf("Failed to render curves: %v", err)
	}
	return strings.TrimRight(summary+"\n\n"+buf.String(), "\n")
}

func renderSummaryCards(sessions []model.SessionAggregate, width int) string {
	var totalNPM, totalHit, totalOnTime, bestNPM float64
	for _, s := range sessions {
		npm, hit := stats.SessionMetrics(s.Correct, s.Incorrect, s.DurationMs)
		totalNPM += npm
		totalHit += hit
		totalOnTime += stats.OnTimeRate(s)
		bestNPM = max(bestNPM, npm)
	}
	count := float64(len(sessions))
	cards := []string{
		metricCard("Sessions", fmt.Sprintf("%d", len(sessions))),
		metricCard("Avg Notes/min", fmt.Sprintf("%.1f", totalNPM/count)),
		metricCard("Best Notes/min", fmt.Sprintf("%.1f", bestNPM)),
		metricCard("Avg Hit Rate", fmt.Sprintf("%.1f%%", totalHit/count*100)),
		metricCard("Avg On Time", fmt.Sprintf("%.1f%%", totalOnTime/count*100)),
	}
	if width < 80 {
		return strings.Join(cards, "\n")
	}
	row1 := lipgloss.JoinHorizontal(lipgloss.Top, cards[0], cards[1], cards[2])
	row2 := lipgloss.JoinHorizontal(lipgloss.Top, cards[3], cards[4])
	return lipgloss.JoinVertical(lipgloss.Left, row1, row2)
}

func metricCard(label, value string) string {
	return cardStyle.Render(cardTitleStyle.Render(label) + "\n" + cardValueStyle.Render(value))
}

func newNoteTable() table.Model {
	columns := make([]table.Column, len(stats.NoteTableHeaders))
	for i, title := range stats.NoteTableHeaders {
		columns[i] = table.Column{Title: title, Width: max(noteColumnWidths[i], runewidth.StringWidth(title))}
	}
	t := table.New(table.WithColumns(columns), table.WithHeight(1))
	styles := table.DefaultStyles()
	styles.Header = styles.Header.
		Border(lipgloss.NormalBorder(), false, false, true, false).
		BorderForeground(lipgloss.Color("#4A4A4A")).
		Foreground(lipgloss.Color("#C0C0C0")).
		Bold(true).
		PaddingLeft(0)
	styles.Cell = styles.Cell.PaddingLeft(0)
	styles.Selected = styles.Cell.
		Foreground(lipgloss.Color("#F0F0F0")).
		Bold(true)
	t.SetStyles(styles)
	return t
}

// noteTableRows lists the windowed aggregates, weakest first.
func noteTableRows(report stats.Report) []table.Row {
	cells := stats.NoteTableRows(stats.SortWeakestFirst(report.NoteAggsWindow))
	rows := make([]table.Row, len(cells))
	for i, c := range cells {
		rows[i] = table.Row(c)
	}
	return rows
}

func renderNoteCurves(report stats.Report, window, width int) string {
	if len(report.Sessions) == 0 {
		return "No sessions found."
	}
	if len(report.CurveNotes) == 0 {
		return "No notes selected. Press Enter to set notes."
	}
	header := mutedStyle.Render("Notes: " + strings.Join(report.CurveNotes, ", "))
	var buf bytes.Buffer
	if err := stats.RenderNoteCurvesWithSize(&buf, report.Sessions, report.PerSession, report.CurveNotes, window, width, plotHeight, true); err != nil {
		return fmt.Sprintf("Failed to render note curves: %v", err)
	}
	return strings.TrimRight(header+"\n"+buf.String(), "\n")
}

func padLines(s string, width int) string {
	if width <= 0 || s == "" {
		return s
	}
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		lines[i] = padLine(line, width)
	}
	return strings.Join(lines, "\n")
}

func padLine(line string, width int) string {
	if w := lipgloss.Width(line); w < width {
		return line + strings.Repeat(" ", width-w)
	}
	return line
}

// fitLines pads or crops s to exactly height lines of width cells.
func fitLines(s string, width, height int) string {
	if width <= 0 || height <= 0 {
		return s
	}
	lines := strings.Split(s, "\n")
	if len(lines) > height {
		lines = lines[:height]
	}
	for i, line := range lines {
		lines[i] = padLine(line, width)
	}
	for len(lines) < height {
		lines = append(lines, strings.Repeat(" ", width))
	}
	return strings.Join(lines, "\n")
}

func truncateLine(s string, width int) string {
	if width <= 0 || runewidth.StringWidth(s) <= width {
		return s
	}
	if width <= 3 {
		return runewidth.Truncate(s, width, "")
	}
	return runewidth.Truncate(s, width, "...")
}
