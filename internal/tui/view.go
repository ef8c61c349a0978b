package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/sightglass-data/sgtool/internal/model"
	"github.com/sightglass-data/sgtool/internal/tui/components"
)

// View renders the current state of the model.
func (m Model) View() string {
	var sections []string

	title := titleStyle.Render(fmt.Sprintf("sgtool pipe • %s → %s", m.source, m.target))
	sections = append(sections, title)

	progress := components.NewProgress(m.total).View(m.completed, m.rows)
	sections = append(sections, sectionStyle.Render("Progress"), progress)

	entries := components.NewTransferList(m.order, m.transfers).Entries()
	if len(entries) > 0 {
		sections = append(sections, sectionStyle.Render("Directives"))
		sections = append(sections, renderTransferEntries(entries))
	}

	summary := components.NewSummary(components.SummaryData{
		Total:     m.total,
		Completed: m.completed,
		Failed:    m.failed,
		Rows:      m.rows,
		Finished:  m.finished,
		Cancelled: m.cancelled,
		Outcome:   m.outcome,
	}).View()
	if strings.TrimSpace(summary) != "" {
		sections = append(sections, sectionStyle.Render("Summary"), summaryStyle.Render(summary))
	}

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func renderTransferEntries(entries []components.TransferEntry) string {
	var lines []string
	for _, entry := range entries {
		res := entry.Result
		icon := StatusIcon(res.Status)
		line := fmt.Sprintf(" %s %s", icon, entry.Directive)
		if res.Status == model.StatusSuccess {
			line = fmt.Sprintf("%s — %d rows", line, res.Rows)
		}
		if strings.TrimSpace(res.Message) != "" && res.Status != model.StatusSuccess {
			line = fmt.Sprintf("%s — %s", line, res.Message)
		}
		if res.Duration > 0 {
			line = fmt.Sprintf("%s (%s)", line, res.Duration.Truncate(10*time.Millisecond))
		}
		lines = append(lines, line)
	}
	return strings.Join(lines, "\n")
}

// StatusIcon returns the glyph representing a transfer status.
func StatusIcon(status string) string {
	switch status {
	case model.StatusSuccess:
		return successStyle.Render("✓")
	case model.StatusRunning:
		return runningStyle.Render("⏳")
	case model.StatusFailed:
		return failureStyle.Render("✗")
	default:
		return pendingStyle.Render("…")
	}
}
