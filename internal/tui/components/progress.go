package components

import (
	"fmt"
	"math"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/lipgloss"
)

// Progress renders overall run completion.
type Progress struct {
	bar   progress.Model
	total int
}

// NewProgress creates a progress component for the given directive total.
func NewProgress(total int) Progress {
	bar := progress.New(progress.WithDefaultGradient())
	bar.Width = 30
	return Progress{bar: bar, total: total}
}

// View renders the progress bar with the completed directive count and the
// cumulative rows moved so far.
func (p Progress) View(completed, rows int) string {
	ratio := 0.0
	if p.total > 0 {
		ratio = math.Min(1.0, float64(completed)/float64(p.total))
	}
	label := lipgloss.NewStyle().Bold(true).Render(fmt.Sprintf("%d/%d", completed, p.total))
	line := lipgloss.JoinHorizontal(lipgloss.Left, label, " ", p.bar.ViewAs(ratio))
	if rows > 0 {
		counter := lipgloss.NewStyle().Faint(true).Render(fmt.Sprintf("%d rows", rows))
		line = lipgloss.JoinHorizontal(lipgloss.Left, line, " ", counter)
	}
	return line
}
