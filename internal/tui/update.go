package tui

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/sightglass-data/sgtool/internal/model"
	"github.com/sightglass-data/sgtool/internal/tui/components"
)

// Update handles Bubbletea messages and updates model state.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tickMsg:
		return m, nil
	case TransferStartMsg:
		m.ensureTransfer(msg.Directive)
		transfer := m.transfers[msg.Directive]
		transfer.Status = model.StatusRunning
		m.transfers[msg.Directive] = transfer
		return m, nil
	case TransferCompleteMsg:
		directive := msg.Result.Directive
		if directive == "" {
			return m, nil
		}
		m.ensureTransfer(directive)
		previouslyDone := m.transfers[directive].Done()
		m.transfers[directive] = msg.Result
		if !previouslyDone && msg.Result.Done() {
			m.completed++
			m.rows += msg.Result.Rows
			if msg.Result.Status == model.StatusFailed {
				m.failed++
			}
			m.markFinishedIfComplete()
		}
		if msg.Result.Status == model.StatusFailed {
			m.finished = true
		}
		return m, nil
	case OutcomeMsg:
		m.outcome = &components.Outcome{Committed: msg.Committed, Message: msg.Message}
		return m, nil
	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC {
			m.cancelled = true
			m.finished = true
			return m, nil
		}
	case tea.QuitMsg:
		m.finished = true
		return m, nil
	}

	return m, nil
}
