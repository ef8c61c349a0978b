package tui

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/sightglass-data/sgtool/internal/model"
	"github.com/sightglass-data/sgtool/internal/tui/components"
)

// TransferStartMsg indicates a directive transfer has started.
type TransferStartMsg struct {
	Directive string
	Time      time.Time
}

// TransferCompleteMsg reports that a directive transfer has finished.
type TransferCompleteMsg struct {
	Result model.TransferResult
}

// OutcomeMsg carries the final commit or rollback outcome of the run.
type OutcomeMsg struct {
	Committed bool
	Message   string
}

type tickMsg struct{}

// Model contains the Bubbletea state for the pipe progress display.
type Model struct {
	source    string
	target    string
	transfers map[string]model.TransferResult
	order     []string
	outcome   *components.Outcome
	total     int
	completed int
	failed    int
	rows      int
	finished  bool
	cancelled bool
}

// NewModel constructs a progress model for a pipe run moving the given
// directives from source to target.
func NewModel(source, target string, directives []string) Model {
	m := Model{
		source:    source,
		target:    target,
		transfers: make(map[string]model.TransferResult),
		order:     make([]string, 0, len(directives)),
	}

	for _, directive := range directives {
		m.ensureTransfer(directive)
	}

	return m
}

// Init starts the Bubbletea program.
func (m Model) Init() tea.Cmd {
	return tea.Tick(time.Millisecond, func(time.Time) tea.Msg { return tickMsg{} })
}

// TotalTransfers returns the number of directives tracked by the model.
func (m Model) TotalTransfers() int {
	return m.total
}

// CompletedTransfers returns the number of finished directives.
func (m Model) CompletedTransfers() int {
	return m.completed
}

// FailedTransfers returns the number of directives that finished in failure.
func (m Model) FailedTransfers() int {
	return m.failed
}

// RowsMoved returns the cumulative row count across completed transfers.
func (m Model) RowsMoved() int {
	return m.rows
}

// IsFinished reports whether the run has completed.
func (m Model) IsFinished() bool {
	return m.finished
}

func (m *Model) ensureTransfer(directive string) {
	if directive == "" {
		return
	}
	if _, exists := m.transfers[directive]; !exists {
		m.transfers[directive] = model.TransferResult{Directive: directive, Status: model.StatusPending}
		m.order = append(m.order, directive)
		m.total++
	}
}

func (m *Model) markFinishedIfComplete() {
	if m.total > 0 && m.completed >= m.total {
		m.finished = true
	}
}
