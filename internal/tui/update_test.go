package tui

import (
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/require"

	"github.com/sightglass-data/sgtool/internal/model"
)

func TestUpdateHandlesTransferStart(t *testing.T) {
	m := NewModel("a", "b", []string{"metrics"})
	updated, _ := m.Update(TransferStartMsg{Directive: "metrics", Time: time.Now()})
	m = updated.(Model)
	require.Equal(t, model.StatusRunning, m.transfers["metrics"].Status)
	require.False(t, m.IsFinished())
}

func TestUpdateHandlesTransferCompletion(t *testing.T) {
	m := NewModel("a", "b", []string{"metrics", "events"})
	res := model.TransferResult{Directive: "metrics", Status: model.StatusSuccess, Rows: 10}
	updated, _ := m.Update(TransferCompleteMsg{Result: res})
	m = updated.(Model)
	require.Equal(t, model.StatusSuccess, m.transfers["metrics"].Status)
	require.Equal(t, 1, m.CompletedTransfers())
	require.False(t, m.IsFinished())
}

func TestUpdateCountsRepeatedCompletionOnce(t *testing.T) {
	m := NewModel("a", "b", []string{"metrics"})
	res := model.TransferResult{Directive: "metrics", Status: model.StatusSuccess, Rows: 10}

	updated, _ := m.Update(TransferCompleteMsg{Result: res})
	m = updated.(Model)
	updated, _ = m.Update(TransferCompleteMsg{Result: res})
	m = updated.(Model)

	require.Equal(t, 1, m.CompletedTransfers())
	require.Equal(t, 10, m.RowsMoved())
}

func TestUpdateFailureFinishesRun(t *testing.T) {
	m := NewModel("a", "b", []string{"metrics", "events"})
	res := model.TransferResult{Directive: "metrics", Status: model.StatusFailed, Message: "connection refused"}
	updated, _ := m.Update(TransferCompleteMsg{Result: res})
	m = updated.(Model)
	require.True(t, m.IsFinished())
	require.Equal(t, 1, m.CompletedTransfers())
	require.Equal(t, 1, m.FailedTransfers())
}

func TestUpdateIgnoresEmptyDirective(t *testing.T) {
	m := NewModel("a", "b", []string{"metrics"})
	updated, _ := m.Update(TransferCompleteMsg{Result: model.TransferResult{Status: model.StatusSuccess}})
	m = updated.(Model)
	require.Zero(t, m.CompletedTransfers())
}

func TestUpdateHandlesOutcomeMessage(t *testing.T) {
	m := NewModel("a", "b", nil)
	updated, _ := m.Update(OutcomeMsg{Committed: false, Message: "rolled back 2 stores"})
	m = updated.(Model)
	require.NotNil(t, m.outcome)
	require.False(t, m.outcome.Committed)
	require.Equal(t, "rolled back 2 stores", m.outcome.Message)
}

func TestUpdateHandlesCtrlC(t *testing.T) {
	m := NewModel("a", "b", nil)
	updated, cmd := m.Update(tea.KeyMsg{Type: tea.KeyCtrlC})
	require.Nil(t, cmd)
	m = updated.(Model)
	require.True(t, m.cancelled)
	require.True(t, m.IsFinished())
}
