package model

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestTransferResultCreation(t *testing.T) {
	t.Parallel()

	t.Run("creates transfer result with all fields", func(t *testing.T) {
		t.Parallel()
		result := TransferResult{
			Directive: "metrics",
			Status:    StatusSuccess,
			Rows:      1200,
			Message:   "moved 1200 rows",
			Duration:  time.Second,
		}

		require.Equal(t, "metrics", result.Directive)
		require.Equal(t, StatusSuccess, result.Status)
		require.Equal(t, 1200, result.Rows)
		require.Equal(t, "moved 1200 rows", result.Message)
		require.Equal(t, time.Second, result.Duration)
	})

	t.Run("creates transfer result with error", func(t *testing.T) {
		t.Parallel()
		err := errors.New("connection refused")
		result := TransferResult{
			Directive: "events",
			Status:    StatusFailed,
			Error:     err,
		}

		require.Equal(t, "events", result.Directive)
		require.Equal(t, StatusFailed, result.Status)
		require.Equal(t, err, result.Error)
	})
}

func TestTransferResult_Done(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		status string
		want   bool
	}{
		{"pending is not done", StatusPending, false},
		{"running is not done", StatusRunning, false},
		{"success is done", StatusSuccess, true},
		{"failed is done", StatusFailed, true},
		{"empty is not done", "", false},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := TransferResult{Status: tt.status}.Done()
			require.Equal(t, tt.want, got)
		})
	}
}

func TestSummarize(t *testing.T) {
	t.Parallel()

	t.Run("counts outcomes and accumulates rows", func(t *testing.T) {
		t.Parallel()
		summary := Summarize([]TransferResult{
			{Directive: "metrics", Status: StatusSuccess, Rows: 100},
			{Directive: "events", Status: StatusSuccess, Rows: 40},
			{Directive: "sessions", Status: StatusFailed},
		})

		require.Equal(t, 3, summary.Total)
		require.Equal(t, 2, summary.Succeeded)
		require.Equal(t, 1, summary.Failed)
		require.Equal(t, 140, summary.Rows)
		require.False(t, summary.AllSucceeded())
	})

	t.Run("all succeeded", func(t *testing.T) {
		t.Parallel()
		summary := Summarize([]TransferResult{
			{Directive: "metrics", Status: StatusSuccess, Rows: 5},
		})
		require.True(t, summary.AllSucceeded())
	})

	t.Run("pending transfers block success", func(t *testing.T) {
		t.Parallel()
		summary := Summarize([]TransferResult{
			{Directive: "metrics", Status: StatusSuccess},
			{Directive: "events", Status: StatusPending},
		})
		require.False(t, summary.AllSucceeded())
	})

	t.Run("empty run succeeds", func(t *testing.T) {
		t.Parallel()
		require.True(t, Summarize(nil).AllSucceeded())
	})
}
