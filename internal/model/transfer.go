// Package model holds the result types shared by the pipe runner and the
// progress display.
package model

import (
	"time"
)

const (
	// StatusPending indicates a transfer has not started yet.
	StatusPending = "pending"
	// StatusRunning indicates a transfer is actively moving rows.
	StatusRunning = "running"
	// StatusSuccess marks a completed transfer.
	StatusSuccess = "success"
	// StatusFailed marks a failure during load or dump.
	StatusFailed = "failed"
)

// TransferResult captures the outcome of moving one directive from the source
// syncer into the target.
type TransferResult struct {
	Directive string
	Status    string
	Rows      int
	Message   string
	Error     error
	Duration  time.Duration
}

// Done reports whether the transfer reached a terminal status.
func (r TransferResult) Done() bool {
	return r.Status == StatusSuccess || r.Status == StatusFailed
}

// TransferSummary aggregates the outcomes of a pipe run.
type TransferSummary struct {
	Total     int
	Succeeded int
	Failed    int
	Rows      int
}

// Summarize folds transfer results into run totals.
func Summarize(results []TransferResult) TransferSummary {
	summary := TransferSummary{Total: len(results)}
	for _, r := range results {
		switch r.Status {
		case StatusSuccess:
			summary.Succeeded++
			summary.Rows += r.Rows
		case StatusFailed:
			summary.Failed++
		}
	}
	return summary
}

// AllSucceeded reports whether every transfer completed successfully.
func (s TransferSummary) AllSucceeded() bool {
	return s.Failed == 0 && s.Succeeded == s.Total
}
