package components

import (
	"fmt"
	"strings"
)

// Outcome reports whether the run's stores were committed or rolled back.
type Outcome struct {
	Committed bool
	Message   string
}

// SummaryData aggregates counts for rendering summaries.
type SummaryData struct {
	Total     int
	Completed int
	Failed    int
	Rows      int
	Finished  bool
	Cancelled bool
	Outcome   *Outcome
}

// Summary renders a textual run summary.
type Summary struct {
	data SummaryData
}

// NewSummary creates a new Summary component.
func NewSummary(data SummaryData) Summary {
	return Summary{data: data}
}

// View renders the summary.
func (s Summary) View() string {
	var lines []string
	if s.data.Total > 0 {
		line := fmt.Sprintf("Directives: %d/%d completed", s.data.Completed, s.data.Total)
		if s.data.Rows > 0 {
			line = fmt.Sprintf("%s, %d rows moved", line, s.data.Rows)
		}
		lines = append(lines, line)
	}

	if s.data.Cancelled {
		lines = append(lines, "Run cancelled")
	} else if s.data.Finished && s.data.Total > 0 {
		switch {
		case s.data.Failed > 0:
			lines = append(lines, fmt.Sprintf("Run finished with %d failed", s.data.Failed))
		case s.data.Completed == s.data.Total:
			lines = append(lines, "Run finished successfully")
		default:
			lines = append(lines, "Run finished with pending directives")
		}
	}

	if s.data.Outcome != nil {
		status := "✗"
		if s.data.Outcome.Committed {
			status = "✓"
		}
		lines = append(lines, fmt.Sprintf("Stores: %s %s", status, s.data.Outcome.Message))
	}

	return strings.Join(lines, "\n")
}
