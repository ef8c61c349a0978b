package components

import (
	"github.com/sightglass-data/sgtool/internal/model"
)

// TransferEntry represents a single directive for rendering.
type TransferEntry struct {
	Directive string
	Result    model.TransferResult
}

// TransferList renders the run's directives with their current status.
type TransferList struct {
	entries []TransferEntry
}

// NewTransferList constructs a transfer list component.
func NewTransferList(order []string, transfers map[string]model.TransferResult) TransferList {
	entries := make([]TransferEntry, 0, len(order))
	for _, directive := range order {
		entries = append(entries, TransferEntry{Directive: directive, Result: transfers[directive]})
	}
	return TransferList{entries: entries}
}

// Entries returns the ordered transfer entries.
func (l TransferList) Entries() []TransferEntry {
	clone := make([]TransferEntry, len(l.entries))
	copy(clone, l.entries)
	return clone
}
