package types

import (
	"fmt"
	"io"
	"sort"
	"sync"
)

// GasReport aggregates gas used per operation label.
type GasReport struct {
	mu      sync.Mutex
	entries map[string]*GasReportEntry
}

type GasReportEntry struct {
	Label string
	Calls int
	Min   uint64
	Max   uint64
	Total uint64
}

// Avg returns the average gas per call.
func (e GasReportEntry) Avg() uint64 {
	if e.Calls == 0 {
		return 0
	}
	return e.Total / uint64(e.Calls)
}

func NewGasReport() *GasReport {
	return &GasReport{
		entries: make(map[string]*GasReportEntry),
	}
}

// Record adds the gas used by one call.
func (r *GasReport) Record(label string, gasUsed uint64) {
	r.mu.Lock()
	defer r.mu.Unlock()

	entry, found := r.entries[label]
	if !found {
		r.entries[label] = &GasReportEntry{
			Label: label,
			Calls: 1,
			Min:   gasUsed,
			Max:   gasUsed,
			Total: gasUsed,
		}
		return
	}

	entry.Calls++
	entry.Total += gasUsed
	if gasUsed < entry.Min {
		entry.Min = gasUsed
	}
	if gasUsed > entry.Max {
		entry.Max = gasUsed
	}
}

// Entries returns a copy of the entries sorted by label.
func (r *GasReport) Entries() []GasReportEntry {
	r.mu.Lock()
	defer r.mu.Unlock()

	entries := make([]GasReportEntry, 0, len(r.entries))
	for _, entry := range r.entries {
		entries = append(entries, *entry)
	}
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Label < entries[j].Label
	})
	return entries
}

// Print writes the report as a table.
func (r *GasReport) Print(w io.Writer) {
	entries := r.Entries()
	if len(entries) == 0 {
		return
	}

	_, _ = fmt.Fprintf(w, "%-40s %6s %10s %10s %10s\n", "operation", "calls", "min", "max", "avg")
	for _, entry := range entries {
		_, _ = fmt.Fprintf(w, "%-40s %6d %10d %10d %10d\n", entry.Label, entry.Calls, entry.Min, entry.Max, entry.Avg())
	}
}
