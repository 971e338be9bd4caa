package history

import "time"

// HistoryEntry is a unique raw index sequence and the timestamps at
// which a scan produced exactly that sequence.
type HistoryEntry struct {
	Indices    []int
	Timestamps []time.Time
}

// Count returns the number of recorded occurrences.
func (h HistoryEntry) Count() int { return len(h.Timestamps) }

// Params bundles the analyzer's tunables (spec.md §4.8 / §6.1).
type Params struct {
	MaxHistoryAge              time.Duration
	MinHistoryEntries          int
	MissingCardPopularity      float64 // fraction of totalEntries a recovery triple must clear
	HighConfidenceThreshold    float64
	MinimumConfidenceThreshold float64
}

// Analyzer accumulates HistoryEntry records for one deck format and
// turns them into a consolidated, confidence-classified ordering.
type Analyzer struct {
	formatName string
	entries    []HistoryEntry
	params     Params
}

// NewAnalyzer returns an empty analyzer.
func NewAnalyzer(params Params) *Analyzer {
	return &Analyzer{params: params}
}

// AddEntry records one scan's raw per-row index sequence. If
// formatName differs from the analyzer's current format, all prior
// history is wiped and the new format adopted (spec.md §4.8).
func (a *Analyzer) AddEntry(indices []int, formatName string, now time.Time) {
	if a.formatName != formatName {
		a.entries = nil
		a.formatName = formatName
	}
	a.prune(now)

	for i := range a.entries {
		if equalInts(a.entries[i].Indices, indices) {
			a.entries[i].Timestamps = append(a.entries[i].Timestamps, now)
			return
		}
	}
	stored := make([]int, len(indices))
	copy(stored, indices)
	a.entries = append(a.entries, HistoryEntry{Indices: stored, Timestamps: []time.Time{now}})
}

// prune drops timestamps older than MaxHistoryAge, and any entry left
// with no timestamps.
func (a *Analyzer) prune(now time.Time) {
	if a.params.MaxHistoryAge <= 0 {
		return
	}
	cutoff := now.Add(-a.params.MaxHistoryAge)
	kept := a.entries[:0]
	for _, e := range a.entries {
		ts := e.Timestamps[:0]
		for _, t := range e.Timestamps {
			if t.After(cutoff) {
				ts = append(ts, t)
			}
		}
		e.Timestamps = ts
		if len(e.Timestamps) > 0 {
			kept = append(kept, e)
		}
	}
	a.entries = kept
}

// totalSamples returns the sum of every entry's occurrence count.
func (a *Analyzer) totalSamples() int {
	sum := 0
	for _, e := range a.entries {
		sum += e.Count()
	}
	return sum
}

func equalInts(a, b []int) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
