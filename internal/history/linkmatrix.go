// Package history implements the temporal history analyzer (spec.md
// §4.8): a per-row-sequence history of recently scanned decks, a link
// matrix built from that history, consolidation of the matrix into a
// single HEAD-to-TAIL path, missing-card recovery, and confidence
// classification.
package history

// LinkMatrix counts, per source card index, how many times each
// target index directly follows it across all recorded history
// entries. Rows are sized implicitly (HEAD/TAIL sentinels included).
type LinkMatrix struct {
	rows map[int]map[int]int
}

// NewLinkMatrix returns an empty matrix.
func NewLinkMatrix() *LinkMatrix {
	return &LinkMatrix{rows: make(map[int]map[int]int)}
}

// Add accumulates weight onto the (source,target) link.
func (m *LinkMatrix) Add(source, target, weight int) {
	row, ok := m.rows[source]
	if !ok {
		row = make(map[int]int)
		m.rows[source] = row
	}
	row[target] += weight
}

// Get returns the link's count, or (0,false) if no such link exists.
func (m *LinkMatrix) Get(source, target int) (int, bool) {
	row, ok := m.rows[source]
	if !ok {
		return 0, false
	}
	c, ok := row[target]
	return c, ok
}

// Has reports whether a (source,target) link exists at all.
func (m *LinkMatrix) Has(source, target int) bool {
	_, ok := m.Get(source, target)
	return ok
}

// Outgoing returns a copy of source's outgoing links, target->count.
func (m *LinkMatrix) Outgoing(source int) map[int]int {
	row, ok := m.rows[source]
	if !ok {
		return nil
	}
	out := make(map[int]int, len(row))
	for k, v := range row {
		out[k] = v
	}
	return out
}

// BuildLinkMatrix constructs the matrix from every history entry,
// bracketing each entry's index sequence with HEAD and TAIL (spec.md
// §4.8 "link matrix construction").
func BuildLinkMatrix(entries []HistoryEntry, head, tail int) *LinkMatrix {
	m := NewLinkMatrix()
	for _, e := range entries {
		count := e.Count()
		if count == 0 {
			continue
		}
		seq := make([]int, 0, len(e.Indices)+2)
		seq = append(seq, head)
		seq = append(seq, e.Indices...)
		seq = append(seq, tail)
		for i := 0; i+1 < len(seq); i++ {
			m.Add(seq[i], seq[i+1], count)
		}
	}
	return m
}
