package history

import (
	"math"

	"github.com/cardtrack/deckscan/internal/codedef"
)

// insertion describes a candidate missing-card recovery: splice
// missingSource between foundSource and target, replacing the direct
// foundSource->target consolidated link.
type insertion struct {
	pathIndex    int // position of foundSource in path
	missingIndex int
	count        int
}

// recoverMissingCards attempts to splice every card index absent from
// path into it, per spec.md §4.8 "missing-card recovery". totalEntries
// is the number of distinct HistoryEntry records (not samples); it
// gates the popularity threshold.
func recoverMissingCards(path []int, matrix *LinkMatrix, format codedef.Format, totalEntries int, popularity float64) []int {
	present := make(map[int]bool, len(path))
	for _, idx := range path {
		present[idx] = true
	}

	threshold := int(math.Ceil(float64(totalEntries) * popularity))

	for _, missing := range candidateIndices(format) {
		if present[missing] {
			continue
		}
		if format.Reversible {
			if rev, ok := reversedCounterpart(format, missing); ok && present[rev] {
				continue
			}
		}

		best, ambiguous := bestInsertion(missing, path, matrix)
		if ambiguous || best == nil || best.count < threshold {
			continue
		}

		newPath := make([]int, 0, len(path)+1)
		newPath = append(newPath, path[:best.pathIndex+1]...)
		newPath = append(newPath, missing)
		newPath = append(newPath, path[best.pathIndex+1:]...)
		path = newPath
		present[missing] = true
	}
	return path
}

// bestInsertion finds the highest-count (foundSource -> missing)
// link whose target also appears as a consolidated-path edge's
// target from some source, i.e. a point in path where missing could
// be spliced in front of an existing edge. It reports ambiguous=true
// if two or more candidates tie for the highest count.
func bestInsertion(missing int, path []int, matrix *LinkMatrix) (*insertion, bool) {
	outgoing := matrix.Outgoing(missing)
	var best *insertion
	ambiguous := false

	for target := range outgoing {
		for i := 0; i+1 < len(path); i++ {
			if path[i+1] != target {
				continue
			}
			foundSource := path[i]
			count, ok := matrix.Get(foundSource, missing)
			if !ok {
				continue
			}
			switch {
			case best == nil || count > best.count:
				best = &insertion{pathIndex: i, missingIndex: missing, count: count}
				ambiguous = false
			case count == best.count && i != best.pathIndex:
				ambiguous = true
			}
		}
	}
	return best, ambiguous
}

// candidateIndices returns every real card index the format defines
// (excluding the HEAD/TAIL sentinels).
func candidateIndices(format codedef.Format) []int {
	n := format.MaxCardCountWithReversed
	out := make([]int, n)
	for i := range out {
		out[i] = i
	}
	return out
}

// reversedCounterpart maps a card index to its reversed-orientation
// counterpart for reversible formats, which store the normal
// orientation in [0,maxCardCount) and the reversed one immediately
// after, in [maxCardCount,maxCardCountWithReversed).
func reversedCounterpart(format codedef.Format, idx int) (int, bool) {
	if !format.Reversible {
		return 0, false
	}
	switch {
	case idx < format.MaxCardCount:
		rev := idx + format.MaxCardCount
		if rev < format.MaxCardCountWithReversed {
			return rev, true
		}
	case idx < format.MaxCardCountWithReversed:
		return idx - format.MaxCardCount, true
	}
	return 0, false
}
