package history

import "sort"

// Consolidate walks matrix from head, greedily following the
// strongest outgoing link at each step, until it reaches tail. It
// returns the path (including head and tail) and true on success, or
// (nil,false) if consolidation is inconclusive or loops (spec.md §4.8
// "consolidation").
func Consolidate(matrix *LinkMatrix, head, tail int) ([]int, bool) {
	visited := map[int]bool{}
	path := []int{head}
	current := head

	for current != tail {
		if visited[current] {
			return nil, false
		}
		visited[current] = true

		outgoing := matrix.Outgoing(current)
		if len(outgoing) == 0 {
			return nil, false
		}

		next, ok := pickNext(outgoing, matrix)
		if !ok {
			return nil, false
		}
		if next != tail && visited[next] {
			return nil, false
		}

		path = append(path, next)
		current = next
	}
	return path, true
}

// pickNext selects the outgoing link with the greatest count. Ties
// among more than one candidate are broken by mutual-link preference;
// ties that remain ambiguous (neither or both mutual links exist, or
// more than two candidates tie) are inconclusive.
func pickNext(outgoing map[int]int, matrix *LinkMatrix) (int, bool) {
	maxCount := -1
	for _, c := range outgoing {
		if c > maxCount {
			maxCount = c
		}
	}
	var candidates []int
	for target, c := range outgoing {
		if c == maxCount {
			candidates = append(candidates, target)
		}
	}
	sort.Ints(candidates)

	switch len(candidates) {
	case 0:
		return 0, false
	case 1:
		return candidates[0], true
	case 2:
		a, b := candidates[0], candidates[1]
		aToB := matrix.Has(a, b)
		bToA := matrix.Has(b, a)
		if aToB && !bToA {
			return a, true
		}
		if bToA && !aToB {
			return b, true
		}
		return 0, false
	default:
		return 0, false
	}
}
