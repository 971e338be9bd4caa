// Package resolve implements the row resolver ("genocide" rule,
// spec.md §4.7): when multiple ScannedCard candidates are believed to
// occupy the same deck row, it decides which survive.
package resolve

import "github.com/cardtrack/deckscan/internal/decode"

// Params bundles the resolver's tunable.
type Params struct {
	// GenocideScaleFactor is the dominance ratio a challenger must
	// exceed to eliminate the other; 1.0 reduces the rule to strict
	// majority.
	GenocideScaleFactor float64
}

// Challenge compares two overlapping candidates for the same row. If
// one dominates the other by more than ScaleFactor, it returns the
// winner and true; the caller discards the other entirely (counters
// cleared, not absorbed — see spec.md §9's genocide-absorption
// decision). If neither dominates, both survive: ok is false and
// winner is the zero value.
func (p Params) Challenge(a, b decode.ScannedCard) (winner decode.ScannedCard, ok bool) {
	bigger, smaller := a, b
	if smaller.Count > bigger.Count {
		bigger, smaller = smaller, bigger
	}
	if smaller.Count == 0 {
		return bigger, true
	}
	if float64(bigger.Count) > p.GenocideScaleFactor*float64(smaller.Count) {
		return bigger, true
	}
	return decode.ScannedCard{}, false
}

// Resolve folds a group of ScannedCard candidates believed to occupy
// the same row through pairwise genocide challenges, left to right,
// and returns the surviving candidates. A group of 0 or 1 candidates
// is returned unchanged.
func Resolve(group []decode.ScannedCard, p Params) []decode.ScannedCard {
	if len(group) < 2 {
		return group
	}
	survivors := []decode.ScannedCard{group[0]}
	for _, challenger := range group[1:] {
		last := survivors[len(survivors)-1]
		if winner, ok := p.Challenge(last, challenger); ok {
			survivors[len(survivors)-1] = winner
			continue
		}
		survivors = append(survivors, challenger)
	}
	return survivors
}

// ResolvedIndices extracts the surviving card index sequence in row
// order, the form the history analyzer consumes.
func ResolvedIndices(survivors []decode.ScannedCard) []int {
	out := make([]int, len(survivors))
	for i, s := range survivors {
		out[i] = s.CardIndex
	}
	return out
}
