package history

import "github.com/cardtrack/deckscan/internal/codedef"

// Classification reports how much trust a temporal analysis result
// deserves (spec.md §4.8 "confidence classification").
type Classification int

const (
	Inconclusive Classification = iota
	InsufficientHistory
	InsufficientConfidence
	SuccessLowConfidence
	SuccessHighConfidence
)

func (c Classification) String() string {
	switch c {
	case InsufficientHistory:
		return "InsufficientHistory"
	case InsufficientConfidence:
		return "InsufficientConfidence"
	case SuccessLowConfidence:
		return "SuccessLowConfidence"
	case SuccessHighConfidence:
		return "SuccessHighConfidence"
	default:
		return "Inconclusive"
	}
}

// Result is the outcome of analyzing a format's accumulated history.
type Result struct {
	Indices          []int
	Confidence       Classification
	ConfidenceFactor float64
}

// Analyze consolidates the analyzer's accumulated history into a
// single HEAD-to-TAIL ordering, recovers missing cards, and classifies
// the result's confidence (spec.md §4.8).
func (a *Analyzer) Analyze(format codedef.Format) Result {
	if a.totalSamples() < a.params.MinHistoryEntries {
		return Result{Confidence: InsufficientHistory}
	}

	head, tail := format.Head(), format.Tail()
	matrix := BuildLinkMatrix(a.entries, head, tail)

	path, ok := Consolidate(matrix, head, tail)
	if !ok {
		return Result{Confidence: Inconclusive}
	}

	path = recoverMissingCards(path, matrix, format, len(a.entries), a.params.MissingCardPopularity)

	factor := confidenceFactor(path, matrix, a.totalSamples())
	class := classifyConfidence(factor, a.params)

	return Result{
		Indices:          stripSentinels(path, head, tail),
		Confidence:       class,
		ConfidenceFactor: factor,
	}
}

// confidenceFactor averages the link count across every consecutive
// pair in path, then expresses that average as a percentage of the
// total number of recorded samples (spec.md §4.8).
func confidenceFactor(path []int, matrix *LinkMatrix, totalSamples int) float64 {
	if len(path) < 2 || totalSamples == 0 {
		return 0
	}
	sum := 0
	edges := 0
	for i := 0; i+1 < len(path); i++ {
		count, ok := matrix.Get(path[i], path[i+1])
		if !ok {
			continue
		}
		sum += count
		edges++
	}
	if edges == 0 {
		return 0
	}
	avg := float64(sum) / float64(edges)
	return avg / float64(totalSamples) * 100
}

func classifyConfidence(factor float64, p Params) Classification {
	switch {
	case factor >= p.HighConfidenceThreshold:
		return SuccessHighConfidence
	case factor >= p.MinimumConfidenceThreshold:
		return SuccessLowConfidence
	default:
		return InsufficientConfidence
	}
}

// stripSentinels removes the leading HEAD and trailing TAIL markers
// BuildLinkMatrix/Consolidate bracket every path with.
func stripSentinels(path []int, head, tail int) []int {
	start, end := 0, len(path)
	if start < end && path[start] == head {
		start++
	}
	if end > start && path[end-1] == tail {
		end--
	}
	out := make([]int, end-start)
	copy(out, path[start:end])
	return out
}
