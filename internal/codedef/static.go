package codedef

import (
	"math"

	"github.com/cardtrack/deckscan/internal/fixed"
)

// Static is an in-memory Definition built once from a fixed mark
// pattern and index->code table, then prepared for decode by
// expanding each valid codeword to every 1-bit-distant neighbor that
// is not itself ambiguous (Hamming-distance-1 error correction).
type Static struct {
	format       Format
	marks        []MarkDefinition
	bitMarks     []MarkDefinition
	neighbors    []int // indices into marks of bit-neighboring landmarks
	indexToCode  map[int]uint64
	codeToIndex  map[uint64]int // built by PrepareForDecode
	prepared     bool
	wordBits     int
	minGapRatios map[int]fixed.Q
}

// NewStatic builds a Static definition. indexToCode must have exactly
// format.MaxCardCount entries (or MaxCardCountWithReversed when
// reversible) keyed by card index.
func NewStatic(format Format, marks []MarkDefinition, indexToCode map[int]uint64) *Static {
	s := &Static{
		format:      format,
		marks:       marks,
		indexToCode: indexToCode,
	}
	for i, m := range marks {
		if m.Type == MarkBit {
			s.bitMarks = append(s.bitMarks, m)
		}
		if m.Type == MarkLandmark {
			// A landmark is bit-neighboring if it is adjacent (ignoring
			// Space marks) to at least one Bit mark.
			if isAdjacentToBit(marks, i) {
				s.neighbors = append(s.neighbors, i)
			}
		}
	}
	s.wordBits = len(s.bitMarks)
	s.PrepareForDecode()
	return s
}

func isAdjacentToBit(marks []MarkDefinition, i int) bool {
	for d := -1; d <= 1; d += 2 {
		j := i + d
		for j >= 0 && j < len(marks) {
			switch marks[j].Type {
			case MarkBit:
				return true
			case MarkSpace:
				j += d
				continue
			default:
				j = -1 // hit another landmark first
			}
			break
		}
	}
	return false
}

func (s *Static) Format() Format                    { return s.format }
func (s *Static) MarkDefinitions() []MarkDefinition  { return s.marks }
func (s *Static) BitMarks() []MarkDefinition         { return s.bitMarks }
func (s *Static) BitNeighboringLandmarks() []int     { return s.neighbors }

// CalcMinSampleWidth returns the minimum deck width, in samples, for
// the pattern to be legible at the given angle normal (1.0 == aligned
// with the scan line; foreshortening at steeper angles enlarges the
// requirement).
func (s *Static) CalcMinSampleWidth(angleNormal float64) fixed.Q {
	total := fixed.FromInt(0)
	for _, m := range s.marks {
		total += m.WidthRatio
	}
	if angleNormal <= 0 {
		angleNormal = 1
	}
	return fixed.FromFloat(total.Float() / angleNormal)
}

// CalcMinSampleHeight returns the minimum deck height, in samples, to
// hold cardCount rows at the given angle normal.
func (s *Static) CalcMinSampleHeight(angleNormal float64, cardCount int) fixed.Q {
	if angleNormal <= 0 {
		angleNormal = 1
	}
	return fixed.FromFloat(float64(cardCount) / angleNormal)
}

// NarrowestLandmarkNormalizedWidth returns the smallest WidthRatio
// among the pattern's landmark marks.
func (s *Static) NarrowestLandmarkNormalizedWidth() fixed.Q {
	var narrowest fixed.Q = -1
	for _, m := range s.marks {
		if m.Type != MarkLandmark {
			continue
		}
		if narrowest < 0 || m.WidthRatio < narrowest {
			narrowest = m.WidthRatio
		}
	}
	if narrowest < 0 {
		return 0
	}
	return narrowest
}

// NormalizeBitMarks returns the normalized center offset, in [0,1], of
// every bit mark strictly between mark indices from and to (exclusive),
// ordered by position. Offsets are relative to the cumulative
// WidthRatio span between the two landmarks.
func (s *Static) NormalizeBitMarks(from, to int) []fixed.Q {
	if from < 0 || to > len(s.marks) || from >= to {
		return nil
	}
	span := s.marks[from:to]
	var total fixed.Q
	for _, m := range span {
		total += m.WidthRatio
	}
	if total == 0 {
		return nil
	}
	var offsets []fixed.Q
	var cum fixed.Q
	for _, m := range span {
		center := cum + m.WidthRatio/2
		if m.Type == MarkBit {
			offsets = append(offsets, center.Div(total))
		}
		cum += m.WidthRatio
	}
	return offsets
}

// BestMatch slides a window the width of the full mark pattern across
// marks, scoring each window by how closely its normalized widths fit
// the pattern's WidthRatio sequence, and returns the lowest-error
// window as a DeckMatchResult. The scoring/pairing is intentionally a
// closed box from the matcher's point of view (spec.md §4.3 step 4);
// callers only ever see the returned error, never this method's
// internals.
func (s *Static) BestMatch(marks []MarkLocation) (*DeckMatchResult, bool) {
	patternLen := len(s.marks)
	if patternLen == 0 || len(marks) < patternLen {
		return nil, false
	}

	var patternTotal fixed.Q
	for _, m := range s.marks {
		patternTotal += m.WidthRatio
	}
	if patternTotal == 0 {
		return nil, false
	}

	bestErr := math.MaxFloat64
	bestStart := -1
	for start := 0; start+patternLen <= len(marks); start++ {
		window := marks[start : start+patternLen]
		var windowTotal float64
		for _, m := range window {
			windowTotal += float64(m.SampleCount())
		}
		if windowTotal <= 0 {
			continue
		}
		var sqErr float64
		for i, m := range window {
			got := float64(m.SampleCount()) / windowTotal
			want := s.marks[i].WidthRatio.Div(patternTotal).Float()
			d := got - want
			sqErr += d * d
		}
		if sqErr < bestErr {
			bestErr = sqErr
			bestStart = start
		}
	}
	if bestStart < 0 {
		return nil, false
	}

	matched := make([]MarkLocation, patternLen)
	copy(matched, marks[bestStart:bestStart+patternLen])
	for i := range matched {
		matched[i].MatchedDefinitionIndex = i
	}
	return &DeckMatchResult{
		Location: DeckLocation{Marks: matched},
		Error:    math.Sqrt(bestErr),
	}, true
}

// PrepareForDecode builds the code->index map from the index->code
// map, then expands it with every single-bit-flip neighbor of each
// valid codeword that is not already claimed by (and does not itself
// collide with) another valid codeword, implementing Hamming-distance
// error correction. It returns whether preparation succeeded (a
// non-empty table).
func (s *Static) PrepareForDecode() bool {
	if len(s.indexToCode) == 0 || s.wordBits == 0 {
		return false
	}
	exact := make(map[uint64]int, len(s.indexToCode))
	for idx, code := range s.indexToCode {
		exact[code] = idx
	}

	table := make(map[uint64]int, len(exact)*2)
	for code, idx := range exact {
		table[code] = idx
	}

	mask := uint64(1)<<uint(s.wordBits) - 1
	claimedBy := make(map[uint64]int) // neighbor code -> owning exact index, -1 if ambiguous
	for code, idx := range exact {
		for b := 0; b < s.wordBits; b++ {
			neighbor := code ^ (uint64(1) << uint(b))
			neighbor &= mask
			if _, isExact := exact[neighbor]; isExact {
				continue // collides with a real codeword, never error-corrected
			}
			if owner, ok := claimedBy[neighbor]; ok {
				if owner != idx {
					claimedBy[neighbor] = -1 // ambiguous between two codewords
				}
			} else {
				claimedBy[neighbor] = idx
			}
		}
	}
	for neighbor, idx := range claimedBy {
		if idx < 0 {
			continue
		}
		table[neighbor] = idx
	}

	s.codeToIndex = table
	s.prepared = true
	return true
}

// MapCodeToErrorCorrectedIndex maps a raw sampled codeword to a card
// index, or reports Unassigned (false) when the code is not a valid
// nor uniquely-correctable codeword.
func (s *Static) MapCodeToErrorCorrectedIndex(code uint64) (int, bool) {
	if !s.prepared {
		return 0, false
	}
	idx, ok := s.codeToIndex[code]
	return idx, ok
}

// MapIndexToCode returns the canonical codeword for a card index.
func (s *Static) MapIndexToCode(index int) (uint64, bool) {
	code, ok := s.indexToCode[index]
	return code, ok
}
