// Package deckmatch implements the deck matcher (spec.md §4.3): it
// samples a candidate search line, runs the edge detector over it,
// groups the resulting edges into mark locations, and hands the mark
// sequence to a code definition's BestMatch.
package deckmatch

import (
	"errors"

	"github.com/cardtrack/deckscan/internal/codedef"
	"github.com/cardtrack/deckscan/internal/edge"
	"github.com/cardtrack/deckscan/internal/imagebuf"
	"github.com/cardtrack/deckscan/internal/sampleline"
)

// ErrNoMatch is returned when no mark sequence scored below the
// caller's error threshold, including when the line produced too few
// marks to even attempt a match.
var ErrNoMatch = errors.New("deckmatch: no match")

// Params bundles the matcher's tunables.
type Params struct {
	Edge                edge.Params
	SearchMaxMatchError float64
}

// Match runs the full deck-matcher pipeline over line against a luma
// buffer, using def's mark pattern. It returns ErrNoMatch if the line
// cannot be sampled, the detected edges close no marks, no closed mark
// sequence aligns to def's pattern, or the best alignment's error meets
// or exceeds SearchMaxMatchError. An error from the edge detector (such
// as edge.ErrTooShort) is returned unchanged.
func Match(line sampleline.Line, luma imagebuf.Buffer[byte], scanIndex int, def codedef.Definition, p Params, scratch *edge.Scratch) (*codedef.DeckMatchResult, error) {
	if def.Format().InvertLuma {
		if !line.SampleWide(invert(luma)) {
			return nil, ErrNoMatch
		}
	} else {
		if !line.SampleWide(luma) {
			return nil, ErrNoMatch
		}
	}

	edges, err := edge.Detect(line, p.Edge, scratch)
	if err != nil {
		return nil, err
	}

	marks := closeMarks(edges, scanIndex)
	if len(marks) == 0 {
		return nil, ErrNoMatch
	}

	result, ok := def.BestMatch(marks)
	if !ok || result.Error >= p.SearchMaxMatchError {
		return nil, ErrNoMatch
	}
	return result, nil
}

// closeMarks walks edges pairing each negative-slope start with the
// next positive-slope end that closes it. Edges with no complementary
// partner are discarded (spec.md §4.3 step 3).
func closeMarks(edges []edge.Edge, scanIndex int) []codedef.MarkLocation {
	var marks []codedef.MarkLocation
	var open *edge.Edge
	for i := range edges {
		e := edges[i]
		switch {
		case e.Slope < 0:
			open = &edges[i]
		case e.Slope > 0 && open != nil:
			if m, ok := codedef.NewMarkLocation(*open, e, scanIndex); ok {
				marks = append(marks, m)
			}
			open = nil
		}
	}
	return marks
}

// invert returns a copy of buf with every sample replaced by 255-v,
// implementing InvertLuma formats without mutating the caller's buffer.
func invert(buf imagebuf.Buffer[byte]) imagebuf.Buffer[byte] {
	inverted := make([]byte, len(buf.Samples))
	for i, v := range buf.Samples {
		inverted[i] = 255 - v
	}
	return imagebuf.New(buf.Width, buf.Height, inverted)
}
