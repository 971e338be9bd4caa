// Package edge detects signed-slope edges along a sample line: the
// entry and exit points of printed marks.
package edge

import (
	"errors"

	"github.com/cardtrack/deckscan/internal/geom"
	"github.com/cardtrack/deckscan/internal/rollwindow"
	"github.com/cardtrack/deckscan/internal/sampleline"
)

// ErrTooShort is returned when the sample line is too short for the
// configured window to produce even one slope value.
var ErrTooShort = errors.New("edge: sample line too short for window")

// Edge is one detected mark boundary: a sign-definitive slope peak. A
// negative Slope marks entry into a darker region (start of a mark); a
// positive Slope marks exit (end of a mark).
type Edge struct {
	SampleOffset int
	Normalized   float64
	Slope        int32
	Threshold    int32
	Point        geom.IVec
}

// Params bundles the edge detector's tunables (spec.md §4.1 / §6.1).
type Params struct {
	WindowSize       int
	MinMaxWindowSize int
	Overlap          int
	Sensitivity      float64
	MinThreshold     int32
}

// Scratch holds the rolling-sum and rolling-min/max scratch arrays
// Detect needs. Callers own one Scratch per scan manager (or
// equivalent long-lived pipeline) and pass the same instance to every
// Detect call, so its backing storage grows only when a call needs more
// room than any earlier one and is otherwise reused across search
// lines and frames (spec.md §5's "per-frame
// scratch... capacity grows... and never shrinks within a run").
type Scratch struct {
	rollSums  rollwindow.Array
	slope     rollwindow.Array
	minsLocal rollwindow.Array
	maxsLocal rollwindow.Array
}

// ScaleForHeight scales a base window-size-like parameter by
// imageHeight/720, the convention spec.md §4.1 uses for every
// height-relative window.
func ScaleForHeight(base, imageHeight int) int {
	scaled := int(float64(base) * float64(imageHeight) / 720.0)
	if scaled < 1 {
		scaled = 1
	}
	return scaled
}

// Detect runs the edge detector over line and returns the ordered
// sequence of edges found, or ErrTooShort if the line cannot support
// the configured window. An empty (nil) result is not an error: it
// simply means no peak passed threshold.
func Detect(line sampleline.Line, p Params, scratch *Scratch) ([]Edge, error) {
	samples := line.Samples
	n := len(samples)
	if n <= p.WindowSize {
		return nil, ErrTooShort
	}

	rollSums := scratch.rollSums.RollingSum(samples, p.WindowSize)
	slopeOffset := p.WindowSize - p.Overlap
	if slopeOffset < 1 {
		slopeOffset = 1
	}
	if len(rollSums) <= slopeOffset {
		return nil, ErrTooShort
	}

	slopeLen := len(rollSums) - slopeOffset
	scratch.slope.Reset(slopeLen)
	for i := 0; i < slopeLen; i++ {
		scratch.slope.Set1(i, rollSums[i+slopeOffset]-rollSums[i])
	}
	slope := scratch.slope.Slice()
	if len(slope) < 1 {
		return nil, ErrTooShort
	}

	peakOffset := p.WindowSize - 1 - p.Overlap/2

	var minsLocal, maxsLocal []int32
	var globalMin, globalMax int32
	if p.MinMaxWindowSize > 0 {
		minsLocal, maxsLocal = rollwindow.RollingMinMax(&scratch.minsLocal, &scratch.maxsLocal, samples, p.MinMaxWindowSize)
	} else {
		globalMin, globalMax = rollwindow.MinMax(samples)
	}

	var edges []Edge
	for _, pi := range monotonicExtrema(slope) {
		s := slope[pi]
		var rawOffset int
		if s < 0 {
			rawOffset = pi // first sample of the mark
		} else if s > 0 {
			rawOffset = pi + slopeOffset // last sample of the mark
		} else {
			continue
		}

		var lmin, lmax int32
		if p.MinMaxWindowSize > 0 {
			mmIdx := rawOffset
			if mmIdx >= len(minsLocal) {
				mmIdx = len(minsLocal) - 1
			}
			if mmIdx < 0 {
				mmIdx = 0
			}
			lmin, lmax = minsLocal[mmIdx], maxsLocal[mmIdx]
		} else {
			lmin, lmax = globalMin, globalMax
		}

		threshold := int32(p.Sensitivity * float64(lmax-lmin) * float64(p.WindowSize))
		minThreshold := p.MinThreshold * int32(p.WindowSize)
		if threshold < minThreshold {
			threshold = minThreshold
		}

		abs := s
		if abs < 0 {
			abs = -abs
		}
		if abs < threshold {
			continue
		}

		offset := rawOffset + peakOffset
		if offset < 0 {
			offset = 0
		}
		if offset >= n {
			offset = n - 1
		}

		edges = append(edges, Edge{
			SampleOffset: offset,
			Normalized:   float64(offset) / float64(maxInt(n-1, 1)),
			Slope:        s,
			Threshold:    threshold,
			Point:        line.PointAt(offset),
		})
	}
	return mergeSameSign(edges), nil
}

// mergeSameSign enforces the edge-polarity invariant (no two
// consecutive edges share a sign) by collapsing runs of same-sign
// edges down to their strongest member, matching spec.md §8's "two
// same-sign peaks are merged upstream".
func mergeSameSign(edges []Edge) []Edge {
	if len(edges) < 2 {
		return edges
	}
	out := make([]Edge, 0, len(edges))
	out = append(out, edges[0])
	for _, e := range edges[1:] {
		last := &out[len(out)-1]
		sameSign := (e.Slope < 0 && last.Slope < 0) || (e.Slope > 0 && last.Slope > 0)
		if sameSign {
			if absI32(e.Slope) > absI32(last.Slope) {
				*last = e
			}
			continue
		}
		out = append(out, e)
	}
	return out
}

func absI32(v int32) int32 {
	if v < 0 {
		return -v
	}
	return v
}

// monotonicExtrema walks slope in monotonic runs and returns the index
// of the extremum of every interior run: the first of consecutive
// duplicate maxima, the last of consecutive duplicate minima. Plateaus
// that touch either end of the array are not reported, since there is
// no second side to confirm a turn.
func monotonicExtrema(slope []int32) []int {
	n := len(slope)
	var peaks []int
	i := 0
	for i < n {
		j := i
		for j+1 < n && slope[j+1] == slope[i] {
			j++
		}
		if i > 0 && j < n-1 {
			if slope[i] > slope[i-1] && slope[j] > slope[j+1] {
				peaks = append(peaks, i)
			} else if slope[i] < slope[i-1] && slope[j] < slope[j+1] {
				peaks = append(peaks, j)
			}
		}
		i = j + 1
	}
	return peaks
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
