// Package markline samples the bit columns used by the decoder (spec.md
// §4.5), in either of two modes: linear (a straight sample line per
// bit, from the deck's top edge to its bottom edge) or contoured
// (following the traced left/right landmark contours scanline by
// scanline, for decks that are not assumed straight).
package markline

import (
	"errors"

	"github.com/cardtrack/deckscan/internal/codedef"
	"github.com/cardtrack/deckscan/internal/geom"
	"github.com/cardtrack/deckscan/internal/imagebuf"
	"github.com/cardtrack/deckscan/internal/sampleline"
	"github.com/cardtrack/deckscan/internal/trace"
)

// ErrCannotForm is returned when any constituent sample line of a mode
// could not be formed.
var ErrCannotForm = errors.New("markline: could not form sample line")

// MarkLine is one bit's worth of samples along the deck, plus the
// derived binary bit column (spec.md §4.5's "store min/max over the
// line").
type MarkLine struct {
	Samples   []int32
	Min, Max  int32
	BitColumn []bool
}

// bitOffsets flattens NormalizeBitMarks across every consecutive pair
// of bit-neighboring landmarks in def. Formats with exactly two
// bit-neighboring landmarks (the only kind this registry produces)
// yield a single pair, so the offsets are exactly the format's bit
// sequence in order; multi-segment formats would need each pair's
// offsets rescaled into a shared global fraction, which no definition
// in this registry requires.
func bitOffsets(def codedef.Definition) [][]float64 {
	neighbors := def.BitNeighboringLandmarks()
	var pairs [][]float64
	for i := 0; i+1 < len(neighbors); i++ {
		offsets := def.NormalizeBitMarks(neighbors[i], neighbors[i+1])
		fs := make([]float64, len(offsets))
		for j, o := range offsets {
			fs[j] = o.Float()
		}
		pairs = append(pairs, fs)
	}
	return pairs
}

// Linear builds one top-to-bottom sample line per bit, running from
// the deck's top edge (the line through both contours' first points)
// to its bottom edge (the line through both contours' last points),
// at each bit's normalized horizontal offset.
func Linear(contours trace.Contours, def codedef.Definition, luma imagebuf.Buffer[byte], rect geom.Rect, avgOffsetMultiplier float64) ([]MarkLine, bool) {
	if len(contours.Left) == 0 || len(contours.Right) == 0 {
		return nil, false
	}
	top := geom.Line{P0: contours.Left[0], P1: contours.Right[0]}
	bottom := geom.Line{P0: contours.Left[len(contours.Left)-1], P1: contours.Right[len(contours.Right)-1]}

	var out []MarkLine
	for _, offsets := range bitOffsets(def) {
		for _, t := range offsets {
			topPt := lerp(top.P0, top.P1, t)
			botPt := lerp(bottom.P0, bottom.P1, t)
			line, ok := sampleline.New(geom.Line{P0: topPt, P1: botPt}, rect)
			if !ok || !line.SampleWide(luma) {
				return nil, false
			}
			out = append(out, newMarkLine(line.Samples, avgOffsetMultiplier))
		}
	}
	return out, true
}

// Contoured builds one sample line per bit by stepping the left/right
// contours in lockstep (the shorter array's index is rescaled to
// match), sampling a 1-2-1-ish three-point cross at each scanline and
// bit offset, and collecting the per-scanline values into that bit's
// column.
func Contoured(contours trace.Contours, def codedef.Definition, luma imagebuf.Buffer[byte], avgOffsetMultiplier float64) ([]MarkLine, bool) {
	left, right := contours.Left, contours.Right
	n := len(left)
	if len(right) > n {
		n = len(right)
	}
	if n == 0 {
		return nil, false
	}

	var flatOffsets []float64
	for _, offsets := range bitOffsets(def) {
		flatOffsets = append(flatOffsets, offsets...)
	}
	if len(flatOffsets) == 0 {
		return nil, false
	}

	columns := make([][]int32, len(flatOffsets))
	for s := 0; s < n; s++ {
		lp := left[rescale(s, len(left), n)]
		rp := right[rescale(s, len(right), n)]
		dir := rp.Sub(lp).Vec().Normalized()
		normal := dir.Normal()
		for bi, t := range flatOffsets {
			center := lp.Vec().Add(rp.Sub(lp).Vec().Scale(t))
			a, _ := luma.AtPoint(center.Sub(normal).Round())
			b, _ := luma.AtPoint(center.Round())
			c, _ := luma.AtPoint(center.Add(normal).Round())
			columns[bi] = append(columns[bi], (int32(a)+6*int32(b)+int32(c))/8)
		}
	}

	out := make([]MarkLine, len(columns))
	for i, col := range columns {
		out[i] = newMarkLine(col, avgOffsetMultiplier)
	}
	return out, true
}

func rescale(i, srcLen, dstLen int) int {
	if srcLen == 0 {
		return 0
	}
	if srcLen == dstLen || dstLen <= 1 {
		if i >= srcLen {
			return srcLen - 1
		}
		return i
	}
	idx := i * (srcLen - 1) / (dstLen - 1)
	if idx >= srcLen {
		idx = srcLen - 1
	}
	return idx
}

func lerp(a, b geom.IVec, t float64) geom.IVec {
	return a.Vec().Add(b.Sub(a).Vec().Scale(t)).Round()
}

// newMarkLine derives the binary bit column from samples: true iff the
// sample is darker than min + (max-min)*avgOffsetMultiplier.
func newMarkLine(samples []int32, avgOffsetMultiplier float64) MarkLine {
	ml := MarkLine{Samples: samples}
	if len(samples) == 0 {
		return ml
	}
	ml.Min, ml.Max = samples[0], samples[0]
	for _, s := range samples[1:] {
		if s < ml.Min {
			ml.Min = s
		}
		if s > ml.Max {
			ml.Max = s
		}
	}
	threshold := float64(ml.Min) + float64(ml.Max-ml.Min)*avgOffsetMultiplier
	ml.BitColumn = make([]bool, len(samples))
	for i, s := range samples {
		ml.BitColumn[i] = float64(s) < threshold
	}
	return ml
}
