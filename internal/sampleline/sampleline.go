// Package sampleline builds dense sample arrays along integer-endpoint
// lines through an image buffer, clipping to the buffer's bounds.
package sampleline

import (
	"fmt"

	"github.com/cardtrack/deckscan/internal/geom"
	"github.com/cardtrack/deckscan/internal/imagebuf"
)

// Line is a sample line: the clipped integer endpoints plus the dense
// sample array taken along it. len(Samples) == max(|dx|,|dy|)+1.
type Line struct {
	P0, P1  geom.IVec
	Samples []int32
}

// New clips geom.Line l to rect and returns a Line with its endpoints
// set but Samples unallocated (call Sample or SampleWide next). It
// returns false if l does not intersect rect at all.
func New(l geom.Line, rect geom.Rect) (Line, bool) {
	clipped, ok := rect.Clip(l)
	if !ok {
		return Line{}, false
	}
	return Line{P0: clipped.P0, P1: clipped.P1}, true
}

// Length returns the number of dense samples this line holds.
func (l Line) Length() int {
	return geom.Line{P0: l.P0, P1: l.P1}.Length()
}

// point returns the image-space coordinate of dense sample index i of
// n, via linear interpolation between P0 and P1.
func (l Line) point(i, n int) geom.IVec {
	if n <= 1 {
		return l.P0
	}
	t := float64(i) / float64(n-1)
	return l.P0.Vec().Add(l.P1.Sub(l.P0).Vec().Scale(t)).Round()
}

// Sample walks the line over buf, taking one sample per dense position.
// It fails (returns false) if the line is degenerate (zero length after
// clipping resolved to under 1 sample).
func (l *Line) Sample(buf imagebuf.Buffer[byte]) bool {
	n := l.Length()
	if n < 1 {
		return false
	}
	samples := make([]int32, n)
	for i := 0; i < n; i++ {
		p := l.point(i, n)
		v, _ := buf.AtPoint(p)
		samples[i] = int32(v)
	}
	l.Samples = samples
	return true
}

// SampleWide is like Sample, but at each position it also samples one
// pixel to either side along the line's normal and combines the three
// with a 1-2-1 cross-weighted filter: (a + 2*b + c) / 4. This is the
// wide/linear-mode mark sampling described in spec.md §4.5.
func (l *Line) SampleWide(buf imagebuf.Buffer[byte]) bool {
	n := l.Length()
	if n < 1 {
		return false
	}
	dir := l.P1.Sub(l.P0).Vec().Normalized()
	normal := dir.Normal()
	samples := make([]int32, n)
	for i := 0; i < n; i++ {
		p := l.point(i, n).Vec()
		a, _ := buf.AtPoint(p.Sub(normal).Round())
		b, _ := buf.AtPoint(p.Round())
		c, _ := buf.AtPoint(p.Add(normal).Round())
		samples[i] = (int32(a) + 2*int32(b) + int32(c)) / 4
	}
	l.Samples = samples
	return true
}

// At returns the interpolated sample value at normalized offset t in
// [0,1] along the line, linearly interpolating between the two nearest
// dense samples.
func (l Line) At(t float64) (float64, error) {
	n := len(l.Samples)
	if n == 0 {
		return 0, fmt.Errorf("sampleline: no samples")
	}
	if n == 1 {
		return float64(l.Samples[0]), nil
	}
	if t < 0 {
		t = 0
	}
	if t > 1 {
		t = 1
	}
	pos := t * float64(n-1)
	i0 := int(pos)
	if i0 >= n-1 {
		return float64(l.Samples[n-1]), nil
	}
	frac := pos - float64(i0)
	return float64(l.Samples[i0])*(1-frac) + float64(l.Samples[i0+1])*frac, nil
}

// PointAt returns the image-space coordinate of dense sample index
// offset along the line.
func (l Line) PointAt(offset int) geom.IVec {
	return l.point(offset, l.Length())
}

// MinMax returns the minimum and maximum sample values along the line.
func (l Line) MinMax() (min, max int32) {
	if len(l.Samples) == 0 {
		return 0, 0
	}
	min, max = l.Samples[0], l.Samples[0]
	for _, s := range l.Samples[1:] {
		if s < min {
			min = s
		}
		if s > max {
			max = s
		}
	}
	return min, max
}
