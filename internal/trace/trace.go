// Package trace implements the landmark tracer (spec.md §4.4): given a
// matched deck location on one search line, it follows the leftmost
// and rightmost bit-neighboring landmarks up and down the frame to
// produce the deck's two bounding contours.
package trace

import (
	"math"

	"github.com/cardtrack/deckscan/internal/codedef"
	"github.com/cardtrack/deckscan/internal/geom"
	"github.com/cardtrack/deckscan/internal/imagebuf"
	"github.com/cardtrack/deckscan/internal/rollwindow"
	"github.com/cardtrack/deckscan/internal/sampleline"
)

// Params bundles the tracer's tunables (spec.md §4.4 / §6.1).
type Params struct {
	Sensitivity        float64
	MaxStrayRatio      float64 // fraction of markWidth a center may drift
	MaxEdgeTraceMisses int     // scaled by imageHeight/720 by the caller
	BackupDistance     int     // samples to back off before the fine pass
	ContourMode        bool    // interpolate + 1-2-1 filter the final contours
}

// Contours is the tracer's output: ordered top-to-bottom point lists
// for the left and right bounding landmarks.
type Contours struct {
	Left, Right []geom.IVec
}

// Scratch holds the rolling-sum scratch arrays traceMark needs.
// Callers own one Scratch per scan manager (or equivalent long-lived
// pipeline) and pass the same instance to every Trace call, so its
// backing storage grows only when a call needs more room than any
// earlier one and is otherwise reused across every traced landmark,
// direction, and pass (spec.md §5's "per-frame scratch...
// capacity grows... and never shrinks within a run").
type Scratch struct {
	sums, extSums rollwindow.Array
}

// Trace follows result's two outermost bit-neighboring landmarks up
// and down from the search line that produced it, returning the
// deck's bounding contours. It returns false if either side traces
// fewer than 2 points, or the traced height falls short of the
// minimum card count's required sample height.
func Trace(luma imagebuf.Buffer[byte], result codedef.DeckMatchResult, def codedef.Definition, rect geom.Rect, p Params, scratch *Scratch) (Contours, bool) {
	neighbors := def.BitNeighboringLandmarks()
	if len(neighbors) < 2 {
		return Contours{}, false
	}
	marks := def.MarkDefinitions()
	loc := result.Location
	leftIdx, rightIdx := neighbors[0], neighbors[len(neighbors)-1]
	if leftIdx >= len(loc.Marks) || rightIdx >= len(loc.Marks) {
		return Contours{}, false
	}
	leftMark, rightMark := loc.Marks[leftIdx], loc.Marks[rightIdx]
	leftDef, rightDef := marks[leftIdx], marks[rightIdx]

	scanVector := leftMark.End.Point.Sub(leftMark.Start.Point).Vec()

	leftWidth := leftMark.SampleCount()
	rightWidth := rightMark.SampleCount()
	leftExt := markWidthExtension(leftWidth, leftDef)
	rightExt := markWidthExtension(rightWidth, rightDef)

	// Coarse pass: step=2, straight up/down from the matched landmarks.
	coarseLeftUp := traceMark(luma, leftMark.Center().Vec(), scanVector, leftWidth, leftExt, p, 2, -1, rect, scratch)
	coarseLeftDown := traceMark(luma, leftMark.Center().Vec(), scanVector, leftWidth, leftExt, p, 2, 1, rect, scratch)
	coarseRightUp := traceMark(luma, rightMark.Center().Vec(), scanVector, rightWidth, rightExt, p, 2, -1, rect, scratch)
	coarseRightDown := traceMark(luma, rightMark.Center().Vec(), scanVector, rightWidth, rightExt, p, 2, 1, rect, scratch)

	if len(coarseLeftUp) == 0 || len(coarseRightUp) == 0 || len(coarseLeftDown) == 0 || len(coarseRightDown) == 0 {
		return Contours{}, false
	}

	topVector := last(coarseRightUp).Sub(last(coarseLeftUp)).Vec()
	bottomVector := last(coarseRightDown).Sub(last(coarseLeftDown)).Vec()

	fineLeftStart := backoffPoint(last(coarseLeftUp), scanVector, -1, defaultBackup(p))
	fineRightStart := backoffPoint(last(coarseRightUp), scanVector, -1, defaultBackup(p))
	fineLeftStartDown := backoffPoint(last(coarseLeftDown), scanVector, 1, defaultBackup(p))
	fineRightStartDown := backoffPoint(last(coarseRightDown), scanVector, 1, defaultBackup(p))

	fineLeftUp := traceMark(luma, fineLeftStart, topVector, leftWidth, leftExt, p, 1, -1, rect, scratch)
	fineRightUp := traceMark(luma, fineRightStart, topVector, rightWidth, rightExt, p, 1, -1, rect, scratch)
	fineLeftDown := traceMark(luma, fineLeftStartDown, bottomVector, leftWidth, leftExt, p, 1, 1, rect, scratch)
	fineRightDown := traceMark(luma, fineRightStartDown, bottomVector, rightWidth, rightExt, p, 1, 1, rect, scratch)

	left := assembleContour(fineLeftUp, leftMark.Center(), fineLeftDown)
	right := assembleContour(fineRightUp, rightMark.Center(), fineRightDown)

	if len(left) < 2 || len(right) < 2 {
		return Contours{}, false
	}

	if p.ContourMode {
		left = smoothContour(left)
		right = smoothContour(right)
	}

	leftExtent := extent(left)
	rightExtent := extent(right)
	minExtent := math.Min(leftExtent, rightExtent)
	minHeight := def.CalcMinSampleHeight(1.0, def.Format().MinCardCount).Float()
	if minExtent < minHeight {
		return Contours{}, false
	}

	return Contours{Left: left, Right: right}, true
}

// markWidthExtension computes ceil(markWidth * LandmarkMinGapRatio),
// kept smaller than the mark itself so tracing cannot stray into
// adjacent marks.
func markWidthExtension(markWidth int, def codedef.MarkDefinition) int {
	ratio := def.LandmarkMinGapRatio.Float()
	ext := int(math.Ceil(float64(markWidth) * ratio))
	if ext < 1 {
		ext = 1
	}
	if ext >= markWidth {
		ext = markWidth - 1
	}
	if ext < 1 {
		ext = 1
	}
	return ext
}

// traceMark walks one landmark's contour in direction dirSign (-1 up,
// +1 down) along the normal of scanVector, per spec.md §4.4.
func traceMark(luma imagebuf.Buffer[byte], start geom.Vec, scanVector geom.Vec, markWidth, ext int, p Params, step, dirSign int, rect geom.Rect, scratch *Scratch) []geom.IVec {
	dir := scanVector.Normalized()
	if dir == (geom.Vec{}) {
		dir = geom.Vec{X: 1}
	}
	normal := dir.Normal()
	halfLen := float64(markWidth+2*ext) / 2

	center := start
	var avgDelta float64
	steps := 0
	misses := 0
	var contour []geom.IVec

	for misses < p.MaxEdgeTraceMisses {
		p0 := center.Sub(dir.Scale(halfLen)).Round()
		p1 := center.Add(dir.Scale(halfLen)).Round()
		line, ok := sampleline.New(geom.Line{P0: p0, P1: p1}, rect)
		if !ok || !line.Sample(luma) {
			misses += step
			center = center.Add(normal.Scale(float64(dirSign * step)))
			continue
		}

		sums := scratch.sums.RollingSum(line.Samples, markWidth)
		if len(sums) == 0 {
			misses += step
			center = center.Add(normal.Scale(float64(dirSign * step)))
			continue
		}
		minIdx, minSum := argmin(sums)
		darkMean := float64(minSum) / float64(markWidth)

		brightMean := darkMean
		extSums := scratch.extSums.RollingSum(line.Samples, ext)
		if len(extSums) > 0 {
			_, maxSum := argmax(extSums)
			brightMean = float64(maxSum) / float64(ext)
		}

		delta := brightMean - darkMean
		steps++

		newOffset := minIdx + markWidth/2
		expected := len(line.Samples) / 2
		stray := math.Abs(float64(newOffset - expected))

		accept := stray <= p.MaxStrayRatio*float64(markWidth)
		if steps > 1 && avgDelta > 0 {
			accept = accept && delta > p.Sensitivity*avgDelta
		}

		if accept {
			avgDelta = runningAvg(avgDelta, delta, steps)
			newCenter := line.PointAt(newOffset).Vec()
			contour = append(contour, newCenter.Round())
			center = newCenter.Add(normal.Scale(float64(dirSign * step)))
			misses = 0
		} else {
			misses += step
			center = center.Add(normal.Scale(float64(dirSign * step)))
		}
	}
	return contour
}

func runningAvg(avg, sample float64, n int) float64 {
	if n <= 1 {
		return sample
	}
	return avg + (sample-avg)/float64(n)
}

func argmin(vals []int32) (int, int32) {
	idx, best := 0, vals[0]
	for i, v := range vals[1:] {
		if v < best {
			best, idx = v, i+1
		}
	}
	return idx, best
}

func argmax(vals []int32) (int, int32) {
	idx, best := 0, vals[0]
	for i, v := range vals[1:] {
		if v > best {
			best, idx = v, i+1
		}
	}
	return idx, best
}

func last(points []geom.IVec) geom.IVec {
	if len(points) == 0 {
		return geom.IVec{}
	}
	return points[len(points)-1]
}

func defaultBackup(p Params) int {
	if p.BackupDistance < 0 {
		return 0
	}
	return p.BackupDistance
}

func backoffPoint(p geom.IVec, scanVector geom.Vec, dirSign int, backup int) geom.Vec {
	dir := scanVector.Normalized()
	if dir == (geom.Vec{}) {
		dir = geom.Vec{X: 1}
	}
	normal := dir.Normal()
	return p.Vec().Sub(normal.Scale(float64(dirSign * backup)))
}

// assembleContour stitches an up-trace (nearest-point-first, walking
// away from the landmark), the landmark's own center, and a
// down-trace into one top-to-bottom ordered contour.
func assembleContour(up []geom.IVec, center geom.IVec, down []geom.IVec) []geom.IVec {
	out := make([]geom.IVec, 0, len(up)+1+len(down))
	for i := len(up) - 1; i >= 0; i-- {
		out = append(out, up[i])
	}
	out = append(out, center)
	out = append(out, down...)
	return out
}

func extent(points []geom.IVec) float64 {
	if len(points) < 2 {
		return 0
	}
	return points[len(points)-1].Sub(points[0]).Vec().Length()
}

// smoothContour interpolates gaps along the contour's dominant axis
// and applies a 1-2-1 filter along the perpendicular axis (spec.md
// §4.4 "landmark-contour mode").
func smoothContour(points []geom.IVec) []geom.IVec {
	if len(points) < 3 {
		return points
	}
	vertical := math.Abs(float64(points[len(points)-1].Y-points[0].Y)) >= math.Abs(float64(points[len(points)-1].X-points[0].X))

	filled := []geom.IVec{points[0]}
	for i := 1; i < len(points); i++ {
		a, b := points[i-1], points[i]
		gap := b.X - a.X
		if vertical {
			gap = b.Y - a.Y
		}
		n := int(math.Abs(float64(gap)))
		for k := 1; k < n; k++ {
			filled = append(filled, a.Vec().Add(b.Sub(a).Vec().Scale(float64(k)/float64(n))).Round())
		}
		filled = append(filled, b)
	}
	points = filled

	filtered := make([]geom.IVec, len(points))
	filtered[0] = points[0]
	filtered[len(points)-1] = points[len(points)-1]
	for i := 1; i < len(points)-1; i++ {
		if vertical {
			x := (points[i-1].X + 2*points[i].X + points[i+1].X) / 4
			filtered[i] = geom.IVec{X: x, Y: points[i].Y}
		} else {
			y := (points[i-1].Y + 2*points[i].Y + points[i+1].Y) / 4
			filtered[i] = geom.IVec{X: points[i].X, Y: y}
		}
	}
	return filtered
}
