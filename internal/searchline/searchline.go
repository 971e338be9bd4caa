// Package searchline produces the ordered set of candidate scan lines
// a frame is probed with to find a deck (spec.md §4.2). Generation
// depends only on frame size and the code definition's Reversible
// flag, so callers regenerate only when either changes.
package searchline

import (
	"math"
	"sort"

	"github.com/cardtrack/deckscan/internal/geom"
	"github.com/cardtrack/deckscan/internal/sampleline"
)

// Params configures the generator. All fields come from configuration
// (spec.md §4.2); zero values are replaced with permissive defaults
// by Generate.
type Params struct {
	RotationalSteps   int     // number of angle samples in [MinAngle,MaxAngle], both ends included
	RotationalDensity float64 // >=1; biases angle samples toward the extremes
	MinAngle          float64 // degrees
	MaxAngle          float64 // degrees

	LinearSteps   int     // number of offset samples from the origin outward
	LinearDensity float64 // >=1; biases offset samples toward the origin
	LinearLimit   float64 // (0,1]; fraction of the half-diagonal offsets may reach

	Bidirectional              bool // also probe angle+180; ignored when reversible
	HorizontalWeightAdjustment float64
	SimilarityThreshold        float64 // candidates closer than this (degrees+pixels) are deduplicated
}

// Candidate is one generated scan line: an angle and an offset from
// the frame center along that angle's normal.
type Candidate struct {
	AngleDegrees float64
	Offset       geom.Vec
}

// Generate returns the stable, deduplicated, priority-ordered list of
// candidates for a frame of the given size and reversibility.
func Generate(size geom.IVec, reversible bool, p Params) []Candidate {
	if p.RotationalSteps < 1 {
		p.RotationalSteps = 1
	}
	if p.LinearSteps < 1 {
		p.LinearSteps = 1
	}
	if p.RotationalDensity < 1 {
		p.RotationalDensity = 1
	}
	if p.LinearDensity < 1 {
		p.LinearDensity = 1
	}
	if p.LinearLimit <= 0 || p.LinearLimit > 1 {
		p.LinearLimit = 1
	}

	angles := make([]float64, p.RotationalSteps)
	for i := range angles {
		t := stepFraction(i, p.RotationalSteps)
		angles[i] = p.MinAngle + biasTowardExtremes(t, p.RotationalDensity)*(p.MaxAngle-p.MinAngle)
	}

	halfDiagonal := geom.Vec{X: float64(size.X), Y: float64(size.Y)}.Length() / 2
	maxOffset := halfDiagonal * p.LinearLimit
	offsets := make([]float64, p.LinearSteps)
	for i := range offsets {
		t := stepFraction(i, p.LinearSteps)
		offsets[i] = biasTowardOrigin(t, p.LinearDensity) * maxOffset
	}

	var candidates []Candidate
	for _, angle := range angles {
		normal := geom.Vec{X: 1, Y: 0}.Rotated(angle).Normal()
		candidates = append(candidates, withMirroredOffsets(angle, normal, offsets)...)
		if p.Bidirectional && !reversible {
			candidates = append(candidates, withMirroredOffsets(angle+180, normal, offsets)...)
		}
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return horizontalBias(candidates[i], p.HorizontalWeightAdjustment) <
			horizontalBias(candidates[j], p.HorizontalWeightAdjustment)
	})

	return filterDuplicates(candidates, p.SimilarityThreshold)
}

func withMirroredOffsets(angle float64, normal geom.Vec, offsets []float64) []Candidate {
	out := make([]Candidate, 0, len(offsets)*2)
	for _, off := range offsets {
		out = append(out, Candidate{AngleDegrees: angle, Offset: normal.Scale(off)})
		if off != 0 {
			out = append(out, Candidate{AngleDegrees: angle, Offset: normal.Scale(-off)})
		}
	}
	return out
}

func stepFraction(i, steps int) float64 {
	if steps <= 1 {
		return 0
	}
	return float64(i) / float64(steps-1)
}

// biasTowardExtremes pushes t in [0,1] toward 0 and 1 as density grows
// past 1, symmetric about the midpoint.
func biasTowardExtremes(t, density float64) float64 {
	if t <= 0.5 {
		return 0.5 * math.Pow(t*2, density)
	}
	return 1 - 0.5*math.Pow((1-t)*2, density)
}

// biasTowardOrigin pushes t in [0,1] toward 0 as density grows past 1.
func biasTowardOrigin(t, density float64) float64 {
	return math.Pow(t, density)
}

// horizontalBias is the sort key: smaller values sort earlier.
// Candidates near horizontal (angle mod 180 near 0 or 180) sort first;
// adjustment further discounts the deviation for lines already within
// 45 degrees of horizontal.
func horizontalBias(c Candidate, adjustment float64) float64 {
	dev := math.Mod(c.AngleDegrees, 180)
	if dev < 0 {
		dev += 180
	}
	if dev > 90 {
		dev = 180 - dev
	}
	bonus := 45 - dev
	if bonus < 0 {
		bonus = 0
	}
	return dev - adjustment*bonus
}

func filterDuplicates(candidates []Candidate, threshold float64) []Candidate {
	if threshold <= 0 {
		return candidates
	}
	kept := make([]Candidate, 0, len(candidates))
	for _, c := range candidates {
		dup := false
		for _, k := range kept {
			angleDiff := math.Abs(c.AngleDegrees - k.AngleDegrees)
			offsetDiff := c.Offset.Sub(k.Offset).Length()
			if angleDiff+offsetDiff < threshold {
				dup = true
				break
			}
		}
		if !dup {
			kept = append(kept, c)
		}
	}
	return kept
}

// Line materializes c as a sample line: a long segment through
// origin+c.Offset, in the direction c.AngleDegrees+offsetAngleDegrees,
// clipped to bufferRect. It returns false if the materialized line
// does not intersect bufferRect.
func (c Candidate) Line(origin geom.Vec, offsetAngleDegrees float64, bufferRect geom.Rect) (sampleline.Line, bool) {
	dir := geom.Vec{X: 1, Y: 0}.Rotated(c.AngleDegrees + offsetAngleDegrees)
	half := geom.Vec{X: float64(bufferRect.Width()), Y: float64(bufferRect.Height())}.Length()
	center := origin.Add(c.Offset)
	p0 := center.Sub(dir.Scale(half)).Round()
	p1 := center.Add(dir.Scale(half)).Round()
	return sampleline.New(geom.Line{P0: p0, P1: p1}, bufferRect)
}
