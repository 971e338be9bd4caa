package searchline

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cardtrack/deckscan/internal/geom"
)

func baseParams() Params {
	return Params{
		RotationalSteps:   5,
		RotationalDensity: 2,
		MinAngle:          -10,
		MaxAngle:          10,
		LinearSteps:       4,
		LinearDensity:     2,
		LinearLimit:       0.5,
		Bidirectional:     true,
	}
}

func TestGenerateStableForSameSize(t *testing.T) {
	size := geom.IVec{X: 640, Y: 480}
	a := Generate(size, false, baseParams())
	b := Generate(size, false, baseParams())
	require.Equal(t, len(a), len(b))
	for i := range a {
		assert.Equal(t, a[i], b[i])
	}
}

func TestGenerateSkipsBidirectionalWhenReversible(t *testing.T) {
	size := geom.IVec{X: 640, Y: 480}
	reversible := Generate(size, true, baseParams())
	notReversible := Generate(size, false, baseParams())
	assert.Less(t, len(reversible), len(notReversible))
}

func TestGenerateOrdersTowardHorizontalFirst(t *testing.T) {
	size := geom.IVec{X: 640, Y: 480}
	p := baseParams()
	p.HorizontalWeightAdjustment = 1
	candidates := Generate(size, false, p)
	require.NotEmpty(t, candidates)
	first := horizontalBias(candidates[0], p.HorizontalWeightAdjustment)
	for _, c := range candidates[1:] {
		assert.LessOrEqual(t, first, horizontalBias(c, p.HorizontalWeightAdjustment))
	}
}

func TestFilterDuplicatesShrinksClusteredCandidates(t *testing.T) {
	tight := baseParams()
	tight.RotationalSteps = 20
	tight.MinAngle, tight.MaxAngle = -1, 1
	tight.LinearSteps = 1
	tight.SimilarityThreshold = 50

	size := geom.IVec{X: 640, Y: 480}
	deduped := Generate(size, false, tight)
	assert.Less(t, len(deduped), tight.RotationalSteps*2)
}

func TestCandidateLineClipsToBuffer(t *testing.T) {
	size := geom.IVec{X: 640, Y: 480}
	rect := geom.Rect{MinX: 0, MinY: 0, MaxX: size.X, MaxY: size.Y}
	c := Candidate{AngleDegrees: 0, Offset: geom.Vec{}}
	origin := geom.Vec{X: float64(size.X) / 2, Y: float64(size.Y) / 2}

	line, ok := c.Line(origin, 0, rect)
	require.True(t, ok)
	assert.True(t, rect.Contains(line.P0))
	assert.True(t, rect.Contains(line.P1))
}

func TestCandidateLineMissesWhenFarOffFrame(t *testing.T) {
	size := geom.IVec{X: 640, Y: 480}
	rect := geom.Rect{MinX: 0, MinY: 0, MaxX: size.X, MaxY: size.Y}
	c := Candidate{AngleDegrees: 90, Offset: geom.Vec{X: 0, Y: 100000}}
	origin := geom.Vec{X: float64(size.X) / 2, Y: float64(size.Y) / 2}

	_, ok := c.Line(origin, 0, rect)
	assert.False(t, ok)
}
