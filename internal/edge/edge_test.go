package edge

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cardtrack/deckscan/internal/sampleline"
)

func stepSamples() []int32 {
	// Bright, dark mark, bright: a clean entry/exit pair.
	s := make([]int32, 60)
	for i := range s {
		s[i] = 200
	}
	for i := 20; i < 30; i++ {
		s[i] = 20
	}
	return s
}

func TestDetectFindsEntryAndExit(t *testing.T) {
	line := sampleline.Line{Samples: stepSamples()}
	edges, err := Detect(line, Params{
		WindowSize:       4,
		MinMaxWindowSize: 0,
		Overlap:          0,
		Sensitivity:      0.2,
		MinThreshold:     1,
	}, &Scratch{})
	require.NoError(t, err)
	require.NotEmpty(t, edges)

	var sawNegative, sawPositive bool
	for _, e := range edges {
		if e.Slope < 0 {
			sawNegative = true
		}
		if e.Slope > 0 {
			sawPositive = true
		}
	}
	assert.True(t, sawNegative)
	assert.True(t, sawPositive)
}

func TestDetectTooShort(t *testing.T) {
	line := sampleline.Line{Samples: []int32{1, 2, 3}}
	_, err := Detect(line, Params{WindowSize: 10}, &Scratch{})
	assert.ErrorIs(t, err, ErrTooShort)
}

func TestEdgePolarityAlternates(t *testing.T) {
	line := sampleline.Line{Samples: stepSamples()}
	edges, err := Detect(line, Params{
		WindowSize:   4,
		Overlap:      0,
		Sensitivity:  0.2,
		MinThreshold: 1,
	}, &Scratch{})
	require.NoError(t, err)
	for i := 1; i < len(edges); i++ {
		prevNeg := edges[i-1].Slope < 0
		curNeg := edges[i].Slope < 0
		assert.NotEqual(t, prevNeg, curNeg, "consecutive edges must alternate sign at index %d", i)
	}
}

func TestScaleForHeight(t *testing.T) {
	assert.Equal(t, 5, ScaleForHeight(5, 720))
	assert.Equal(t, 10, ScaleForHeight(5, 1440))
}

func TestDetectReusesScratchAcrossCalls(t *testing.T) {
	var scratch Scratch
	params := Params{WindowSize: 4, Overlap: 0, Sensitivity: 0.2, MinThreshold: 1}

	line := sampleline.Line{Samples: stepSamples()}
	_, err := Detect(line, params, &scratch)
	require.NoError(t, err)
	rollCap := cap(scratch.rollSums.Slice())
	slopeCap := cap(scratch.slope.Slice())

	_, err = Detect(line, params, &scratch)
	require.NoError(t, err)
	assert.Equal(t, rollCap, cap(scratch.rollSums.Slice()))
	assert.Equal(t, slopeCap, cap(scratch.slope.Slice()))
}
