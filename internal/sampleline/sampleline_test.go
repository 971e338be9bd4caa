package sampleline

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cardtrack/deckscan/internal/geom"
	"github.com/cardtrack/deckscan/internal/imagebuf"
)

func TestSampleLengthAndBounds(t *testing.T) {
	samples := make([]byte, 10*10)
	for i := range samples {
		samples[i] = byte(i)
	}
	buf := imagebuf.New(10, 10, samples)

	l, ok := New(geom.Line{P0: geom.IVec{0, 0}, P1: geom.IVec{4, 0}}, buf.Rect())
	require.True(t, ok)
	ok = l.Sample(buf)
	require.True(t, ok)
	assert.Equal(t, 5, len(l.Samples))
	assert.True(t, buf.Rect().Contains(l.P0))
	assert.True(t, buf.Rect().Contains(l.P1))
}

func TestSampleClipsOutOfBounds(t *testing.T) {
	buf := imagebuf.New(10, 10, make([]byte, 100))
	_, ok := New(geom.Line{P0: geom.IVec{-5, 5}, P1: geom.IVec{20, 5}}, buf.Rect())
	require.True(t, ok)
}

func TestSampleMissesBuffer(t *testing.T) {
	buf := imagebuf.New(10, 10, make([]byte, 100))
	_, ok := New(geom.Line{P0: geom.IVec{20, 20}, P1: geom.IVec{30, 30}}, buf.Rect())
	assert.False(t, ok)
}

func TestAtInterpolates(t *testing.T) {
	l := Line{Samples: []int32{0, 10, 20}}
	v, err := l.At(0.5)
	require.NoError(t, err)
	assert.InDelta(t, 10.0, v, 1e-9)
}

func TestMinMax(t *testing.T) {
	l := Line{Samples: []int32{5, 1, 9, 3}}
	min, max := l.MinMax()
	assert.Equal(t, int32(1), min)
	assert.Equal(t, int32(9), max)
}
