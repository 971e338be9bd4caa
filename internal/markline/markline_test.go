package markline

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cardtrack/deckscan/internal/codedef"
	"github.com/cardtrack/deckscan/internal/geom"
	"github.com/cardtrack/deckscan/internal/imagebuf"
	"github.com/cardtrack/deckscan/internal/trace"
)

func gradientBuffer(width, height int) imagebuf.Buffer[byte] {
	samples := make([]byte, width*height)
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			samples[y*width+x] = byte((x * 255) / width)
		}
	}
	return imagebuf.New(width, height, samples)
}

func TestLinearProducesOneLinePerBit(t *testing.T) {
	def := codedef.MDS1254()
	buf := gradientBuffer(200, 100)
	contours := trace.Contours{
		Left:  []geom.IVec{{X: 10, Y: 0}, {X: 10, Y: 99}},
		Right: []geom.IVec{{X: 190, Y: 0}, {X: 190, Y: 99}},
	}

	lines, ok := Linear(contours, def, buf, buf.Rect(), 0.5)
	require.True(t, ok)
	assert.Len(t, lines, len(def.BitMarks()))
	for _, l := range lines {
		assert.Len(t, l.BitColumn, len(l.Samples))
	}
}

func TestContouredMatchesLockstepLengths(t *testing.T) {
	def := codedef.MDS1254()
	buf := gradientBuffer(200, 100)
	contours := trace.Contours{
		Left:  []geom.IVec{{X: 10, Y: 0}, {X: 10, Y: 50}, {X: 10, Y: 99}},
		Right: []geom.IVec{{X: 190, Y: 0}, {X: 190, Y: 99}},
	}

	lines, ok := Contoured(contours, def, buf, 0.5)
	require.True(t, ok)
	assert.Len(t, lines, len(def.BitMarks()))
	for _, l := range lines {
		assert.Len(t, l.Samples, 3) // n = max(len(left), len(right))
	}
}

func TestNewMarkLineThresholdsAroundMidpoint(t *testing.T) {
	ml := newMarkLine([]int32{0, 100}, 0.5)
	assert.Equal(t, []bool{true, false}, ml.BitColumn)
}

func TestRescaleClampsToSourceBounds(t *testing.T) {
	assert.Equal(t, 0, rescale(0, 2, 3))
	assert.Equal(t, 1, rescale(2, 2, 3))
}
