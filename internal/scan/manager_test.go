package scan

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cardtrack/deckscan/internal/codedef"
	"github.com/cardtrack/deckscan/internal/deckmatch"
	"github.com/cardtrack/deckscan/internal/edge"
	"github.com/cardtrack/deckscan/internal/history"
	"github.com/cardtrack/deckscan/internal/imagebuf"
	"github.com/cardtrack/deckscan/internal/resolve"
	"github.com/cardtrack/deckscan/internal/searchline"
)

func blankLuma(width, height int) imagebuf.Buffer[byte] {
	samples := make([]byte, width*height)
	for i := range samples {
		samples[i] = 128
	}
	return imagebuf.New(width, height, samples)
}

func testParams() Params {
	return Params{
		Search: searchline.Params{
			RotationalSteps: 1,
			LinearSteps:     1,
			MinAngle:        0,
			MaxAngle:        0,
		},
		Match: deckmatch.Params{
			Edge: edge.Params{
				WindowSize:   2,
				Overlap:      0,
				Sensitivity:  0.2,
				MinThreshold: 1000,
			},
			SearchMaxMatchError: 1.3,
		},
		MarkLineAvgOffsetMultiplier: 0.5,
		Resolve:                     resolve.Params{GenocideScaleFactor: 1},
		History: history.Params{
			MinHistoryEntries:          15,
			MissingCardPopularity:      0.5,
			HighConfidenceThreshold:    90,
			MinimumConfidenceThreshold: 70,
		},
		TemporalExpirationMs:   200,
		BatterySaverStartMs:    150000,
		BatterySaverIntervalMs: 250,
	}
}

func TestScanReturnsNotFoundOnBlankFrame(t *testing.T) {
	m := NewManager(testParams())
	def := codedef.MDS1254()
	luma := blankLuma(50, 50)

	report := m.Scan(luma, def, 0)
	assert.Equal(t, NotFound, report.Outcome)
	assert.Empty(t, report.Reason)
}

func TestScanBatterySaverGatesFrequentFrames(t *testing.T) {
	m := NewManager(testParams())
	def := codedef.MDS1254()
	luma := blankLuma(50, 50)

	r := m.Scan(luma, def, 0)
	require.Equal(t, NotFound, r.Outcome)
	require.Empty(t, r.Reason)

	r = m.Scan(luma, def, 200)
	require.Equal(t, NotFound, r.Outcome)
	require.Empty(t, r.Reason)
	require.False(t, m.batterySaverOn)

	r = m.Scan(luma, def, 160000)
	require.Equal(t, NotFound, r.Outcome)
	require.Empty(t, r.Reason)
	require.True(t, m.batterySaverOn)

	r = m.Scan(luma, def, 160050)
	assert.Equal(t, NotFound, r.Outcome)
	assert.NotEmpty(t, r.Reason)

	r = m.Scan(luma, def, 160300)
	assert.Equal(t, NotFound, r.Outcome)
	assert.Empty(t, r.Reason)
}

func TestAngleNormalForAlignedAndPerpendicular(t *testing.T) {
	assert.InDelta(t, 1.0, angleNormalFor(0), 1e-9)
	assert.InDelta(t, 0.0, angleNormalFor(90), 1e-9)
	assert.InDelta(t, 0.5, angleNormalFor(60), 1e-9)
}

func TestEffectiveStageParamsScalesWithImageHeight(t *testing.T) {
	p := testParams()
	p.Match.Edge.WindowSize = 36
	p.Match.Edge.MinMaxWindowSize = 72
	p.Trace.MaxEdgeTraceMisses = 5
	m := NewManager(p)

	match, tr := m.effectiveStageParams(360)
	assert.Equal(t, 18, match.Edge.WindowSize)
	assert.Equal(t, 36, match.Edge.MinMaxWindowSize)
	assert.Equal(t, 2, tr.MaxEdgeTraceMisses)
}

func TestOutcomeStringCoversEveryValue(t *testing.T) {
	for o := NotFound; o <= Decoded; o++ {
		assert.NotEqual(t, "Unknown", o.String())
	}
	assert.Equal(t, "Unknown", Outcome(99).String())
}
