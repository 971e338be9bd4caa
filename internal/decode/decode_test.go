package decode

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cardtrack/deckscan/internal/codedef"
	"github.com/cardtrack/deckscan/internal/markline"
)

func bitMarkLines(def codedef.Definition, rowCount int, codeAt func(row int) uint64) []markline.MarkLine {
	bitMarks := def.BitMarks()
	lines := make([]markline.MarkLine, len(bitMarks))
	for j, bm := range bitMarks {
		samples := make([]int32, rowCount)
		col := make([]bool, rowCount)
		for row := 0; row < rowCount; row++ {
			bit := (codeAt(row) >> uint(bm.BitIndex)) & 1
			col[row] = bit == 1
			if col[row] {
				samples[row] = 10
			} else {
				samples[row] = 200
			}
		}
		lines[j] = markline.MarkLine{Samples: samples, Min: 10, Max: 200, BitColumn: col}
	}
	return lines
}

func TestDecodeProducesScannedCards(t *testing.T) {
	def := codedef.MDS1254()
	codes := make([]uint64, 54)
	for i := range codes {
		code, ok := def.MapIndexToCode(i)
		require.True(t, ok)
		codes[i] = code
	}

	// One row per card index, in order: enough distinct runs to clear
	// MinCardCount, and each run's robustness should read as exact.
	lines := bitMarkLines(def, len(codes), func(row int) uint64 { return codes[row] })
	p := Params{
		ResampleBitColumnLengthMultiplier: float64(len(codes)) / float64(def.Format().MaxCardCount),
		MinSampleHeight:                   4,
	}
	result := Decode(lines, def, p)
	require.Equal(t, Decoded, result.Outcome)
	require.Len(t, result.Deck.Rows, len(codes))
	assert.Equal(t, 0, result.Deck.Rows[0].CardIndex)
	assert.Equal(t, uint8(1), result.Deck.Rows[0].Robustness)
}

func TestDecodeTooFewCards(t *testing.T) {
	def := codedef.MDS1254()
	code, _ := def.MapIndexToCode(0)
	lines := bitMarkLines(def, 2, func(row int) uint64 { return code })
	p := Params{ResampleBitColumnLengthMultiplier: 1.0}
	result := Decode(lines, def, p)
	assert.Equal(t, TooFewCards, result.Outcome)
}

func TestDecodeRejectsMismatchedLineCount(t *testing.T) {
	def := codedef.MDS1254()
	result := Decode(nil, def, Params{})
	assert.Equal(t, GeneralFailure, result.Outcome)
}

func TestScannedCardConsumeSaturatesRobustness(t *testing.T) {
	c := ScannedCard{Robustness: 200}
	c.Consume(ScannedCard{Count: 1, Robustness: 100})
	assert.Equal(t, uint8(255), c.Robustness)
	assert.Equal(t, 1, c.Count)
}

func TestResampleBitColumnNearestNeighbor(t *testing.T) {
	col := []bool{true, false, true, false}
	out := resampleBitColumn(col, 2)
	assert.Len(t, out, 2)
}
