package codedef

import (
	"sync"

	"github.com/cardtrack/deckscan/internal/fixed"
)

var (
	registryMu sync.RWMutex
	registry   = map[string]Definition{}
)

// Register adds a Definition to the process-wide registry, keyed by
// its format name. Deck format authoring (designing a new pattern) is
// a Non-goal; Register only publishes an already-authored definition
// so the CLI and tests can look it up by name.
func Register(def Definition) {
	registryMu.Lock()
	defer registryMu.Unlock()
	registry[def.Format().Name] = def
}

// Lookup finds a previously-registered Definition by format name.
func Lookup(name string) (Definition, bool) {
	registryMu.RLock()
	defer registryMu.RUnlock()
	def, ok := registry[name]
	return def, ok
}

// MDS1254 returns the reference 54-card definition named in spec.md §8
// scenario 2 ("mds12-54"): two bit-neighboring landmarks flanking a
// 12-bit code region, 54 valid codewords assigned by new-deck-order
// index. It is registered on first call.
func MDS1254() Definition {
	const name = "mds12-54"
	if def, ok := Lookup(name); ok {
		return def
	}

	landmarkWidth := fixed.FromFloat(1.0)
	spaceWidth := fixed.FromFloat(0.4)
	bitWidth := fixed.FromFloat(0.6)
	gapRatio := fixed.FromFloat(0.35)

	const bitCount = 12
	marks := make([]MarkDefinition, 0, bitCount+4)
	marks = append(marks, MarkDefinition{Type: MarkLandmark, WidthRatio: landmarkWidth, LandmarkMinGapRatio: gapRatio})
	marks = append(marks, MarkDefinition{Type: MarkSpace, WidthRatio: spaceWidth})
	for i := 0; i < bitCount; i++ {
		marks = append(marks, MarkDefinition{Type: MarkBit, BitIndex: i, WidthRatio: bitWidth})
	}
	marks = append(marks, MarkDefinition{Type: MarkSpace, WidthRatio: spaceWidth})
	marks = append(marks, MarkDefinition{Type: MarkLandmark, WidthRatio: landmarkWidth, LandmarkMinGapRatio: gapRatio})

	indexToCode := make(map[int]uint64, 54)
	// New Deck Order assigns, in ascending numeric order, the smallest
	// codewords whose set-bit count passes popcountOK. Consecutive
	// codewords can be a single bit apart, so only the neighbors that
	// PrepareForDecode finds unclaimed get error correction; a
	// closed-form generator is enough for a reference definition (it
	// need not match any particular physical deck).
	code := uint64(0)
	for idx := 0; idx < 54; idx++ {
		for !popcountOK(code, bitCount) {
			code++
		}
		indexToCode[idx] = code
		code++
	}

	faceCodes := make([]int, 54)
	for i := range faceCodes {
		faceCodes[i] = i
	}

	def := NewStatic(Format{
		Name:                     name,
		MaxCardCount:             54,
		MaxCardCountWithReversed: 54,
		MinCardCount:             52,
		Reversible:               false,
		InvertLuma:               false,
		FaceCodesNdo:             faceCodes,
	}, marks, indexToCode)

	Register(def)
	return def
}

// popcountOK keeps NDO codewords away from all-zero/all-one extremes,
// which would leave no Hamming headroom on either side.
func popcountOK(code uint64, bits int) bool {
	ones := 0
	for b := 0; b < bits; b++ {
		if code&(1<<uint(b)) != 0 {
			ones++
		}
	}
	return ones >= 3 && ones <= bits-3
}
