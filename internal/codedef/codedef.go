// Package codedef describes the geometric and combinatorial
// specification of the marks printed on a deck: the Definition
// interface the scan pipeline consumes (spec.md §6.2), the entity
// types a match against that definition produces, and a concrete
// in-memory Static implementation plus a small name-keyed registry.
//
// MarkLocation, DeckLocation, and DeckMatchResult conceptually belong
// to the deck-matcher stage (spec.md §4.3), but their shapes are
// dictated by Definition.BestMatch's signature, so they live here to
// avoid an import cycle between the matcher and the definition it
// calls into.
package codedef

import (
	"fmt"

	"github.com/cardtrack/deckscan/internal/edge"
	"github.com/cardtrack/deckscan/internal/fixed"
	"github.com/cardtrack/deckscan/internal/geom"
)

// MarkType distinguishes the three kinds of printed marks.
type MarkType int

const (
	MarkLandmark MarkType = iota
	MarkSpace
	MarkBit
)

func (t MarkType) String() string {
	switch t {
	case MarkLandmark:
		return "Landmark"
	case MarkSpace:
		return "Space"
	case MarkBit:
		return "Bit"
	default:
		return fmt.Sprintf("MarkType(%d)", int(t))
	}
}

// MarkDefinition is one entry in the ordered landmark pattern.
type MarkDefinition struct {
	Type                MarkType
	BitIndex            int     // valid when Type == MarkBit
	WidthRatio          fixed.Q // normalized width, relative to the deck's total pattern width
	LandmarkMinGapRatio fixed.Q // spec.md §4.4: markWidthExtension := ceil(markWidth * this)
}

// Format is the deck format's metadata (spec.md §3 CodeDefinition.format).
type Format struct {
	Name                     string
	MaxCardCount             int
	MaxCardCountWithReversed int
	MinCardCount             int
	Reversible               bool
	InvertLuma               bool
	FaceCodesNdo             []int
}

// Head returns the reserved HEAD sentinel index for this format
// (spec.md §4.8).
func (f Format) Head() int { return f.MaxCardCountWithReversed }

// Tail returns the reserved TAIL sentinel index for this format.
func (f Format) Tail() int { return f.MaxCardCountWithReversed + 1 }

// MarkLocation is a single mark found along one search line: a start
// edge (negative slope) and the end edge (positive slope) that closed
// it.
type MarkLocation struct {
	Start, End             edge.Edge
	ScanIndex              int
	MatchedDefinitionIndex int // -1 until matched
}

// NewMarkLocation builds a MarkLocation, recording closure (spec.md §8
// "mark location closure": start.slope<0, end.slope>0, end>=start).
func NewMarkLocation(start, end edge.Edge, scanIndex int) (MarkLocation, bool) {
	if start.Slope >= 0 || end.Slope <= 0 || end.SampleOffset < start.SampleOffset {
		return MarkLocation{}, false
	}
	return MarkLocation{Start: start, End: end, ScanIndex: scanIndex, MatchedDefinitionIndex: -1}, true
}

// Center returns the mark's image-space center point.
func (m MarkLocation) Center() geom.IVec {
	return geom.IVec{
		X: (m.Start.Point.X + m.End.Point.X) / 2,
		Y: (m.Start.Point.Y + m.End.Point.Y) / 2,
	}
}

// SampleCount returns the mark's width in samples.
func (m MarkLocation) SampleCount() int {
	return m.End.SampleOffset - m.Start.SampleOffset + 1
}

// DeckLocation is the ordered sequence of marks found along one search
// line, believed to belong to a single deck.
type DeckLocation struct {
	Marks []MarkLocation
}

// FirstStart returns the sample offset of the first mark's start edge.
func (d DeckLocation) FirstStart() int {
	if len(d.Marks) == 0 {
		return 0
	}
	return d.Marks[0].Start.SampleOffset
}

// LastEnd returns the sample offset of the last mark's end edge.
func (d DeckLocation) LastEnd() int {
	if len(d.Marks) == 0 {
		return 0
	}
	return d.Marks[len(d.Marks)-1].End.SampleOffset
}

// DeckMatchResult is a DeckLocation whose marks have been assigned to a
// Definition's landmark sequence, plus a non-negative match error.
type DeckMatchResult struct {
	Location DeckLocation
	Error    float64
}

// Definition is the read-only, per-frame-consumed code definition
// interface (spec.md §6.2). Deck format authoring is out of scope
// (Non-goal); Definition only describes an already-authored format.
type Definition interface {
	Format() Format
	MarkDefinitions() []MarkDefinition
	BitMarks() []MarkDefinition
	BitNeighboringLandmarks() []int // indices into MarkDefinitions()

	CalcMinSampleWidth(angleNormal float64) fixed.Q
	CalcMinSampleHeight(angleNormal float64, cardCount int) fixed.Q
	NarrowestLandmarkNormalizedWidth() fixed.Q
	NormalizeBitMarks(from, to int) []fixed.Q

	BestMatch(marks []MarkLocation) (*DeckMatchResult, bool)

	MapCodeToErrorCorrectedIndex(code uint64) (int, bool)
	MapIndexToCode(index int) (uint64, bool)

	PrepareForDecode() bool
}
