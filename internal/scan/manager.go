// Package scan implements the scan manager (spec.md §4.9): the
// per-frame orchestrator that drives every search line through the
// matcher, tracer, mark-line sampler, and decoder, maintains temporal
// offset/angle state and the battery saver, and feeds decoded decks to
// the temporal history analyzer.
package scan

import (
	"math"
	"time"

	"github.com/cardtrack/deckscan/internal/codedef"
	"github.com/cardtrack/deckscan/internal/decode"
	"github.com/cardtrack/deckscan/internal/deckmatch"
	"github.com/cardtrack/deckscan/internal/edge"
	"github.com/cardtrack/deckscan/internal/geom"
	"github.com/cardtrack/deckscan/internal/history"
	"github.com/cardtrack/deckscan/internal/imagebuf"
	"github.com/cardtrack/deckscan/internal/markline"
	"github.com/cardtrack/deckscan/internal/resolve"
	"github.com/cardtrack/deckscan/internal/searchline"
	"github.com/cardtrack/deckscan/internal/trace"
)

// Outcome is the scan manager's per-frame result state (spec.md §7).
type Outcome int

const (
	NotFound Outcome = iota
	TooSmall
	NotSharp
	TooFewCards
	GeneralFailure
	Decoded
)

func (o Outcome) String() string {
	switch o {
	case NotFound:
		return "NotFound"
	case TooSmall:
		return "TooSmall"
	case NotSharp:
		return "NotSharp"
	case TooFewCards:
		return "TooFewCards"
	case GeneralFailure:
		return "GeneralFailure"
	case Decoded:
		return "Decoded"
	default:
		return "Unknown"
	}
}

// Report is what one Scan call returns.
type Report struct {
	Outcome  Outcome
	Reason   string
	Deck     decode.Deck
	Analysis history.Result
}

// Params bundles every stage's tunables plus the scan manager's own
// (spec.md §6.1).
type Params struct {
	Search      searchline.Params
	Match       deckmatch.Params
	Trace       trace.Params
	MarkLineAvgOffsetMultiplier float64
	UseLandmarkContours         bool
	Decode                      decode.Params
	Resolve                     resolve.Params
	History                     history.Params

	TemporalExpirationMs    int64
	BatterySaverStartMs     int64
	BatterySaverIntervalMs  int64
}

// Manager orchestrates one camera's scan pipeline across frames. It is
// not safe for concurrent use; independent cameras each get their own
// Manager (spec.md §5).
type Manager struct {
	params  Params
	history *history.Analyzer

	temporal       temporalState
	lastFoundMs    int64
	haveLastFound  bool
	lastFrameMs    int64
	haveLastFrame  bool
	batterySaverOn bool

	// matchScratch and traceScratch are reused across every search
	// line candidate and every frame (spec.md §5): their backing
	// arrays grow only when a call needs more room than any earlier
	// one, and never shrink.
	matchScratch edge.Scratch
	traceScratch trace.Scratch
}

type temporalState struct {
	valid         bool
	angleDegrees  float64
	offset        geom.Vec
	lastSuccessMs int64
}

// NewManager returns a fresh manager with no temporal state.
func NewManager(params Params) *Manager {
	return &Manager{
		params:  params,
		history: history.NewAnalyzer(params.History),
	}
}

// Scan runs one frame through the pipeline (spec.md §4.9). nowMs is
// the caller's pausable-clock reading for this frame.
func (m *Manager) Scan(luma imagebuf.Buffer[byte], def codedef.Definition, nowMs int64) Report {
	if m.batterySaverOn && m.haveLastFrame && nowMs-m.lastFrameMs < m.params.BatterySaverIntervalMs {
		return Report{Outcome: NotFound, Reason: "battery saver interval not elapsed"}
	}
	m.lastFrameMs = nowMs
	m.haveLastFrame = true

	rect := luma.Rect()
	size := geom.IVec{X: rect.Width(), Y: rect.Height()}
	origin := geom.Vec{X: float64(size.X) / 2, Y: float64(size.Y) / 2}

	matchParams, traceParams := m.effectiveStageParams(size.Y)

	replay := m.temporal.valid && nowMs-m.temporal.lastSuccessMs < m.params.TemporalExpirationMs
	var candidates []searchline.Candidate
	if replay {
		candidates = []searchline.Candidate{{AngleDegrees: m.temporal.angleDegrees, Offset: m.temporal.offset}}
	} else {
		candidates = searchline.Generate(size, def.Format().Reversible, m.params.Search)
	}

	for scanIndex, cand := range candidates {
		line, ok := cand.Line(origin, 0, rect)
		if !ok {
			continue
		}

		result, err := deckmatch.Match(line, luma, scanIndex, def, matchParams, &m.matchScratch)
		if err != nil {
			continue
		}

		// A matched deck location counts as "found" for the battery
		// saver even if a later stage this frame fails.
		m.lastFoundMs = nowMs
		m.haveLastFound = true
		m.batterySaverOn = false

		angleNormal := angleNormalFor(cand.AngleDegrees)
		minWidth := def.CalcMinSampleWidth(angleNormal).Float()
		width := float64(result.Location.LastEnd() - result.Location.FirstStart())
		if width < minWidth {
			return Report{Outcome: TooSmall}
		}

		contours, ok := trace.Trace(luma, *result, def, rect, traceParams, &m.traceScratch)
		if !ok {
			continue
		}

		var lines []markline.MarkLine
		if m.params.UseLandmarkContours {
			lines, ok = markline.Contoured(contours, def, luma, m.params.MarkLineAvgOffsetMultiplier)
		} else {
			lines, ok = markline.Linear(contours, def, luma, rect, m.params.MarkLineAvgOffsetMultiplier)
		}
		if !ok {
			continue
		}

		m.temporal = temporalState{valid: true, angleDegrees: cand.AngleDegrees, offset: cand.Offset, lastSuccessMs: nowMs}

		return m.finishDecode(lines, def, nowMs)
	}

	if !m.haveLastFound {
		m.haveLastFound = true
		m.lastFoundMs = nowMs
	} else if nowMs-m.lastFoundMs >= m.params.BatterySaverStartMs {
		m.batterySaverOn = true
	}
	return Report{Outcome: NotFound}
}

// finishDecode runs the decoder, row resolver, and history analyzer
// over a successfully sampled set of mark lines.
func (m *Manager) finishDecode(lines []markline.MarkLine, def codedef.Definition, nowMs int64) Report {
	result := decode.Decode(lines, def, m.params.Decode)
	switch result.Outcome {
	case decode.NotSharp:
		return Report{Outcome: NotSharp}
	case decode.TooFewCards:
		return Report{Outcome: TooFewCards, Deck: result.Deck}
	case decode.GeneralFailure:
		return Report{Outcome: GeneralFailure, Reason: result.Reason}
	}

	survivors := resolve.Resolve(result.Deck.Rows, m.params.Resolve)
	deck := decode.Deck{Rows: survivors, MinCardCount: result.Deck.MinCardCount}

	m.history.AddEntry(resolve.ResolvedIndices(survivors), def.Format().Name, time.UnixMilli(nowMs))
	analysis := m.history.Analyze(def.Format())

	return Report{Outcome: Decoded, Deck: deck, Analysis: analysis}
}

// angleNormalFor converts a search line's angle into the "normal"
// scalar CalcMinSampleWidth expects: 1.0 when the line runs along the
// deck's long axis (no foreshortening), shrinking toward 0 as the
// line approaches perpendicular.
func angleNormalFor(angleDegrees float64) float64 {
	return math.Abs(math.Cos(angleDegrees * math.Pi / 180))
}

// effectiveStageParams scales every height-relative window in the
// matcher and tracer params to the current frame's height (spec.md
// §4.1's imageHeight/720 convention), caching nothing across frames
// per spec.md §5's "treat configuration as an immutable snapshot
// during a frame" rule: callers pass the same configured Params each
// time, and this recomputes the scaled values fresh.
func (m *Manager) effectiveStageParams(imageHeight int) (deckmatch.Params, trace.Params) {
	match := m.params.Match
	match.Edge.WindowSize = edge.ScaleForHeight(match.Edge.WindowSize, imageHeight)
	if match.Edge.MinMaxWindowSize > 0 {
		// 0 selects a whole-line min/max in edge.Detect; keep it 0.
		match.Edge.MinMaxWindowSize = edge.ScaleForHeight(match.Edge.MinMaxWindowSize, imageHeight)
	}

	tr := m.params.Trace
	tr.MaxEdgeTraceMisses = edge.ScaleForHeight(tr.MaxEdgeTraceMisses, imageHeight)

	return match, tr
}
