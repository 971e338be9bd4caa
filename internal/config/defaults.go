package config

import (
	"time"

	"github.com/cardtrack/deckscan/internal/fixed"
)

// Defaults returns the bundle layer: every key the core consumes,
// set to its documented default (spec.md §6.1). LoadTiers overlays
// /etc, /usr/local/etc, and ~/.<base> on top of this.
func Defaults() map[string]Entry {
	return map[string]Entry{
		"edge.MinimumThreshold": {
			Value:       RollValue(10),
			Description: "minimum edge-detection threshold",
		},
		"search.LineHorizontalWeightAdjustment": {
			Value:       RealValue(0.47),
			Description: "ordering bias toward horizontal lines",
		},
		"search.LineRotationDensity":  {Value: RealValue(3)},
		"search.LineRotationSteps":    {Value: RealValue(8)},
		"search.LineMinAngleCutoff":   {Value: RealValue(-30)},
		"search.LineMaxAngleCutoff":   {Value: RealValue(30)},
		"search.LineLinearLimitScalar": {Value: RealValue(1)},
		"search.LineLinearDensity":    {Value: RealValue(3)},
		"search.LineLinearSteps":      {Value: RealValue(8)},
		"search.LineBidirectional":    {Value: BoolValue(true)},
		"search.MaxDeckMatchError":    {Value: RealValue(1.3)},
		"search.EdgeDetectionDeckRollingMinMaxWindowMultiplier": {Value: RealValue(6.77)},
		"search.PeakRollingAverageOverlap":                      {Value: IntValue(0)},
		"search.EdgeSensitivity":                                {Value: FixedValue(fixed.FromFloat(0.2))},
		"search.TraceMarksEdgeSensitivity":                      {Value: FixedValue(fixed.FromFloat(0.6))},
		"search.TraceMarksMaxStray":                             {Value: FixedValue(fixed.FromFloat(0.5))},
		"search.BaseMaxEdgeTraceMisses":                         {Value: IntValue(5)},
		"search.TraceMarkBackupDistance":                        {Value: IntValue(10)},
		"search.TemporalExpirationMS":                           {Value: TimeValue(200 * time.Millisecond)},
		"search.BatterySaverStartMS":                            {Value: IntValue(150000)},
		"search.BatterySaverIntervalMS":                         {Value: IntValue(250)},
		"search.UseLandmarkContours":                            {Value: BoolValue(true)},
		"decode.EnableSharpnessDetection":             {Value: BoolValue(true)},
		"decode.MinimumSharpnessUnitScalarThreshold":   {Value: FixedValue(fixed.FromFloat(0.7))},
		"decode.ResampleBitColumnLengthMultiplier":     {Value: FixedValue(fixed.FromFloat(5))},
		"decode.MarkLineAverageOffsetMultiplier":        {Value: FixedValue(fixed.FromFloat(0.5))},
		"resolve.GenocideScaleFactor":                   {Value: FixedValue(fixed.FromFloat(1))},
		"deck.MinSamplesPerCard":                        {Value: RealValue(2.0)},
		"analysis.MissingCardPopularity":                {Value: FixedValue(fixed.FromFloat(0.5))},
		"analysis.MaxHistoryAgeMS":                       {Value: IntValue(4000)},
		"analysis.MinHistoryEntries":                     {Value: IntValue(15)},
		"analysis.MinimumConfidenceFactorThreshold":      {Value: RealValue(70)},
		"analysis.HighConfidenceFactorThreshold":         {Value: RealValue(90)},
		"analysis.EnableLowConfidenceReports":            {Value: BoolValue(true)},
	}
}

// NewWithDefaults builds a Store seeded with Defaults(), without
// touching the filesystem. Callers that want the tiered on-disk
// overlay call LoadTiers instead (or in addition).
func NewWithDefaults() *Store {
	s := New()
	s.replaceAll(Defaults())
	return s
}
