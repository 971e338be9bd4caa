package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/spf13/cobra"

	"github.com/cardtrack/deckscan/internal/codedef"
	"github.com/cardtrack/deckscan/internal/deckmatch"
	"github.com/cardtrack/deckscan/internal/decode"
	"github.com/cardtrack/deckscan/internal/edge"
	"github.com/cardtrack/deckscan/internal/history"
	"github.com/cardtrack/deckscan/internal/imagebuf"
	"github.com/cardtrack/deckscan/internal/lumafile"
	"github.com/cardtrack/deckscan/internal/resolve"
	"github.com/cardtrack/deckscan/internal/scan"
	"github.com/cardtrack/deckscan/internal/searchline"
	"github.com/cardtrack/deckscan/internal/trace"
)

// scanReportJSON is the text/json-printable shape of one frame's
// scan.Report, trimmed to the fields worth showing a human or piping
// to another tool.
type scanReportJSON struct {
	Frame            string  `json:"frame"`
	Outcome          string  `json:"outcome"`
	Reason           string  `json:"reason,omitempty"`
	Indices          []int   `json:"indices,omitempty"`
	Confidence       string  `json:"confidence,omitempty"`
	ConfidenceFactor float64 `json:"confidenceFactor,omitempty"`
}

// NewScanCmd runs a sequence of LUMA frames through the scan manager.
func NewScanCmd(ctx context.Context) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "scan",
		Short: "run captured LUMA frames through the scan pipeline",
		Long:  "scan reads one or more LUMA diagnostic files (a single file, or every file in a directory, in name order) and reports the outcome of each frame",
		RunE: func(cmd *cobra.Command, args []string) error {
			uri, _ := cmd.Flags().GetString("uri")
			format, _ := cmd.Flags().GetString("format")
			defName, _ := cmd.Flags().GetString("code-definition")

			paths, err := framePaths(uri)
			if err != nil {
				return fmt.Errorf("scan: listing frames: %w", err)
			}

			codedef.MDS1254() // ensures the reference definition is registered
			def, ok := codedef.Lookup(defName)
			if !ok {
				return fmt.Errorf("scan: unknown code definition %q", defName)
			}

			mgr := scan.NewManager(defaultScanParams())
			clock := scan.NewPausableClock(time.Now())

			for _, p := range paths {
				report, err := scanOneFrame(mgr, def, clock, p)
				if err != nil {
					slog.ErrorContext(ctx, "frame failed", "path", p, "error", err)
					continue
				}
				printReport(format, p, report)
			}
			return nil
		},
	}
	pf := cmd.PersistentFlags()
	pf.StringP("uri", "u", "", "path to a LUMA file or a directory of LUMA files")
	pf.StringP("format", "f", "json", "output format (text|json)")
	pf.String("code-definition", "mds12-54", "registered code definition to match against")
	return cmd
}

func framePaths(uri string) ([]string, error) {
	info, err := os.Stat(uri)
	if err != nil {
		return nil, err
	}
	if !info.IsDir() {
		return []string{uri}, nil
	}
	entries, err := os.ReadDir(uri)
	if err != nil {
		return nil, err
	}
	var paths []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		paths = append(paths, filepath.Join(uri, e.Name()))
	}
	sort.Strings(paths)
	return paths, nil
}

func scanOneFrame(mgr *scan.Manager, def codedef.Definition, clock *scan.PausableClock, path string) (scan.Report, error) {
	f, err := os.Open(path)
	if err != nil {
		return scan.Report{}, err
	}
	defer f.Close()

	frame, err := lumafile.Read(f)
	if err != nil {
		return scan.Report{}, err
	}

	luma := imagebuf.New(frame.Width, frame.Height, frame.Luma)
	now := clock.NowMs(time.Now())
	return mgr.Scan(luma, def, now), nil
}

func printReport(format, path string, report scan.Report) {
	out := scanReportJSON{
		Frame:   filepath.Base(path),
		Outcome: report.Outcome.String(),
		Reason:  report.Reason,
	}
	if report.Outcome == scan.Decoded {
		out.Indices = report.Deck.Indices()
		out.Confidence = report.Analysis.Confidence.String()
		out.ConfidenceFactor = report.Analysis.ConfidenceFactor
	}

	switch format {
	case "text":
		fmt.Printf("%s: %s", out.Frame, out.Outcome)
		if out.Reason != "" {
			fmt.Printf(" (%s)", out.Reason)
		}
		if len(out.Indices) > 0 {
			fmt.Printf(" indices=%v confidence=%s(%g)", out.Indices, out.Confidence, out.ConfidenceFactor)
		}
		fmt.Println()
	default:
		j, _ := json.Marshal(out)
		fmt.Println(string(j))
	}
}

// defaultScanParams mirrors config.Defaults(), wired directly into
// scan.Params rather than routed through a live Store, since the CLI
// runs one-shot batches rather than a long-lived frame loop.
func defaultScanParams() scan.Params {
	return scan.Params{
		Search: searchline.Params{
			RotationalSteps:            8,
			RotationalDensity:          3,
			MinAngle:                   -30,
			MaxAngle:                   30,
			LinearSteps:                8,
			LinearDensity:              3,
			LinearLimit:                1,
			Bidirectional:              true,
			HorizontalWeightAdjustment: 0.47,
		},
		Match: deckmatch.Params{
			Edge: edge.Params{
				WindowSize:       40,
				MinMaxWindowSize: 271,
				Overlap:          0,
				Sensitivity:      0.2,
				MinThreshold:     10,
			},
			SearchMaxMatchError: 1.3,
		},
		Trace: trace.Params{
			Sensitivity:        0.6,
			MaxStrayRatio:      0.5,
			MaxEdgeTraceMisses: 5,
			BackupDistance:     10,
		},
		MarkLineAvgOffsetMultiplier: 0.5,
		UseLandmarkContours:         true,
		Decode: decode.Params{
			SharpnessGateEnabled:              true,
			MinSharpnessUnitScalar:            0.7,
			ResampleBitColumnLengthMultiplier: 5,
		},
		Resolve: resolve.Params{GenocideScaleFactor: 1},
		History: history.Params{
			MaxHistoryAge:              4 * time.Second,
			MissingCardPopularity:      0.5,
			MinHistoryEntries:          15,
			MinimumConfidenceThreshold: 70,
			HighConfidenceThreshold:    90,
		},
		TemporalExpirationMs:   200,
		BatterySaverStartMs:    150000,
		BatterySaverIntervalMs: 250,
	}
}
