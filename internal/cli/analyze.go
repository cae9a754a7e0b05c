package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sort"

	"github.com/spf13/cobra"

	"github.com/urbanpilot/oddnet/pkg/pipeline"
	"github.com/urbanpilot/oddnet/pkg/roadnet"
)

// analyzeCommand creates the analyze command for junction analysis.
func (c *CLI) analyzeCommand() *cobra.Command {
	var (
		output  string
		noCache bool
	)
	opts := pipeline.Options{}

	cmd := &cobra.Command{
		Use:   "analyze [snapshot.json]",
		Short: "Analyze junctions in a road network snapshot",
		Long: `Analyze junctions in a road network snapshot.

The analyze command reads a snapshot file, classifies every junction
(T, Y, crossroad, roundabout), counts movement conflicts per junction,
and persists the resulting feature documents to the configured store.

Use --output to additionally write the junction results as JSON.
Afterwards, 'network' evaluates compliance criteria against the stored
features.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			mergeAnalysisOptions(&opts, c.config)
			return c.runAnalyze(cmd.Context(), args[0], opts, output, noCache)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "write junction results JSON to file ('-' for stdout)")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")

	cmd.Flags().Float64Var(&opts.TrimDist, "trim-dist", 0, "corridor trim distance in meters")
	cmd.Flags().Float64Var(&opts.TypeAngleTol, "angle-tol", 0, "junction type angle tolerance in degrees")
	cmd.Flags().Float64Var(&opts.PositionTol, "position-tol", 0, "approach position tolerance in degrees")
	cmd.Flags().Float64Var(&opts.LaneWidth, "lane-width", 0, "assumed lane width in meters")
	cmd.Flags().BoolVar(&opts.LeftHandTraffic, "left-hand", false, "assume left-hand traffic")
	cmd.Flags().IntVar(&opts.Workers, "workers", 0, "analysis worker count (default 8)")
	cmd.Flags().Float64Var(&opts.SchoolZoneRadius, "school-zone-radius", 0, "school zone radius in meters (default 100)")
	cmd.Flags().Float64Var(&opts.ParkingLotRadius, "parking-radius", 0, "parking lot proximity radius in meters (default 15)")
	cmd.Flags().BoolVar(&opts.Overwrite, "overwrite", false, "drop stored results before persisting")

	return cmd
}

// runAnalyze loads the snapshot, analyzes it, and writes output.
func (c *CLI) runAnalyze(ctx context.Context, input string, opts pipeline.Options, output string, noCache bool) error {
	g, err := roadnet.ReadSnapshotFile(input)
	if err != nil {
		return fmt.Errorf("load snapshot %s: %w", input, err)
	}

	runner, err := c.newRunner(ctx, noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close(context.Background())

	opts.Logger = c.Logger

	prog := newProgress(c.Logger)
	spinner := newSpinnerWithContext(ctx, "Analyzing junctions...")
	spinner.Start()

	result, err := runner.Analyze(ctx, g, opts)
	if err != nil {
		spinner.StopWithError("Analysis failed")
		return fmt.Errorf("analyze: %w", err)
	}
	spinner.Stop()
	prog.done(fmt.Sprintf("Analyzed %d junctions", result.Stats.JunctionCount))

	printStats(result.Stats.NodeCount, result.Stats.EdgeCount, false)

	if output != "" {
		if err := writeJunctionReport(result, output); err != nil {
			return err
		}
		if output != "-" {
			printFile(output)
		}
	}

	printNextStep("Evaluate compliance", "oddnet network")
	return nil
}

// junctionReport is the JSON shape written by analyze --output.
type junctionReport struct {
	Node      int64          `json:"node"`
	Lon       float64        `json:"lon"`
	Lat       float64        `json:"lat"`
	Type      string         `json:"junc_type"`
	Conflicts map[string]int `json:"conflict_counter"`
}

func writeJunctionReport(result *pipeline.AnalyzeResult, output string) error {
	reports := make([]junctionReport, 0, len(result.Junctions))
	for _, id := range sortedResultIDs(result) {
		res := result.Junctions[id]
		counts := make(map[string]int, len(res.Conflicts))
		for kind, n := range res.Conflicts {
			counts[string(kind)] = n
		}
		reports = append(reports, junctionReport{
			Node:      int64(res.Node),
			Lon:       res.Point[0],
			Lat:       res.Point[1],
			Type:      string(res.Type),
			Conflicts: counts,
		})
	}

	data, err := json.MarshalIndent(reports, "", "  ")
	if err != nil {
		return fmt.Errorf("encode junction report: %w", err)
	}
	data = append(data, '\n')

	if output == "-" {
		_, err := os.Stdout.Write(data)
		return err
	}
	if err := os.WriteFile(output, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", output, err)
	}
	return nil
}

func sortedResultIDs(result *pipeline.AnalyzeResult) []roadnet.NodeID {
	ids := make([]roadnet.NodeID, 0, len(result.Junctions))
	for id := range result.Junctions {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// mergeAnalysisOptions fills unset option fields from the config file.
// Flags bind directly to the options, so a flag the user set wins.
func mergeAnalysisOptions(opts *pipeline.Options, cfg Config) {
	defaults := cfg.pipelineOptions()
	if opts.TrimDist == 0 {
		opts.TrimDist = defaults.TrimDist
	}
	if opts.TypeAngleTol == 0 {
		opts.TypeAngleTol = defaults.TypeAngleTol
	}
	if opts.PositionTol == 0 {
		opts.PositionTol = defaults.PositionTol
	}
	if opts.LaneWidth == 0 {
		opts.LaneWidth = defaults.LaneWidth
	}
	if !opts.LeftHandTraffic {
		opts.LeftHandTraffic = defaults.LeftHandTraffic
	}
	if opts.Workers == 0 {
		opts.Workers = defaults.Workers
	}
	if opts.SchoolZoneRadius == 0 {
		opts.SchoolZoneRadius = defaults.SchoolZoneRadius
	}
	if opts.ParkingLotRadius == 0 {
		opts.ParkingLotRadius = defaults.ParkingLotRadius
	}
	if opts.Mode == "" {
		opts.Mode = defaults.Mode
	}
	if opts.SnapTolerance == 0 {
		opts.SnapTolerance = defaults.SnapTolerance
	}
	opts.Predefined = defaults.Predefined
}
