package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/urbanpilot/oddnet/pkg/odd"
	"github.com/urbanpilot/oddnet/pkg/pipeline"
	"github.com/urbanpilot/oddnet/pkg/roadnet"
)

// networkCommand creates the network command for compliance evaluation.
func (c *CLI) networkCommand() *cobra.Command {
	var (
		output  string
		mode    string
		noCache bool
	)
	opts := pipeline.Options{}

	cmd := &cobra.Command{
		Use:   "network [snapshot.json]",
		Short: "Extract the largest compliant road network as GeoJSON",
		Long: `Extract the largest compliant road network as GeoJSON.

The network command evaluates stored junction and edge features against
compliance criteria and selects the largest connected sub-network whose
edges all satisfy them. Criteria come from the [criteria] section of the
config file when --mode is "predefined"; with --mode "all" every edge
passes.

When a snapshot file is given, it is analyzed first, so a single command
goes from snapshot to network. Without one, the command reads features
persisted by a previous 'analyze' run from the configured store.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			mergeAnalysisOptions(&opts, c.config)
			if mode != "" {
				opts.Mode = odd.Mode(mode)
			}
			input := ""
			if len(args) == 1 {
				input = args[0]
			}
			return c.runNetwork(cmd.Context(), input, opts, output, noCache)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "network.geojson", "output file ('-' for stdout)")
	cmd.Flags().StringVar(&mode, "mode", "", "criteria mode: all, predefined")
	cmd.Flags().Float64Var(&opts.SnapTolerance, "snap-tolerance", 0, "endpoint snap tolerance in meters (0 = exact)")
	cmd.Flags().BoolVar(&opts.Refresh, "refresh", false, "bypass the network result cache")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")

	return cmd
}

// runNetwork optionally analyzes a snapshot, evaluates criteria, and
// writes the resulting GeoJSON.
func (c *CLI) runNetwork(ctx context.Context, input string, opts pipeline.Options, output string, noCache bool) error {
	runner, err := c.newRunner(ctx, noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close(context.Background())

	opts.Logger = c.Logger

	if input != "" {
		g, err := roadnet.ReadSnapshotFile(input)
		if err != nil {
			return fmt.Errorf("load snapshot %s: %w", input, err)
		}
		analyzeOpts := opts
		analyzeOpts.Overwrite = true
		spinner := newSpinnerWithContext(ctx, "Analyzing junctions...")
		spinner.Start()
		if _, err := runner.Analyze(ctx, g, analyzeOpts); err != nil {
			spinner.StopWithError("Analysis failed")
			return fmt.Errorf("analyze: %w", err)
		}
		spinner.Stop()
	}

	spinner := newSpinnerWithContext(ctx, "Evaluating compliance criteria...")
	spinner.Start()

	result, err := runner.Network(ctx, opts)
	if err != nil {
		spinner.StopWithError("Evaluation failed")
		return fmt.Errorf("network: %w", err)
	}
	spinner.Stop()

	if len(result.Collection.Features) == 0 {
		printWarning("No compliant road network found for the given criteria")
		printStats(0, result.Stats.TotalEdges, result.CacheHit)
		return nil
	}

	data, err := result.Collection.MarshalJSON()
	if err != nil {
		return fmt.Errorf("encode network: %w", err)
	}
	data = append(data, '\n')

	if output == "-" {
		if _, err := os.Stdout.Write(data); err != nil {
			return err
		}
	} else {
		if err := os.WriteFile(output, data, 0o644); err != nil {
			return fmt.Errorf("write %s: %w", output, err)
		}
	}

	printSuccess("Selected %d polylines from %d compliant edges (of %d total)",
		len(result.Collection.Features), result.Stats.CompliantEdges, result.Stats.TotalEdges)
	if result.CacheHit {
		printDetail("Result served from cache")
	}
	if output != "-" {
		printFile(output)
	}
	return nil
}
