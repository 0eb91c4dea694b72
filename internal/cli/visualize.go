package cli

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/stackbar/pkg/pipeline"
	"github.com/matzehuels/stackbar/pkg/render/sink"
)

// visualizeCommand creates the visualize command for drawing a saved layout.
func (c *CLI) visualizeCommand() *cobra.Command {
	var (
		formatsStr string
		output     string
		noCache    bool
	)
	opts := pipeline.Options{}

	cmd := &cobra.Command{
		Use:   "visualize [layout.json]",
		Short: "Render a layout computed by 'layout'",
		Long: `Render a layout computed by 'layout'.

The layout already holds all geometry, so this step only draws it. The
seam overlap recorded in the file is reused unless --overlap is given.

Use 'render' to go directly from records to visual output.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.Formats = parseFormats(formatsStr)
			if err := pipeline.ValidateFormats(opts.Formats); err != nil {
				return err
			}
			if !cmd.Flags().Changed("overlap") {
				opts.Overlap = nil
			}
			return c.runVisualize(cmd.Context(), args[0], opts, output, noCache)
		},
	}

	overlap := sink.DefaultOverlap
	opts.Overlap = &overlap

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (single format) or base path (multiple)")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")
	cmd.Flags().StringVarP(&formatsStr, "format", "f", "", "output format(s): svg (default), png, pdf, json (comma-separated)")
	cmd.Flags().BoolVar(&opts.Static, "static", false, "omit scripts and animation from SVG output")
	cmd.Flags().StringVar(&opts.Title, "title", "", "chart title (SVG <title>)")
	cmd.Flags().Float64Var(opts.Overlap, "overlap", overlap, "seam overlap in pixels")

	return cmd
}

// runVisualize loads the layout and renders it.
func (c *CLI) runVisualize(ctx context.Context, input string, opts pipeline.Options, output string, noCache bool) error {
	data, err := os.ReadFile(input)
	if err != nil {
		return fmt.Errorf("load layout %s: %w", input, err)
	}
	l, overlap, err := sink.ReadJSON(data)
	if err != nil {
		return fmt.Errorf("load layout %s: %w", input, err)
	}
	if opts.Overlap == nil {
		opts.Overlap = &overlap
	}

	runner, err := c.newRunner(noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	opts.Logger = c.Logger
	opts.Source = sourceName(input)

	spinner := newSpinnerWithContext(ctx, fmt.Sprintf("Drawing %d rows...", len(l.Rows)))
	spinner.Start()

	artifacts, cacheHit, err := runner.RenderWithCacheInfo(ctx, l, opts)
	if err != nil {
		spinner.StopWithError("Visualization failed")
		return fmt.Errorf("visualize: %w", err)
	}
	spinner.Stop()

	return writeArtifacts(artifactWriteParams{
		artifacts:  artifacts,
		formats:    opts.Formats,
		input:      visualizeInput(input),
		output:     output,
		cacheHit:   cacheHit,
		rows:       len(l.Rows),
		categories: len(l.Series),
	})
}

// visualizeInput maps calls.layout.json to calls.json so outputs are named
// after the records, not the layout.
func visualizeInput(input string) string {
	if base, ok := strings.CutSuffix(input, ".layout.json"); ok {
		return base + ".json"
	}
	return input
}
