package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/stackbar/pkg/pipeline"
	"github.com/matzehuels/stackbar/pkg/render/sink"
)

// layoutCommand creates the layout command for exporting chart geometry.
func (c *CLI) layoutCommand() *cobra.Command {
	var (
		output  string
		palette string
		noCache bool
		compact bool
	)
	opts := pipeline.Options{}
	setCLIDefaults(&opts)

	cmd := &cobra.Command{
		Use:   "layout [records]",
		Short: "Compute the chart layout as JSON",
		Long: `Compute the chart layout as JSON.

The layout holds every bar, row label, tick, tooltip and selection payload,
plus the timing a client needs to animate it. Draw it with 'visualize' or
in any other client.

Use "-o -" to write to stdout.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.Palette = parsePalette(palette)
			out := cmd.OutOrStdout()
			return c.runLayout(cmd.Context(), out, args[0], opts, output, noCache, compact)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default: <input>.layout.json)")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")
	cmd.Flags().BoolVar(&compact, "compact", false, "write JSON without indentation")
	addLayoutFlags(cmd, &opts, &palette)

	return cmd
}

// runLayout loads the records, computes the layout, and writes it to output.
func (c *CLI) runLayout(ctx context.Context, w io.Writer, input string, opts pipeline.Options, output string, noCache, compact bool) error {
	records, err := loadRecords(input, &opts)
	if err != nil {
		return err
	}

	runner, err := c.newRunner(noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	opts.Logger = c.Logger
	p := newProgress(c.Logger)

	l, cacheHit, err := runner.LayoutWithCacheInfo(ctx, records, opts)
	if err != nil {
		return fmt.Errorf("compute layout: %w", err)
	}
	if ctx.Err() != nil {
		return ctx.Err()
	}

	jsonOpts := []sink.JSONOption{sink.WithJSONSource(sourceName(input)), sink.WithJSONOverlap(*opts.Overlap)}
	if compact {
		jsonOpts = append(jsonOpts, sink.WithJSONCompact())
	}
	data, err := sink.RenderJSON(l, jsonOpts...)
	if err != nil {
		return fmt.Errorf("encode layout: %w", err)
	}

	if output == "-" {
		_, err := w.Write(append(data, '\n'))
		return err
	}

	outputPath := output
	if outputPath == "" {
		outputPath = strings.TrimSuffix(basePath("", input), ".layout") + ".layout.json"
	}
	if err := os.WriteFile(outputPath, data, 0o644); err != nil {
		return fmt.Errorf("write output %s: %w", outputPath, err)
	}
	p.done(fmt.Sprintf("Laid out %d rows", len(l.Rows)))

	printSuccess("Layout complete")
	printFile(outputPath, len(data))
	printStats(len(l.Rows), len(l.Series), cacheHit)
	printNewline()
	printNextStep("Render", "stackbar visualize "+outputPath)
	return nil
}
