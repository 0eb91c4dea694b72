package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"

	"github.com/matzehuels/stackbar/pkg/chart"
	"github.com/matzehuels/stackbar/pkg/dataset"
	"github.com/matzehuels/stackbar/pkg/pipeline"
	"github.com/matzehuels/stackbar/pkg/widget"
)

// renderOpts holds the render command flags that are not pipeline options.
type renderOpts struct {
	formats string
	palette string
	output  string
	noCache bool
	watch   bool
}

// renderCommand creates the render command.
func (c *CLI) renderCommand() *cobra.Command {
	var ro renderOpts
	opts := pipeline.Options{}
	setCLIDefaults(&opts)

	cmd := &cobra.Command{
		Use:   "render [records]",
		Short: "Render records to SVG, PNG, PDF or layout JSON",
		Long: `Render records to SVG, PNG, PDF or layout JSON.

Records files may be JSON, YAML or TOML. Use "-" to read JSON from stdin.
With --watch the chart is re-rendered whenever the records file changes.

Results are cached locally for faster subsequent runs.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.Formats = parseFormats(ro.formats)
			opts.Palette = parsePalette(ro.palette)
			if err := pipeline.ValidateFormats(opts.Formats); err != nil {
				return err
			}
			if ro.watch {
				if args[0] == "-" {
					return fmt.Errorf("--watch needs a records file, not stdin")
				}
				return c.watchRender(cmd.Context(), args[0], opts, ro)
			}
			return c.runRender(cmd.Context(), args[0], opts, ro)
		},
	}

	cmd.Flags().StringVarP(&ro.formats, "format", "f", "", "output format(s): svg (default), png, pdf, json (comma-separated)")
	cmd.Flags().StringVarP(&ro.output, "output", "o", "", "output file (single format) or base path (multiple)")
	cmd.Flags().BoolVar(&ro.noCache, "no-cache", false, "disable caching")
	cmd.Flags().BoolVar(&ro.watch, "watch", false, "re-render when the records file changes")
	addLayoutFlags(cmd, &opts, &ro.palette)
	cmd.Flags().BoolVar(&opts.Static, "static", false, "omit scripts and animation from SVG output")
	cmd.Flags().StringVar(&opts.Title, "title", "", "chart title (SVG <title>)")

	return cmd
}

// addLayoutFlags registers the flags shared by every command that computes a
// layout.
func addLayoutFlags(cmd *cobra.Command, opts *pipeline.Options, palette *string) {
	cmd.Flags().Float64Var(&opts.Width, "width", opts.Width, "viewport width in pixels")
	cmd.Flags().Float64Var(&opts.BarHeight, "bar-height", opts.BarHeight, "height per row in pixels")
	cmd.Flags().Float64Var(&opts.Padding, "padding", opts.Padding, "band padding between rows, in [0,1)")
	cmd.Flags().StringVar(palette, "palette", "", "comma-separated colors replacing the default palette")
	cmd.Flags().StringVar(&opts.Theme, "theme", "", "theme identifier passed through to the layout")
}

// setCLIDefaults fills options the CLI shows as flag defaults.
func setCLIDefaults(opts *pipeline.Options) {
	opts.SetLayoutDefaults()
	opts.SetRenderDefaults()
	opts.Margins = nil
	opts.Logger = nil
	opts.Formats = nil
}

// loadRecords reads a records file and applies its theme when no --theme
// flag was given.
func loadRecords(input string, opts *pipeline.Options) ([]chart.Record, error) {
	ds, err := dataset.Load(input)
	if err != nil {
		return nil, fmt.Errorf("load records %s: %w", input, err)
	}
	if opts.Theme == "" {
		opts.Theme = ds.Theme
	}
	return ds.Records, nil
}

// runRender loads the records once and writes every requested format.
func (c *CLI) runRender(ctx context.Context, input string, opts pipeline.Options, ro renderOpts) error {
	records, err := loadRecords(input, &opts)
	if err != nil {
		return err
	}

	runner, err := c.newRunner(ro.noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	opts.Logger = c.Logger
	opts.Source = sourceName(input)

	spinner := newSpinnerWithContext(ctx, fmt.Sprintf("Rendering %d records...", len(records)))
	spinner.Start()

	result, err := runner.Execute(ctx, records, opts)
	if err != nil {
		spinner.StopWithError("Render failed")
		return fmt.Errorf("render: %w", err)
	}
	spinner.Stop()

	if ctx.Err() != nil {
		return ctx.Err()
	}

	return writeArtifacts(artifactWriteParams{
		artifacts:  result.Artifacts,
		formats:    opts.Formats,
		input:      input,
		output:     ro.output,
		cacheHit:   result.CacheInfo.LayoutHit && result.CacheInfo.RenderHit,
		rows:       result.Stats.Rows,
		categories: result.Stats.Categories,
	})
}

// watchRender renders once and again after every change to input, until ctx
// ends. Editors write files in bursts, so changes are debounced.
func (c *CLI) watchRender(ctx context.Context, input string, opts pipeline.Options, ro renderOpts) error {
	if err := c.runRender(ctx, input, opts, ro); err != nil {
		printError("%v", err)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("start watcher: %w", err)
	}
	defer watcher.Close()

	// Watch the directory: editors often replace the file instead of writing it.
	abs, err := filepath.Abs(input)
	if err != nil {
		return err
	}
	if err := watcher.Add(filepath.Dir(abs)); err != nil {
		return fmt.Errorf("watch %s: %w", input, err)
	}

	rerender := make(chan struct{}, 1)
	debounce := widget.NewDebouncer(widget.RealClock, chart.ResizeDebounce)
	defer debounce.Stop()

	printInfo("Watching %s (ctrl+c to stop)", input)
	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(ev.Name) != abs || !ev.Has(fsnotify.Write|fsnotify.Create|fsnotify.Rename) {
				continue
			}
			c.Logger.Debug("records changed", "file", ev.Name, "op", ev.Op)
			debounce.Trigger(func() {
				select {
				case rerender <- struct{}{}:
				default:
				}
			})
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			c.Logger.Warn("watch error", "err", err)
		case <-rerender:
			if _, err := os.Stat(abs); err != nil {
				c.Logger.Debug("records file unavailable", "err", err)
				printWarning("%s is gone, waiting for it to come back", input)
				continue
			}
			if err := c.runRender(ctx, input, opts, ro); err != nil {
				printError("%v", err)
			}
		}
	}
}

// artifactWriteParams describes rendered output to write to disk.
type artifactWriteParams struct {
	artifacts  map[string][]byte
	formats    []string
	input      string
	output     string
	cacheHit   bool
	rows       int
	categories int
}

// writeArtifacts writes each format to its own file. A single format goes to
// --output verbatim; otherwise --output is a base path.
func writeArtifacts(p artifactWriteParams) error {
	type written struct {
		path string
		size int
	}
	var files []written
	for _, format := range p.formats {
		data, ok := p.artifacts[format]
		if !ok {
			continue
		}
		path := basePath(p.output, p.input) + "." + format
		if len(p.formats) == 1 && p.output != "" {
			path = p.output
		}
		if err := os.WriteFile(path, data, 0o644); err != nil {
			return fmt.Errorf("write output %s: %w", path, err)
		}
		files = append(files, written{path, len(data)})
	}

	printSuccess("Render complete")
	for _, f := range files {
		printFile(f.path, f.size)
	}
	if p.rows > 0 || p.categories > 0 {
		printStats(p.rows, p.categories, p.cacheHit)
	}
	return nil
}
