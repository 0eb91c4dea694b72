package pipeline

import (
	"context"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/matzehuels/stackbar/pkg/chart"
	"github.com/matzehuels/stackbar/pkg/errors"
	"github.com/matzehuels/stackbar/pkg/observability"
	"github.com/matzehuels/stackbar/pkg/render/sink"
)

// Render writes l in every requested format. Formats are rendered
// concurrently; the first failure cancels the rest.
// Options must already be validated with [Options.ValidateForRender].
func Render(ctx context.Context, l *chart.Layout, opts Options) (map[string][]byte, error) {
	hooks := observability.Pipeline()
	hooks.OnRenderStart(ctx, opts.Formats)
	start := time.Now()

	var mu sync.Mutex
	artifacts := make(map[string][]byte, len(opts.Formats))

	g, gctx := errgroup.WithContext(ctx)
	for _, format := range opts.Formats {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			data, err := renderFormat(l, format, opts)
			if err != nil {
				return err
			}
			mu.Lock()
			artifacts[format] = data
			mu.Unlock()
			return nil
		})
	}
	err := g.Wait()
	hooks.OnRenderComplete(ctx, opts.Formats, time.Since(start), err)
	if err != nil {
		return nil, err
	}
	return artifacts, nil
}

func renderFormat(l *chart.Layout, format string, opts Options) ([]byte, error) {
	svgOpts := buildSVGOptions(opts)

	var data []byte
	var err error
	switch format {
	case FormatSVG:
		data = sink.RenderSVG(l, svgOpts...)
	case FormatPNG:
		data, err = sink.RenderPNG(l, sink.WithPNGSVGOptions(svgOpts...), sink.WithScale(opts.Scale))
	case FormatPDF:
		data, err = sink.RenderPDF(l, sink.WithPDFSVGOptions(svgOpts...))
	case FormatJSON:
		data, err = sink.RenderJSON(l, buildJSONOptions(opts)...)
	default:
		return nil, errors.New(errors.ErrCodeInvalidFormat, "unsupported format: %s", format)
	}
	if err != nil {
		if errors.GetCode(err) != "" {
			return nil, err
		}
		return nil, errors.Wrap(errors.ErrCodeRenderFailed, err, "render %s", format)
	}
	return data, nil
}

func buildSVGOptions(opts Options) []sink.SVGOption {
	var svgOpts []sink.SVGOption
	if opts.Static {
		svgOpts = append(svgOpts, sink.WithStatic())
	}
	if opts.Overlap != nil {
		svgOpts = append(svgOpts, sink.WithOverlap(*opts.Overlap))
	}
	if opts.Title != "" {
		svgOpts = append(svgOpts, sink.WithTitle(opts.Title))
	}
	return svgOpts
}

func buildJSONOptions(opts Options) []sink.JSONOption {
	var jsonOpts []sink.JSONOption
	if opts.Overlap != nil {
		jsonOpts = append(jsonOpts, sink.WithJSONOverlap(*opts.Overlap))
	}
	if opts.Source != "" {
		jsonOpts = append(jsonOpts, sink.WithJSONSource(opts.Source))
	}
	return jsonOpts
}
