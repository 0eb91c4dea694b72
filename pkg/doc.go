// Package pkg holds the public stackbar libraries.
//
// # Overview
//
// Stackbar turns an ordered list of records, each a total plus named parts,
// into a horizontal stacked bar chart. The pkg directory is organized as:
//
//  1. [chart] - Pure layout math (normalize, stack, scales, labels, layout)
//  2. [dataset] - Record documents in JSON, YAML or TOML
//  3. [pipeline] - Orchestration with caching (records → layout → artifacts)
//  4. [render] - Output: SVG, JSON, PNG and PDF sinks plus terminal bars
//  5. [widget] - Render scheduling and pointer input for interactive hosts
//  6. [cache], [session] - Storage for layouts, artifacts and chart handles
//  7. [errors], [observability], [buildinfo] - Cross-cutting support
//
// # Architecture
//
//	records (JSON/YAML/TOML)
//	         ↓
//	    [dataset] decode
//	         ↓
//	    [chart] Normalize → Stack → Scales → Layout
//	         ↓
//	    [render/sink] SVG / JSON / PNG / PDF      [widget] mount, resize, click
//
// # Quick Start
//
//	ds, err := dataset.Load("calls.yaml")
//	if err != nil {
//	    return err
//	}
//	l, err := chart.Build(ds.Records, chart.Viewport{Width: 960}, chart.Options{})
//	if err != nil {
//	    return err
//	}
//	svg := sink.RenderSVG(l)
//
// With caching and multiple formats:
//
//	runner := pipeline.NewRunner(cache.NewMemoryCache(), nil, logger)
//	result, err := runner.Execute(ctx, ds.Records, pipeline.Options{
//	    Formats: []string{"svg", "json"},
//	})
//
// [chart]: github.com/matzehuels/stackbar/pkg/chart
// [dataset]: github.com/matzehuels/stackbar/pkg/dataset
// [pipeline]: github.com/matzehuels/stackbar/pkg/pipeline
// [render]: github.com/matzehuels/stackbar/pkg/render
// [render/sink]: github.com/matzehuels/stackbar/pkg/render/sink
// [widget]: github.com/matzehuels/stackbar/pkg/widget
// [cache]: github.com/matzehuels/stackbar/pkg/cache
// [session]: github.com/matzehuels/stackbar/pkg/session
// [errors]: github.com/matzehuels/stackbar/pkg/errors
// [observability]: github.com/matzehuels/stackbar/pkg/observability
// [buildinfo]: github.com/matzehuels/stackbar/pkg/buildinfo
package pkg
