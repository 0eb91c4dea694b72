package pipeline

import (
	"context"
	"time"

	"github.com/matzehuels/stackbar/pkg/chart"
	"github.com/matzehuels/stackbar/pkg/observability"
)

// ComputeLayout runs normalize → stack → scale for records.
// Options must already be validated with [Options.ValidateForLayout].
func ComputeLayout(ctx context.Context, records []chart.Record, opts Options) (*chart.Layout, error) {
	hooks := observability.Pipeline()
	hooks.OnLayoutStart(ctx, len(records))

	start := time.Now()
	l, err := chart.Build(records, opts.Viewport(), opts.ChartOptions())

	rows, categories := 0, 0
	if l != nil {
		rows, categories = len(l.Rows), len(l.Series)
	}
	hooks.OnLayoutComplete(ctx, rows, categories, time.Since(start), err)
	return l, err
}
