package pipeline

import (
	"context"
	"encoding/json"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/stackbar/pkg/cache"
	"github.com/matzehuels/stackbar/pkg/chart"
	"github.com/matzehuels/stackbar/pkg/errors"
	"github.com/matzehuels/stackbar/pkg/observability"
)

// Runner runs the pipeline against a cache. It holds no per-run state and may
// be shared between goroutines.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Logger *log.Logger
}

// NewRunner returns a runner over c. A nil cache disables caching and a nil
// keyer selects [cache.NewDefaultKeyer].
func NewRunner(c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{
		Cache:  c,
		Keyer:  keyer,
		Logger: logger,
	}
}

// Execute validates opts, then lays out and renders records, consulting the
// cache at each stage.
func (r *Runner) Execute(ctx context.Context, records []chart.Record, opts Options) (*Result, error) {
	if err := opts.ValidateForLayout(); err != nil {
		return nil, err
	}
	if err := opts.ValidateForRender(); err != nil {
		return nil, err
	}

	result := &Result{Stats: Stats{Records: len(records)}}

	layoutStart := time.Now()
	l, layoutHit, err := r.LayoutWithCacheInfo(ctx, records, opts)
	if err != nil {
		return nil, err
	}
	result.Layout = l
	result.Stats.LayoutTime = time.Since(layoutStart)
	result.Stats.Rows = len(l.Rows)
	result.Stats.Categories = len(l.Series)
	result.CacheInfo.LayoutHit = layoutHit

	r.Logger.Info("computed layout",
		"rows", len(l.Rows),
		"categories", len(l.Series),
		"cached", layoutHit,
		"duration", result.Stats.LayoutTime)

	renderStart := time.Now()
	artifacts, renderHit, err := r.RenderWithCacheInfo(ctx, l, opts)
	if err != nil {
		return nil, err
	}
	result.Artifacts = artifacts
	result.Stats.RenderTime = time.Since(renderStart)
	result.CacheInfo.RenderHit = renderHit
	if data, err := json.Marshal(l); err == nil {
		result.LayoutHash = cache.Hash(data)
	}

	r.Logger.Info("rendered outputs",
		"formats", opts.Formats,
		"cached", renderHit,
		"duration", result.Stats.RenderTime)

	return result, nil
}

// LayoutWithCacheInfo computes the layout of records with caching and
// reports whether it came from the cache.
func (r *Runner) LayoutWithCacheInfo(ctx context.Context, records []chart.Record, opts Options) (*chart.Layout, bool, error) {
	if err := opts.ValidateForLayout(); err != nil {
		return nil, false, err
	}

	cacheKey := r.Keyer.LayoutKey(DatasetHash(records), opts.LayoutKeyOpts())
	hooks := observability.Cache()

	if !opts.Refresh {
		if data, hit, err := r.Cache.Get(ctx, cacheKey); err == nil && hit {
			if cached, err := decodeCachedLayout(data); err == nil {
				hooks.OnCacheHit(ctx, "layout")
				return cached, true, nil
			}
			r.Logger.Debug("discarding unreadable cached layout", "key", cacheKey)
		} else if err != nil {
			r.Logger.Warn("layout cache read failed", "err", err)
		}
		hooks.OnCacheMiss(ctx, "layout")
	}

	l, err := ComputeLayout(ctx, records, opts)
	if err != nil {
		return nil, false, err
	}

	if data, err := encodeCachedLayout(l); err == nil {
		if err := r.Cache.Set(ctx, cacheKey, data, cache.LayoutTTL); err != nil {
			r.Logger.Warn("layout cache write failed", "err", err)
		} else {
			hooks.OnCacheSet(ctx, "layout", len(data))
		}
	}
	return l, false, nil
}

// Layout is [Runner.LayoutWithCacheInfo] without the hit flag.
func (r *Runner) Layout(ctx context.Context, records []chart.Record, opts Options) (*chart.Layout, error) {
	l, _, err := r.LayoutWithCacheInfo(ctx, records, opts)
	return l, err
}

// RenderWithCacheInfo renders l in every requested format with caching and
// reports whether all artifacts came from the cache.
func (r *Runner) RenderWithCacheInfo(ctx context.Context, l *chart.Layout, opts Options) (map[string][]byte, bool, error) {
	if err := opts.ValidateForRender(); err != nil {
		return nil, false, err
	}

	layoutData, err := json.Marshal(l)
	if err != nil {
		return nil, false, errors.Wrap(errors.ErrCodeInternal, err, "serialize layout for cache key")
	}
	layoutHash := cache.Hash(layoutData)
	hooks := observability.Cache()

	if !opts.Refresh {
		artifacts := make(map[string][]byte, len(opts.Formats))
		for _, format := range opts.Formats {
			key := r.Keyer.ArtifactKey(layoutHash, opts.ArtifactKeyOpts(format))
			data, hit, err := r.Cache.Get(ctx, key)
			if err != nil || !hit {
				break
			}
			artifacts[format] = data
		}
		if len(artifacts) == len(opts.Formats) {
			hooks.OnCacheHit(ctx, "artifact")
			return artifacts, true, nil
		}
		hooks.OnCacheMiss(ctx, "artifact")
	}

	rendered, err := Render(ctx, l, opts)
	if err != nil {
		return nil, false, err
	}

	for format, data := range rendered {
		key := r.Keyer.ArtifactKey(layoutHash, opts.ArtifactKeyOpts(format))
		if err := r.Cache.Set(ctx, key, data, cache.ArtifactTTL); err != nil {
			r.Logger.Warn("artifact cache write failed", "format", format, "err", err)
			continue
		}
		hooks.OnCacheSet(ctx, "artifact", len(data))
	}
	return rendered, false, nil
}

// Render is [Runner.RenderWithCacheInfo] without the hit flag.
func (r *Runner) Render(ctx context.Context, l *chart.Layout, opts Options) (map[string][]byte, error) {
	artifacts, _, err := r.RenderWithCacheInfo(ctx, l, opts)
	return artifacts, err
}

// Close closes the cache.
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}

// DatasetHash returns a content hash of records. Non-finite values hash by
// their text form since JSON cannot tell them apart.
func DatasetHash(records []chart.Record) string {
	data, _ := json.Marshal(records)
	for _, rec := range records {
		data = append(data, rec.Value.String()...)
		for _, e := range rec.Series {
			data = append(data, e.Value.String()...)
		}
	}
	return cache.Hash(data)
}

// cachedLayout is the layout cache form. Row values are kept as text next
// to the layout because the layout's JSON writes non-finite values as null.
type cachedLayout struct {
	Layout    *chart.Layout `json:"layout"`
	RowValues []string      `json:"row_values"`
}

func encodeCachedLayout(l *chart.Layout) ([]byte, error) {
	c := cachedLayout{Layout: l, RowValues: make([]string, len(l.Rows))}
	for i, row := range l.Rows {
		c.RowValues[i] = row.Value.String()
	}
	return json.Marshal(c)
}

func decodeCachedLayout(data []byte) (*chart.Layout, error) {
	var c cachedLayout
	if err := json.Unmarshal(data, &c); err != nil {
		return nil, err
	}
	if c.Layout == nil || len(c.RowValues) != len(c.Layout.Rows) {
		return nil, errors.New(errors.ErrCodeCache, "cached layout has %d row values for %d rows", len(c.RowValues), rowCount(c.Layout))
	}
	for i, v := range c.RowValues {
		c.Layout.Rows[i].Value = chart.Coerce(v)
	}
	return c.Layout, nil
}

func rowCount(l *chart.Layout) int {
	if l == nil {
		return 0
	}
	return len(l.Rows)
}
