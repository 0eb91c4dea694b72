// Package observability lets embedders attach metrics or tracing to the
// chart pipeline, the caches and the interactive surfaces without this
// module importing a metrics backend.
//
// Hooks are process-wide. Register them once from main before any work
// starts; unset categories fall back to no-ops:
//
//	observability.SetCacheHooks(promCacheHooks{})
//
// Instrumented code fetches the current hooks at each call site:
//
//	start := time.Now()
//	observability.Pipeline().OnLayoutStart(ctx, len(records))
//	l, err := chart.Build(records, vp, opts)
//	observability.Pipeline().OnLayoutComplete(ctx, len(l.Rows), len(l.Series), time.Since(start), err)
//
// [LogHooks] implements every category on top of a logger; the CLI installs
// it when run with --verbose.
package observability

import (
	"context"
	"sync/atomic"
	"time"
)

// PipelineHooks observes the records → layout → artifacts pipeline.
type PipelineHooks interface {
	OnLayoutStart(ctx context.Context, records int)
	OnLayoutComplete(ctx context.Context, rows, categories int, duration time.Duration, err error)
	OnRenderStart(ctx context.Context, formats []string)
	OnRenderComplete(ctx context.Context, formats []string, duration time.Duration, err error)
}

// CacheHooks observes layout, artifact and chart handle caches. Kind names
// the cached value ("layout", "artifact", "chart").
type CacheHooks interface {
	OnCacheHit(ctx context.Context, kind string)
	OnCacheMiss(ctx context.Context, kind string)
	OnCacheSet(ctx context.Context, kind string, size int)
}

// EventHooks observes interactive surfaces.
type EventHooks interface {
	// OnRenderPass reports one widget pass; trigger is "mount" or "resize".
	OnRenderPass(ctx context.Context, trigger string, duration time.Duration, err error)
	// OnSelection reports one click; kind is "segment" or "row".
	OnSelection(ctx context.Context, source, kind string)
	// OnSubscribers reports how many hosts listen to a chart's selections.
	OnSubscribers(ctx context.Context, chartID string, count int)
}

type NoopPipelineHooks struct{}

func (NoopPipelineHooks) OnLayoutStart(context.Context, int)                               {}
func (NoopPipelineHooks) OnLayoutComplete(context.Context, int, int, time.Duration, error) {}
func (NoopPipelineHooks) OnRenderStart(context.Context, []string)                          {}
func (NoopPipelineHooks) OnRenderComplete(context.Context, []string, time.Duration, error) {}

type NoopCacheHooks struct{}

func (NoopCacheHooks) OnCacheHit(context.Context, string)      {}
func (NoopCacheHooks) OnCacheMiss(context.Context, string)     {}
func (NoopCacheHooks) OnCacheSet(context.Context, string, int) {}

type NoopEventHooks struct{}

func (NoopEventHooks) OnRenderPass(context.Context, string, time.Duration, error) {}
func (NoopEventHooks) OnSelection(context.Context, string, string)                {}
func (NoopEventHooks) OnSubscribers(context.Context, string, int)                 {}

// registry is swapped as a whole so readers never take a lock.
type registry struct {
	pipeline PipelineHooks
	cache    CacheHooks
	events   EventHooks
}

var current atomic.Pointer[registry]

func init() { Reset() }

func update(fn func(r *registry)) {
	for {
		old := current.Load()
		next := *old
		fn(&next)
		if current.CompareAndSwap(old, &next) {
			return
		}
	}
}

// SetPipelineHooks installs h. A nil h is ignored.
func SetPipelineHooks(h PipelineHooks) {
	if h != nil {
		update(func(r *registry) { r.pipeline = h })
	}
}

// SetCacheHooks installs h. A nil h is ignored.
func SetCacheHooks(h CacheHooks) {
	if h != nil {
		update(func(r *registry) { r.cache = h })
	}
}

// SetEventHooks installs h. A nil h is ignored.
func SetEventHooks(h EventHooks) {
	if h != nil {
		update(func(r *registry) { r.events = h })
	}
}

func Pipeline() PipelineHooks { return current.Load().pipeline }

func Cache() CacheHooks { return current.Load().cache }

func Events() EventHooks { return current.Load().events }

// Reset restores the no-op hooks.
func Reset() {
	current.Store(&registry{
		pipeline: NoopPipelineHooks{},
		cache:    NoopCacheHooks{},
		events:   NoopEventHooks{},
	})
}
