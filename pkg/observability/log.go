package observability

import (
	"context"
	"time"

	"github.com/charmbracelet/log"
)

// LogHooks writes every event to a logger at debug level; failed layout,
// render and widget passes are logged as warnings.
type LogHooks struct {
	Logger *log.Logger
}

// Install registers h for all hook categories.
func (h LogHooks) Install() {
	SetPipelineHooks(h)
	SetCacheHooks(h)
	SetEventHooks(h)
}

func (h LogHooks) OnLayoutStart(_ context.Context, records int) {
	h.Logger.Debug("layout start", "records", records)
}

func (h LogHooks) OnLayoutComplete(_ context.Context, rows, categories int, d time.Duration, err error) {
	if err != nil {
		h.Logger.Warn("layout failed", "duration", d, "err", err)
		return
	}
	h.Logger.Debug("layout done", "rows", rows, "categories", categories, "duration", d)
}

func (h LogHooks) OnRenderStart(_ context.Context, formats []string) {
	h.Logger.Debug("render start", "formats", formats)
}

func (h LogHooks) OnRenderComplete(_ context.Context, formats []string, d time.Duration, err error) {
	if err != nil {
		h.Logger.Warn("render failed", "formats", formats, "duration", d, "err", err)
		return
	}
	h.Logger.Debug("render done", "formats", formats, "duration", d)
}

func (h LogHooks) OnCacheHit(_ context.Context, kind string) {
	h.Logger.Debug("cache hit", "kind", kind)
}

func (h LogHooks) OnCacheMiss(_ context.Context, kind string) {
	h.Logger.Debug("cache miss", "kind", kind)
}

func (h LogHooks) OnCacheSet(_ context.Context, kind string, size int) {
	h.Logger.Debug("cache set", "kind", kind, "bytes", size)
}

func (h LogHooks) OnRenderPass(_ context.Context, trigger string, d time.Duration, err error) {
	if err != nil {
		h.Logger.Warn("render pass failed", "trigger", trigger, "err", err)
		return
	}
	h.Logger.Debug("render pass", "trigger", trigger, "duration", d)
}

func (h LogHooks) OnSelection(_ context.Context, source, kind string) {
	h.Logger.Debug("selection", "source", source, "kind", kind)
}

func (h LogHooks) OnSubscribers(_ context.Context, chartID string, count int) {
	h.Logger.Debug("subscribers", "chart", chartID, "count", count)
}
