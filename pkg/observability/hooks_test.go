package observability

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/charmbracelet/log"
)

type countingCacheHooks struct {
	NoopCacheHooks
	mu   sync.Mutex
	hits map[string]int
}

func (c *countingCacheHooks) OnCacheHit(_ context.Context, kind string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.hits[kind]++
}

func TestRegistryDefaults(t *testing.T) {
	Reset()
	if _, ok := Pipeline().(NoopPipelineHooks); !ok {
		t.Errorf("Pipeline() = %T, want NoopPipelineHooks", Pipeline())
	}
	if _, ok := Cache().(NoopCacheHooks); !ok {
		t.Errorf("Cache() = %T, want NoopCacheHooks", Cache())
	}
	if _, ok := Events().(NoopEventHooks); !ok {
		t.Errorf("Events() = %T, want NoopEventHooks", Events())
	}
}

func TestSetHooksKeepsOtherCategories(t *testing.T) {
	t.Cleanup(Reset)
	Reset()

	hooks := &countingCacheHooks{hits: map[string]int{}}
	SetCacheHooks(hooks)
	SetCacheHooks(nil)

	Cache().OnCacheHit(context.Background(), "layout")
	Cache().OnCacheHit(context.Background(), "layout")
	if hooks.hits["layout"] != 2 {
		t.Errorf("layout hits = %d, want 2", hooks.hits["layout"])
	}
	if _, ok := Pipeline().(NoopPipelineHooks); !ok {
		t.Error("setting cache hooks replaced pipeline hooks")
	}
}

func TestConcurrentSetters(t *testing.T) {
	t.Cleanup(Reset)
	Reset()

	var wg sync.WaitGroup
	cache := &countingCacheHooks{hits: map[string]int{}}
	logs := LogHooks{Logger: log.New(&bytes.Buffer{})}
	wg.Add(2)
	go func() { defer wg.Done(); SetCacheHooks(cache) }()
	go func() { defer wg.Done(); SetEventHooks(logs) }()
	wg.Wait()

	if Cache() != CacheHooks(cache) {
		t.Error("cache hooks lost in a concurrent update")
	}
	if _, ok := Events().(LogHooks); !ok {
		t.Error("event hooks lost in a concurrent update")
	}
}

func TestLogHooks(t *testing.T) {
	t.Cleanup(Reset)
	var buf bytes.Buffer
	logger := log.NewWithOptions(&buf, log.Options{Level: log.DebugLevel})
	LogHooks{Logger: logger}.Install()

	ctx := context.Background()
	Pipeline().OnLayoutComplete(ctx, 3, 2, time.Millisecond, nil)
	Cache().OnCacheSet(ctx, "artifact", 512)
	Events().OnSelection(ctx, "widget", "row")
	Events().OnRenderPass(ctx, "resize", 0, errors.New("boom"))

	out := buf.String()
	for _, want := range []string{"layout done", "rows=3", "cache set", "bytes=512", "selection", "kind=row", "render pass failed", "boom"} {
		if !strings.Contains(out, want) {
			t.Errorf("log output missing %q:\n%s", want, out)
		}
	}
}
