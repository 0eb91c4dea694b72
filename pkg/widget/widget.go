// Package widget schedules render passes of an interactive chart and turns
// pointer input into tooltips and selection events.
//
// A pass runs on two triggers: mount, after [chart.SettleDelay], and resize,
// debounced by [chart.ResizeDebounce] so that only the last size of a burst
// is drawn. Passes never overlap and each fully replaces the previous
// output. The widget keeps only the last layout, for hit-testing input.
//
//	w := widget.New(records, widget.Options{Renderer: draw})
//	w.Mount(960)
//	w.Resize(720)
//	sel, ok := w.ClickSegment(0, "email")
//	w.Close()
package widget

import (
	"context"
	"io"
	"sync"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/stackbar/pkg/chart"
	"github.com/matzehuels/stackbar/pkg/errors"
	"github.com/matzehuels/stackbar/pkg/observability"
)

// Render triggers.
const (
	TriggerMount  = "mount"
	TriggerResize = "resize"
)

// Selection kinds.
const (
	KindSegment = "segment"
	KindRow     = "row"
)

// ErrClosed is returned by passes that run after Close.
var ErrClosed = errors.New(errors.ErrCodeInternal, "widget is closed")

// Renderer draws a layout, replacing whatever it drew before.
type Renderer interface {
	Draw(l *chart.Layout) error
}

// RendererFunc adapts a function to [Renderer].
type RendererFunc func(l *chart.Layout) error

// Draw implements Renderer.
func (f RendererFunc) Draw(l *chart.Layout) error { return f(l) }

// Options configures a [Widget].
type Options struct {
	Chart    chart.Options
	Renderer Renderer
	Clock    Clock
	Logger   *log.Logger

	// OnSelect receives every selection event, once per click.
	OnSelect func(chart.Selection)

	// Source names the widget in observability events.
	Source string
}

// Widget is one mounted chart.
type Widget struct {
	records []chart.Record
	opts    Options
	logger  *log.Logger

	// renderMu serializes passes.
	renderMu sync.Mutex

	mu       sync.Mutex
	width    float64
	mounted  bool
	closed   bool
	settle   Timer
	debounce *Debouncer
	layout   *chart.Layout
	lastErr  error
	passes   int
}

// New returns an unmounted widget for records.
func New(records []chart.Record, opts Options) *Widget {
	if opts.Clock == nil {
		opts.Clock = RealClock
	}
	if opts.Renderer == nil {
		opts.Renderer = RendererFunc(func(*chart.Layout) error { return nil })
	}
	logger := opts.Logger
	if logger == nil {
		logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	return &Widget{
		records:  records,
		opts:     opts,
		logger:   logger,
		debounce: NewDebouncer(opts.Clock, chart.ResizeDebounce),
	}
}

// Mount records the initial width and schedules the first pass after the
// settle delay. Mounting twice is a no-op.
func (w *Widget) Mount(width float64) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed || w.mounted {
		return
	}
	w.mounted = true
	w.width = width
	w.settle = w.opts.Clock.AfterFunc(chart.SettleDelay, func() {
		w.pass(TriggerMount)
	})
}

// Resize records a new width and schedules a debounced pass. Resizes before
// Mount only update the width.
func (w *Widget) Resize(width float64) {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return
	}
	w.width = width
	mounted := w.mounted
	w.mu.Unlock()

	if mounted {
		w.debounce.Trigger(func() { w.pass(TriggerResize) })
	}
}

// RenderNow runs a pass immediately at the current width.
func (w *Widget) RenderNow(trigger string) error {
	return w.pass(trigger)
}

func (w *Widget) pass(trigger string) error {
	w.renderMu.Lock()
	defer w.renderMu.Unlock()

	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return ErrClosed
	}
	width := w.width
	w.mu.Unlock()

	start := w.opts.Clock.Now()
	l, err := chart.Build(w.records, chart.Viewport{Width: width}, w.opts.Chart)
	if err == nil {
		err = w.opts.Renderer.Draw(l)
	}
	elapsed := w.opts.Clock.Now().Sub(start)

	w.mu.Lock()
	w.passes++
	w.lastErr = err
	if err == nil {
		w.layout = l
	}
	w.mu.Unlock()

	observability.Events().OnRenderPass(context.Background(), trigger, elapsed, err)
	if err != nil {
		w.logger.Error("render pass failed", "trigger", trigger, "width", width, "err", err)
		return err
	}
	w.logger.Debug("render pass", "trigger", trigger, "width", width, "rows", len(l.Rows), "duration", elapsed)
	return nil
}

// Layout returns the layout of the last successful pass, or nil.
func (w *Widget) Layout() *chart.Layout {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.layout
}

// Width returns the last reported width.
func (w *Widget) Width() float64 {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.width
}

// Passes returns how many render passes have run.
func (w *Widget) Passes() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.passes
}

// Err returns the error of the last pass.
func (w *Widget) Err() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.lastErr
}

// Hover returns the tooltip for a segment, or for the row label when key is
// empty. Absent segments have no tooltip.
func (w *Widget) Hover(row int, key string) (chart.Tooltip, bool) {
	l := w.Layout()
	if l == nil || row < 0 || row >= len(l.Rows) {
		return chart.Tooltip{}, false
	}
	if key == "" {
		return l.Rows[row].Tooltip, true
	}
	b, ok := l.BarAt(row, chart.CategoryKey(key))
	if !ok || b.Tooltip == nil {
		return chart.Tooltip{}, false
	}
	return *b.Tooltip, true
}

// ClickSegment emits the selection for a segment. Clicks on absent
// segments emit nothing.
func (w *Widget) ClickSegment(row int, key string) (chart.Selection, bool) {
	l := w.Layout()
	if l == nil {
		return chart.Selection{}, false
	}
	b, ok := l.BarAt(row, chart.CategoryKey(key))
	if !ok || b.Selection == nil {
		return chart.Selection{}, false
	}
	w.emit(*b.Selection, KindSegment)
	return *b.Selection, true
}

// ClickRow emits the selection for a row label.
func (w *Widget) ClickRow(row int) (chart.Selection, bool) {
	l := w.Layout()
	if l == nil || row < 0 || row >= len(l.Rows) {
		return chart.Selection{}, false
	}
	sel := l.Rows[row].Selection
	w.emit(sel, KindRow)
	return sel, true
}

func (w *Widget) emit(sel chart.Selection, kind string) {
	observability.Events().OnSelection(context.Background(), w.opts.Source, kind)
	if w.opts.OnSelect != nil {
		w.opts.OnSelect(sel)
	}
}

// Close cancels pending passes. A pass already running finishes first.
func (w *Widget) Close() {
	w.debounce.Stop()

	w.renderMu.Lock()
	defer w.renderMu.Unlock()

	w.mu.Lock()
	defer w.mu.Unlock()
	w.closed = true
	if w.settle != nil {
		w.settle.Stop()
		w.settle = nil
	}
}
