// Package pipeline turns records into chart artifacts. The CLI, the preview
// and the HTTP service share it so that they agree on defaults, validation
// and cache keys.
//
// A run has a layout stage, which normalizes, stacks and scales records into
// a [chart.Layout], and a render stage, which encodes that layout as SVG, PNG,
// PDF or JSON. [Runner.Execute] chains both; [Runner.Layout] and
// [Runner.Render] run one stage each.
//
//	runner := pipeline.NewRunner(c, nil, logger)
//	res, err := runner.Execute(ctx, records, pipeline.Options{
//	    Width:   960,
//	    Formats: []string{"svg", "json"},
//	})
//	if err != nil {
//	    return err
//	}
//	svg := res.Artifacts["svg"]
package pipeline

import (
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/stackbar/pkg/cache"
	"github.com/matzehuels/stackbar/pkg/chart"
	"github.com/matzehuels/stackbar/pkg/errors"
	"github.com/matzehuels/stackbar/pkg/fonts"
	"github.com/matzehuels/stackbar/pkg/render/sink"
)

// DefaultWidth is the viewport width used when none was measured.
const DefaultWidth = 960.0

// Output formats.
const (
	FormatSVG  = "svg"
	FormatPNG  = "png"
	FormatPDF  = "pdf"
	FormatJSON = "json"
)

// ValidFormats holds every format [Render] can produce.
var ValidFormats = map[string]bool{
	FormatSVG:  true,
	FormatPNG:  true,
	FormatPDF:  true,
	FormatJSON: true,
}

// Options configures both stages. Zero fields take defaults; the JSON form is
// what the HTTP service accepts in request bodies.
type Options struct {
	// layout stage
	Width     float64        `json:"width,omitempty"`
	BarHeight float64        `json:"bar_height,omitempty"`
	Padding   float64        `json:"padding,omitempty"`
	Margins   *chart.Margins `json:"margins,omitempty"`
	Palette   []string       `json:"palette,omitempty"`
	Theme     string         `json:"theme,omitempty"`

	// render stage
	Formats []string `json:"formats,omitempty"`
	Static  bool     `json:"static,omitempty"`
	// Overlap is the seam overlap in pixels; nil means sink.DefaultOverlap.
	Overlap *float64 `json:"overlap,omitempty"`
	Scale   float64  `json:"scale,omitempty"` // PNG only
	Title   string   `json:"title,omitempty"`
	Source  string   `json:"source,omitempty"`

	// Refresh bypasses cached values but still stores fresh ones.
	Refresh bool `json:"refresh,omitempty"`

	Logger   *log.Logger    `json:"-"`
	Measurer chart.Measurer `json:"-"`
}

// Result is what [Runner.Execute] produced.
type Result struct {
	Layout *chart.Layout

	// LayoutHash is the content hash of the serialized layout.
	LayoutHash string

	// Artifacts maps format to encoded bytes.
	Artifacts map[string][]byte

	Stats     Stats
	CacheInfo CacheInfo
}

// Stats describes a run.
type Stats struct {
	Records    int
	Rows       int
	Categories int
	LayoutTime time.Duration
	RenderTime time.Duration
}

// CacheInfo reports which stages were served from the cache.
type CacheInfo struct {
	LayoutHit bool
	RenderHit bool // all artifacts came from cache
}

// ValidateFormat reports INVALID_FORMAT for names outside [ValidFormats].
func ValidateFormat(format string) error {
	if !ValidFormats[format] {
		return errors.New(errors.ErrCodeInvalidFormat, "invalid format: %q (must be one of: svg, png, pdf, json)", format)
	}
	return nil
}

// ValidateFormats checks each entry of formats.
func ValidateFormats(formats []string) error {
	for _, f := range formats {
		if err := ValidateFormat(f); err != nil {
			return err
		}
	}
	return nil
}

// SetLayoutDefaults fills unset layout fields. Labels are measured with
// [fonts.Default] unless a Measurer is given.
func (o *Options) SetLayoutDefaults() {
	if o.Width == 0 {
		o.Width = DefaultWidth
	}
	if o.BarHeight == 0 {
		o.BarHeight = chart.DefaultBarHeight
	}
	if o.Padding == 0 {
		o.Padding = chart.DefaultPadding
	}
	if o.Margins == nil {
		m := chart.DefaultMargins
		o.Margins = &m
	}
	if o.Measurer == nil {
		o.Measurer = fonts.Default()
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
}

// ValidateForLayout applies layout defaults, then checks the viewport,
// scale options and palette. The palette is normalized in place.
func (o *Options) ValidateForLayout() error {
	o.SetLayoutDefaults()
	if err := o.ChartOptions().Validate(o.Viewport()); err != nil {
		return err
	}
	if len(o.Palette) > 0 {
		palette, err := chart.ParsePalette(o.Palette)
		if err != nil {
			return err
		}
		o.Palette = palette
	}
	return nil
}

// SetRenderDefaults fills unset render fields. An explicit zero overlap is
// kept.
func (o *Options) SetRenderDefaults() {
	if len(o.Formats) == 0 {
		o.Formats = []string{FormatSVG}
	}
	if o.Overlap == nil {
		v := sink.DefaultOverlap
		o.Overlap = &v
	}
	if o.Scale == 0 {
		o.Scale = sink.DefaultScale
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
}

// ValidateForRender applies render defaults and rejects unknown formats and
// negative overlap or scale.
func (o *Options) ValidateForRender() error {
	o.SetRenderDefaults()
	if err := ValidateFormats(o.Formats); err != nil {
		return err
	}
	if *o.Overlap < 0 {
		return errors.New(errors.ErrCodeInvalidInput, "overlap must not be negative, got %v", *o.Overlap)
	}
	if o.Scale < 0 {
		return errors.New(errors.ErrCodeInvalidInput, "scale must be positive, got %v", o.Scale)
	}
	return nil
}

// Viewport returns the measured viewport.
func (o *Options) Viewport() chart.Viewport {
	return chart.Viewport{Width: o.Width}
}

// ChartOptions converts o into layout options.
func (o *Options) ChartOptions() chart.Options {
	opts := chart.Options{
		ScaleOptions: chart.ScaleOptions{BarHeight: o.BarHeight, Padding: o.Padding},
		Palette:      o.Palette,
		Theme:        o.Theme,
		Measurer:     o.Measurer,
	}
	if o.Margins != nil {
		opts.Margins = *o.Margins
	}
	return opts
}

// LayoutKeyOpts lists the fields that change a layout.
func (o *Options) LayoutKeyOpts() cache.LayoutKeyOpts {
	k := cache.LayoutKeyOpts{
		Width:     o.Width,
		BarHeight: o.BarHeight,
		Padding:   o.Padding,
		Palette:   o.Palette,
		Theme:     o.Theme,
	}
	if o.Margins != nil {
		k.Margins = [4]float64{o.Margins.Top, o.Margins.Right, o.Margins.Bottom, o.Margins.Left}
	}
	return k
}

// ArtifactKeyOpts lists the fields that change an artifact of format.
// Scale only matters for PNG.
func (o *Options) ArtifactKeyOpts(format string) cache.ArtifactKeyOpts {
	k := cache.ArtifactKeyOpts{Format: format, Static: o.Static, Title: o.Title, Source: o.Source}
	if o.Overlap != nil {
		k.Overlap = *o.Overlap
	}
	if format == FormatPNG {
		k.Scale = o.Scale
	}
	return k
}
