package chart

import (
	"math"
	"unicode/utf8"
)

// Label defaults: 14px labels wider than 80px are cut to
// floor(75 / (14/2)) = 10 characters plus an ellipsis.
const (
	DefaultLabelFontSize = 14
	DefaultLabelMaxWidth = 80
	DefaultLabelBudget   = 75
	DefaultEllipsis      = "..."
)

// Measurer reports the rendered width in pixels of s at the given font size.
type Measurer interface {
	MeasureString(s string, size float64) float64
}

// MeasurerFunc adapts a function to [Measurer].
type MeasurerFunc func(s string, size float64) float64

// MeasureString implements Measurer.
func (f MeasurerFunc) MeasureString(s string, size float64) float64 { return f(s, size) }

// ApproxMeasurer estimates widths from an average glyph advance of 0.55em.
// It is used when no font metrics are available.
var ApproxMeasurer Measurer = MeasurerFunc(func(s string, size float64) float64 {
	return float64(utf8.RuneCountInString(s)) * size * 0.55
})

// LabelOptions configures [TruncateLabel]. Zero fields take the defaults.
type LabelOptions struct {
	FontSize float64 `json:"font_size"`
	MaxWidth float64 `json:"max_width"`
	Budget   float64 `json:"budget"`
	Ellipsis string  `json:"ellipsis"`
}

func (o LabelOptions) withDefaults() LabelOptions {
	if o.FontSize <= 0 {
		o.FontSize = DefaultLabelFontSize
	}
	if o.MaxWidth <= 0 {
		o.MaxWidth = DefaultLabelMaxWidth
	}
	if o.Budget <= 0 {
		o.Budget = DefaultLabelBudget
	}
	if o.Ellipsis == "" {
		o.Ellipsis = DefaultEllipsis
	}
	return o
}

// KeepChars returns how many characters survive truncation.
func (o LabelOptions) KeepChars() int {
	o = o.withDefaults()
	return int(math.Floor(o.Budget / (o.FontSize / 2)))
}

// TruncateLabel shortens label when its measured width exceeds the pixel
// budget. A nil measurer uses [ApproxMeasurer].
func TruncateLabel(label string, m Measurer, opts LabelOptions) string {
	opts = opts.withDefaults()
	if m == nil {
		m = ApproxMeasurer
	}
	if m.MeasureString(label, opts.FontSize) <= opts.MaxWidth {
		return label
	}

	keep := opts.KeepChars()
	runes := []rune(label)
	if len(runes) > keep {
		runes = runes[:keep]
	}
	return string(runes) + opts.Ellipsis
}
