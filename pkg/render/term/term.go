// Package term draws chart layouts as colored text for terminal previews.
package term

import (
	"cmp"
	"math"
	"slices"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/lucasb-eyer/go-colorful"

	"github.com/matzehuels/stackbar/pkg/chart"
)

const (
	DefaultColumns    = 60
	DefaultLabelWidth = 14

	barGlyph    = "█"
	legendGlyph = "■"
)

var (
	styleAxis  = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	styleLabel = lipgloss.NewStyle().Foreground(lipgloss.Color("255"))
	styleTotal = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	styleFocus = lipgloss.NewStyle().Bold(true).Underline(true)
)

// Cursor points at a bar, or at a row label when Series is negative.
type Cursor struct {
	Row    int
	Series int
}

// Options configures [Render]. Zero fields take the defaults.
type Options struct {
	// Columns is the width of the bar area in cells.
	Columns    int
	LabelWidth int
	Cursor     *Cursor
	Legend     bool
}

func (o Options) withDefaults() Options {
	if o.Columns <= 0 {
		o.Columns = DefaultColumns
	}
	if o.LabelWidth <= 0 {
		o.LabelWidth = DefaultLabelWidth
	}
	return o
}

// Render draws l top to bottom in screen order.
func Render(l *chart.Layout, opts Options) string {
	opts = opts.withDefaults()
	g := newGrid(l, opts.Columns)

	var b strings.Builder
	b.WriteString(renderAxis(l, g, opts))
	b.WriteByte('\n')
	for _, row := range ScreenOrder(l) {
		b.WriteString(renderRow(l, g, row, opts))
		b.WriteByte('\n')
	}
	if opts.Legend && len(l.Series) > 0 {
		b.WriteByte('\n')
		b.WriteString(renderLegend(l))
		b.WriteByte('\n')
	}
	return b.String()
}

// ScreenOrder returns row indices sorted by vertical position.
func ScreenOrder(l *chart.Layout) []int {
	idx := make([]int, len(l.Rows))
	for i := range idx {
		idx[i] = i
	}
	slices.SortStableFunc(idx, func(a, b int) int {
		return cmp.Compare(l.Rows[a].Y, l.Rows[b].Y)
	})
	return idx
}

// grid maps plot x coordinates to cells.
type grid struct {
	origin float64
	scale  float64
	cols   int
}

func newGrid(l *chart.Layout, cols int) grid {
	span := l.Range[1] - l.Range[0]
	g := grid{origin: l.Range[0], cols: cols}
	if span > 0 {
		g.scale = float64(cols) / span
	}
	return g
}

func (g grid) cell(x float64) int {
	c := int(math.Round((x - g.origin) * g.scale))
	return max(0, min(c, g.cols))
}

func renderAxis(l *chart.Layout, g grid, opts Options) string {
	line := []rune(strings.Repeat(" ", g.cols+8))
	for _, t := range l.Ticks {
		c := g.cell(t.X)
		for i, r := range []rune(t.Label) {
			if c+i < len(line) {
				line[c+i] = r
			}
		}
	}
	pad := strings.Repeat(" ", opts.LabelWidth+1)
	return pad + styleAxis.Render(strings.TrimRight(string(line), " "))
}

func renderRow(l *chart.Layout, g grid, row int, opts Options) string {
	info := l.Rows[row]

	label := lipgloss.NewStyle().Width(opts.LabelWidth).MaxWidth(opts.LabelWidth).Align(lipgloss.Right)
	text := styleLabel.Render(info.Label)
	if opts.Cursor != nil && opts.Cursor.Row == row && opts.Cursor.Series < 0 {
		text = styleFocus.Inherit(styleLabel).Render(info.Label)
	}

	var b strings.Builder
	b.WriteString(label.Render(text))
	b.WriteByte(' ')

	cells := 0
	for _, bar := range l.Bars {
		if bar.Row != row || bar.Width <= 0 {
			continue
		}
		c0 := max(g.cell(bar.X), cells)
		c1 := max(g.cell(bar.X+bar.Width), c0+1)
		if c1 > g.cols {
			c1 = g.cols
		}
		if c1 <= c0 {
			continue
		}
		b.WriteString(strings.Repeat(" ", c0-cells))
		focused := opts.Cursor != nil && opts.Cursor.Row == row && opts.Cursor.Series == bar.Series
		b.WriteString(barStyle(bar.Color, focused).Render(strings.Repeat(barGlyph, c1-c0)))
		cells = c1
	}
	b.WriteByte(' ')
	b.WriteString(styleTotal.Render(info.Value.String()))
	return b.String()
}

func renderLegend(l *chart.Layout) string {
	parts := make([]string, 0, len(l.Series))
	for _, s := range l.Series {
		parts = append(parts, lipgloss.NewStyle().Foreground(lipgloss.Color(s.Color)).Render(legendGlyph)+" "+s.Key)
	}
	return strings.Join(parts, "  ")
}

func barStyle(color string, focused bool) lipgloss.Style {
	if focused {
		color = Highlight(color)
	}
	return lipgloss.NewStyle().Foreground(lipgloss.Color(color))
}

// Highlight returns color blended 40% toward white. Unparsable colors are
// returned unchanged.
func Highlight(color string) string {
	c, err := colorful.Hex(color)
	if err != nil {
		return color
	}
	white := colorful.Color{R: 1, G: 1, B: 1}
	return c.BlendLab(white, 0.4).Clamped().Hex()
}
