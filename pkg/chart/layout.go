package chart

import (
	"github.com/matzehuels/stackbar/pkg/errors"
)

// DefaultTickCount is the number of ticks requested for the top axis.
const DefaultTickCount = 5

// Options configures [Build].
type Options struct {
	ScaleOptions
	// Palette overrides DefaultPalette.
	Palette []string
	// Theme is the host's color identifier. It is carried into the layout
	// untouched.
	Theme    string
	Measurer Measurer
	Label    LabelOptions
}

// Layout is the drawable geometry of one render pass.
//
// Bars and row labels are in plot coordinates: sinks translate the plot
// group by (OffsetX, Margins.Top) and the row label axis additionally by
// Margins.Left.
type Layout struct {
	Width     float64    `json:"width"`
	Height    float64    `json:"height"`
	OffsetX   float64    `json:"offset_x"`
	Margins   Margins    `json:"margins"`
	Bandwidth float64    `json:"bandwidth"`
	Domain    [2]float64 `json:"domain"`
	Range     [2]float64 `json:"range"`
	Theme     string     `json:"theme,omitempty"`

	Series []SeriesInfo `json:"series"`
	Rows   []RowLabel   `json:"rows"`
	Bars   []Bar        `json:"bars"`
	Ticks  []Tick       `json:"ticks"`
	Label  LabelOptions `json:"label"`
}

// SeriesInfo describes one category.
type SeriesInfo struct {
	Key   string `json:"key"`
	Index int    `json:"index"`
	Color string `json:"color"`
}

// RowLabel is one entry of the row label axis.
type RowLabel struct {
	Index     int       `json:"index"`
	Name      string    `json:"name"`
	Label     string    `json:"label"`
	Truncated bool      `json:"truncated"`
	ID        ID        `json:"id"`
	Value     Value     `json:"value"`
	Y         float64   `json:"y"`
	Center    float64   `json:"center"`
	Tooltip   Tooltip   `json:"tooltip"`
	Selection Selection `json:"selection"`
}

// Bar is one (row, category) rectangle.
type Bar struct {
	Row    int     `json:"row"`
	Series int     `json:"series"`
	Key    string  `json:"key"`
	Color  string  `json:"color"`
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
	Start  float64 `json:"start"`
	End    float64 `json:"end"`
	// Tooltip and Selection are nil when the row has no entry for Key.
	Tooltip   *Tooltip   `json:"tooltip,omitempty"`
	Selection *Selection `json:"selection,omitempty"`
}

// DrawWidth returns the rendered width: non-empty bars grow by overlap so
// adjacent segments do not show hairline seams.
func (b Bar) DrawWidth(overlap float64) float64 {
	if b.Width <= 0 {
		return 0
	}
	return b.Width + overlap
}

// Tick is one labelled tick of the top axis.
type Tick struct {
	Value float64 `json:"value"`
	X     float64 `json:"x"`
	Label string  `json:"label"`
}

// Validate checks the viewport and geometry options.
func (o Options) Validate(vp Viewport) error {
	s := o.ScaleOptions.withDefaults()
	return errors.ValidateViewport(vp.Width, s.BarHeight, s.Padding)
}

// Build runs the full pipeline for records at the given viewport.
func Build(records []Record, vp Viewport, opts Options) (*Layout, error) {
	if err := opts.Validate(vp); err != nil {
		return nil, err
	}
	rows, keys, err := Normalize(records)
	if err != nil {
		return nil, err
	}
	return FromStacked(Stack(rows, keys), vp, opts)
}

// FromStacked lays out already stacked data.
func FromStacked(st Stacked, vp Viewport, opts Options) (*Layout, error) {
	colors, err := NewColorScale(st.Keys(), opts.Palette)
	if err != nil {
		return nil, err
	}

	scaleOpts := opts.ScaleOptions.withDefaults()
	label := opts.Label.withDefaults()
	sc := ComputeScales(st, vp, scaleOpts)

	d0, d1 := sc.X.Domain()
	r0, r1 := sc.X.Range()
	l := &Layout{
		Width:     vp.Width,
		Height:    sc.Height,
		OffsetX:   ContentOffsetX,
		Margins:   scaleOpts.Margins,
		Bandwidth: sc.Y.Bandwidth(),
		Domain:    [2]float64{d0, d1},
		Range:     [2]float64{r0, r1},
		Theme:     opts.Theme,
		Label:     label,
		Series:    make([]SeriesInfo, len(st.Series)),
		Rows:      make([]RowLabel, len(st.Rows)),
		Bars:      make([]Bar, 0, len(st.Series)*len(st.Rows)),
		Ticks:     []Tick{},
	}

	for i, ser := range st.Series {
		l.Series[i] = SeriesInfo{Key: ser.Key, Index: ser.Index, Color: colors.Color(ser.Key)}
	}

	for i, row := range st.Rows {
		y, _ := sc.Y.Map(row.Name)
		center, _ := sc.Y.Center(row.Name)
		text := TruncateLabel(row.Name, opts.Measurer, label)
		l.Rows[i] = RowLabel{
			Index:     i,
			Name:      row.Name,
			Label:     text,
			Truncated: text != row.Name,
			ID:        row.ID,
			Value:     row.Value,
			Y:         y,
			Center:    center,
			Tooltip:   RowTooltip(row),
			Selection: RowSelection(row),
		}
	}

	for _, ser := range st.Series {
		color := l.Series[ser.Index].Color
		for _, seg := range ser.Segments {
			row := st.Rows[seg.Row]
			y, _ := sc.Y.Map(row.Name)
			bar := Bar{
				Row:    seg.Row,
				Series: ser.Index,
				Key:    ser.Key,
				Color:  color,
				X:      sc.X.Map(seg.Start),
				Y:      y,
				Height: sc.Y.Bandwidth(),
				Start:  seg.Start,
				End:    seg.End,
			}
			if seg.End != 0 {
				bar.Width = sc.X.Map(seg.End) - sc.X.Map(seg.Start)
			}
			if tip, ok := SegmentTooltip(row, ser.Key); ok {
				sel, _ := SegmentSelection(row, ser.Key)
				bar.Tooltip = &tip
				bar.Selection = &sel
			}
			l.Bars = append(l.Bars, bar)
		}
	}

	for _, v := range sc.X.Ticks(DefaultTickCount) {
		l.Ticks = append(l.Ticks, Tick{Value: v, X: sc.X.Map(v), Label: sc.X.TickFormat(v)})
	}

	return l, nil
}

// BarAt returns the bar for the given row and category key.
func (l *Layout) BarAt(row int, key string) (Bar, bool) {
	for _, b := range l.Bars {
		if b.Row == row && b.Key == key {
			return b, true
		}
	}
	return Bar{}, false
}

// RowByName returns the first row label with the given name.
func (l *Layout) RowByName(name string) (RowLabel, bool) {
	for _, r := range l.Rows {
		if r.Name == name {
			return r, true
		}
	}
	return RowLabel{}, false
}
