package chart

// Default geometry of a chart.
const (
	DefaultBarHeight = 32
	DefaultPadding   = 0.2
	// ContentOffsetX is the horizontal offset of the plot group inside the
	// SVG viewport.
	ContentOffsetX = 40
)

// Margins are the chart margins in pixels.
type Margins struct {
	Top    float64 `json:"top"`
	Right  float64 `json:"right"`
	Bottom float64 `json:"bottom"`
	Left   float64 `json:"left"`
}

// DefaultMargins leaves room for the top axis and the row labels.
var DefaultMargins = Margins{Top: 30, Right: 15, Bottom: 0, Left: 60}

// IsZero reports whether no margin is set.
func (m Margins) IsZero() bool { return m == Margins{} }

// Viewport is the measured size of the host element.
type Viewport struct {
	Width float64 `json:"width"`
}

// ScaleOptions configures [ComputeScales]. Zero fields take the defaults.
type ScaleOptions struct {
	Margins   Margins `json:"margins"`
	BarHeight float64 `json:"bar_height"`
	Padding   float64 `json:"padding"`
}

func (o ScaleOptions) withDefaults() ScaleOptions {
	if o.Margins.IsZero() {
		o.Margins = DefaultMargins
	}
	if o.BarHeight <= 0 {
		o.BarHeight = DefaultBarHeight
	}
	if o.Padding <= 0 {
		o.Padding = DefaultPadding
	}
	return o
}

// Scales holds the two scales of one render pass.
type Scales struct {
	X Linear
	Y Band
	// Height is rows × bar height; it grows with the data, not the viewport.
	Height float64
}

// ComputeScales derives the horizontal and vertical scales for st.
//
// The horizontal domain is [0, max end] and its range runs from the left
// margin to the viewport width less both side margins. The vertical band
// domain is the sorted row names over [Height - top margin, 0].
func ComputeScales(st Stacked, vp Viewport, opts ScaleOptions) Scales {
	opts = opts.withDefaults()
	m := opts.Margins

	height := float64(len(st.Rows)) * opts.BarHeight
	x := NewLinear(0, st.MaxEnd(), m.Left, vp.Width-m.Left-m.Right)
	y := NewBand(st.Names(), height-m.Top, 0, opts.Padding)

	return Scales{X: x, Y: y, Height: height}
}
