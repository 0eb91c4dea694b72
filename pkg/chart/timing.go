package chart

import "time"

// Timing of the interactive renderer.
const (
	// SettleDelay is the wait between mounting and the first render pass.
	SettleDelay = 100 * time.Millisecond
	// ResizeDebounce is the quiet period after the last resize before a
	// re-render.
	ResizeDebounce = 500 * time.Millisecond
	// TransitionDuration is how long bars take to grow to their width.
	TransitionDuration = 500 * time.Millisecond
)

// EaseSpline is a cubic-bezier approximation of a symmetric polynomial
// ease-in-out of exponent 3, in CSS and SMIL keySplines order.
var EaseSpline = [4]float64{0.65, 0, 0.35, 1}
