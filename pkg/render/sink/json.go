package sink

import (
	"encoding/json"

	"github.com/matzehuels/stackbar/pkg/chart"
	"github.com/matzehuels/stackbar/pkg/errors"
)

// JSONFormatVersion is bumped whenever the exported layout shape changes.
const JSONFormatVersion = 1

// JSONOption configures JSON rendering via [RenderJSON].
type JSONOption func(*jsonRenderer)

type jsonRenderer struct {
	compact bool
	source  string
	overlap float64
}

// WithJSONCompact disables indentation.
func WithJSONCompact() JSONOption { return func(r *jsonRenderer) { r.compact = true } }

// WithJSONSource records where the records came from (a path or "stdin").
func WithJSONSource(s string) JSONOption { return func(r *jsonRenderer) { r.source = s } }

// WithJSONOverlap records the seam overlap clients should add to bar widths.
func WithJSONOverlap(px float64) JSONOption { return func(r *jsonRenderer) { r.overlap = px } }

type jsonOutput struct {
	Version int        `json:"version"`
	Source  string     `json:"source,omitempty"`
	Overlap float64    `json:"overlap"`
	Timing  jsonTiming `json:"timing"`
	*chart.Layout
}

type jsonTiming struct {
	SettleMS     int64      `json:"settle_ms"`
	DebounceMS   int64      `json:"debounce_ms"`
	TransitionMS int64      `json:"transition_ms"`
	Ease         [4]float64 `json:"ease"`
}

// RenderJSON exports the layout with the renderer settings a client needs
// to draw it. The layout fields are inlined at the top level.
func RenderJSON(l *chart.Layout, opts ...JSONOption) ([]byte, error) {
	r := jsonRenderer{overlap: DefaultOverlap}
	for _, opt := range opts {
		opt(&r)
	}

	out := jsonOutput{
		Version: JSONFormatVersion,
		Source:  r.source,
		Overlap: r.overlap,
		Timing: jsonTiming{
			SettleMS:     chart.SettleDelay.Milliseconds(),
			DebounceMS:   chart.ResizeDebounce.Milliseconds(),
			TransitionMS: chart.TransitionDuration.Milliseconds(),
			Ease:         chart.EaseSpline,
		},
		Layout: l,
	}
	if r.compact {
		return json.Marshal(out)
	}
	return json.MarshalIndent(out, "", "  ")
}

// ReadJSON decodes a document written by [RenderJSON] and returns the layout
// with the overlap it was exported with.
func ReadJSON(data []byte) (*chart.Layout, float64, error) {
	var in struct {
		Version int      `json:"version"`
		Overlap *float64 `json:"overlap"`
		chart.Layout
	}
	if err := json.Unmarshal(data, &in); err != nil {
		return nil, 0, errors.Wrap(errors.ErrCodeInvalidFormat, err, "decode layout")
	}
	if in.Version == 0 {
		return nil, 0, errors.New(errors.ErrCodeInvalidFormat, "not a layout document: missing version")
	}
	if in.Version > JSONFormatVersion {
		return nil, 0, errors.New(errors.ErrCodeUnsupported, "layout version %d is newer than %d", in.Version, JSONFormatVersion)
	}
	if in.Width <= 0 || in.Height <= 0 {
		return nil, 0, errors.New(errors.ErrCodeInvalidFormat, "layout has no size (%vx%v)", in.Width, in.Height)
	}
	overlap := DefaultOverlap
	if in.Overlap != nil {
		overlap = *in.Overlap
	}
	l := in.Layout
	return &l, overlap, nil
}
