package sink

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/matzehuels/stackbar/pkg/errors"
)

func TestRenderJSON(t *testing.T) {
	l := testLayout(t)

	data, err := RenderJSON(l, WithJSONSource("calls.json"))
	if err != nil {
		t.Fatalf("RenderJSON() error: %v", err)
	}

	var out struct {
		Version int     `json:"version"`
		Source  string  `json:"source"`
		Overlap float64 `json:"overlap"`
		Width   float64 `json:"width"`
		Height  float64 `json:"height"`
		Theme   string  `json:"theme"`
		Timing  struct {
			SettleMS     int64 `json:"settle_ms"`
			DebounceMS   int64 `json:"debounce_ms"`
			TransitionMS int64 `json:"transition_ms"`
		} `json:"timing"`
		Bars []struct {
			Key       string          `json:"key"`
			Selection json.RawMessage `json:"selection"`
		} `json:"bars"`
	}
	if err := json.Unmarshal(data, &out); err != nil {
		t.Fatalf("json.Unmarshal() error: %v", err)
	}

	if out.Version != JSONFormatVersion {
		t.Errorf("Version = %d, want %d", out.Version, JSONFormatVersion)
	}
	if out.Source != "calls.json" {
		t.Errorf("Source = %q, want calls.json", out.Source)
	}
	if out.Overlap != DefaultOverlap {
		t.Errorf("Overlap = %v, want %v", out.Overlap, DefaultOverlap)
	}
	if out.Width != 960 || out.Height != 64 {
		t.Errorf("size = %vx%v, want 960x64", out.Width, out.Height)
	}
	if out.Theme != "light" {
		t.Errorf("Theme = %q, want light", out.Theme)
	}
	if diff := cmp.Diff([]int64{100, 500, 500}, []int64{out.Timing.SettleMS, out.Timing.DebounceMS, out.Timing.TransitionMS}); diff != "" {
		t.Errorf("timing mismatch (-want +got):\n%s", diff)
	}
	if len(out.Bars) != 4 {
		t.Fatalf("Bars count = %d, want 4", len(out.Bars))
	}
	// Series-major: row 0 has no email entry, so its bar has no selection.
	if out.Bars[0].Key != "email" || out.Bars[0].Selection != nil {
		t.Errorf("Bars[0] = %s %s, want email without selection", out.Bars[0].Key, out.Bars[0].Selection)
	}
}

func TestRenderJSONCompact(t *testing.T) {
	l := testLayout(t)

	pretty, err := RenderJSON(l)
	if err != nil {
		t.Fatalf("RenderJSON() error: %v", err)
	}
	compact, err := RenderJSON(l, WithJSONCompact())
	if err != nil {
		t.Fatalf("RenderJSON(compact) error: %v", err)
	}
	if strings.Contains(string(compact), "\n") {
		t.Error("compact output contains newlines")
	}
	if len(compact) >= len(pretty) {
		t.Errorf("compact (%d bytes) not smaller than pretty (%d bytes)", len(compact), len(pretty))
	}
}

func TestReadJSONRoundTrip(t *testing.T) {
	l := testLayout(t)

	data, err := RenderJSON(l, WithJSONOverlap(0.5))
	if err != nil {
		t.Fatalf("RenderJSON() error: %v", err)
	}
	got, overlap, err := ReadJSON(data)
	if err != nil {
		t.Fatalf("ReadJSON() error: %v", err)
	}
	if overlap != 0.5 {
		t.Errorf("overlap = %v, want 0.5", overlap)
	}
	if diff := cmp.Diff(RenderSVG(l), RenderSVG(got)); diff != "" {
		t.Errorf("re-read layout draws differently (-want +got):\n%s", diff)
	}
}

func TestReadJSONErrors(t *testing.T) {
	tests := []struct {
		name string
		doc  string
		code errors.Code
	}{
		{"not json", "{", errors.ErrCodeInvalidFormat},
		{"no version", `{"width":10,"height":10}`, errors.ErrCodeInvalidFormat},
		{"future version", `{"version":99,"width":10,"height":10}`, errors.ErrCodeUnsupported},
		{"no size", `{"version":1}`, errors.ErrCodeInvalidFormat},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := ReadJSON([]byte(tt.doc))
			if got := errors.GetCode(err); got != tt.code {
				t.Errorf("ReadJSON() code = %q, want %q (err %v)", got, tt.code, err)
			}
		})
	}
}
