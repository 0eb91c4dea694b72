package chart

import (
	"encoding/json"
	"math"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/matzehuels/stackbar/pkg/errors"
)

func TestBuildExample(t *testing.T) {
	records := []Record{
		record("A", 5, 1, entry("X", 3, 11), entry("Y", 2, 12)),
	}

	l, err := Build(records, Viewport{Width: 960}, Options{})
	if err != nil {
		t.Fatalf("Build() error: %v", err)
	}

	if l.Domain != [2]float64{0, 5} {
		t.Errorf("Domain = %v, want [0 5]", l.Domain)
	}
	if l.Range != [2]float64{60, 885} {
		t.Errorf("Range = %v, want [60 885]", l.Range)
	}
	if l.Height != 32 || l.Width != 960 || l.OffsetX != ContentOffsetX {
		t.Errorf("viewport = %vx%v offset %v", l.Width, l.Height, l.OffsetX)
	}
	if len(l.Bars) != 2 {
		t.Fatalf("len(Bars) = %d, want 2", len(l.Bars))
	}

	x, y := l.Bars[0], l.Bars[1]
	if x.Key != "x" || x.X != 60 || math.Abs(x.Width-495) > 1e-9 {
		t.Errorf("x bar = %+v, want X=60 Width=495", x)
	}
	if y.Key != "y" || math.Abs(y.X-555) > 1e-9 || math.Abs(y.Width-330) > 1e-9 {
		t.Errorf("y bar = %+v, want X=555 Width=330", y)
	}
	if x.Color != DefaultPalette[0] || y.Color != DefaultPalette[1] {
		t.Errorf("colors = %s, %s", x.Color, y.Color)
	}
	if x.Height != l.Bandwidth {
		t.Errorf("bar height = %v, want bandwidth %v", x.Height, l.Bandwidth)
	}

	var labels []string
	for _, tk := range l.Ticks {
		labels = append(labels, tk.Label)
	}
	if diff := cmp.Diff([]string{"0", "1", "2", "3", "4", "5"}, labels); diff != "" {
		t.Errorf("tick labels mismatch (-want +got):\n%s", diff)
	}
}

func TestBuildZeroEndHasNoWidth(t *testing.T) {
	records := []Record{
		record("A", 1, 1, entry("x", 0, 1), Entry{Name: "y", Value: NaN(), ID: NumericID(2)}),
		record("B", 2, 2, entry("x", 4, 1)),
	}

	l, err := Build(records, Viewport{Width: 400}, Options{})
	if err != nil {
		t.Fatal(err)
	}

	for _, b := range l.Bars {
		if l.Rows[b.Row].Name == "A" && b.Width != 0 {
			t.Errorf("bar %s of A has width %v, want 0", b.Key, b.Width)
		}
		if b.DrawWidth(2) != 0 && b.Width == 0 {
			t.Errorf("DrawWidth of empty bar %s = %v", b.Key, b.DrawWidth(2))
		}
	}
	b, ok := l.BarAt(1, "x")
	if !ok || b.DrawWidth(2) != b.Width+2 {
		t.Errorf("BarAt(1, x) = %+v, %v; want seam overlap of 2", b, ok)
	}
}

func TestBuildAbsentCategoryHasNoInteraction(t *testing.T) {
	records := []Record{
		record("A", 1, 1, entry("x", 2, 1)),
		record("B", 2, 2, entry("y", 4, 2)),
	}

	l, err := Build(records, Viewport{Width: 400}, Options{})
	if err != nil {
		t.Fatal(err)
	}

	b, ok := l.BarAt(0, "y")
	if !ok {
		t.Fatal("BarAt(0, y) not found")
	}
	if b.Tooltip != nil || b.Selection != nil {
		t.Errorf("absent bar carries interaction: %+v", b)
	}
}

func TestBuildRows(t *testing.T) {
	records := []Record{
		record("A very long agent name", 3, 1, entry("x", 1, 1)),
		record("Bo", 1, 2, entry("x", 1, 1)),
	}

	l, err := Build(records, Viewport{Width: 600}, Options{})
	if err != nil {
		t.Fatal(err)
	}

	if l.Rows[0].Name != "Bo" || l.Rows[0].Truncated {
		t.Errorf("Rows[0] = %+v, want untruncated Bo", l.Rows[0])
	}
	long := l.Rows[1]
	if !long.Truncated || long.Label != "A very lon..." {
		t.Errorf("Rows[1].Label = %q, want truncated", long.Label)
	}
	if long.Tooltip.Title != "A very long agent name" || long.Tooltip.Label != "Total" {
		t.Errorf("Rows[1].Tooltip = %+v", long.Tooltip)
	}
	if math.Abs(long.Center-long.Y-l.Bandwidth/2) > 1e-9 {
		t.Errorf("Center = %v, want Y + bandwidth/2", long.Center)
	}
	if _, ok := l.RowByName("Bo"); !ok {
		t.Error("RowByName(Bo) not found")
	}
}

func TestBuildErrors(t *testing.T) {
	good := []Record{record("A", 1, 1, entry("x", 1, 1))}

	tests := []struct {
		name    string
		records []Record
		vp      Viewport
		opts    Options
		code    errors.Code
	}{
		{"zero width", good, Viewport{}, Options{}, errors.ErrCodeInvalidViewport},
		{"missing series", []Record{{Name: "A"}}, Viewport{Width: 100}, Options{}, errors.ErrCodeInvalidSeries},
		{"bad palette", good, Viewport{Width: 100}, Options{Palette: []string{"nope"}}, errors.ErrCodeInvalidPalette},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Build(tt.records, tt.vp, tt.opts)
			if !errors.Is(err, tt.code) {
				t.Errorf("Build() error = %v, want %s", err, tt.code)
			}
		})
	}
}

func TestBuildEmpty(t *testing.T) {
	l, err := Build([]Record{}, Viewport{Width: 300}, Options{})
	if err != nil {
		t.Fatal(err)
	}
	if l.Height != 0 || len(l.Bars) != 0 || len(l.Rows) != 0 {
		t.Errorf("empty layout = %+v", l)
	}
}

func TestLayoutJSON(t *testing.T) {
	l, err := Build([]Record{record("A", 1, 7, entry("x", 1, 3))}, Viewport{Width: 300}, Options{Theme: "primary"})
	if err != nil {
		t.Fatal(err)
	}

	data, err := json.Marshal(l)
	if err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{`"theme":"primary"`, `"agentIds":[3]`, `"callTypeIds":[7]`, `"agentIds":[]`} {
		if !strings.Contains(string(data), want) {
			t.Errorf("layout JSON missing %s", want)
		}
	}
}
