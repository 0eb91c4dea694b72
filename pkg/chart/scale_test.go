package chart

import (
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
)

var approx = cmpopts.EquateApprox(0, 1e-9)

func TestLinearMap(t *testing.T) {
	s := NewLinear(0, 5, 60, 885)

	tests := []struct {
		in, want float64
	}{
		{0, 60},
		{5, 885},
		{2.5, 472.5},
		{10, 1710},
	}
	for _, tt := range tests {
		if got := s.Map(tt.in); math.Abs(got-tt.want) > 1e-9 {
			t.Errorf("Map(%v) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestLinearDegenerateDomain(t *testing.T) {
	s := NewLinear(0, 0, 60, 100)
	for _, x := range []float64{0, 3, -1} {
		if got := s.Map(x); got != 80 {
			t.Errorf("Map(%v) = %v, want midpoint 80", x, got)
		}
	}
}

func TestBandReversedRange(t *testing.T) {
	b := NewBand([]string{"A", "B", "C"}, 66, 0, 0.2)

	if got, want := b.Step(), 20.625; math.Abs(got-want) > 1e-9 {
		t.Errorf("Step() = %v, want %v", got, want)
	}
	if got, want := b.Bandwidth(), 16.5; math.Abs(got-want) > 1e-9 {
		t.Errorf("Bandwidth() = %v, want %v", got, want)
	}

	want := map[string]float64{"A": 45.375, "B": 24.75, "C": 4.125}
	for name, w := range want {
		got, ok := b.Map(name)
		if !ok || math.Abs(got-w) > 1e-9 {
			t.Errorf("Map(%q) = %v, %v; want %v", name, got, ok, w)
		}
	}
	if _, ok := b.Map("missing"); ok {
		t.Error("Map(missing) reported ok")
	}
}

func TestBandForwardRange(t *testing.T) {
	b := NewBand([]string{"A", "B"}, 0, 100, 0)

	got := []float64{}
	for _, n := range b.Domain() {
		y, _ := b.Map(n)
		got = append(got, y)
	}
	if diff := cmp.Diff([]float64{0, 50}, got, approx); diff != "" {
		t.Errorf("positions mismatch (-want +got):\n%s", diff)
	}
	if c, _ := b.Center("B"); math.Abs(c-75) > 1e-9 {
		t.Errorf("Center(B) = %v, want 75", c)
	}
}

func TestBandDuplicateNames(t *testing.T) {
	b := NewBand([]string{"A", "B", "A"}, 0, 100, 0)
	if diff := cmp.Diff([]string{"A", "B"}, b.Domain()); diff != "" {
		t.Errorf("Domain mismatch (-want +got):\n%s", diff)
	}
}

func TestComputeScales(t *testing.T) {
	rows, keys := mustNormalize(t, []Record{
		record("A", 5, 1, entry("X", 3, 1), entry("Y", 2, 2)),
		record("B", 1, 2, entry("X", 1, 1)),
	})
	st := Stack(rows, keys)

	sc := ComputeScales(st, Viewport{Width: 960}, ScaleOptions{})

	d0, d1 := sc.X.Domain()
	if d0 != 0 || d1 != st.MaxEnd() {
		t.Errorf("X domain = [%v, %v], want [0, %v]", d0, d1, st.MaxEnd())
	}
	if got := sc.X.Map(0); got != DefaultMargins.Left {
		t.Errorf("X(0) = %v, want left margin %v", got, DefaultMargins.Left)
	}
	if _, r1 := sc.X.Range(); r1 != 960-60-15 {
		t.Errorf("X range end = %v, want %v", r1, 960-60-15)
	}
	if sc.Height != 64 {
		t.Errorf("Height = %v, want 64", sc.Height)
	}
	if diff := cmp.Diff([]string{"B", "A"}, sc.Y.Domain()); diff != "" {
		t.Errorf("Y domain mismatch (-want +got):\n%s", diff)
	}
	if r0, r1 := sc.Y.Range(); r0 != 34 || r1 != 0 {
		t.Errorf("Y range = [%v, %v], want [34, 0]", r0, r1)
	}
}

func TestComputeScalesCustomOptions(t *testing.T) {
	rows, keys := mustNormalize(t, []Record{record("A", 1, 1, entry("x", 4, 1))})
	st := Stack(rows, keys)

	sc := ComputeScales(st, Viewport{Width: 500}, ScaleOptions{
		Margins:   Margins{Top: 10, Left: 20, Right: 20},
		BarHeight: 50,
	})

	if sc.Height != 50 {
		t.Errorf("Height = %v, want 50", sc.Height)
	}
	if r0, r1 := sc.X.Range(); r0 != 20 || r1 != 460 {
		t.Errorf("X range = [%v, %v], want [20, 460]", r0, r1)
	}
}
