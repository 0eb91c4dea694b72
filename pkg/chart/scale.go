package chart

import "math"

// Linear is a continuous scale mapping a numeric domain onto a pixel range.
type Linear struct {
	d0, d1 float64
	r0, r1 float64
}

// NewLinear returns a linear scale from [d0, d1] to [r0, r1].
func NewLinear(d0, d1, r0, r1 float64) Linear {
	return Linear{d0: d0, d1: d1, r0: r0, r1: r1}
}

// Map returns the range position of x. A degenerate domain maps every
// input to the middle of the range.
func (s Linear) Map(x float64) float64 {
	span := s.d1 - s.d0
	var t float64
	switch {
	case math.IsNaN(span):
		return math.NaN()
	case span == 0:
		t = 0.5
	default:
		t = (x - s.d0) / span
	}
	return s.r0*(1-t) + s.r1*t
}

// Domain returns the input interval.
func (s Linear) Domain() (float64, float64) { return s.d0, s.d1 }

// Range returns the output interval.
func (s Linear) Range() (float64, float64) { return s.r0, s.r1 }

// Ticks returns roughly count evenly spaced, human-friendly values inside
// the domain.
func (s Linear) Ticks(count int) []float64 {
	return Ticks(s.d0, s.d1, count)
}

// Band maps discrete names onto evenly spaced vertical bands.
type Band struct {
	domain    []string
	index     map[string]int
	positions []float64
	step      float64
	bandwidth float64
	r0, r1    float64
}

// NewBand returns a band scale over domain spanning [r0, r1]. Padding is
// used as both the inner and the outer padding, with bands centered in the
// range. When r1 < r0 the first name gets the band closest to r0.
// Duplicate names keep their first position.
func NewBand(domain []string, r0, r1, padding float64) Band {
	b := Band{index: make(map[string]int, len(domain)), r0: r0, r1: r1}
	for _, name := range domain {
		if _, ok := b.index[name]; ok {
			continue
		}
		b.index[name] = len(b.domain)
		b.domain = append(b.domain, name)
	}

	paddingInner := math.Min(1, padding)
	paddingOuter := padding
	const align = 0.5

	n := float64(len(b.domain))
	reverse := r1 < r0
	start, stop := r0, r1
	if reverse {
		start, stop = r1, r0
	}

	b.step = (stop - start) / math.Max(1, n-paddingInner+paddingOuter*2)
	start += (stop - start - b.step*(n-paddingInner)) * align
	b.bandwidth = b.step * (1 - paddingInner)

	b.positions = make([]float64, len(b.domain))
	for i := range b.positions {
		b.positions[i] = start + b.step*float64(i)
	}
	if reverse {
		for i, j := 0, len(b.positions)-1; i < j; i, j = i+1, j-1 {
			b.positions[i], b.positions[j] = b.positions[j], b.positions[i]
		}
	}
	return b
}

// Map returns the start of the band for name.
func (b Band) Map(name string) (float64, bool) {
	i, ok := b.index[name]
	if !ok {
		return 0, false
	}
	return b.positions[i], true
}

// Center returns the middle of the band for name.
func (b Band) Center(name string) (float64, bool) {
	y, ok := b.Map(name)
	return y + b.bandwidth/2, ok
}

// Bandwidth returns the height of one band.
func (b Band) Bandwidth() float64 { return b.bandwidth }

// Step returns the distance between the starts of adjacent bands.
func (b Band) Step() float64 { return b.step }

// Domain returns the distinct names in band order.
func (b Band) Domain() []string { return b.domain }

// Range returns the output interval.
func (b Band) Range() (float64, float64) { return b.r0, b.r1 }
