package chart

import (
	"cmp"
	"slices"
)

// Segment is one stacked (start, end) tuple for a row and category.
type Segment struct {
	Start float64 `json:"start"`
	End   float64 `json:"end"`
	// Row indexes Stacked.Rows.
	Row int    `json:"row"`
	Key string `json:"key"`
	// Present is false when the row has no entry for Key.
	Present bool `json:"present"`
}

// Width returns End - Start.
func (s Segment) Width() float64 { return s.End - s.Start }

// Series holds one category's segments, one per row in sorted order.
type Series struct {
	Key      string    `json:"key"`
	Index    int       `json:"index"`
	Segments []Segment `json:"segments"`
}

// Stacked is the output of [Stack].
type Stacked struct {
	// Rows are sorted ascending by Value.
	Rows   []Row    `json:"rows"`
	Series []Series `json:"series"`
}

// Keys returns the category keys in stacking order.
func (s Stacked) Keys() []string {
	keys := make([]string, len(s.Series))
	for i, ser := range s.Series {
		keys[i] = ser.Key
	}
	return keys
}

// Names returns the row names in sorted order.
func (s Stacked) Names() []string {
	names := make([]string, len(s.Rows))
	for i, r := range s.Rows {
		names[i] = r.Name
	}
	return names
}

// MaxEnd returns the largest End across all segments, or 0 when there are none.
func (s Stacked) MaxEnd() float64 {
	var top float64
	found := false
	for _, ser := range s.Series {
		for _, seg := range ser.Segments {
			if !found || seg.End > top {
				top = seg.End
				found = true
			}
		}
	}
	return top
}

// SortRows returns a copy of rows stably sorted ascending by Value.
// NaN values order before every number.
func SortRows(rows []Row) []Row {
	sorted := slices.Clone(rows)
	slices.SortStableFunc(sorted, func(a, b Row) int {
		return cmp.Compare(float64(a.Value), float64(b.Value))
	})
	return sorted
}

// Stack sorts rows and stacks every category in keys order.
//
// For each row a running offset starts at 0; each category spans
// [offset, offset+value] and advances the offset. Absent categories
// contribute 0. A tuple with a non-finite bound collapses to (0, 0) and
// leaves the offset unchanged.
func Stack(rows []Row, keys []string) Stacked {
	sorted := SortRows(rows)

	series := make([]Series, len(keys))
	for k, key := range keys {
		series[k] = Series{Key: key, Index: k, Segments: make([]Segment, len(sorted))}
	}

	for i, row := range sorted {
		offset := 0.0
		for k, key := range keys {
			v, ok := row.Values[key]
			value := 0.0
			if ok {
				value = float64(v)
			}

			start, end := offset, offset+value
			if isFinite(start) && isFinite(end) {
				offset = end
			} else {
				start, end = 0, 0
			}

			series[k].Segments[i] = Segment{Start: start, End: end, Row: i, Key: key, Present: ok}
		}
	}

	return Stacked{Rows: sorted, Series: series}
}
