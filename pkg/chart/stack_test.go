package chart

import (
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func mustNormalize(t *testing.T, records []Record) ([]Row, []string) {
	t.Helper()
	rows, keys, err := Normalize(records)
	if err != nil {
		t.Fatalf("Normalize() error: %v", err)
	}
	return rows, keys
}

func TestStackExample(t *testing.T) {
	rows, keys := mustNormalize(t, []Record{
		record("A", 5, 1, entry("X", 3, 1), entry("Y", 2, 2)),
	})

	st := Stack(rows, keys)

	want := []Series{
		{Key: "x", Index: 0, Segments: []Segment{{Start: 0, End: 3, Row: 0, Key: "x", Present: true}}},
		{Key: "y", Index: 1, Segments: []Segment{{Start: 3, End: 5, Row: 0, Key: "y", Present: true}}},
	}
	if diff := cmp.Diff(want, st.Series); diff != "" {
		t.Errorf("Series mismatch (-want +got):\n%s", diff)
	}
	if got := st.MaxEnd(); got != 5 {
		t.Errorf("MaxEnd() = %v, want 5", got)
	}
}

func TestStackContinuity(t *testing.T) {
	rows, keys := mustNormalize(t, []Record{
		record("A", 3, 1, entry("a", 1, 1), entry("b", 2, 2), entry("c", 4, 3)),
		record("B", 1, 2, entry("c", 5, 3), entry("a", 0.5, 1)),
		record("C", 2, 3, entry("b", 1.5, 2)),
	})

	st := Stack(rows, keys)

	for i, row := range st.Rows {
		var sum float64
		for k := range st.Series {
			seg := st.Series[k].Segments[i]
			if k+1 < len(st.Series) {
				next := st.Series[k+1].Segments[i]
				if seg.End != next.Start {
					t.Errorf("%s: %s.End = %v, %s.Start = %v", row.Name, seg.Key, seg.End, next.Key, next.Start)
				}
			}
			if v, ok := row.Category(seg.Key); ok {
				sum += float64(v)
			}
		}
		last := st.Series[len(st.Series)-1].Segments[i]
		if last.End != sum {
			t.Errorf("%s: last End = %v, want sum %v", row.Name, last.End, sum)
		}
	}
}

func TestStackAbsentCategory(t *testing.T) {
	rows, keys := mustNormalize(t, []Record{
		record("A", 1, 1, entry("x", 2, 1), entry("y", 3, 2)),
		record("B", 2, 2, entry("y", 4, 2)),
	})

	st := Stack(rows, keys)

	seg := st.Series[0].Segments[1]
	if seg.Present || seg.Start != 0 || seg.End != 0 {
		t.Errorf("absent x for B = %+v, want zero-width and not present", seg)
	}
	seg = st.Series[1].Segments[1]
	if seg.Start != 0 || seg.End != 4 {
		t.Errorf("y for B = (%v, %v), want (0, 4)", seg.Start, seg.End)
	}
}

func TestStackNaNCollapse(t *testing.T) {
	rows, keys := mustNormalize(t, []Record{
		record("A", 1, 1, entry("x", 3, 1), Entry{Name: "y", Value: NaN(), ID: NumericID(2)}, entry("z", 2, 3)),
	})

	st := Stack(rows, keys)

	got := [][2]float64{}
	for _, ser := range st.Series {
		got = append(got, [2]float64{ser.Segments[0].Start, ser.Segments[0].End})
	}
	want := [][2]float64{{0, 3}, {0, 0}, {3, 5}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("segments mismatch (-want +got):\n%s", diff)
	}
	for _, ser := range st.Series {
		for _, seg := range ser.Segments {
			if math.IsNaN(seg.Start) || math.IsNaN(seg.End) {
				t.Errorf("segment %s has NaN bound", seg.Key)
			}
		}
	}
}

func TestStackInfiniteCollapse(t *testing.T) {
	rows, keys := mustNormalize(t, []Record{
		record("A", 1, 1, Entry{Name: "x", Value: Value(math.Inf(1))}, entry("y", 2, 2)),
	})

	st := Stack(rows, keys)

	if s := st.Series[0].Segments[0]; s.Start != 0 || s.End != 0 {
		t.Errorf("infinite x = (%v, %v), want (0, 0)", s.Start, s.End)
	}
	if s := st.Series[1].Segments[0]; s.Start != 0 || s.End != 2 {
		t.Errorf("y = (%v, %v), want (0, 2)", s.Start, s.End)
	}
}

func TestSortRowsStable(t *testing.T) {
	rows, _ := mustNormalize(t, []Record{
		record("first", 2, 1),
		record("low", 1, 2),
		record("second", 2, 3),
		{Name: "nan", Value: NaN(), Series: []Entry{}},
		record("third", 2, 4),
	})

	sorted := SortRows(rows)

	var names []string
	for _, r := range sorted {
		names = append(names, r.Name)
	}
	want := []string{"nan", "low", "first", "second", "third"}
	if diff := cmp.Diff(want, names); diff != "" {
		t.Errorf("order mismatch (-want +got):\n%s", diff)
	}
	if rows[0].Name != "first" {
		t.Error("SortRows modified its input")
	}
}

func TestStackEmpty(t *testing.T) {
	st := Stack(nil, nil)
	if len(st.Rows) != 0 || len(st.Series) != 0 {
		t.Errorf("Stack(nil) = %+v", st)
	}
	if st.MaxEnd() != 0 {
		t.Errorf("MaxEnd() = %v, want 0", st.MaxEnd())
	}
}
