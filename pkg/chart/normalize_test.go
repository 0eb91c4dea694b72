package chart

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/matzehuels/stackbar/pkg/errors"
)

func entry(name string, v float64, id int64) Entry {
	return Entry{Name: name, Value: Value(v), ID: NumericID(id)}
}

func record(name string, v float64, id int64, series ...Entry) Record {
	if series == nil {
		series = []Entry{}
	}
	return Record{Name: name, Value: Value(v), ID: NumericID(id), Series: series}
}

func TestNormalizeValues(t *testing.T) {
	records := []Record{
		record("A", 5, 1, entry("X", 3, 11), entry("Y", 2, 12)),
		record("B", 1, 2, entry("y", 1, 12)),
	}

	rows, keys, err := Normalize(records)
	if err != nil {
		t.Fatalf("Normalize() error: %v", err)
	}

	if diff := cmp.Diff([]string{"x", "y"}, keys); diff != "" {
		t.Errorf("keys mismatch (-want +got):\n%s", diff)
	}

	for i, row := range rows {
		for _, e := range records[i].Series {
			got, ok := row.Category(CategoryKey(e.Name))
			if !ok || got != e.Value {
				t.Errorf("row %d category %q = %v, %v; want %v", i, e.Name, got, ok, e.Value)
			}
		}
		if row.Name != records[i].Name || row.ID != records[i].ID {
			t.Errorf("row %d lost original fields: %+v", i, row.Record)
		}
	}
}

func TestNormalizeDiscoveryOrder(t *testing.T) {
	records := []Record{
		record("A", 1, 1, entry("Inbound", 1, 1), entry("Outbound", 1, 2)),
		record("B", 1, 2, entry("Transfer", 1, 3), entry("inbound", 1, 1)),
		record("C", 1, 3, entry("Callback", 1, 4), entry("OUTBOUND", 1, 2)),
	}

	for range 3 {
		_, keys, err := Normalize(records)
		if err != nil {
			t.Fatal(err)
		}
		want := []string{"inbound", "outbound", "transfer", "callback"}
		if diff := cmp.Diff(want, keys); diff != "" {
			t.Errorf("keys mismatch (-want +got):\n%s", diff)
		}
	}
}

func TestNormalizeReservedNames(t *testing.T) {
	records := []Record{
		record("A", 1, 1, entry("Name", 1, 1), entry("VALUE", 2, 2), entry("id", 3, 3),
			entry("Total", 4, 4), entry("series", 5, 5), entry("real", 6, 6)),
	}

	rows, keys, err := Normalize(records)
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff([]string{"real"}, keys); diff != "" {
		t.Errorf("keys mismatch (-want +got):\n%s", diff)
	}
	if len(rows[0].Values) != 1 {
		t.Errorf("Values = %v, want only the real category", rows[0].Values)
	}
}

func TestNormalizeDuplicateEntryLastWins(t *testing.T) {
	records := []Record{record("A", 1, 1, entry("X", 1, 1), entry("x", 7, 2))}

	rows, keys, err := Normalize(records)
	if err != nil {
		t.Fatal(err)
	}
	if len(keys) != 1 {
		t.Fatalf("keys = %v, want one key", keys)
	}
	if v, _ := rows[0].Category("x"); v != 7 {
		t.Errorf("x = %v, want 7", v)
	}
	if e, _ := rows[0].Entry("x"); e.ID != NumericID(2) {
		t.Errorf("Entry(x).ID = %v, want 2", e.ID)
	}
}

func TestNormalizeMalformedSeries(t *testing.T) {
	tests := []struct {
		name    string
		records []Record
	}{
		{"missing series", []Record{record("A", 1, 1), {Name: "B", Value: 1}}},
		{"unnamed entry", []Record{record("A", 1, 1, entry("", 1, 1))}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rows, keys, err := Normalize(tt.records)
			if !errors.Is(err, errors.ErrCodeInvalidSeries) {
				t.Fatalf("Normalize() error = %v, want %s", err, errors.ErrCodeInvalidSeries)
			}
			if rows != nil || keys != nil {
				t.Errorf("Normalize() returned partial result: %v %v", rows, keys)
			}
		})
	}
}

func TestNormalizeEmptySeries(t *testing.T) {
	rows, keys, err := Normalize([]Record{record("A", 1, 1)})
	if err != nil {
		t.Fatalf("Normalize() error: %v", err)
	}
	if len(rows) != 1 || len(keys) != 0 {
		t.Errorf("Normalize() = %d rows, %v keys; want 1 row, no keys", len(rows), keys)
	}
}
