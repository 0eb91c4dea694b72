package chart

import (
	"encoding/json"
	"strings"
)

// Entry is one named sub-value of a record; it becomes one stacked segment.
type Entry struct {
	Name  string `json:"name"`
	Value Value  `json:"value"`
	ID    ID     `json:"id"`
}

// UnmarshalJSON decodes an entry, leaving Value as NaN when the field is absent.
func (e *Entry) UnmarshalJSON(b []byte) error {
	type entry Entry
	aux := entry{Value: NaN()}
	if err := json.Unmarshal(b, &aux); err != nil {
		return err
	}
	*e = Entry(aux)
	return nil
}

// Record is one input row, drawn as one horizontal bar.
//
// Series must be non-nil; an empty slice is a bar with no segments.
type Record struct {
	Name   string  `json:"name"`
	Series []Entry `json:"series"`
	Value  Value   `json:"value"`
	Total  *Value  `json:"total,omitempty"`
	ID     ID      `json:"id"`
}

// UnmarshalJSON decodes a record, leaving Value as NaN when the field is absent.
func (r *Record) UnmarshalJSON(b []byte) error {
	type record Record
	aux := record{Value: NaN()}
	if err := json.Unmarshal(b, &aux); err != nil {
		return err
	}
	*r = Record(aux)
	return nil
}

// Row is a normalized record: the original record plus an explicit mapping
// from category key to value.
type Row struct {
	Record
	Values map[string]Value `json:"values"`
}

// Category returns the row's value for a category key. Absent categories
// report false.
func (r Row) Category(key string) (Value, bool) {
	v, ok := r.Values[key]
	return v, ok
}

// Entry returns the series entry that supplied the value for key. When two
// entries share a lower-cased name the later one wins, matching [Normalize].
func (r Row) Entry(key string) (Entry, bool) {
	for i := len(r.Series) - 1; i >= 0; i-- {
		if strings.ToLower(r.Series[i].Name) == key {
			return r.Series[i], true
		}
	}
	return Entry{}, false
}
