package chart

import (
	"strings"

	"github.com/matzehuels/stackbar/pkg/errors"
)

var reserved = map[string]bool{
	"series": true,
	"name":   true,
	"total":  true,
	"id":     true,
	"value":  true,
}

// IsReserved reports whether key names a record field and therefore can
// never be a category.
func IsReserved(key string) bool {
	return reserved[key]
}

// CategoryKey returns the category key for a series entry name.
func CategoryKey(name string) string {
	return strings.ToLower(name)
}

// Normalize reshapes records into rows with explicit category maps and
// returns the category keys in first-seen order.
//
// A record whose Series is nil, or that contains an entry without a name,
// fails the whole call with [errors.ErrCodeInvalidSeries]. No partial result
// is returned.
func Normalize(records []Record) ([]Row, []string, error) {
	rows := make([]Row, 0, len(records))
	var keys []string
	seen := make(map[string]bool)

	for i, rec := range records {
		if rec.Series == nil {
			return nil, nil, errors.New(errors.ErrCodeInvalidSeries,
				"record %d (%q): series is missing", i, rec.Name)
		}

		values := make(map[string]Value, len(rec.Series))
		for j, e := range rec.Series {
			if e.Name == "" {
				return nil, nil, errors.New(errors.ErrCodeInvalidSeries,
					"record %d (%q): series entry %d has no name", i, rec.Name, j)
			}
			key := CategoryKey(e.Name)
			if IsReserved(key) {
				continue
			}
			values[key] = e.Value
			if !seen[key] {
				seen[key] = true
				keys = append(keys, key)
			}
		}

		rows = append(rows, Row{Record: rec, Values: values})
	}

	return rows, keys, nil
}
