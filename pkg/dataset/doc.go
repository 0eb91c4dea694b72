// Package dataset loads chart records from JSON, YAML and TOML documents.
//
// # Document Shapes
//
// A document is either a bare list of records:
//
//	[
//	  {"name": "Alice", "value": 5, "id": 1,
//	   "series": [{"name": "Inbound", "value": 3, "id": 10},
//	              {"name": "Outbound", "value": 2, "id": 11}]}
//	]
//
// or an object that also carries the host's color identifier:
//
//	{"theme": "primary", "records": [...]}
//
// YAML and TOML documents use the same field names. TOML has no top-level
// arrays, so TOML documents always use the object shape with [[records]]
// tables.
//
// # Value Coercion
//
// YAML and TOML documents are decoded generically and re-encoded as JSON, so
// every format goes through the same loose numeric coercion of
// [chart.Value]: numeric strings parse, null is 0, and anything else
// non-numeric becomes NaN and collapses to a zero-width segment.
package dataset
