// Package chart computes horizontal stacked bar chart geometry from
// categorical records.
//
// # Overview
//
// A chart is built by a pure pipeline that is recomputed from scratch for
// every render pass:
//
//	rows, keys, err := chart.Normalize(records)  // explicit category maps
//	stacked := chart.Stack(rows, keys)           // sorted rows + offsets
//	scales := chart.ComputeScales(stacked, vp, opts)
//
// [Build] runs all three steps and returns a [Layout]: bars, axis labels,
// ticks and colors in pixel coordinates, ready for a sink to draw.
//
// # Records and Categories
//
// A [Record] is one horizontal bar (for example one agent). Its Series
// entries are the stacked segments (for example call types). Categories are
// never declared: they are the lower-cased entry names, discovered in
// first-seen order across records. That order fixes both the stacking order
// inside every bar and the color assignment.
//
// The fields series, name, total, id and value are reserved and never
// become categories.
//
// # Malformed Input
//
// A record without a series list, or with an unnamed entry, rejects the
// whole render with [errors.ErrCodeInvalidSeries]. Malformed values never
// fail: non-numeric values decode to NaN and their segments collapse to a
// zero-width (0, 0) tuple.
//
// # Scales
//
// [Linear] maps stacked offsets to horizontal pixels, [Band] maps record
// names to vertical bands. Both follow the conventions of the common
// browser charting libraries so that geometry computed here matches what a
// browser widget would draw for the same input.
//
// [errors.ErrCodeInvalidSeries]: github.com/matzehuels/stackbar/pkg/errors
package chart
