// Package sink writes a computed [chart.Layout] in its output formats.
//
// # Overview
//
//   - SVG: standalone document with grow transitions, tooltips and click
//     selection events
//   - JSON: the layout plus renderer timing, for clients that draw themselves
//   - PNG and PDF: static SVG converted by rsvg-convert
//
// # SVG Output
//
// [RenderSVG] mirrors the interactive chart: a top axis with SI tick labels,
// one group per category filled with its palette color, and row labels at the
// left margin. Bars grow from zero over 500ms unless [WithStatic] is given.
// Hovering shows a tooltip offset from the pointer; clicking dispatches a
// "barSegmentClick" CustomEvent whose detail is the selection payload and
// posts the same payload to window.parent when embedded in a frame.
//
//	svg := sink.RenderSVG(layout, sink.WithTitle("Calls by agent"))
//
// # Raster Output
//
// [RenderPNG] and [RenderPDF] always render statically, since converters do
// not run animations or scripts.
//
//	png, err := sink.RenderPNG(layout, sink.WithScale(3))
package sink
