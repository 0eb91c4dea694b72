// Package render turns chart layouts into output artifacts.
//
// # Overview
//
// Layout math lives in [chart]; this package and its subpackages only draw:
//
//   - Format conversion from SVG to PDF and PNG (this package)
//   - File formats: SVG, JSON, PNG, PDF (in the [sink] subpackage)
//   - Terminal bars for previews (in the [term] subpackage)
//
// # Format Conversion
//
// [ToPDF] and [ToPNG] shell out to rsvg-convert from librsvg. When the tool is
// missing they return an UNSUPPORTED error with install hints; [Available]
// lets callers check up front.
//
//	svg := sink.RenderSVG(layout)
//	pdf, err := render.ToPDF(svg)
//	png, err := render.ToPNG(svg, 2.0)
//
// [chart]: github.com/matzehuels/stackbar/pkg/chart
// [sink]: github.com/matzehuels/stackbar/pkg/render/sink
// [term]: github.com/matzehuels/stackbar/pkg/render/term
package render
