// Package render turns merged networks and score reports into files.
//
// # Format Conversion
//
// The [ToPDF] and [ToPNG] functions convert any SVG to other formats using
// the external rsvg-convert tool (from librsvg):
//
//	svg, err := nodelink.RenderSVG(ctx, dot)
//	pdf, err := render.ToPDF(ctx, svg)
//	png, err := render.ToPNG(ctx, svg, 2.0)  // 2x scale
//
// # Subpackages
//
//   - [nodelink]: merged networks as Graphviz diagrams, node fill by color,
//     link color by relation, one cluster per annotated row range
//   - [report]: score reports as JSON, YAML, TOML or a terminal table
//
// [nodelink]: github.com/matzehuels/netalign/pkg/render/nodelink
// [report]: github.com/matzehuels/netalign/pkg/render/report
package render
