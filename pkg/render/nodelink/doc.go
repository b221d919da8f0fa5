// Package nodelink draws merged networks as node-link diagrams.
//
// # Usage
//
// Convert a merged network to DOT, optionally in the row order of a layout,
// then render it:
//
//	dot := nodelink.ToDOT(res, lay, nodelink.Options{Clusters: true})
//	svg, err := nodelink.RenderSVG(ctx, dot)
//
// # Encoding
//
// Nodes are filled by color: purple for aligned pairs, blue for unaligned
// G1 nodes, red for unmatched G2 nodes. Links take the color of their
// relation: black for covered links, blues for G1-only links and reds for
// G2-only links, darker the more orphaned the link is. Shadow links are
// never drawn.
//
// With [Options.Clusters], every annotated row range of the layout becomes a
// subgraph cluster labelled and outlined with the annotation's color, so
// node groups and incorrect cycles show up as boxes.
//
// # Dependencies
//
// This package uses [github.com/goccy/go-graphviz] for in-process SVG
// rendering. PDF and PNG conversion requires librsvg (rsvg-convert).
package nodelink
