package nodelink

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/matzehuels/netalign/pkg/layout"
	"github.com/matzehuels/netalign/pkg/merge"
)

// Options configures diagram generation.
type Options struct {
	// Clusters boxes every annotated row range of the layout.
	Clusters bool
	// Labels shows node names. Without it nodes are unlabelled dots.
	Labels bool
}

var nodeFill = map[merge.Color]string{
	merge.Purple: "#9b59b6",
	merge.Blue:   "#3498db",
	merge.Red:    "#e74c3c",
}

var linkColor = [merge.NumRelations]string{
	merge.Covered:         "#2c3e50",
	merge.InducedG1:       "#5dade2",
	merge.HalfOrphanG1:    "#2e86c1",
	merge.FullOrphanG1:    "#1b4f72",
	merge.InducedG2:       "#f1948a",
	merge.HalfUnalignedG2: "#cb4335",
	merge.FullUnalignedG2: "#78281f",
}

// ToDOT converts a merged network to an undirected Graphviz graph. Nodes
// are declared in the order of lay, or sorted when lay is nil.
func ToDOT(res *merge.Result, lay *layout.Layout, opts Options) string {
	var buf bytes.Buffer
	buf.WriteString("graph G {\n")
	buf.WriteString("  layout=neato;\n")
	buf.WriteString("  overlap=false;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	if opts.Labels {
		buf.WriteString("  node [shape=ellipse, style=filled, fontsize=12, fontcolor=white];\n")
	} else {
		buf.WriteString("  node [shape=circle, style=filled, label=\"\", width=0.2];\n")
	}
	buf.WriteString("  edge [penwidth=1.5];\n")
	buf.WriteString("\n")

	nodes := res.Nodes()
	var annotations []layout.Annotation
	if lay != nil {
		nodes = lay.Nodes
		if opts.Clusters {
			annotations = lay.Annotations
		}
	}

	inCluster := make([]bool, len(nodes))
	for i, a := range annotations {
		if a.Start < 0 || a.End >= len(nodes) || a.Start > a.End {
			continue
		}
		fmt.Fprintf(&buf, "  subgraph \"cluster_%d\" {\n", i)
		fmt.Fprintf(&buf, "    label=%q;\n", a.Name)
		fmt.Fprintf(&buf, "    color=%q;\n", strings.ToLower(a.Color))
		for row := a.Start; row <= a.End; row++ {
			if inCluster[row] {
				continue
			}
			inCluster[row] = true
			writeNode(&buf, "    ", nodes[row], res.Colors[nodes[row]])
		}
		buf.WriteString("  }\n")
	}
	for row, n := range nodes {
		if !inCluster[row] {
			writeNode(&buf, "  ", n, res.Colors[n])
		}
	}

	buf.WriteString("\n")
	for _, l := range res.Reduced() {
		fmt.Fprintf(&buf, "  %q -- %q [color=%q, tooltip=%q];\n",
			l.Src.String(), l.Trg.String(), linkColor[l.Relation], l.Relation.Tag())
	}

	buf.WriteString("}\n")
	return buf.String()
}

func writeNode(buf *bytes.Buffer, indent string, n merge.NodeID, c merge.Color) {
	id := n.String()
	fmt.Fprintf(buf, "%s%q [fillcolor=%q, tooltip=%q];\n", indent, id, nodeFill[c], id+" ("+c.String()+")")
}

// RenderSVG renders a DOT graph to SVG using Graphviz.
func RenderSVG(ctx context.Context, dot string) ([]byte, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, graphviz.SVG, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return normalizeViewBox(buf.Bytes()), nil
}

var (
	svgTagRe  = regexp.MustCompile(`<svg[^>]*>`)
	viewBoxRe = regexp.MustCompile(`viewBox="([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)"`)
)

// normalizeViewBox replaces the Graphviz svg tag, which carries pt units,
// with one sized in pixels from the view box.
func normalizeViewBox(svg []byte) []byte {
	match := viewBoxRe.FindSubmatch(svg)
	if match == nil {
		return svg
	}

	w, _ := strconv.ParseFloat(string(match[3]), 64)
	h, _ := strconv.ParseFloat(string(match[4]), 64)
	if w == 0 || h == 0 {
		return svg
	}

	tag := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`,
		w, h, w, h)
	return svgTagRe.ReplaceAll(svg, []byte(tag))
}
