package render

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/kafei-ai/treeflow/pkg/graph"
)

// ToDOT converts a layout to Graphviz DOT source.
//
// Every node carries a pinned pos attribute (in points, y pointing up) so
// that neato reproduces the computed layout instead of arranging the graph
// itself. Synthetic ancestors are drawn dashed; closed nodes with children
// show their hidden child count.
func ToDOT(l graph.Layout, opts Options) string {
	opts.SetDefaults()

	var buf bytes.Buffer
	buf.WriteString("digraph G {\n")
	buf.WriteString("  layout=neato;\n")
	buf.WriteString("  inputscale=72;\n")
	buf.WriteString("  notranslate=false;\n")
	buf.WriteString("  splines=true;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	if opts.Title != "" {
		fmt.Fprintf(&buf, "  label=%q;\n  labelloc=t;\n", opts.Title)
	}
	fmt.Fprintf(&buf, "  node [shape=box, style=\"rounded,filled\", fixedsize=true, width=%s, height=%s, fontsize=18, fontcolor=white];\n",
		inches(l.NodeWidth), inches(opts.NodeHeight))
	buf.WriteString("  edge [arrowsize=0.6, color=\"#94a3b8\"];\n")
	buf.WriteString("\n")

	for _, n := range l.Graph.Nodes {
		fmt.Fprintf(&buf, "  %q [%s];\n", n.ID, strings.Join(dotAttrs(n, opts), ", "))
	}

	buf.WriteString("\n")
	for _, e := range l.Graph.Edges {
		fmt.Fprintf(&buf, "  %q -> %q [id=%q];\n", e.Source, e.Target, e.ID)
	}

	buf.WriteString("}\n")
	return buf.String()
}

func dotAttrs(n graph.Node, opts Options) []string {
	attrs := []string{
		fmt.Sprintf("label=%q", nodeLabel(n)),
		fmt.Sprintf("pos=\"%s,%s!\"", num(n.X), num(-(n.Y + opts.NodeHeight/2))),
		fmt.Sprintf("fillcolor=%q", ColorOf(n.Label)),
	}
	if n.Synthetic {
		attrs = append(attrs, "style=\"rounded,filled,dashed\"")
	}
	return attrs
}

// nodeLabel is the text drawn inside a box.
func nodeLabel(n graph.Node) string {
	if n.HasHiddenChildren {
		return fmt.Sprintf("%s\n+%d", n.Label, n.ChildCount)
	}
	return n.Label
}

func inches(points float64) string {
	return num(points / 72)
}

func num(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// RenderDOTSVG renders DOT source to SVG using the embedded Graphviz.
// The layout engine is taken from the graph's layout attribute.
func RenderDOTSVG(ctx context.Context, dot string) ([]byte, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()
	gv.SetLayout(graphviz.NEATO)

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

// normalizeViewBox replaces Graphviz's pt-sized root element with a plain
// pixel-sized one so the SVG scales like the direct sink's output.
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
