// Package render draws a materialized path-tree layout.
//
// # Overview
//
// The layout engine already decides where every node goes, so rendering
// never re-arranges anything. It only turns a [graph.Layout] into bytes:
//
//   - JSON: the layout document itself
//   - DOT: Graphviz source with every node pinned at its computed position
//   - SVG: either Graphviz (neato with pinned positions) or a direct sink
//     drawn with svgo
//   - PNG/PDF: SVG converted by the external rsvg-convert tool
//
// # Usage
//
//	opts := render.Options{Format: render.FormatSVG, Engine: render.EngineSVG}
//	if err := opts.ValidateAndSetDefaults(); err != nil {
//		return err
//	}
//	svg, err := render.Render(ctx, layout, opts)
//
// # Node Colors
//
// Boxes are filled according to [CategoryOf], which matches the node label
// against keyword groups (frontend, backend, data, auth, ...) and falls back
// to a stable hash of the label.
//
// [graph.Layout]: github.com/kafei-ai/treeflow/pkg/graph.Layout
package render
