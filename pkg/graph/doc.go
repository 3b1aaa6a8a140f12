// Package graph provides serialization types for materialized path trees.
//
// This package defines the canonical wire format for treeflow's output: the
// flat node and edge records a rendering surface draws, and the layout
// document the CLI writes to disk. It is used for JSON files, API responses,
// SSE events, and cache entries.
//
// # Architecture
//
// The package sits at the serialization boundary:
//
//   - [Graph], [Node], [Edge]: records emitted by pkg/tree.Materialize
//   - [Layout]: a self-contained document (paths, expansion state, spacing
//     constants, and the materialized graph) written by "treeflow layout"
//
// The package has no dependency on the layout engine, so both the engine and
// its consumers (server, renderers, TUI) import it.
//
// # Graph Serialization
//
// Graphs use a node-link JSON format whose keys match what a browser-side
// flow renderer expects:
//
//	{
//	  "nodes": [{"id": "src", "label": "src", "x": 125, "y": 0, "hasHiddenChildren": true, ...}],
//	  "edges": []
//	}
//
// Edge IDs are derived from their endpoints ([EdgeID]) so materializing the
// same edge twice always yields the same record.
//
// Common operations:
//
//	data, _ := graph.MarshalGraph(g)           // Graph → []byte
//	g, _ := graph.UnmarshalGraph(data)         // []byte → Graph
//	graph.WriteLayoutFile(l, "out.json")       // Layout → File
//	l, _ := graph.ReadLayoutFile("out.json")   // File → Layout
//
// # Concurrency
//
// All values are plain data; functions are safe for concurrent use.
package graph
