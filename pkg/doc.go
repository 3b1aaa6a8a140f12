// Package pkg holds the treeflow libraries.
//
// # Overview
//
// Treeflow turns a flat list of slash-separated paths into a positioned,
// collapsible tree graph. The packages are layered:
//
//  1. [tree] - normalization, tree building, expansion sets, tidy-tree layout
//  2. [graph] - the node/edge output contract and layout documents
//  3. [pipeline] - the stateful Orchestrator and the cached Runner
//  4. [render] - SVG, DOT, PNG and PDF output
//  5. [source], [cache], [project] - inputs, caching and saved path sets
//
// # Architecture
//
// Every event runs the whole pipeline:
//
//	raw paths
//	    ↓
//	[tree.Normalize] (trim, collapse separators, drop blanks, dedupe)
//	    ↓
//	[tree.Build] (path tree with synthetic ancestors)
//	    ↓
//	[tree.ComputeLayout] (post-order widths, pre-order placement)
//	    ↓
//	[tree.Materialize] (visible nodes and parent-child edges)
//	    ↓
//	[graph.Graph]
//
// # Quick Start
//
//	o := pipeline.New(pipeline.Options{})
//	g, _ := o.PathsReplaced([]string{"src/app.go", "src/lib/util.go", "README.md"})
//	// g holds README.md and src, both at depth 0; src has hidden children.
//	g = o.Toggle("src")
//	// g now also holds src/app.go and src/lib.
//
// [tree]: github.com/kafei-ai/treeflow/pkg/tree
// [graph]: github.com/kafei-ai/treeflow/pkg/graph
// [pipeline]: github.com/kafei-ai/treeflow/pkg/pipeline
// [render]: github.com/kafei-ai/treeflow/pkg/render
// [source]: github.com/kafei-ai/treeflow/pkg/source
// [cache]: github.com/kafei-ai/treeflow/pkg/cache
// [project]: github.com/kafei-ai/treeflow/pkg/project
package pkg
