// Package tree builds, lays out, and materializes collapsible path trees.
//
// The input is a flat list of slash-delimited paths describing a project's
// folder and component structure ("src/components/Button.tsx"). The output is
// a positioned node/edge graph (pkg/graph) in which only branches the user has
// opened are visible.
//
// # Pipeline
//
// Each stage is a pure function over immutable values:
//
//  1. [Normalize]: canonicalize raw strings and drop malformed entries
//  2. [Build]: construct the forest, synthesizing missing ancestors
//  3. [ExpansionSet]: the set of open node paths, updated with Toggle
//  4. [ComputeLayout]: post-order width aggregation, pre-order placement
//  5. [Materialize]: pre-order walk emitting node and edge records
//
// [Run] chains stages 4 and 5 for callers that hold a tree and an expansion
// set.
//
// # Layout Model
//
// The layout is a top-down tidy tree. A closed node (or a leaf) occupies
// exactly [Config.NodeWidth] regardless of what lies beneath it; an open node
// occupies the sum of its children's widths plus [Config.XGap] between them,
// but never less than NodeWidth. Children sit [Config.YGap] below their parent
// and their row is centered under the parent. Forest roots are packed left to
// right at y = 0 starting from x = 0.
//
// Only nodes reachable through open ancestors are visited, so a toggle costs
// time proportional to the visible node count.
//
// # Determinism
//
// Siblings are always ordered lexically by path, so a given (paths, expansion)
// pair produces byte-identical output on every run.
//
// # Errors
//
// Nothing in this package fails at runtime. Malformed entries are filtered by
// [Normalize]; [NormalizeStrict] reports them as [*MalformedPathError] instead.
// Toggling a path with no node has no visible effect.
package tree
