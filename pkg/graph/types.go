package graph

import "math"

// =============================================================================
// Graph - Materialized Tree
// =============================================================================

// Graph is the node/edge view of the visible part of a path tree.
//
// Nodes appear in pre-order (each forest root followed by its open subtree,
// siblings in lexical order). Edges appear in the order their target nodes
// were visited. Both slices are non-nil so JSON always emits arrays.
type Graph struct {
	Nodes []Node `json:"nodes" bson:"nodes"`
	Edges []Edge `json:"edges" bson:"edges"`
}

// Empty returns a graph with zero nodes and zero edges.
func Empty() Graph {
	return Graph{Nodes: []Node{}, Edges: []Edge{}}
}

// NodeCount returns the number of node records.
func (g Graph) NodeCount() int { return len(g.Nodes) }

// EdgeCount returns the number of edge records.
func (g Graph) EdgeCount() int { return len(g.Edges) }

// Node returns the record with the given id.
func (g Graph) Node(id string) (Node, bool) {
	for _, n := range g.Nodes {
		if n.ID == id {
			return n, true
		}
	}
	return Node{}, false
}

// Bounds returns the extent of the drawing: the leftmost and rightmost node
// edges and the lowest row. An empty graph has zero bounds.
func (g Graph) Bounds(nodeWidth float64) (minX, maxX, maxY float64) {
	if len(g.Nodes) == 0 {
		return 0, 0, 0
	}
	minX, maxX = math.Inf(1), math.Inf(-1)
	for _, n := range g.Nodes {
		minX = math.Min(minX, n.X-nodeWidth/2)
		maxX = math.Max(maxX, n.X+nodeWidth/2)
		maxY = math.Max(maxY, n.Y)
	}
	return minX, maxX, maxY
}

// =============================================================================
// Node - Positioned Tree Node
// =============================================================================

// Node is a positioned record for one visible tree node.
//
// X is the horizontal center of the node and Y the top of its row; Width is
// the footprint of the node's visible subtree, so the subtree occupies
// [X-Width/2, X+Width/2].
type Node struct {
	ID                string  `json:"id" bson:"id"`
	Label             string  `json:"label" bson:"label"`
	X                 float64 `json:"x" bson:"x"`
	Y                 float64 `json:"y" bson:"y"`
	HasHiddenChildren bool    `json:"hasHiddenChildren" bson:"has_hidden_children"`

	Depth      int     `json:"depth" bson:"depth"`
	ChildCount int     `json:"childCount,omitempty" bson:"child_count,omitempty"`
	Synthetic  bool    `json:"synthetic,omitempty" bson:"synthetic,omitempty"` // ancestor not present in the input
	Width      float64 `json:"width" bson:"width"`
}

// IsLeaf reports whether the node has no children at all.
func (n Node) IsLeaf() bool { return n.ChildCount == 0 }

// =============================================================================
// Edge - Parent to Child Link
// =============================================================================

// Edge links an open parent to one of its children.
type Edge struct {
	ID     string `json:"id" bson:"id"`
	Source string `json:"source" bson:"source"`
	Target string `json:"target" bson:"target"`
}

// EdgeID derives a stable edge identifier from its endpoints.
func EdgeID(source, target string) string {
	return source + "->" + target
}

// NewEdge returns the edge from source to target with its derived ID.
func NewEdge(source, target string) Edge {
	return Edge{ID: EdgeID(source, target), Source: source, Target: target}
}
