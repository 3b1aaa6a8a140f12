package tree

import "github.com/kafei-ai/treeflow/pkg/graph"

// Materialize emits the node and edge records for the visible part of t.
//
// The walk is pre-order from every forest root and descends only into open
// nodes. Each visited node yields one record; each child of an open node
// yields one parent→child edge. A node with children that is not open is
// flagged HasHiddenChildren. Coordinates come from l, which must have been
// computed for the same tree and expansion set.
func Materialize(t *Tree, open ExpansionSet, l *Layout) graph.Graph {
	g := graph.Empty()

	var visit func(n *Node)
	visit = func(n *Node) {
		p, _ := l.Placement(n.path)
		opened := isOpen(n, open)
		g.Nodes = append(g.Nodes, graph.Node{
			ID:                n.path,
			Label:             n.name,
			X:                 p.X,
			Y:                 p.Y,
			HasHiddenChildren: n.HasChildren() && !opened,
			Depth:             n.depth,
			ChildCount:        len(n.children),
			Synthetic:         n.synthetic,
			Width:             p.Width,
		})
		if !opened {
			return
		}
		for _, c := range n.children {
			g.Edges = append(g.Edges, graph.NewEdge(n.path, c.path))
			visit(c)
		}
	}

	for _, r := range t.Roots() {
		visit(r)
	}
	return g
}

// Run lays out t under open and materializes the result.
func Run(t *Tree, open ExpansionSet, cfg Config) graph.Graph {
	return Materialize(t, open, ComputeLayout(t, open, cfg))
}
