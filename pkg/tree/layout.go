package tree

import "slices"

// Default spacing, in layout units. Siblings of the original flow diagram sat
// 350 units apart (one node plus one gap) and levels 200 units apart.
const (
	DefaultNodeWidth = 250.0
	DefaultXGap      = 100.0
	DefaultYGap      = 200.0
)

// Config holds the spacing constants of a layout.
type Config struct {
	NodeWidth float64 // minimum horizontal footprint of one node
	XGap      float64 // horizontal gap between adjacent sibling subtrees
	YGap      float64 // vertical distance between a parent row and its children
}

// DefaultConfig returns the default spacing.
func DefaultConfig() Config {
	return Config{NodeWidth: DefaultNodeWidth, XGap: DefaultXGap, YGap: DefaultYGap}
}

// Placement is the geometry computed for one visible node.
type Placement struct {
	X     float64 // horizontal center
	Y     float64 // row
	Width float64 // footprint of the visible subtree
	Depth int
}

// Left returns the left edge of the node's subtree.
func (p Placement) Left() float64 { return p.X - p.Width/2 }

// Right returns the right edge of the node's subtree.
func (p Placement) Right() float64 { return p.X + p.Width/2 }

// Layout is the result of one layout pass: a placement for every node
// reachable through open ancestors. A Layout is created fresh by every call
// to [ComputeLayout] and never shared with the tree it describes.
type Layout struct {
	cfg        Config
	placements map[string]Placement
	order      []string // pre-order visit order
}

// Config returns the spacing the layout was computed with.
func (l *Layout) Config() Config { return l.cfg }

// Placement returns the geometry of a visible node.
func (l *Layout) Placement(path string) (Placement, bool) {
	p, ok := l.placements[path]
	return p, ok
}

// Len returns the number of visible nodes.
func (l *Layout) Len() int { return len(l.order) }

// Order returns the visible node paths in pre-order.
func (l *Layout) Order() []string { return slices.Clone(l.order) }

// ComputeLayout assigns coordinates to every node visible under open.
//
// Pass 1 walks post-order and computes subtree widths: a closed node or a
// leaf is cfg.NodeWidth wide; an open node is as wide as its children plus
// the gaps between them, and never narrower than cfg.NodeWidth. Closed
// subtrees are not entered.
//
// Pass 2 walks pre-order. Each child is centered in its own slot, the row of
// slots is centered under the parent, and children sit cfg.YGap lower. Forest
// roots are packed left to right at y = 0 with the first root's left edge at
// x = 0.
func ComputeLayout(t *Tree, open ExpansionSet, cfg Config) *Layout {
	l := &Layout{cfg: cfg, placements: make(map[string]Placement)}
	if t.Len() == 0 {
		return l
	}

	widths := make(map[string]float64)
	for _, r := range t.Roots() {
		measure(r, open, cfg, widths)
	}

	cursor := 0.0
	for _, r := range t.Roots() {
		w := widths[r.path]
		l.place(r, cursor+w/2, 0, open, widths)
		cursor += w + cfg.XGap
	}
	return l
}

// isOpen reports whether n's children are visible.
func isOpen(n *Node, open ExpansionSet) bool {
	return n.HasChildren() && open.Has(n.path)
}

func measure(n *Node, open ExpansionSet, cfg Config, widths map[string]float64) float64 {
	w := cfg.NodeWidth
	if isOpen(n, open) {
		w = max(cfg.NodeWidth, childrenSpan(n, cfg, func(c *Node) float64 {
			return measure(c, open, cfg, widths)
		}))
	}
	widths[n.path] = w
	return w
}

// childrenSpan sums the children's widths plus one gap between each pair.
func childrenSpan(n *Node, cfg Config, width func(*Node) float64) float64 {
	var sum float64
	for _, c := range n.children {
		sum += width(c)
	}
	return sum + float64(len(n.children)-1)*cfg.XGap
}

func (l *Layout) place(n *Node, x, y float64, open ExpansionSet, widths map[string]float64) {
	l.placements[n.path] = Placement{X: x, Y: y, Width: widths[n.path], Depth: n.depth}
	l.order = append(l.order, n.path)
	if !isOpen(n, open) {
		return
	}

	span := childrenSpan(n, l.cfg, func(c *Node) float64 { return widths[c.path] })
	left := x - span/2
	for _, c := range n.children {
		w := widths[c.path]
		l.place(c, left+w/2, y+l.cfg.YGap, open, widths)
		left += w + l.cfg.XGap
	}
}
