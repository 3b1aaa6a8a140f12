package tree

import (
	"maps"
	"slices"
)

// =============================================================================
// Node
// =============================================================================

// Node is one entry of a built tree. Its identity is its full normalized path.
// Nodes are read-only once [Build] returns.
type Node struct {
	path      string
	name      string
	depth     int
	synthetic bool
	parent    *Node
	children  []*Node
}

// Path returns the node's full normalized path.
func (n *Node) Path() string { return n.path }

// Name returns the last segment of the node's path.
func (n *Node) Name() string { return n.name }

// Depth returns the number of segments in the path minus one.
func (n *Node) Depth() int { return n.depth }

// Synthetic reports whether the node was created only to complete the
// ancestor chain of some input path.
func (n *Node) Synthetic() bool { return n.synthetic }

// Parent returns the parent node, or nil for a forest root.
func (n *Node) Parent() *Node { return n.parent }

// Children returns the children in lexical path order.
// The returned slice must not be modified.
func (n *Node) Children() []*Node { return n.children }

// HasChildren reports whether the node has at least one child.
func (n *Node) HasChildren() bool { return len(n.children) > 0 }

// =============================================================================
// Tree
// =============================================================================

// Tree is a forest of [Node] values indexed by path.
type Tree struct {
	roots []*Node
	index map[string]*Node
	paths []string // every node path, lexically sorted
}

// Build converts normalized paths into a forest.
//
// Every ancestor prefix of every path becomes a node, so no node is orphaned:
// "x/y/z" alone yields x → x/y → x/y/z with x and x/y marked synthetic. Nodes
// are created depth by depth over the lexically sorted path set, which both
// guarantees a parent exists before its children and orders siblings
// lexically.
//
// Build expects the output of [Normalize]; it does not validate segments.
func Build(paths []string) *Tree {
	explicit := make(map[string]bool, len(paths))
	all := make(map[string]struct{}, len(paths))
	for _, p := range paths {
		explicit[p] = true
		all[p] = struct{}{}
		for _, a := range Ancestors(p) {
			all[a] = struct{}{}
		}
	}

	sorted := slices.Sorted(maps.Keys(all))

	byDepth := make(map[int][]string)
	maxDepth := -1
	for _, p := range sorted {
		d := Depth(p)
		byDepth[d] = append(byDepth[d], p)
		maxDepth = max(maxDepth, d)
	}

	t := &Tree{
		index: make(map[string]*Node, len(sorted)),
		paths: sorted,
	}
	for d := 0; d <= maxDepth; d++ {
		for _, p := range byDepth[d] {
			n := &Node{
				path:      p,
				name:      Name(p),
				depth:     d,
				synthetic: !explicit[p],
			}
			t.index[p] = n

			parentPath := Parent(p)
			if parentPath == "" {
				t.roots = append(t.roots, n)
				continue
			}
			parent := t.index[parentPath]
			n.parent = parent
			parent.children = append(parent.children, n)
		}
	}
	return t
}

// Roots returns the forest roots in lexical order.
// The returned slice must not be modified.
func (t *Tree) Roots() []*Node {
	if t == nil {
		return nil
	}
	return t.roots
}

// Node returns the node for a normalized path.
func (t *Tree) Node(path string) (*Node, bool) {
	if t == nil {
		return nil, false
	}
	n, ok := t.index[path]
	return n, ok
}

// Len returns the total node count, synthesized ancestors included.
func (t *Tree) Len() int {
	if t == nil {
		return 0
	}
	return len(t.paths)
}

// Paths returns every node path in lexical order.
func (t *Tree) Paths() []string {
	if t == nil {
		return nil
	}
	return slices.Clone(t.paths)
}

// Walk visits every node in pre-order, roots first. Returning false from fn
// skips the node's children.
func (t *Tree) Walk(fn func(*Node) bool) {
	var visit func(n *Node)
	visit = func(n *Node) {
		if !fn(n) {
			return
		}
		for _, c := range n.children {
			visit(c)
		}
	}
	for _, r := range t.Roots() {
		visit(r)
	}
}
