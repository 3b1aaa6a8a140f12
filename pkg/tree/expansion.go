package tree

import (
	"maps"
	"slices"
)

// ExpansionSet is the set of node paths whose children are visible.
//
// It is a value: Toggle returns a new set and never modifies the receiver, so
// holders can detect a change by comparing sets and can share sets freely.
// The zero value is an empty set.
type ExpansionSet struct {
	open map[string]struct{}
}

// NewExpansionSet returns a set containing paths.
func NewExpansionSet(paths ...string) ExpansionSet {
	open := make(map[string]struct{}, len(paths))
	for _, p := range paths {
		open[p] = struct{}{}
	}
	return ExpansionSet{open: open}
}

// Has reports whether path is open.
func (s ExpansionSet) Has(path string) bool {
	_, ok := s.open[path]
	return ok
}

// Toggle returns a copy of the set with path's membership flipped.
func (s ExpansionSet) Toggle(path string) ExpansionSet {
	next := make(map[string]struct{}, len(s.open)+1)
	maps.Copy(next, s.open)
	if _, ok := next[path]; ok {
		delete(next, path)
	} else {
		next[path] = struct{}{}
	}
	return ExpansionSet{open: next}
}

// Len returns the number of open paths.
func (s ExpansionSet) Len() int { return len(s.open) }

// Paths returns the open paths in lexical order.
func (s ExpansionSet) Paths() []string {
	return slices.Sorted(maps.Keys(s.open))
}

// Equal reports whether both sets hold the same paths.
func (s ExpansionSet) Equal(other ExpansionSet) bool {
	if len(s.open) != len(other.open) {
		return false
	}
	for p := range s.open {
		if !other.Has(p) {
			return false
		}
	}
	return true
}

// ExpandToDepth opens every node with children whose depth is below depth.
// A depth of 1 opens the forest roots only.
func ExpandToDepth(t *Tree, depth int) ExpansionSet {
	var open []string
	t.Walk(func(n *Node) bool {
		if n.depth >= depth {
			return false
		}
		if n.HasChildren() {
			open = append(open, n.path)
		}
		return true
	})
	return NewExpansionSet(open...)
}

// ExpandAll opens every node that has children.
func ExpandAll(t *Tree) ExpansionSet {
	var open []string
	t.Walk(func(n *Node) bool {
		if n.HasChildren() {
			open = append(open, n.path)
		}
		return true
	})
	return NewExpansionSet(open...)
}
