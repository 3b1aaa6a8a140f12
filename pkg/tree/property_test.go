package tree

import (
	"slices"
	"strings"
	"testing"

	"pgregory.net/rapid"
)

// genPaths draws a small list of well-formed paths over a narrow alphabet so
// that shared prefixes are common.
func genPaths(t *rapid.T) []string {
	seg := rapid.SampledFrom([]string{"a", "b", "c", "src", "lib", "x.go"})
	path := rapid.Custom(func(t *rapid.T) string {
		return strings.Join(rapid.SliceOfN(seg, 1, 4).Draw(t, "segments"), Separator)
	})
	return rapid.SliceOfN(path, 0, 12).Draw(t, "paths")
}

func genOpen(t *rapid.T, tr *Tree) ExpansionSet {
	var open []string
	for _, p := range tr.Paths() {
		if rapid.Bool().Draw(t, "open "+p) {
			open = append(open, p)
		}
	}
	return NewExpansionSet(open...)
}

func TestPropNormalizeIdempotent(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		raw := rapid.SliceOf(rapid.StringMatching(`/{0,2}[a-c ]{0,3}(/{1,2}[a-c]{0,2}){0,3}/?`)).Draw(t, "raw")
		once := Normalize(raw)
		if twice := Normalize(once); !slices.Equal(once, twice) {
			t.Fatalf("Normalize not idempotent: %q then %q", once, twice)
		}
	})
}

func TestPropAncestorsPresent(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		tr := Build(genPaths(t))
		for _, p := range tr.Paths() {
			for _, a := range Ancestors(p) {
				if _, ok := tr.Node(a); !ok {
					t.Fatalf("ancestor %q of %q missing", a, p)
				}
			}
		}
	})
}

func TestPropDeterministic(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		paths := genPaths(t)
		tr := Build(paths)
		open := genOpen(t, tr)

		shuffled := slices.Clone(paths)
		slices.Reverse(shuffled)

		a := Run(tr, open, DefaultConfig())
		b := Run(Build(shuffled), open, DefaultConfig())
		if !slices.Equal(a.Nodes, b.Nodes) || !slices.Equal(a.Edges, b.Edges) {
			t.Fatalf("input order changed the graph:\n%+v\n%+v", a, b)
		}
	})
}

func TestPropWidthAggregation(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		tr := Build(genPaths(t))
		open := genOpen(t, tr)
		cfg := DefaultConfig()
		l := ComputeLayout(tr, open, cfg)

		tr.Walk(func(n *Node) bool {
			p, ok := l.Placement(n.Path())
			if !ok {
				return false
			}
			if !isOpen(n, open) {
				if p.Width != cfg.NodeWidth {
					t.Fatalf("closed %q width = %v, want %v", n.Path(), p.Width, cfg.NodeWidth)
				}
				return false
			}
			sum := 0.0
			for _, c := range n.Children() {
				cp, _ := l.Placement(c.Path())
				sum += cp.Width
			}
			sum += float64(len(n.Children())-1) * cfg.XGap
			if want := max(cfg.NodeWidth, sum); p.Width != want {
				t.Fatalf("open %q width = %v, want %v", n.Path(), p.Width, want)
			}
			return true
		})
	})
}

func TestPropSiblingsDoNotOverlap(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		tr := Build(genPaths(t))
		open := genOpen(t, tr)
		cfg := DefaultConfig()
		l := ComputeLayout(tr, open, cfg)

		check := func(row []*Node) {
			for i := 1; i < len(row); i++ {
				prev, _ := l.Placement(row[i-1].Path())
				cur, _ := l.Placement(row[i].Path())
				if cur.Left()-prev.Right() < cfg.XGap-1e-9 {
					t.Fatalf("%q and %q overlap: %v..%v", row[i-1].Path(), row[i].Path(), prev.Right(), cur.Left())
				}
			}
		}
		check(tr.Roots())
		tr.Walk(func(n *Node) bool {
			if !isOpen(n, open) {
				return false
			}
			check(n.Children())
			return true
		})
	})
}

func TestPropToggleSymmetric(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		tr := Build(genPaths(t))
		open := genOpen(t, tr)
		all := tr.Paths()
		if len(all) == 0 {
			return
		}
		p := rapid.SampledFrom(all).Draw(t, "toggle")

		back := open.Toggle(p).Toggle(p)
		if !back.Equal(open) {
			t.Fatalf("toggle %q twice: %v, want %v", p, back.Paths(), open.Paths())
		}
		before := Run(tr, open, DefaultConfig())
		after := Run(tr, back, DefaultConfig())
		if !slices.Equal(before.Nodes, after.Nodes) {
			t.Fatal("double toggle changed the graph")
		}
	})
}
