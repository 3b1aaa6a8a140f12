package graph

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func sample() Graph {
	return Graph{
		Nodes: []Node{
			{ID: "a", Label: "a", X: 300, Y: 0, Width: 600, ChildCount: 2},
			{ID: "a/b", Label: "b", X: 125, Y: 200, Width: 250, Depth: 1},
			{ID: "a/c", Label: "c", X: 475, Y: 200, Width: 250, Depth: 1, ChildCount: 1, HasHiddenChildren: true},
		},
		Edges: []Edge{NewEdge("a", "a/b"), NewEdge("a", "a/c")},
	}
}

func TestMarshalGraph(t *testing.T) {
	tests := []struct {
		name    string
		g       Graph
		want    []string
		notWant []string
	}{
		{
			name: "Empty",
			g:    Graph{},
			want: []string{`"nodes":[]`, `"edges":[]`},
		},
		{
			name: "Fields",
			g:    sample(),
			want: []string{
				`"id":"a/c"`,
				`"hasHiddenChildren":true`,
				`"hasHiddenChildren":false`,
				`"id":"a->a/b","source":"a","target":"a/b"`,
				`"childCount":2`,
			},
			notWant: []string{`"synthetic"`},
		},
		{
			name:    "Synthetic",
			g:       Graph{Nodes: []Node{{ID: "x", Label: "x", Synthetic: true}}},
			want:    []string{`"synthetic":true`},
			notWant: []string{`"childCount"`},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data, err := MarshalGraph(tt.g)
			if err != nil {
				t.Fatalf("MarshalGraph() error: %v", err)
			}
			s := string(data)
			for _, w := range tt.want {
				if !strings.Contains(s, w) {
					t.Errorf("MarshalGraph() = %s, missing %s", s, w)
				}
			}
			for _, w := range tt.notWant {
				if strings.Contains(s, w) {
					t.Errorf("MarshalGraph() = %s, should not contain %s", s, w)
				}
			}
		})
	}
}

func TestUnmarshalGraph(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		wantNodes int
		wantEdges int
		wantErr   bool
	}{
		{name: "Empty", input: `{}`},
		{name: "Arrays", input: `{"nodes":[{"id":"a","label":"a","x":125,"y":0,"hasHiddenChildren":false}],"edges":[]}`, wantNodes: 1},
		{name: "Edges", input: `{"nodes":[{"id":"a"},{"id":"a/b"}],"edges":[{"id":"a->a/b","source":"a","target":"a/b"}]}`, wantNodes: 2, wantEdges: 1},
		{name: "Invalid", input: `{"nodes":`, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g, err := UnmarshalGraph([]byte(tt.input))
			if (err != nil) != tt.wantErr {
				t.Fatalf("UnmarshalGraph() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr {
				return
			}
			if g.Nodes == nil || g.Edges == nil {
				t.Error("UnmarshalGraph() returned nil slices")
			}
			if g.NodeCount() != tt.wantNodes {
				t.Errorf("NodeCount() = %d, want %d", g.NodeCount(), tt.wantNodes)
			}
			if g.EdgeCount() != tt.wantEdges {
				t.Errorf("EdgeCount() = %d, want %d", g.EdgeCount(), tt.wantEdges)
			}
		})
	}
}

func TestWriteReadGraph(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteGraph(sample(), &buf); err != nil {
		t.Fatalf("WriteGraph() error: %v", err)
	}
	if !strings.Contains(buf.String(), "\n  \"nodes\"") {
		t.Errorf("WriteGraph() output not indented:\n%s", buf.String())
	}

	got, err := ReadGraph(&buf)
	if err != nil {
		t.Fatalf("ReadGraph() error: %v", err)
	}
	if !Equal(got, sample()) {
		t.Errorf("ReadGraph() = %+v, want %+v", got, sample())
	}
}

func TestEqual(t *testing.T) {
	moved := sample()
	moved.Nodes[1].X++

	tests := []struct {
		name string
		a, b Graph
		want bool
	}{
		{"SameContent", sample(), sample(), true},
		{"NilVsEmpty", Graph{}, Empty(), true},
		{"Moved", sample(), moved, false},
		{"Reordered", sample(), Graph{Nodes: []Node{sample().Nodes[1], sample().Nodes[0], sample().Nodes[2]}, Edges: sample().Edges}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Equal(tt.a, tt.b); got != tt.want {
				t.Errorf("Equal() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestGraphLookups(t *testing.T) {
	g := sample()

	if n, ok := g.Node("a/c"); !ok || n.Label != "c" {
		t.Errorf("Node(a/c) = %+v, %v", n, ok)
	}
	if _, ok := g.Node("missing"); ok {
		t.Error("Node(missing) found")
	}
	if n, _ := g.Node("a/b"); !n.IsLeaf() {
		t.Error("a/b should be a leaf")
	}

	minX, maxX, maxY := g.Bounds(250)
	if minX != 0 || maxX != 600 || maxY != 200 {
		t.Errorf("Bounds() = %v, %v, %v, want 0, 600, 200", minX, maxX, maxY)
	}
	if a, b, c := Empty().Bounds(250); a != 0 || b != 0 || c != 0 {
		t.Errorf("Empty().Bounds() = %v, %v, %v", a, b, c)
	}
}

func TestEdgeID(t *testing.T) {
	if got := EdgeID("src", "src/ui"); got != "src->src/ui" {
		t.Errorf("EdgeID() = %q", got)
	}
	e := NewEdge("p", "p/q")
	if e.ID != "p->p/q" || e.Source != "p" || e.Target != "p/q" {
		t.Errorf("NewEdge() = %+v", e)
	}
}

func TestLayoutFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "layout.json")
	l := Layout{
		Paths:     []string{"a", "a/b", "a/c"},
		Expanded:  []string{"a"},
		NodeWidth: 250,
		XGap:      100,
		YGap:      200,
		Graph:     sample(),
	}
	if err := WriteLayoutFile(l, path); err != nil {
		t.Fatalf("WriteLayoutFile() error: %v", err)
	}

	got, err := ReadLayoutFile(path)
	if err != nil {
		t.Fatalf("ReadLayoutFile() error: %v", err)
	}
	if got.XGap != 100 || len(got.Expanded) != 1 || !Equal(got.Graph, l.Graph) {
		t.Errorf("ReadLayoutFile() = %+v", got)
	}

	w, h := got.Size(80)
	if w != 600 || h != 280 {
		t.Errorf("Size(80) = %v x %v, want 600 x 280", w, h)
	}
}

func TestLayoutErrors(t *testing.T) {
	if _, err := ReadLayoutFile(filepath.Join(t.TempDir(), "missing.json")); err == nil {
		t.Error("ReadLayoutFile(missing) expected error")
	}

	path := filepath.Join(t.TempDir(), "bad.json")
	if err := os.WriteFile(path, []byte(`{"paths":[],"node_width":0}`), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := ReadLayoutFile(path); err == nil {
		t.Error("ReadLayoutFile() accepted zero node_width")
	}

	data, err := MarshalLayout(Layout{NodeWidth: 1})
	if err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{`"paths": []`, `"expanded": []`, `"nodes": []`} {
		if !strings.Contains(string(data), want) {
			t.Errorf("MarshalLayout() missing %s:\n%s", want, data)
		}
	}
}
