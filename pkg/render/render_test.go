package render

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/kafei-ai/treeflow/pkg/errors"
	"github.com/kafei-ai/treeflow/pkg/graph"
	"github.com/kafei-ai/treeflow/pkg/tree"
)

func sampleLayout() graph.Layout {
	paths := tree.Normalize([]string{"src/app.go", "src/lib/util.go", "README.md"})
	t := tree.Build(paths)
	open := tree.NewExpansionSet("src")
	cfg := tree.DefaultConfig()
	return graph.Layout{
		Paths:     paths,
		Expanded:  open.Paths(),
		NodeWidth: cfg.NodeWidth,
		XGap:      cfg.XGap,
		YGap:      cfg.YGap,
		Graph:     tree.Run(t, open, cfg),
	}
}

func TestOptionsDefaults(t *testing.T) {
	var opts Options
	if err := opts.ValidateAndSetDefaults(); err != nil {
		t.Fatalf("ValidateAndSetDefaults() error: %v", err)
	}
	if opts.Format != FormatSVG {
		t.Errorf("Format = %q, want %q", opts.Format, FormatSVG)
	}
	if opts.Engine != EngineSVG {
		t.Errorf("Engine = %q, want %q", opts.Engine, EngineSVG)
	}
	if opts.NodeHeight != DefaultNodeHeight {
		t.Errorf("NodeHeight = %v, want %v", opts.NodeHeight, DefaultNodeHeight)
	}
}

func TestOptionsValidate(t *testing.T) {
	tests := []struct {
		name    string
		opts    Options
		wantErr bool
	}{
		{"svg direct", Options{Format: FormatSVG, Engine: EngineSVG}, false},
		{"svg graphviz", Options{Format: FormatSVG, Engine: EngineGraphviz}, false},
		{"dot", Options{Format: FormatDOT}, false},
		{"bad format", Options{Format: "gif"}, true},
		{"bad engine", Options{Format: FormatSVG, Engine: "cairo"}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts := tt.opts
			err := opts.ValidateAndSetDefaults()
			if (err != nil) != tt.wantErr {
				t.Fatalf("ValidateAndSetDefaults() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, errors.ErrCodeInvalidFormat) {
				t.Errorf("error code = %v, want %v", errors.GetCode(err), errors.ErrCodeInvalidFormat)
			}
		})
	}
}

func TestRenderJSON(t *testing.T) {
	l := sampleLayout()
	opts := Options{Format: FormatJSON}
	if err := opts.ValidateAndSetDefaults(); err != nil {
		t.Fatal(err)
	}

	got, err := Render(context.Background(), l, opts)
	if err != nil {
		t.Fatalf("Render() error: %v", err)
	}
	want, _ := graph.MarshalLayout(l)
	if !bytes.Equal(got, want) {
		t.Errorf("Render(json) differs from MarshalLayout")
	}
}

func TestToDOT(t *testing.T) {
	dot := ToDOT(sampleLayout(), Options{Title: "demo"})

	for _, want := range []string{
		"digraph G {",
		"layout=neato;",
		`label="demo";`,
		`"README.md" [label="README.md", pos="125,-40!"`,
		`"src/app.go" [label="app.go", pos="475,-240!"`,
		"label=\"lib\\n+1\"",
		`"src" -> "src/app.go" [id="src->src/app.go"];`,
		`"src" -> "src/lib" [id="src->src/lib"];`,
	} {
		if !strings.Contains(dot, want) {
			t.Errorf("ToDOT() missing %q\n%s", want, dot)
		}
	}
	if strings.Contains(dot, "util.go") {
		t.Error("ToDOT() should not include nodes under a closed parent")
	}
}

func TestToDOTSynthetic(t *testing.T) {
	l := sampleLayout()
	dot := ToDOT(l, Options{})
	if !strings.Contains(dot, "dashed") {
		t.Error("synthetic ancestor should be drawn dashed")
	}
}

func TestRenderSVG(t *testing.T) {
	l := sampleLayout()
	out := string(RenderSVG(l, Options{}))

	if !strings.Contains(out, "<svg") || !strings.HasSuffix(strings.TrimSpace(out), "</svg>") {
		t.Fatalf("RenderSVG() is not a complete svg document:\n%s", out)
	}
	// 950 wide drawing plus padding; 280 tall plus badge and padding.
	if !strings.Contains(out, `width="1030"`) || !strings.Contains(out, `height="373"`) {
		t.Errorf("RenderSVG() has unexpected canvas size:\n%s", out)
	}
	if got := strings.Count(out, "<rect"); got != 5 {
		t.Errorf("rect count = %d, want 5 (background + 4 nodes)", got)
	}
	if !strings.Contains(out, ">+1<") {
		t.Error("RenderSVG() missing hidden-children badge")
	}
	if got := strings.Count(out, "<path"); got != 2 {
		t.Errorf("edge count = %d, want 2", got)
	}
}

func TestRenderSVGEmpty(t *testing.T) {
	out := string(RenderSVG(graph.Layout{NodeWidth: 250, Graph: graph.Empty()}, Options{}))
	if !strings.Contains(out, `width="80"`) || !strings.Contains(out, `height="80"`) {
		t.Errorf("empty layout should render a padding-only canvas:\n%s", out)
	}
}

func TestRenderGraphviz(t *testing.T) {
	if testing.Short() {
		t.Skip("graphviz rendering is slow")
	}
	opts := Options{Format: FormatSVG, Engine: EngineGraphviz}
	if err := opts.ValidateAndSetDefaults(); err != nil {
		t.Fatal(err)
	}
	out, err := Render(context.Background(), sampleLayout(), opts)
	if err != nil {
		t.Fatalf("Render() error: %v", err)
	}
	if !bytes.Contains(out, []byte("<svg")) || !bytes.Contains(out, []byte("viewBox=\"0 0 ")) {
		t.Errorf("Render(graphviz) produced unexpected output:\n%s", out)
	}
}

func TestNormalizeViewBox(t *testing.T) {
	in := []byte(`<svg width="100pt" height="50pt" viewBox="0.00 0.00 100.00 50.00" xmlns="http://www.w3.org/2000/svg"><g/></svg>`)
	got := string(normalizeViewBox(in))
	want := `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 100.00 50.00" width="100" height="50"><g/></svg>`
	if got != want {
		t.Errorf("normalizeViewBox() = %s, want %s", got, want)
	}

	plain := []byte("<svg><g/></svg>")
	if got := normalizeViewBox(plain); !bytes.Equal(got, plain) {
		t.Errorf("normalizeViewBox() without viewBox = %s, want unchanged", got)
	}
}

func TestTruncate(t *testing.T) {
	tests := []struct {
		in   string
		n    int
		want string
	}{
		{"short", 10, "short"},
		{"exactly", 7, "exactly"},
		{"components", 6, "compo…"},
	}
	for _, tt := range tests {
		if got := truncate(tt.in, tt.n); got != tt.want {
			t.Errorf("truncate(%q, %d) = %q, want %q", tt.in, tt.n, got, tt.want)
		}
	}
}
