package render

import (
	"bytes"
	"fmt"
	"io"
	"math"

	svg "github.com/ajstarks/svgo"

	"github.com/kafei-ai/treeflow/pkg/graph"
)

const (
	colorBackground = "#ffffff"
	colorEdge       = "#94a3b8"
	colorText       = "#ffffff"
	colorBadge      = "#f8fafc"
	colorBadgeText  = "#0f172a"
	colorStroke     = "#0f172a"

	cornerRadius = 10
	badgeRadius  = 13
	arrowSize    = 6
)

// RenderSVG draws l directly with svgo. Nodes keep the exact coordinates
// of the layout, shifted so the leftmost box starts at the padding.
func RenderSVG(l graph.Layout, opts Options) []byte {
	var buf bytes.Buffer
	WriteSVG(&buf, l, opts)
	return buf.Bytes()
}

// WriteSVG streams the SVG for l to w.
func WriteSVG(w io.Writer, l graph.Layout, opts Options) {
	opts.SetDefaults()
	f := newFrame(l, opts)

	canvas := svg.New(w)
	canvas.Start(f.width, f.height)
	canvas.Rect(0, 0, f.width, f.height, "fill:"+colorBackground)
	if opts.Title != "" {
		canvas.Title(opts.Title)
	}

	nodes := make(map[string]graph.Node, len(l.Graph.Nodes))
	for _, n := range l.Graph.Nodes {
		nodes[n.ID] = n
	}

	canvas.Gid("edges")
	for _, e := range l.Graph.Edges {
		from, okFrom := nodes[e.Source]
		to, okTo := nodes[e.Target]
		if !okFrom || !okTo {
			continue
		}
		x1, y1 := f.x(from.X), f.y(from.Y)+f.nodeH
		x2, y2 := f.x(to.X), f.y(to.Y)
		mid := (y1 + y2) / 2
		canvas.Bezier(x1, y1, x1, mid, x2, mid, x2, y2-arrowSize,
			fmt.Sprintf("fill:none;stroke:%s;stroke-width:2", colorEdge))
		canvas.Polygon(
			[]int{x2, x2 - arrowSize, x2 + arrowSize},
			[]int{y2, y2 - arrowSize, y2 - arrowSize},
			"fill:"+colorEdge,
		)
	}
	canvas.Gend()

	for _, n := range l.Graph.Nodes {
		drawNode(canvas, f, n)
	}
	canvas.End()
}

func drawNode(canvas *svg.SVG, f frame, n graph.Node) {
	x := f.x(n.X) - f.nodeW/2
	y := f.y(n.Y)

	style := fmt.Sprintf("fill:%s;stroke:%s;stroke-width:1.2", ColorOf(n.Label), colorStroke)
	if n.Synthetic {
		style += ";stroke-dasharray:6,4"
	}

	canvas.Gid(n.ID)
	canvas.Roundrect(x, y, f.nodeW, f.nodeH, cornerRadius, cornerRadius, style)
	canvas.Text(x+f.nodeW/2, y+f.nodeH/2+6, truncate(n.Label, f.maxChars),
		fmt.Sprintf("fill:%s;font-size:16px;font-family:sans-serif;font-weight:bold;text-anchor:middle", colorText))
	if n.HasHiddenChildren {
		cx, cy := x+f.nodeW/2, y+f.nodeH
		canvas.Circle(cx, cy, badgeRadius, fmt.Sprintf("fill:%s;stroke:%s;stroke-width:1", colorBadge, colorStroke))
		canvas.Text(cx, cy+4, fmt.Sprintf("+%d", n.ChildCount),
			fmt.Sprintf("fill:%s;font-size:11px;font-family:sans-serif;text-anchor:middle", colorBadgeText))
	}
	canvas.Gend()
}

// frame maps layout coordinates to canvas pixels.
type frame struct {
	width, height int
	nodeW, nodeH  int
	offsetX       float64
	padding       float64
	maxChars      int
}

func newFrame(l graph.Layout, opts Options) frame {
	f := frame{
		nodeW:   int(math.Round(l.NodeWidth)),
		nodeH:   int(math.Round(opts.NodeHeight)),
		padding: opts.Padding,
	}
	// Roughly 9px per bold 16px glyph.
	f.maxChars = max(4, f.nodeW/9)

	w, h := l.Size(opts.NodeHeight)
	if len(l.Graph.Nodes) > 0 {
		minX, _, _ := l.Graph.Bounds(l.NodeWidth)
		f.offsetX = opts.Padding - minX
		// Leave room for the hidden-children badge under the lowest row.
		h += badgeRadius
	}
	f.width = int(math.Ceil(w + 2*opts.Padding))
	f.height = int(math.Ceil(h + 2*opts.Padding))
	return f
}

func (f frame) x(v float64) int { return int(math.Round(v + f.offsetX)) }
func (f frame) y(v float64) int { return int(math.Round(v + f.padding)) }

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
