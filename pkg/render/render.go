package render

import (
	"context"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/kafei-ai/treeflow/pkg/errors"
	"github.com/kafei-ai/treeflow/pkg/graph"
)

// Output formats.
const (
	FormatSVG  = "svg"
	FormatDOT  = "dot"
	FormatJSON = "json"
	FormatPNG  = "png"
	FormatPDF  = "pdf"
)

// SVG engines.
const (
	EngineGraphviz = "graphviz"
	EngineSVG      = "svg"
)

// Formats lists every supported output format.
var Formats = []string{FormatSVG, FormatDOT, FormatJSON, FormatPNG, FormatPDF}

// Engines lists every supported SVG engine.
var Engines = []string{EngineSVG, EngineGraphviz}

// Default drawing constants.
const (
	DefaultNodeHeight = 80.0
	DefaultPadding    = 40.0
	DefaultScale      = 2.0
)

// Options configures rendering.
type Options struct {
	Format string
	Engine string

	NodeHeight float64
	Padding    float64
	Scale      float64 // PNG only

	Title string
}

// SetDefaults fills zero values.
func (o *Options) SetDefaults() {
	if o.Format == "" {
		o.Format = FormatSVG
	}
	if o.Engine == "" {
		o.Engine = EngineSVG
	}
	if o.NodeHeight <= 0 {
		o.NodeHeight = DefaultNodeHeight
	}
	if o.Padding <= 0 {
		o.Padding = DefaultPadding
	}
	if o.Scale <= 0 {
		o.Scale = DefaultScale
	}
}

// Validate checks Format and Engine against the supported values.
func (o Options) Validate() error {
	err := validation.ValidateStruct(&o,
		validation.Field(&o.Format, validation.In(anySlice(Formats)...).Error("must be one of svg, dot, json, png, pdf")),
		validation.Field(&o.Engine, validation.In(anySlice(Engines)...).Error("must be svg or graphviz")),
	)
	if err != nil {
		return errors.Wrap(errors.ErrCodeInvalidFormat, err, "invalid render options")
	}
	return nil
}

// ValidateAndSetDefaults applies defaults and then validates.
func (o *Options) ValidateAndSetDefaults() error {
	o.SetDefaults()
	return o.Validate()
}

// Render produces l in the format named by opts. Options must already be
// validated.
func Render(ctx context.Context, l graph.Layout, opts Options) ([]byte, error) {
	switch opts.Format {
	case FormatJSON:
		return graph.MarshalLayout(l)
	case FormatDOT:
		return []byte(ToDOT(l, opts)), nil
	case FormatSVG:
		return renderSVG(ctx, l, opts)
	case FormatPNG:
		svg, err := renderSVG(ctx, l, opts)
		if err != nil {
			return nil, err
		}
		return ToPNG(ctx, svg, opts.Scale)
	case FormatPDF:
		svg, err := renderSVG(ctx, l, opts)
		if err != nil {
			return nil, err
		}
		return ToPDF(ctx, svg)
	}
	return nil, errors.New(errors.ErrCodeInvalidFormat, "unsupported format %q", opts.Format)
}

func renderSVG(ctx context.Context, l graph.Layout, opts Options) ([]byte, error) {
	if opts.Engine == EngineGraphviz {
		return RenderDOTSVG(ctx, ToDOT(l, opts))
	}
	return RenderSVG(l, opts), nil
}

func anySlice(ss []string) []any {
	out := make([]any, len(ss))
	for i, s := range ss {
		out[i] = s
	}
	return out
}
