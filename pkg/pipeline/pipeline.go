// Package pipeline drives the path-tree layout for treeflow.
//
// The core in pkg/tree is a set of pure functions. This package wires them
// into the two things callers actually need:
//
//   - [Orchestrator]: a stateful driver owning the current path list, tree
//     and expansion set. It reacts to "paths replaced" and "toggle" events
//     and publishes a fresh graph after each one. The browse TUI and every
//     HTTP session hold one.
//   - [Runner]: a stateless, cached layout for one-shot callers (the layout
//     command and POST /v1/layout) plus cached rendering of the result.
//
// # Usage
//
// Drive a session:
//
//	o := pipeline.New(pipeline.Options{}, pipeline.WithLogger(logger))
//	g, err := o.PathsReplaced([]string{"src/app.go", "src/lib/util.go"})
//	g = o.Toggle("src")
//
// Compute a layout once:
//
//	runner := pipeline.NewRunner(cache, nil, logger)
//	layout, hit, err := runner.Layout(ctx, paths, pipeline.Options{ExpandDepth: 1})
//
// Both share [Options]; zero spacing values fall back to the defaults of
// pkg/tree.
package pipeline

import (
	"io"
	"slices"

	"github.com/charmbracelet/log"
	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/kafei-ai/treeflow/pkg/cache"
	"github.com/kafei-ai/treeflow/pkg/errors"
	"github.com/kafei-ai/treeflow/pkg/tree"
)

// =============================================================================
// Default Values - Single Source of Truth for CLI, API and TUI
// =============================================================================

const (
	// DefaultNodeWidth is the minimum horizontal footprint of one node.
	DefaultNodeWidth = tree.DefaultNodeWidth

	// DefaultXGap is the gap between adjacent sibling subtrees.
	DefaultXGap = tree.DefaultXGap

	// DefaultYGap is the distance between a parent row and its children.
	DefaultYGap = tree.DefaultYGap

	// MaxExpandDepth bounds ExpandDepth so a typo cannot open a huge tree.
	MaxExpandDepth = 64
)

// =============================================================================
// Options - Pipeline Configuration
// =============================================================================

// Options configures layout and expansion seeding.
// This struct supports JSON serialization for API requests.
type Options struct {
	// Layout spacing. Zero means default.
	NodeWidth float64 `json:"node_width,omitempty"`
	XGap      float64 `json:"x_gap,omitempty"`
	YGap      float64 `json:"y_gap,omitempty"`

	// Strict rejects entries that normalize to nothing instead of
	// dropping them.
	Strict bool `json:"strict,omitempty"`

	// Expansion seeding for one-shot layouts. The seeded set is the union
	// of Expanded, every node shallower than ExpandDepth, and every node
	// when ExpandAll is set.
	Expanded    []string `json:"expanded,omitempty"`
	ExpandDepth int      `json:"expand_depth,omitempty"`
	ExpandAll   bool     `json:"expand_all,omitempty"`

	// Runtime options (not serialized)
	Logger *log.Logger `json:"-"`
}

// SetDefaults fills zero spacing values and the logger.
func (o *Options) SetDefaults() {
	if o.NodeWidth == 0 {
		o.NodeWidth = DefaultNodeWidth
	}
	if o.XGap == 0 {
		o.XGap = DefaultXGap
	}
	if o.YGap == 0 {
		o.YGap = DefaultYGap
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
}

// Validate checks ranges. It does not apply defaults.
func (o Options) Validate() error {
	err := validation.ValidateStruct(&o,
		validation.Field(&o.NodeWidth, validation.Min(1.0)),
		validation.Field(&o.XGap, validation.Min(0.0)),
		validation.Field(&o.YGap, validation.Min(0.0)),
		validation.Field(&o.ExpandDepth, validation.Min(0), validation.Max(MaxExpandDepth)),
	)
	if err != nil {
		return errors.Wrap(errors.ErrCodeInvalidInput, err, "invalid options")
	}
	return nil
}

// ValidateAndSetDefaults applies defaults and validates the result.
// This method is idempotent.
func (o *Options) ValidateAndSetDefaults() error {
	o.SetDefaults()
	return o.Validate()
}

// Config returns the layout spacing.
func (o Options) Config() tree.Config {
	return tree.Config{NodeWidth: o.NodeWidth, XGap: o.XGap, YGap: o.YGap}
}

// Normalize applies the normalization policy the options select.
func (o Options) Normalize(raw []string) ([]string, error) {
	if o.Strict {
		paths, err := tree.NormalizeStrict(raw)
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidPath, err, "normalize paths")
		}
		return paths, nil
	}
	return tree.Normalize(raw), nil
}

// Seed returns the initial expansion set for t.
func (o Options) Seed(t *tree.Tree) tree.ExpansionSet {
	open := slices.Clone(o.Expanded)
	switch {
	case o.ExpandAll:
		open = append(open, tree.ExpandAll(t).Paths()...)
	case o.ExpandDepth > 0:
		open = append(open, tree.ExpandToDepth(t, o.ExpandDepth).Paths()...)
	}
	for i, p := range open {
		if n, ok := tree.NormalizePath(p); ok {
			open[i] = n
		}
	}
	return tree.NewExpansionSet(open...)
}

// LayoutKeyOpts returns cache key options for a layout under open.
func (o Options) LayoutKeyOpts(open tree.ExpansionSet) cache.LayoutKeyOpts {
	return cache.LayoutKeyOpts{
		Expanded:  open.Paths(),
		NodeWidth: o.NodeWidth,
		XGap:      o.XGap,
		YGap:      o.YGap,
	}
}
