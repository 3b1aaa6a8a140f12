package pipeline

import (
	"context"
	"slices"
	"time"

	"github.com/charmbracelet/log"

	"github.com/kafei-ai/treeflow/pkg/graph"
	"github.com/kafei-ai/treeflow/pkg/observability"
	"github.com/kafei-ai/treeflow/pkg/tree"
)

// Trigger names the event that produced an [Update].
type Trigger string

// Driving events.
const (
	TriggerPaths     Trigger = "paths"
	TriggerToggle    Trigger = "toggle"
	TriggerExpansion Trigger = "expansion"
)

// Update is published after every settled event.
type Update struct {
	Trigger  Trigger
	Path     string // toggled node, for TriggerToggle
	Graph    graph.Graph
	Duration time.Duration
}

// Listener receives published updates. It runs synchronously on the
// caller's goroutine and must not call back into the Orchestrator.
type Listener func(Update)

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithExpansion seeds the expansion set used until the first PathsReplaced.
func WithExpansion(open tree.ExpansionSet) Option {
	return func(o *Orchestrator) { o.open = open }
}

// WithListener registers fn to receive every published update.
func WithListener(fn Listener) Option {
	return func(o *Orchestrator) {
		if fn != nil {
			o.listeners = append(o.listeners, fn)
		}
	}
}

// WithLogger sets the logger. The default discards.
func WithLogger(l *log.Logger) Option {
	return func(o *Orchestrator) {
		if l != nil {
			o.logger = l
		}
	}
}

// Orchestrator owns the state carried between layout runs: the last
// normalized path list, the tree built from it and the expansion set. Each
// event runs the pipeline to completion before returning and publishes a
// new graph.
//
// An Orchestrator is not safe for concurrent use; callers that share one
// (HTTP sessions) serialize access themselves.
type Orchestrator struct {
	opts      Options
	logger    *log.Logger
	listeners []Listener

	paths []string
	tree  *tree.Tree
	open  tree.ExpansionSet
	graph graph.Graph
}

// New returns an Orchestrator with an empty tree. Invalid spacing in opts
// is logged and replaced with defaults.
func New(opts Options, options ...Option) *Orchestrator {
	invalid := opts.ValidateAndSetDefaults()
	if invalid != nil {
		opts = Options{Strict: opts.Strict, Logger: opts.Logger}
		opts.SetDefaults()
	}
	o := &Orchestrator{
		opts:   opts,
		logger: opts.Logger,
		paths:  []string{},
		tree:   tree.Build(nil),
		open:   tree.NewExpansionSet(),
		graph:  graph.Empty(),
	}
	for _, opt := range options {
		opt(o)
	}
	if invalid != nil {
		o.logger.Warn("using default spacing", "err", invalid)
	}
	return o
}

// PathsReplaced installs a new path collection. The expansion set resets to
// empty, the tree is rebuilt and the graph republished. In strict mode a
// malformed entry rejects the whole list and leaves the state unchanged.
func (o *Orchestrator) PathsReplaced(raw []string) (graph.Graph, error) {
	ctx := context.Background()
	start := time.Now()
	observability.Pipeline().OnRunStart(ctx, string(TriggerPaths), len(raw))

	paths, err := o.opts.Normalize(raw)
	if err != nil {
		observability.Pipeline().OnRunComplete(ctx, string(TriggerPaths), 0, 0, time.Since(start), err)
		return graph.Graph{}, err
	}

	o.paths = paths
	o.tree = tree.Build(paths)
	o.open = tree.NewExpansionSet()
	o.logger.Debug("paths replaced", "raw", len(raw), "paths", len(paths), "nodes", o.tree.Len())

	return o.run(ctx, Update{Trigger: TriggerPaths}, start), nil
}

// Toggle flips the expansion of path and re-lays-out the existing tree.
// Toggling a path that is not in the tree, or a leaf, changes nothing
// visible.
func (o *Orchestrator) Toggle(path string) graph.Graph {
	ctx := context.Background()
	start := time.Now()
	observability.Pipeline().OnRunStart(ctx, string(TriggerToggle), len(o.paths))

	if n, ok := tree.NormalizePath(path); ok {
		path = n
	}
	o.open = o.open.Toggle(path)
	opened := o.open.Has(path)
	observability.Pipeline().OnToggle(ctx, path, opened)
	o.logger.Debug("toggle", "path", path, "open", opened)

	return o.run(ctx, Update{Trigger: TriggerToggle, Path: path}, start)
}

// SetExpansion replaces the expansion set wholesale and re-lays-out the
// existing tree. It is how callers apply a seeding policy (expand to a
// depth, expand everything, restore a saved session).
func (o *Orchestrator) SetExpansion(open tree.ExpansionSet) graph.Graph {
	ctx := context.Background()
	start := time.Now()
	observability.Pipeline().OnRunStart(ctx, string(TriggerExpansion), len(o.paths))

	o.open = open
	return o.run(ctx, Update{Trigger: TriggerExpansion}, start)
}

// Graph returns the last published graph.
func (o *Orchestrator) Graph() graph.Graph { return o.graph }

// Paths returns the current normalized path list.
func (o *Orchestrator) Paths() []string { return slices.Clone(o.paths) }

// Tree returns the current tree. It must be treated as read-only.
func (o *Orchestrator) Tree() *tree.Tree { return o.tree }

// Expansion returns the current expansion set.
func (o *Orchestrator) Expansion() tree.ExpansionSet { return o.open }

// Options returns the effective options.
func (o *Orchestrator) Options() Options { return o.opts }

// Layout returns the current state as a self-contained layout document.
func (o *Orchestrator) Layout() graph.Layout {
	return graph.Layout{
		Paths:     o.Paths(),
		Expanded:  o.open.Paths(),
		NodeWidth: o.opts.NodeWidth,
		XGap:      o.opts.XGap,
		YGap:      o.opts.YGap,
		Graph:     o.graph,
	}
}

func (o *Orchestrator) run(ctx context.Context, u Update, start time.Time) graph.Graph {
	o.graph = tree.Run(o.tree, o.open, o.opts.Config())

	u.Graph = o.graph
	u.Duration = time.Since(start)
	observability.Pipeline().OnRunComplete(ctx, string(u.Trigger), o.graph.NodeCount(), o.graph.EdgeCount(), u.Duration, nil)

	for _, fn := range o.listeners {
		fn(u)
	}
	return o.graph
}
