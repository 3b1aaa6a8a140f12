package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/log"

	"github.com/kafei-ai/treeflow/pkg/cache"
	"github.com/kafei-ai/treeflow/pkg/errors"
	"github.com/kafei-ai/treeflow/pkg/graph"
	"github.com/kafei-ai/treeflow/pkg/observability"
	"github.com/kafei-ai/treeflow/pkg/render"
	"github.com/kafei-ai/treeflow/pkg/tree"
)

// Runner computes one-shot layouts and renders them, with caching.
// Both CLI and API use it to avoid duplicating caching logic.
//
// The Runner is stateless except for the cache and logger. Multiple
// goroutines can safely use the same Runner with different options.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Logger *log.Logger
}

// NewRunner creates a runner with the given cache and keyer.
// If keyer is nil, a DefaultKeyer is used.
// If cache is nil, a NullCache is used (caching disabled).
func NewRunner(c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{
		Cache:  c,
		Keyer:  keyer,
		Logger: logger,
	}
}

// Close releases the cache.
func (r *Runner) Close() error {
	return r.Cache.Close()
}

// Layout normalizes raw, seeds the expansion set from opts and returns the
// layout document. The bool reports a cache hit.
func (r *Runner) Layout(ctx context.Context, raw []string, opts Options) (graph.Layout, bool, error) {
	if err := errors.ValidatePathList(raw); err != nil {
		return graph.Layout{}, false, err
	}
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return graph.Layout{}, false, err
	}

	start := time.Now()
	observability.Pipeline().OnRunStart(ctx, string(TriggerPaths), len(raw))

	paths, err := opts.Normalize(raw)
	if err != nil {
		observability.Pipeline().OnRunComplete(ctx, string(TriggerPaths), 0, 0, time.Since(start), err)
		return graph.Layout{}, false, err
	}
	t := tree.Build(paths)
	open := opts.Seed(t)

	key := r.Keyer.LayoutKey(cache.HashPaths(paths), opts.LayoutKeyOpts(open))
	if data, hit, err := r.Cache.Get(ctx, key); err == nil && hit {
		if cached, err := graph.UnmarshalLayout(data); err == nil {
			observability.Cache().OnCacheHit(ctx, "layout")
			r.Logger.Debug("layout cache hit", "paths", len(paths))
			return cached, true, nil
		}
		// Undecodable entry: fall through and overwrite it.
	} else if err != nil {
		r.Logger.Warn("layout cache read failed", "err", err)
	}
	observability.Cache().OnCacheMiss(ctx, "layout")

	g := tree.Run(t, open, opts.Config())
	l := graph.Layout{
		Paths:     paths,
		Expanded:  open.Paths(),
		NodeWidth: opts.NodeWidth,
		XGap:      opts.XGap,
		YGap:      opts.YGap,
		Graph:     g,
	}
	observability.Pipeline().OnRunComplete(ctx, string(TriggerPaths), g.NodeCount(), g.EdgeCount(), time.Since(start), nil)

	if data, err := graph.MarshalLayout(l); err == nil {
		if err := r.Cache.Set(ctx, key, data, cache.TTLLayout); err != nil {
			r.Logger.Warn("layout cache write failed", "err", err)
		} else {
			observability.Cache().OnCacheSet(ctx, "layout", len(data))
		}
	}

	r.Logger.Debug("computed layout",
		"paths", len(paths),
		"nodes", g.NodeCount(),
		"edges", g.EdgeCount(),
		"duration", time.Since(start))
	return l, false, nil
}

// Render renders l in the requested format. The bool reports a cache hit.
func (r *Runner) Render(ctx context.Context, l graph.Layout, opts render.Options) ([]byte, bool, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, false, err
	}

	layoutData, err := graph.MarshalLayout(l)
	if err != nil {
		return nil, false, fmt.Errorf("serialize layout for cache key: %w", err)
	}
	key := r.Keyer.ArtifactKey(cache.Hash(layoutData), cache.ArtifactKeyOpts{
		Format: opts.Format,
		Engine: opts.Engine,
	})

	if data, hit, err := r.Cache.Get(ctx, key); err == nil && hit {
		observability.Cache().OnCacheHit(ctx, "artifact")
		return data, true, nil
	}
	observability.Cache().OnCacheMiss(ctx, "artifact")

	start := time.Now()
	observability.Pipeline().OnRenderStart(ctx, opts.Format)
	data, err := render.Render(ctx, l, opts)
	observability.Pipeline().OnRenderComplete(ctx, opts.Format, len(data), time.Since(start), err)
	if err != nil {
		return nil, false, fmt.Errorf("render %s: %w", opts.Format, err)
	}

	if err := r.Cache.Set(ctx, key, data, cache.TTLArtifact); err == nil {
		observability.Cache().OnCacheSet(ctx, "artifact", len(data))
	}

	r.Logger.Debug("rendered",
		"format", opts.Format,
		"engine", opts.Engine,
		"bytes", len(data),
		"duration", time.Since(start))
	return data, false, nil
}
