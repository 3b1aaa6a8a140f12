// Package observability provides hooks for metrics, tracing, and logging.
//
// Hooks let main attach metrics or tracing to layout runs, expansion
// toggles, cache lookups and served HTTP requests without pkg/tree or
// pkg/pipeline importing a metrics framework. Every category defaults to a
// no-op; [LogHooks] is the one backend shipped here and writes each event to a
// charmbracelet logger at debug level.
//
// # Usage
//
// Register hooks at application startup:
//
//	func main() {
//	    observability.SetPipelineHooks(observability.NewLogHooks(logger))
//	    // ... run application
//	}
//
// Libraries call hooks to emit events:
//
//	observability.Pipeline().OnRunStart(ctx, "paths", len(raw))
//	// ... lay out ...
//	observability.Pipeline().OnRunComplete(ctx, "paths", nodes, edges, duration, err)
package observability

import (
	"context"
	"sync"
	"sync/atomic"
	"time"
)

// =============================================================================
// Pipeline Hooks
// =============================================================================

// PipelineHooks receives events from the layout pipeline.
type PipelineHooks interface {
	// Run events. Trigger is "paths" when the path list was replaced and
	// "toggle" when the expansion set changed.
	OnRunStart(ctx context.Context, trigger string, pathCount int)
	OnRunComplete(ctx context.Context, trigger string, nodeCount, edgeCount int, duration time.Duration, err error)

	// OnToggle records an expansion change. Open is the node's new state.
	OnToggle(ctx context.Context, path string, open bool)

	// Render events
	OnRenderStart(ctx context.Context, format string)
	OnRenderComplete(ctx context.Context, format string, size int, duration time.Duration, err error)
}

// =============================================================================
// Cache Hooks
// =============================================================================

// CacheHooks receives events from cache operations.
type CacheHooks interface {
	// OnCacheHit records a cache hit.
	OnCacheHit(ctx context.Context, keyType string)

	// OnCacheMiss records a cache miss.
	OnCacheMiss(ctx context.Context, keyType string)

	// OnCacheSet records a cache write.
	OnCacheSet(ctx context.Context, keyType string, size int)
}

// =============================================================================
// HTTP Hooks
// =============================================================================

// HTTPHooks receives events from the HTTP service.
type HTTPHooks interface {
	// OnRequest records an incoming request. Route is the matched pattern,
	// not the raw path, so session ids do not explode cardinality.
	OnRequest(ctx context.Context, method, route string)

	// OnResponse records a completed response.
	OnResponse(ctx context.Context, method, route string, statusCode int, duration time.Duration)

	// OnStream records an event stream opening (delta 1) or closing (delta -1).
	OnStream(ctx context.Context, sessionID string, delta int)
}

// =============================================================================
// No-op Implementations
// =============================================================================

// NoopPipelineHooks is a no-op implementation of PipelineHooks.
type NoopPipelineHooks struct{}

func (NoopPipelineHooks) OnRunStart(context.Context, string, int) {}
func (NoopPipelineHooks) OnRunComplete(context.Context, string, int, int, time.Duration, error) {
}
func (NoopPipelineHooks) OnToggle(context.Context, string, bool)                             {}
func (NoopPipelineHooks) OnRenderStart(context.Context, string)                              {}
func (NoopPipelineHooks) OnRenderComplete(context.Context, string, int, time.Duration, error) {}

// NoopCacheHooks is a no-op implementation of CacheHooks.
type NoopCacheHooks struct{}

func (NoopCacheHooks) OnCacheHit(context.Context, string)      {}
func (NoopCacheHooks) OnCacheMiss(context.Context, string)     {}
func (NoopCacheHooks) OnCacheSet(context.Context, string, int) {}

// NoopHTTPHooks is a no-op implementation of HTTPHooks.
type NoopHTTPHooks struct{}

func (NoopHTTPHooks) OnRequest(context.Context, string, string)                      {}
func (NoopHTTPHooks) OnResponse(context.Context, string, string, int, time.Duration) {}
func (NoopHTTPHooks) OnStream(context.Context, string, int)                          {}

// =============================================================================
// Registry
// =============================================================================

// hookSet is swapped as a whole so readers never see a half-updated set.
type hookSet struct {
	pipeline PipelineHooks
	cache    CacheHooks
	http     HTTPHooks
}

var (
	current atomic.Pointer[hookSet]
	writeMu sync.Mutex
)

func init() { Reset() }

func update(fn func(*hookSet)) {
	writeMu.Lock()
	defer writeMu.Unlock()
	next := *current.Load()
	fn(&next)
	current.Store(&next)
}

// SetPipelineHooks registers pipeline hooks. A nil h is ignored.
func SetPipelineHooks(h PipelineHooks) {
	if h != nil {
		update(func(s *hookSet) { s.pipeline = h })
	}
}

// SetCacheHooks registers cache hooks. A nil h is ignored.
func SetCacheHooks(h CacheHooks) {
	if h != nil {
		update(func(s *hookSet) { s.cache = h })
	}
}

// SetHTTPHooks registers HTTP hooks. Call it before the server starts.
func SetHTTPHooks(h HTTPHooks) {
	if h != nil {
		update(func(s *hookSet) { s.http = h })
	}
}

// Pipeline returns the registered pipeline hooks.
func Pipeline() PipelineHooks { return current.Load().pipeline }

// Cache returns the registered cache hooks.
func Cache() CacheHooks { return current.Load().cache }

// HTTP returns the registered HTTP hooks.
func HTTP() HTTPHooks { return current.Load().http }

// Reset restores every category to its no-op default. Tests use it to undo
// registrations.
func Reset() {
	writeMu.Lock()
	defer writeMu.Unlock()
	current.Store(&hookSet{
		pipeline: NoopPipelineHooks{},
		cache:    NoopCacheHooks{},
		http:     NoopHTTPHooks{},
	})
}
