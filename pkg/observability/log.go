package observability

import (
	"context"
	"time"

	"github.com/charmbracelet/log"
)

// LogHooks implements every hook interface by writing debug lines to a
// logger. It is what "--verbose" installs.
type LogHooks struct {
	logger *log.Logger
}

// NewLogHooks returns hooks that log to logger under the "obs" prefix.
func NewLogHooks(logger *log.Logger) *LogHooks {
	return &LogHooks{logger: logger.WithPrefix("obs")}
}

// Install registers h for all event categories.
func (h *LogHooks) Install() {
	SetPipelineHooks(h)
	SetCacheHooks(h)
	SetHTTPHooks(h)
}

func (h *LogHooks) OnRunStart(_ context.Context, trigger string, pathCount int) {
	h.logger.Debug("run start", "trigger", trigger, "paths", pathCount)
}

func (h *LogHooks) OnRunComplete(_ context.Context, trigger string, nodeCount, edgeCount int, d time.Duration, err error) {
	if err != nil {
		h.logger.Debug("run failed", "trigger", trigger, "duration", d, "err", err)
		return
	}
	h.logger.Debug("run done", "trigger", trigger, "nodes", nodeCount, "edges", edgeCount, "duration", d)
}

func (h *LogHooks) OnToggle(_ context.Context, path string, open bool) {
	h.logger.Debug("toggle", "path", path, "open", open)
}

func (h *LogHooks) OnRenderStart(_ context.Context, format string) {
	h.logger.Debug("render start", "format", format)
}

func (h *LogHooks) OnRenderComplete(_ context.Context, format string, size int, d time.Duration, err error) {
	h.logger.Debug("render done", "format", format, "bytes", size, "duration", d, "err", err)
}

func (h *LogHooks) OnCacheHit(_ context.Context, keyType string) {
	h.logger.Debug("cache hit", "type", keyType)
}

func (h *LogHooks) OnCacheMiss(_ context.Context, keyType string) {
	h.logger.Debug("cache miss", "type", keyType)
}

func (h *LogHooks) OnCacheSet(_ context.Context, keyType string, size int) {
	h.logger.Debug("cache set", "type", keyType, "bytes", size)
}

func (h *LogHooks) OnRequest(_ context.Context, method, route string) {
	h.logger.Debug("request", "method", method, "route", route)
}

func (h *LogHooks) OnResponse(_ context.Context, method, route string, status int, d time.Duration) {
	h.logger.Debug("response", "method", method, "route", route, "status", status, "duration", d)
}

func (h *LogHooks) OnStream(_ context.Context, sessionID string, delta int) {
	h.logger.Debug("stream", "session", sessionID, "delta", delta)
}
