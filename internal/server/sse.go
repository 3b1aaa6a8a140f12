package server

import (
	"fmt"
	"net/http"

	"github.com/goccy/go-json"

	"github.com/kafei-ai/treeflow/pkg/errors"
	"github.com/kafei-ai/treeflow/pkg/graph"
)

// eventStream writes Server-Sent Events and flushes after each one.
type eventStream struct {
	w       http.ResponseWriter
	flusher http.Flusher
}

func newEventStream(w http.ResponseWriter) (*eventStream, error) {
	f, ok := w.(http.Flusher)
	if !ok {
		return nil, errors.New(errors.ErrCodeUnsupported, "streaming not supported by this connection")
	}
	return &eventStream{w: w, flusher: f}, nil
}

// start sends the stream headers.
func (e *eventStream) start() {
	h := e.w.Header()
	h.Set("Content-Type", "text/event-stream")
	h.Set("Cache-Control", "no-cache")
	h.Set("Connection", "keep-alive")
	h.Set("X-Accel-Buffering", "no") // disable nginx buffering
	e.w.WriteHeader(http.StatusOK)
	e.flusher.Flush()
}

// send writes one event. data must not contain newlines; compact JSON
// never does.
func (e *eventStream) send(event string, data []byte) error {
	if _, err := fmt.Fprintf(e.w, "event: %s\ndata: %s\n\n", event, data); err != nil {
		return fmt.Errorf("write event: %w", err)
	}
	e.flusher.Flush()
	return nil
}

func (e *eventStream) sendGraph(g graph.Graph) error {
	data, err := json.Marshal(g)
	if err != nil {
		return fmt.Errorf("encode graph: %w", err)
	}
	return e.send(streamEvent, data)
}

// keepAlive writes an SSE comment so proxies keep the connection open.
func (e *eventStream) keepAlive() error {
	if _, err := fmt.Fprint(e.w, ": keepalive\n\n"); err != nil {
		return fmt.Errorf("write keepalive: %w", err)
	}
	e.flusher.Flush()
	return nil
}
