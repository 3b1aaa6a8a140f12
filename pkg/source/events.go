package source

import (
	"bufio"
	"bytes"
	"strings"

	"github.com/goccy/go-json"

	"github.com/kafei-ai/treeflow/pkg/errors"
)

// event is one message of an assistant stream. Only the fields that carry
// structure are decoded; chat text and other event types are ignored.
type event struct {
	Type      string          `json:"type"`
	Chunk     json.RawMessage `json:"chunk"`
	Paths     []string        `json:"paths"`
	TechStack []string        `json:"tech_stack"`

	// Some backends send the whole result as the final "complete" event.
	ComponentTree *ComponentTree `json:"component_tree"`
}

// parseEvents folds a newline-delimited JSON or SSE stream into one
// document. Later events override earlier ones field by field, so the last
// component tree seen wins. Lines that are not JSON, SSE comments and the
// "[DONE]" sentinel are skipped.
func parseEvents(data []byte) (Document, error) {
	var doc Document
	seen := 0

	sc := bufio.NewScanner(bytes.NewReader(data))
	sc.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, ":") {
			continue
		}
		if rest, ok := strings.CutPrefix(line, "data:"); ok {
			line = strings.TrimSpace(rest)
		} else if strings.HasPrefix(line, "event:") || strings.HasPrefix(line, "id:") {
			continue
		}
		if line == "[DONE]" {
			continue
		}

		var ev event
		if err := json.Unmarshal([]byte(line), &ev); err != nil {
			continue
		}
		seen++
		apply(&doc, ev)
	}
	if err := sc.Err(); err != nil {
		return Document{}, errors.Wrap(errors.ErrCodeInvalidFormat, err, "read event stream")
	}
	if seen == 0 && len(bytes.TrimSpace(data)) > 0 {
		return Document{}, errors.New(errors.ErrCodeInvalidFormat, "event stream contains no JSON events")
	}
	return doc, nil
}

func apply(doc *Document, ev event) {
	switch ev.Type {
	case "component_tree":
		var ct ComponentTree
		if json.Unmarshal(ev.Chunk, &ct) == nil && !ct.Empty() {
			doc.ComponentTree = &ct
		}
	case "tech_stack":
		var stack []string
		if json.Unmarshal(ev.Chunk, &stack) == nil && len(stack) > 0 {
			doc.TechStack = stack
		}
	}
	if len(ev.Paths) > 0 {
		doc.Paths = ev.Paths
	}
	if !ev.ComponentTree.Empty() {
		doc.ComponentTree = ev.ComponentTree
	}
	if len(ev.TechStack) > 0 {
		doc.TechStack = ev.TechStack
	}
}
