package graph

import (
	"bytes"
	"fmt"
	"io"

	"github.com/goccy/go-json"
)

// =============================================================================
// Graph Serialization API
// =============================================================================

// MarshalGraph converts a Graph to compact JSON bytes.
// Nil slices are emitted as empty arrays.
func MarshalGraph(g Graph) ([]byte, error) {
	return json.Marshal(withSlices(g))
}

// UnmarshalGraph deserializes JSON bytes to a Graph.
func UnmarshalGraph(data []byte) (Graph, error) {
	var g Graph
	if err := json.Unmarshal(data, &g); err != nil {
		return Graph{}, fmt.Errorf("unmarshal graph: %w", err)
	}
	return withSlices(g), nil
}

// WriteGraph writes a Graph as indented JSON to an io.Writer.
func WriteGraph(g Graph, w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(withSlices(g)); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return nil
}

// ReadGraph decodes a JSON graph from an io.Reader.
func ReadGraph(r io.Reader) (Graph, error) {
	var g Graph
	if err := json.NewDecoder(r).Decode(&g); err != nil {
		return Graph{}, fmt.Errorf("decode: %w", err)
	}
	return withSlices(g), nil
}

// Equal reports whether two graphs serialize to the same bytes.
func Equal(a, b Graph) bool {
	da, errA := MarshalGraph(a)
	db, errB := MarshalGraph(b)
	return errA == nil && errB == nil && bytes.Equal(da, db)
}

func withSlices(g Graph) Graph {
	if g.Nodes == nil {
		g.Nodes = []Node{}
	}
	if g.Edges == nil {
		g.Edges = []Edge{}
	}
	return g
}
