package graph

import (
	"fmt"
	"os"

	"github.com/goccy/go-json"
)

// =============================================================================
// Layout - Self-Contained Layout Document
// =============================================================================

// Layout is the document written by "treeflow layout" and read by
// "treeflow render". It records everything needed to reproduce the graph:
// the normalized paths, the expansion state, and the spacing constants.
type Layout struct {
	Paths    []string `json:"paths" bson:"paths"`
	Expanded []string `json:"expanded" bson:"expanded"`

	NodeWidth float64 `json:"node_width" bson:"node_width"`
	XGap      float64 `json:"x_gap" bson:"x_gap"`
	YGap      float64 `json:"y_gap" bson:"y_gap"`

	Graph Graph `json:"graph" bson:"graph"`
}

// Size returns the drawing width and height, measured from the leftmost node
// edge to the rightmost and from the top row to the bottom of the last row.
func (l Layout) Size(nodeHeight float64) (width, height float64) {
	if len(l.Graph.Nodes) == 0 {
		return 0, 0
	}
	minX, maxX, maxY := l.Graph.Bounds(l.NodeWidth)
	return maxX - minX, maxY + nodeHeight
}

// =============================================================================
// Layout Serialization API
// =============================================================================

// MarshalLayout serializes a Layout to pretty-printed JSON bytes.
func MarshalLayout(l Layout) ([]byte, error) {
	l.Graph = withSlices(l.Graph)
	if l.Paths == nil {
		l.Paths = []string{}
	}
	if l.Expanded == nil {
		l.Expanded = []string{}
	}
	return json.MarshalIndent(l, "", "  ")
}

// UnmarshalLayout deserializes JSON bytes into a Layout.
// Spacing constants must be positive.
func UnmarshalLayout(data []byte) (Layout, error) {
	var l Layout
	if err := json.Unmarshal(data, &l); err != nil {
		return Layout{}, fmt.Errorf("unmarshal layout: %w", err)
	}
	if l.NodeWidth <= 0 {
		return Layout{}, fmt.Errorf("layout must have a positive node_width")
	}
	l.Graph = withSlices(l.Graph)
	return l, nil
}

// WriteLayoutFile writes a Layout to a JSON file.
func WriteLayoutFile(l Layout, path string) error {
	data, err := MarshalLayout(l)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// ReadLayoutFile reads a Layout from a JSON file.
func ReadLayoutFile(path string) (Layout, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Layout{}, fmt.Errorf("read %s: %w", path, err)
	}
	return UnmarshalLayout(data)
}
