package source

import (
	"bufio"
	"bytes"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/goccy/go-json"
	"gopkg.in/yaml.v3"

	"github.com/kafei-ai/treeflow/pkg/errors"
	"github.com/kafei-ai/treeflow/pkg/tree"
)

// Format identifies an input encoding.
type Format string

// Supported formats.
const (
	FormatAuto   Format = ""
	FormatJSON   Format = "json"
	FormatYAML   Format = "yaml"
	FormatText   Format = "text"
	FormatEvents Format = "events"
)

// Formats lists the explicit formats, for flag help and completion.
var Formats = []Format{FormatJSON, FormatYAML, FormatText, FormatEvents}

// ParseFormat validates a user-supplied format name. The empty string and
// "auto" select detection.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(s)); f {
	case FormatAuto, "auto":
		return FormatAuto, nil
	case "yml":
		return FormatYAML, nil
	case "txt":
		return FormatText, nil
	case "ndjson", "jsonl", "sse":
		return FormatEvents, nil
	default:
		if slices.Contains(Formats, f) {
			return f, nil
		}
		return "", errors.New(errors.ErrCodeInvalidFormat, "unknown input format %q", s)
	}
}

// ComponentTree is the project structure of an assistant result.
type ComponentTree struct {
	Folders []string `json:"folders,omitempty" yaml:"folders,omitempty"`
	Files   []string `json:"files,omitempty" yaml:"files,omitempty"`
}

// Empty reports whether the tree lists nothing.
func (c *ComponentTree) Empty() bool {
	return c == nil || len(c.Folders) == 0 && len(c.Files) == 0
}

// Document is a decoded input. At most one of its sources is used, in the
// order Paths, ComponentTree, TechStack.
type Document struct {
	Paths         []string       `json:"paths,omitempty" yaml:"paths,omitempty"`
	ComponentTree *ComponentTree `json:"component_tree,omitempty" yaml:"component_tree,omitempty"`
	TechStack     []string       `json:"tech_stack,omitempty" yaml:"tech_stack,omitempty"`
}

// TreePaths returns the raw path list the document describes.
func (d Document) TreePaths() []string {
	switch {
	case len(d.Paths) > 0:
		return slices.Clone(d.Paths)
	case !d.ComponentTree.Empty():
		return slices.Concat(d.ComponentTree.Folders, d.ComponentTree.Files)
	case len(d.TechStack) > 0:
		return tree.ChainPaths(d.TechStack)
	default:
		return []string{}
	}
}

// DetectFormat picks a format from name's extension, then from the content.
func DetectFormat(name string, data []byte) Format {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".json":
		return FormatJSON
	case ".yaml", ".yml":
		return FormatYAML
	case ".txt", ".paths":
		return FormatText
	case ".ndjson", ".jsonl", ".sse":
		return FormatEvents
	}

	trimmed := bytes.TrimSpace(data)
	switch {
	case bytes.HasPrefix(trimmed, []byte("data:")):
		return FormatEvents
	case bytes.HasPrefix(trimmed, []byte("[")):
		return FormatJSON
	case bytes.HasPrefix(trimmed, []byte("{")):
		// A single object is a document; several lines of objects are a stream.
		if json.Valid(trimmed) {
			return FormatJSON
		}
		return FormatEvents
	case bytes.HasPrefix(trimmed, []byte("paths:")),
		bytes.HasPrefix(trimmed, []byte("component_tree:")),
		bytes.HasPrefix(trimmed, []byte("tech_stack:")),
		bytes.HasPrefix(trimmed, []byte("- ")):
		return FormatYAML
	default:
		return FormatText
	}
}

// Parse decodes data in the given format. FormatAuto sniffs the content.
func Parse(data []byte, f Format) (Document, error) {
	if f == FormatAuto {
		f = DetectFormat("", data)
	}
	switch f {
	case FormatJSON:
		return parseJSON(data)
	case FormatYAML:
		return parseYAML(data)
	case FormatText:
		return parseText(data), nil
	case FormatEvents:
		return parseEvents(data)
	default:
		return Document{}, errors.New(errors.ErrCodeInvalidFormat, "unknown input format %q", f)
	}
}

// ReadFile reads and decodes the file at path, detecting its format unless
// f is explicit.
func ReadFile(path string, f Format) (Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Document{}, errors.Wrap(errors.ErrCodeNotFound, err, "read %s", path)
	}
	if f == FormatAuto {
		f = DetectFormat(path, data)
	}
	doc, err := Parse(data, f)
	if err != nil {
		return Document{}, err
	}
	return doc, nil
}

// =============================================================================
// Structured formats
// =============================================================================

func parseJSON(data []byte) (Document, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return Document{}, nil
	}
	if trimmed[0] == '[' {
		var paths []string
		if err := json.Unmarshal(trimmed, &paths); err != nil {
			return Document{}, errors.Wrap(errors.ErrCodeInvalidFormat, err, "decode json path list")
		}
		return Document{Paths: paths}, nil
	}
	var doc Document
	if err := json.Unmarshal(trimmed, &doc); err != nil {
		return Document{}, errors.Wrap(errors.ErrCodeInvalidFormat, err, "decode json document")
	}
	return doc, nil
}

func parseYAML(data []byte) (Document, error) {
	var node yaml.Node
	if err := yaml.Unmarshal(data, &node); err != nil {
		return Document{}, errors.Wrap(errors.ErrCodeInvalidFormat, err, "decode yaml")
	}
	if len(node.Content) == 0 {
		return Document{}, nil
	}

	root := node.Content[0]
	switch root.Kind {
	case yaml.SequenceNode:
		var paths []string
		if err := root.Decode(&paths); err != nil {
			return Document{}, errors.Wrap(errors.ErrCodeInvalidFormat, err, "decode yaml path list")
		}
		return Document{Paths: paths}, nil
	case yaml.MappingNode:
		var doc Document
		if err := root.Decode(&doc); err != nil {
			return Document{}, errors.Wrap(errors.ErrCodeInvalidFormat, err, "decode yaml document")
		}
		return doc, nil
	default:
		return Document{}, errors.New(errors.ErrCodeInvalidFormat, "yaml input must be a list or a mapping")
	}
}

func parseText(data []byte) Document {
	paths := []string{}
	sc := bufio.NewScanner(bytes.NewReader(data))
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		paths = append(paths, line)
	}
	return Document{Paths: paths}
}
