package source

import (
	"os"
	"path/filepath"
	"slices"
	"testing"

	"github.com/kafei-ai/treeflow/pkg/errors"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name   string
		format Format
		input  string
		want   []string
	}{
		{
			name:   "json list",
			format: FormatJSON,
			input:  `["src/app.go", "src/lib"]`,
			want:   []string{"src/app.go", "src/lib"},
		},
		{
			name:   "json wrapped",
			format: FormatJSON,
			input:  `{"paths": ["a", "a/b"]}`,
			want:   []string{"a", "a/b"},
		},
		{
			name:   "json assistant result",
			format: FormatJSON,
			input: `{
				"system_design": "# Architecture",
				"tech_stack": ["React", "TypeScript"],
				"component_tree": {"folders": ["src/components", "src/hooks"], "files": ["src/main.tsx"]}
			}`,
			want: []string{"src/components", "src/hooks", "src/main.tsx"},
		},
		{
			name:   "json tech stack fallback",
			format: FormatJSON,
			input:  `{"tech_stack": ["React", "TypeScript", "Node.js"], "component_tree": {"folders": []}}`,
			want:   []string{"React", "React/TypeScript", "React/TypeScript/Node.js"},
		},
		{
			name:   "json empty document",
			format: FormatJSON,
			input:  `{}`,
			want:   []string{},
		},
		{
			name:   "yaml list",
			format: FormatYAML,
			input:  "- docs\n- docs/intro.md\n",
			want:   []string{"docs", "docs/intro.md"},
		},
		{
			name:   "yaml result",
			format: FormatYAML,
			input:  "component_tree:\n  folders:\n    - cmd\n    - internal/server\n",
			want:   []string{"cmd", "internal/server"},
		},
		{
			name:   "text",
			format: FormatText,
			input:  "# project\nsrc/app.go\n\n  src/lib  \n# trailing\n",
			want:   []string{"src/app.go", "src/lib"},
		},
		{
			name:   "auto json",
			format: FormatAuto,
			input:  `  ["x"]`,
			want:   []string{"x"},
		},
		{
			name:   "auto text",
			format: FormatAuto,
			input:  "a/b\nc",
			want:   []string{"a/b", "c"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc, err := Parse([]byte(tt.input), tt.format)
			if err != nil {
				t.Fatalf("Parse() error: %v", err)
			}
			if got := doc.TreePaths(); !slices.Equal(got, tt.want) {
				t.Errorf("TreePaths() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name   string
		format Format
		input  string
	}{
		{"json truncated", FormatJSON, `["a",`},
		{"json wrong type", FormatJSON, `{"paths": "a"}`},
		{"yaml scalar", FormatYAML, "just a string"},
		{"yaml invalid", FormatYAML, "paths: [a, b"},
		{"events without json", FormatEvents, "hello\nworld\n"},
		{"unknown format", Format("xml"), "<a/>"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.input), tt.format)
			if !errors.Is(err, errors.ErrCodeInvalidFormat) {
				t.Errorf("Parse() error = %v, want %s", err, errors.ErrCodeInvalidFormat)
			}
		})
	}
}

func TestParseEvents(t *testing.T) {
	stream := `data: {"type": "chat", "reply": "Working on it"}
: keepalive
data: {"type": "system_design", "chunk": "# Design"}
data: {"type": "component_tree", "chunk": {"folders": ["src/old"]}}
data: not json
data: {"type": "component_tree", "chunk": {"folders": ["src/components", "src/services"]}}
data: [DONE]
`
	doc, err := Parse([]byte(stream), FormatEvents)
	if err != nil {
		t.Fatalf("Parse() error: %v", err)
	}
	want := []string{"src/components", "src/services"}
	if got := doc.TreePaths(); !slices.Equal(got, want) {
		t.Errorf("TreePaths() = %q, want %q", got, want)
	}
}

func TestParseEventsNDJSON(t *testing.T) {
	stream := `{"type": "tech_stack", "chunk": ["Go", "Postgres"]}
{"type": "done"}
`
	doc, err := Parse([]byte(stream), FormatAuto)
	if err != nil {
		t.Fatalf("Parse() error: %v", err)
	}
	want := []string{"Go", "Go/Postgres"}
	if got := doc.TreePaths(); !slices.Equal(got, want) {
		t.Errorf("TreePaths() = %q, want %q", got, want)
	}
}

func TestParseEventsCompleteResult(t *testing.T) {
	stream := `{"type": "complete", "component_tree": {"files": ["README.md"]}, "tech_stack": ["Go"]}`
	doc, err := Parse([]byte(stream), FormatEvents)
	if err != nil {
		t.Fatal(err)
	}
	if got := doc.TreePaths(); !slices.Equal(got, []string{"README.md"}) {
		t.Errorf("TreePaths() = %q", got)
	}
}

func TestDetectFormat(t *testing.T) {
	tests := []struct {
		name string
		file string
		data string
		want Format
	}{
		{"json ext", "paths.json", "", FormatJSON},
		{"yaml ext", "tree.YML", "", FormatYAML},
		{"text ext", "list.txt", "[", FormatText},
		{"events ext", "chat.ndjson", "", FormatEvents},
		{"sse content", "", "data: {}\n", FormatEvents},
		{"array content", "", "[]", FormatJSON},
		{"object content", "", `{"paths":[]}`, FormatJSON},
		{"object stream", "", "{\"type\":\"a\"}\n{\"type\":\"b\"}", FormatEvents},
		{"yaml content", "", "paths:\n  - a", FormatYAML},
		{"yaml list content", "", "- a\n- b", FormatYAML},
		{"fallback", "", "src/app.go", FormatText},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := DetectFormat(tt.file, []byte(tt.data)); got != tt.want {
				t.Errorf("DetectFormat(%q) = %q, want %q", tt.file, got, tt.want)
			}
		})
	}
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in      string
		want    Format
		wantErr bool
	}{
		{"", FormatAuto, false},
		{"auto", FormatAuto, false},
		{"JSON", FormatJSON, false},
		{"yml", FormatYAML, false},
		{"txt", FormatText, false},
		{"sse", FormatEvents, false},
		{"events", FormatEvents, false},
		{"xml", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseFormat(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseFormat(%q) error = %v", tt.in, err)
			}
			if got != tt.want {
				t.Errorf("ParseFormat(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestReadFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "tree.yaml")
	if err := os.WriteFile(path, []byte("paths: [a, a/b]\n"), 0644); err != nil {
		t.Fatal(err)
	}

	doc, err := ReadFile(path, FormatAuto)
	if err != nil {
		t.Fatalf("ReadFile() error: %v", err)
	}
	if got := doc.TreePaths(); !slices.Equal(got, []string{"a", "a/b"}) {
		t.Errorf("TreePaths() = %q", got)
	}

	if _, err := ReadFile(filepath.Join(dir, "missing.json"), FormatAuto); !errors.Is(err, errors.ErrCodeNotFound) {
		t.Errorf("ReadFile(missing) error = %v, want %s", err, errors.ErrCodeNotFound)
	}
}

func TestTreePathsDoesNotAlias(t *testing.T) {
	doc := Document{Paths: []string{"a"}}
	got := doc.TreePaths()
	got[0] = "mutated"
	if doc.Paths[0] != "a" {
		t.Error("TreePaths() aliased the document slice")
	}
}
