// Package source decodes path lists from the documents treeflow accepts.
//
// # Shapes
//
// Every structured format accepts the same three shapes:
//
//	["src/app.go", "src/lib"]                      plain list
//	{"paths": ["src/app.go"]}                       wrapped list
//	{"component_tree": {"folders": [...], "files": [...]},
//	 "tech_stack": ["React", "Vite"]}               assistant result
//
// An assistant result yields its component tree when it has one and falls
// back to the tech stack otherwise, laid out as a single chain (see
// [tree.ChainPaths]).
//
// # Formats
//
//   - JSON and YAML documents
//   - Plain text, one path per line, "#" starts a comment
//   - Event streams: newline-delimited JSON or Server-Sent Events "data:"
//     lines, where a "component_tree" event carries the tree in its chunk
//
// [DetectFormat] picks a format from the file extension and falls back to
// sniffing the content.
//
// Decoding never normalizes: callers hand the raw list to the pipeline,
// which owns normalization and strictness.
package source
