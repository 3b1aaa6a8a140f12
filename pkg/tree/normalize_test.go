package tree

import (
	"errors"
	"slices"
	"testing"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name string
		raw  []string
		want []string
	}{
		{
			name: "nil input",
			raw:  nil,
			want: []string{},
		},
		{
			name: "trailing separators stripped",
			raw:  []string{"src/", "src/components//"},
			want: []string{"src", "src/components"},
		},
		{
			name: "leading and repeated separators collapse",
			raw:  []string{"/src//hooks"},
			want: []string{"src/hooks"},
		},
		{
			name: "duplicates keep first-seen order",
			raw:  []string{"b", "a", "b/", "a"},
			want: []string{"b", "a"},
		},
		{
			name: "blank entries dropped",
			raw:  []string{"", "   ", "/", "///", "src"},
			want: []string{"src"},
		},
		{
			name: "whitespace segment drops entry",
			raw:  []string{"src/  /x", "lib"},
			want: []string{"lib"},
		},
		{
			name: "segments are opaque",
			raw:  []string{"My Docs/a.b c", "ünï/©"},
			want: []string{"My Docs/a.b c", "ünï/©"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Normalize(tt.raw)
			if !slices.Equal(got, tt.want) {
				t.Errorf("Normalize(%q) = %q, want %q", tt.raw, got, tt.want)
			}
			if got == nil {
				t.Error("Normalize returned nil slice")
			}
		})
	}
}

func TestNormalizeStrict(t *testing.T) {
	got, err := NormalizeStrict([]string{"a/", "a/b"})
	if err != nil {
		t.Fatalf("NormalizeStrict error: %v", err)
	}
	if !slices.Equal(got, []string{"a", "a/b"}) {
		t.Errorf("NormalizeStrict = %q", got)
	}

	_, err = NormalizeStrict([]string{"a", "//", "  "})
	var mpe *MalformedPathError
	if !errors.As(err, &mpe) {
		t.Fatalf("expected MalformedPathError, got %v", err)
	}
	if mpe.Index != 1 || mpe.Raw != "//" {
		t.Errorf("MalformedPathError = %+v, want index 1 raw //", mpe)
	}
}

func TestPathHelpers(t *testing.T) {
	tests := []struct {
		path      string
		parent    string
		name      string
		depth     int
		ancestors []string
	}{
		{path: "a", parent: "", name: "a", depth: 0, ancestors: nil},
		{path: "a/b", parent: "a", name: "b", depth: 1, ancestors: []string{"a"}},
		{path: "x/y/z.go", parent: "x/y", name: "z.go", depth: 2, ancestors: []string{"x", "x/y"}},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			if got := Parent(tt.path); got != tt.parent {
				t.Errorf("Parent() = %q, want %q", got, tt.parent)
			}
			if got := Name(tt.path); got != tt.name {
				t.Errorf("Name() = %q, want %q", got, tt.name)
			}
			if got := Depth(tt.path); got != tt.depth {
				t.Errorf("Depth() = %d, want %d", got, tt.depth)
			}
			if got := Ancestors(tt.path); !slices.Equal(got, tt.ancestors) {
				t.Errorf("Ancestors() = %q, want %q", got, tt.ancestors)
			}
		})
	}
}
