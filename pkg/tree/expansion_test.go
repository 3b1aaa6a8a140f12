package tree

import (
	"slices"
	"testing"
)

func TestExpansionSetToggle(t *testing.T) {
	empty := ExpansionSet{}
	if empty.Has("a") || empty.Len() != 0 {
		t.Fatal("zero value should be empty")
	}

	s1 := empty.Toggle("a")
	if !s1.Has("a") {
		t.Error("Toggle should add an absent path")
	}
	if empty.Has("a") {
		t.Error("Toggle must not modify the receiver")
	}

	s2 := s1.Toggle("a")
	if s2.Has("a") {
		t.Error("Toggle should remove a present path")
	}
	if !s1.Has("a") {
		t.Error("Toggle must not modify the receiver")
	}
	if !s2.Equal(empty) {
		t.Error("toggling twice should restore the original set")
	}
}

func TestExpansionSetPathsSorted(t *testing.T) {
	s := NewExpansionSet("c", "a/b", "a")
	if want := []string{"a", "a/b", "c"}; !slices.Equal(s.Paths(), want) {
		t.Errorf("Paths() = %q, want %q", s.Paths(), want)
	}
}

func TestExpansionSetEqual(t *testing.T) {
	tests := []struct {
		name string
		a, b ExpansionSet
		want bool
	}{
		{name: "both empty", a: ExpansionSet{}, b: NewExpansionSet(), want: true},
		{name: "same members", a: NewExpansionSet("a", "b"), b: NewExpansionSet("b", "a"), want: true},
		{name: "different size", a: NewExpansionSet("a"), b: NewExpansionSet("a", "b"), want: false},
		{name: "different members", a: NewExpansionSet("a"), b: NewExpansionSet("b"), want: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.a.Equal(tt.b); got != tt.want {
				t.Errorf("Equal() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestExpandToDepth(t *testing.T) {
	tr := Build([]string{"a/b/c", "a/d", "e", "f/g"})

	tests := []struct {
		depth int
		want  []string
	}{
		{depth: 0, want: []string{}},
		{depth: 1, want: []string{"a", "f"}},
		{depth: 2, want: []string{"a", "a/b", "f"}},
		{depth: 9, want: []string{"a", "a/b", "f"}},
	}
	for _, tt := range tests {
		got := ExpandToDepth(tr, tt.depth).Paths()
		if !slices.Equal(got, tt.want) {
			t.Errorf("ExpandToDepth(%d) = %q, want %q", tt.depth, got, tt.want)
		}
	}

	if got := ExpandAll(tr).Paths(); !slices.Equal(got, []string{"a", "a/b", "f"}) {
		t.Errorf("ExpandAll() = %q", got)
	}
}
