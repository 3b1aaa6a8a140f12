package pipeline

import (
	stderrors "errors"
	"slices"
	"testing"

	"github.com/kafei-ai/treeflow/pkg/errors"
	"github.com/kafei-ai/treeflow/pkg/tree"
)

func TestOptionsSetDefaults(t *testing.T) {
	var o Options
	o.SetDefaults()

	if o.NodeWidth != DefaultNodeWidth || o.XGap != DefaultXGap || o.YGap != DefaultYGap {
		t.Errorf("SetDefaults() spacing = %v/%v/%v", o.NodeWidth, o.XGap, o.YGap)
	}
	if o.Logger == nil {
		t.Error("SetDefaults() left Logger nil")
	}

	custom := Options{NodeWidth: 10, XGap: 2, YGap: 5}
	custom.SetDefaults()
	if custom.Config() != (tree.Config{NodeWidth: 10, XGap: 2, YGap: 5}) {
		t.Errorf("SetDefaults() overwrote explicit spacing: %+v", custom.Config())
	}
}

func TestOptionsValidate(t *testing.T) {
	tests := []struct {
		name    string
		opts    Options
		wantErr bool
	}{
		{"defaults", Options{}, false},
		{"custom", Options{NodeWidth: 120, XGap: 10, YGap: 80, ExpandDepth: 3}, false},
		{"negative gap", Options{XGap: -1}, true},
		{"negative y gap", Options{YGap: -5}, true},
		{"tiny node", Options{NodeWidth: 0.5}, true},
		{"negative depth", Options{ExpandDepth: -1}, true},
		{"deep", Options{ExpandDepth: MaxExpandDepth + 1}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts := tt.opts
			err := opts.ValidateAndSetDefaults()
			if (err != nil) != tt.wantErr {
				t.Fatalf("ValidateAndSetDefaults() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, errors.ErrCodeInvalidInput) {
				t.Errorf("error code = %q, want %q", errors.GetCode(err), errors.ErrCodeInvalidInput)
			}
		})
	}
}

func TestOptionsNormalize(t *testing.T) {
	raw := []string{"a/", "", "a//b"}

	lenient, err := Options{}.Normalize(raw)
	if err != nil {
		t.Fatalf("lenient Normalize() error: %v", err)
	}
	if !slices.Equal(lenient, []string{"a", "a/b"}) {
		t.Errorf("lenient Normalize() = %q", lenient)
	}

	_, err = Options{Strict: true}.Normalize(raw)
	if !errors.Is(err, errors.ErrCodeInvalidPath) {
		t.Fatalf("strict Normalize() error = %v, want %s", err, errors.ErrCodeInvalidPath)
	}
	var malformed *tree.MalformedPathError
	if !stderrors.As(err, &malformed) || malformed.Index != 1 {
		t.Errorf("strict Normalize() error = %v, want MalformedPathError at index 1", err)
	}
}

func TestOptionsSeed(t *testing.T) {
	tr := tree.Build([]string{"a/b/c", "a/d", "e", "f/g"})

	tests := []struct {
		name string
		opts Options
		want []string
	}{
		{"none", Options{}, nil},
		{"explicit", Options{Expanded: []string{"/f/"}}, []string{"f"}},
		{"depth one", Options{ExpandDepth: 1}, []string{"a", "f"}},
		{"depth plus explicit", Options{ExpandDepth: 1, Expanded: []string{"a/b"}}, []string{"a", "a/b", "f"}},
		{"all", Options{ExpandAll: true}, []string{"a", "a/b", "f"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.opts.Seed(tr).Paths()
			if !slices.Equal(got, tt.want) && !(len(got) == 0 && len(tt.want) == 0) {
				t.Errorf("Seed() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestLayoutKeyOpts(t *testing.T) {
	o := Options{}
	o.SetDefaults()

	k := o.LayoutKeyOpts(tree.NewExpansionSet("b", "a"))
	if !slices.Equal(k.Expanded, []string{"a", "b"}) {
		t.Errorf("Expanded = %q, want sorted", k.Expanded)
	}
	if k.NodeWidth != DefaultNodeWidth || k.XGap != DefaultXGap || k.YGap != DefaultYGap {
		t.Errorf("spacing = %+v", k)
	}
}
