package cache

import "slices"

// Keyer derives cache keys from the inputs of a computation.
type Keyer interface {
	// LayoutKey keys a computed layout by the hash of its normalized paths.
	LayoutKey(pathsHash string, opts LayoutKeyOpts) string

	// ArtifactKey keys a rendered artifact by the hash of its layout.
	ArtifactKey(layoutHash string, opts ArtifactKeyOpts) string
}

// LayoutKeyOpts holds the layout inputs besides the paths.
type LayoutKeyOpts struct {
	Expanded  []string `json:"expanded"`
	NodeWidth float64  `json:"node_width"`
	XGap      float64  `json:"x_gap"`
	YGap      float64  `json:"y_gap"`
}

// ArtifactKeyOpts holds the rendering inputs besides the layout.
type ArtifactKeyOpts struct {
	Format string `json:"format"`
	Engine string `json:"engine,omitempty"`
}

// DefaultKeyer hashes key inputs with SHA-256.
type DefaultKeyer struct{}

// NewDefaultKeyer returns the default keyer.
func NewDefaultKeyer() Keyer {
	return DefaultKeyer{}
}

// LayoutKey implements Keyer. The expansion set is sorted first, so the
// order in which nodes were opened does not split the cache.
func (DefaultKeyer) LayoutKey(pathsHash string, opts LayoutKeyOpts) string {
	opts.Expanded = slices.Sorted(slices.Values(opts.Expanded))
	return hashKey("layout", pathsHash, opts)
}

// ArtifactKey implements Keyer.
func (DefaultKeyer) ArtifactKey(layoutHash string, opts ArtifactKeyOpts) string {
	return hashKey("artifact", layoutHash, opts)
}

var _ Keyer = DefaultKeyer{}
