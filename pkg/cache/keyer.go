package cache

import "image"

// Key type labels reported to the cache hooks.
const (
	KeyTypeEffect   = "effect"
	KeyTypeArtifact = "artifact"
)

// EffectKeyOpts lists every input that changes a blurred raster.
type EffectKeyOpts struct {
	SourceHash string          `json:"source"`
	Crop       image.Rectangle `json:"crop"`
	Blur       float64         `json:"blur"`
	Quality    int             `json:"quality"`
	Width      int             `json:"width"`
	Height     int             `json:"height"`
}

// ArtifactKeyOpts lists every input that changes a rendered sink artifact.
type ArtifactKeyOpts struct {
	Format      string  `json:"format"`
	DPI         float64 `json:"dpi"`
	Scale       float64 `json:"scale,omitempty"`
	Diagnostics bool    `json:"diagnostics,omitempty"`
}

// Keyer derives cache keys.
type Keyer interface {
	EffectKey(opts EffectKeyOpts) string

	// ArtifactKey keys a sink artifact by the hash of the instruction list
	// it was rendered from.
	ArtifactKey(instructionsHash string, opts ArtifactKeyOpts) string
}

// DefaultKeyer hashes the options into the key.
type DefaultKeyer struct{}

// NewDefaultKeyer returns the default keyer.
func NewDefaultKeyer() Keyer { return DefaultKeyer{} }

func (DefaultKeyer) EffectKey(opts EffectKeyOpts) string {
	return hashKey(KeyTypeEffect, opts)
}

func (DefaultKeyer) ArtifactKey(instructionsHash string, opts ArtifactKeyOpts) string {
	return hashKey(KeyTypeArtifact, instructionsHash, opts)
}

// ScopedKeyer prefixes every key of an inner keyer. Scoping by build version
// keeps entries written by one release away from another:
//
//	keyer := cache.NewScopedKeyer(nil, buildinfo.Scope())
type ScopedKeyer struct {
	inner  Keyer
	prefix string
}

// NewScopedKeyer wraps inner, or the default keyer when inner is nil.
func NewScopedKeyer(inner Keyer, prefix string) Keyer {
	if inner == nil {
		inner = NewDefaultKeyer()
	}
	return &ScopedKeyer{inner: inner, prefix: prefix}
}

func (k *ScopedKeyer) EffectKey(opts EffectKeyOpts) string {
	return k.prefix + k.inner.EffectKey(opts)
}

func (k *ScopedKeyer) ArtifactKey(instructionsHash string, opts ArtifactKeyOpts) string {
	return k.prefix + k.inner.ArtifactKey(instructionsHash, opts)
}
