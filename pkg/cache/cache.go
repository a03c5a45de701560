// Package cache provides the key-value caches used to reuse computed layouts
// and rendered artifacts.
//
// Three backends implement [Cache]:
//
//	NullCache   caching disabled
//	FileCache   one JSON file per entry under a directory (CLI)
//	RedisCache  a shared Redis server (HTTP server)
//
// Keys come from a [Keyer]. Layout keys hash the graph content together with
// every option that changes the result, so two runs on the same graph with
// the same parameters share an entry. Artifact keys hash the layout plus the
// render options.
package cache

import (
	"context"
	"time"
)

// Default time-to-live per entry kind.
const (
	TTLLayout   = 7 * 24 * time.Hour
	TTLArtifact = 30 * 24 * time.Hour
)

// Key types reported to observability hooks.
const (
	KeyTypeLayout   = "layout"
	KeyTypeArtifact = "artifact"
)

// Cache stores opaque byte values under string keys.
type Cache interface {
	// Get returns the value for key. A miss is (nil, false, nil).
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores data under key. A zero ttl never expires.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases resources.
	Close() error
}

// Keyer generates cache keys.
type Keyer interface {
	LayoutKey(graphHash string, opts LayoutKeyOpts) string
	ArtifactKey(layoutHash string, opts ArtifactKeyOpts) string
}

// LayoutKeyOpts are the options that change a computed layout.
type LayoutKeyOpts struct {
	Width    float64 `json:"width"`
	Height   float64 `json:"height"`
	MaxTicks int     `json:"max_ticks"`
	Seed     uint64  `json:"seed"`
	Sim      any     `json:"sim,omitempty"`
	Forces   any     `json:"forces,omitempty"`
}

// ArtifactKeyOpts are the options that change a rendered artifact.
type ArtifactKeyOpts struct {
	Format string  `json:"format"`
	Engine string  `json:"engine,omitempty"`
	Labels bool    `json:"labels,omitempty"`
	Hover  bool    `json:"hover,omitempty"`
	Scale  float64 `json:"scale,omitempty"`
	Title  string  `json:"title,omitempty"`
}

// DefaultKeyer produces "layout:<sha256>" and "artifact:<sha256>" keys.
type DefaultKeyer struct{}

// NewDefaultKeyer creates the default keyer.
func NewDefaultKeyer() Keyer { return DefaultKeyer{} }

// LayoutKey generates a key for a layout of the graph with the given hash.
func (DefaultKeyer) LayoutKey(graphHash string, opts LayoutKeyOpts) string {
	return hashKey(KeyTypeLayout, graphHash, opts)
}

// ArtifactKey generates a key for an artifact rendered from a layout.
func (DefaultKeyer) ArtifactKey(layoutHash string, opts ArtifactKeyOpts) string {
	return hashKey(KeyTypeArtifact, layoutHash, opts)
}
