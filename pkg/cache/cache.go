// Package cache provides byte-oriented caching for layouts, rendered
// artifacts and chart handles.
//
// # Backends
//
//   - [FileCache]: entries as JSON files under a directory (CLI)
//   - [MemoryCache]: an in-process map (server default, tests)
//   - [RedisCache]: a shared Redis instance (multi-replica server)
//   - [NullCache]: never stores anything (--no-cache)
//
// # Keys
//
// A [Keyer] derives keys from content hashes and the options that affect
// the cached value, so that changing the width or the palette never serves
// stale geometry. [ScopedKeyer] prefixes every key for namespace isolation.
package cache

import (
	"context"
	"time"
)

// Default lifetimes of cached values.
const (
	LayoutTTL   = 24 * time.Hour
	ArtifactTTL = 24 * time.Hour
	ChartTTL    = time.Hour
)

// Cache stores opaque byte values with an optional TTL.
// A TTL of zero means the entry does not expire.
type Cache interface {
	// Get returns the value for key and whether it was found.
	Get(ctx context.Context, key string) ([]byte, bool, error)
	// Set stores data under key.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error
	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error
	// Close releases backend resources.
	Close() error
}

// LayoutKeyOpts are the layout options that change the computed geometry.
type LayoutKeyOpts struct {
	Width     float64    `json:"width"`
	BarHeight float64    `json:"bar_height"`
	Padding   float64    `json:"padding"`
	Margins   [4]float64 `json:"margins"`
	Palette   []string   `json:"palette,omitempty"`
	Theme     string     `json:"theme,omitempty"`
}

// ArtifactKeyOpts are the render options that change an artifact's bytes.
type ArtifactKeyOpts struct {
	Format  string  `json:"format"`
	Static  bool    `json:"static"`
	Overlap float64 `json:"overlap"`
	Scale   float64 `json:"scale,omitempty"`
	Title   string  `json:"title,omitempty"`
	Source  string  `json:"source,omitempty"`
}

// Keyer generates cache keys.
type Keyer interface {
	// LayoutKey keys the layout of a dataset.
	LayoutKey(datasetHash string, opts LayoutKeyOpts) string
	// ArtifactKey keys a rendered output of a layout.
	ArtifactKey(layoutHash string, opts ArtifactKeyOpts) string
	// ChartKey keys an ephemeral chart handle.
	ChartKey(id string) string
}

// DefaultKeyer is the standard [Keyer].
type DefaultKeyer struct{}

// NewDefaultKeyer returns the standard keyer.
func NewDefaultKeyer() Keyer {
	return DefaultKeyer{}
}

// LayoutKey implements Keyer.
func (DefaultKeyer) LayoutKey(datasetHash string, opts LayoutKeyOpts) string {
	return hashKey("layout", datasetHash, opts)
}

// ArtifactKey implements Keyer.
func (DefaultKeyer) ArtifactKey(layoutHash string, opts ArtifactKeyOpts) string {
	return hashKey("artifact", layoutHash, opts)
}

// ChartKey implements Keyer.
func (DefaultKeyer) ChartKey(id string) string {
	return "chart:" + id
}
