// Package cache stores the results of expensive imports keyed by content.
//
// A cache entry maps the hash of an input document (together with the hash
// of the rule table it was validated against) to the exported JSON of the
// resulting graph. Three backends are provided:
//
//   - [NullCache]: never stores anything (caching disabled)
//   - [FileCache]: one file per entry below a directory, for the CLI
//   - [RedisCache]: a shared Redis instance, for the server
//
// Keys are produced by a [Keyer] so that callers can namespace them.
package cache

import (
	"context"
	"time"
)

// Cache is a byte store with optional expiry.
type Cache interface {
	// Get returns the stored value and true, or false on a miss.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores data under key. A ttl of zero never expires.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases the backend.
	Close() error
}

// Keyer derives cache keys.
type Keyer interface {
	// ImportKey identifies the import of a document under a given rule
	// table. Variant separates imports of the same bytes that produce
	// different graphs (format, requested graph id).
	ImportKey(contentHash, rulesHash, variant string) string
}

// DefaultKeyer produces keys of the form "import:<hash>".
type DefaultKeyer struct{}

// NewDefaultKeyer returns the default keyer.
func NewDefaultKeyer() Keyer { return DefaultKeyer{} }

// ImportKey implements Keyer.
func (DefaultKeyer) ImportKey(contentHash, rulesHash, variant string) string {
	return hashKey("import", contentHash, rulesHash, variant)
}

// ScopedKeyer prefixes every key of an inner keyer, so several registries
// can share one backend without seeing each other's entries.
type ScopedKeyer struct {
	inner  Keyer
	prefix string
}

// NewScopedKeyer wraps inner (the default keyer when nil) with prefix.
func NewScopedKeyer(inner Keyer, prefix string) Keyer {
	if inner == nil {
		inner = NewDefaultKeyer()
	}
	return &ScopedKeyer{inner: inner, prefix: prefix}
}

// ImportKey implements Keyer.
func (k *ScopedKeyer) ImportKey(contentHash, rulesHash, variant string) string {
	return k.prefix + k.inner.ImportKey(contentHash, rulesHash, variant)
}
