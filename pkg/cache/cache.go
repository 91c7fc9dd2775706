// Package cache stores computed layout documents keyed by a hash of the
// input graph and options, so repeated runs over an unchanged graph skip
// the engine entirely.
//
// Three backends implement [Cache]: a file cache for CLI usage, a Redis
// cache for the HTTP service, and a null cache that disables caching.
package cache

import (
	"context"
	"time"
)

// Cache is a byte-oriented key-value store with per-entry expiry.
//
// Get reports a miss with ok=false rather than an error; errors are
// reserved for backend failures. A ttl of zero means the entry never
// expires.
type Cache interface {
	Get(ctx context.Context, key string) (data []byte, ok bool, err error)
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Close() error
}

// Scoped wraps a cache so every key carries a namespace prefix. Different
// callers sharing one backend (for example the CLI and the service on one
// Redis instance) stay isolated.
type Scoped struct {
	inner  Cache
	prefix string
}

// NewScoped returns a cache whose keys are all prefixed with
// namespace + ":".
func NewScoped(inner Cache, namespace string) *Scoped {
	return &Scoped{inner: inner, prefix: namespace + ":"}
}

func (s *Scoped) Get(ctx context.Context, key string) ([]byte, bool, error) {
	return s.inner.Get(ctx, s.prefix+key)
}

func (s *Scoped) Set(ctx context.Context, key string, data []byte, ttl time.Duration) error {
	return s.inner.Set(ctx, s.prefix+key, data, ttl)
}

func (s *Scoped) Delete(ctx context.Context, key string) error {
	return s.inner.Delete(ctx, s.prefix+key)
}

// Close closes the underlying cache.
func (s *Scoped) Close() error { return s.inner.Close() }

var _ Cache = (*Scoped)(nil)
