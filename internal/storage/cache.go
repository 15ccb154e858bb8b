// Package storage provides the content-addressable render cache.
//
// Keys are sha256 hex digests computed by the renderer; since rendering is a
// pure function of its inputs, a hit is always valid and the cache never
// needs invalidation beyond deletion.
package storage

import "errors"

// Cache stores rendered HTML fragments by content hash.
type Cache interface {
	// Get returns the cached data for key, or ok=false on a miss.
	Get(key string) (data []byte, ok bool, err error)

	// Put stores data under key. Re-putting an existing key is a no-op.
	Put(key string, data []byte) error
}

// ErrInvalidKey is returned for keys that are not sha256 hex digests.
var ErrInvalidKey = errors.New("cache key must be a sha256 hex digest")

// Noop is a Cache that stores nothing (caching disabled).
type Noop struct{}

func (Noop) Get(string) ([]byte, bool, error) { return nil, false, nil }
func (Noop) Put(string, []byte) error         { return nil }
