// Package cache stores fetched statute text between turns.
package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"time"
)

// Cache defines the interface for caching
type Cache interface {
	Get(key string) ([]byte, bool)
	Set(key string, value []byte, ttl time.Duration) error
	Delete(key string) error
	Clear() error
}

// Key builds a namespaced cache key, e.g. Key("statute", "321AC0000000048").
// The identifier is hashed so keys are safe as file names.
func Key(namespace, id string) string {
	hash := sha256.Sum256([]byte(id))
	return "hanrei-v1-" + namespace + "-" + hex.EncodeToString(hash[:])
}

// Nop is a Cache that stores nothing; used when caching is disabled
type Nop struct{}

func (Nop) Get(string) ([]byte, bool) { return nil, false }
func (Nop) Set(string, []byte, time.Duration) error { return nil }
func (Nop) Delete(string) error { return nil }
func (Nop) Clear() error { return nil }
