package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"time"
)

// Cache defines the interface for caching
type Cache interface {
	Get(key string) ([]byte, bool)
	Set(key string, value []byte, ttl time.Duration) error
	Delete(key string) error
	Clear() error
}

// Key builds a cache key from its parts, e.g. provider, query and limit
func Key(parts ...string) string {
	hash := sha256.Sum256([]byte(strings.Join(parts, "\x00")))
	return "trackmatch:v1:" + hex.EncodeToString(hash[:])
}

// New builds the cache described by the configuration. An empty diskDir
// yields a memory-only cache.
func New(memoryTTL time.Duration, diskDir string, diskTTL time.Duration) Cache {
	if diskDir == "" {
		return NewMemoryCache(memoryTTL, 10*time.Minute)
	}
	return NewLayeredCache(memoryTTL, diskDir, diskTTL)
}
