// Package cacheinfra adapts the sturdyc client to the primitive key/value
// surface the in-memory store backend needs. Third-party cache details stay
// behind this package so the store layer never imports sturdyc directly.
package cacheinfra

import (
	"time"

	"github.com/viccon/sturdyc"
)

// Config holds the configuration for the sturdyc-backed memory map.
type Config struct {
	// Capacity defines the maximum number of entries the map can hold
	// before eviction kicks in. Must be greater than 0.
	Capacity int

	// NumShards determines the number of shards for concurrent access.
	// Higher values improve concurrency but increase memory overhead.
	// Must be greater than 0.
	NumShards int

	// TTL is the lifetime of entries. Memoized results are assumed valid
	// for the process lifetime, so the default is effectively unbounded.
	// Must be greater than 0 (sturdyc requires a positive TTL).
	TTL time.Duration

	// EvictionPercentage specifies what percentage of entries to evict
	// when the map reaches capacity. Must be between 1-100.
	EvictionPercentage int
}

// DefaultConfig returns a Config with sensible defaults for memoization:
// a large capacity and a TTL long enough to outlive any realistic process.
func DefaultConfig() Config {
	return Config{
		Capacity:           65536,
		NumShards:          64,
		TTL:                365 * 24 * time.Hour,
		EvictionPercentage: 10,
	}
}

// Validate checks if the configuration values are valid.
// Returns an error if any configuration parameter is invalid.
func (c Config) Validate() error {
	if c.Capacity <= 0 {
		return &ConfigError{Field: "Capacity", Message: "must be greater than 0"}
	}

	if c.NumShards <= 0 {
		return &ConfigError{Field: "NumShards", Message: "must be greater than 0"}
	}

	if c.TTL <= 0 {
		return &ConfigError{Field: "TTL", Message: "must be greater than 0"}
	}

	if c.EvictionPercentage < 1 || c.EvictionPercentage > 100 {
		return &ConfigError{Field: "EvictionPercentage", Message: "must be between 1 and 100"}
	}

	return nil
}

// ConfigError represents a configuration validation error.
type ConfigError struct {
	Field   string
	Message string
}

// Error implements the error interface.
func (e *ConfigError) Error() string {
	return "config error in field " + e.Field + ": " + e.Message
}

// Map is the primitive surface the memory store builds on. Every method is
// safe for concurrent use.
type Map interface {
	Get(key string) (any, bool)
	Set(key string, value any)
	Delete(key string)
	Keys() []string
	Clear()
}

// sturdycMap wraps a sturdyc client providing the Map surface.
type sturdycMap struct {
	client *sturdyc.Client[any]
}

// NewSturdycMap creates a sturdyc-backed Map. It validates the configuration
// and initializes a sturdyc client with the provided settings.
//
// Version compatibility note: this implementation assumes sturdyc v1.x API.
// Monitor sturdyc version upgrades for potential signature changes.
func NewSturdycMap(cfg Config) (Map, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	client := sturdyc.New[any](
		cfg.Capacity,
		cfg.NumShards,
		cfg.TTL,
		cfg.EvictionPercentage,
	)

	return &sturdycMap{client: client}, nil
}

// Get returns the value for key and whether it was present.
func (m *sturdycMap) Get(key string) (any, bool) {
	return m.client.Get(key)
}

// Set inserts or replaces the value for key.
func (m *sturdycMap) Set(key string, value any) {
	m.client.Set(key, value)
}

// Delete removes key if present.
func (m *sturdycMap) Delete(key string) {
	m.client.Delete(key)
}

// Keys returns the resident keys. Order is unspecified.
func (m *sturdycMap) Keys() []string {
	return m.client.ScanKeys()
}

// Clear removes every resident entry. sturdyc has no bulk drop, so this
// scans and deletes, mirroring how prefix invalidation is done upstream.
func (m *sturdycMap) Clear() {
	for _, key := range m.client.ScanKeys() {
		m.client.Delete(key)
	}
}
