package memoize

import (
	"log/slog"
	"strings"

	"github.com/goliatone/go-function-cache/cache"
	"github.com/goliatone/go-function-cache/internal/cacheinfra"
)

// StoreMode selects which backends a wrapped function uses.
type StoreMode string

const (
	// StoreDisk persists records as files and survives process restarts.
	StoreDisk StoreMode = "disk"
	// StoreMemory keeps records in the process only.
	StoreMemory StoreMode = "memory"
	// StoreBoth layers memory over disk with read promotion.
	StoreBoth StoreMode = "both"
)

// Config holds the per-function cache settings. It is fixed once the
// function is wrapped; only the process-wide default directory (see
// SetDefaultCacheDir) is mutable, and that is captured at the function's
// first cached call.
type Config struct {
	// Name overrides the identity derived from the function itself.
	Name string

	// CacheDir is the base directory for this function's records. Empty
	// means the process-wide default.
	CacheDir string

	// CacheFile pins all records to a single file under the function's
	// directory, for single-entry caches.
	CacheFile string

	// Store selects the backend variant. Default StoreDisk.
	Store StoreMode

	// Disabled bypasses caching entirely: no reads, no writes.
	Disabled bool

	// Verbose emits hit/miss/failure notices on Logger.
	Verbose bool

	// BranchFactor is the number of shard subdirectories for disk records.
	// 0 keeps a flat directory.
	BranchFactor int

	// Compress enables zstd compression of disk payloads.
	Compress bool

	// Codec converts results to and from storable payloads.
	Codec cache.Codec

	// Deriver builds cache keys from call arguments.
	Deriver cache.KeyDeriver

	// Metrics receives hit/miss/store/failure counts.
	Metrics cache.Metrics

	// Logger receives verbose notices.
	Logger *slog.Logger

	// Memory configures the in-memory layer for StoreMemory and StoreBoth.
	Memory cacheinfra.Config
}

// DefaultConfig returns the settings a wrapped function starts from.
func DefaultConfig() Config {
	return Config{
		Store:   StoreDisk,
		Codec:   cache.NewMsgpackCodec(),
		Deriver: cache.NewKeyDeriver(),
		Metrics: cache.NoopMetrics{},
		Logger:  slog.Default(),
		Memory:  cacheinfra.DefaultConfig(),
	}
}

// Validate checks whether the configuration values are valid.
func (c Config) Validate() error {
	switch c.Store {
	case StoreDisk, StoreMemory, StoreBoth:
	default:
		return &ConfigError{Field: "Store", Message: `must be "disk", "memory", or "both"`}
	}

	if c.BranchFactor < 0 {
		return &ConfigError{Field: "BranchFactor", Message: "must be non-negative"}
	}

	if c.Codec == nil {
		return &ConfigError{Field: "Codec", Message: "cannot be nil"}
	}

	if c.Deriver == nil {
		return &ConfigError{Field: "Deriver", Message: "cannot be nil"}
	}

	if c.Store != StoreDisk {
		if err := c.Memory.Validate(); err != nil {
			return err
		}
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

// Option customizes a wrapped function's configuration.
type Option func(*Config)

// WithName overrides the function identity used in keys, file names, and
// the registry.
func WithName(name string) Option {
	return func(c *Config) { c.Name = name }
}

// WithCacheDir sets the base directory for this function's records.
func WithCacheDir(dir string) Option {
	return func(c *Config) { c.CacheDir = dir }
}

// WithCacheFile pins all of the function's records to a single file under
// its cache directory.
func WithCacheFile(name string) Option {
	return func(c *Config) { c.CacheFile = name }
}

// WithDisabled bypasses caching entirely when disabled is true.
func WithDisabled(disabled bool) Option {
	return func(c *Config) { c.Disabled = disabled }
}

// WithStore selects the backend variant.
func WithStore(mode StoreMode) Option {
	return func(c *Config) { c.Store = mode }
}

// WithVerbose emits diagnostic notices on hits, misses, and failures.
func WithVerbose(verbose bool) Option {
	return func(c *Config) { c.Verbose = verbose }
}

// WithBranchFactor sets the number of shard subdirectories for disk
// records. 0 keeps a flat directory.
func WithBranchFactor(n int) Option {
	return func(c *Config) { c.BranchFactor = n }
}

// WithCompression enables zstd compression of disk payloads.
func WithCompression() Option {
	return func(c *Config) { c.Compress = true }
}

// WithCodec replaces the payload codec.
func WithCodec(codec cache.Codec) Option {
	return func(c *Config) { c.Codec = codec }
}

// WithKeyDeriver replaces the key deriver.
func WithKeyDeriver(d cache.KeyDeriver) Option {
	return func(c *Config) { c.Deriver = d }
}

// WithMetrics installs an observability backend.
func WithMetrics(m cache.Metrics) Option {
	return func(c *Config) { c.Metrics = m }
}

// WithLogger sets the logger verbose notices go to.
func WithLogger(l *slog.Logger) Option {
	return func(c *Config) { c.Logger = l }
}

// WithMemoryConfig tunes the in-memory layer.
func WithMemoryConfig(cfg cacheinfra.Config) Option {
	return func(c *Config) { c.Memory = cfg }
}

// nameSanitizer strips the characters a qualified Go function name can
// carry that are unsafe in path segments.
var nameSanitizer = strings.NewReplacer(
	"/", "_",
	"\\", "_",
	"(", "",
	")", "",
	"*", "",
	":", "_",
)

func sanitizeName(name string) string {
	// Keep the final path segment of a fully qualified Go name; the
	// package path adds nothing once it is the directory owner's identity.
	if i := strings.LastIndex(name, "/"); i >= 0 {
		name = name[i+1:]
	}
	name = strings.TrimSuffix(name, "-fm")
	return nameSanitizer.Replace(name)
}
