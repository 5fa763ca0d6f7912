package memoize

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"time"

	"github.com/goliatone/go-function-cache/cache"
	"github.com/goliatone/go-function-cache/store"
	"golang.org/x/sync/singleflight"
)

// ComputeFn produces the value for a single call. It receives a context
// detached from any individual caller, since several callers may share the
// computation.
type ComputeFn[T any] func(ctx context.Context) (T, error)

// Function manages cached calls for one registered function: key
// derivation, lookup, single-flight computation, and storage. One Function
// owns one backend and one flight table; functions never contend with each
// other.
type Function[T any] struct {
	name    string
	cfg     Config
	deriver cache.KeyDeriver
	codec   cache.Codec
	metrics cache.Metrics

	flights singleflight.Group

	mu      sync.Mutex
	backend store.Backend // built lazily so the default dir is pinned at first use
}

// NewFunction registers a function identity for caching. The name becomes
// part of every key and of on-disk filenames; WithName overrides it.
func NewFunction[T any](name string, opts ...Option) (*Function[T], error) {
	cfg := DefaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}

	if cfg.Name == "" {
		cfg.Name = name
	}
	if cfg.Name == "" {
		return nil, &ConfigError{Field: "Name", Message: "cannot be empty"}
	}
	cfg.Name = sanitizeName(cfg.Name)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	f := &Function[T]{
		name:    cfg.Name,
		cfg:     cfg,
		deriver: cfg.Deriver,
		codec:   cfg.Codec,
		metrics: cfg.Metrics,
	}

	register(f.name, cfg, f.Clear)
	return f, nil
}

// Name returns the function identity records are filed under.
func (f *Function[T]) Name() string { return f.name }

// Key derives the cache key this function would use for args.
func (f *Function[T]) Key(args ...any) (cache.Key, error) {
	return f.deriver.Derive(f.name, args...)
}

// Do returns the cached value for args, or runs compute exactly once
// across all concurrent callers of the same key and stores the result.
//
// Failures of the caching machinery never fail the call: the function is
// executed directly instead. compute's own error propagates unchanged and
// nothing is stored for it. If the computed value cannot be serialized for
// persistence it is still returned, together with a SerializationError.
func (f *Function[T]) Do(ctx context.Context, compute ComputeFn[T], args ...any) (T, error) {
	var zero T

	if f.cfg.Disabled {
		return compute(ctx)
	}

	key, err := f.deriver.Derive(f.name, args...)
	if err != nil {
		f.metrics.Failure(cache.FailureDerive)
		f.logv("cannot derive cache key, executing uncached", "function", f.name, "error", err)
		return compute(ctx)
	}

	backend, err := f.backendFor()
	if err != nil {
		f.metrics.Failure(cache.FailureStorage)
		f.logv("cache backend unavailable, executing uncached", "function", f.name, "error", err)
		return compute(ctx)
	}

	start := time.Now()
	if v, ok := f.lookup(ctx, backend, key); ok {
		f.metrics.Hit()
		f.logv("cache hit", "function", f.name, "key", key.Short(), "took", time.Since(start))
		return v, nil
	}
	f.metrics.Miss()

	ch := f.flights.DoChan(key.Digest, func() (any, error) {
		// Detached from the caller that happened to become leader: other
		// waiters may still depend on this computation after that caller
		// gives up.
		fctx := context.WithoutCancel(ctx)

		// A racing flight may have stored the record between our lookup
		// and this one.
		if v, ok := f.lookup(fctx, backend, key); ok {
			return v, nil
		}

		v, err := compute(fctx)
		if err != nil {
			return nil, err
		}

		if perr := f.persist(fctx, backend, key, v); perr != nil {
			var serr *cache.SerializationError
			if errors.As(perr, &serr) {
				// The value is good; the caller learns it was not persisted.
				return v, perr
			}
			f.metrics.Failure(cache.FailureStorage)
			f.logv("cache write failed", "function", f.name, "key", key.Short(), "error", perr)
			return v, nil
		}

		f.metrics.Store()
		f.logv("executed and cached", "function", f.name, "key", key.Short(), "took", time.Since(start))
		return v, nil
	})

	select {
	case res := <-ch:
		if res.Val == nil {
			return zero, res.Err
		}
		v, ok := res.Val.(T)
		if !ok {
			return zero, res.Err
		}
		return v, res.Err
	case <-ctx.Done():
		// The flight keeps running for the remaining waiters.
		return zero, ctx.Err()
	}
}

// Clear removes every record this function owns across its configured
// backends. Other functions sharing the same base directory are untouched.
func (f *Function[T]) Clear(ctx context.Context) error {
	backend, err := f.backendFor()
	if err != nil {
		return err
	}
	return backend.Clear(ctx)
}

// backendFor builds the backend on first use, pinning the cache directory
// in effect at that moment.
func (f *Function[T]) backendFor() (store.Backend, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.backend != nil {
		return f.backend, nil
	}

	b, err := f.buildBackend()
	if err != nil {
		return nil, err
	}
	f.backend = b
	return b, nil
}

func (f *Function[T]) buildBackend() (store.Backend, error) {
	switch f.cfg.Store {
	case StoreMemory:
		return store.NewMemory(f.cfg.Memory)
	case StoreDisk:
		return store.NewDisk(f.diskConfig())
	case StoreBoth:
		mem, err := store.NewMemory(f.cfg.Memory)
		if err != nil {
			return nil, err
		}
		disk, err := store.NewDisk(f.diskConfig())
		if err != nil {
			return nil, err
		}
		return store.NewHybrid(mem, disk), nil
	}
	return nil, &ConfigError{Field: "Store", Message: "unknown store mode"}
}

func (f *Function[T]) diskConfig() store.DiskConfig {
	base := f.cfg.CacheDir
	if base == "" {
		base = DefaultCacheDir()
	}
	return store.DiskConfig{
		Root:         filepath.Join(base, f.name),
		FixedFile:    f.cfg.CacheFile,
		BranchFactor: f.cfg.BranchFactor,
		Compress:     f.cfg.Compress,
	}
}

// lookup resolves a record to a live value. Read errors and unreadable
// records degrade to a miss.
func (f *Function[T]) lookup(ctx context.Context, backend store.Backend, key cache.Key) (T, bool) {
	var zero T

	rec, ok, err := backend.Get(ctx, key)
	if err != nil {
		f.metrics.Failure(cache.FailureStorage)
		f.logv("cache read failed", "function", f.name, "key", key.Short(), "error", err)
		return zero, false
	}
	if !ok {
		return zero, false
	}

	if rec.Value != nil {
		if v, ok := rec.Value.(T); ok {
			return v, true
		}
		return zero, false
	}

	if rec.Payload == nil {
		return zero, false
	}
	var out T
	if err := f.codec.Decode(rec.Payload, &out); err != nil {
		// Unreadable record, likely written by an incompatible version.
		// Drop it and recompute.
		f.logv("cached record unreadable, re-executing", "function", f.name, "key", key.Short(), "error", err)
		_ = backend.Delete(ctx, key)
		return zero, false
	}
	return out, true
}

// persist stores v under key. Memory-only configurations skip encoding.
func (f *Function[T]) persist(ctx context.Context, backend store.Backend, key cache.Key, v T) error {
	rec := store.Record{Key: key, Value: v}

	if f.cfg.Store != StoreMemory {
		payload, err := f.codec.Encode(v)
		if err != nil {
			f.metrics.Failure(cache.FailureSerialize)
			f.logv("result not serializable, nothing persisted", "function", f.name, "key", key.Short(), "error", err)
			return &cache.SerializationError{Key: key, Err: err}
		}
		rec.Payload = payload
	}

	return backend.Put(ctx, rec)
}

func (f *Function[T]) logv(msg string, args ...any) {
	if f.cfg.Verbose && f.cfg.Logger != nil {
		f.cfg.Logger.Info(msg, args...)
	}
}
