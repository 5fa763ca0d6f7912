// Package di provides dependency injection for applications that wrap many
// functions with a shared caching setup.
package di

import (
	"context"

	"github.com/goliatone/go-function-cache/cache"
	"github.com/goliatone/go-function-cache/memoize"
)

// Container manages the baseline options every function wrapped through it
// shares: codec, key deriver, metrics backend, store mode, and directories.
type Container struct {
	base []memoize.Option
	cfg  memoize.Config
}

// NewContainer creates a DI container with the provided baseline options.
// The options are validated once here so per-function wrapping cannot fail
// on configuration the whole application shares.
func NewContainer(base ...memoize.Option) (*Container, error) {
	cfg := memoize.DefaultConfig()
	for _, opt := range base {
		opt(&cfg)
	}
	// The container carries no function identity of its own; validation
	// needs one.
	probe := cfg
	if probe.Name == "" {
		probe.Name = "container"
	}
	if err := probe.Validate(); err != nil {
		return nil, err
	}

	return &Container{base: base, cfg: cfg}, nil
}

// NewContainerWithDefaults creates a DI container using default
// configuration. This is a convenience constructor for typical use cases
// where custom configuration is not required.
func NewContainerWithDefaults() (*Container, error) {
	return NewContainer()
}

// Codec returns the shared payload codec.
func (c *Container) Codec() cache.Codec { return c.cfg.Codec }

// KeyDeriver returns the shared key deriver.
func (c *Container) KeyDeriver() cache.KeyDeriver { return c.cfg.Deriver }

// Metrics returns the shared metrics backend.
func (c *Container) Metrics() cache.Metrics { return c.cfg.Metrics }

// Config returns a copy of the baseline configuration. Useful for
// debugging and monitoring.
func (c *Container) Config() memoize.Config { return c.cfg }

// Options combines the container's baseline options with per-function
// extras; extras win on conflict.
func (c *Container) Options(extra ...memoize.Option) []memoize.Option {
	opts := make([]memoize.Option, 0, len(c.base)+len(extra))
	opts = append(opts, c.base...)
	opts = append(opts, extra...)
	return opts
}

// ClearAll clears every function registered in the process.
func (c *Container) ClearAll(ctx context.Context) error {
	return memoize.ClearAll(ctx)
}

// WrapFunc wraps a one-argument function with the container's baseline
// caching setup.
//
// Since Go methods cannot have type parameters, this is provided as a
// package-level function. Example: WrapFunc(container, fetchUser).
func WrapFunc[A, R any](c *Container, fn func(context.Context, A) (R, error), extra ...memoize.Option) (*memoize.Wrapped1[A, R], error) {
	return memoize.Wrap(fn, c.Options(extra...)...)
}

// WrapFunc2 wraps a two-argument function with the container's baseline
// caching setup.
func WrapFunc2[A, B, R any](c *Container, fn func(context.Context, A, B) (R, error), extra ...memoize.Option) (*memoize.Wrapped2[A, B, R], error) {
	return memoize.Wrap2(fn, c.Options(extra...)...)
}

// NewFunction registers a function identity with the container's baseline
// caching setup, for call shapes the wrappers do not cover.
func NewFunction[T any](c *Container, name string, extra ...memoize.Option) (*memoize.Function[T], error) {
	return memoize.NewFunction[T](name, c.Options(extra...)...)
}
