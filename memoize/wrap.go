package memoize

import (
	"context"
	"reflect"
	"runtime"
)

// functionName resolves the qualified identity of fn for use in keys and
// filenames. Anonymous functions resolve to their funcN symbol; pass
// WithName when that is too opaque.
func functionName(fn any) string {
	v := reflect.ValueOf(fn)
	if v.Kind() != reflect.Func {
		return ""
	}
	rf := runtime.FuncForPC(v.Pointer())
	if rf == nil {
		return ""
	}
	return rf.Name()
}

// Wrapped0 caches a nullary function.
type Wrapped0[R any] struct {
	fn func(context.Context) (R, error)
	f  *Function[R]
}

// Wrap0 wraps a function of no arguments.
func Wrap0[R any](fn func(context.Context) (R, error), opts ...Option) (*Wrapped0[R], error) {
	f, err := NewFunction[R](functionName(fn), opts...)
	if err != nil {
		return nil, err
	}
	return &Wrapped0[R]{fn: fn, f: f}, nil
}

// Call invokes the wrapped function through the cache.
func (w *Wrapped0[R]) Call(ctx context.Context) (R, error) {
	return w.f.Do(ctx, func(ctx context.Context) (R, error) {
		return w.fn(ctx)
	})
}

// Clear removes every cached record of the wrapped function.
func (w *Wrapped0[R]) Clear(ctx context.Context) error { return w.f.Clear(ctx) }

// Func exposes the underlying Function for advanced use.
func (w *Wrapped0[R]) Func() *Function[R] { return w.f }

// Wrapped1 caches a one-argument function.
type Wrapped1[A, R any] struct {
	fn func(context.Context, A) (R, error)
	f  *Function[R]
}

// Wrap wraps a function of one argument.
func Wrap[A, R any](fn func(context.Context, A) (R, error), opts ...Option) (*Wrapped1[A, R], error) {
	f, err := NewFunction[R](functionName(fn), opts...)
	if err != nil {
		return nil, err
	}
	return &Wrapped1[A, R]{fn: fn, f: f}, nil
}

// Call invokes the wrapped function through the cache.
func (w *Wrapped1[A, R]) Call(ctx context.Context, a A) (R, error) {
	return w.f.Do(ctx, func(ctx context.Context) (R, error) {
		return w.fn(ctx, a)
	}, a)
}

// Clear removes every cached record of the wrapped function.
func (w *Wrapped1[A, R]) Clear(ctx context.Context) error { return w.f.Clear(ctx) }

// Func exposes the underlying Function for advanced use.
func (w *Wrapped1[A, R]) Func() *Function[R] { return w.f }

// Wrapped2 caches a two-argument function.
type Wrapped2[A, B, R any] struct {
	fn func(context.Context, A, B) (R, error)
	f  *Function[R]
}

// Wrap2 wraps a function of two arguments.
func Wrap2[A, B, R any](fn func(context.Context, A, B) (R, error), opts ...Option) (*Wrapped2[A, B, R], error) {
	f, err := NewFunction[R](functionName(fn), opts...)
	if err != nil {
		return nil, err
	}
	return &Wrapped2[A, B, R]{fn: fn, f: f}, nil
}

// Call invokes the wrapped function through the cache.
func (w *Wrapped2[A, B, R]) Call(ctx context.Context, a A, b B) (R, error) {
	return w.f.Do(ctx, func(ctx context.Context) (R, error) {
		return w.fn(ctx, a, b)
	}, a, b)
}

// Clear removes every cached record of the wrapped function.
func (w *Wrapped2[A, B, R]) Clear(ctx context.Context) error { return w.f.Clear(ctx) }

// Func exposes the underlying Function for advanced use.
func (w *Wrapped2[A, B, R]) Func() *Function[R] { return w.f }

// Wrapped3 caches a three-argument function.
type Wrapped3[A, B, C, R any] struct {
	fn func(context.Context, A, B, C) (R, error)
	f  *Function[R]
}

// Wrap3 wraps a function of three arguments.
func Wrap3[A, B, C, R any](fn func(context.Context, A, B, C) (R, error), opts ...Option) (*Wrapped3[A, B, C, R], error) {
	f, err := NewFunction[R](functionName(fn), opts...)
	if err != nil {
		return nil, err
	}
	return &Wrapped3[A, B, C, R]{fn: fn, f: f}, nil
}

// Call invokes the wrapped function through the cache.
func (w *Wrapped3[A, B, C, R]) Call(ctx context.Context, a A, b B, c C) (R, error) {
	return w.f.Do(ctx, func(ctx context.Context) (R, error) {
		return w.fn(ctx, a, b, c)
	}, a, b, c)
}

// Clear removes every cached record of the wrapped function.
func (w *Wrapped3[A, B, C, R]) Clear(ctx context.Context) error { return w.f.Clear(ctx) }

// Func exposes the underlying Function for advanced use.
func (w *Wrapped3[A, B, C, R]) Func() *Function[R] { return w.f }
