// Package memoize intercepts calls to designated functions and serves
// previously computed results from an in-memory map, from disk, or both.
//
// # Overview
//
// A wrapped function gets a stable identity; every call derives a content
// key from that identity plus the call arguments. On a hit the stored
// result is returned without executing the function. On a miss exactly one
// caller computes the value while concurrent callers for the same key wait
// and share it, then the result is stored for later calls (and, with disk
// storage, for later process runs).
//
// # Basic Usage
//
//	double, err := memoize.Wrap(func(ctx context.Context, x int) (int, error) {
//		return expensiveComputation(x), nil
//	}, memoize.WithStore(memoize.StoreDisk))
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	v, err := double.Call(ctx, 3) // executes, stores the result
//	v, err = double.Call(ctx, 3)  // served from cache
//	err = double.Clear(ctx)       // drops every record this function owns
//
// Wrap0 through Wrap3 cover the common arities; NewFunction is the
// lower-level surface when the call shape does not fit a wrapper.
//
// # Caching Contract
//
// Only deterministic, side-effect-free functions should be wrapped; the
// package cannot detect violations. A function's own error always
// propagates to the caller and is never cached. Caching failures are
// non-fatal: if a key cannot be derived or storage is unavailable the
// function simply runs uncached, with a notice when verbose mode is on.
// The one partial exception is a result that cannot be serialized: the
// computed value is still returned, accompanied by a SerializationError so
// the caller knows nothing was persisted.
//
// # Concurrency
//
// Callers may arrive from parallel goroutines or from cooperative tasks
// sharing a scheduler; both paths go through the same per-function
// single-flight table. A caller whose context is canceled while waiting
// unblocks with ctx.Err(), but the underlying computation keeps running
// for the remaining waiters and its result is stored.
//
// # Method Values
//
// Wrapping a method value (obj.Method) binds the receiver outside of the
// argument list, so receiver identity never influences the cache key. Two
// receivers that are otherwise equivalent share one cache; distinguish
// them explicitly via an argument or WithName if that is not wanted.
package memoize
