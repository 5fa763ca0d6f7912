// Package cache provides the building blocks shared by every memoization
// backend: key derivation, the payload codec, the error taxonomy, and the
// metrics hooks.
//
// # Overview
//
// This package exports the leaf interfaces the rest of the module composes:
//
//   - KeyDeriver: turns a function identity plus call arguments into a stable Key
//   - Codec: converts computed values to and from storable payload bytes
//   - Metrics: observability hooks with a no-op default
//
// # Key Derivation Strategy
//
// The default deriver reduces every argument to a canonical msgpack byte
// form and hashes the result, rather than relying on native comparability.
// That is what lets mutable values (slices, maps, structs) participate in
// cache keys:
//
//   - positional arguments are hashed in order, so order matters
//   - map keys are sorted before encoding, so map iteration order does not
//   - the digest is fixed-length hex, safe to use as a path segment
//
// Keys carry the full digest for in-memory lookups; Key.Short returns the
// truncated form used in on-disk filenames.
//
// # Limitations
//
// Arguments that cannot be canonicalized at all (functions, channels, values
// holding them) produce a KeyDerivationError. Callers are expected to treat
// that as "run uncached", not as a fatal condition. Two logically different
// calls colliding on a digest is possible in principle and accepted; the
// digest width makes it vanishingly unlikely.
//
// # See Also
//
// The memoize package wires these pieces into the call-interception layer;
// the store package consumes Keys to locate records.
package cache
