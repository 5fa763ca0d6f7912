package store

import (
	"context"

	"github.com/goliatone/go-function-cache/cache"
)

// Record is the stored payload for one cache key.
type Record struct {
	// Key identifies the call the record belongs to.
	Key cache.Key

	// Value is the live computed value. Records that went through the
	// memory store carry it; records read back from disk do not, and the
	// caller decodes Payload instead.
	Value any

	// Payload is the encoded value. Present whenever the record was, or is
	// about to be, persisted.
	Payload []byte

	// Path is the disk location the record was read from or written to.
	// Empty for memory-only records.
	Path string
}

// Backend is the storage surface behind one registered function.
// Implementations must be safe for concurrent use.
type Backend interface {
	// Get returns the record for key and whether it exists.
	Get(ctx context.Context, key cache.Key) (Record, bool, error)

	// Put stores rec, replacing any previous record for the same key.
	Put(ctx context.Context, rec Record) error

	// Delete removes the record for key if present.
	Delete(ctx context.Context, key cache.Key) error

	// Exists reports whether a record for key is present without reading it.
	Exists(ctx context.Context, key cache.Key) (bool, error)

	// Clear removes every record owned by the backend's function. Records
	// belonging to other functions, even under a shared base directory,
	// are untouched.
	Clear(ctx context.Context) error
}
