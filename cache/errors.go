package cache

import "fmt"

// KeyDerivationError reports that an argument could not be reduced to a
// canonical byte form. The call should proceed uncached.
type KeyDerivationError struct {
	Function string
	Err      error
}

// Error implements the error interface.
func (e *KeyDerivationError) Error() string {
	return fmt.Sprintf("derive key for %s: %v", e.Function, e.Err)
}

// Unwrap exposes the underlying encoder error.
func (e *KeyDerivationError) Unwrap() error { return e.Err }

// SerializationError reports that a computed value could not be converted
// to a storable payload. The computation itself succeeded; nothing was
// persisted.
type SerializationError struct {
	Key Key
	Err error
}

// Error implements the error interface.
func (e *SerializationError) Error() string {
	return fmt.Sprintf("serialize result for %s: %v", e.Key, e.Err)
}

// Unwrap exposes the underlying codec error.
func (e *SerializationError) Unwrap() error { return e.Err }

// StorageIOError reports that the storage medium failed during an
// operation. Callers recover by executing uncached.
type StorageIOError struct {
	Op   string
	Path string
	Err  error
}

// Error implements the error interface.
func (e *StorageIOError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("cache storage %s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("cache storage %s %s: %v", e.Op, e.Path, e.Err)
}

// Unwrap exposes the underlying I/O error.
func (e *StorageIOError) Unwrap() error { return e.Err }
