// Package store implements the storage backends memoized results live in:
// an in-memory map, a sharded on-disk layout, and a hybrid of the two with
// read promotion and synchronous write-through.
//
// A Backend instance is always scoped to a single registered function, so
// Clear only ever drops that function's records. Disk writes go to a
// temporary file first and are renamed into place, so readers never observe
// a partially written record.
package store
