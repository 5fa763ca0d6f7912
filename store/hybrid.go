package store

import (
	"context"

	"github.com/goliatone/go-function-cache/cache"
)

// Hybrid composes Memory and Disk. Reads check memory first and promote
// disk hits into memory, so repeated calls within one run stop touching
// the filesystem while records still survive restarts. Writes go to both
// layers synchronously.
type Hybrid struct {
	mem  *Memory
	disk *Disk
}

// NewHybrid creates a hybrid backend over the given layers.
func NewHybrid(mem *Memory, disk *Disk) *Hybrid {
	return &Hybrid{mem: mem, disk: disk}
}

// Get returns the record for key, promoting disk hits into memory.
func (s *Hybrid) Get(ctx context.Context, key cache.Key) (Record, bool, error) {
	rec, ok, err := s.mem.Get(ctx, key)
	if err == nil && ok {
		return rec, true, nil
	}

	rec, ok, err = s.disk.Get(ctx, key)
	if err != nil || !ok {
		return Record{}, false, err
	}

	// Promotion failure only costs the next read a disk trip.
	_ = s.mem.Put(ctx, rec)
	return rec, true, nil
}

// Put writes rec to both layers.
func (s *Hybrid) Put(ctx context.Context, rec Record) error {
	if err := s.mem.Put(ctx, rec); err != nil {
		return err
	}
	return s.disk.Put(ctx, rec)
}

// Delete removes the record for key from both layers.
func (s *Hybrid) Delete(ctx context.Context, key cache.Key) error {
	if err := s.mem.Delete(ctx, key); err != nil {
		return err
	}
	return s.disk.Delete(ctx, key)
}

// Exists reports whether either layer holds a record for key.
func (s *Hybrid) Exists(ctx context.Context, key cache.Key) (bool, error) {
	ok, err := s.mem.Exists(ctx, key)
	if err == nil && ok {
		return true, nil
	}
	return s.disk.Exists(ctx, key)
}

// Clear drops the function's records from both layers.
func (s *Hybrid) Clear(ctx context.Context) error {
	if err := s.mem.Clear(ctx); err != nil {
		return err
	}
	return s.disk.Clear(ctx)
}

var _ Backend = (*Hybrid)(nil)
