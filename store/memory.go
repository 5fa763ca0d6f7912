package store

import (
	"context"

	"github.com/goliatone/go-function-cache/cache"
	"github.com/goliatone/go-function-cache/internal/cacheinfra"
)

// Memory keeps records resident in the process, keyed by the full digest.
// Values are stored live, so memory-only caching pays no serialization
// cost. Everything is lost on process exit.
type Memory struct {
	m cacheinfra.Map
}

// NewMemory creates a memory backend with the given map configuration.
func NewMemory(cfg cacheinfra.Config) (*Memory, error) {
	m, err := cacheinfra.NewSturdycMap(cfg)
	if err != nil {
		return nil, err
	}
	return &Memory{m: m}, nil
}

// Get returns the resident record for key, if any.
func (s *Memory) Get(_ context.Context, key cache.Key) (Record, bool, error) {
	v, ok := s.m.Get(key.Digest)
	if !ok {
		return Record{}, false, nil
	}
	rec, ok := v.(Record)
	if !ok {
		// Foreign value under our key; treat as a miss.
		return Record{}, false, nil
	}
	return rec, true, nil
}

// Put stores rec, replacing any previous record for the same key.
func (s *Memory) Put(_ context.Context, rec Record) error {
	s.m.Set(rec.Key.Digest, rec)
	return nil
}

// Delete removes the record for key if present.
func (s *Memory) Delete(_ context.Context, key cache.Key) error {
	s.m.Delete(key.Digest)
	return nil
}

// Exists reports whether a record for key is resident.
func (s *Memory) Exists(_ context.Context, key cache.Key) (bool, error) {
	_, ok := s.m.Get(key.Digest)
	return ok, nil
}

// Clear drops every resident record. The map is scoped to one function,
// so no other function is affected.
func (s *Memory) Clear(_ context.Context) error {
	s.m.Clear()
	return nil
}

var _ Backend = (*Memory)(nil)
