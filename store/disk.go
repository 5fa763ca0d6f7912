package store

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/goliatone/go-function-cache/cache"
	"github.com/klauspost/compress/zstd"
)

// recordExt is the extension payload files are written with.
const recordExt = ".bin"

// DiskConfig configures a Disk backend.
type DiskConfig struct {
	// Root is the directory all of the function's records live under.
	// Required.
	Root string

	// FixedFile, when non-empty, pins every record to this single path
	// under Root regardless of arguments. Used for single-entry caches.
	FixedFile string

	// BranchFactor is the number of shard subdirectories under Root.
	// 0 or 1 keeps records flat.
	BranchFactor int

	// Compress enables zstd compression of payloads.
	Compress bool
}

// Disk persists one payload file per cache key under a per-function
// directory, sharded by ShardDir. Writes land in a temporary file and are
// renamed into place so concurrent readers never see a partial record.
type Disk struct {
	root   string
	fixed  string
	branch int

	enc *zstd.Encoder
	dec *zstd.Decoder
}

// NewDisk creates a disk backend rooted at cfg.Root.
func NewDisk(cfg DiskConfig) (*Disk, error) {
	if cfg.Root == "" {
		return nil, errors.New("store: disk backend requires a root directory")
	}

	d := &Disk{
		root:   cfg.Root,
		branch: cfg.BranchFactor,
	}
	if cfg.FixedFile != "" {
		d.fixed = filepath.Join(cfg.Root, cfg.FixedFile)
	}

	if cfg.Compress {
		enc, err := zstd.NewWriter(nil)
		if err != nil {
			return nil, err
		}
		dec, err := zstd.NewReader(nil)
		if err != nil {
			return nil, err
		}
		d.enc = enc
		d.dec = dec
	}

	return d, nil
}

// Path returns the file a record for key lives at. It is a pure function
// of the key and the backend configuration.
func (s *Disk) Path(key cache.Key) string {
	if s.fixed != "" {
		return s.fixed
	}
	dir := s.root
	if shard := ShardDir(key.Digest, s.branch); shard != "" {
		dir = filepath.Join(dir, shard)
	}
	return filepath.Join(dir, key.Function+"-"+key.Short()+recordExt)
}

// Get reads the record for key from disk. A missing file is a miss, not
// an error.
func (s *Disk) Get(_ context.Context, key cache.Key) (Record, bool, error) {
	path := s.Path(key)
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return Record{}, false, nil
		}
		return Record{}, false, &cache.StorageIOError{Op: "read", Path: path, Err: err}
	}

	if s.dec != nil {
		data, err = s.dec.DecodeAll(data, nil)
		if err != nil {
			return Record{}, false, &cache.StorageIOError{Op: "decompress", Path: path, Err: err}
		}
	}

	return Record{Key: key, Payload: data, Path: path}, true, nil
}

// Put writes rec.Payload atomically: the bytes go to a temporary file in
// the destination directory, then a rename publishes them.
func (s *Disk) Put(_ context.Context, rec Record) error {
	if rec.Payload == nil {
		return &cache.StorageIOError{Op: "write", Err: errors.New("record has no payload")}
	}

	path := s.Path(rec.Key)
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return &cache.StorageIOError{Op: "mkdir", Path: dir, Err: err}
	}

	payload := rec.Payload
	if s.enc != nil {
		payload = s.enc.EncodeAll(payload, nil)
	}

	tmp, err := os.CreateTemp(dir, ".tmp-rec-*")
	if err != nil {
		return &cache.StorageIOError{Op: "write", Path: dir, Err: err}
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(payload); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return &cache.StorageIOError{Op: "write", Path: tmpName, Err: err}
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return &cache.StorageIOError{Op: "write", Path: tmpName, Err: err}
	}

	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return &cache.StorageIOError{Op: "rename", Path: path, Err: err}
	}

	return nil
}

// Delete removes the record for key. Deleting an absent record is not an
// error.
func (s *Disk) Delete(_ context.Context, key cache.Key) error {
	path := s.Path(key)
	if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return &cache.StorageIOError{Op: "delete", Path: path, Err: err}
	}
	return nil
}

// Exists reports whether a record for key is on disk. This is a stat, not
// a read.
func (s *Disk) Exists(_ context.Context, key cache.Key) (bool, error) {
	path := s.Path(key)
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return false, nil
		}
		return false, &cache.StorageIOError{Op: "stat", Path: path, Err: err}
	}
	return true, nil
}

// Clear removes every record the backend owns: the fixed file when one is
// configured, otherwise the whole per-function root.
func (s *Disk) Clear(_ context.Context) error {
	if s.fixed != "" {
		if err := os.Remove(s.fixed); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return &cache.StorageIOError{Op: "clear", Path: s.fixed, Err: err}
		}
		return nil
	}
	if err := os.RemoveAll(s.root); err != nil {
		return &cache.StorageIOError{Op: "clear", Path: s.root, Err: err}
	}
	return nil
}

var _ Backend = (*Disk)(nil)
