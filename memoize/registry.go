package memoize

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"

	"github.com/puzpuzpuz/xsync/v3"
)

// defaultDirName is the directory created under the user cache dir when no
// process-wide default has been set.
const defaultDirName = "fncache"

var (
	defaultDirMu sync.RWMutex
	defaultDir   string
)

// SetDefaultCacheDir sets the process-wide base directory for functions
// that do not configure their own. Each function captures the default at
// its first cached call; setting it later does not move existing caches.
func SetDefaultCacheDir(dir string) {
	defaultDirMu.Lock()
	defaultDir = dir
	defaultDirMu.Unlock()
}

// DefaultCacheDir returns the process-wide base directory: the configured
// one, or a directory under the user cache dir.
func DefaultCacheDir() string {
	defaultDirMu.RLock()
	dir := defaultDir
	defaultDirMu.RUnlock()

	if dir != "" {
		return dir
	}

	base, err := os.UserCacheDir()
	if err != nil {
		base = os.TempDir()
	}
	return filepath.Join(base, defaultDirName)
}

// Registration binds a wrapped function to its configuration and its clear
// capability. It lives for the process lifetime.
type Registration struct {
	Name   string
	Config Config

	clear func(context.Context) error
}

// Clear removes every cached record of the registered function.
func (r *Registration) Clear(ctx context.Context) error {
	return r.clear(ctx)
}

// registry is the process-wide side table of wrapped functions.
var registry = xsync.NewMapOf[string, *Registration]()

func register(name string, cfg Config, clear func(context.Context) error) *Registration {
	reg := &Registration{Name: name, Config: cfg, clear: clear}
	registry.Store(name, reg)
	return reg
}

// Lookup returns the registration for a function identity, if any.
func Lookup(name string) (*Registration, bool) {
	return registry.Load(name)
}

// Registrations returns a snapshot of every wrapped function.
func Registrations() []*Registration {
	var regs []*Registration
	registry.Range(func(_ string, reg *Registration) bool {
		regs = append(regs, reg)
		return true
	})
	return regs
}

// ClearAll clears every registered function's cache, joining any errors.
func ClearAll(ctx context.Context) error {
	var errs []error
	registry.Range(func(_ string, reg *Registration) bool {
		if err := reg.Clear(ctx); err != nil {
			errs = append(errs, err)
		}
		return true
	})
	return errors.Join(errs...)
}
