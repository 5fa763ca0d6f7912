// Package testsupport holds filesystem helpers shared by the storage and
// memoization tests.
package testsupport

import (
	"io/fs"
	"os"
	"path/filepath"
	"testing"
)

// CountFiles returns the number of regular files under dir, recursively.
// A missing directory counts as zero files.
func CountFiles(t *testing.T, dir string) int {
	t.Helper()

	count := 0
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.Type().IsRegular() {
			count++
		}
		return nil
	})
	if err != nil {
		if os.IsNotExist(err) {
			return 0
		}
		t.Fatalf("failed to walk %s: %v", dir, err)
	}

	return count
}

// Subdirs returns the names of the immediate subdirectories of dir.
func Subdirs(t *testing.T, dir string) []string {
	t.Helper()

	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		t.Fatalf("failed to read %s: %v", dir, err)
	}

	var names []string
	for _, e := range entries {
		if e.IsDir() {
			names = append(names, e.Name())
		}
	}

	return names
}

// DirExists reports whether dir exists and is a directory.
func DirExists(t *testing.T, dir string) bool {
	t.Helper()

	info, err := os.Stat(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return false
		}
		t.Fatalf("failed to stat %s: %v", dir, err)
	}

	return info.IsDir()
}
