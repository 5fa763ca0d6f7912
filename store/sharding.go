package store

import (
	"strconv"

	"github.com/cespare/xxhash/v2"
)

// ShardDir maps a key digest to its bucket subdirectory under the cache
// root. With branchFactor buckets, no single directory accumulates more
// than roughly total/branchFactor records, bounding per-directory lookup
// cost on filesystems that degrade with very large directories.
//
// The mapping is a pure function of (digest, branchFactor): locating a
// record never requires a directory scan. A branchFactor of 0 or 1 means
// no sharding; the empty string is returned and records live flat under
// the root.
func ShardDir(digest string, branchFactor int) string {
	if branchFactor <= 1 {
		return ""
	}
	bucket := xxhash.Sum64String(digest) % uint64(branchFactor)
	return strconv.FormatUint(bucket, 10)
}
