package cache

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"

	"github.com/vmihailenco/msgpack/v5"
)

// ShortDigestLen is the number of digest characters used in on-disk
// filenames. Sixteen hex characters keep the collision odds below 1e-6
// for caches holding tens of millions of records.
const ShortDigestLen = 16

// Key identifies one logical call: a function identity plus the canonical
// form of its arguments. Equal calls always produce equal keys.
type Key struct {
	// Function is the qualified function identity the key belongs to.
	Function string

	// Digest is the full-length hex digest over the function identity and
	// the canonical argument bytes. In-memory lookups use this form.
	Digest string
}

// Short returns the truncated digest used as an on-disk filename segment.
func (k Key) Short() string {
	if len(k.Digest) <= ShortDigestLen {
		return k.Digest
	}
	return k.Digest[:ShortDigestLen]
}

// String renders the key for diagnostics.
func (k Key) String() string {
	return k.Function + ":" + k.Short()
}

// KeyDeriver builds a stable Key from a function identity and its call
// arguments. Implementations must be deterministic across processes.
type KeyDeriver interface {
	Derive(function string, args ...any) (Key, error)
}

// msgpackKeyDeriver canonicalizes arguments through msgpack with sorted map
// keys, then hashes the byte stream. msgpack framing is self-delimiting, so
// concatenating per-argument encodings preserves argument boundaries.
type msgpackKeyDeriver struct{}

// NewKeyDeriver returns the default msgpack-canonical key deriver.
func NewKeyDeriver() KeyDeriver {
	return msgpackKeyDeriver{}
}

// Derive hashes the function identity followed by each argument's canonical
// encoding. Arguments msgpack cannot encode (funcs, channels, values that
// contain them) yield a KeyDerivationError; callers should fall back to
// uncached execution.
func (msgpackKeyDeriver) Derive(function string, args ...any) (Key, error) {
	h := sha256.New()
	h.Write([]byte(function))

	var buf bytes.Buffer
	enc := msgpack.NewEncoder(&buf)
	enc.SetSortMapKeys(true)

	for _, arg := range args {
		buf.Reset()
		if err := enc.Encode(arg); err != nil {
			return Key{}, &KeyDerivationError{Function: function, Err: err}
		}
		h.Write(buf.Bytes())
	}

	return Key{
		Function: function,
		Digest:   hex.EncodeToString(h.Sum(nil)),
	}, nil
}
