package store

import "sync"

// Key prefixes. A phone hash or UUID suffix keeps every record distinct.
const (
	prefixSession   = "session:"
	prefixUser      = "user:"
	prefixSettings  = "settings:"
	prefixFavorites = "favorites:"
	prefixCatalog   = "catalog:"
)

// keyPool provides reusable byte slices for building database keys.
// This reduces allocations on the hot path of database operations.
var keyPool = sync.Pool{
	New: func() any {
		// Pre-allocate 128 bytes which covers every key shape here:
		// prefix (8-12 bytes) plus a UUID or a 64-char phone hash.
		return make([]byte, 0, 128)
	},
}

// buildKey constructs a database key from prefix and suffix using a pooled buffer.
// The returned slice is valid until releaseKey is called.
// Callers MUST call releaseKey when done with the key.
//
// Usage:
//
//	key := buildKey(prefixSession, sessionID)
//	defer releaseKey(key)
//	item, err := txn.Get(key)
func buildKey(prefix, suffix string) []byte {
	buf, _ := keyPool.Get().([]byte)
	buf = buf[:0] // Reset length, keep capacity
	buf = append(buf, prefix...)
	buf = append(buf, suffix...)
	return buf
}

// releaseKey returns a key buffer to the pool for reuse.
// After calling this, the key slice must not be used.
func releaseKey(key []byte) {
	// Only pool buffers that have reasonable capacity
	// Avoids keeping oversized buffers in the pool
	if cap(key) <= 512 {
		keyPool.Put(key[:0])
	}
}
