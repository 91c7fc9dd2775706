package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"

	"github.com/flowgrid-dev/flowgrid/pkg/layout"
)

// Hash computes a SHA-256 hash of the input data.
// Returns the full 64-character hex string.
func Hash(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// hashKey builds a cache key by hashing the components.
// The key format is: prefix:hash(parts...)
func hashKey(prefix string, parts ...any) string {
	data, _ := json.Marshal(parts)
	sum := sha256.Sum256(data)
	// Full SHA-256 (64 hex chars) to keep collisions out of reach.
	return fmt.Sprintf("%s:%s", prefix, hex.EncodeToString(sum[:]))
}

// LayoutKey builds the cache key for a computed layout: the hash of the
// serialized input graph combined with every option that changes the
// output. Two requests with the same graph but different margins or
// policies never share an entry.
func LayoutKey(graphHash string, opts layout.Options) string {
	return hashKey("layout", graphHash,
		opts.XMargin, opts.YMargin, opts.RowMargin, opts.ColMargin,
		int(opts.TwinOrdering), opts.DropSelfLoops)
}
