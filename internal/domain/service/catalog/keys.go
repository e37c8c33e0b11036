package catalog

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// cacheKey derives a stable key from the query shape so every distinct
// filter combination caches separately.
func cacheKey(prefix string, parts ...any) string {
	sum := sha256.Sum256([]byte(fmt.Sprintf("%+v", parts)))

	return prefix + ":" + hex.EncodeToString(sum[:8])
}
