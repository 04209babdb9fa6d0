package storage

import (
	"crypto/sha256"
	"encoding/hex"
)

// TokenDigest returns the hex-encoded SHA-256 digest of a plaintext token.
// Only digests are stored at rest; lookups hash the presented token and
// compare digests.
func TokenDigest(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}
