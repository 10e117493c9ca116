package utils

import (
	"crypto/sha256"
	"encoding/hex"
)

// HashString derives a stable cache key from arbitrary text.
func HashString(input string) string {
	sum := sha256.Sum256([]byte(input))
	return hex.EncodeToString(sum[:])
}
