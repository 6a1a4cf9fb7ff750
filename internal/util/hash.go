package util

import (
	"crypto/sha256"
	"encoding/hex"
)

// HashText returns the sha256 hex digest of the text.
func HashText(text string) string {
	sum := sha256.Sum256([]byte(text))
	return hex.EncodeToString(sum[:])
}

// DocumentHash is the short content hash used as change-detection key and
// report filename.
func DocumentHash(text string) string {
	return HashText(text)[:16]
}
