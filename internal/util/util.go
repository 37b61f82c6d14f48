// Package util derives cache keys and HTTP validators from content.
package util

import (
	"crypto/sha256"
	"encoding/hex"
)

// PreviewKey keys rendered HTML by its markdown source and the dialect that
// rendered it.
func PreviewKey(content, dialect string) string {
	h := sha256.New()
	h.Write([]byte(dialect))
	h.Write([]byte{0})
	h.Write([]byte(content))
	return hex.EncodeToString(h.Sum(nil))
}

// ETag returns a strong, quoted validator for body.
func ETag(body []byte) string {
	sum := sha256.Sum256(body)
	return `"` + hex.EncodeToString(sum[:8]) + `"`
}
