// Package checksum fingerprints catalog documents.
package checksum

import (
	"crypto/sha256"
	"encoding/hex"
)

// shortLen is the number of hex digits shown in logs and summaries.
const shortLen = 12

// Sum returns the hex-encoded SHA-256 digest of data.
func Sum(data []byte) string {
	h := sha256.Sum256(data)
	return hex.EncodeToString(h[:])
}

// Short truncates a digest for display.
func Short(sum string) string {
	if len(sum) <= shortLen {
		return sum
	}
	return sum[:shortLen]
}
