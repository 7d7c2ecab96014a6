package hashutil

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

// SHA256Hex returns a trimmed-input SHA-256 hash encoded in hex.
func SHA256Hex(input string) string {
	sum := sha256.Sum256([]byte(strings.TrimSpace(input)))
	return hex.EncodeToString(sum[:])
}

// ShortSHA256Hex returns the first n hex characters of SHA256Hex. Values of n
// outside (0, 64] return the full digest.
func ShortSHA256Hex(input string, n int) string {
	full := SHA256Hex(input)
	if n <= 0 || n >= len(full) {
		return full
	}
	return full[:n]
}
