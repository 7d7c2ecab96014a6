package limiter

import (
	"strings"

	"notes/backend/internal/hashutil"
)

const DefaultGlobalKey = "my-limit-key"

// KeyFunc derives the bucket key from the client address of a request.
type KeyFunc func(clientIP string) string

// GlobalKey puts every request in one shared bucket.
func GlobalKey(key string) KeyFunc {
	if strings.TrimSpace(key) == "" {
		key = DefaultGlobalKey
	}
	return func(string) string {
		return key
	}
}

// ClientIPKey buckets requests per client address. The address is hashed so
// raw IPs never end up in the counter store.
func ClientIPKey(prefix string) KeyFunc {
	if strings.TrimSpace(prefix) == "" {
		prefix = DefaultGlobalKey
	}
	return func(clientIP string) string {
		return prefix + ":ip:" + hashutil.ShortSHA256Hex(clientIP, 16)
	}
}
