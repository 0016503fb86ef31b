package cache

import (
	"crypto/sha1"
	"encoding/hex"
	"fmt"
	"sort"
	"strings"
)

// Key builds a cache key as <entity>:<operation>:<hash-of-sorted-params>.
// Params are sorted by name before hashing so equivalent queries share an
// entry regardless of argument order.
func Key(entity, operation string, params map[string]string) string {
	names := make([]string, 0, len(params))
	for name := range params {
		names = append(names, name)
	}
	sort.Strings(names)

	var sb strings.Builder
	for _, name := range names {
		sb.WriteString(name)
		sb.WriteByte('=')
		sb.WriteString(params[name])
		sb.WriteByte('&')
	}

	sum := sha1.Sum([]byte(sb.String()))
	return fmt.Sprintf("%s:%s:%s", entity, operation, hex.EncodeToString(sum[:]))
}
