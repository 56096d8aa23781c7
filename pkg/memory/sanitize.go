package memory

import (
	"fmt"
	"hash/fnv"
	"strings"
)

const (
	collectionPrefix    = "sw_part_"
	maxCollectionLength = 128
)

// SafeCollectionName converts an arbitrary part name into a valid
// collection identifier: every character outside [A-Za-z0-9_-] becomes an
// underscore, a namespace prefix is prepended and the result is bounded at
// 128 characters.  A short hash of the original name is appended so that
// two part names which sanitize or truncate alike still map to distinct
// collections.  The function is total and deterministic.
func SafeCollectionName(name string) string {
	h := fnv.New32a()
	h.Write([]byte(name))
	suffix := fmt.Sprintf("_%08x", h.Sum32())

	var safe strings.Builder
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z',
			r >= 'A' && r <= 'Z',
			r >= '0' && r <= '9',
			r == '_', r == '-':
			safe.WriteRune(r)
		default:
			safe.WriteByte('_')
		}
	}

	// Truncate the sanitized part, never the hash.
	budget := maxCollectionLength - len(collectionPrefix) - len(suffix)
	body := safe.String()
	if len(body) > budget {
		body = body[:budget]
	}

	return collectionPrefix + body + suffix
}
