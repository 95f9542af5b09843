package cache

import (
	"fmt"
	"sort"
	"strings"
)

// Cache keys are namespaced as <resource>:<operation>:<filter-signature>
// so distinct query shapes never collide and a resource's list and
// aggregate views can be invalidated with one wildcard pattern.

// Key builds a namespaced cache key. Parts are joined in order; omit the
// signature for parameterless operations.
func Key(resource, operation string, signature ...string) string {
	parts := append([]string{resource, operation}, signature...)
	return strings.Join(parts, ":")
}

// Resource returns the resource namespace of a key, the part before the
// first separator.
func Resource(key string) string {
	if i := strings.IndexByte(key, ':'); i >= 0 {
		return key[:i]
	}
	return key
}

// Pattern builds a wildcard pattern covering every operation of a resource.
func Pattern(resource string) string {
	return resource + ":*"
}

// OperationPattern builds a wildcard pattern covering every signature of
// one operation.
func OperationPattern(resource, operation string) string {
	return resource + ":" + operation + ":*"
}

// Signature produces a stable serialization of filter parameters: keys are
// sorted so two calls with identical filters share a cache entry.
func Signature(params map[string]string) string {
	if len(params) == 0 {
		return "all"
	}

	keys := make([]string, 0, len(params))
	for k, v := range params {
		if v == "" {
			continue
		}
		keys = append(keys, k)
	}
	if len(keys) == 0 {
		return "all"
	}
	sort.Strings(keys)

	pairs := make([]string, 0, len(keys))
	for _, k := range keys {
		pairs = append(pairs, fmt.Sprintf("%s=%s", k, params[k]))
	}
	return strings.Join(pairs, "&")
}
