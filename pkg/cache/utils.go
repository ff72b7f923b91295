package cache

import (
	"fmt"
	"strings"
)

// GenerateKey joins key parts with the ":" separator.
func GenerateKey(parts ...string) string {
	return strings.Join(parts, ":")
}

// GenerateKeyWithParams builds a key from a base and ordered parameters.
func GenerateKeyWithParams(base string, params ...interface{}) string {
	if len(params) == 0 {
		return base
	}

	var sb strings.Builder
	sb.WriteString(base)
	for _, p := range params {
		sb.WriteString(":")
		sb.WriteString(fmt.Sprintf("%v", p))
	}
	return sb.String()
}

// BuildPattern returns a glob pattern matching every key under a base.
func BuildPattern(base string, parts ...string) string {
	key := GenerateKey(append([]string{base}, parts...)...)
	return key + ":*"
}
