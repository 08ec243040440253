// Package strings holds small string-slice helpers for config parsing.
package strings

import "strings"

// DedupeAndTrim trims whitespace from every element and drops empties and
// repeats, keeping first-seen order. Config lists such as broker addresses
// come from comma-split env vars, so stray spaces and doubled entries are
// common.
func DedupeAndTrim(values []string) []string {
	out := values[:0:0]
	seen := make(map[string]struct{}, len(values))
	for _, v := range values {
		v = strings.TrimSpace(v)
		if v == "" {
			continue
		}
		if _, dup := seen[v]; dup {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}
