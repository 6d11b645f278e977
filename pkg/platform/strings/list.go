// Package strings normalises the comma separated lists read from flags,
// environment variables and token claims.
package strings

import (
	"strings"
)

// SplitList splits s on sep, trims each element and drops empties and
// repeats. Order of first appearance is kept.
//
//	SplitList(" admin, staff,,admin ", ",") // []string{"admin", "staff"}
func SplitList(s, sep string) []string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	return dedupe(strings.Split(s, sep), strings.TrimSpace)
}

// NormalizeRoles lowercases role names and removes blanks and duplicates.
// Role names are matched case-insensitively everywhere.
func NormalizeRoles(roles []string) []string {
	if len(roles) == 0 {
		return roles
	}
	return dedupe(roles, func(s string) string {
		return strings.ToLower(strings.TrimSpace(s))
	})
}

func dedupe(values []string, norm func(string) string) []string {
	seen := make(map[string]struct{}, len(values))
	out := make([]string, 0, len(values))
	for _, v := range values {
		v = norm(v)
		if v == "" {
			continue
		}
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}
