package authz

import "strings"

// Matches reports whether actual path matches the route template pattern.
// Patterns are /-delimited; a segment starting with ":" matches any single
// non-empty segment, every other segment must compare equal (case-sensitive).
// Segment counts must agree exactly; there is no wildcard or catch-all form.
func Matches(pattern, path string) bool {
	return matchSegments(splitPath(pattern), splitPath(path))
}

func matchSegments(pattern, path []string) bool {
	if len(pattern) != len(path) {
		return false
	}
	for i, seg := range pattern {
		if strings.HasPrefix(seg, ":") {
			if path[i] == "" {
				return false
			}
			continue
		}
		if seg != path[i] {
			return false
		}
	}
	return true
}

// splitPath splits on "/" dropping leading and trailing empty segments so
// that "/api/users" and "api/users/" produce the same segment list.
func splitPath(p string) []string {
	p = strings.Trim(p, "/")
	if p == "" {
		return nil
	}
	return strings.Split(p, "/")
}
