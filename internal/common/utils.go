package common

import "strings"

// HasAny returns true if s contains any of the substrings.
func HasAny(s string, subs ...string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}

// HasAnyFold is HasAny ignoring case.
func HasAnyFold(s string, subs ...string) bool {
	lowered := make([]string, len(subs))
	for i, sub := range subs {
		lowered[i] = strings.ToLower(sub)
	}
	return HasAny(strings.ToLower(s), lowered...)
}

// SplitList splits s on sep, trimming whitespace and dropping empty items.
func SplitList(s, sep string) []string {
	var out []string
	for _, part := range strings.Split(s, sep) {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
