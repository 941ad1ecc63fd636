// Package common holds small string helpers shared by config and providers.
package common

import "strings"

// ContainsAnyFold reports whether s contains any of subs, ignoring case.
func ContainsAnyFold(s string, subs ...string) bool {
	s = strings.ToLower(s)
	for _, sub := range subs {
		if strings.Contains(s, strings.ToLower(sub)) {
			return true
		}
	}
	return false
}

// SplitList splits a comma separated value and trims each item. Empty items
// are dropped.
func SplitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
