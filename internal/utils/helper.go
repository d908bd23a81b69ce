package utils

import "strings"

// NilIfBlank returns nil for empty or whitespace-only strings and a pointer
// to the trimmed value otherwise.
func NilIfBlank(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}
