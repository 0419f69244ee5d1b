// Package util provides shared string utility functions used across packages.
package util

import "strings"

// TruncateRunes truncates s to at most maxRunes Unicode code points,
// appending "..." if truncation occurred.
// If maxRunes <= 0, s is returned unchanged.
func TruncateRunes(s string, maxRunes int) string {
	if maxRunes <= 0 {
		return s
	}
	runes := []rune(s)
	if len(runes) <= maxRunes {
		return s
	}
	return string(runes[:maxRunes]) + "..."
}

// NormalizeKey lowercases and trims s for use as a case-insensitive map key.
func NormalizeKey(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
