package utils

import "regexp"

var unsafeTitleChars = regexp.MustCompile(`[^a-zA-Z0-9_]`)

// Truncate returns s truncated to maxLen characters, with "..." appended if truncated.
// If maxLen is 0 or negative, returns s unchanged.
func Truncate(s string, maxLen int) string {
	if maxLen <= 0 || len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}

// SanitizeTitle converts a conversation title to a filesystem-safe form:
// every character outside [a-zA-Z0-9_] becomes an underscore, capped at
// maxLen characters. Titles sanitized this way round-trip through the titles
// index, where underscores are shown as spaces again.
func SanitizeTitle(title string, maxLen int) string {
	s := unsafeTitleChars.ReplaceAllString(title, "_")
	if maxLen > 0 && len(s) > maxLen {
		s = s[:maxLen]
	}
	return s
}
