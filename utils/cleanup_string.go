package utils

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// CleanupString normalizes whitespace and tames all-caps words, which some
// accounts use for their last name ("JANE DOE" -> "Jane Doe"). Mixed-case
// words pass through untouched so "McDonald" and "Dr." survive.
func CleanupString(s string) string {
	title := cases.Title(language.English)
	words := strings.Fields(s)
	for i, word := range words {
		if word != strings.ToLower(word) && word == strings.ToUpper(word) {
			words[i] = title.String(strings.ToLower(word))
		}
	}
	return strings.Join(words, " ")
}

// shortens long titles for one-line log messages
func TruncateString(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max] + "..."
}
