// Package wordlist loads, filters and supplies words for play.
package wordlist

import (
	"unicode"
	"unicode/utf8"
)

// FilterFunc returns true when a word should be kept.
type FilterFunc func(string) bool

// FilterLetters keeps words made only of letters, so every scheduled
// character is a single key press.
func FilterLetters(word string) bool {
	if word == "" {
		return false
	}
	for _, r := range word {
		if !unicode.IsLetter(r) {
			return false
		}
	}
	return true
}

// FilterASCII keeps lowercase a-z words.
func FilterASCII(word string) bool {
	if word == "" {
		return false
	}
	for i := 0; i < len(word); i++ {
		if ch := word[i]; ch < 'a' || ch > 'z' {
			return false
		}
	}
	return true
}

// FilterLength keeps words whose rune count is within [minLen, maxLen].
// A non-positive bound is ignored.
func FilterLength(minLen, maxLen int) FilterFunc {
	return func(word string) bool {
		n := utf8.RuneCountInString(word)
		if minLen > 0 && n < minLen {
			return false
		}
		if maxLen > 0 && n > maxLen {
			return false
		}
		return true
	}
}

// Apply returns the words accepted by every filter.
func Apply(words []string, filters ...FilterFunc) []string {
	out := make([]string, 0, len(words))
outer:
	for _, word := range words {
		for _, f := range filters {
			if !f(word) {
				continue outer
			}
		}
		out = append(out, word)
	}
	return out
}
