// Package tokenizer provides the rune-level text helpers shared by scoring,
// highlighting and keyword extraction. All offsets are rune offsets.
package tokenizer

import (
	"strings"
	"unicode"
)

// Lower lowercases text rune by rune. The result has exactly as many runes as
// the input, so rune offsets found in it are valid in the original.
func Lower(text string) string {
	return strings.Map(unicode.ToLower, text)
}

// Words splits text on whitespace.
func Words(text string) []string {
	return strings.Fields(text)
}

// isWordRune reports whether r continues a word.
func isWordRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsMark(r) || unicode.IsDigit(r)
}

// Indexes returns the rune offset of every occurrence of needle in haystack,
// including overlapping ones.
func Indexes(haystack, needle []rune) []int {
	n := len(needle)
	if n == 0 || n > len(haystack) {
		return nil
	}

	var out []int
	for i := 0; i+n <= len(haystack); i++ {
		if haystack[i] != needle[0] {
			continue
		}
		match := true
		for j := 1; j < n; j++ {
			if haystack[i+j] != needle[j] {
				match = false
				break
			}
		}
		if match {
			out = append(out, i)
		}
	}
	return out
}

// IsWholeWord reports whether runes[start:end] is not glued to a neighbouring
// letter, mark or digit.
func IsWholeWord(runes []rune, start, end int) bool {
	if start > 0 && isWordRune(runes[start-1]) {
		return false
	}
	if end < len(runes) && isWordRune(runes[end]) {
		return false
	}
	return true
}

// ContainsWholeWord reports whether term occurs in text as a whole word.
// Both are compared case-insensitively.
func ContainsWholeWord(text, term string) bool {
	haystack := []rune(Lower(text))
	needle := []rune(Lower(term))
	for _, start := range Indexes(haystack, needle) {
		if IsWholeWord(haystack, start, start+len(needle)) {
			return true
		}
	}
	return false
}

// UniqueWords returns the distinct lowercased whitespace words of text longer
// than minRunes runes, in first-seen order, capped at limit (0 for no cap).
func UniqueWords(text string, minRunes, limit int) []string {
	seen := make(map[string]struct{})
	out := make([]string, 0)
	for _, w := range Words(Lower(text)) {
		if len([]rune(w)) <= minRunes {
			continue
		}
		if _, dup := seen[w]; dup {
			continue
		}
		seen[w] = struct{}{}
		out = append(out, w)
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out
}
