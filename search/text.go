package search

import (
	"strings"
	"unicode/utf8"
)

// normalizeQuery lowercases a raw query and trims surrounding whitespace.
func normalizeQuery(query string) string {
	return strings.ToLower(strings.TrimSpace(query))
}

// tokenize splits a normalized query on whitespace and keeps fragments of at
// least two runes. Single-rune fragments match nearly every record in
// inflected Russian text.
func tokenize(query string) []string {
	words := strings.Fields(query)
	tokens := make([]string, 0, len(words))
	for _, word := range words {
		if utf8.RuneCountInString(word) >= 2 {
			tokens = append(tokens, word)
		}
	}
	return tokens
}

// countMatching returns how many texts contain every token as a substring.
// Texts are stored lowercased, so no case folding happens here.
func countMatching(texts []string, tokens []string) int {
	if len(tokens) == 0 {
		return 0
	}
	count := 0
	for _, text := range texts {
		all := true
		for _, token := range tokens {
			if !strings.Contains(text, token) {
				all = false
				break
			}
		}
		if all {
			count++
		}
	}
	return count
}
