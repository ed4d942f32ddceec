// Package keywords extracts ranked term lists from page content and URLs for
// relevance matching.
package keywords

import (
	"strings"
	"unicode"
)

// maxTerms bounds the extracted term list for content text.
const maxTerms = 20

// minContentTokenLen drops short tokens from content text; URL segments use a
// looser bound since slugs are already dense ("ai", "nlp").
const (
	minContentTokenLen = 4
	minURLTokenLen     = 3
)

var stopWords = map[string]bool{
	"this": true,
	"that": true,
	"with": true,
	"have": true,
	"will": true,
	"from": true,
	"they": true,
	"been": true,
	"were": true,
	"said": true,
}

// Extract tokenizes free text into a deduplicated term list in first-seen order.
// Tokens are lowercased, punctuation-stripped, filtered against a stop-word list,
// and capped at 20 terms. Same input always yields the same output.
func Extract(text string) []string {
	if text == "" {
		return nil
	}

	normalized := strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_' {
			return unicode.ToLower(r)
		}
		return ' '
	}, text)

	seen := make(map[string]bool)
	terms := make([]string, 0, maxTerms)
	for _, word := range strings.Fields(normalized) {
		if len(word) < minContentTokenLen || stopWords[word] || seen[word] {
			continue
		}
		seen[word] = true
		terms = append(terms, word)
		if len(terms) == maxTerms {
			break
		}
	}

	return terms
}

// FromURL derives keywords from URL structure by splitting path segments on "/"
// and "-" and dropping tokens shorter than 3 characters.
func FromURL(url string) []string {
	var terms []string
	for _, segment := range strings.Split(url, "/") {
		for _, word := range strings.Split(segment, "-") {
			if len(word) >= minURLTokenLen {
				terms = append(terms, strings.ToLower(word))
			}
		}
	}
	return terms
}
