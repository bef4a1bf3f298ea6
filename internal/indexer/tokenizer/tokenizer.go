// Package tokenizer provides word normalisation and HTML word extraction.
// The indexer and the querier both normalise through NormalizeWord so that
// indexing and querying use identical casing rules.
package tokenizer

import (
	"iter"
	"strings"
	"unicode"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// NormalizeWord lower-cases the alphabetic characters of word and leaves
// every other character untouched.
func NormalizeWord(word string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) {
			return unicode.ToLower(r)
		}
		return r
	}, word)
}

// Words yields the alphabetic words found in the text content of an HTML
// document, in document order and with their original case. Markup,
// attribute values, and the contents of script and style elements are
// skipped.
func Words(body string) iter.Seq[string] {
	return func(yield func(string) bool) {
		z := html.NewTokenizer(strings.NewReader(body))
		skip := 0
		for {
			switch z.Next() {
			case html.ErrorToken:
				return
			case html.StartTagToken:
				if isRawText(z) {
					skip++
				}
			case html.EndTagToken:
				if isRawText(z) && skip > 0 {
					skip--
				}
			case html.TextToken:
				if skip > 0 {
					continue
				}
				for _, word := range splitLetters(string(z.Text())) {
					if !yield(word) {
						return
					}
				}
			}
		}
	}
}

// IndexTerms yields the normalised words of body that are at least minLen
// characters long.
func IndexTerms(body string, minLen int) iter.Seq[string] {
	return func(yield func(string) bool) {
		for word := range Words(body) {
			if len([]rune(word)) < minLen {
				continue
			}
			if !yield(NormalizeWord(word)) {
				return
			}
		}
	}
}

func isRawText(z *html.Tokenizer) bool {
	name, _ := z.TagName()
	switch atom.Lookup(name) {
	case atom.Script, atom.Style:
		return true
	}
	return false
}

func splitLetters(text string) []string {
	return strings.FieldsFunc(text, func(r rune) bool {
		return !unicode.IsLetter(r)
	})
}
