// Package index implements the inverted index: a map from normalised word
// to a counter of per-document occurrence counts, together with its
// line-oriented on-disk encoding.
package index

import (
	"iter"
	"slices"

	"github.com/Adithya-Monish-Kumar-K/tiny-search-engine/internal/counter"
)

// Index maps words to postings. Callers normalise words before Insert and
// Find; the index itself never changes a word.
type Index struct {
	words map[string]*counter.Counter
}

// New returns an empty index sized for roughly sizeHint words.
func New(sizeHint int) *Index {
	if sizeHint < 0 {
		sizeHint = 0
	}
	return &Index{words: make(map[string]*counter.Counter, sizeHint)}
}

// Insert records one more occurrence of word in document docID. It reports
// false for an empty word or a docID below 1.
func (x *Index) Insert(word string, docID int) bool {
	if word == "" || docID < 1 {
		return false
	}
	x.postings(word).Add(docID)
	return true
}

// Find returns the postings for word. The boolean is false when the word is
// not indexed; lookup never creates an entry.
func (x *Index) Find(word string) (*counter.Counter, bool) {
	c, ok := x.words[word]
	return c, ok
}

// Len returns the number of indexed words.
func (x *Index) Len() int {
	return len(x.words)
}

// Words yields every word and its postings in ascending word order.
func (x *Index) Words() iter.Seq2[string, *counter.Counter] {
	return func(yield func(string, *counter.Counter) bool) {
		keys := make([]string, 0, len(x.words))
		for word := range x.words {
			keys = append(keys, word)
		}
		slices.Sort(keys)
		for _, word := range keys {
			if !yield(word, x.words[word]) {
				return
			}
		}
	}
}

// Equal reports whether a and b index the same words with the same
// positive counts.
func Equal(a, b *Index) bool {
	if a.Len() != b.Len() {
		return false
	}
	for word, ca := range a.words {
		cb, ok := b.words[word]
		if !ok || !counter.Equal(ca, cb) {
			return false
		}
	}
	return true
}

func (x *Index) postings(word string) *counter.Counter {
	c, ok := x.words[word]
	if !ok {
		c = counter.New()
		x.words[word] = c
	}
	return c
}
