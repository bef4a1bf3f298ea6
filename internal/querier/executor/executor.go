// Package executor evaluates a validated query as an OR of AND-groups over
// the inverted index.
package executor

import (
	"github.com/Adithya-Monish-Kumar-K/tiny-search-engine/internal/counter"
)

// Postings looks up the counter for a normalised word. *index.Index
// satisfies it.
type Postings interface {
	Find(word string) (*counter.Counter, bool)
}

// Evaluate scores documents for groups, the AND-groups of a query split on
// "or". Within a group a document keeps the minimum of its counts across
// terms; across groups its scores are summed. The returned counter is
// freshly allocated and owned by the caller.
func Evaluate(idx Postings, groups [][]string) *counter.Counter {
	result := counter.New()
	for _, group := range groups {
		groupResult := evaluateAnd(idx, group)
		if groupResult == nil {
			continue
		}
		for docID, score := range groupResult.All() {
			result.Set(docID, result.Get(docID)+score)
		}
	}
	return result
}

// evaluateAnd returns nil as soon as any term of the group is not indexed.
func evaluateAnd(idx Postings, terms []string) *counter.Counter {
	if len(terms) == 0 {
		return nil
	}
	first, ok := idx.Find(terms[0])
	if !ok {
		return nil
	}
	running := first.Clone()
	for _, term := range terms[1:] {
		postings, ok := idx.Find(term)
		if !ok {
			return nil
		}
		intersect(running, postings)
		if running.Size() == 0 {
			return nil
		}
	}
	return running
}

// intersect lowers every count in running to min(running, other), zeroing
// documents that other lacks.
func intersect(running, other *counter.Counter) {
	for docID, count := range running.All() {
		running.Set(docID, min(count, other.Get(docID)))
	}
	running.Compact()
}
