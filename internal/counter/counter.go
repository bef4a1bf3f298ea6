// Package counter provides a sparse map from non-negative integer keys
// (document IDs) to non-negative counts. It backs index postings as well as
// the intermediate results of query evaluation.
//
// Keys are kept in a skip list, so iteration is always in ascending key
// order and is stable for a given instance.
package counter

import (
	"iter"
	"strconv"
	"strings"

	"github.com/huandu/skiplist"
)

// Counter maps keys to counts. A key whose count is zero is logically
// absent: it is skipped by All and not reported by Size.
type Counter struct {
	list     *skiplist.SkipList
	positive int
}

// New returns an empty Counter.
func New() *Counter {
	return &Counter{list: skiplist.New(skiplist.Int)}
}

// Add increments the count for key, inserting it at 1 if absent, and
// returns the new count. Negative keys are ignored and yield 0.
func (c *Counter) Add(key int) int {
	if key < 0 {
		return 0
	}
	if elem := c.list.Get(key); elem != nil {
		count := elem.Value.(int) + 1
		if count == 1 {
			c.positive++
		}
		elem.Value = count
		return count
	}
	c.list.Set(key, 1)
	c.positive++
	return 1
}

// Get returns the count for key, or 0 if the key is absent.
func (c *Counter) Get(key int) int {
	if key < 0 {
		return 0
	}
	if elem := c.list.Get(key); elem != nil {
		return elem.Value.(int)
	}
	return 0
}

// Set assigns count to key, inserting the key if absent. It reports false
// and changes nothing when key or count is negative.
func (c *Counter) Set(key, count int) bool {
	if key < 0 || count < 0 {
		return false
	}
	old := 0
	if elem := c.list.Get(key); elem != nil {
		old = elem.Value.(int)
		elem.Value = count
	} else {
		c.list.Set(key, count)
	}
	switch {
	case old == 0 && count > 0:
		c.positive++
	case old > 0 && count == 0:
		c.positive--
	}
	return true
}

// Size returns the number of keys with a positive count.
func (c *Counter) Size() int {
	return c.positive
}

// All yields every (key, count) pair with a positive count in ascending
// key order. Counts may be changed with Set while iterating; the new value
// is seen if the key has not been visited yet.
func (c *Counter) All() iter.Seq2[int, int] {
	return func(yield func(int, int) bool) {
		for elem := c.list.Front(); elem != nil; elem = elem.Next() {
			count := elem.Value.(int)
			if count == 0 {
				continue
			}
			if !yield(elem.Key().(int), count) {
				return
			}
		}
	}
}

// Clone returns an independent copy holding the positive counts of c.
func (c *Counter) Clone() *Counter {
	out := New()
	for key, count := range c.All() {
		out.Set(key, count)
	}
	return out
}

// Compact drops keys whose count has been set to zero.
func (c *Counter) Compact() {
	var zero []int
	for elem := c.list.Front(); elem != nil; elem = elem.Next() {
		if elem.Value.(int) == 0 {
			zero = append(zero, elem.Key().(int))
		}
	}
	for _, key := range zero {
		c.list.Remove(key)
	}
}

// String renders the counter as "{key:count,...}" for logs and test failures.
func (c *Counter) String() string {
	var b strings.Builder
	b.WriteByte('{')
	first := true
	for key, count := range c.All() {
		if !first {
			b.WriteByte(',')
		}
		first = false
		b.WriteString(strconv.Itoa(key))
		b.WriteByte(':')
		b.WriteString(strconv.Itoa(count))
	}
	b.WriteByte('}')
	return b.String()
}

// Equal reports whether a and b hold the same positive counts.
func Equal(a, b *Counter) bool {
	if a.Size() != b.Size() {
		return false
	}
	for key, count := range a.All() {
		if b.Get(key) != count {
			return false
		}
	}
	return true
}
