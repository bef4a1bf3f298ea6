package executor

import (
	"testing"

	"github.com/Adithya-Monish-Kumar-K/tiny-search-engine/internal/counter"
	"github.com/Adithya-Monish-Kumar-K/tiny-search-engine/internal/indexer/index"
)

func postings(pairs ...int) *counter.Counter {
	c := counter.New()
	for i := 0; i+1 < len(pairs); i += 2 {
		c.Set(pairs[i], pairs[i+1])
	}
	return c
}

type fakeIndex map[string]*counter.Counter

func (f fakeIndex) Find(word string) (*counter.Counter, bool) {
	c, ok := f[word]
	return c, ok
}

// a = {1:3, 2:5}, b = {1:2, 3:1}
var sample = fakeIndex{
	"a": postings(1, 3, 2, 5),
	"b": postings(1, 2, 3, 1),
	"c": postings(2, 4, 3, 7),
}

func TestEvaluate(t *testing.T) {
	tests := []struct {
		name   string
		groups [][]string
		want   *counter.Counter
	}{
		{"single term", [][]string{{"a"}}, postings(1, 3, 2, 5)},
		{"and takes min", [][]string{{"a", "b"}}, postings(1, 2)},
		{"or sums", [][]string{{"a"}, {"b"}}, postings(1, 5, 2, 5, 3, 1)},
		{"and binds tighter", [][]string{{"a", "b"}, {"c"}}, postings(1, 2, 2, 4, 3, 7)},
		{"missing term empties group", [][]string{{"a", "zzz"}}, postings()},
		{"missing term keeps other groups", [][]string{{"zzz", "a"}, {"b"}}, postings(1, 2, 3, 1)},
		{"disjoint and", [][]string{{"a", "b", "c"}}, postings()},
		{"same doc in two groups", [][]string{{"a"}, {"a"}}, postings(1, 6, 2, 10)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Evaluate(sample, tt.groups)
			if !counter.Equal(got, tt.want) {
				t.Errorf("Evaluate(%q) = %v, want %v", tt.groups, got, tt.want)
			}
		})
	}
}

func TestEvaluateDoesNotMutateIndex(t *testing.T) {
	x := index.New(4)
	for range 3 {
		x.Insert("alpha", 1)
	}
	x.Insert("beta", 1)
	x.Insert("alpha", 2)

	Evaluate(x, [][]string{{"alpha", "beta"}})
	alpha, _ := x.Find("alpha")
	if !counter.Equal(alpha, postings(1, 3, 2, 1)) {
		t.Errorf("alpha postings changed to %v", alpha)
	}
	if _, ok := x.Find("gamma"); ok {
		t.Error("lookup created an entry")
	}
	Evaluate(x, [][]string{{"gamma"}})
	if _, ok := x.Find("gamma"); ok {
		t.Error("evaluation created an entry")
	}
}
