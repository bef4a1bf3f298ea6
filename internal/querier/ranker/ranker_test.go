package ranker

import (
	"slices"
	"testing"

	"github.com/Adithya-Monish-Kumar-K/tiny-search-engine/internal/counter"
)

func TestRank(t *testing.T) {
	scores := counter.New()
	scores.Set(4, 2)
	scores.Set(1, 5)
	scores.Set(7, 2)
	scores.Set(3, 9)
	scores.Set(9, 0)

	got := Rank(scores)
	want := []ScoredDoc{
		{DocID: 3, Score: 9},
		{DocID: 1, Score: 5},
		{DocID: 4, Score: 2},
		{DocID: 7, Score: 2},
	}
	if !slices.Equal(got, want) {
		t.Errorf("Rank = %+v, want %+v", got, want)
	}
	if scores.Get(3) != 9 || scores.Size() != 4 {
		t.Errorf("input mutated: %v", scores)
	}
}

func TestRankEmpty(t *testing.T) {
	if got := Rank(counter.New()); len(got) != 0 {
		t.Errorf("Rank(empty) = %+v", got)
	}
}

func TestRankNonIncreasingAndUnique(t *testing.T) {
	scores := counter.New()
	for docID := 1; docID <= 50; docID++ {
		scores.Set(docID, (docID*37)%11+1)
	}
	got := Rank(scores)
	if len(got) != 50 {
		t.Fatalf("len = %d, want 50", len(got))
	}
	seen := make(map[int]bool)
	for i, d := range got {
		if seen[d.DocID] {
			t.Fatalf("doc %d ranked twice", d.DocID)
		}
		seen[d.DocID] = true
		if i > 0 && d.Score > got[i-1].Score {
			t.Fatalf("score rose at %d: %+v after %+v", i, d, got[i-1])
		}
	}
}
