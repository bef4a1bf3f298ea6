// Package ranker orders query results by descending score.
package ranker

import (
	"github.com/Adithya-Monish-Kumar-K/tiny-search-engine/internal/counter"
)

type ScoredDoc struct {
	DocID int `json:"doc_id"`
	Score int `json:"score"`
}

// Rank repeatedly extracts the highest-scoring document until none remain.
// Among equal scores the first met in iteration order wins, which for a
// Counter is the lowest document ID. scores is not modified.
func Rank(scores *counter.Counter) []ScoredDoc {
	work := scores.Clone()
	ranked := make([]ScoredDoc, 0, work.Size())
	for {
		best := ScoredDoc{}
		for docID, score := range work.All() {
			if score > best.Score {
				best = ScoredDoc{DocID: docID, Score: score}
			}
		}
		if best.Score == 0 {
			return ranked
		}
		ranked = append(ranked, best)
		work.Set(best.DocID, 0)
	}
}
