package contextpack

import (
	"context"
	"sort"
	"strconv"

	"github.com/kiverlab/codegraph/internal/reranker"
)

// rerankCandidatePool is how many of the fused-score-sorted candidates are
// offered to the LLM; rerankTriggerCount is the candidate count at or
// below which reranking is skipped and fused-score order is kept as-is.
const (
	rerankCandidatePool = 15
	rerankTriggerCount  = 5
)

// maybeRerank reorders the strongest candidates with an LLM when there are
// enough of them to make it worthwhile. On any reranker error (including
// no reranker configured), the input order is returned unchanged — the
// reranker itself already falls back to fused-score order internally, so
// this is a second line of defense.
func (s *Service) maybeRerank(ctx context.Context, query string, flat []Chunk) []Chunk {
	if s.reranker == nil || len(flat) <= rerankTriggerCount {
		return flat
	}

	poolSize := rerankCandidatePool
	if poolSize > len(flat) {
		poolSize = len(flat)
	}
	pool := flat[:poolSize]
	rest := flat[poolSize:]

	docs := make([]reranker.Document, len(pool))
	for i, c := range pool {
		docs[i] = reranker.Document{ID: strconv.Itoa(i), Content: c.Content, Score: c.Score}
	}

	scored, err := s.reranker.Rerank(ctx, query, docs, len(docs))
	if err != nil {
		return flat
	}

	reordered := make([]Chunk, 0, len(pool))
	for _, sd := range scored {
		idx, err := strconv.Atoi(sd.ID)
		if err != nil || idx < 0 || idx >= len(pool) {
			continue
		}
		c := pool[idx]
		c.Score = sd.RerankerScore
		reordered = append(reordered, c)
	}
	sort.SliceStable(reordered, func(i, j int) bool { return reordered[i].Score > reordered[j].Score })

	return append(reordered, rest...)
}
