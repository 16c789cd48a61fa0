package contextpack

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/kiverlab/codegraph/internal/embeddings"
	"github.com/kiverlab/codegraph/internal/project"
	"github.com/kiverlab/codegraph/internal/vectorstore"
)

// minKeywordTokenLen is the shortest query token the fallback keyword pass
// considers; shorter tokens (articles, "a", "to") add noise, not signal.
const minKeywordTokenLen = 3

// retrieveFacet runs hybrid retrieval for one facet, returning its chunks
// tagged with the facet name, best score first and capped at spec.limit.
func (s *Service) retrieveFacet(ctx context.Context, projectName, query string, full embeddings.Full, spec facetSpec, semanticWeight float32) ([]Chunk, error) {
	collection, err := project.CollectionName(projectName, project.Suffix(spec.suffix))
	if err != nil {
		return nil, err
	}

	var results []vectorstore.SearchResult
	if s.embedder.SparseEnabled() && full.Sparse != nil {
		results, err = s.store.SearchHybridNative(ctx, collection, full.Dense, &vectorstore.SparseVector{
			Indices: full.Sparse.Indices,
			Values:  full.Sparse.Values,
		}, spec.limit*2, nil)
		if err != nil {
			return nil, fmt.Errorf("hybrid search %s: %w", collection, err)
		}
	} else {
		results, err = s.fallbackSearch(ctx, collection, query, full.Dense, spec.limit*2, semanticWeight)
		if err != nil {
			return nil, err
		}
	}

	if len(results) > spec.limit {
		results = results[:spec.limit]
	}
	chunks := make([]Chunk, 0, len(results))
	for _, r := range results {
		chunks = append(chunks, chunkFromResult(spec.name, r))
	}
	return chunks, nil
}

// fallbackSearch runs a dense search and a keyword (filter-only) search in
// parallel-free sequence and fuses them with weighted scoring: combined =
// w*semantic + (1-w)*keyword. A hit the keyword pass found but the dense
// pass didn't has semantic=0, so combined is just (1-w)*keyword.
func (s *Service) fallbackSearch(ctx context.Context, collection, query string, dense []float32, limit int, semanticWeight float32) ([]vectorstore.SearchResult, error) {
	denseHits, err := s.store.Search(ctx, collection, dense, limit, nil, nil)
	if err != nil {
		return nil, fmt.Errorf("dense search %s: %w", collection, err)
	}

	type fused struct {
		result   vectorstore.SearchResult
		semantic float32
		keyword  float32
		hasDense bool
	}
	byID := make(map[string]*fused, len(denseHits))
	order := make([]string, 0, len(denseHits))
	for _, hit := range denseHits {
		byID[hit.ID] = &fused{result: hit, semantic: hit.Score, hasDense: true}
		order = append(order, hit.ID)
	}

	tokens := keywordTokens(query)
	if len(tokens) > 0 {
		keywordHits, err := s.store.Scroll(ctx, collection, &vectorstore.Filter{
			Should: map[string]any{"content": tokens},
		}, limit)
		if err != nil {
			return nil, fmt.Errorf("keyword search %s: %w", collection, err)
		}
		for _, hit := range keywordHits {
			score := keywordScore(tokens, hit.Payload)
			if entry, ok := byID[hit.ID]; ok {
				entry.keyword = score
				continue
			}
			byID[hit.ID] = &fused{result: hit, keyword: score}
			order = append(order, hit.ID)
		}
	}

	out := make([]vectorstore.SearchResult, 0, len(order))
	for _, id := range order {
		entry := byID[id]
		var combined float32
		if entry.hasDense {
			combined = semanticWeight*entry.semantic + (1-semanticWeight)*entry.keyword
		} else {
			combined = (1 - semanticWeight) * entry.keyword
		}
		out = append(out, vectorstore.SearchResult{ID: entry.result.ID, Score: combined, Payload: entry.result.Payload})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Score > out[j].Score })
	return out, nil
}

// keywordTokens splits query on whitespace and drops tokens too short to
// carry signal.
func keywordTokens(query string) []string {
	fields := strings.Fields(query)
	tokens := make([]string, 0, len(fields))
	for _, f := range fields {
		if len(f) > minKeywordTokenLen-1 {
			tokens = append(tokens, strings.ToLower(f))
		}
	}
	return tokens
}

// keywordScore is the fraction of tokens found in payload's content field.
func keywordScore(tokens []string, payload map[string]any) float32 {
	if len(tokens) == 0 {
		return 0
	}
	content, _ := payload["content"].(string)
	content = strings.ToLower(content)
	matched := 0
	for _, t := range tokens {
		if strings.Contains(content, t) {
			matched++
		}
	}
	return float32(matched) / float32(len(tokens))
}

func chunkFromResult(facet string, r vectorstore.SearchResult) Chunk {
	file, _ := r.Payload["file"].(string)
	language, _ := r.Payload["language"].(string)
	content, _ := r.Payload["content"].(string)
	return Chunk{File: file, Language: language, Content: content, Score: r.Score, Facet: facet}
}
