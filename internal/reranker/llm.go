package reranker

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// rerankRankDecay is how much relevance score drops per rank position in
// the LLM-ordered result: rank 0 scores 1.0, rank 1 scores 0.95, and so on.
const rerankRankDecay = 0.05

// maxSnippetChars bounds how much of a document's content the rerank
// prompt quotes per candidate, keeping the prompt itself small.
const maxSnippetChars = 300

var indexArrayPattern = regexp.MustCompile(`\[[0-9,\s]*\]`)

// LLMReranker asks an LLM to order candidates by relevance to the query
// and returns that order. It never fails outright: a client error or an
// unparseable reply falls back to original-score order.
type LLMReranker struct {
	client LLMClient
}

// NewLLMReranker builds an LLMReranker over client.
func NewLLMReranker(client LLMClient) *LLMReranker {
	return &LLMReranker{client: client}
}

// Rerank asks the LLM for a relevance ordering of docs and re-scores them
// as 1-0.05*rank. Documents the LLM's reply didn't mention keep their
// original score and are appended after the ranked ones.
func (r *LLMReranker) Rerank(ctx context.Context, query string, docs []Document, topK int) ([]ScoredDocument, error) {
	if ctx == nil {
		return nil, ErrNilContext
	}
	if topK <= 0 {
		topK = len(docs)
	}
	if len(docs) == 0 {
		return []ScoredDocument{}, nil
	}

	reply, err := r.client.Complete(ctx, buildRerankPrompt(query, docs))
	if err != nil {
		return fallbackRank(docs, topK), nil
	}

	order, err := parseIndexArray(reply)
	if err != nil {
		return fallbackRank(docs, topK), nil
	}

	ranked := make([]ScoredDocument, 0, len(docs))
	seen := make(map[int]bool, len(order))
	for rank, idx := range order {
		if idx < 0 || idx >= len(docs) || seen[idx] {
			continue
		}
		seen[idx] = true
		ranked = append(ranked, ScoredDocument{
			Document:      docs[idx],
			RerankerScore: 1 - rerankRankDecay*float32(rank),
			OriginalRank:  idx,
		})
	}
	for i, doc := range docs {
		if seen[i] {
			continue
		}
		ranked = append(ranked, ScoredDocument{Document: doc, RerankerScore: doc.Score, OriginalRank: i})
	}

	if topK < len(ranked) {
		ranked = ranked[:topK]
	}
	return ranked, nil
}

// Close releases no resources; the underlying LLMClient owns its own.
func (r *LLMReranker) Close() error { return nil }

func buildRerankPrompt(query string, docs []Document) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Query: %s\n\nCandidates:\n", query)
	for i, d := range docs {
		snippet := d.Content
		if len(snippet) > maxSnippetChars {
			snippet = snippet[:maxSnippetChars]
		}
		fmt.Fprintf(&b, "[%d] %s\n", i, snippet)
	}
	b.WriteString("\nReturn ONLY a JSON array of the candidate indices above, ordered from most to least relevant to the query. No other text.")
	return b.String()
}

// parseIndexArray extracts the first "[...]" substring from reply and
// parses it as a list of integer candidate indices.
func parseIndexArray(reply string) ([]int, error) {
	match := indexArrayPattern.FindString(reply)
	if match == "" {
		return nil, fmt.Errorf("reranker: no JSON index array in LLM reply")
	}

	parts := strings.Split(strings.Trim(match, "[]"), ",")
	order := make([]int, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		idx, err := strconv.Atoi(p)
		if err != nil {
			return nil, fmt.Errorf("reranker: invalid index %q: %w", p, err)
		}
		order = append(order, idx)
	}
	if len(order) == 0 {
		return nil, fmt.Errorf("reranker: empty index array")
	}
	return order, nil
}
