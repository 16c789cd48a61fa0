package contextpack

import "github.com/kiverlab/codegraph/internal/vectorstore"

// EvaluateQuality scores a built Pack's chunks against a caller-supplied
// relevance judgment for offline quality dashboards. It has no effect on
// Build's output and never gates retrieval; callers invoke it after the
// fact, keyed by file path as the document identifier.
func EvaluateQuality(pack *Pack, expectedRanking, relevantFiles []string, k int) vectorstore.QualityMetrics {
	var results []vectorstore.SearchResult
	for _, f := range pack.Facets {
		for _, c := range f.Chunks {
			results = append(results, vectorstore.SearchResult{ID: c.File, Score: c.Score})
		}
	}
	return vectorstore.CalculateAllMetrics(results, expectedRanking, relevantFiles, k)
}
