package contextpack

import (
	"context"
	"fmt"
	"sort"

	"go.uber.org/zap"

	"github.com/kiverlab/codegraph/internal/embeddings"
	"github.com/kiverlab/codegraph/internal/graph"
	"github.com/kiverlab/codegraph/internal/reranker"
	"github.com/kiverlab/codegraph/internal/vectorstore"
)

// defaultSemanticWeight is w in the fallback fusion formula when the
// caller doesn't set one.
const defaultSemanticWeight = 0.7

// Service builds token-budgeted context packs for a query.
type Service struct {
	store    vectorstore.Store
	embedder embeddings.Provider
	graph    *graph.Service
	reranker reranker.Reranker
	memory   DurableRecaller
	logger   *zap.Logger
}

// NewService builds a Service. reranker and memory may be nil: nil
// reranker skips the LLM rerank step (fused-score order stands); nil
// memory skips guardrails entirely.
func NewService(store vectorstore.Store, embedder embeddings.Provider, graphSvc *graph.Service, rerank reranker.Reranker, memory DurableRecaller, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{store: store, embedder: embedder, graph: graphSvc, reranker: rerank, memory: memory, logger: logger}
}

// Build assembles a context pack for req.
func (s *Service) Build(ctx context.Context, req Request) (*Pack, error) {
	if req.ProjectName == "" {
		return nil, fmt.Errorf("contextpack: project name is required")
	}
	if req.Query == "" {
		return nil, fmt.Errorf("contextpack: query is required")
	}
	if req.MaxTokens <= 0 {
		return nil, fmt.Errorf("contextpack: maxTokens must be positive")
	}
	semanticWeight := req.SemanticWeight
	if semanticWeight <= 0 {
		semanticWeight = defaultSemanticWeight
	}

	full, err := s.embedder.EmbedFull(ctx, req.Query)
	if err != nil {
		return nil, fmt.Errorf("embedding query: %w", err)
	}

	specs := decomposeFacets(req.Query)
	facets := make([]Facet, 0, len(specs)+1)
	for _, spec := range specs {
		chunks, err := s.retrieveFacet(ctx, req.ProjectName, req.Query, full, spec, semanticWeight)
		if err != nil {
			return nil, fmt.Errorf("retrieving facet %s: %w", spec.name, err)
		}
		facets = append(facets, Facet{Name: spec.name, Chunks: chunks})
	}

	if req.GraphExpand && facetsHaveChunks(facets) {
		graphChunks, err := s.expandGraph(ctx, req.ProjectName, full.Dense, facets)
		if err != nil {
			s.logger.Warn("graph expansion failed, continuing without it", zap.Error(err))
		} else if len(graphChunks) > 0 {
			facets = append(facets, Facet{Name: "graph", Chunks: graphChunks})
		}
	}

	flat := flattenFacets(facets)
	sort.SliceStable(flat, func(i, j int) bool { return flat[i].Score > flat[j].Score })

	flat = s.maybeRerank(ctx, req.Query, flat)

	compressed, totalTokens := compressToTokenBudget(flat, req.MaxTokens)

	guardrails, err := s.buildGuardrails(ctx, req)
	if err != nil {
		return nil, err
	}

	pack := &Pack{
		Facets:      regroupByFacet(compressed, specs),
		TotalTokens: totalTokens,
		Guardrails:  guardrails,
		Assembled:   assemble(compressed, guardrails),
	}
	return pack, nil
}

func facetsHaveChunks(facets []Facet) bool {
	for _, f := range facets {
		if len(f.Chunks) > 0 {
			return true
		}
	}
	return false
}

func flattenFacets(facets []Facet) []Chunk {
	total := 0
	for _, f := range facets {
		total += len(f.Chunks)
	}
	out := make([]Chunk, 0, total)
	for _, f := range facets {
		out = append(out, f.Chunks...)
	}
	return out
}

// regroupByFacet rebuilds the facet view of the final, compressed chunk
// list, ordered by the original facet priority with "graph" (priority
// beyond any declared facet) last.
func regroupByFacet(chunks []Chunk, specs []facetSpec) []Facet {
	priority := make(map[string]int, len(specs)+1)
	for _, spec := range specs {
		priority[spec.name] = spec.priority
	}
	const graphPriority = 1000

	byFacet := make(map[string][]Chunk)
	var names []string
	for _, c := range chunks {
		if _, ok := byFacet[c.Facet]; !ok {
			names = append(names, c.Facet)
		}
		byFacet[c.Facet] = append(byFacet[c.Facet], c)
	}

	sort.Slice(names, func(i, j int) bool {
		pi, ok := priority[names[i]]
		if !ok {
			pi = graphPriority
		}
		pj, ok := priority[names[j]]
		if !ok {
			pj = graphPriority
		}
		return pi < pj
	})

	out := make([]Facet, 0, len(names))
	for _, name := range names {
		out = append(out, Facet{Name: name, Chunks: byFacet[name]})
	}
	return out
}
