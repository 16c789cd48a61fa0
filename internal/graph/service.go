package graph

import (
	"context"
	"fmt"

	dgraph "github.com/dominikbraun/graph"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/kiverlab/codegraph/internal/embeddings"
	"github.com/kiverlab/codegraph/internal/project"
	"github.com/kiverlab/codegraph/internal/vectorstore"
)

// scrollPageLimit bounds every edge-fetching scroll to keep hop latency
// predictable.
const scrollPageLimit = 100

// Service indexes and queries a project's file dependency graph.
type Service struct {
	store    vectorstore.Store
	embedder embeddings.Provider
	logger   *zap.Logger
}

// NewService builds a graph store service over store and embedder.
func NewService(store vectorstore.Store, embedder embeddings.Provider, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{store: store, embedder: embedder, logger: logger}
}

// Text renders an edge in the form the graph collection embeds so it can
// be found by semantic search: "{fromFile}:{fromSymbol} {edgeType} {toFile}:{toSymbol}".
func Text(e Edge) string {
	from := e.FromFile
	if e.FromSymbol != "" {
		from += ":" + e.FromSymbol
	}
	to := e.ToFile
	if e.ToSymbol != "" {
		to += ":" + e.ToSymbol
	}
	return from + " " + e.EdgeType + " " + to
}

// IndexFileEdges replaces every edge previously indexed with file as its
// source: clears, then embeds and upserts the new set.
func (s *Service) IndexFileEdges(ctx context.Context, projectID, file string, edges []Edge) error {
	collection, err := project.CollectionName(projectID, project.SuffixGraph)
	if err != nil {
		return err
	}
	if err := s.store.DeleteByFilter(ctx, collection, &vectorstore.Filter{Must: map[string]any{"fromFile": file}}); err != nil {
		return fmt.Errorf("clearing edges for %s: %w", file, err)
	}
	if len(edges) == 0 {
		return nil
	}
	if err := s.store.Ensure(ctx, collection); err != nil {
		return fmt.Errorf("ensuring %s: %w", collection, err)
	}

	texts := make([]string, len(edges))
	for i, e := range edges {
		texts[i] = Text(e)
	}
	dense, err := s.embedder.EmbedBatch(ctx, texts)
	if err != nil {
		return fmt.Errorf("embedding edges for %s: %w", file, err)
	}

	points := make([]vectorstore.Point, len(edges))
	for i, e := range edges {
		points[i] = vectorstore.Point{
			ID:    uuid.NewString(),
			Dense: dense[i],
			Payload: map[string]any{
				"fromFile":   e.FromFile,
				"fromSymbol": e.FromSymbol,
				"toFile":     e.ToFile,
				"toSymbol":   e.ToSymbol,
				"edgeType":   e.EdgeType,
				"project":    projectID,
			},
		}
	}
	return s.store.Upsert(ctx, collection, points)
}

// Expand runs a BFS of the given number of hops over both outgoing and
// incoming edges starting from seedFiles, returning the set of visited
// files (seeds included).
func (s *Service) Expand(ctx context.Context, projectID string, seedFiles []string, hops int) ([]string, error) {
	collection, err := project.CollectionName(projectID, project.SuffixGraph)
	if err != nil {
		return nil, err
	}

	visited := map[string]bool{}
	frontier := make([]string, 0, len(seedFiles))
	for _, f := range seedFiles {
		if !visited[f] {
			visited[f] = true
			frontier = append(frontier, f)
		}
	}

	for hop := 0; hop < hops && len(frontier) > 0; hop++ {
		edges, err := s.fetchHop(ctx, collection, projectID, frontier)
		if err != nil {
			return nil, err
		}

		g := buildGraph(frontier, edges)
		next := neighborsOf(g, frontier)

		frontier = frontier[:0]
		for _, f := range next {
			if !visited[f] {
				visited[f] = true
				frontier = append(frontier, f)
			}
		}
	}

	out := make([]string, 0, len(visited))
	for f := range visited {
		out = append(out, f)
	}
	return out, nil
}

// Dependents returns the files that depend on file (incoming edges).
func (s *Service) Dependents(ctx context.Context, projectID, file string) ([]string, error) {
	collection, err := project.CollectionName(projectID, project.SuffixGraph)
	if err != nil {
		return nil, err
	}
	results, err := s.store.Scroll(ctx, collection, &vectorstore.Filter{
		Must: map[string]any{"project": projectID, "toFile": file},
	}, scrollPageLimit)
	if err != nil {
		return nil, fmt.Errorf("scrolling dependents of %s: %w", file, err)
	}
	return distinctField(results, "fromFile"), nil
}

// Dependencies returns the files file depends on (outgoing edges).
func (s *Service) Dependencies(ctx context.Context, projectID, file string) ([]string, error) {
	collection, err := project.CollectionName(projectID, project.SuffixGraph)
	if err != nil {
		return nil, err
	}
	results, err := s.store.Scroll(ctx, collection, &vectorstore.Filter{
		Must: map[string]any{"project": projectID, "fromFile": file},
	}, scrollPageLimit)
	if err != nil {
		return nil, fmt.Errorf("scrolling dependencies of %s: %w", file, err)
	}
	return distinctField(results, "toFile"), nil
}

// BlastRadius follows incoming edges only, up to maxDepth hops, from
// files, returning every file transitively affected by a change to them.
func (s *Service) BlastRadius(ctx context.Context, projectID string, files []string, maxDepth int) (*BlastRadius, error) {
	collection, err := project.CollectionName(projectID, project.SuffixGraph)
	if err != nil {
		return nil, err
	}

	visited := map[string]bool{}
	frontier := make([]string, 0, len(files))
	for _, f := range files {
		if !visited[f] {
			visited[f] = true
			frontier = append(frontier, f)
		}
	}

	depthReached := 0
	edgesTraversed := 0
	for depth := 1; depth <= maxDepth && len(frontier) > 0; depth++ {
		var hopEdges []vectorstore.SearchResult
		for _, f := range frontier {
			results, err := s.store.Scroll(ctx, collection, &vectorstore.Filter{
				Must: map[string]any{"project": projectID, "toFile": f},
			}, scrollPageLimit)
			if err != nil {
				return nil, fmt.Errorf("scrolling incoming edges for %s: %w", f, err)
			}
			hopEdges = append(hopEdges, results...)
		}
		edgesTraversed += len(hopEdges)

		next := make([]string, 0, len(hopEdges))
		for _, r := range hopEdges {
			if from, ok := r.Payload["fromFile"].(string); ok && from != "" {
				next = append(next, from)
			}
		}

		frontier = frontier[:0]
		for _, f := range next {
			if !visited[f] {
				visited[f] = true
				frontier = append(frontier, f)
			}
		}
		if len(frontier) > 0 {
			depthReached = depth
		}
	}

	affected := make([]string, 0, len(visited))
	for f := range visited {
		if !containsString(files, f) {
			affected = append(affected, f)
		}
	}

	return &BlastRadius{
		AffectedFiles:  affected,
		DepthReached:   depthReached,
		EdgesTraversed: edgesTraversed,
	}, nil
}

func (s *Service) fetchHop(ctx context.Context, collection, projectID string, frontier []string) ([]vectorstore.SearchResult, error) {
	var edges []vectorstore.SearchResult
	for _, f := range frontier {
		outgoing, err := s.store.Scroll(ctx, collection, &vectorstore.Filter{
			Must: map[string]any{"project": projectID, "fromFile": f},
		}, scrollPageLimit)
		if err != nil {
			return nil, fmt.Errorf("scrolling outgoing edges for %s: %w", f, err)
		}
		incoming, err := s.store.Scroll(ctx, collection, &vectorstore.Filter{
			Must: map[string]any{"project": projectID, "toFile": f},
		}, scrollPageLimit)
		if err != nil {
			return nil, fmt.Errorf("scrolling incoming edges for %s: %w", f, err)
		}
		edges = append(edges, outgoing...)
		edges = append(edges, incoming...)
	}
	return edges, nil
}

func buildGraph(seed []string, edges []vectorstore.SearchResult) dgraph.Graph[string, string] {
	g := dgraph.New(func(v string) string { return v }, dgraph.Directed())
	for _, v := range seed {
		_ = g.AddVertex(v)
	}
	for _, r := range edges {
		from, _ := r.Payload["fromFile"].(string)
		to, _ := r.Payload["toFile"].(string)
		if from == "" || to == "" {
			continue
		}
		_ = g.AddVertex(from)
		_ = g.AddVertex(to)
		_ = g.AddEdge(from, to)
	}
	return g
}

func neighborsOf(g dgraph.Graph[string, string], frontier []string) []string {
	adjacency, err := g.AdjacencyMap()
	if err != nil {
		return nil
	}
	predecessors, err := g.PredecessorMap()
	if err != nil {
		return nil
	}

	var neighbors []string
	for _, f := range frontier {
		for to := range adjacency[f] {
			neighbors = append(neighbors, to)
		}
		for from := range predecessors[f] {
			neighbors = append(neighbors, from)
		}
	}
	return neighbors
}

func distinctField(results []vectorstore.SearchResult, field string) []string {
	seen := map[string]bool{}
	var out []string
	for _, r := range results {
		v, ok := r.Payload[field].(string)
		if !ok || v == "" || seen[v] {
			continue
		}
		seen[v] = true
		out = append(out, v)
	}
	return out
}

func containsString(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}
