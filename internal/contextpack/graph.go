package contextpack

import (
	"context"
	"fmt"

	"github.com/kiverlab/codegraph/internal/project"
	"github.com/kiverlab/codegraph/internal/vectorstore"
)

// Graph expansion bounds: at most maxGraphSeedFiles source files seed the
// expansion, at most maxGraphNewFiles previously-unseen files come back
// from it, and each gets exactly one representative chunk, discounted by
// graphScoreMultiplier since it was found by association, not query match.
const (
	maxGraphSeedFiles    = 5
	maxGraphNewFiles     = 5
	graphHops            = 1
	graphScoreMultiplier = 0.8
)

// expandGraph takes the distinct files already retrieved across facets,
// walks one hop of the dependency graph from them, and fetches a single
// representative chunk for each newly-discovered file.
func (s *Service) expandGraph(ctx context.Context, projectName string, dense []float32, facets []Facet) ([]Chunk, error) {
	seeds := distinctFiles(facets, maxGraphSeedFiles)
	if len(seeds) == 0 {
		return nil, nil
	}

	expanded, err := s.graph.Expand(ctx, projectName, seeds, graphHops)
	if err != nil {
		return nil, fmt.Errorf("graph expand: %w", err)
	}

	seedSet := make(map[string]bool, len(seeds))
	for _, f := range seeds {
		seedSet[f] = true
	}
	newFiles := make([]string, 0, maxGraphNewFiles)
	for _, f := range expanded {
		if seedSet[f] {
			continue
		}
		newFiles = append(newFiles, f)
		if len(newFiles) >= maxGraphNewFiles {
			break
		}
	}
	if len(newFiles) == 0 {
		return nil, nil
	}

	collection, err := project.CollectionName(projectName, project.SuffixCodebase)
	if err != nil {
		return nil, err
	}

	chunks := make([]Chunk, 0, len(newFiles))
	for _, file := range newFiles {
		results, err := s.store.Search(ctx, collection, dense, 1, &vectorstore.Filter{Must: map[string]any{"file": file}}, nil)
		if err != nil {
			return nil, fmt.Errorf("graph chunk fetch %s: %w", file, err)
		}
		if len(results) == 0 {
			continue
		}
		c := chunkFromResult("graph", results[0])
		c.Score *= graphScoreMultiplier
		chunks = append(chunks, c)
	}
	return chunks, nil
}

// distinctFiles collects up to limit distinct source files from facets, in
// the order their chunks appear.
func distinctFiles(facets []Facet, limit int) []string {
	seen := make(map[string]bool)
	out := make([]string, 0, limit)
	for _, f := range facets {
		for _, c := range f.Chunks {
			if c.File == "" || seen[c.File] {
				continue
			}
			seen[c.File] = true
			out = append(out, c.File)
			if len(out) >= limit {
				return out
			}
		}
	}
	return out
}
