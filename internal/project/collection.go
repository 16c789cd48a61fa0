package project

import (
	"fmt"

	"github.com/kiverlab/codegraph/internal/sanitize"
)

// Suffix identifies a project-scoped collection kind.
type Suffix string

const (
	// SuffixCode stores source-code chunks.
	SuffixCode Suffix = "code"

	// SuffixDocs stores prose/documentation chunks.
	SuffixDocs Suffix = "docs"

	// SuffixConfig stores configuration-file chunks.
	SuffixConfig Suffix = "config"

	// SuffixContracts stores API/contract definition chunks.
	SuffixContracts Suffix = "contracts"

	// SuffixCodebase is the legacy union of all chunk types. Regular
	// indexing writes to it only when LEGACY_CODEBASE_COLLECTION is
	// enabled; a zero-downtime reindex always builds it behind its alias.
	SuffixCodebase Suffix = "codebase"

	// SuffixMemory stores durable memories.
	SuffixMemory Suffix = "memory"

	// SuffixMemoryPending stores quarantined (unvalidated) memories.
	SuffixMemoryPending Suffix = "memory_pending"

	// SuffixSymbols stores the per-project symbol index.
	SuffixSymbols Suffix = "symbols"

	// SuffixGraph stores the inter-file dependency edges.
	SuffixGraph Suffix = "graph"
)

// AllSuffixes lists every collection suffix a project owns.
func AllSuffixes() []Suffix {
	return []Suffix{
		SuffixCode,
		SuffixDocs,
		SuffixConfig,
		SuffixContracts,
		SuffixCodebase,
		SuffixMemory,
		SuffixMemoryPending,
		SuffixSymbols,
		SuffixGraph,
	}
}

// ChunkSuffixes lists the typed chunk collections index_project routes
// dense points into by chunkType; it excludes the legacy codebase union
// and the non-chunk collections (memory, symbols, graph).
func ChunkSuffixes() []Suffix {
	return []Suffix{SuffixCode, SuffixDocs, SuffixConfig, SuffixContracts}
}

// CollectionName returns the sanitized {project}_{suffix} collection name.
func CollectionName(projectID string, suffix Suffix) (string, error) {
	if err := Validate(projectID); err != nil {
		return "", err
	}
	if suffix == "" {
		return "", ErrEmptyCollection
	}
	return fmt.Sprintf("%s_%s", sanitize.Identifier(projectID), suffix), nil
}

// MustCollectionName is CollectionName without an error return, for call
// sites that already validated projectID and suffix.
func MustCollectionName(projectID string, suffix Suffix) string {
	name, err := CollectionName(projectID, suffix)
	if err != nil {
		panic(err)
	}
	return name
}

// AllCollectionNames returns every collection name a project owns.
func AllCollectionNames(projectID string) ([]string, error) {
	if err := Validate(projectID); err != nil {
		return nil, err
	}

	suffixes := AllSuffixes()
	names := make([]string, 0, len(suffixes))
	for _, s := range suffixes {
		name, err := CollectionName(projectID, s)
		if err != nil {
			return nil, fmt.Errorf("collection name for suffix %s: %w", s, err)
		}
		names = append(names, name)
	}
	return names, nil
}

// ChunkCollectionName returns the typed chunk collection name for a
// chunkType string as produced by the parser registry (e.g. "code",
// "docs"). Callers MUST check chunkType != "unknown" before calling, per
// the indexer's upsert routing rule.
func ChunkCollectionName(projectID, chunkType string) (string, error) {
	return CollectionName(projectID, Suffix(chunkType))
}
