package memory_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kiverlab/codegraph/internal/embeddings"
	"github.com/kiverlab/codegraph/internal/memory"
	"github.com/kiverlab/codegraph/internal/vectorstore"
)

func TestContextPackRecallerReturnsDurableHitsOnly(t *testing.T) {
	store := newFakeStore()
	embedder := embeddings.NewFakeProvider(8, false)
	svc := memory.NewService(store, embedder, nil)
	recaller := memory.NewContextPackRecaller(svc)

	store.searchResults["acme_memory"] = []vectorstore.SearchResult{
		memoryResult("m1", map[string]any{
			"id": "m1", "project": "acme", "type": "decision", "content": "use postgres",
			"source": "human", "confidence": 0.9, "validated": true,
		}),
	}

	hits, err := recaller.RecallDurable(context.Background(), "acme", "storage", "decision", 3)
	require.NoError(t, err)
	require.Len(t, hits, 1)
	assert.Equal(t, "use postgres", hits[0].Content)
}
