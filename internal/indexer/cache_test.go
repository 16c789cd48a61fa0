package indexer_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kiverlab/codegraph/internal/indexer"
)

func TestHashIndexDefaultsEmpty(t *testing.T) {
	caches, err := indexer.NewCaches(0)
	require.NoError(t, err)

	idx := caches.HashIndex("acme")
	assert.Empty(t, idx)
}

func TestSetHashIndexRoundTrips(t *testing.T) {
	caches, err := indexer.NewCaches(0)
	require.NoError(t, err)

	caches.SetHashIndex("acme", indexer.FileHashIndex{"main.go": {MD5: "abc"}})

	idx := caches.HashIndex("acme")
	assert.Equal(t, "abc", idx["main.go"].MD5)
}

func TestProgressDefaultsIdle(t *testing.T) {
	caches, err := indexer.NewCaches(0)
	require.NoError(t, err)

	p := caches.Progress("acme")
	assert.Equal(t, indexer.StatusIdle, p.Status)
}

func TestIsIndexingTracksStatus(t *testing.T) {
	caches, err := indexer.NewCaches(0)
	require.NoError(t, err)

	assert.False(t, caches.IsIndexing("acme"))
}
