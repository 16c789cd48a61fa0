package embeddings_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kiverlab/codegraph/internal/embeddings"
)

func TestFakeProviderEmbedIsDeterministic(t *testing.T) {
	p := embeddings.NewFakeProvider(32, false)
	ctx := context.Background()

	a, err := p.Embed(ctx, "func Foo() error { return nil }")
	require.NoError(t, err)
	b, err := p.Embed(ctx, "func Foo() error { return nil }")
	require.NoError(t, err)

	assert.Equal(t, a, b)
	assert.Len(t, a, 32)
}

func TestFakeProviderEmbedDiffersByInput(t *testing.T) {
	p := embeddings.NewFakeProvider(16, false)
	ctx := context.Background()

	a, err := p.Embed(ctx, "alpha")
	require.NoError(t, err)
	b, err := p.Embed(ctx, "beta")
	require.NoError(t, err)

	assert.NotEqual(t, a, b)
}

func TestFakeProviderEmbedBatchPreservesOrder(t *testing.T) {
	p := embeddings.NewFakeProvider(8, false)
	ctx := context.Background()
	texts := []string{"one", "two", "three"}

	out, err := p.EmbedBatch(ctx, texts)
	require.NoError(t, err)
	require.Len(t, out, 3)

	for i, text := range texts {
		single, err := p.Embed(ctx, text)
		require.NoError(t, err)
		assert.Equal(t, single, out[i])
	}
}

func TestFakeProviderEmbedBatchRejectsEmpty(t *testing.T) {
	p := embeddings.NewFakeProvider(8, false)

	_, err := p.EmbedBatch(context.Background(), nil)
	require.ErrorIs(t, err, embeddings.ErrEmptyInput)

	_, err = p.EmbedBatchFull(context.Background(), []string{})
	require.ErrorIs(t, err, embeddings.ErrEmptyInput)
}

func TestFakeProviderEmbedFullSparseEnabled(t *testing.T) {
	p := embeddings.NewFakeProvider(8, true)
	require.True(t, p.SparseEnabled())

	full, err := p.EmbedFull(context.Background(), "alpha beta alpha")
	require.NoError(t, err)
	require.NotNil(t, full.Sparse)
	assert.Len(t, full.Dense, 8)
	assert.NotEmpty(t, full.Sparse.Indices)
	assert.Equal(t, len(full.Sparse.Indices), len(full.Sparse.Values))
}

func TestFakeProviderEmbedFullSparseDisabled(t *testing.T) {
	p := embeddings.NewFakeProvider(8, false)
	require.False(t, p.SparseEnabled())

	full, err := p.EmbedFull(context.Background(), "alpha")
	require.NoError(t, err)
	assert.Nil(t, full.Sparse)
}

func TestFakeProviderDimension(t *testing.T) {
	p := embeddings.NewFakeProvider(0, false)
	assert.Equal(t, 64, p.Dimension())

	p2 := embeddings.NewFakeProvider(128, false)
	assert.Equal(t, 128, p2.Dimension())
}

func TestFakeProviderImplementsProvider(t *testing.T) {
	var _ embeddings.Provider = embeddings.NewFakeProvider(32, true)
}
