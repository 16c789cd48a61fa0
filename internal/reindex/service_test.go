package reindex_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kiverlab/codegraph/internal/embeddings"
	"github.com/kiverlab/codegraph/internal/graph"
	"github.com/kiverlab/codegraph/internal/indexer"
	"github.com/kiverlab/codegraph/internal/parser"
	"github.com/kiverlab/codegraph/internal/reindex"
	"github.com/kiverlab/codegraph/internal/symbols"
	"github.com/kiverlab/codegraph/internal/vectorstore"
)

type fakeStore struct {
	vectorstore.Store

	aliases   map[string]string
	upserts   map[string][]vectorstore.Point
	cleared   []string
	deleted   []string
	createErr error
}

func newFakeStore() *fakeStore {
	return &fakeStore{aliases: map[string]string{}, upserts: map[string][]vectorstore.Point{}}
}

func (f *fakeStore) Ensure(ctx context.Context, collection string) error { return nil }

func (f *fakeStore) EnsureWithSparse(ctx context.Context, collection string) error { return nil }

func (f *fakeStore) Upsert(ctx context.Context, collection string, points []vectorstore.Point) error {
	f.upserts[collection] = append(f.upserts[collection], points...)
	return nil
}
func (f *fakeStore) UpsertSparse(ctx context.Context, collection string, points []vectorstore.Point) error {
	return f.Upsert(ctx, collection, points)
}

func (f *fakeStore) DeleteByFilter(ctx context.Context, collection string, filter *vectorstore.Filter) error {
	return nil
}

func (f *fakeStore) Scroll(ctx context.Context, collection string, filter *vectorstore.Filter, limit int) ([]vectorstore.SearchResult, error) {
	return nil, nil
}

func (f *fakeStore) Clear(ctx context.Context, collection string) error {
	f.cleared = append(f.cleared, collection)
	return nil
}

func (f *fakeStore) CollectionExists(ctx context.Context, collection string) (bool, error) {
	_, ok := f.upserts[collection]
	return ok, nil
}

func (f *fakeStore) DeleteCollection(ctx context.Context, collection string) error {
	f.deleted = append(f.deleted, collection)
	delete(f.upserts, collection)
	return nil
}

func (f *fakeStore) ListAliases(ctx context.Context) (map[string]string, error) {
	out := map[string]string{}
	for k, v := range f.aliases {
		out[k] = v
	}
	return out, nil
}

func (f *fakeStore) CreateAlias(ctx context.Context, alias, collection string) error {
	if f.createErr != nil {
		return f.createErr
	}
	f.aliases[alias] = collection
	return nil
}

func (f *fakeStore) UpdateAlias(ctx context.Context, alias, collection string) error {
	f.aliases[alias] = collection
	return nil
}

func newTestIndexer(store *fakeStore) *indexer.Service {
	embedder := embeddings.NewFakeProvider(8, false)
	caches, err := indexer.NewCaches(0)
	if err != nil {
		panic(err)
	}
	return indexer.NewService(
		store,
		embedder,
		parser.NewRegistry(),
		symbols.NewService(store, embedder, nil),
		graph.NewService(store, embedder, nil),
		caches,
		nil,
		false,
	)
}

const sampleGo = `package main

func Hello() string {
	return "hi"
}
`

func TestReindexCreatesAliasOnFirstRun(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "main.go"), []byte(sampleGo), 0o644))

	store := newFakeStore()
	svc := reindex.NewService(store, newTestIndexer(store), nil, nil)

	result, err := svc.Reindex(context.Background(), reindex.Request{
		ProjectName: "acme",
		ProjectPath: root,
		Patterns:    []string{"**/*.go"},
	})
	require.NoError(t, err)

	assert.True(t, result.AliasFlipped)
	assert.Equal(t, "acme_codebase", result.AliasName)
	assert.Equal(t, store.aliases["acme_codebase"], result.NewCollection)
	assert.False(t, result.PreviousDeleted)
}

func TestReindexFlipsAndDeletesPreviousCollection(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "main.go"), []byte(sampleGo), 0o644))

	store := newFakeStore()
	store.aliases["acme_codebase"] = "acme_codebase_20250101000000"
	store.upserts["acme_codebase_20250101000000"] = nil

	svc := reindex.NewService(store, newTestIndexer(store), nil, nil)

	result, err := svc.Reindex(context.Background(), reindex.Request{
		ProjectName: "acme",
		ProjectPath: root,
		Patterns:    []string{"**/*.go"},
	})
	require.NoError(t, err)

	assert.True(t, result.AliasFlipped)
	assert.True(t, result.PreviousDeleted)
	assert.Contains(t, store.deleted, "acme_codebase_20250101000000")
	assert.Equal(t, result.NewCollection, store.aliases["acme_codebase"])
}

func TestReindexCleansUpShadowWhenNoFilesIndexed(t *testing.T) {
	root := t.TempDir() // empty project, nothing matches

	store := newFakeStore()
	svc := reindex.NewService(store, newTestIndexer(store), nil, nil)

	result, err := svc.Reindex(context.Background(), reindex.Request{
		ProjectName: "acme",
		ProjectPath: root,
		Patterns:    []string{"**/*.go"},
	})
	require.Error(t, err)
	assert.False(t, result.AliasFlipped)
	assert.Empty(t, store.aliases["acme_codebase"])
}

func TestReindexInvokesOnFlipCallback(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "main.go"), []byte(sampleGo), 0o644))

	store := newFakeStore()
	var flipped string
	svc := reindex.NewService(store, newTestIndexer(store), nil, func(alias string) { flipped = alias })

	_, err := svc.Reindex(context.Background(), reindex.Request{
		ProjectName: "acme",
		ProjectPath: root,
		Patterns:    []string{"**/*.go"},
	})
	require.NoError(t, err)
	assert.Equal(t, "acme_codebase", flipped)
}
