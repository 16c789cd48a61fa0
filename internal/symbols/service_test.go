package symbols_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kiverlab/codegraph/internal/embeddings"
	"github.com/kiverlab/codegraph/internal/parser"
	"github.com/kiverlab/codegraph/internal/symbols"
	"github.com/kiverlab/codegraph/internal/vectorstore"
)

// fakeStore implements vectorstore.Store by embedding the (nil) interface
// and overriding only the operations the symbol index calls.
type fakeStore struct {
	vectorstore.Store

	ensured         []string
	deletedFilter   []*vectorstore.Filter
	upserted        []vectorstore.Point
	searchResult    []vectorstore.SearchResult
	scrollResult    []vectorstore.SearchResult
	searchThreshold *float32
}

func (f *fakeStore) Ensure(ctx context.Context, collection string) error {
	f.ensured = append(f.ensured, collection)
	return nil
}

func (f *fakeStore) DeleteByFilter(ctx context.Context, collection string, filter *vectorstore.Filter) error {
	f.deletedFilter = append(f.deletedFilter, filter)
	return nil
}

func (f *fakeStore) Upsert(ctx context.Context, collection string, points []vectorstore.Point) error {
	f.upserted = append(f.upserted, points...)
	return nil
}

func (f *fakeStore) Search(ctx context.Context, collection string, dense []float32, limit int, filter *vectorstore.Filter, threshold *float32) ([]vectorstore.SearchResult, error) {
	f.searchThreshold = threshold
	return f.searchResult, nil
}

func (f *fakeStore) Scroll(ctx context.Context, collection string, filter *vectorstore.Filter, limit int) ([]vectorstore.SearchResult, error) {
	return f.scrollResult, nil
}

func TestIndexFileClearsThenUpserts(t *testing.T) {
	store := &fakeStore{}
	svc := symbols.NewService(store, embeddings.NewFakeProvider(8, false), nil)

	lines := []string{"func Foo() error {", "	return nil", "}"}
	syms := []parser.Symbol{{Name: "Foo", Kind: "function", StartLine: 1, EndLine: 3, Exported: true}}

	err := svc.IndexFile(context.Background(), "acme", "main.go", syms, lines)
	require.NoError(t, err)

	require.Len(t, store.deletedFilter, 1)
	assert.Equal(t, "main.go", store.deletedFilter[0].Must["file"])
	require.Len(t, store.upserted, 1)
	assert.Equal(t, "Foo", store.upserted[0].Payload["name"])
	assert.Equal(t, true, store.upserted[0].Payload["exports"])
	assert.Equal(t, "func Foo() error", store.upserted[0].Payload["signature"])
}

func TestIndexFileNoSymbolsStillClears(t *testing.T) {
	store := &fakeStore{}
	svc := symbols.NewService(store, embeddings.NewFakeProvider(8, false), nil)

	err := svc.IndexFile(context.Background(), "acme", "empty.go", nil, nil)
	require.NoError(t, err)
	assert.Len(t, store.deletedFilter, 1)
	assert.Empty(t, store.upserted)
}

func TestFindSymbolAppliesThreshold(t *testing.T) {
	store := &fakeStore{
		searchResult: []vectorstore.SearchResult{
			{ID: "1", Score: 0.9, Payload: map[string]any{"name": "Foo", "kind": "function", "file": "main.go"}},
		},
	}
	svc := symbols.NewService(store, embeddings.NewFakeProvider(8, false), nil)

	matches, err := svc.FindSymbol(context.Background(), "acme", "Foo", "function", 5)
	require.NoError(t, err)
	require.Len(t, matches, 1)
	assert.Equal(t, "Foo", matches[0].Name)
	assert.Equal(t, float32(0.9), matches[0].Score)
	require.NotNil(t, store.searchThreshold)
	assert.Equal(t, float32(0.5), *store.searchThreshold)
}

func TestFileExportsFiltersExported(t *testing.T) {
	store := &fakeStore{
		scrollResult: []vectorstore.SearchResult{
			{ID: "1", Payload: map[string]any{"name": "Foo", "file": "main.go", "signature": "func Foo()", "exports": true}},
		},
	}
	svc := symbols.NewService(store, embeddings.NewFakeProvider(8, false), nil)

	records, err := svc.FileExports(context.Background(), "acme", "main.go")
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "Foo", records[0].Name)
	assert.True(t, records[0].Exported)
}

func TestCrossFileContextFormatsLines(t *testing.T) {
	store := &fakeStore{
		scrollResult: []vectorstore.SearchResult{
			{ID: "1", Payload: map[string]any{"name": "Foo", "file": "util.go", "signature": "func Foo()", "exports": true}},
		},
	}
	svc := symbols.NewService(store, embeddings.NewFakeProvider(8, false), nil)

	lines, err := svc.CrossFileContext(context.Background(), "acme", "main.go", []string{"util.go"})
	require.NoError(t, err)
	require.Len(t, lines, 1)
	assert.Equal(t, "// from util.go: func Foo()", lines[0])
}
