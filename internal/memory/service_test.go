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

// fakeStore implements vectorstore.Store by embedding the (nil) interface
// and overriding only what the memory service's read/write paths call.
type fakeStore struct {
	vectorstore.Store

	ensured []string
	upserts map[string][]vectorstore.Point
	deleted map[string][]string

	searchResults map[string][]vectorstore.SearchResult
	scrollResults map[string][]vectorstore.SearchResult
	lastFilter    map[string]*vectorstore.Filter
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		upserts:       map[string][]vectorstore.Point{},
		deleted:       map[string][]string{},
		searchResults: map[string][]vectorstore.SearchResult{},
		scrollResults: map[string][]vectorstore.SearchResult{},
		lastFilter:    map[string]*vectorstore.Filter{},
	}
}

func (f *fakeStore) Ensure(ctx context.Context, collection string) error {
	f.ensured = append(f.ensured, collection)
	return nil
}

func (f *fakeStore) Upsert(ctx context.Context, collection string, points []vectorstore.Point) error {
	f.upserts[collection] = append(f.upserts[collection], points...)
	return nil
}

func (f *fakeStore) Search(ctx context.Context, collection string, dense []float32, limit int, filter *vectorstore.Filter, scoreThreshold *float32) ([]vectorstore.SearchResult, error) {
	f.lastFilter[collection] = filter
	results := f.searchResults[collection]
	if limit > 0 && limit < len(results) {
		results = results[:limit]
	}
	return results, nil
}

func (f *fakeStore) Scroll(ctx context.Context, collection string, filter *vectorstore.Filter, limit int) ([]vectorstore.SearchResult, error) {
	results := f.scrollResults[collection]
	if filter != nil && filter.Must != nil {
		if id, ok := filter.Must["id"].(string); ok {
			var matched []vectorstore.SearchResult
			for _, r := range results {
				if got, _ := r.Payload["id"].(string); got == id {
					matched = append(matched, r)
				}
			}
			return matched, nil
		}
	}
	return results, nil
}

func (f *fakeStore) Delete(ctx context.Context, collection string, ids []string) error {
	f.deleted[collection] = append(f.deleted[collection], ids...)
	return nil
}

func memoryResult(id string, payload map[string]any) vectorstore.SearchResult {
	return vectorstore.SearchResult{ID: id, Score: 1, Payload: payload}
}

func TestRecordRoutesExplicitMemoryToDurableCollection(t *testing.T) {
	store := newFakeStore()
	embedder := embeddings.NewFakeProvider(8, false)
	svc := memory.NewService(store, embedder, nil)

	m, err := memory.New("acme", memory.TypeDecision, "use postgres for storage", "human", 0)
	require.NoError(t, err)

	require.NoError(t, svc.Record(context.Background(), m))

	assert.Contains(t, store.ensured, "acme_memory")
	assert.Len(t, store.upserts["acme_memory"], 1)
	assert.Empty(t, store.upserts["acme_memory_pending"])
}

func TestRecordRoutesAutoSourcedMemoryToQuarantine(t *testing.T) {
	store := newFakeStore()
	embedder := embeddings.NewFakeProvider(8, false)
	svc := memory.NewService(store, embedder, nil)

	m, err := memory.New("acme", memory.TypeInsight, "observed flaky test", "auto_test_run", 0)
	require.NoError(t, err)

	require.NoError(t, svc.Record(context.Background(), m))

	assert.Contains(t, store.ensured, "acme_memory_pending")
	assert.Len(t, store.upserts["acme_memory_pending"], 1)
	assert.Empty(t, store.upserts["acme_memory"])
	assert.False(t, m.Validated)
	assert.Equal(t, 0.5, m.Confidence)
}

func TestRecallDurableFiltersByType(t *testing.T) {
	store := newFakeStore()
	embedder := embeddings.NewFakeProvider(8, false)
	svc := memory.NewService(store, embedder, nil)

	store.searchResults["acme_memory"] = []vectorstore.SearchResult{
		memoryResult("m1", map[string]any{
			"id": "m1", "project": "acme", "type": "decision", "content": "use postgres",
			"createdAt": "2026-01-01T00:00:00Z", "updatedAt": "2026-01-01T00:00:00Z",
			"source": "human", "confidence": 0.9, "validated": true,
		}),
	}

	hits, err := svc.RecallDurable(context.Background(), "acme", "storage choice", memory.TypeDecision, nil, 5)
	require.NoError(t, err)
	require.Len(t, hits, 1)
	assert.Equal(t, "m1", hits[0].ID)
	assert.Equal(t, memory.TypeDecision, hits[0].Type)

	filter := store.lastFilter["acme_memory"]
	require.NotNil(t, filter)
	assert.Equal(t, "decision", filter.Must["type"])
}

func TestRecallQuarantineUsesPendingCollection(t *testing.T) {
	store := newFakeStore()
	embedder := embeddings.NewFakeProvider(8, false)
	svc := memory.NewService(store, embedder, nil)

	store.searchResults["acme_memory_pending"] = []vectorstore.SearchResult{
		memoryResult("m2", map[string]any{
			"id": "m2", "project": "acme", "type": "note", "content": "todo cleanup",
			"source": "auto_sweep", "confidence": 0.5, "validated": false,
		}),
	}

	hits, err := svc.RecallQuarantine(context.Background(), "acme", "cleanup", "", nil, 5)
	require.NoError(t, err)
	require.Len(t, hits, 1)
	assert.Equal(t, "m2", hits[0].ID)
	assert.False(t, hits[0].Validated)
}

func TestGetQuarantinedReturnsNotFoundWhenMissing(t *testing.T) {
	store := newFakeStore()
	embedder := embeddings.NewFakeProvider(8, false)
	svc := memory.NewService(store, embedder, nil)

	_, err := svc.GetQuarantined(context.Background(), "acme", "missing")
	assert.ErrorIs(t, err, memory.ErrNotFound)
}

func TestGetQuarantinedReturnsMatchingMemory(t *testing.T) {
	store := newFakeStore()
	embedder := embeddings.NewFakeProvider(8, false)
	svc := memory.NewService(store, embedder, nil)

	store.scrollResults["acme_memory_pending"] = []vectorstore.SearchResult{
		memoryResult("m3", map[string]any{
			"id": "m3", "project": "acme", "type": "todo", "content": "fix flaky test",
			"source": "auto_ci", "confidence": 0.5, "validated": false,
			"status": "pending",
		}),
	}

	found, err := svc.GetQuarantined(context.Background(), "acme", "m3")
	require.NoError(t, err)
	assert.Equal(t, memory.TypeTodo, found.Type)
	assert.Equal(t, memory.StatusPending, found.Status)
}

func TestDeleteQuarantinedRemovesFromPendingCollection(t *testing.T) {
	store := newFakeStore()
	embedder := embeddings.NewFakeProvider(8, false)
	svc := memory.NewService(store, embedder, nil)

	require.NoError(t, svc.DeleteQuarantined(context.Background(), "acme", "m4"))
	assert.Equal(t, []string{"m4"}, store.deleted["acme_memory_pending"])
}
