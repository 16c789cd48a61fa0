package vectorstore

import "context"

// Store is the vector store facade (C1): the only component permitted to
// talk to the external vector database. Every other component treats
// collections as an opaque name and goes through this interface.
//
// Error policy: a NotFound on a missing collection is not an error for
// reads (the call returns an empty result); on Upsert and UpsertSparse it
// triggers an implicit Ensure, Clear treats it as an already-empty
// collection, and other writes return it. All other errors propagate
// wrapped with the operation name.
type Store interface {
	// Ensure creates collection with dense-only vectors if it does not
	// already exist, installing the standard payload indexes. Idempotent.
	Ensure(ctx context.Context, collection string) error

	// EnsureWithSparse creates collection with named {dense, sparse}
	// vectors if it does not already exist. Idempotent.
	EnsureWithSparse(ctx context.Context, collection string) error

	// Upsert writes dense points in batches of at most MaxDenseUpsertBatch.
	// Returns only after durability is confirmed.
	Upsert(ctx context.Context, collection string, points []Point) error

	// UpsertSparse writes points carrying both dense and sparse vectors,
	// in batches of at most MaxSparseUpsertBatch.
	UpsertSparse(ctx context.Context, collection string, points []Point) error

	// Search performs a dense similarity search. It attempts the named
	// "dense" vector first and falls back to an anonymous vector on a
	// 400-class error (pre-sparse-migration collections).
	Search(ctx context.Context, collection string, dense []float32, limit int, filter *Filter, scoreThreshold *float32) ([]SearchResult, error)

	// SearchHybridNative uses the backend's native fused dense+sparse
	// query when available.
	SearchHybridNative(ctx context.Context, collection string, dense []float32, sparse *SparseVector, limit int, filter *Filter) ([]SearchResult, error)

	// SearchHybridRRF performs separate dense and sparse searches and
	// fuses them client-side with Reciprocal Rank Fusion (k=RRFConstant).
	SearchHybridRRF(ctx context.Context, collection string, dense []float32, sparse *SparseVector, limit int, filter *Filter) ([]SearchResult, error)

	// SearchGroups returns at most one result per distinct value of
	// groupBy, each with up to groupSize hits.
	SearchGroups(ctx context.Context, collection string, dense []float32, groupBy string, limit, groupSize int, filter *Filter) ([]GroupedResult, error)

	// Delete removes points by ID.
	Delete(ctx context.Context, collection string, ids []string) error

	// DeleteByFilter removes every point matching filter.
	DeleteByFilter(ctx context.Context, collection string, filter *Filter) error

	// Count returns the number of points matching filter (or the whole
	// collection when filter is nil).
	Count(ctx context.Context, collection string, filter *Filter) (int, error)

	// Scroll pages through points matching filter without a similarity
	// query, up to limit points, returning their payload (score is
	// always 0). Used for filter-only reads like file_exports.
	Scroll(ctx context.Context, collection string, filter *Filter, limit int) ([]SearchResult, error)

	// FacetCounts returns, for each candidate value, the count of points
	// where field equals that value. Counts run in parallel.
	FacetCounts(ctx context.Context, collection, field string, candidateValues []string) (map[string]int, error)

	// AggregateStats summarizes a collection: total vectors, language
	// breakdown, unique file count, and most recent indexed-at.
	AggregateStats(ctx context.Context, collection string) (*AggregateStats, error)

	// Clear deletes every point in collection via scroll-delete pages.
	Clear(ctx context.Context, collection string) error

	// CreateAlias points alias at collection.
	CreateAlias(ctx context.Context, alias, collection string) error

	// UpdateAlias atomically repoints alias from its current target (if
	// any) to collection.
	UpdateAlias(ctx context.Context, alias, collection string) error

	// DeleteAlias removes alias.
	DeleteAlias(ctx context.Context, alias string) error

	// ListAliases returns every alias and its target collection.
	ListAliases(ctx context.Context) (map[string]string, error)

	// Recommend returns points similar to positiveIDs and dissimilar to
	// negativeIDs.
	Recommend(ctx context.Context, collection string, positiveIDs, negativeIDs []string, limit int, filter *Filter) ([]SearchResult, error)

	// FindClusters groups points around the given seed IDs using vector
	// similarity above threshold.
	FindClusters(ctx context.Context, collection string, seedIDs []string, limit int, threshold float32) ([]Cluster, error)

	// FindDuplicates scrolls up to sampleLimit points with vectors and
	// self-searches each to find near-duplicates above threshold,
	// deduping already-processed IDs as it goes.
	FindDuplicates(ctx context.Context, collection string, sampleLimit int, threshold float32) ([]Cluster, error)

	// EnableQuantization turns on scalar int8 always-in-RAM quantization.
	EnableQuantization(ctx context.Context, collection string, quantile float32) error

	// DisableQuantization turns quantization back off.
	DisableQuantization(ctx context.Context, collection string) error

	// CreateSnapshot creates a point-in-time snapshot of collection.
	CreateSnapshot(ctx context.Context, collection string) (string, error)

	// ListSnapshots lists snapshot names for collection.
	ListSnapshots(ctx context.Context, collection string) ([]string, error)

	// DeleteSnapshot deletes a named snapshot.
	DeleteSnapshot(ctx context.Context, collection, snapshotName string) error

	// RecoverSnapshot restores collection from a previously created snapshot.
	RecoverSnapshot(ctx context.Context, collection, snapshotName string) error

	// CollectionExists reports whether collection exists.
	CollectionExists(ctx context.Context, collection string) (bool, error)

	// DeleteCollection drops collection entirely.
	DeleteCollection(ctx context.Context, collection string) error

	// ListCollections returns every collection name known to the backend.
	ListCollections(ctx context.Context) ([]string, error)

	// GetCollectionInfo returns metadata about collection.
	GetCollectionInfo(ctx context.Context, collection string) (*CollectionInfo, error)

	// Close releases the underlying client connection.
	Close() error
}
