// Package vectorstore is the vector store facade: the only component that
// talks to the external vector database (Qdrant, over native gRPC).
//
// Collections are named {project}_{suffix} by the project package; this
// package treats a collection name as an opaque string and exposes a
// uniform set of operations over it: creation with payload indexes,
// batched dense/sparse upsert, dense search with named-vector fallback,
// hybrid (dense+sparse) search with native or client-side Reciprocal Rank
// Fusion, grouped search, deletion, counting, faceting, aggregate stats,
// alias management for zero-downtime reindexing, similarity clustering
// and duplicate detection, scalar quantization, and snapshots.
//
// Every call that talks to Qdrant goes through retry, which applies
// exponential backoff to transient gRPC failures and trips a per-operation
// circuit breaker after repeated failures. A NotFound on a missing
// collection is not an error for reads: Search, Count, and AggregateStats
// return empty/zero results instead. On Upsert and UpsertSparse, a
// NotFound triggers an implicit Ensure before retrying once; Clear treats
// a missing collection as already empty, and other writes return the error.
package vectorstore
