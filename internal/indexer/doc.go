// Package indexer walks a project's file tree and keeps its vector-store
// collections current: it dispatches files to the parser registry, routes
// chunks to the symbol index and graph store, and maintains the two
// process-wide advisory caches (FileHashIndex, IndexProgress) that make
// incremental reindexing cheap.
package indexer
