// Package graph implements the dependency graph store: edges between
// files, indexed as vector points so they can be semantically searched,
// but queried primarily through payload filters.
//
// Each query (Expand, Dependents, Dependencies, BlastRadius) fetches the
// bounded neighborhood it needs from the vector store through payload
// filters. Expand assembles its hops into an in-process
// github.com/dominikbraun/graph graph for the adjacency view; Dependents,
// Dependencies and BlastRadius work directly on the scrolled edge points.
package graph
