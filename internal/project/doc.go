// Package project defines the project namespace: a project is a plain
// string identifier, and every collection in the vector store is named
// {project}_{suffix}.
//
// A project owns the typed chunk collections (code, docs, config,
// contracts, and optionally the codebase legacy union), the durable and
// quarantine memory collections, the symbol index, and the dependency
// graph collection. This package has no notion of project CRUD or
// storage; it only validates identifiers and derives collection names.
package project
