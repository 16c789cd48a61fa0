// Package reindex implements the zero-downtime full rebuild: a fresh
// build into a shadow collection, an atomic alias flip once it succeeds,
// and best-effort cleanup of the collection the alias previously pointed
// at. Readers addressing the alias never see a partially-built index.
package reindex
