// Package symbols implements the symbol index: a vector collection of one
// point per exported-or-defined symbol, enabling fast name lookup,
// file-export listing, and cross-file context composition for anchors.
//
// Symbols for a file are replaced as a set: IndexFile first clears the
// file's existing symbols, then upserts the new set, so a reindex never
// leaves stale entries behind. The replacement is not atomic: the clear
// and the upsert are separate store calls, so between them, and after a
// failed embedding or upsert, the file has no symbols in the index.
package symbols
