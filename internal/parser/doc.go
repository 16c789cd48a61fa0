// Package parser maps source files to language-specific structural parsers
// and extracts dependency edges between files.
//
// A Registry dispatches by file extension to a Parser, which turns file
// content into Chunks carrying real line ranges, a language tag, and the
// symbols/imports found within. Files with no registered parser fall back
// to a line-budget chunker. ClassifyFile decides the chunk kind
// (code/docs/config/contracts/unknown) from the path alone, independent of
// whether a structural parser exists for the file's language.
//
// Edge extraction is a second, independent pass over the same parsed
// structure: it reports import (and, where the grammar exposes it, extends)
// relationships as RawEdges carrying the unresolved import or base-class
// reference; the indexer resolves those into file-to-file graph edges.
// A file that fails structural parsing is still chunked by the
// fallback chunker and still indexed; edge extraction failures are logged
// and otherwise ignored.
package parser
