package anchor

import (
	"fmt"
	"strings"

	"github.com/kiverlab/codegraph/internal/parser"
)

// maxSymbols and maxImports cap how many names appear on the Defines/
// Imports lines.
const (
	maxSymbols = 5
	maxImports = 5
)

// Header describes the file-level context used to build an anchor.
type Header struct {
	Path      string
	ChunkKind parser.ChunkKind
	Layer     parser.Layer
	Service   string
	Symbols   []string
	Imports   []string
}

// commentPrefix returns "#" for markdown/rst/yaml/json/env-like chunk
// kinds and "//" for everything else (code, contracts).
func commentPrefix(kind parser.ChunkKind) string {
	switch kind {
	case parser.ChunkKindDocs, parser.ChunkKindConfig:
		return "#"
	default:
		return "//"
	}
}

// Build renders the deterministic anchor header for h. The header is
// never stored; it exists only in the text handed to the embedder.
func Build(h Header) string {
	prefix := commentPrefix(h.ChunkKind)

	var b strings.Builder
	fmt.Fprintf(&b, "%s File: %s [%s]\n", prefix, h.Path, h.ChunkKind)

	if h.Layer != "" {
		fmt.Fprintf(&b, "%s Layer: %s | Service: %s\n", prefix, h.Layer, h.Service)
	}

	if len(h.Symbols) > 0 {
		fmt.Fprintf(&b, "%s Defines: %s\n", prefix, strings.Join(capList(h.Symbols, maxSymbols), ", "))
	}

	if len(h.Imports) > 0 {
		fmt.Fprintf(&b, "%s Imports: %s\n", prefix, strings.Join(capList(h.Imports, maxImports), ", "))
	}

	return b.String()
}

// Anchor prepends the header for h to content, producing the text that
// should be sent to the embedder. content itself is never modified in
// storage; only this combined text is embedded.
func Anchor(content string, h Header) string {
	return Build(h) + "\n" + content
}

func capList(items []string, max int) []string {
	if len(items) <= max {
		return items
	}
	return items[:max]
}
