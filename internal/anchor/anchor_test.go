package anchor_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/kiverlab/codegraph/internal/anchor"
	"github.com/kiverlab/codegraph/internal/parser"
)

func TestBuildCodeHeaderUsesSlashPrefix(t *testing.T) {
	header := anchor.Build(anchor.Header{
		Path:      "internal/service/handler.go",
		ChunkKind: parser.ChunkKindCode,
		Layer:     parser.LayerAPI,
		Service:   "checkout",
		Symbols:   []string{"A", "B", "C", "D", "E", "F"},
		Imports:   []string{"fmt", "strings"},
	})

	lines := strings.Split(strings.TrimRight(header, "\n"), "\n")
	assert.Equal(t, "// File: internal/service/handler.go [code]", lines[0])
	assert.Equal(t, "// Layer: api | Service: checkout", lines[1])
	assert.Equal(t, "// Defines: A, B, C, D, E", lines[2]) // capped at 5
	assert.Equal(t, "// Imports: fmt, strings", lines[3])
}

func TestBuildDocsHeaderUsesHashPrefix(t *testing.T) {
	header := anchor.Build(anchor.Header{
		Path:      "README.md",
		ChunkKind: parser.ChunkKindDocs,
		Layer:     parser.LayerOther,
	})
	assert.True(t, strings.HasPrefix(header, "# File: README.md [docs]"))
}

func TestBuildOmitsEmptySections(t *testing.T) {
	header := anchor.Build(anchor.Header{Path: "a.go", ChunkKind: parser.ChunkKindCode, Layer: parser.LayerOther})
	assert.NotContains(t, header, "Defines:")
	assert.NotContains(t, header, "Imports:")
}

func TestAnchorPrependsHeaderToContent(t *testing.T) {
	out := anchor.Anchor("package main", anchor.Header{Path: "a.go", ChunkKind: parser.ChunkKindCode, Layer: parser.LayerOther})
	assert.True(t, strings.HasSuffix(out, "\npackage main"))
	assert.Contains(t, out, "File: a.go [code]")
}
