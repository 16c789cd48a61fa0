package parser

import (
	"context"
	"strings"

	sitter "github.com/tree-sitter/go-tree-sitter"
)

// treeSitterParser holds a compiled grammar and walks its parse tree into
// Chunks, one per node, at any depth, whose kind the caller designates as
// a symbol boundary (class, interface, function, and similar
// declarations); a method inside a class gets its own chunk as well.
type treeSitterParser struct {
	language    *sitter.Language
	lang        string
	nodeKinds   map[string]string // tree-sitter node kind -> symbol kind
	importKinds map[string]bool   // node kinds that denote an import statement
}

func newTreeSitterParser(language *sitter.Language, lang string, nodeKinds map[string]string, importKinds ...string) *treeSitterParser {
	kinds := make(map[string]bool, len(importKinds))
	for _, k := range importKinds {
		kinds[k] = true
	}
	return &treeSitterParser{language: language, lang: lang, nodeKinds: nodeKinds, importKinds: kinds}
}

func (p *treeSitterParser) Parse(_ context.Context, _ string, content []byte) ([]Chunk, error) {
	parser := sitter.NewParser()
	defer parser.Close()
	parser.SetLanguage(p.language)

	tree := parser.Parse(content, nil)
	if tree == nil {
		return FallbackChunk(string(content), p.lang), nil
	}
	defer tree.Close()

	root := tree.RootNode()
	lines := strings.Split(string(content), "\n")
	imports := p.collectImports(root, content)

	var chunks []Chunk
	walkNode(root, func(n *sitter.Node) bool {
		kind, ok := p.nodeKinds[n.Kind()]
		if !ok {
			return true
		}
		name := nodeName(n, content)
		start := int(n.StartPosition().Row) + 1
		end := int(n.EndPosition().Row) + 1
		chunks = append(chunks, Chunk{
			Content:   sliceLines(lines, start, end),
			StartLine: start,
			EndLine:   end,
			Language:  p.lang,
			Imports:   imports,
			Symbols: []Symbol{{
				Name:      name,
				Kind:      kind,
				StartLine: start,
				EndLine:   end,
				Exported:  true,
			}},
		})
		return true
	})

	if len(chunks) == 0 {
		return FallbackChunk(string(content), p.lang), nil
	}
	return chunks, nil
}

func (p *treeSitterParser) collectImports(root *sitter.Node, content []byte) []string {
	var imports []string
	walkNode(root, func(n *sitter.Node) bool {
		if p.importKinds[n.Kind()] {
			imports = append(imports, strings.TrimSpace(nodeText(n, content)))
		}
		return true
	})
	return imports
}

func nodeName(n *sitter.Node, content []byte) string {
	if name := n.ChildByFieldName("name"); name != nil {
		return nodeText(name, content)
	}
	return ""
}

func nodeText(n *sitter.Node, content []byte) string {
	if n == nil {
		return ""
	}
	return string(content[n.StartByte():n.EndByte()])
}

func walkNode(n *sitter.Node, visit func(*sitter.Node) bool) {
	if n == nil || !visit(n) {
		return
	}
	for i := uint(0); i < n.ChildCount(); i++ {
		walkNode(n.Child(i), visit)
	}
}
