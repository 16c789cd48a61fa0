package parser

import (
	sitter "github.com/tree-sitter/go-tree-sitter"
	typescript "github.com/tree-sitter/tree-sitter-typescript/bindings/go"
)

// tsNodeKinds maps the TypeScript grammar's declaration nodes to symbol
// kinds. extends_clause is handled separately by edges.go since it is an
// edge, not a chunk boundary.
var tsNodeKinds = map[string]string{
	"class_declaration":      "class",
	"interface_declaration":  "interface",
	"type_alias_declaration": "type",
	"function_declaration":   "function",
	"lexical_declaration":    "var",
	"enum_declaration":       "enum",
	"method_definition":      "method",
}

func newTypeScriptParser() *treeSitterParser {
	lang := sitter.NewLanguage(typescript.LanguageTypescript())
	return newTreeSitterParser(lang, "typescript", tsNodeKinds, "import_statement")
}
