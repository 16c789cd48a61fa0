package parser

import (
	sitter "github.com/tree-sitter/go-tree-sitter"
	python "github.com/tree-sitter/tree-sitter-python/bindings/go"
)

var pyNodeKinds = map[string]string{
	"class_definition":    "class",
	"function_definition": "function",
}

func newPythonParser() *treeSitterParser {
	lang := sitter.NewLanguage(python.Language())
	return newTreeSitterParser(lang, "python", pyNodeKinds, "import_statement", "import_from_statement")
}
