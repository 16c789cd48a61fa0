package parser

import (
	"context"
	"path/filepath"
	"strings"
)

// Parser turns the content of one source file into chunks carrying real
// line ranges, a language tag, and the symbols/imports found within.
type Parser interface {
	Parse(ctx context.Context, path string, content []byte) ([]Chunk, error)
}

// Registry dispatches a file path to the Parser registered for its
// language, falling back to the line-budget chunker for everything else.
type Registry struct {
	byLanguage map[string]Parser
}

// NewRegistry builds a Registry with structural parsers for every language
// this module ships a grammar for: Go (stdlib go/ast), TypeScript and
// Python (tree-sitter).
func NewRegistry() *Registry {
	return &Registry{
		byLanguage: map[string]Parser{
			"go":         newGoParser(),
			"typescript": newTypeScriptParser(),
			"python":     newPythonParser(),
		},
	}
}

// LanguageForPath returns the language tag implied by a file's extension,
// or "" if none is recognized.
func LanguageForPath(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".go":
		return "go"
	case ".ts", ".tsx":
		return "typescript"
	case ".js", ".jsx":
		return "javascript"
	case ".py":
		return "python"
	case ".rs":
		return "rust"
	case ".java":
		return "java"
	case ".rb":
		return "ruby"
	case ".php":
		return "php"
	case ".c", ".h":
		return "c"
	case ".cpp", ".cc", ".hpp":
		return "cpp"
	default:
		return ""
	}
}

// Parse dispatches path to its registered structural parser, falling back
// to the line-budget chunker when no parser is registered for the
// language, or when the structural parser errors.
func (r *Registry) Parse(ctx context.Context, path string, content []byte) ([]Chunk, error) {
	language := LanguageForPath(path)
	if language == "" {
		return FallbackChunk(string(content), "unknown"), nil
	}

	p, ok := r.byLanguage[language]
	if !ok {
		return FallbackChunk(string(content), language), nil
	}

	chunks, err := p.Parse(ctx, path, content)
	if err != nil || len(chunks) == 0 {
		return FallbackChunk(string(content), language), nil
	}
	return chunks, nil
}
