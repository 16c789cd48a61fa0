package parser

import (
	"path/filepath"
	"strings"
)

var codeExtensions = map[string]bool{
	".go": true, ".ts": true, ".tsx": true, ".js": true, ".jsx": true,
	".py": true, ".rs": true, ".c": true, ".h": true, ".cpp": true,
	".cc": true, ".hpp": true, ".java": true, ".php": true, ".rb": true,
}

var docsExtensions = map[string]bool{
	".md": true, ".mdx": true, ".rst": true, ".txt": true, ".adoc": true,
}

var configExtensions = map[string]bool{
	".yaml": true, ".yml": true, ".toml": true, ".ini": true, ".env": true,
}

var contractsExtensions = map[string]bool{
	".proto": true, ".graphql": true, ".gql": true,
}

// ClassifyFile derives the chunk kind for a path from its extension and,
// for the ambiguous .json case, from its basename.
func ClassifyFile(path string) ChunkKind {
	ext := strings.ToLower(filepath.Ext(path))
	base := strings.ToLower(filepath.Base(path))

	switch {
	case ext == ".json":
		if strings.Contains(base, "openapi") || strings.Contains(base, "swagger") || strings.Contains(base, "schema") {
			return ChunkKindContracts
		}
		return ChunkKindConfig
	case contractsExtensions[ext]:
		return ChunkKindContracts
	case configExtensions[ext]:
		return ChunkKindConfig
	case docsExtensions[ext]:
		return ChunkKindDocs
	case codeExtensions[ext]:
		return ChunkKindCode
	default:
		return ChunkKindUnknown
	}
}

// ClassifyLayer derives the architectural layer for a path from directory
// and filename conventions. It never errors; an unrecognized path is
// LayerOther.
func ClassifyLayer(path string) Layer {
	lower := strings.ToLower(filepath.ToSlash(path))
	base := filepath.Base(lower)

	switch {
	case strings.Contains(base, "_test.") || strings.Contains(lower, "/test/") || strings.Contains(lower, "/tests/") || strings.HasSuffix(base, ".test.ts") || strings.HasSuffix(base, ".spec.ts"):
		return LayerTest
	case strings.Contains(lower, "/api/") || strings.Contains(lower, "/handler") || strings.Contains(lower, "/controller") || strings.Contains(lower, "/routes"):
		return LayerAPI
	case strings.Contains(lower, "/middleware"):
		return LayerMiddleware
	case strings.Contains(lower, "/parser") || strings.Contains(lower, "/parsers"):
		return LayerParser
	case strings.Contains(lower, "/types") || strings.Contains(lower, "/models") || strings.Contains(lower, "/model"):
		return LayerModel
	case strings.Contains(base, "types.go") || strings.Contains(base, "types.ts"):
		return LayerTypes
	case strings.Contains(lower, "/config"):
		return LayerConfig
	case strings.Contains(lower, "/util") || strings.Contains(lower, "/utils") || strings.Contains(lower, "/helpers") || strings.Contains(lower, "/common"):
		return LayerUtil
	case strings.Contains(lower, "/service") || strings.Contains(lower, "/services"):
		return LayerService
	default:
		return LayerOther
	}
}
