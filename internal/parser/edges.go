package parser

import (
	"context"
	"regexp"
)

// RawEdge is an edge extracted from one file before the caller has
// resolved ToRef (an import specifier or base-class name) against the
// project's file set. The indexer owns that resolution, since only it
// knows the full set of files in a project.
type RawEdge struct {
	FromSymbol string
	ToRef      string
	EdgeType   EdgeType
}

var (
	tsExtendsRE = regexp.MustCompile(`class\s+(\w+)[^{]*\bextends\s+(\w+)`)
	pyExtendsRE = regexp.MustCompile(`class\s+(\w+)\s*\(([^)]+)\)`)
)

// ExtractEdges parses path's content and returns its import edges plus,
// for languages whose grammar exposes inheritance lexically (TypeScript,
// Python), its extends edges. Extraction failures are returned to the
// caller, who is expected to log them at debug level and continue
// indexing the file regardless.
func (r *Registry) ExtractEdges(ctx context.Context, path string, content []byte) ([]RawEdge, error) {
	chunks, err := r.Parse(ctx, path, content)
	if err != nil {
		return nil, err
	}

	var edges []RawEdge
	seen := map[string]bool{}
	for _, c := range chunks {
		for _, imp := range c.Imports {
			if imp == "" || seen["imports:"+imp] {
				continue
			}
			seen["imports:"+imp] = true
			edges = append(edges, RawEdge{ToRef: imp, EdgeType: EdgeTypeImports})
		}
	}

	language := LanguageForPath(path)
	switch language {
	case "typescript", "javascript":
		for _, m := range tsExtendsRE.FindAllStringSubmatch(string(content), -1) {
			edges = append(edges, RawEdge{FromSymbol: m[1], ToRef: m[2], EdgeType: EdgeTypeExtends})
		}
	case "python":
		for _, m := range pyExtendsRE.FindAllStringSubmatch(string(content), -1) {
			for _, base := range splitBases(m[2]) {
				if base == "object" || base == "" || containsRune(base, '=') {
					continue
				}
				edges = append(edges, RawEdge{FromSymbol: m[1], ToRef: base, EdgeType: EdgeTypeExtends})
			}
		}
	}

	return edges, nil
}

func splitBases(s string) []string {
	var bases []string
	var cur []rune
	depth := 0
	flush := func() {
		if len(cur) > 0 {
			bases = append(bases, trimRune(cur))
		}
		cur = cur[:0]
	}
	for _, r := range s {
		switch r {
		case '(', '[':
			depth++
			cur = append(cur, r)
		case ')', ']':
			depth--
			cur = append(cur, r)
		case ',':
			if depth == 0 {
				flush()
				continue
			}
			cur = append(cur, r)
		default:
			cur = append(cur, r)
		}
	}
	flush()
	return bases
}

func containsRune(s string, r rune) bool {
	for _, c := range s {
		if c == r {
			return true
		}
	}
	return false
}

func trimRune(rs []rune) string {
	start, end := 0, len(rs)
	for start < end && (rs[start] == ' ' || rs[start] == '\t') {
		start++
	}
	for end > start && (rs[end-1] == ' ' || rs[end-1] == '\t') {
		end--
	}
	return string(rs[start:end])
}
