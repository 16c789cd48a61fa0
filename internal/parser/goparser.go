package parser

import (
	"context"
	"go/ast"
	"go/parser"
	"go/token"
	"strings"
)

// goParser parses Go source with the standard library AST, emitting one
// chunk per top-level function and per type, var or const spec (import
// blocks excluded) and attaching
// the file's full import list to every chunk it emits.
type goParser struct{}

func newGoParser() *goParser { return &goParser{} }

func (p *goParser) Parse(_ context.Context, path string, content []byte) ([]Chunk, error) {
	fset := token.NewFileSet()
	file, err := parser.ParseFile(fset, path, content, parser.ParseComments)
	if err != nil {
		return nil, err
	}

	lines := strings.Split(string(content), "\n")
	imports := make([]string, 0, len(file.Imports))
	for _, imp := range file.Imports {
		imports = append(imports, strings.Trim(imp.Path.Value, `"`))
	}

	var chunks []Chunk
	for _, decl := range file.Decls {
		switch d := decl.(type) {
		case *ast.FuncDecl:
			chunks = append(chunks, p.funcChunk(d, fset, lines, imports))
		case *ast.GenDecl:
			if d.Tok == token.IMPORT {
				continue
			}
			chunks = append(chunks, p.genDeclChunk(d, fset, lines, imports)...)
		}
	}

	if len(chunks) == 0 {
		return FallbackChunk(string(content), "go"), nil
	}
	return chunks, nil
}

func (p *goParser) funcChunk(d *ast.FuncDecl, fset *token.FileSet, lines, imports []string) Chunk {
	start := fset.Position(d.Pos()).Line
	end := fset.Position(d.End()).Line

	name := d.Name.Name
	signature := name + "()"
	if d.Recv != nil && len(d.Recv.List) > 0 {
		signature = "(" + exprLines(lines, fset, d.Recv.List[0].Type) + ") " + name + "()"
	}

	return Chunk{
		Content:   sliceLines(lines, start, end),
		StartLine: start,
		EndLine:   end,
		Language:  "go",
		Imports:   imports,
		Symbols: []Symbol{{
			Name:      name,
			Kind:      "function",
			StartLine: start,
			EndLine:   end,
			Signature: signature,
			Exported:  ast.IsExported(name),
		}},
	}
}

func (p *goParser) genDeclChunk(d *ast.GenDecl, fset *token.FileSet, lines, imports []string) []Chunk {
	var chunks []Chunk
	for _, spec := range d.Specs {
		switch s := spec.(type) {
		case *ast.TypeSpec:
			start := fset.Position(s.Pos()).Line
			end := fset.Position(s.End()).Line
			kind := "type"
			switch s.Type.(type) {
			case *ast.StructType:
				kind = "struct"
			case *ast.InterfaceType:
				kind = "interface"
			}
			chunks = append(chunks, Chunk{
				Content:   sliceLines(lines, start, end),
				StartLine: start,
				EndLine:   end,
				Language:  "go",
				Imports:   imports,
				Symbols: []Symbol{{
					Name:      s.Name.Name,
					Kind:      kind,
					StartLine: start,
					EndLine:   end,
					Exported:  ast.IsExported(s.Name.Name),
				}},
			})
		case *ast.ValueSpec:
			start := fset.Position(s.Pos()).Line
			end := fset.Position(s.End()).Line
			kind := "var"
			if d.Tok == token.CONST {
				kind = "const"
			}
			var symbols []Symbol
			for _, name := range s.Names {
				symbols = append(symbols, Symbol{
					Name:      name.Name,
					Kind:      kind,
					StartLine: start,
					EndLine:   end,
					Exported:  ast.IsExported(name.Name),
				})
			}
			chunks = append(chunks, Chunk{
				Content:   sliceLines(lines, start, end),
				StartLine: start,
				EndLine:   end,
				Language:  "go",
				Imports:   imports,
				Symbols:   symbols,
			})
		}
	}
	return chunks
}

func sliceLines(lines []string, start, end int) string {
	if start < 1 || start > len(lines) {
		return ""
	}
	if end > len(lines) {
		end = len(lines)
	}
	return strings.Join(lines[start-1:end], "\n")
}

func exprLines(lines []string, fset *token.FileSet, expr ast.Expr) string {
	start := fset.Position(expr.Pos()).Line
	end := fset.Position(expr.End()).Line
	return strings.TrimSpace(sliceLines(lines, start, end))
}
