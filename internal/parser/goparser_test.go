package parser_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kiverlab/codegraph/internal/parser"
)

const sampleGoSource = `package sample

import (
	"fmt"
	"strings"
)

// Greeter greets people.
type Greeter struct {
	Name string
}

// Greet returns a greeting.
func (g *Greeter) Greet() string {
	return fmt.Sprintf("hello %s", strings.ToUpper(g.Name))
}

func Add(a, b int) int {
	return a + b
}
`

func TestRegistryParseGo(t *testing.T) {
	r := parser.NewRegistry()
	chunks, err := r.Parse(context.Background(), "sample.go", []byte(sampleGoSource))
	require.NoError(t, err)
	require.NotEmpty(t, chunks)

	var names []string
	for _, c := range chunks {
		assert.Equal(t, "go", c.Language)
		assert.GreaterOrEqual(t, c.EndLine, c.StartLine)
		assert.Contains(t, c.Imports, "fmt")
		for _, s := range c.Symbols {
			names = append(names, s.Name)
		}
	}
	assert.Contains(t, names, "Greeter")
	assert.Contains(t, names, "Greet")
	assert.Contains(t, names, "Add")
}

func TestRegistryParseUnknownLanguageFallsBack(t *testing.T) {
	r := parser.NewRegistry()
	chunks, err := r.Parse(context.Background(), "notes.xyz", []byte("some plain content that is long enough to keep"))
	require.NoError(t, err)
	require.Len(t, chunks, 1)
	assert.Equal(t, "unknown", chunks[0].Language)
}

func TestLanguageForPath(t *testing.T) {
	assert.Equal(t, "go", parser.LanguageForPath("main.go"))
	assert.Equal(t, "typescript", parser.LanguageForPath("app.tsx"))
	assert.Equal(t, "python", parser.LanguageForPath("script.py"))
	assert.Equal(t, "", parser.LanguageForPath("README.md"))
}
