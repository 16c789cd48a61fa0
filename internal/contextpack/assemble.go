package contextpack

import (
	"fmt"
	"strings"
)

// assemble renders the selected chunks grouped by file as fenced code
// blocks, followed by any non-empty guardrail sections.
func assemble(chunks []Chunk, guardrails Guardrails) string {
	var b strings.Builder

	groups, order := groupByFile(chunks)
	for _, file := range order {
		fmt.Fprintf(&b, "--- %s ---\n", file)
		for _, c := range groups[file] {
			fmt.Fprintf(&b, "```%s\n%s\n```\n", c.Language, c.Content)
		}
	}

	if len(guardrails.RelatedDecisions) > 0 {
		b.WriteString("--- Related Decisions ---\n")
		for _, d := range guardrails.RelatedDecisions {
			b.WriteString(d)
			b.WriteString("\n")
		}
	}
	if len(guardrails.TestCommands) > 0 {
		b.WriteString("--- Test Commands ---\n")
		for _, t := range guardrails.TestCommands {
			b.WriteString(t)
			b.WriteString("\n")
		}
	}

	return b.String()
}

// groupByFile buckets chunks by file, preserving first-seen file order.
func groupByFile(chunks []Chunk) (map[string][]Chunk, []string) {
	groups := make(map[string][]Chunk)
	order := make([]string, 0)
	for _, c := range chunks {
		if _, ok := groups[c.File]; !ok {
			order = append(order, c.File)
		}
		groups[c.File] = append(groups[c.File], c)
	}
	return groups, order
}
