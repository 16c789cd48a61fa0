package parser

import "strings"

// fallbackChunkBudget is the approximate character ceiling per chunk when
// no structural parser is available for a file's language.
const fallbackChunkBudget = 1000

// minChunkLength drops chunks whose trimmed content is shorter than this;
// blank or whitespace-only runs are not worth indexing.
const minChunkLength = 10

// FallbackChunk splits content into line-aligned chunks of roughly
// fallbackChunkBudget characters each. Every emitted chunk carries real
// 1-indexed line numbers; chunks whose trimmed content is shorter than
// minChunkLength characters are dropped.
func FallbackChunk(content, language string) []Chunk {
	lines := strings.Split(strings.TrimSuffix(content, "\n"), "\n")

	var chunks []Chunk
	var buf strings.Builder
	start := 1

	flush := func(endLine int) {
		text := buf.String()
		if len(strings.TrimSpace(text)) >= minChunkLength {
			chunks = append(chunks, Chunk{
				Content:   strings.TrimRight(text, "\n"),
				StartLine: start,
				EndLine:   endLine,
				Language:  language,
			})
		}
		buf.Reset()
	}

	for i, line := range lines {
		lineNum := i + 1
		if buf.Len() == 0 {
			start = lineNum
		}
		buf.WriteString(line)
		buf.WriteString("\n")
		if buf.Len() >= fallbackChunkBudget {
			flush(lineNum)
		}
	}
	if buf.Len() > 0 {
		flush(len(lines))
	}

	return chunks
}
