package symbols

import (
	"regexp"
	"strings"

	"github.com/kiverlab/codegraph/internal/parser"
)

// maxSignatureLength is the character cap applied to a derived signature.
const maxSignatureLength = 200

var trailingBraceRE = regexp.MustCompile(`\{\s*$`)

// deriveSignature heuristically extracts a symbol's signature from the
// line it starts on: the declaration line with any trailing opening brace
// stripped, capped to maxSignatureLength characters. If the symbol's own
// parser.Symbol already carries a signature (as Go function/method chunks
// do), that is preferred since it already accounts for receivers.
func deriveSignature(lines []string, sym parser.Symbol) string {
	if sym.Signature != "" {
		return capSignature(sym.Signature)
	}
	if sym.StartLine < 1 || sym.StartLine > len(lines) {
		return ""
	}
	line := strings.TrimSpace(lines[sym.StartLine-1])
	line = trailingBraceRE.ReplaceAllString(line, "")
	return capSignature(strings.TrimSpace(line))
}

func capSignature(s string) string {
	if len(s) <= maxSignatureLength {
		return s
	}
	return s[:maxSignatureLength]
}
