package sanitizer

import (
	"context"
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// NormalizeText folds s to NFKC and drops format, private-use and control
// characters other than tab, newline and carriage return. Fullwidth and
// compatibility forms of ASCII therefore reach the guard as plain ASCII.
func NormalizeText(s string) (normalized string, removed int) {
	folded := norm.NFKC.String(s)

	var b strings.Builder
	b.Grow(len(folded))
	for _, r := range folded {
		if isInvisible(r) {
			removed++
			continue
		}
		b.WriteRune(r)
	}
	return b.String(), removed
}

func isInvisible(r rune) bool {
	if r == '\n' || r == '\t' || r == '\r' || r == ' ' {
		return false
	}
	return unicode.In(r, unicode.Cf, unicode.Co, unicode.Cc)
}

// UnicodeScanner normalizes content before signature matching.
type UnicodeScanner struct{}

func (UnicodeScanner) Name() string { return "unicode" }

func (UnicodeScanner) Scan(_ context.Context, content string) (ScanResult, error) {
	cleaned, removed := NormalizeText(content)
	if cleaned == content {
		return ScanResult{
			Verdict:     VerdictPass,
			Content:     content,
			ScannerName: "unicode",
		}, nil
	}

	threats := []string{"text normalized"}
	if removed > 0 {
		threats = []string{"invisible/control characters removed"}
	}
	return ScanResult{
		Verdict:     VerdictModify,
		Content:     cleaned,
		Threats:     threats,
		ScannerName: "unicode",
	}, nil
}
