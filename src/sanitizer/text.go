package sanitizer

import (
	"context"
	"html"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

// strictPolicy allows no elements and no attributes. It drops the content of
// script and style elements and escapes the remaining text.
var strictPolicy = bluemonday.StrictPolicy()

// SanitizeText removes every tag and attribute from s and trims surrounding
// whitespace. It does no signature detection; run IsScriptSafe as well on
// text that is stored and later rendered.
func SanitizeText(s string) string {
	if s == "" {
		return s
	}
	return strings.TrimSpace(strictPolicy.Sanitize(s))
}

// SanitizeValue sanitizes v when it is a string and returns any other value,
// nil included, unchanged.
func SanitizeValue(v any) any {
	s, ok := v.(string)
	if !ok {
		return v
	}
	return SanitizeText(s)
}

// TextScanner strips markup as a pipeline stage.
type TextScanner struct{}

func (TextScanner) Name() string { return "text" }

func (TextScanner) Scan(_ context.Context, content string) (ScanResult, error) {
	cleaned := SanitizeText(content)
	if cleaned == content {
		return ScanResult{
			Verdict:     VerdictPass,
			Content:     content,
			ScannerName: "text",
		}, nil
	}

	threat := "markup removed"
	if html.UnescapeString(cleaned) == html.UnescapeString(strings.TrimSpace(content)) {
		threat = "text escaped"
	}

	return ScanResult{
		Verdict:     VerdictModify,
		Content:     cleaned,
		Threats:     []string{threat},
		ScannerName: "text",
	}, nil
}
