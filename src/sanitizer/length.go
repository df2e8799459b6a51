package sanitizer

import (
	"context"
	"fmt"
	"unicode/utf8"
)

// DefaultMaxScriptLength is the prompt limit used by ValidateScript.
const DefaultMaxScriptLength = 1000

// ValidateScript checks script against DefaultMaxScriptLength.
func ValidateScript(script string) ValidationResult {
	return ValidateScriptLength(script, DefaultMaxScriptLength)
}

// ValidateScriptLength reports whether script is at most maxLength characters.
// Empty scripts are valid; whether a prompt is required is the caller's call.
// A non-positive maxLength means DefaultMaxScriptLength.
func ValidateScriptLength(script string, maxLength int) ValidationResult {
	if maxLength <= 0 {
		maxLength = DefaultMaxScriptLength
	}
	if utf8.RuneCountInString(script) <= maxLength {
		return validResult()
	}
	return invalidResult(fmt.Sprintf("script must be at most %d characters", maxLength))
}

// LengthScanner blocks content longer than MaxChars characters.
type LengthScanner struct {
	MaxChars int
}

// NewLengthScanner creates a LengthScanner with the given character limit.
func NewLengthScanner(maxChars int) *LengthScanner {
	return &LengthScanner{MaxChars: maxChars}
}

func (s *LengthScanner) Name() string { return "length" }

func (s *LengthScanner) Scan(_ context.Context, content string) (ScanResult, error) {
	res := ValidateScriptLength(content, s.MaxChars)
	if res.Valid {
		return ScanResult{
			Verdict:     VerdictPass,
			Content:     content,
			ScannerName: s.Name(),
		}, nil
	}

	return ScanResult{
		Verdict:     VerdictBlock,
		Content:     content,
		Threats:     []string{*res.Error},
		ScannerName: s.Name(),
	}, nil
}
