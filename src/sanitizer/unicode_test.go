package sanitizer

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUnicodeScanner(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    string
		verdict Verdict
	}{
		{"clean", "hello world", "hello world", VerdictPass},
		{"keeps whitespace", "line1\nline2\ttab\rcarriage", "line1\nline2\ttab\rcarriage", VerdictPass},
		{"zero width", "hello\u200B\u200C\u200Dworld", "helloworld", VerdictModify},
		{"bom", "\uFEFFhello", "hello", VerdictModify},
		{"directional marks", "hello\u200Fworld\u200E", "helloworld", VerdictModify},
		{"nfkc ligature", "de\uFB01ne", "define", VerdictModify},
		{"fullwidth ascii", "\uFF1Cscript\uFF1E", "<script>", VerdictModify},
		{"empty", "", "", VerdictPass},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := UnicodeScanner{}.Scan(context.Background(), tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.verdict, res.Verdict)
			assert.Equal(t, tt.want, res.Content)
		})
	}
}

func TestNormalizeText_CountsRemoved(t *testing.T) {
	out, removed := NormalizeText("a\u200Bb\u0000c")
	assert.Equal(t, "abc", out)
	assert.Equal(t, 2, removed)
}
