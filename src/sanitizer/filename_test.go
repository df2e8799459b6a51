package sanitizer

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSanitizeFilename(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"traversal", "../../../etc/passwd", "etc_passwd"},
		{"windows traversal", `..\..\windows\system32`, "windows_system32"},
		{"bad chars", "file<with>bad|chars?.jpg", "filewithbadchars.jpg"},
		{"normal", "normal-file.jpg", "normal-file.jpg"},
		{"nested dirs", "photos/2024/cat.png", "photos_2024_cat.png"},
		{"spaces dropped", "my photo (1).png", "myphoto1.png"},
		{"unicode dropped", "фото.jpg", ".jpg"},
		{"only bad chars", "???", ""},
		{"single pass traversal", `..../\`, ".._"},
		{"parent reference kept", "..", ".."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := SanitizeFilename(tt.input)
			assert.True(t, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestSanitizeFilename_Empty(t *testing.T) {
	got, ok := SanitizeFilename("")
	assert.False(t, ok)
	assert.Empty(t, got)
}

func TestSanitizeFilename_Invariants(t *testing.T) {
	inputs := []string{
		"../../../etc/passwd",
		`....//....\\x`,
		`..\../a/../b`,
		"/absolute/path/file.txt",
		`C:\Users\me\pic.gif`,
		"normal-file.jpg",
	}
	for _, in := range inputs {
		got, ok := SanitizeFilename(in)
		assert.True(t, ok)
		assert.False(t, strings.ContainsAny(got, `/\`), "input %q produced %q", in, got)
		for _, r := range got {
			assert.True(t, isFilenameRune(r), "input %q produced rune %q", in, r)
		}

		again, _ := SanitizeFilename(got)
		if got != "" {
			assert.Equal(t, got, again, "not idempotent for %q", in)
		}
	}
}
