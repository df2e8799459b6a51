package sanitizer

import "strings"

var traversalReplacer = strings.NewReplacer("../", "", `..\`, "")

var separatorReplacer = strings.NewReplacer("/", "_", `\`, "_")

// SanitizeFilename neutralises an uploaded file name. Parent-directory
// sequences are removed first, remaining separators become underscores, and
// anything outside [a-zA-Z0-9._-] is dropped.
//
// ok is false only for empty input, meaning no name could be derived. A
// non-empty name may still sanitize to "".
//
// Both traversal sequences are removed in one left-to-right pass, so input
// such as "..../" can leave dots behind; no separator survives either way.
// A name made only of dots (".." included) is returned as is. Callers that
// write to disk must reject it; Gate.CheckUpload does.
func SanitizeFilename(filename string) (name string, ok bool) {
	if filename == "" {
		return "", false
	}

	s := traversalReplacer.Replace(filename)
	s = separatorReplacer.Replace(s)
	s = strings.Map(func(r rune) rune {
		if isFilenameRune(r) {
			return r
		}
		return -1
	}, s)

	return s, true
}

func isFilenameRune(r rune) bool {
	switch {
	case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
		return true
	case r == '.', r == '_', r == '-':
		return true
	}
	return false
}
