package sanitizer

import (
	"slices"
	"strings"
)

var allowedMimeTypes = []string{
	"image/jpeg",
	"image/jpg",
	"image/png",
	"image/webp",
	"image/gif",
}

// AllowedMimeTypes returns a copy of the upload allow-list.
func AllowedMimeTypes() []string {
	return slices.Clone(allowedMimeTypes)
}

// ValidateMimeType reports whether mimeType is an allowed image type,
// ignoring case.
func ValidateMimeType(mimeType string) bool {
	return slices.Contains(allowedMimeTypes, strings.ToLower(mimeType))
}
