package sanitizer

import "errors"

var (
	// ErrUnsafeContent is returned when text matches an attack signature.
	ErrUnsafeContent = errors.New("content contains unsafe patterns")
	// ErrScriptTooLong is returned when a prompt exceeds the length limit.
	ErrScriptTooLong = errors.New("script exceeds maximum length")
	// ErrUnsupportedMimeType is returned for uploads outside the allow-list.
	ErrUnsupportedMimeType = errors.New("unsupported mime type")
	// ErrInvalidFilename is returned when no safe characters survive sanitization.
	ErrInvalidFilename = errors.New("filename has no safe characters")
)
