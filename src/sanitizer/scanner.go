// Package sanitizer is the content-safety gate for prompts and uploads.
// It rejects text carrying known attack signatures, strips markup from text
// that will be stored or rendered, enforces prompt length limits, and
// neutralises uploaded file names and MIME types. Every function here is pure
// and safe for concurrent use.
package sanitizer

import "context"

// Scanner inspects and optionally transforms text content.
// Implementations must not mutate the input; return transformed
// content in the ScanResult.
type Scanner interface {
	// Name returns a short identifier used in logs and metrics.
	Name() string

	// Scan inspects content and returns a ScanResult.
	Scan(ctx context.Context, content string) (ScanResult, error)
}
