package sanitizer

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
)

// Gate is the combined prompt and upload check. It holds only immutable
// state and is safe for concurrent use.
type Gate struct {
	pipeline  *Pipeline
	guard     *PatternGuard
	maxLength int
	logger    *slog.Logger
}

// GateOption configures a Gate.
type GateOption func(*gateOptions)

type gateOptions struct {
	maxLength int
	normalize bool
	guardOpts []GuardOption
	logger    *slog.Logger
}

// WithMaxScriptLength sets the prompt character limit.
func WithMaxScriptLength(n int) GateOption {
	return func(o *gateOptions) { o.maxLength = n }
}

// WithUnicodeNormalization toggles the NFKC stage ahead of the guard.
func WithUnicodeNormalization(enabled bool) GateOption {
	return func(o *gateOptions) { o.normalize = enabled }
}

// WithGuard passes options through to the PatternGuard.
func WithGuard(opts ...GuardOption) GateOption {
	return func(o *gateOptions) { o.guardOpts = append(o.guardOpts, opts...) }
}

// WithLogger sets the logger for the gate and its guard.
func WithLogger(l *slog.Logger) GateOption {
	return func(o *gateOptions) { o.logger = l }
}

// NewGate builds the prompt pipeline:
// unicode (optional) -> guard -> length -> text.
//
// Length is measured before markup stripping so the limit applies to the
// characters the user typed, not to their HTML-escaped form.
func NewGate(opts ...GateOption) (*Gate, error) {
	o := gateOptions{
		maxLength: DefaultMaxScriptLength,
		normalize: true,
	}
	for _, opt := range opts {
		opt(&o)
	}
	if o.logger == nil {
		o.logger = slog.Default()
	}
	if o.maxLength <= 0 {
		o.maxLength = DefaultMaxScriptLength
	}

	guardOpts := append([]GuardOption{WithGuardLogger(o.logger)}, o.guardOpts...)
	guard, err := NewPatternGuard(guardOpts...)
	if err != nil {
		return nil, fmt.Errorf("pattern guard: %w", err)
	}

	var scanners []Scanner
	if o.normalize {
		scanners = append(scanners, UnicodeScanner{})
	}
	scanners = append(scanners,
		guard,
		NewLengthScanner(o.maxLength),
		TextScanner{},
	)

	return &Gate{
		pipeline:  NewPipeline(scanners...),
		guard:     guard,
		maxLength: o.maxLength,
		logger:    o.logger.With("area", "gate"),
	}, nil
}

// MaxScriptLength returns the configured prompt limit.
func (g *Gate) MaxScriptLength() int { return g.maxLength }

// IsSafe reports whether text passes the gate's signature set, custom
// patterns included.
func (g *Gate) IsSafe(text string) bool { return g.guard.IsSafe(text) }

// Stages returns the pipeline scanner names in execution order.
func (g *Gate) Stages() []string { return g.pipeline.Names() }

// PromptResult is the outcome of CheckPrompt.
type PromptResult struct {
	// Text is the sanitized prompt, empty when rejected.
	Text     string
	Modified bool
	Pipeline PipelineResult
}

// CheckPrompt runs text through the pipeline. A rejection is reported as
// ErrUnsafeContent or ErrScriptTooLong wrapped with the reasons; the
// returned PromptResult still carries the pipeline details.
func (g *Gate) CheckPrompt(ctx context.Context, text string) (PromptResult, error) {
	pr, err := g.pipeline.Process(ctx, text)
	if err != nil {
		return PromptResult{Pipeline: pr}, err
	}

	if pr.FinalVerdict == VerdictBlock {
		sentinel := ErrUnsafeContent
		if pr.BlockedBy == "length" {
			sentinel = ErrScriptTooLong
		}
		g.logger.Info("prompt rejected", "stage", pr.BlockedBy)
		return PromptResult{Pipeline: pr}, fmt.Errorf("%w: %s", sentinel, strings.Join(pr.AllThreats, "; "))
	}

	return PromptResult{
		Text:     pr.FinalContent,
		Modified: pr.FinalVerdict == VerdictModify,
		Pipeline: pr,
	}, nil
}

// UploadResult is the outcome of CheckUpload.
type UploadResult struct {
	// Filename is the sanitized name; meaningful only when HasName is true.
	Filename string
	HasName  bool
	MimeType string
}

// CheckUpload validates the declared MIME type and sanitizes the file name.
// An empty filename is not an error: HasName is false and the caller picks
// a name.
func (g *Gate) CheckUpload(_ context.Context, filename, mimeType string) (UploadResult, error) {
	if !ValidateMimeType(mimeType) {
		g.logger.Info("upload rejected", "reason", "mime_type")
		return UploadResult{}, fmt.Errorf("%w: %q", ErrUnsupportedMimeType, mimeType)
	}

	res := UploadResult{MimeType: strings.ToLower(mimeType)}
	name, ok := SanitizeFilename(filename)
	if !ok {
		return res, nil
	}
	if strings.Trim(name, ".") == "" {
		g.logger.Info("upload rejected", "reason", "filename")
		return UploadResult{}, ErrInvalidFilename
	}

	res.Filename = name
	res.HasName = true
	return res, nil
}
