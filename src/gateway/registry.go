// Package gateway exposes the content gate as MCP tools.
package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/Easy-Infra-Ltd/easy-content-gate/src/config"
	"github.com/Easy-Infra-Ltd/easy-content-gate/src/metrics"
	"github.com/Easy-Infra-Ltd/easy-content-gate/src/sanitizer"
)

// Tool names.
const (
	ToolCheckPrompt      = "check_prompt"
	ToolIsScriptSafe     = "is_script_safe"
	ToolSanitizeText     = "sanitize_text"
	ToolValidateScript   = "validate_script"
	ToolValidatePassword = "validate_password"
	ToolSanitizeFilename = "sanitize_filename"
	ToolValidateMimeType = "validate_mime_type"
	ToolCheckUpload      = "check_upload"
)

// TextInput carries one untrusted string.
type TextInput struct {
	Text string `json:"text" jsonschema:"untrusted text as received from the user"`
}

// ScriptInput is the validate_script argument set.
type ScriptInput struct {
	Script    string `json:"script" jsonschema:"generation prompt to measure"`
	MaxLength int    `json:"max_length,omitempty" jsonschema:"character limit, defaults to the gate limit"`
}

// PasswordInput is the validate_password argument set.
type PasswordInput struct {
	Password string `json:"password" jsonschema:"password to check"`
}

// FilenameInput is the sanitize_filename argument set.
type FilenameInput struct {
	Filename string `json:"filename,omitempty" jsonschema:"declared upload file name"`
}

// MimeTypeInput is the validate_mime_type argument set.
type MimeTypeInput struct {
	MimeType string `json:"mime_type" jsonschema:"declared upload MIME type"`
}

// UploadInput is the check_upload argument set.
type UploadInput struct {
	Filename string `json:"filename,omitempty" jsonschema:"declared upload file name"`
	MimeType string `json:"mime_type" jsonschema:"declared upload MIME type"`
}

// PromptOutput is returned by check_prompt.
type PromptOutput struct {
	Allowed  bool   `json:"allowed"`
	Text     string `json:"text"`
	Modified bool   `json:"modified"`
	Reason   string `json:"reason,omitempty"`
}

// SafetyOutput is returned by is_script_safe.
type SafetyOutput struct {
	Safe bool `json:"safe"`
}

// TextOutput is returned by sanitize_text.
type TextOutput struct {
	Text string `json:"text"`
}

// FilenameOutput is returned by sanitize_filename. Filename is null when no
// name could be derived.
type FilenameOutput struct {
	Filename *string `json:"filename"`
}

// MimeTypeOutput is returned by validate_mime_type.
type MimeTypeOutput struct {
	Allowed      bool     `json:"allowed"`
	AllowedTypes []string `json:"allowed_types,omitempty"`
}

// UploadOutput is returned by check_upload.
type UploadOutput struct {
	Allowed  bool    `json:"allowed"`
	Filename *string `json:"filename"`
	MimeType string  `json:"mime_type,omitempty"`
	Reason   string  `json:"reason,omitempty"`
}

// Registry registers the gate tools on an MCP server. Every call is given a
// check ID, logged and counted.
type Registry struct {
	server  *mcp.Server
	gate    *sanitizer.Gate
	metrics *metrics.Metrics
	logger  *slog.Logger
}

// NewRegistry creates a registry for the given server and gate. m may be nil.
func NewRegistry(server *mcp.Server, gate *sanitizer.Gate, m *metrics.Metrics, logger *slog.Logger) *Registry {
	return &Registry{
		server:  server,
		gate:    gate,
		metrics: m,
		logger:  logger.With("area", "registry"),
	}
}

// checkResult is what a tool body hands back to the instrumentation wrapper.
type checkResult struct {
	output  any
	verdict sanitizer.Verdict
	// rejected marks results the caller must surface as a refusal.
	rejected bool
}

// Register adds all gate tools and returns how many were registered.
func (r *Registry) Register() int {
	addTool(r, &mcp.Tool{
		Name:        ToolCheckPrompt,
		Description: "Run a prompt through the full gate: normalization, signature guard, markup stripping and length limit.",
	}, r.checkPrompt)
	addTool(r, &mcp.Tool{
		Name:        ToolIsScriptSafe,
		Description: "Report whether text is free of known markup and SQL attack signatures.",
	}, r.isScriptSafe)
	addTool(r, &mcp.Tool{
		Name:        ToolSanitizeText,
		Description: "Strip all markup and attributes from text and trim it.",
	}, r.sanitizeText)
	addTool(r, &mcp.Tool{
		Name:        ToolValidateScript,
		Description: "Check a prompt against the maximum script length.",
	}, r.validateScript)
	addTool(r, &mcp.Tool{
		Name:        ToolValidatePassword,
		Description: "Check password strength and list every failed rule.",
	}, r.validatePassword)
	addTool(r, &mcp.Tool{
		Name:        ToolSanitizeFilename,
		Description: "Neutralise path traversal and unsafe characters in an upload file name.",
	}, r.sanitizeFilename)
	addTool(r, &mcp.Tool{
		Name:        ToolValidateMimeType,
		Description: "Check a declared MIME type against the image allow-list.",
	}, r.validateMimeType)
	addTool(r, &mcp.Tool{
		Name:        ToolCheckUpload,
		Description: "Validate an upload's MIME type and sanitize its file name.",
	}, r.checkUpload)
	return 8
}

func addTool[In any](r *Registry, tool *mcp.Tool, check func(context.Context, In) (checkResult, error)) {
	name := tool.Name
	mcp.AddTool(r.server, tool, func(ctx context.Context, _ *mcp.CallToolRequest, in In) (*mcp.CallToolResult, any, error) {
		start := time.Now()
		log := r.logger.With("tool", name, "check_id", uuid.NewString())

		cr, err := check(ctx, in)
		if err != nil {
			r.metrics.ObserveCheck(name, "error", time.Since(start))
			log.Error("check failed", "err", err)
			return nil, nil, err
		}

		r.metrics.ObserveCheck(name, cr.verdict.String(), time.Since(start))
		log.Debug("check complete", "verdict", cr.verdict.String())

		res, err := jsonResult(cr.output)
		if err != nil {
			return nil, nil, err
		}
		res.IsError = cr.rejected
		return res, nil, nil
	})
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("encoding result: %w", err)
	}
	return &mcp.CallToolResult{
		Content:           []mcp.Content{&mcp.TextContent{Text: string(data)}},
		StructuredContent: v,
	}, nil
}

func (r *Registry) checkPrompt(ctx context.Context, in TextInput) (checkResult, error) {
	res, err := r.gate.CheckPrompt(ctx, in.Text)
	switch {
	case errors.Is(err, sanitizer.ErrUnsafeContent), errors.Is(err, sanitizer.ErrScriptTooLong):
		return checkResult{
			output:   PromptOutput{Allowed: false, Reason: err.Error()},
			verdict:  sanitizer.VerdictBlock,
			rejected: true,
		}, nil
	case err != nil:
		return checkResult{}, err
	}

	return checkResult{
		output:  PromptOutput{Allowed: true, Text: res.Text, Modified: res.Modified},
		verdict: res.Pipeline.FinalVerdict,
	}, nil
}

func (r *Registry) isScriptSafe(_ context.Context, in TextInput) (checkResult, error) {
	safe := r.gate.IsSafe(in.Text)
	return checkResult{output: SafetyOutput{Safe: safe}, verdict: passOrBlock(safe)}, nil
}

func (r *Registry) sanitizeText(_ context.Context, in TextInput) (checkResult, error) {
	out := sanitizer.SanitizeText(in.Text)
	verdict := sanitizer.VerdictPass
	if out != in.Text {
		verdict = sanitizer.VerdictModify
	}
	return checkResult{output: TextOutput{Text: out}, verdict: verdict}, nil
}

func (r *Registry) validateScript(_ context.Context, in ScriptInput) (checkResult, error) {
	limit := in.MaxLength
	if limit <= 0 {
		limit = r.gate.MaxScriptLength()
	}
	res := sanitizer.ValidateScriptLength(in.Script, limit)
	return checkResult{output: res, verdict: passOrBlock(res.Valid)}, nil
}

func (r *Registry) validatePassword(_ context.Context, in PasswordInput) (checkResult, error) {
	res := sanitizer.ValidatePassword(in.Password)
	return checkResult{output: res, verdict: passOrBlock(res.Valid)}, nil
}

func (r *Registry) sanitizeFilename(_ context.Context, in FilenameInput) (checkResult, error) {
	name, ok := sanitizer.SanitizeFilename(in.Filename)
	out := FilenameOutput{}
	verdict := sanitizer.VerdictPass
	if ok {
		out.Filename = &name
		if name != in.Filename {
			verdict = sanitizer.VerdictModify
		}
	}
	return checkResult{output: out, verdict: verdict}, nil
}

func (r *Registry) validateMimeType(_ context.Context, in MimeTypeInput) (checkResult, error) {
	allowed := sanitizer.ValidateMimeType(in.MimeType)
	out := MimeTypeOutput{Allowed: allowed}
	if !allowed {
		out.AllowedTypes = sanitizer.AllowedMimeTypes()
	}
	return checkResult{output: out, verdict: passOrBlock(allowed)}, nil
}

func (r *Registry) checkUpload(ctx context.Context, in UploadInput) (checkResult, error) {
	res, err := r.gate.CheckUpload(ctx, in.Filename, in.MimeType)
	switch {
	case errors.Is(err, sanitizer.ErrUnsupportedMimeType), errors.Is(err, sanitizer.ErrInvalidFilename):
		return checkResult{
			output:   UploadOutput{Allowed: false, Reason: err.Error()},
			verdict:  sanitizer.VerdictBlock,
			rejected: true,
		}, nil
	case err != nil:
		return checkResult{}, err
	}

	out := UploadOutput{Allowed: true, MimeType: res.MimeType}
	if res.HasName {
		out.Filename = &res.Filename
	}
	return checkResult{output: out, verdict: sanitizer.VerdictPass}, nil
}

func passOrBlock(ok bool) sanitizer.Verdict {
	if ok {
		return sanitizer.VerdictPass
	}
	return sanitizer.VerdictBlock
}

// BuildGate constructs a sanitizer.Gate from a defaulted gate config.
func BuildGate(cfg config.GateConfig, logger *slog.Logger) (*sanitizer.Gate, error) {
	var guardOpts []sanitizer.GuardOption
	if deref(cfg.DisableBuiltInPatterns) {
		guardOpts = append(guardOpts, sanitizer.WithoutBuiltInSignatures())
	}
	if len(cfg.CustomPatterns) > 0 {
		guardOpts = append(guardOpts, sanitizer.WithCustomPatterns(cfg.CustomPatterns...))
	}

	opts := []sanitizer.GateOption{
		sanitizer.WithUnicodeNormalization(deref(cfg.EnableUnicodeNormalization)),
		sanitizer.WithGuard(guardOpts...),
		sanitizer.WithLogger(logger),
	}
	if cfg.MaxScriptLength != nil {
		opts = append(opts, sanitizer.WithMaxScriptLength(*cfg.MaxScriptLength))
	}

	gate, err := sanitizer.NewGate(opts...)
	if err != nil {
		return nil, fmt.Errorf("building gate: %w", err)
	}
	return gate, nil
}

func deref(b *bool) bool {
	if b == nil {
		return false
	}
	return *b
}
