package sanitizer

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"
	"strings"
)

// Signature families.
const (
	FamilyMarkup = "markup"
	FamilySQL    = "sql"
	FamilyCustom = "custom"
)

// Signature is a named attack pattern. Patterns are compiled with RE2, so
// matching is linear in the input length whatever the pattern.
type Signature struct {
	Name    string
	Family  string
	Pattern string
}

// builtInSignatures are evaluated in order; the first match wins.
var builtInSignatures = []Signature{
	{Name: "script_block", Family: FamilyMarkup, Pattern: `(?is)<script\b.*?</script>`},
	{Name: "javascript_uri", Family: FamilyMarkup, Pattern: `(?i)javascript:`},
	{Name: "event_handler", Family: FamilyMarkup, Pattern: `(?i)on\w+\s*=`},
	{Name: "eval_call", Family: FamilyMarkup, Pattern: `(?i)eval\(`},
	{Name: "document_ref", Family: FamilyMarkup, Pattern: `(?i)document\.`},
	{Name: "window_ref", Family: FamilyMarkup, Pattern: `(?i)window\.`},
	{Name: "alert_call", Family: FamilyMarkup, Pattern: `(?i)alert\(`},

	{Name: "drop_table", Family: FamilySQL, Pattern: `(?i)drop\s+table`},
	{Name: "delete_from", Family: FamilySQL, Pattern: `(?i)delete\s+from`},
	{Name: "insert_into", Family: FamilySQL, Pattern: `(?i)insert\s+into`},
	{Name: "update_set", Family: FamilySQL, Pattern: `(?i)update\s+\S+\s+set`},
	{Name: "union_select", Family: FamilySQL, Pattern: `(?i)union\s+select`},
	{Name: "select_all", Family: FamilySQL, Pattern: `(?i)select\s+\*\s+from`},
	// Over-broad: any apostrophe-semicolon followed later on the line by a
	// comment marker trips these. Kept until product decides otherwise.
	{Name: "comment_dash", Family: FamilySQL, Pattern: `';.*--`},
	{Name: "comment_hash", Family: FamilySQL, Pattern: `';.*#`},
	{Name: "or_tautology", Family: FamilySQL, Pattern: `(?i)'\s*or\s*'1'\s*=\s*'1`},
}

// BuiltInSignatures returns a copy of the default signature table.
func BuiltInSignatures() []Signature {
	out := make([]Signature, len(builtInSignatures))
	copy(out, builtInSignatures)
	return out
}

type compiledSignature struct {
	Signature
	re *regexp.Regexp
}

// PatternGuard rejects text matching any known attack signature.
type PatternGuard struct {
	signatures []compiledSignature
	logger     *slog.Logger
}

// GuardOption configures a PatternGuard.
type GuardOption func(*guardOptions)

type guardOptions struct {
	disableBuiltIn bool
	custom         []string
	logger         *slog.Logger
}

// WithoutBuiltInSignatures drops the default signature table.
func WithoutBuiltInSignatures() GuardOption {
	return func(o *guardOptions) { o.disableBuiltIn = true }
}

// WithCustomPatterns appends extra regular expressions after the built-ins.
// They are matched case-insensitively.
func WithCustomPatterns(patterns ...string) GuardOption {
	return func(o *guardOptions) { o.custom = append(o.custom, patterns...) }
}

// WithGuardLogger sets the logger that records rejections. Without it the
// guard logs through slog.Default.
func WithGuardLogger(l *slog.Logger) GuardOption {
	return func(o *guardOptions) { o.logger = l }
}

// NewPatternGuard compiles the signature table.
func NewPatternGuard(opts ...GuardOption) (*PatternGuard, error) {
	var o guardOptions
	for _, opt := range opts {
		opt(&o)
	}
	var sources []Signature
	if !o.disableBuiltIn {
		sources = append(sources, builtInSignatures...)
	}
	for i, p := range o.custom {
		sources = append(sources, Signature{
			Name:    fmt.Sprintf("custom_%d", i),
			Family:  FamilyCustom,
			Pattern: p,
		})
	}

	compiled := make([]compiledSignature, 0, len(sources))
	for _, sig := range sources {
		p := sig.Pattern
		if sig.Family == FamilyCustom && !strings.HasPrefix(p, "(?i)") {
			p = "(?i)" + p
		}
		re, err := regexp.Compile(p)
		if err != nil {
			return nil, fmt.Errorf("compiling signature %s %q: %w", sig.Name, sig.Pattern, err)
		}
		compiled = append(compiled, compiledSignature{Signature: sig, re: re})
	}

	g := &PatternGuard{signatures: compiled}
	if o.logger != nil {
		g.logger = o.logger.With("area", "guard")
	}
	return g, nil
}

// log falls back to slog.Default at call time so the package-level guard
// follows slog.SetDefault.
func (g *PatternGuard) log() *slog.Logger {
	if g.logger != nil {
		return g.logger
	}
	return slog.Default().With("area", "guard")
}

func (g *PatternGuard) reject(sig Signature, text string) {
	g.log().Warn("unsafe content rejected",
		"signature", sig.Name,
		"family", sig.Family,
		"length", len(text),
	)
}

// Match returns the first signature found in text.
func (g *PatternGuard) Match(text string) (Signature, bool) {
	if text == "" {
		return Signature{}, false
	}
	for _, sig := range g.signatures {
		if sig.re.MatchString(text) {
			return sig.Signature, true
		}
	}
	return Signature{}, false
}

// IsSafe reports whether text matches none of the signatures.
// Empty text is safe.
func (g *PatternGuard) IsSafe(text string) bool {
	sig, found := g.Match(text)
	if !found {
		return true
	}
	g.reject(sig, text)
	return false
}

func (g *PatternGuard) Name() string { return "guard" }

func (g *PatternGuard) Scan(_ context.Context, content string) (ScanResult, error) {
	sig, found := g.Match(content)
	if !found {
		return ScanResult{
			Verdict:     VerdictPass,
			Content:     content,
			ScannerName: g.Name(),
		}, nil
	}

	g.reject(sig, content)
	return ScanResult{
		Verdict:     VerdictBlock,
		Content:     content,
		Threats:     []string{fmt.Sprintf("%s signature detected: %s", sig.Family, sig.Name)},
		ScannerName: g.Name(),
	}, nil
}

var defaultGuard = mustDefaultGuard()

func mustDefaultGuard() *PatternGuard {
	g, err := NewPatternGuard()
	if err != nil {
		panic(err)
	}
	return g
}

// IsScriptSafe reports whether text is free of known attack signatures,
// using the built-in table. Rejections are logged through slog.Default.
func IsScriptSafe(text string) bool {
	return defaultGuard.IsSafe(text)
}
