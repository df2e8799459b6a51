package sanitizer

// Verdict represents the outcome of a scan.
type Verdict int

const (
	// VerdictPass means the content is clean.
	VerdictPass Verdict = iota
	// VerdictModify means the content was sanitized and should be used
	// in place of the original.
	VerdictModify
	// VerdictBlock means the content must be rejected.
	VerdictBlock
)

func (v Verdict) String() string {
	switch v {
	case VerdictPass:
		return "pass"
	case VerdictModify:
		return "modify"
	case VerdictBlock:
		return "block"
	default:
		return "unknown"
	}
}

// ScanResult is the outcome of a single Scanner.
type ScanResult struct {
	Verdict     Verdict
	Content     string   // original or modified content
	Threats     []string // human-readable reasons, never the offending text
	ScannerName string
}

// PipelineResult aggregates results from all scanners in a pipeline.
type PipelineResult struct {
	FinalVerdict Verdict
	FinalContent string
	AllThreats   []string
	ScanResults  []ScanResult
	// BlockedBy names the scanner that blocked, empty otherwise.
	BlockedBy string
}

// ValidationResult is the single-error result shape. Error is nil when Valid.
type ValidationResult struct {
	Valid bool    `json:"valid"`
	Error *string `json:"error"`
}

// MultiValidationResult is the multi-error result shape. Errors is always
// non-nil and empty when Valid.
type MultiValidationResult struct {
	Valid  bool     `json:"valid"`
	Errors []string `json:"errors"`
}

func validResult() ValidationResult {
	return ValidationResult{Valid: true}
}

func invalidResult(msg string) ValidationResult {
	return ValidationResult{Valid: false, Error: &msg}
}
