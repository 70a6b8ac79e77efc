package domain

// Severity is the editor-facing severity of a diagnostic.
type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
	SeverityInfo    Severity = "info"
)

// SeverityFor converts a threshold bucket into a diagnostic severity.
func SeverityFor(b Bucket) Severity {
	switch b {
	case BucketError:
		return SeverityError
	case BucketWarning:
		return SeverityWarning
	default:
		return SeverityInfo
	}
}

// Position is a 0-based line/character offset.
type Position struct {
	Line      int `json:"line"`
	Character int `json:"character"`
}

// Range is a half-open span in a document.
type Range struct {
	Start Position `json:"start"`
	End   Position `json:"end"`
}

// LineStart is the zero-width range at the beginning of a 0-based line.
func LineStart(line int) Range {
	p := Position{Line: line}
	return Range{Start: p, End: p}
}

// Diagnostic is one in-editor finding derived from a validated result.
type Diagnostic struct {
	Range    Range    `json:"range"`
	Message  string   `json:"message"`
	Severity Severity `json:"severity"`
	Source   string   `json:"source"`
	Code     string   `json:"code,omitempty"`
}

// StatusSnapshot is the single live status indicator.
type StatusSnapshot struct {
	Icon    string   `json:"icon"`
	Label   string   `json:"label"`
	Tooltip string   `json:"tooltip"`
	Bucket  Bucket   `json:"bucket,omitempty"`
	Score   *float64 `json:"score,omitempty"`
	Status  string   `json:"status,omitempty"`
	Subject string   `json:"subject,omitempty"`
	Failed  bool     `json:"failed"`
	Busy    bool     `json:"busy"`
}
