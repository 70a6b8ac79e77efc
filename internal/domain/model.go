package domain

import (
	"encoding/json"
	"fmt"
	"math"
)

// AnalysisResult is the analyzer's verdict for a single file. It is the wire
// shape produced by `--json` and is never mutated after decoding.
type AnalysisResult struct {
	FilePath           string           `json:"file_path,omitempty"`
	DeficitScore       float64          `json:"deficit_score"`
	Status             string           `json:"status"`
	LDR                *LDRMetric       `json:"ldr"`
	Inflation          *InflationMetric `json:"inflation"`
	DDC                *DDCMetric       `json:"ddc"`
	PatternIssues      []PatternFinding `json:"pattern_issues,omitempty"`
	JargonDetails      []JargonDetail   `json:"jargon_details,omitempty"`
	UnusedDependencies []string         `json:"unused_dependencies,omitempty"`
}

// LDRMetric is the logic density ratio of a file.
type LDRMetric struct {
	Score      float64 `json:"ldr_score"`
	LogicLines int     `json:"logic_lines,omitempty"`
	EmptyLines int     `json:"empty_lines,omitempty"`
	TotalLines int     `json:"total_lines,omitempty"`
}

// InflationMetric is the jargon-to-logic inflation ratio.
type InflationMetric struct {
	Score       float64 `json:"inflation_score"`
	JargonCount int     `json:"jargon_count,omitempty"`
}

// DDCMetric is the declared-dependency usage ratio.
type DDCMetric struct {
	UsageRatio float64 `json:"usage_ratio"`
}

// PatternFinding is one discrete issue reported by the analyzer.
type PatternFinding struct {
	Category string `json:"category"`
	Message  string `json:"message"`
	Severity string `json:"severity"`
	Line     *int   `json:"line,omitempty"`
}

// JargonDetail is a single flagged term with its 1-based source line.
type JargonDetail struct {
	Word     string `json:"word"`
	Category string `json:"category"`
	Line     *int   `json:"line,omitempty"`
}

// Finding severities as reported by the analyzer.
const (
	FindingCritical = "critical"
	FindingHigh     = "high"
	FindingMedium   = "medium"
	FindingLow      = "low"
	FindingWarning  = "warning"
	FindingInfo     = "info"
)

// MetricValue is one named sub-metric in display order.
type MetricValue struct {
	Name  string  `json:"name"`
	Value float64 `json:"value"`
}

// Metrics returns the fixed metric set in display order. Call only on a
// validated result.
func (r *AnalysisResult) Metrics() []MetricValue {
	return []MetricValue{
		{Name: "LDR", Value: r.LDR.Score},
		{Name: "Inflation", Value: r.Inflation.Score},
		{Name: "DDC", Value: r.DDC.UsageRatio},
	}
}

// TotalLines reports the analyzed file's line count, or 0 when unknown.
func (r *AnalysisResult) TotalLines() int {
	if r.LDR == nil {
		return 0
	}
	return r.LDR.TotalLines
}

// Validate checks the result against the contract.
func (r *AnalysisResult) Validate() error {
	if err := checkScore("deficit_score", r.DeficitScore); err != nil {
		return err
	}
	if r.Status == "" {
		return fmt.Errorf("status is empty")
	}
	if r.LDR == nil {
		return fmt.Errorf("metric ldr is missing")
	}
	if r.Inflation == nil {
		return fmt.Errorf("metric inflation is missing")
	}
	if r.DDC == nil {
		return fmt.Errorf("metric ddc is missing")
	}
	for _, m := range r.Metrics() {
		if math.IsNaN(m.Value) || math.IsInf(m.Value, 0) {
			return fmt.Errorf("metric %s is not a finite number", m.Name)
		}
	}
	for i, f := range r.PatternIssues {
		if f.Severity == "" {
			return fmt.Errorf("pattern_issues[%d].severity is empty", i)
		}
		if f.Message == "" {
			return fmt.Errorf("pattern_issues[%d].message is empty", i)
		}
	}
	for i, j := range r.JargonDetails {
		if j.Word == "" {
			return fmt.Errorf("jargon_details[%d].word is empty", i)
		}
	}
	return nil
}

// DecodeResult parses and validates the analyzer's single-file output.
// Every failure wraps ErrMalformedOutput.
func DecodeResult(raw []byte) (*AnalysisResult, error) {
	var r AnalysisResult
	if err := decodeStrict(raw, &r); err != nil {
		return nil, err
	}
	if err := checkResultKeys(raw); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedOutput, err)
	}
	if err := r.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedOutput, err)
	}
	return &r, nil
}

// metricKeys maps each metric object to the score key it must carry.
var metricKeys = []struct{ object, score string }{
	{"ldr", "ldr_score"},
	{"inflation", "inflation_score"},
	{"ddc", "usage_ratio"},
}

// checkResultKeys rejects results whose score keys are absent or null.
// Decoding alone would read them as 0.
func checkResultKeys(raw []byte) error {
	fields, err := requireKeys(raw, "", "deficit_score", "status", "ldr", "inflation", "ddc")
	if err != nil {
		return err
	}
	for _, m := range metricKeys {
		if _, err := requireKeys(fields[m.object], m.object+".", m.score); err != nil {
			return err
		}
	}
	return nil
}

// requireKeys decodes a JSON object and checks that every key is present
// and not null. prefix qualifies key names in the error.
func requireKeys(raw []byte, prefix string, keys ...string) (map[string]json.RawMessage, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil {
		return nil, err
	}
	for _, k := range keys {
		v, ok := fields[k]
		if !ok || string(v) == "null" {
			return nil, fmt.Errorf("%s%s is missing", prefix, k)
		}
	}
	return fields, nil
}

func decodeStrict(raw []byte, v any) error {
	if len(raw) == 0 {
		return fmt.Errorf("%w: empty output", ErrMalformedOutput)
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return fmt.Errorf("%w: %v", ErrMalformedOutput, err)
	}
	return nil
}

func checkScore(field string, v float64) error {
	switch {
	case math.IsNaN(v) || math.IsInf(v, 0):
		return fmt.Errorf("%s is not a finite number", field)
	case v < 0:
		return fmt.Errorf("%s is negative (%g)", field, v)
	}
	return nil
}

// ZeroBasedLine converts an optional 1-based line to a 0-based one. Missing,
// non-positive and out-of-range lines map to the first line. totalLines <= 0
// means the upper bound is unknown.
func ZeroBasedLine(line *int, totalLines int) int {
	if line == nil || *line <= 0 {
		return 0
	}
	if totalLines > 0 && *line > totalLines {
		return 0
	}
	return *line - 1
}
