// Package mapper converts a validated analyzer verdict into editor diagnostics.
//
// Map is pure: the same result and thresholds always yield the same
// diagnostics in the same order (summary, findings, jargon, unused deps).
package mapper

import (
	"fmt"
	"strings"

	"github.com/abdidvp/slopwatch/internal/domain"
)

// Diagnostic source tags.
const (
	SourceSummary      = "slopwatch"
	SourcePatterns     = "slopwatch/patterns"
	SourceJargon       = "slopwatch/jargon"
	SourceDependencies = "slopwatch/deps"
)

// Mapping is the diagnostic set for one subject.
type Mapping struct {
	Summary  domain.Diagnostic   `json:"summary"`
	Findings []domain.Diagnostic `json:"findings"`
}

// All returns the summary followed by every other diagnostic.
func (m Mapping) All() []domain.Diagnostic {
	all := make([]domain.Diagnostic, 0, len(m.Findings)+1)
	all = append(all, m.Summary)
	return append(all, m.Findings...)
}

// Map converts result into diagnostics. result must have passed Validate.
func Map(result *domain.AnalysisResult, thresholds domain.Thresholds) Mapping {
	m := Mapping{
		Summary: domain.Diagnostic{
			Range:    domain.LineStart(0),
			Message:  SummaryMessage(result),
			Severity: domain.SeverityFor(thresholds.Classify(result.DeficitScore)),
			Source:   SourceSummary,
		},
		Findings: []domain.Diagnostic{},
	}

	total := result.TotalLines()

	for _, f := range result.PatternIssues {
		sev, ok := findingSeverity(f.Severity)
		if !ok {
			continue
		}
		m.Findings = append(m.Findings, domain.Diagnostic{
			Range:    domain.LineStart(domain.ZeroBasedLine(f.Line, total)),
			Message:  fmt.Sprintf("[%s] %s", f.Category, f.Message),
			Severity: sev,
			Source:   SourcePatterns,
			Code:     f.Category,
		})
	}

	for _, j := range result.JargonDetails {
		m.Findings = append(m.Findings, domain.Diagnostic{
			Range:    domain.LineStart(domain.ZeroBasedLine(j.Line, total)),
			Message:  jargonMessage(j),
			Severity: domain.SeverityWarning,
			Source:   SourceJargon,
			Code:     j.Category,
		})
	}

	if len(result.UnusedDependencies) > 0 {
		m.Findings = append(m.Findings, domain.Diagnostic{
			Range:    domain.LineStart(0),
			Message:  "Unused dependencies: " + strings.Join(result.UnusedDependencies, ", "),
			Severity: domain.SeverityInfo,
			Source:   SourceDependencies,
		})
	}

	return m
}

// SummaryMessage renders the score (one decimal) and every sub-metric
// (three decimals).
func SummaryMessage(result *domain.AnalysisResult) string {
	metrics := result.Metrics()
	parts := make([]string, len(metrics))
	for i, mv := range metrics {
		parts[i] = domain.FormatMetric(mv)
	}
	return fmt.Sprintf("SLOP Score: %s (%s)\n%s",
		domain.FormatScore(result.DeficitScore), result.Status, strings.Join(parts, ", "))
}

// findingSeverity keeps only critical and high findings; the rest stay in
// the raw result for reports.
func findingSeverity(s string) (domain.Severity, bool) {
	switch strings.ToLower(s) {
	case domain.FindingCritical:
		return domain.SeverityError, true
	case domain.FindingHigh:
		return domain.SeverityWarning, true
	default:
		return "", false
	}
}

func jargonMessage(j domain.JargonDetail) string {
	if j.Category == "" {
		return fmt.Sprintf("Unjustified jargon: %q", j.Word)
	}
	return fmt.Sprintf("Unjustified jargon: %q (%s)", j.Word, j.Category)
}
