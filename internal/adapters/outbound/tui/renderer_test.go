package tui_test

import (
	"bytes"
	"testing"

	"github.com/abdidvp/slopwatch/internal/adapters/outbound/tui"
	"github.com/abdidvp/slopwatch/internal/domain"
	"github.com/abdidvp/slopwatch/internal/domain/mapper"
	"github.com/abdidvp/slopwatch/internal/domain/views"
	"github.com/stretchr/testify/assert"
)

func line(n int) *int { return &n }

func sampleResult() *domain.AnalysisResult {
	return &domain.AnalysisResult{
		DeficitScore: 62.4,
		Status:       "critical_deficit",
		LDR:          &domain.LDRMetric{Score: 0.35, TotalLines: 40},
		Inflation:    &domain.InflationMetric{Score: 1.2},
		DDC:          &domain.DDCMetric{UsageRatio: 0.5},
		PatternIssues: []domain.PatternFinding{
			{Category: "bare_except", Message: "bare except swallows errors", Severity: "critical", Line: line(12)},
		},
		JargonDetails: []domain.JargonDetail{
			{Word: "synergy", Category: "buzzword", Line: line(3)},
		},
	}
}

func TestRenderAnalysis_ContainsScoreAndMetrics(t *testing.T) {
	r := sampleResult()
	output := tui.RenderAnalysis("/src/pkg/app.py", r, mapper.Map(r, domain.DefaultThresholds()).All(), domain.DefaultThresholds())

	assert.Contains(t, output, "62.4")
	assert.Contains(t, output, "critical_deficit")
	assert.Contains(t, output, "LDR")
	assert.Contains(t, output, "Inflation")
	assert.Contains(t, output, "DDC")
	assert.Contains(t, output, "0.350")
}

func TestRenderAnalysis_ListsFindings(t *testing.T) {
	r := sampleResult()
	output := tui.RenderAnalysis("/src/pkg/app.py", r, mapper.Map(r, domain.DefaultThresholds()).All(), domain.DefaultThresholds())

	assert.Contains(t, output, "Findings")
	assert.Contains(t, output, "1 errors")
	assert.Contains(t, output, "1 warnings")
	assert.Contains(t, output, "Bare except")
	assert.Contains(t, output, "L12")
	assert.Contains(t, output, "synergy")
}

func TestRenderAnalysis_NoFindings(t *testing.T) {
	r := sampleResult()
	r.PatternIssues = nil
	r.JargonDetails = nil
	output := tui.RenderAnalysis("app.py", r, mapper.Map(r, domain.DefaultThresholds()).All(), domain.DefaultThresholds())
	assert.Contains(t, output, "No findings.")
}

func TestHumanize(t *testing.T) {
	tests := map[string]string{
		"bare_except":    "Bare except",
		"mutableDefault": "Mutable default",
		"buzzword":       "Buzzword",
		"":               "",
	}
	for in, want := range tests {
		assert.Equal(t, want, tui.Humanize(in), in)
	}
}

func TestRenderStatus(t *testing.T) {
	output := tui.RenderStatus(domain.StatusSnapshot{Label: "SLOP: 62.4 (critical_deficit)", Bucket: domain.BucketError})
	assert.Contains(t, output, "SLOP: 62.4 (critical_deficit)")
	assert.Contains(t, output, "✗")

	output = tui.RenderStatus(domain.StatusSnapshot{Label: "SLOP: Analyzing...", Busy: true})
	assert.Contains(t, output, "…")
}

func TestRenderWorkspace(t *testing.T) {
	output := tui.RenderWorkspace(domain.WorkspaceSummary{
		Root: "/src/proj", TotalFiles: 12, AverageScore: 31.25, OverallStatus: domain.BucketWarning, CommitHash: "0123456789abcdef",
	})
	assert.Contains(t, output, "12")
	assert.Contains(t, output, "31.2")
	assert.Contains(t, output, "0123456")
	assert.NotContains(t, output, "0123456789")
}

func TestRenderHistory_Empty(t *testing.T) {
	output := tui.RenderHistory("History", views.History(nil))
	assert.Contains(t, output, "No history found")
}

func TestRenderHistory_ShowsTrend(t *testing.T) {
	view := views.History([]domain.HistoryEntry{
		{Timestamp: "2026-02-01T10:00:00Z", DeficitScore: 60, Status: "suspicious"},
		{Timestamp: "2026-03-01T10:00:00Z", DeficitScore: 40, Status: "suspicious"},
	})
	output := tui.RenderHistory("History", view)

	assert.Contains(t, output, "History")
	assert.Contains(t, output, "2026-03-01T10:00:00Z")
	assert.Contains(t, output, "Score: 40.0")
	assert.Contains(t, output, "↓20.0")
}

func TestNotifier_WritesMessage(t *testing.T) {
	var buf bytes.Buffer
	n := tui.NewNotifier(&buf)
	n.Notify(domain.Notification{Level: domain.NotifyError, Message: "[-] Analysis failed: boom"})
	n.Notify(domain.Notification{Level: domain.NotifyInfo, Message: "[+] done"})

	assert.Contains(t, buf.String(), "[-] Analysis failed: boom")
	assert.Contains(t, buf.String(), "[+] done")
}
