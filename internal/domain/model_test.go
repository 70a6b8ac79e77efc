package domain_test

import (
	"errors"
	"testing"

	"github.com/abdidvp/slopwatch/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const validResult = `{
  "file_path": "/src/app.py",
  "deficit_score": 71.1,
  "status": "critical_deficit",
  "ldr": {"ldr_score": 0.5, "total_lines": 40},
  "inflation": {"inflation_score": 0.3},
  "ddc": {"usage_ratio": 0.8},
  "pattern_issues": [
    {"category": "placeholder", "message": "empty body", "severity": "critical", "line": 3}
  ],
  "jargon_details": [{"word": "synergy", "category": "business", "line": 7}],
  "unused_dependencies": ["numpy"]
}`

func TestDecodeResult_Valid(t *testing.T) {
	r, err := domain.DecodeResult([]byte(validResult))
	require.NoError(t, err)
	assert.InDelta(t, 71.1, r.DeficitScore, 0.0001)
	assert.Equal(t, "critical_deficit", r.Status)
	assert.Equal(t, 40, r.TotalLines())
	require.Len(t, r.PatternIssues, 1)
	require.NotNil(t, r.PatternIssues[0].Line)
	assert.Equal(t, 3, *r.PatternIssues[0].Line)
	assert.Equal(t, []string{"numpy"}, r.UnusedDependencies)

	metrics := r.Metrics()
	require.Len(t, metrics, 3)
	assert.Equal(t, "LDR", metrics[0].Name)
	assert.Equal(t, "Inflation", metrics[1].Name)
	assert.Equal(t, "DDC", metrics[2].Name)
}

func TestDecodeResult_Malformed(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{"empty", ""},
		{"not json", "Traceback (most recent call last):"},
		{"negative score", `{"deficit_score": -1, "status": "clean", "ldr": {"ldr_score": 1}, "inflation": {"inflation_score": 0}, "ddc": {"usage_ratio": 1}}`},
		{"missing status", `{"deficit_score": 10, "ldr": {"ldr_score": 1}, "inflation": {"inflation_score": 0}, "ddc": {"usage_ratio": 1}}`},
		{"missing metric", `{"deficit_score": 10, "status": "clean", "ldr": {"ldr_score": 1}, "ddc": {"usage_ratio": 1}}`},
		{"finding without severity", `{"deficit_score": 10, "status": "clean", "ldr": {"ldr_score": 1}, "inflation": {"inflation_score": 0}, "ddc": {"usage_ratio": 1}, "pattern_issues": [{"category": "x", "message": "y"}]}`},
		{"wrong type", `{"deficit_score": "high", "status": "clean"}`},
		{"missing score", `{"slop_score": 71.1, "status": "critical_deficit", "ldr": {"ldr_score": 0.5}, "inflation": {"inflation_score": 0.3}, "ddc": {"usage_ratio": 0.8}}`},
		{"null score", `{"deficit_score": null, "status": "clean", "ldr": {"ldr_score": 1}, "inflation": {"inflation_score": 0}, "ddc": {"usage_ratio": 1}}`},
		{"empty metric objects", `{"deficit_score": 10, "status": "clean", "ldr": {}, "inflation": {}, "ddc": {}}`},
		{"metric without ratio", `{"deficit_score": 10, "status": "clean", "ldr": {"ldr_score": 1}, "inflation": {"inflation_score": 0}, "ddc": {"declared": 3}}`},
		{"array", `[]`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := domain.DecodeResult([]byte(tt.raw))
			require.Error(t, err)
			assert.True(t, errors.Is(err, domain.ErrMalformedOutput), "got %v", err)
		})
	}
}

func TestZeroBasedLine(t *testing.T) {
	line := func(n int) *int { return &n }
	assert.Equal(t, 0, domain.ZeroBasedLine(nil, 10))
	assert.Equal(t, 0, domain.ZeroBasedLine(line(0), 10))
	assert.Equal(t, 0, domain.ZeroBasedLine(line(-4), 10))
	assert.Equal(t, 0, domain.ZeroBasedLine(line(1), 10))
	assert.Equal(t, 6, domain.ZeroBasedLine(line(7), 10))
	assert.Equal(t, 0, domain.ZeroBasedLine(line(11), 10), "beyond the file clamps to the first line")
	assert.Equal(t, 99, domain.ZeroBasedLine(line(100), 0), "unknown length keeps the line")
}

func TestDecodeHistory(t *testing.T) {
	entries, err := domain.DecodeHistory([]byte(`[
	  {"timestamp": "2026-01-02T10:00:00Z", "deficit_score": 45, "status": "suspicious", "ldr_score": 0.6, "inflation_score": 0.2, "ddc_usage_ratio": 0.9}
	]`))
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "suspicious", entries[0].Status)

	empty, err := domain.DecodeHistory([]byte(`[]`))
	require.NoError(t, err)
	assert.Empty(t, empty)

	_, err = domain.DecodeHistory([]byte(`[{"deficit_score": 1}]`))
	assert.ErrorIs(t, err, domain.ErrMalformedOutput)

	_, err = domain.DecodeHistory([]byte(`[{"timestamp": "2026-01-02T10:00:00Z", "status": "clean"}]`))
	assert.ErrorIs(t, err, domain.ErrMalformedOutput)
	assert.Contains(t, err.Error(), "history[0].deficit_score is missing")
}

func TestDecodeWorkspace(t *testing.T) {
	w, err := domain.DecodeWorkspace([]byte(`{"total_files": 2, "avg_deficit_score": 38, "overall_status": "suspicious"}`))
	require.NoError(t, err)
	assert.Equal(t, 2, w.TotalFiles)

	_, err = domain.DecodeWorkspace([]byte(`{"total_files": -1, "avg_deficit_score": 0}`))
	assert.ErrorIs(t, err, domain.ErrMalformedOutput)

	_, err = domain.DecodeWorkspace([]byte(`{"total_files": 1, "avg_deficit_score": 5, "file_results": [{"deficit_score": 5}]}`))
	assert.ErrorIs(t, err, domain.ErrMalformedOutput)

	_, err = domain.DecodeWorkspace([]byte(`{"total_files": 3, "overall_status": "clean"}`))
	assert.ErrorIs(t, err, domain.ErrMalformedOutput)

	_, err = domain.DecodeWorkspace([]byte(`{"total_files": 1, "avg_deficit_score": 5, "file_results": [
	  {"deficit_score": 5, "status": "clean", "ldr": {}, "inflation": {}, "ddc": {}}]}`))
	assert.ErrorIs(t, err, domain.ErrMalformedOutput)
}

func TestOutputTooLarge_IsMalformed(t *testing.T) {
	assert.ErrorIs(t, domain.ErrOutputTooLarge, domain.ErrMalformedOutput)
	assert.Equal(t, "output too large", domain.FailureKind(domain.ErrOutputTooLarge))
	assert.Equal(t, "spawn failure", domain.FailureKind(&domain.AnalysisError{Err: domain.ErrSpawn}))
}

func TestNotScheduledFamily(t *testing.T) {
	for _, err := range []error{domain.ErrUnsupportedSubject, domain.ErrAnalysisDisabled, domain.ErrTriggerDisabled} {
		assert.ErrorIs(t, err, domain.ErrNotScheduled)
	}
}

func TestAnalysisError_Message(t *testing.T) {
	err := &domain.AnalysisError{Command: "python -m slop_detector.cli a.py --json", ExitCode: 2, RawLength: 17, Stderr: "boom", Err: domain.ErrNonZeroExit}
	assert.Contains(t, err.Error(), "exit: 2")
	assert.Contains(t, err.Error(), "17 bytes")
	assert.Contains(t, err.Error(), "boom")
	assert.ErrorIs(t, err, domain.ErrNonZeroExit)
}
