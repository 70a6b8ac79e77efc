package domain

import (
	"encoding/json"
	"fmt"
)

// WorkspaceResult is the analyzer's `--project` output.
type WorkspaceResult struct {
	ProjectPath     string           `json:"project_path,omitempty"`
	TotalFiles      int              `json:"total_files"`
	AvgDeficitScore float64          `json:"avg_deficit_score"`
	OverallStatus   string           `json:"overall_status"`
	FileResults     []AnalysisResult `json:"file_results,omitempty"`
}

// WorkspaceSummary is the display-ready aggregate of a workspace run.
type WorkspaceSummary struct {
	Root          string  `json:"root"`
	TotalFiles    int     `json:"total_files"`
	AverageScore  float64 `json:"average_score"`
	OverallStatus Bucket  `json:"overall_status"`
	CommitHash    string  `json:"commit_hash,omitempty"`
}

// DecodeWorkspace parses and validates workspace-mode output.
func DecodeWorkspace(raw []byte) (*WorkspaceResult, error) {
	var w WorkspaceResult
	if err := decodeStrict(raw, &w); err != nil {
		return nil, err
	}
	fields, err := requireKeys(raw, "", "total_files", "avg_deficit_score")
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedOutput, err)
	}
	if w.TotalFiles < 0 {
		return nil, fmt.Errorf("%w: total_files is negative", ErrMalformedOutput)
	}
	if err := checkScore("avg_deficit_score", w.AvgDeficitScore); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedOutput, err)
	}
	var files []json.RawMessage
	if v, ok := fields["file_results"]; ok && string(v) != "null" {
		if err := json.Unmarshal(v, &files); err != nil {
			return nil, fmt.Errorf("%w: file_results: %v", ErrMalformedOutput, err)
		}
	}
	for i := range w.FileResults {
		if err := checkResultKeys(files[i]); err != nil {
			return nil, fmt.Errorf("%w: file_results[%d]: %v", ErrMalformedOutput, i, err)
		}
		if err := w.FileResults[i].Validate(); err != nil {
			return nil, fmt.Errorf("%w: file_results[%d]: %v", ErrMalformedOutput, i, err)
		}
	}
	return &w, nil
}
