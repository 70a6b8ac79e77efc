package views

import "github.com/abdidvp/slopwatch/internal/domain"

// Workspace aggregates per-file results: an unweighted mean of the scores,
// bucketed with the same policy as single files. No results yields zero
// files and a 0.0 average.
func Workspace(perFile []domain.AnalysisResult, thresholds domain.Thresholds) domain.WorkspaceSummary {
	if len(perFile) == 0 {
		return domain.WorkspaceSummary{OverallStatus: thresholds.Classify(0)}
	}
	var sum float64
	for _, r := range perFile {
		sum += r.DeficitScore
	}
	avg := sum / float64(len(perFile))
	return domain.WorkspaceSummary{
		TotalFiles:    len(perFile),
		AverageScore:  avg,
		OverallStatus: thresholds.Classify(avg),
	}
}

// WorkspaceFromResult prefers the per-file results; when the analyzer only
// reported aggregates, its count and average are used and re-bucketed.
func WorkspaceFromResult(w *domain.WorkspaceResult, thresholds domain.Thresholds) domain.WorkspaceSummary {
	summary := Workspace(w.FileResults, thresholds)
	if len(w.FileResults) == 0 && w.TotalFiles > 0 {
		summary = domain.WorkspaceSummary{
			TotalFiles:    w.TotalFiles,
			AverageScore:  w.AvgDeficitScore,
			OverallStatus: thresholds.Classify(w.AvgDeficitScore),
		}
	}
	summary.Root = w.ProjectPath
	return summary
}
