package status

import (
	"fmt"
	"strings"

	"github.com/abdidvp/slopwatch/internal/domain"
)

// Codicon names understood by the host's status surface.
const (
	IconGood    = "$(check)"
	IconWarning = "$(warning)"
	IconError   = "$(error)"
	IconBusy    = "$(sync~spin)"
)

func icon(b domain.Bucket) string {
	switch b {
	case domain.BucketError:
		return IconError
	case domain.BucketWarning:
		return IconWarning
	default:
		return IconGood
	}
}

// Ready is the snapshot shown before any analysis has run.
func Ready() domain.StatusSnapshot {
	return domain.StatusSnapshot{Icon: IconGood, Label: "SLOP: Ready", Tooltip: "No analysis has run yet"}
}

// Analyzing is shown while a request for subject is running.
func Analyzing(subject domain.Subject) domain.StatusSnapshot {
	label := "SLOP: Analyzing..."
	if subject.Kind == domain.SubjectWorkspace {
		label = "SLOP: Analyzing workspace..."
	}
	return domain.StatusSnapshot{Icon: IconBusy, Label: label, Tooltip: subject.Path, Subject: subject.Path, Busy: true}
}

// Project builds the snapshot for a successful file analysis.
func Project(subject domain.Subject, result *domain.AnalysisResult, thresholds domain.Thresholds) domain.StatusSnapshot {
	bucket := thresholds.Classify(result.DeficitScore)
	metrics := result.Metrics()
	lines := make([]string, len(metrics))
	for i, m := range metrics {
		lines[i] = domain.FormatMetric(m)
	}
	score := result.DeficitScore
	return domain.StatusSnapshot{
		Icon:    icon(bucket),
		Label:   fmt.Sprintf("SLOP: %s (%s)", domain.FormatScore(score), result.Status),
		Tooltip: strings.Join(lines, "\n"),
		Bucket:  bucket,
		Score:   &score,
		Status:  result.Status,
		Subject: subject.Path,
	}
}

// ProjectWorkspace builds the snapshot for a completed workspace run.
func ProjectWorkspace(summary domain.WorkspaceSummary) domain.StatusSnapshot {
	score := summary.AverageScore
	return domain.StatusSnapshot{
		Icon:  icon(summary.OverallStatus),
		Label: fmt.Sprintf("SLOP: %s (Workspace)", domain.FormatScore(score)),
		Tooltip: fmt.Sprintf("Files: %d\nAverage: %s\nStatus: %s",
			summary.TotalFiles, domain.FormatScore(score), summary.OverallStatus),
		Bucket:  summary.OverallStatus,
		Score:   &score,
		Status:  string(summary.OverallStatus),
		Subject: summary.Root,
	}
}

// ProjectFailure builds the error snapshot. It never claims a score.
func ProjectFailure(subject domain.Subject, err error) domain.StatusSnapshot {
	return domain.StatusSnapshot{
		Icon:  IconError,
		Label: "SLOP: Error",
		Tooltip: fmt.Sprintf("Analysis failed (%s): %v\nLast known diagnostics for %s are kept.",
			domain.FailureKind(err), err, subject.Path),
		Bucket:  domain.BucketError,
		Subject: subject.Path,
		Failed:  true,
	}
}
