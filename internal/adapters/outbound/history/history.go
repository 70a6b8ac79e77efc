package history

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/abdidvp/slopwatch/internal/domain"
)

// AnalyzerHistory implements domain.HistoryReader by asking the analyzer,
// which owns the per-file history store.
type AnalyzerHistory struct {
	runner domain.ProcessRunner
}

func New(runner domain.ProcessRunner) *AnalyzerHistory {
	return &AnalyzerHistory{runner: runner}
}

func (h *AnalyzerHistory) Load(ctx context.Context, settings domain.Settings, path string) ([]domain.HistoryEntry, error) {
	cmd := settings.HistoryCommand(path)
	raw, err := h.runner.Run(ctx, cmd, settings.FileLimits())
	if err != nil {
		return nil, err
	}

	entries, err := domain.DecodeHistory(raw.Stdout)
	if err != nil {
		return nil, &domain.AnalysisError{
			Command:   cmd.String(),
			ExitCode:  raw.ExitCode,
			RawLength: len(raw.Stdout),
			Err:       err,
		}
	}
	return entries, nil
}

const workspaceFile = ".slopwatch/history/workspace.json"

// WorkspaceRun is one recorded workspace analysis.
type WorkspaceRun struct {
	Timestamp string                  `json:"timestamp"`
	Summary   domain.WorkspaceSummary `json:"summary"`
}

// WorkspaceLog records workspace runs in a JSON file under the workspace
// root. Per-file history stays with the analyzer.
type WorkspaceLog struct{}

func NewWorkspaceLog() *WorkspaceLog {
	return &WorkspaceLog{}
}

func (l *WorkspaceLog) Save(root string, run WorkspaceRun) error {
	runs, err := l.Load(root)
	if err != nil {
		return err
	}

	runs = append(runs, run)

	fp := filepath.Join(root, workspaceFile)
	if err := os.MkdirAll(filepath.Dir(fp), 0755); err != nil {
		return err
	}

	data, err := json.MarshalIndent(runs, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(fp, data, 0644)
}

func (l *WorkspaceLog) Load(root string) ([]WorkspaceRun, error) {
	fp := filepath.Join(root, workspaceFile)

	data, err := os.ReadFile(fp)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, err
	}

	var runs []WorkspaceRun
	if err := json.Unmarshal(data, &runs); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", workspaceFile, err)
	}

	return runs, nil
}

// Entries converts recorded runs into history entries so they share the
// history view's formatting.
func Entries(runs []WorkspaceRun) []domain.HistoryEntry {
	entries := make([]domain.HistoryEntry, len(runs))
	for i, r := range runs {
		entries[i] = domain.HistoryEntry{
			Timestamp:    r.Timestamp,
			DeficitScore: r.Summary.AverageScore,
			Status:       string(r.Summary.OverallStatus),
		}
	}
	return entries
}
