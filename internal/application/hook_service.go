package application

import (
	"context"
	"errors"
	"fmt"
	"log"
	"path/filepath"
	"strings"

	"github.com/abdidvp/slopwatch/internal/domain"
)

// HookOutcome is the analyzer's verdict on a hook install, reported as-is.
type HookOutcome struct {
	Root     string `json:"root"`
	ExitCode int    `json:"exit_code"`
	Output   string `json:"output"`
	Stderr   string `json:"stderr,omitempty"`
}

// HookService delegates git hook installation to the analyzer. It writes
// nothing itself.
type HookService struct {
	settings *settingsHolder
	runner   domain.ProcessRunner
	git      domain.WorkspaceInfo
	notifier domain.Notifier
	logger   *log.Logger
}

// Install runs the analyzer's hook-install mode from the repository root
// containing root.
func (s *HookService) Install(ctx context.Context, root string) (HookOutcome, error) {
	if root == "" {
		s.notifier.Notify(domain.Notification{Level: domain.NotifyWarning, Message: "[!] No workspace folder open"})
		return HookOutcome{}, fmt.Errorf("%w: no workspace root", domain.ErrUnsupportedSubject)
	}
	abs, err := filepath.Abs(root)
	if err != nil {
		return HookOutcome{}, fmt.Errorf("resolving %s: %w", root, err)
	}
	repoRoot := s.repoRoot(abs)

	settings := s.settings.Get()
	cmd := settings.HookCommand(repoRoot)
	raw, err := s.runner.Run(ctx, cmd, settings.FileLimits())
	if err != nil {
		outcome := HookOutcome{Root: repoRoot, ExitCode: -1}
		var ae *domain.AnalysisError
		if errors.As(err, &ae) {
			outcome.ExitCode = ae.ExitCode
			outcome.Stderr = ae.Stderr
		}
		s.logger.Printf("hook install in %s failed (%s): %v", repoRoot, domain.FailureKind(err), err)
		s.notifier.Notify(domain.Notification{
			Level:   domain.NotifyError,
			Message: fmt.Sprintf("[-] Failed to install hook: %v", err),
		})
		return outcome, fmt.Errorf("installing hook: %w", err)
	}

	outcome := HookOutcome{
		Root:     repoRoot,
		ExitCode: raw.ExitCode,
		Output:   strings.TrimSpace(string(raw.Stdout)),
		Stderr:   strings.TrimSpace(string(raw.Stderr)),
	}
	s.notifier.Notify(domain.Notification{Level: domain.NotifyInfo, Message: "[+] Git pre-commit hook installed successfully!"})
	return outcome, nil
}

func (s *HookService) repoRoot(path string) string {
	if s.git == nil {
		return path
	}
	root, err := s.git.RepoRoot(path)
	if err != nil {
		s.logger.Printf("no git repository above %s, installing from the workspace root: %v", path, err)
		return path
	}
	return root
}
