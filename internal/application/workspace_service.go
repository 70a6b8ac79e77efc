package application

import (
	"context"
	"fmt"
	"log"
	"path/filepath"
	"time"

	"github.com/abdidvp/slopwatch/internal/domain"
	"github.com/abdidvp/slopwatch/internal/domain/status"
	"github.com/abdidvp/slopwatch/internal/domain/views"
)

// WorkspaceService runs one workspace-scoped analysis, independent of any
// per-file state.
type WorkspaceService struct {
	settings  *settingsHolder
	scheduler *Scheduler
	board     *StatusBoard
	runner    domain.ProcessRunner
	git       domain.WorkspaceInfo
	notifier  domain.Notifier
	logger    *log.Logger
	now       func() time.Time
}

// Trigger schedules a workspace run for root. A second call for the same
// root supersedes the first.
func (s *WorkspaceService) Trigger(root string) (*Ticket, error) {
	if root == "" {
		s.notifier.Notify(domain.Notification{Level: domain.NotifyWarning, Message: "[!] No workspace folder open"})
		return nil, fmt.Errorf("%w: no workspace root", domain.ErrUnsupportedSubject)
	}
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("resolving %s: %w", root, err)
	}

	settings := s.settings.Get()
	req := domain.NewAnalysisRequest(domain.WorkspaceSubject(abs), domain.TriggerWorkspace, s.now())
	return s.scheduler.Issue(req, s.task(settings)), nil
}

// Analyze triggers a workspace run and waits for it.
func (s *WorkspaceService) Analyze(ctx context.Context, root string) (Outcome, error) {
	ticket, err := s.Trigger(root)
	if err != nil {
		return Outcome{}, err
	}
	out, err := ticket.Wait(ctx)
	if err != nil {
		return out, err
	}
	return out, out.Err
}

func (s *WorkspaceService) task(settings domain.Settings) Task {
	thresholds := settings.Thresholds()
	return func(ctx context.Context, req *domain.AnalysisRequest) (Outcome, func()) {
		s.scheduler.IfCurrent(req, func() { s.board.Set(status.Analyzing(req.Subject)) })

		root := req.Subject.Path
		cmd := settings.WorkspaceCommand(root)
		result, err := invoke(ctx, s.runner, s.logger, cmd, settings.WorkspaceLimits(), domain.DecodeWorkspace)
		if err != nil {
			out := Outcome{Err: err, Status: status.ProjectFailure(req.Subject, err)}
			return out, func() {
				logFailure(s.logger, "workspace analysis", req, err)
				s.board.Set(out.Status)
				s.notifier.Notify(domain.Notification{
					Level:   domain.NotifyError,
					Message: fmt.Sprintf("[-] Workspace analysis failed: %v", err),
				})
			}
		}

		summary := views.WorkspaceFromResult(result, thresholds)
		if summary.Root == "" {
			summary.Root = root
		}
		summary.CommitHash = s.commitHash(root)

		out := Outcome{Workspace: &summary, Status: status.ProjectWorkspace(summary)}
		return out, func() {
			s.board.Set(out.Status)
			s.notifier.Notify(domain.Notification{Level: domain.NotifyInfo, Message: completionMessage(summary)})
		}
	}
}

func (s *WorkspaceService) commitHash(root string) string {
	if s.git == nil {
		return ""
	}
	hash, err := s.git.CommitHash(root)
	if err != nil {
		s.logger.Printf("no commit hash for %s: %v", root, err)
		return ""
	}
	return hash
}

func completionMessage(summary domain.WorkspaceSummary) string {
	msg := fmt.Sprintf("[+] Workspace Analysis Complete\nFiles: %d\nAvg Score: %s\nStatus: %s",
		summary.TotalFiles, domain.FormatScore(summary.AverageScore), summary.OverallStatus)
	if summary.CommitHash != "" {
		msg += "\nCommit: " + shortHash(summary.CommitHash)
	}
	return msg
}

func shortHash(h string) string {
	if len(h) > 7 {
		return h[:7]
	}
	return h
}
