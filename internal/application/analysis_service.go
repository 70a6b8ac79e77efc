package application

import (
	"context"
	"errors"
	"fmt"
	"log"
	"path/filepath"
	"sync"
	"time"

	"github.com/abdidvp/slopwatch/internal/domain"
	"github.com/abdidvp/slopwatch/internal/domain/mapper"
	"github.com/abdidvp/slopwatch/internal/domain/status"
)

// AnalysisService turns file trigger events into scheduled analyzer runs
// and publishes their diagnostics and status.
type AnalysisService struct {
	settings  *settingsHolder
	scheduler *Scheduler
	board     *StatusBoard
	store     domain.DiagnosticStore
	runner    domain.ProcessRunner
	notifier  domain.Notifier
	logger    *log.Logger
	now       func() time.Time

	// spawnReported suppresses repeated spawn-failure notifications from
	// automatic triggers until an analysis succeeds again.
	spawnMu       sync.Mutex
	spawnReported bool
}

// Trigger schedules an analysis of path. It returns an error wrapping
// domain.ErrNotScheduled when the trigger policy says there is nothing to
// do; no process is spawned in that case.
func (s *AnalysisService) Trigger(path string, trigger domain.TriggerKind) (*Ticket, error) {
	settings := s.settings.Get()

	// 1. Global switch
	if !settings.Enable {
		return nil, domain.ErrAnalysisDisabled
	}

	// 2. Trigger policy
	switch trigger {
	case domain.TriggerManual:
	case domain.TriggerSave:
		if !settings.LintOnSave {
			return nil, domain.ErrTriggerDisabled
		}
	case domain.TriggerChange:
		if !settings.LintOnChange {
			return nil, domain.ErrTriggerDisabled
		}
	default:
		return nil, fmt.Errorf("%w: %s is not a file trigger", domain.ErrUnsupportedSubject, trigger)
	}

	// 3. Subject
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolving %s: %w", path, err)
	}
	if !settings.Supports(abs) {
		return nil, fmt.Errorf("%w: %s", domain.ErrUnsupportedSubject, abs)
	}

	// 4. Schedule
	req := domain.NewAnalysisRequest(domain.FileSubject(abs), trigger, s.now())
	task := s.task(settings)
	if trigger == domain.TriggerChange {
		return s.scheduler.Debounce(req, settings.Debounce(), task), nil
	}
	return s.scheduler.Issue(req, task), nil
}

// Analyze is a manual trigger that waits for the outcome.
func (s *AnalysisService) Analyze(ctx context.Context, path string) (Outcome, error) {
	ticket, err := s.Trigger(path, domain.TriggerManual)
	if err != nil {
		return Outcome{}, err
	}
	out, err := ticket.Wait(ctx)
	if err != nil {
		return out, err
	}
	return out, out.Err
}

func (s *AnalysisService) task(settings domain.Settings) Task {
	thresholds := settings.Thresholds()
	return func(ctx context.Context, req *domain.AnalysisRequest) (Outcome, func()) {
		s.scheduler.IfCurrent(req, func() { s.board.Set(status.Analyzing(req.Subject)) })

		cmd := settings.FileCommand(req.Subject.Path)
		result, err := invoke(ctx, s.runner, s.logger, cmd, settings.FileLimits(), domain.DecodeResult)
		if err != nil {
			out := Outcome{Err: err, Status: status.ProjectFailure(req.Subject, err)}
			return out, func() { s.fail(req, out) }
		}

		diags := mapper.Map(result, thresholds).All()
		out := Outcome{
			Result:      result,
			Diagnostics: diags,
			Status:      status.Project(req.Subject, result, thresholds),
		}
		return out, func() {
			s.store.Set(req.Subject, diags)
			s.board.Set(out.Status)
			s.spawnRecovered()
		}
	}
}

// fail publishes a failed run. The subject's diagnostics stay as they were.
func (s *AnalysisService) fail(req *domain.AnalysisRequest, out Outcome) {
	logFailure(s.logger, "analysis", req, out.Err)
	s.board.Set(out.Status)
	if s.shouldNotify(req.Trigger, out.Err) {
		s.notifier.Notify(domain.Notification{
			Level:   domain.NotifyError,
			Message: fmt.Sprintf("[-] Analysis failed: %v", out.Err),
		})
	}
}

// shouldNotify applies the escalation policy: manual failures always notify;
// automatic ones notify only for a spawn failure, once per outage.
func (s *AnalysisService) shouldNotify(trigger domain.TriggerKind, err error) bool {
	if !trigger.Automatic() {
		return true
	}
	if !errors.Is(err, domain.ErrSpawn) {
		return false
	}
	s.spawnMu.Lock()
	defer s.spawnMu.Unlock()
	if s.spawnReported {
		return false
	}
	s.spawnReported = true
	return true
}

func (s *AnalysisService) spawnRecovered() {
	s.spawnMu.Lock()
	s.spawnReported = false
	s.spawnMu.Unlock()
}
