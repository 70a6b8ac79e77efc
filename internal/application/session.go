package application

import (
	"errors"
	"fmt"
	"io"
	"log"
	"path/filepath"
	"sync"
	"time"

	"github.com/abdidvp/slopwatch/internal/domain"
)

// Deps are the outbound ports a Session drives. Runner, Store and History
// are required.
type Deps struct {
	Runner   domain.ProcessRunner
	Store    domain.DiagnosticStore
	History  domain.HistoryReader
	Notifier domain.Notifier
	Git      domain.WorkspaceInfo
	Logger   *log.Logger
	Now      func() time.Time
}

// Session is the orchestration context for one editor instance. It owns the
// scheduler, the status board and the diagnostic store, and exposes the
// services that act on them. Close tears everything down.
type Session struct {
	settings *settingsHolder
	board    *StatusBoard
	store    domain.DiagnosticStore
	sched    *Scheduler
	logger   *log.Logger

	Analysis  *AnalysisService
	Workspace *WorkspaceService
	History   *HistoryService
	Hooks     *HookService
}

// NewSession validates settings and wires the services.
func NewSession(settings domain.Settings, deps Deps) (*Session, error) {
	if err := settings.Validate(); err != nil {
		return nil, fmt.Errorf("invalid settings: %w", err)
	}
	if deps.Runner == nil || deps.Store == nil || deps.History == nil {
		return nil, errors.New("session requires a process runner, a diagnostic store and a history reader")
	}
	if deps.Logger == nil {
		deps.Logger = log.New(io.Discard, "", 0)
	}
	if deps.Notifier == nil {
		deps.Notifier = nopNotifier{}
	}
	if deps.Now == nil {
		deps.Now = time.Now
	}

	holder := &settingsHolder{current: settings}
	board := NewStatusBoard()
	sched := NewScheduler(deps.Logger, deps.Now)

	s := &Session{
		settings: holder,
		board:    board,
		store:    deps.Store,
		sched:    sched,
		logger:   deps.Logger,
	}
	s.Analysis = &AnalysisService{
		settings: holder, scheduler: sched, board: board, store: deps.Store,
		runner: deps.Runner, notifier: deps.Notifier, logger: deps.Logger, now: deps.Now,
	}
	s.Workspace = &WorkspaceService{
		settings: holder, scheduler: sched, board: board, runner: deps.Runner,
		git: deps.Git, notifier: deps.Notifier, logger: deps.Logger, now: deps.Now,
	}
	s.History = &HistoryService{
		settings: holder, reader: deps.History, notifier: deps.Notifier, logger: deps.Logger,
	}
	s.Hooks = &HookService{
		settings: holder, runner: deps.Runner, git: deps.Git,
		notifier: deps.Notifier, logger: deps.Logger,
	}
	return s, nil
}

// Settings returns the settings currently in effect.
func (s *Session) Settings() domain.Settings { return s.settings.Get() }

// UpdateSettings replaces the settings for subsequent requests. Running
// requests keep the settings they started with.
func (s *Session) UpdateSettings(settings domain.Settings) error {
	if err := settings.Validate(); err != nil {
		return fmt.Errorf("invalid settings: %w", err)
	}
	s.settings.Set(settings)
	return nil
}

func (s *Session) Status() domain.StatusSnapshot { return s.board.Current() }

// OnStatus registers fn for every status change.
func (s *Session) OnStatus(fn func(domain.StatusSnapshot)) { s.board.Subscribe(fn) }

// Diagnostics returns the live diagnostic set for a file.
func (s *Session) Diagnostics(path string) ([]domain.Diagnostic, bool) {
	return s.store.Get(fileSubject(path))
}

// Forget drops the diagnostics of a file, e.g. once it is closed or deleted.
func (s *Session) Forget(path string) {
	s.store.Delete(fileSubject(path))
}

// Tracked lists the files that currently have diagnostics, least recently
// updated first.
func (s *Session) Tracked() []string {
	var paths []string
	for _, subject := range s.store.Subjects() {
		if subject.Kind == domain.SubjectFile {
			paths = append(paths, subject.Path)
		}
	}
	return paths
}

// State reports the scheduler state of a file.
func (s *Session) State(path string) SubjectState {
	return s.sched.State(fileSubject(path))
}

// fileSubject resolves path the way AnalysisService.Trigger does, so
// relative paths find what a trigger stored.
func fileSubject(path string) domain.Subject {
	if abs, err := filepath.Abs(path); err == nil {
		path = abs
	}
	return domain.FileSubject(path)
}

// Close stops the scheduler. Pending and running requests resolve as
// superseded.
func (s *Session) Close() {
	s.sched.Close()
	s.logger.Printf("session closed")
}

type settingsHolder struct {
	mu      sync.RWMutex
	current domain.Settings
}

func (h *settingsHolder) Get() domain.Settings {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.current
}

func (h *settingsHolder) Set(s domain.Settings) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.current = s
}

type nopNotifier struct{}

func (nopNotifier) Notify(domain.Notification) {}
