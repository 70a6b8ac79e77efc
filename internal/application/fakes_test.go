package application_test

import (
	"bytes"
	"context"
	"encoding/json"
	"log"
	"strings"
	"sync"
	"testing"

	"github.com/abdidvp/slopwatch/internal/application"
	"github.com/abdidvp/slopwatch/internal/domain"
	"github.com/stretchr/testify/require"
)

type stubRunner struct {
	mu    sync.Mutex
	calls []domain.Command
	next  func(call int, cmd domain.Command) (*domain.RawOutput, error)
}

func (r *stubRunner) Run(_ context.Context, cmd domain.Command, _ domain.Limits) (*domain.RawOutput, error) {
	r.mu.Lock()
	n := len(r.calls)
	r.calls = append(r.calls, cmd)
	next := r.next
	r.mu.Unlock()
	return next(n, cmd)
}

func (r *stubRunner) Calls() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.calls)
}

func (r *stubRunner) Command(i int) domain.Command {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.calls[i]
}

type memStore struct {
	mu       sync.Mutex
	sets     int
	data     map[string][]domain.Diagnostic
	subjects map[string]domain.Subject
}

func newMemStore() *memStore {
	return &memStore{data: map[string][]domain.Diagnostic{}, subjects: map[string]domain.Subject{}}
}

func (s *memStore) Set(subject domain.Subject, diags []domain.Diagnostic) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sets++
	s.data[subject.Key()] = diags
	s.subjects[subject.Key()] = subject
}

func (s *memStore) Get(subject domain.Subject) ([]domain.Diagnostic, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	d, ok := s.data[subject.Key()]
	return d, ok
}

func (s *memStore) Delete(subject domain.Subject) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.data, subject.Key())
	delete(s.subjects, subject.Key())
}

func (s *memStore) Subjects() []domain.Subject {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]domain.Subject, 0, len(s.subjects))
	for _, subject := range s.subjects {
		out = append(out, subject)
	}
	return out
}

func (s *memStore) Sets() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sets
}

type recordingNotifier struct {
	mu   sync.Mutex
	sent []domain.Notification
}

func (n *recordingNotifier) Notify(note domain.Notification) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.sent = append(n.sent, note)
}

func (n *recordingNotifier) All() []domain.Notification {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]domain.Notification(nil), n.sent...)
}

type stubHistory struct {
	entries []domain.HistoryEntry
	err     error
}

func (h stubHistory) Load(context.Context, domain.Settings, string) ([]domain.HistoryEntry, error) {
	return h.entries, h.err
}

type stubGit struct {
	root, hash string
	err        error
}

func (g stubGit) RepoRoot(string) (string, error)   { return g.root, g.err }
func (g stubGit) CommitHash(string) (string, error) { return g.hash, g.err }

// syncBuffer is a log sink safe for concurrent writers.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) Count(substr string) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return strings.Count(b.buf.String(), substr)
}

type harness struct {
	session  *application.Session
	runner   *stubRunner
	store    *memStore
	notifier *recordingNotifier
	logs     *syncBuffer
}

func newHarness(t *testing.T, settings domain.Settings, deps application.Deps) *harness {
	t.Helper()
	h := &harness{
		runner:   &stubRunner{},
		store:    newMemStore(),
		notifier: &recordingNotifier{},
		logs:     &syncBuffer{},
	}
	deps.Runner = h.runner
	deps.Store = h.store
	deps.Notifier = h.notifier
	deps.Logger = log.New(h.logs, "", 0)
	if deps.History == nil {
		deps.History = stubHistory{}
	}
	sess, err := application.NewSession(settings, deps)
	require.NoError(t, err)
	t.Cleanup(sess.Close)
	h.session = sess
	return h
}

func ok(v any) *domain.RawOutput {
	data, err := json.Marshal(v)
	if err != nil {
		panic(err)
	}
	return &domain.RawOutput{Stdout: data}
}

func fileResult(score float64, status string) domain.AnalysisResult {
	return domain.AnalysisResult{
		DeficitScore: score,
		Status:       status,
		LDR:          &domain.LDRMetric{Score: 0.5, TotalLines: 20},
		Inflation:    &domain.InflationMetric{Score: 0.3},
		DDC:          &domain.DDCMetric{UsageRatio: 0.8},
	}
}

func exitErr(code int) error {
	return &domain.AnalysisError{Command: "python -m slop_detector.cli", ExitCode: code, Stderr: "Traceback", Err: domain.ErrNonZeroExit}
}

func spawnErr() error {
	return &domain.AnalysisError{Command: "python -m slop_detector.cli", ExitCode: -1, Err: domain.ErrSpawn}
}
