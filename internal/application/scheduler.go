package application

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/abdidvp/slopwatch/internal/domain"
)

// SubjectState is the scheduler's view of one subject.
type SubjectState string

const (
	StateIdle    SubjectState = "idle"
	StatePending SubjectState = "pending"
	StateRunning SubjectState = "running"
)

// Outcome is what a request produced. Applied reports whether its effects
// reached the diagnostic store and status board; a superseded request is
// never applied and carries ErrCancelled.
type Outcome struct {
	Request     *domain.AnalysisRequest  `json:"request"`
	Applied     bool                     `json:"applied"`
	Superseded  bool                     `json:"superseded"`
	Err         error                    `json:"-"`
	Result      *domain.AnalysisResult   `json:"result,omitempty"`
	Diagnostics []domain.Diagnostic      `json:"diagnostics,omitempty"`
	Workspace   *domain.WorkspaceSummary `json:"workspace,omitempty"`
	Status      domain.StatusSnapshot    `json:"status"`
}

// Task runs one request. The returned apply step publishes the outcome and
// is invoked under the scheduler lock only while the request is current.
type Task func(ctx context.Context, req *domain.AnalysisRequest) (Outcome, func())

// Ticket resolves once with the request's outcome.
type Ticket struct {
	Request *domain.AnalysisRequest

	once    sync.Once
	done    chan struct{}
	outcome Outcome
}

func newTicket(req *domain.AnalysisRequest) *Ticket {
	return &Ticket{Request: req, done: make(chan struct{})}
}

func (t *Ticket) finish(o Outcome) {
	t.once.Do(func() {
		t.outcome = o
		close(t.done)
	})
}

// Done is closed when the outcome is available.
func (t *Ticket) Done() <-chan struct{} { return t.done }

// Wait blocks until the ticket resolves or ctx ends.
func (t *Ticket) Wait(ctx context.Context) (Outcome, error) {
	select {
	case <-t.done:
		return t.outcome, nil
	case <-ctx.Done():
		return Outcome{Request: t.Request}, ctx.Err()
	}
}

type pendingRun struct {
	req    *domain.AnalysisRequest
	task   Task
	ticket *Ticket
	timer  *time.Timer
}

// Scheduler keeps at most one live request per subject. Issuing a request
// supersedes the previous one for the same subject; the superseded process
// may keep running but its result is dropped.
type Scheduler struct {
	mu      sync.Mutex
	live    map[string]*domain.AnalysisRequest
	pending map[string]*pendingRun
	closed  bool

	ctx    context.Context
	stop   context.CancelFunc
	wg     sync.WaitGroup
	logger *log.Logger
	now    func() time.Time
}

// NewScheduler creates a scheduler. Invocations run under a context that
// Close cancels.
func NewScheduler(logger *log.Logger, now func() time.Time) *Scheduler {
	ctx, stop := context.WithCancel(context.Background())
	return &Scheduler{
		live:    make(map[string]*domain.AnalysisRequest),
		pending: make(map[string]*pendingRun),
		ctx:     ctx,
		stop:    stop,
		logger:  logger,
		now:     now,
	}
}

// Issue starts req immediately, superseding any live or pending request
// for the same subject.
func (s *Scheduler) Issue(req *domain.AnalysisRequest, task Task) *Ticket {
	t := newTicket(req)
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		req.Cancel()
		t.finish(Outcome{Request: req, Superseded: true, Err: domain.ErrCancelled})
		return t
	}
	s.supersedeLocked(req.Subject.Key())
	s.startLocked(req, task, t)
	return t
}

// Debounce holds req until delay passes with no newer request for the
// subject. Every call resets the quiet period; the request it replaces
// resolves as superseded without spawning anything.
func (s *Scheduler) Debounce(req *domain.AnalysisRequest, delay time.Duration, task Task) *Ticket {
	if delay <= 0 {
		return s.Issue(req, task)
	}

	t := newTicket(req)
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		req.Cancel()
		t.finish(Outcome{Request: req, Superseded: true, Err: domain.ErrCancelled})
		return t
	}

	key := req.Subject.Key()
	s.dropPendingLocked(key)
	p := &pendingRun{req: req, task: task, ticket: t}
	p.timer = time.AfterFunc(delay, func() { s.fire(key, p) })
	s.pending[key] = p
	return t
}

func (s *Scheduler) fire(key string, p *pendingRun) {
	s.mu.Lock()
	defer s.mu.Unlock()

	// Stopped or replaced while the timer was firing.
	if s.closed || s.pending[key] != p {
		return
	}
	delete(s.pending, key)
	if prev, ok := s.live[key]; ok {
		prev.Cancel()
	}
	p.req.IssuedAt = s.now()
	s.startLocked(p.req, p.task, p.ticket)
}

// State reports whether subject has a pending or running request.
func (s *Scheduler) State(subject domain.Subject) SubjectState {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := subject.Key()
	if _, ok := s.live[key]; ok {
		return StateRunning
	}
	if _, ok := s.pending[key]; ok {
		return StatePending
	}
	return StateIdle
}

// Close drops pending requests, cancels running invocations and waits for
// them to return. Nothing is applied after Close.
func (s *Scheduler) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	for key := range s.pending {
		s.dropPendingLocked(key)
	}
	for _, req := range s.live {
		req.Cancel()
	}
	s.mu.Unlock()

	s.stop()
	s.wg.Wait()
}

// IfCurrent runs fn under the scheduler lock if req is still the live,
// uncancelled request for its subject. It reports whether fn ran.
func (s *Scheduler) IfCurrent(req *domain.AnalysisRequest, fn func()) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed || req.Cancelled() || s.live[req.Subject.Key()] != req {
		return false
	}
	fn()
	return true
}

func (s *Scheduler) supersedeLocked(key string) {
	s.dropPendingLocked(key)
	if prev, ok := s.live[key]; ok {
		prev.Cancel()
	}
}

func (s *Scheduler) dropPendingLocked(key string) {
	p, ok := s.pending[key]
	if !ok {
		return
	}
	p.timer.Stop()
	delete(s.pending, key)
	p.req.Cancel()
	p.ticket.finish(Outcome{Request: p.req, Superseded: true, Err: domain.ErrCancelled})
}

func (s *Scheduler) startLocked(req *domain.AnalysisRequest, task Task, t *Ticket) {
	s.live[req.Subject.Key()] = req
	s.wg.Add(1)
	go s.run(req, task, t)
}

func (s *Scheduler) run(req *domain.AnalysisRequest, task Task, t *Ticket) {
	defer s.wg.Done()

	out, apply := task(s.ctx, req)
	out.Request = req

	s.mu.Lock()
	key := req.Subject.Key()
	current := s.live[key] == req
	if current {
		delete(s.live, key)
	}
	if current && !req.Cancelled() && !s.closed {
		if apply != nil {
			apply()
		}
		out.Applied = true
	} else {
		if out.Err != nil {
			s.logger.Printf("discarding superseded %s request %s for %s: %v", req.Trigger, req.ID, req.Subject.Path, out.Err)
		} else {
			s.logger.Printf("discarding superseded %s request %s for %s", req.Trigger, req.ID, req.Subject.Path)
		}
		out.Superseded = true
		out.Err = domain.ErrCancelled
	}
	s.mu.Unlock()

	t.finish(out)
}
