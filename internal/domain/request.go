package domain

import (
	"path/filepath"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
)

// SubjectKind distinguishes single-file from workspace-wide analysis.
type SubjectKind string

const (
	SubjectFile      SubjectKind = "file"
	SubjectWorkspace SubjectKind = "workspace"
)

// Subject identifies what is being analyzed.
type Subject struct {
	Path string      `json:"path"`
	Kind SubjectKind `json:"kind"`
}

func FileSubject(path string) Subject {
	return Subject{Path: filepath.Clean(path), Kind: SubjectFile}
}

func WorkspaceSubject(root string) Subject {
	return Subject{Path: filepath.Clean(root), Kind: SubjectWorkspace}
}

// Key is the identity used for per-subject scheduling and storage.
func (s Subject) Key() string { return string(s.Kind) + ":" + s.Path }

// TriggerKind is the event that caused a request.
type TriggerKind string

const (
	TriggerManual    TriggerKind = "manual"
	TriggerSave      TriggerKind = "on-save"
	TriggerChange    TriggerKind = "on-change"
	TriggerWorkspace TriggerKind = "workspace"
)

// Automatic reports whether the trigger fired without an explicit command.
func (t TriggerKind) Automatic() bool {
	return t == TriggerSave || t == TriggerChange
}

// AnalysisRequest is one scheduled analysis. Its cancellation token is
// advisory for the process and mandatory for result application.
type AnalysisRequest struct {
	ID       string      `json:"id"`
	Subject  Subject     `json:"subject"`
	Trigger  TriggerKind `json:"trigger"`
	IssuedAt time.Time   `json:"issued_at"`

	once      sync.Once
	cancelled chan struct{}
}

func NewAnalysisRequest(subject Subject, trigger TriggerKind, issuedAt time.Time) *AnalysisRequest {
	return &AnalysisRequest{
		ID:        ulid.Make().String(),
		Subject:   subject,
		Trigger:   trigger,
		IssuedAt:  issuedAt,
		cancelled: make(chan struct{}),
	}
}

// Cancel marks the request superseded. Safe to call more than once.
func (r *AnalysisRequest) Cancel() {
	r.once.Do(func() { close(r.cancelled) })
}

func (r *AnalysisRequest) Cancelled() bool {
	select {
	case <-r.cancelled:
		return true
	default:
		return false
	}
}

// Done is closed once the request is cancelled.
func (r *AnalysisRequest) Done() <-chan struct{} { return r.cancelled }
