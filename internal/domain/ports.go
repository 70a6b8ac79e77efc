package domain

import "context"

// ProcessRunner spawns one analyzer process per call and resolves exactly once.
type ProcessRunner interface {
	Run(ctx context.Context, cmd Command, limits Limits) (*RawOutput, error)
}

// SettingsLoader reads settings for a workspace root.
type SettingsLoader interface {
	Load(workspaceRoot string) (Settings, error)
}

// DiagnosticStore holds the live diagnostic set per subject. Set replaces the
// whole set; there are no partial updates.
type DiagnosticStore interface {
	Set(subject Subject, diags []Diagnostic)
	Get(subject Subject) ([]Diagnostic, bool)
	Delete(subject Subject)
	Subjects() []Subject
}

// HistoryReader loads the analyzer-owned history for one file.
type HistoryReader interface {
	Load(ctx context.Context, settings Settings, path string) ([]HistoryEntry, error)
}

// WorkspaceInfo answers version-control questions about a workspace.
type WorkspaceInfo interface {
	RepoRoot(path string) (string, error)
	CommitHash(path string) (string, error)
}

// NotificationLevel is the urgency of a one-shot user notification.
type NotificationLevel string

const (
	NotifyInfo    NotificationLevel = "info"
	NotifyWarning NotificationLevel = "warning"
	NotifyError   NotificationLevel = "error"
)

// Notification is a one-shot, user-visible message.
type Notification struct {
	Level   NotificationLevel `json:"level"`
	Message string            `json:"message"`
}

// Notifier delivers notifications to the host environment.
type Notifier interface {
	Notify(n Notification)
}
