package application

import (
	"context"
	"fmt"
	"log"
	"path/filepath"

	"github.com/abdidvp/slopwatch/internal/domain"
	"github.com/abdidvp/slopwatch/internal/domain/views"
)

// HistoryService reads the analyzer-owned history of a file. It never
// touches diagnostics or status, so it bypasses the scheduler.
type HistoryService struct {
	settings *settingsHolder
	reader   domain.HistoryReader
	notifier domain.Notifier
	logger   *log.Logger
}

// Show loads and formats the history of path. An empty history is not an
// error: the view is marked Empty and the user is told.
func (s *HistoryService) Show(ctx context.Context, path string) (views.HistoryView, error) {
	if path == "" {
		s.notifier.Notify(domain.Notification{Level: domain.NotifyWarning, Message: "[!] No active file"})
		return views.HistoryView{}, fmt.Errorf("%w: no active file", domain.ErrUnsupportedSubject)
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return views.HistoryView{}, fmt.Errorf("resolving %s: %w", path, err)
	}

	entries, err := s.reader.Load(ctx, s.settings.Get(), abs)
	if err != nil {
		s.logger.Printf("history of %s failed (%s): %v", abs, domain.FailureKind(err), err)
		s.notifier.Notify(domain.Notification{
			Level:   domain.NotifyError,
			Message: fmt.Sprintf("[-] Failed to load history: %v", err),
		})
		return views.HistoryView{}, fmt.Errorf("loading history: %w", err)
	}

	view := views.History(entries)
	view.Path = abs
	if view.Empty {
		s.notifier.Notify(domain.Notification{Level: domain.NotifyInfo, Message: "[+] No history found for this file"})
	}
	return view, nil
}
