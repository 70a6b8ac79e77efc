package tui

import (
	"fmt"
	"io"
	"sync"

	"github.com/abdidvp/slopwatch/internal/domain"
)

// Notifier prints notifications to a terminal stream.
type Notifier struct {
	mu sync.Mutex
	w  io.Writer
}

func NewNotifier(w io.Writer) *Notifier {
	return &Notifier{w: w}
}

func (n *Notifier) Notify(note domain.Notification) {
	n.mu.Lock()
	defer n.mu.Unlock()
	fmt.Fprint(n.w, RenderNotification(note))
}

// RenderNotification colors a notification by level.
func RenderNotification(note domain.Notification) string {
	switch note.Level {
	case domain.NotifyError:
		return failStyle.Render(note.Message) + "\n"
	case domain.NotifyWarning:
		return warnTagStyle.Render(note.Message) + "\n"
	default:
		return passStyle.Render(note.Message) + "\n"
	}
}
