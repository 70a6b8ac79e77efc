package application

import (
	"sync"

	"github.com/abdidvp/slopwatch/internal/domain"
	"github.com/abdidvp/slopwatch/internal/domain/status"
)

// StatusBoard holds the single live status snapshot. Every Set overwrites
// the previous snapshot.
type StatusBoard struct {
	mu        sync.Mutex
	current   domain.StatusSnapshot
	listeners []func(domain.StatusSnapshot)
}

func NewStatusBoard() *StatusBoard {
	return &StatusBoard{current: status.Ready()}
}

func (b *StatusBoard) Set(snap domain.StatusSnapshot) {
	b.mu.Lock()
	b.current = snap
	listeners := append([]func(domain.StatusSnapshot){}, b.listeners...)
	b.mu.Unlock()

	for _, fn := range listeners {
		fn(snap)
	}
}

func (b *StatusBoard) Current() domain.StatusSnapshot {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.current
}

// Subscribe registers fn to receive every subsequent snapshot.
func (b *StatusBoard) Subscribe(fn func(domain.StatusSnapshot)) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.listeners = append(b.listeners, fn)
}
