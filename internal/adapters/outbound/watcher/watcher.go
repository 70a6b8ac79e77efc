// Package watcher turns file-system writes into save events for the
// analysis scheduler.
package watcher

import (
	"context"
	"log"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultSettle is how long a burst of writes to one file must go quiet
// before it counts as a single save.
const DefaultSettle = 100 * time.Millisecond

// DefaultSkipDirs are never watched.
var DefaultSkipDirs = []string{
	".git", ".hg", ".svn", "node_modules", "__pycache__", ".venv", "venv",
	".mypy_cache", ".pytest_cache", "dist", "build", ".slopwatch",
}

// Config controls what is watched and reported.
type Config struct {
	Root     string
	Settle   time.Duration
	SkipDirs []string
	// Accept filters which files are reported; nil accepts everything.
	Accept func(path string) bool
}

// Handlers receive coalesced events.
type Handlers struct {
	OnSave   func(path string)
	OnRemove func(path string)
}

// Watcher watches a workspace recursively.
type Watcher struct {
	fs       *fsnotify.Watcher
	config   Config
	handlers Handlers
	logger   *log.Logger

	mu      sync.Mutex
	pending map[string]fsnotify.Op
	timer   *time.Timer
}

func New(config Config, handlers Handlers, logger *log.Logger) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if config.Settle <= 0 {
		config.Settle = DefaultSettle
	}
	if config.SkipDirs == nil {
		config.SkipDirs = DefaultSkipDirs
	}
	return &Watcher{
		fs:       fsw,
		config:   config,
		handlers: handlers,
		logger:   logger,
		pending:  make(map[string]fsnotify.Op),
	}, nil
}

// Run watches until ctx is done.
func (w *Watcher) Run(ctx context.Context) error {
	defer w.fs.Close()

	if err := w.addTree(w.config.Root); err != nil {
		return err
	}
	w.logger.Printf("watching %s", w.config.Root)

	for {
		select {
		case <-ctx.Done():
			w.mu.Lock()
			if w.timer != nil {
				w.timer.Stop()
			}
			w.mu.Unlock()
			return nil

		case event, ok := <-w.fs.Events:
			if !ok {
				return nil
			}
			w.handle(event)

		case err, ok := <-w.fs.Errors:
			if !ok {
				return nil
			}
			w.logger.Printf("error: %v", err)
		}
	}
}

func (w *Watcher) handle(event fsnotify.Event) {
	if event.Op&fsnotify.Create != 0 {
		if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
			if !w.skipDir(filepath.Base(event.Name)) {
				if err := w.addTree(event.Name); err == nil {
					w.logger.Printf("watching new directory: %s", event.Name)
				}
			}
			return
		}
	}

	if tempFile(filepath.Base(event.Name)) {
		return
	}
	if w.config.Accept != nil && !w.config.Accept(event.Name) {
		return
	}

	if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) != 0 {
		w.queue(event.Name, event.Op)
	}
}

func (w *Watcher) queue(path string, op fsnotify.Op) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.pending[path] = op
	if w.timer == nil {
		w.timer = time.AfterFunc(w.config.Settle, w.flush)
	} else {
		w.timer.Reset(w.config.Settle)
	}
}

func (w *Watcher) flush() {
	w.mu.Lock()
	pending := w.pending
	w.pending = make(map[string]fsnotify.Op)
	w.mu.Unlock()

	for path, op := range pending {
		if op&(fsnotify.Remove|fsnotify.Rename) != 0 {
			if _, err := os.Stat(path); err != nil {
				if w.handlers.OnRemove != nil {
					w.handlers.OnRemove(path)
				}
				continue
			}
		}
		if w.handlers.OnSave != nil {
			w.handlers.OnSave(path)
		}
	}
}

func (w *Watcher) addTree(root string) error {
	return filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if !d.IsDir() {
			return nil
		}
		if path != root && w.skipDir(d.Name()) {
			return filepath.SkipDir
		}
		return w.fs.Add(path)
	})
}

func (w *Watcher) skipDir(name string) bool {
	for _, s := range w.config.SkipDirs {
		if name == s {
			return true
		}
	}
	return false
}

// tempFile matches editor swap and backup files.
func tempFile(name string) bool {
	return strings.HasPrefix(name, ".#") || strings.HasSuffix(name, "~") ||
		strings.HasSuffix(name, ".swp") || strings.HasSuffix(name, ".swx") ||
		strings.HasSuffix(name, ".tmp")
}
