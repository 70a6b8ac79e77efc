package cache

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/abdidvp/slopwatch/internal/domain"
)

type entry struct {
	Subject     domain.Subject      `json:"subject"`
	Diagnostics []domain.Diagnostic `json:"diagnostics"`
}

// Store is a bounded in-memory implementation of domain.DiagnosticStore.
// The least recently updated subject is evicted once the bound is reached.
type Store struct {
	entries *lru.Cache[string, entry]
}

// New creates a store holding at most size subjects.
func New(size int, logger *log.Logger) (*Store, error) {
	c, err := lru.NewWithEvict[string, entry](size, func(key string, _ entry) {
		if logger != nil {
			logger.Printf("evicted diagnostics for %s", key)
		}
	})
	if err != nil {
		return nil, fmt.Errorf("creating diagnostic store: %w", err)
	}
	return &Store{entries: c}, nil
}

// Set replaces the whole diagnostic set of subject.
func (s *Store) Set(subject domain.Subject, diags []domain.Diagnostic) {
	s.entries.Add(subject.Key(), entry{Subject: subject, Diagnostics: append([]domain.Diagnostic(nil), diags...)})
}

func (s *Store) Get(subject domain.Subject) ([]domain.Diagnostic, bool) {
	e, ok := s.entries.Peek(subject.Key())
	if !ok {
		return nil, false
	}
	return append([]domain.Diagnostic(nil), e.Diagnostics...), true
}

func (s *Store) Delete(subject domain.Subject) {
	s.entries.Remove(subject.Key())
}

// Subjects lists tracked subjects, least recently updated first.
func (s *Store) Subjects() []domain.Subject {
	values := s.entries.Values()
	out := make([]domain.Subject, len(values))
	for i, e := range values {
		out[i] = e.Subject
	}
	return out
}

// Save writes the current diagnostic sets to the workspace cache so the
// last known results survive a restart.
func (s *Store) Save(workspaceRoot string) error {
	if err := os.MkdirAll(cacheDir(workspaceRoot), 0755); err != nil {
		return err
	}

	data, err := json.MarshalIndent(s.entries.Values(), "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(cachePath(workspaceRoot), data, 0644)
}

// Load restores a snapshot written by Save. A missing snapshot is not an
// error.
func (s *Store) Load(workspaceRoot string) error {
	data, err := os.ReadFile(cachePath(workspaceRoot))
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}

	var entries []entry
	if err := json.Unmarshal(data, &entries); err != nil {
		return fmt.Errorf("parsing %s: %w", cachePath(workspaceRoot), err)
	}
	for _, e := range entries {
		s.entries.Add(e.Subject.Key(), e)
	}
	return nil
}

// Invalidate removes the snapshot for the given workspace.
func (s *Store) Invalidate(workspaceRoot string) error {
	path := cachePath(workspaceRoot)
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

func cacheDir(workspaceRoot string) string {
	return filepath.Join(workspaceRoot, ".slopwatch", "cache")
}

func cachePath(workspaceRoot string) string {
	return filepath.Join(cacheDir(workspaceRoot), "diagnostics.json")
}
