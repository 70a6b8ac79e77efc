package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/abdidvp/slopwatch/internal/domain"
	"gopkg.in/yaml.v3"
)

// FileName is the settings file looked up at the workspace root.
const FileName = ".slopwatch.yaml"

// YAMLLoader implements domain.SettingsLoader by reading .slopwatch.yaml.
type YAMLLoader struct{}

// New creates a YAMLLoader.
func New() *YAMLLoader { return &YAMLLoader{} }

// Load reads .slopwatch.yaml from workspaceRoot.
// Returns DefaultSettings if the file does not exist.
func (l *YAMLLoader) Load(workspaceRoot string) (domain.Settings, error) {
	path := filepath.Join(workspaceRoot, FileName)
	settings, err := l.LoadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return domain.DefaultSettings(), nil
	}
	return settings, err
}

// LoadFile reads an explicit settings file. Keys absent from the file keep
// their default values; unknown keys are rejected.
func (l *YAMLLoader) LoadFile(path string) (domain.Settings, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return domain.Settings{}, err
	}

	settings := domain.DefaultSettings()
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&settings); err != nil && !errors.Is(err, io.EOF) {
		return domain.Settings{}, fmt.Errorf("parsing %s: %w", filepath.Base(path), err)
	}

	if err := settings.Validate(); err != nil {
		return domain.Settings{}, fmt.Errorf("invalid %s: %w", filepath.Base(path), err)
	}

	return settings, nil
}

// Write stores settings as YAML at path. It refuses to overwrite unless
// force is set.
func Write(path string, settings domain.Settings, force bool) error {
	if !force {
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("%s already exists (use --force to overwrite)", path)
		}
	}

	data, err := yaml.Marshal(settings)
	if err != nil {
		return fmt.Errorf("encoding settings: %w", err)
	}
	return os.WriteFile(path, data, 0644)
}
