package config_test

import (
	"os"
	"path/filepath"
	"testing"

	appconfig "github.com/abdidvp/slopwatch/internal/adapters/outbound/config"
	"github.com/abdidvp/slopwatch/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, dir, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".slopwatch.yaml"), []byte(content), 0644))
}

func TestYAMLLoader_MissingFileReturnsDefaults(t *testing.T) {
	dir := t.TempDir()
	loader := appconfig.New()

	settings, err := loader.Load(dir)
	require.NoError(t, err)
	assert.Equal(t, domain.DefaultSettings(), settings)
}

func TestYAMLLoader_OverridesKeepOtherDefaults(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, `
lint_on_change: true
lint_on_save: false
warn_threshold: 20
executable: /opt/venv/bin/python
`)
	loader := appconfig.New()

	settings, err := loader.Load(dir)
	require.NoError(t, err)
	assert.True(t, settings.LintOnChange)
	assert.False(t, settings.LintOnSave)
	assert.Equal(t, 20.0, settings.WarnThreshold)
	assert.Equal(t, 50.0, settings.FailThreshold)
	assert.Equal(t, "/opt/venv/bin/python", settings.Executable)
	assert.Equal(t, []string{"-m", "slop_detector.cli"}, settings.ExecutableArgs)
	assert.Equal(t, 750, settings.DebounceMS)
}

func TestYAMLLoader_EmptyFileIsDefaults(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, "")

	settings, err := appconfig.New().Load(dir)
	require.NoError(t, err)
	assert.Equal(t, domain.DefaultSettings(), settings)
}

func TestYAMLLoader_InvalidYAML(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, `{{{invalid yaml`)
	loader := appconfig.New()

	_, err := loader.Load(dir)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "parsing .slopwatch.yaml")
}

func TestYAMLLoader_UnknownKey(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, `warn_treshold: 10`)

	_, err := appconfig.New().Load(dir)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "warn_treshold")
}

func TestYAMLLoader_InvalidValues(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, `fail_threshold: -5`)

	_, err := appconfig.New().Load(dir)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid .slopwatch.yaml")
	assert.Contains(t, err.Error(), "fail_threshold")
}

func TestYAMLLoader_LoadFileMissing(t *testing.T) {
	_, err := appconfig.New().LoadFile(filepath.Join(t.TempDir(), "custom.yaml"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestWrite_RoundTripsThroughLoader(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, appconfig.FileName)

	want := domain.DefaultSettings()
	want.ConfigPath = "slop.toml"
	require.NoError(t, appconfig.Write(path, want, false))

	got, err := appconfig.New().Load(dir)
	require.NoError(t, err)
	assert.Equal(t, want, got)

	err = appconfig.Write(path, want, false)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already exists")
	assert.NoError(t, appconfig.Write(path, want, true))
}
