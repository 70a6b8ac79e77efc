package domain_test

import (
	"testing"
	"time"

	"github.com/abdidvp/slopwatch/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultSettings_Valid(t *testing.T) {
	s := domain.DefaultSettings()
	require.NoError(t, s.Validate())
	assert.True(t, s.Enable)
	assert.True(t, s.LintOnSave)
	assert.False(t, s.LintOnChange)
	assert.Equal(t, domain.Thresholds{Warn: 30, Fail: 50}, s.Thresholds())
	assert.Equal(t, 750*time.Millisecond, s.Debounce())
}

func TestSettings_LimitsDiffer(t *testing.T) {
	s := domain.DefaultSettings()
	file, ws := s.FileLimits(), s.WorkspaceLimits()
	assert.Equal(t, int64(10*1024*1024), file.MaxOutput)
	assert.Equal(t, int64(50*1024*1024), ws.MaxOutput)
	assert.Greater(t, ws.Timeout, file.Timeout)
}

func TestSettings_Validate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*domain.Settings)
		errMsg string
	}{
		{"negative warn", func(s *domain.Settings) { s.WarnThreshold = -1 }, "warn_threshold"},
		{"negative fail", func(s *domain.Settings) { s.FailThreshold = -1 }, "fail_threshold"},
		{"empty executable", func(s *domain.Settings) { s.Executable = " " }, "executable"},
		{"zero timeout", func(s *domain.Settings) { s.FileTimeoutSeconds = 0 }, "file_timeout_seconds"},
		{"zero ceiling", func(s *domain.Settings) { s.MaxWorkspaceOutputMB = 0 }, "max_workspace_output_mb"},
		{"negative debounce", func(s *domain.Settings) { s.DebounceMS = -5 }, "debounce_ms"},
		{"no extensions", func(s *domain.Settings) { s.Extensions = nil }, "extensions"},
		{"bad extension", func(s *domain.Settings) { s.Extensions = []string{"py"} }, "must start with a dot"},
		{"bad glob", func(s *domain.Settings) { s.Exclude = []string{"[a-"} }, "invalid exclude pattern"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := domain.DefaultSettings()
			tt.mutate(&s)
			err := s.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errMsg)
		})
	}
}

func TestSettings_InvertedThresholdsAccepted(t *testing.T) {
	s := domain.DefaultSettings()
	s.WarnThreshold, s.FailThreshold = 60, 40
	assert.NoError(t, s.Validate())
}

func TestSettings_Supports(t *testing.T) {
	s := domain.DefaultSettings()
	assert.True(t, s.Supports("/src/app.py"))
	assert.True(t, s.Supports("/src/app.TS"))
	assert.True(t, s.Supports("/src/index.js"))
	assert.False(t, s.Supports("/src/main.go"))
	assert.False(t, s.Supports("/src/README"))
	assert.False(t, s.Supports("/src/node_modules/lib/index.js"))
	assert.False(t, s.Supports("/src/.venv/lib/site.py"))
}

func TestSettings_Commands(t *testing.T) {
	s := domain.DefaultSettings()
	s.ConfigPath = "/cfg/slop.yaml"
	s.ExtraArgs = []string{"--strict"}

	file := s.FileCommand("/src/app.py")
	assert.Equal(t, "python", file.Path)
	assert.Equal(t, []string{"-m", "slop_detector.cli", "/src/app.py", "--json", "--config", "/cfg/slop.yaml", "--record-history", "--strict"}, file.Args)
	assert.Empty(t, file.Dir)

	ws := s.WorkspaceCommand("/src")
	assert.Equal(t, []string{"-m", "slop_detector.cli", "/src", "--project", "--json", "--config", "/cfg/slop.yaml", "--strict"}, ws.Args)
	assert.Equal(t, "/src", ws.Dir)

	hist := s.HistoryCommand("/src/app.py")
	assert.Equal(t, []string{"-m", "slop_detector.cli", "/src/app.py", "--show-history", "--json"}, hist.Args)

	hook := s.HookCommand("/src")
	assert.Equal(t, []string{"-m", "slop_detector.cli", "--install-git-hook"}, hook.Args)
	assert.Equal(t, "/src", hook.Dir)
}

func TestSettings_CommandsWithoutHistory(t *testing.T) {
	s := domain.DefaultSettings()
	s.RecordHistory = false
	assert.NotContains(t, s.FileCommand("/a.py").Args, "--record-history")
	assert.NotContains(t, s.FileCommand("/a.py").Args, "--config")
}

func TestCommand_String(t *testing.T) {
	c := domain.Command{Path: "python", Args: []string{"-m", "slop_detector.cli", "/my src/a.py", "--json"}}
	assert.Equal(t, `python -m slop_detector.cli "/my src/a.py" --json`, c.String())
}
