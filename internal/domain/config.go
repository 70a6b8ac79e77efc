package domain

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/bmatcuk/doublestar/v4"
)

// Settings is the configuration surface loaded from .slopwatch.yaml.
type Settings struct {
	Enable                  bool     `yaml:"enable"                    json:"enable"`
	LintOnSave              bool     `yaml:"lint_on_save"              json:"lint_on_save"`
	LintOnChange            bool     `yaml:"lint_on_change"            json:"lint_on_change"`
	WarnThreshold           float64  `yaml:"warn_threshold"            json:"warn_threshold"`
	FailThreshold           float64  `yaml:"fail_threshold"            json:"fail_threshold"`
	Executable              string   `yaml:"executable"                json:"executable"`
	ExecutableArgs          []string `yaml:"executable_args"           json:"executable_args,omitempty"`
	ExtraArgs               []string `yaml:"extra_args"                json:"extra_args,omitempty"`
	ConfigPath              string   `yaml:"config_path"               json:"config_path,omitempty"`
	RecordHistory           bool     `yaml:"record_history"            json:"record_history"`
	DebounceMS              int      `yaml:"debounce_ms"               json:"debounce_ms"`
	FileTimeoutSeconds      int      `yaml:"file_timeout_seconds"      json:"file_timeout_seconds"`
	WorkspaceTimeoutSeconds int      `yaml:"workspace_timeout_seconds" json:"workspace_timeout_seconds"`
	MaxFileOutputMB         int      `yaml:"max_file_output_mb"        json:"max_file_output_mb"`
	MaxWorkspaceOutputMB    int      `yaml:"max_workspace_output_mb"   json:"max_workspace_output_mb"`
	Extensions              []string `yaml:"extensions"                json:"extensions"`
	Exclude                 []string `yaml:"exclude"                   json:"exclude,omitempty"`
	MaxTrackedSubjects      int      `yaml:"max_tracked_subjects"      json:"max_tracked_subjects"`
}

// DefaultSettings mirrors the editor extension's stock configuration.
func DefaultSettings() Settings {
	return Settings{
		Enable:                  true,
		LintOnSave:              true,
		LintOnChange:            false,
		WarnThreshold:           30,
		FailThreshold:           50,
		Executable:              "python",
		ExecutableArgs:          []string{"-m", "slop_detector.cli"},
		ExtraArgs:               []string{},
		RecordHistory:           true,
		DebounceMS:              750,
		FileTimeoutSeconds:      60,
		WorkspaceTimeoutSeconds: 600,
		MaxFileOutputMB:         10,
		MaxWorkspaceOutputMB:    50,
		Extensions:              []string{".py", ".js", ".ts"},
		Exclude:                 []string{"**/node_modules/**", "**/.venv/**"},
		MaxTrackedSubjects:      512,
	}
}

// Validate checks the settings for invalid values and returns a descriptive error.
// Warn above fail is allowed; the fail cutoff wins.
func (s Settings) Validate() error {
	// 1. thresholds must be non-negative
	if s.WarnThreshold < 0 {
		return fmt.Errorf("warn_threshold must be >= 0 (got %g)", s.WarnThreshold)
	}
	if s.FailThreshold < 0 {
		return fmt.Errorf("fail_threshold must be >= 0 (got %g)", s.FailThreshold)
	}

	// 2. an executable is required
	if strings.TrimSpace(s.Executable) == "" {
		return fmt.Errorf("executable must not be empty")
	}

	// 3. durations and ceilings must be positive
	positive := map[string]int{
		"file_timeout_seconds":      s.FileTimeoutSeconds,
		"workspace_timeout_seconds": s.WorkspaceTimeoutSeconds,
		"max_file_output_mb":        s.MaxFileOutputMB,
		"max_workspace_output_mb":   s.MaxWorkspaceOutputMB,
		"max_tracked_subjects":      s.MaxTrackedSubjects,
	}
	for name, v := range positive {
		if v <= 0 {
			return fmt.Errorf("%s must be > 0 (got %d)", name, v)
		}
	}
	if s.DebounceMS < 0 {
		return fmt.Errorf("debounce_ms must be >= 0 (got %d)", s.DebounceMS)
	}

	// 4. extensions look like extensions
	if len(s.Extensions) == 0 {
		return fmt.Errorf("extensions must list at least one file extension")
	}
	for _, ext := range s.Extensions {
		if !strings.HasPrefix(ext, ".") || len(ext) < 2 {
			return fmt.Errorf("extension %q must start with a dot", ext)
		}
	}

	// 5. exclude patterns must parse
	for _, pattern := range s.Exclude {
		if !doublestar.ValidatePattern(pattern) {
			return fmt.Errorf("invalid exclude pattern %q", pattern)
		}
	}

	return nil
}

func (s Settings) Thresholds() Thresholds {
	return Thresholds{Warn: s.WarnThreshold, Fail: s.FailThreshold}
}

func (s Settings) Debounce() time.Duration {
	return time.Duration(s.DebounceMS) * time.Millisecond
}

// Limits bounds a single analyzer invocation.
type Limits struct {
	MaxOutput int64
	Timeout   time.Duration
}

const megabyte = 1024 * 1024

// FileLimits applies to single-file and history runs.
func (s Settings) FileLimits() Limits {
	return Limits{
		MaxOutput: int64(s.MaxFileOutputMB) * megabyte,
		Timeout:   time.Duration(s.FileTimeoutSeconds) * time.Second,
	}
}

// WorkspaceLimits applies to workspace runs, whose aggregate output is larger.
func (s Settings) WorkspaceLimits() Limits {
	return Limits{
		MaxOutput: int64(s.MaxWorkspaceOutputMB) * megabyte,
		Timeout:   time.Duration(s.WorkspaceTimeoutSeconds) * time.Second,
	}
}

// Supports reports whether path has a recognized extension and is not excluded.
func (s Settings) Supports(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	known := false
	for _, e := range s.Extensions {
		if strings.ToLower(e) == ext {
			known = true
			break
		}
	}
	if !known {
		return false
	}
	slashed := strings.TrimPrefix(filepath.ToSlash(path), "/")
	for _, pattern := range s.Exclude {
		if ok, _ := doublestar.Match(pattern, slashed); ok {
			return false
		}
	}
	return true
}
