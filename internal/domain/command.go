package domain

import (
	"strconv"
	"strings"
	"time"
)

// Command is a fully resolved analyzer invocation.
type Command struct {
	Path string   `json:"path"`
	Args []string `json:"args"`
	Dir  string   `json:"dir,omitempty"`
}

// String renders the command line for logs.
func (c Command) String() string {
	parts := make([]string, 0, len(c.Args)+1)
	for _, p := range append([]string{c.Path}, c.Args...) {
		if p == "" || strings.ContainsAny(p, " \t\"'") {
			p = strconv.Quote(p)
		}
		parts = append(parts, p)
	}
	return strings.Join(parts, " ")
}

// RawOutput is what an invocation produced before validation.
type RawOutput struct {
	Stdout   []byte
	Stderr   []byte
	ExitCode int
	Duration time.Duration
}

func (s Settings) base() []string {
	args := make([]string, 0, len(s.ExecutableArgs)+8)
	return append(args, s.ExecutableArgs...)
}

func (s Settings) withConfig(args []string) []string {
	if s.ConfigPath != "" {
		args = append(args, "--config", s.ConfigPath)
	}
	return args
}

// FileCommand builds the single-file analysis command.
func (s Settings) FileCommand(path string) Command {
	args := append(s.base(), path, "--json")
	args = s.withConfig(args)
	if s.RecordHistory {
		args = append(args, "--record-history")
	}
	args = append(args, s.ExtraArgs...)
	return Command{Path: s.Executable, Args: args}
}

// WorkspaceCommand builds the project-wide command, run from the root.
func (s Settings) WorkspaceCommand(root string) Command {
	args := append(s.base(), root, "--project", "--json")
	args = s.withConfig(args)
	args = append(args, s.ExtraArgs...)
	return Command{Path: s.Executable, Args: args, Dir: root}
}

// HistoryCommand builds the history-mode command for one file.
func (s Settings) HistoryCommand(path string) Command {
	args := append(s.base(), path, "--show-history", "--json")
	return Command{Path: s.Executable, Args: args}
}

// HookCommand builds the hook-install command, run from the workspace root.
func (s Settings) HookCommand(root string) Command {
	args := append(s.base(), "--install-git-hook")
	return Command{Path: s.Executable, Args: args, Dir: root}
}
