// Package invoker runs the external analyzer as a child process.
package invoker

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log"
	"os/exec"
	"strings"
	"sync"
	"time"

	"github.com/abdidvp/slopwatch/internal/domain"
)

const (
	stderrLimit = 64 * 1024
	waitDelay   = 2 * time.Second
)

// Invoker implements domain.ProcessRunner with os/exec. Each Run spawns
// exactly one process and returns exactly once.
type Invoker struct {
	logger *log.Logger
}

func New(logger *log.Logger) *Invoker {
	return &Invoker{logger: logger}
}

// Run executes cmd, bounded by limits. Stdout beyond limits.MaxOutput kills
// the process and fails with ErrOutputTooLarge; stderr never fails a run
// but is logged as a warning.
func (i *Invoker) Run(ctx context.Context, cmd domain.Command, limits domain.Limits) (*domain.RawOutput, error) {
	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	if limits.Timeout > 0 {
		var stop context.CancelFunc
		runCtx, stop = context.WithTimeout(runCtx, limits.Timeout)
		defer stop()
	}

	stdout := &cappedBuffer{limit: limits.MaxOutput, onOverflow: cancel}
	stderr := &cappedBuffer{limit: stderrLimit}

	c := exec.CommandContext(runCtx, cmd.Path, cmd.Args...)
	c.Dir = cmd.Dir
	c.Stdout = stdout
	c.Stderr = stderr
	c.WaitDelay = waitDelay

	start := time.Now()
	if err := c.Start(); err != nil {
		return nil, &domain.AnalysisError{Command: cmd.String(), ExitCode: -1, Err: fmt.Errorf("%w: %w", domain.ErrSpawn, err)}
	}
	waitErr := c.Wait()

	out := &domain.RawOutput{
		Stdout:   stdout.Bytes(),
		Stderr:   stderr.Bytes(),
		ExitCode: exitCode(c),
		Duration: time.Since(start),
	}

	if msg := strings.TrimSpace(string(out.Stderr)); msg != "" {
		i.logger.Printf("warn: stderr from %s: %s", cmd.String(), msg)
	}

	if err := classify(ctx, runCtx, stdout, waitErr); err != nil {
		return nil, &domain.AnalysisError{
			Command:   cmd.String(),
			ExitCode:  out.ExitCode,
			RawLength: stdout.Seen(),
			Stderr:    strings.TrimSpace(string(out.Stderr)),
			Err:       err,
		}
	}
	i.logger.Printf("%s finished in %s (%d bytes)", cmd.String(), out.Duration.Round(time.Millisecond), len(out.Stdout))
	return out, nil
}

// classify picks the failure with the most specific meaning: an overflow
// explains a kill, a deadline explains a kill, a caller cancel explains a
// kill, and only then is the exit status itself the cause.
func classify(parent, run context.Context, stdout *cappedBuffer, waitErr error) error {
	switch {
	case stdout.Overflowed():
		return domain.ErrOutputTooLarge
	case waitErr == nil:
		return nil
	case errors.Is(run.Err(), context.DeadlineExceeded) && parent.Err() == nil:
		return fmt.Errorf("%w: %w", domain.ErrTimeout, waitErr)
	case parent.Err() != nil:
		return fmt.Errorf("%w: %w", domain.ErrCancelled, parent.Err())
	}
	var exitErr *exec.ExitError
	if errors.As(waitErr, &exitErr) {
		return domain.ErrNonZeroExit
	}
	return fmt.Errorf("%w: %w", domain.ErrSpawn, waitErr)
}

func exitCode(c *exec.Cmd) int {
	if c.ProcessState == nil {
		return -1
	}
	return c.ProcessState.ExitCode()
}

// cappedBuffer keeps at most limit bytes. Past the limit it calls
// onOverflow once and keeps draining so the child never blocks on a full
// pipe.
type cappedBuffer struct {
	mu         sync.Mutex
	buf        bytes.Buffer
	limit      int64
	seen       int64
	overflow   bool
	onOverflow func()
}

func (b *cappedBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.seen += int64(len(p))
	if b.overflow {
		return len(p), nil
	}
	if b.limit > 0 && int64(b.buf.Len()+len(p)) > b.limit {
		b.overflow = true
		if b.onOverflow != nil {
			b.onOverflow()
		}
		return len(p), nil
	}
	b.buf.Write(p)
	return len(p), nil
}

func (b *cappedBuffer) Bytes() []byte {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]byte(nil), b.buf.Bytes()...)
}

func (b *cappedBuffer) Overflowed() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.overflow
}

// Seen is the number of bytes the process wrote, kept or not.
func (b *cappedBuffer) Seen() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return int(b.seen)
}
