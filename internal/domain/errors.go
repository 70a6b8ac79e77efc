package domain

import (
	"errors"
	"fmt"
)

var (
	ErrSpawn           = errors.New("analyzer could not be started")
	ErrNonZeroExit     = errors.New("analyzer exited with non-zero status")
	ErrTimeout         = errors.New("analyzer timed out")
	ErrMalformedOutput = errors.New("analyzer output does not match the result contract")
	// ErrOutputTooLarge is a malformed output: the data may be incomplete.
	ErrOutputTooLarge = fmt.Errorf("%w: output exceeded the size limit", ErrMalformedOutput)
	ErrCancelled      = errors.New("analysis request cancelled")

	// ErrNotScheduled is the parent of every "nothing to do" outcome. None of
	// them is a failure.
	ErrNotScheduled       = errors.New("analysis not scheduled")
	ErrUnsupportedSubject = fmt.Errorf("%w: unsupported subject", ErrNotScheduled)
	ErrAnalysisDisabled   = fmt.Errorf("%w: analysis disabled", ErrNotScheduled)
	ErrTriggerDisabled    = fmt.Errorf("%w: trigger disabled by settings", ErrNotScheduled)
)

// AnalysisError carries enough detail to diagnose a failed invocation.
type AnalysisError struct {
	Command   string
	ExitCode  int
	RawLength int
	Stderr    string
	Err       error
}

func (e *AnalysisError) Error() string {
	msg := fmt.Sprintf("%v (command: %s, exit: %d, output: %d bytes)", e.Err, e.Command, e.ExitCode, e.RawLength)
	if e.Stderr != "" {
		msg += ": " + e.Stderr
	}
	return msg
}

func (e *AnalysisError) Unwrap() error { return e.Err }

// FailureKind names the taxonomy bucket of err for logs and status tooltips.
func FailureKind(err error) string {
	switch {
	case errors.Is(err, ErrCancelled):
		return "cancelled"
	case errors.Is(err, ErrSpawn):
		return "spawn failure"
	case errors.Is(err, ErrOutputTooLarge):
		return "output too large"
	case errors.Is(err, ErrMalformedOutput):
		return "malformed output"
	case errors.Is(err, ErrTimeout):
		return "timeout"
	case errors.Is(err, ErrNonZeroExit):
		return "non-zero exit"
	default:
		return "failure"
	}
}
