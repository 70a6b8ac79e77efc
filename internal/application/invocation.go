package application

import (
	"context"
	"errors"
	"log"
	"strings"

	"github.com/abdidvp/slopwatch/internal/domain"
)

// invoke runs cmd and decodes stdout. Decode failures are reported as an
// AnalysisError so every failure carries the command and raw length.
func invoke[T any](
	ctx context.Context,
	runner domain.ProcessRunner,
	logger *log.Logger,
	cmd domain.Command,
	limits domain.Limits,
	decode func([]byte) (T, error),
) (T, error) {
	var zero T

	raw, err := runner.Run(ctx, cmd, limits)
	if err != nil {
		var ae *domain.AnalysisError
		if errors.As(err, &ae) {
			return zero, err
		}
		return zero, &domain.AnalysisError{Command: cmd.String(), ExitCode: -1, Err: err}
	}

	if stderr := strings.TrimSpace(string(raw.Stderr)); stderr != "" {
		logger.Printf("warn: analyzer stderr for %s: %s", cmd.String(), stderr)
	}

	v, err := decode(raw.Stdout)
	if err != nil {
		return zero, &domain.AnalysisError{
			Command:   cmd.String(),
			ExitCode:  raw.ExitCode,
			RawLength: len(raw.Stdout),
			Stderr:    strings.TrimSpace(string(raw.Stderr)),
			Err:       err,
		}
	}
	return v, nil
}

func logFailure(logger *log.Logger, what string, req *domain.AnalysisRequest, err error) {
	logger.Printf("%s of %s failed (%s, trigger %s, request %s): %v",
		what, req.Subject.Path, domain.FailureKind(err), req.Trigger, req.ID, err)
}
