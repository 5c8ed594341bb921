package commands

import (
	"context"
	"time"

	command "github.com/goliatone/go-command"

	"github.com/goliatone/go-pagebuilder/internal/logging"
	"github.com/goliatone/go-pagebuilder/pkg/interfaces"
)

// Outcome is how a command run ended.
type Outcome string

const (
	OutcomeSucceeded   Outcome = "succeeded"
	OutcomeFailed      Outcome = "failed"
	OutcomeInterrupted Outcome = "interrupted"
)

// Report is handed to a Reporter once a run finishes.
type Report struct {
	Command   string
	Operation string
	Fields    map[string]any
	Elapsed   time.Duration
	Err       error
	Outcome   Outcome
	Logger    interfaces.Logger
}

// Reporter observes finished command runs.
type Reporter[T command.Message] func(ctx context.Context, msg T, report Report)

// LogReporter writes one entry per run. Content and configuration failures
// log at warn, everything else at error.
func LogReporter[T command.Message](logger interfaces.Logger) Reporter[T] {
	logger = EnsureLogger(logger)
	return func(_ context.Context, _ T, report Report) {
		logReport(logging.WithFields(logger, report.Fields), report)
	}
}

func logReport(logger interfaces.Logger, report Report) {
	elapsed := report.Elapsed.Milliseconds()
	switch {
	case report.Outcome == OutcomeSucceeded:
		logger.Info("command.succeeded", "elapsed_ms", elapsed)
	case report.Outcome == OutcomeInterrupted:
		logger.Warn("command.interrupted", "elapsed_ms", elapsed, "error", report.Err)
	case userFacing(report.Err):
		logger.Warn("command.rejected", "elapsed_ms", elapsed, "error", report.Err)
	default:
		logger.Error("command.failed", "elapsed_ms", elapsed, "error", report.Err)
	}
}
