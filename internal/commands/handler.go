// Package commands wraps go-command handlers with the timeout, logging and
// error tagging every pagebuilder command shares.
package commands

import (
	"context"
	"maps"
	"time"

	command "github.com/goliatone/go-command"

	"github.com/goliatone/go-pagebuilder/internal/logging"
	"github.com/goliatone/go-pagebuilder/pkg/interfaces"
)

// HandlerOption configures a Handler.
type HandlerOption[T command.Message] func(*Handler[T])

// Handler satisfies command.Commander[T].
type Handler[T command.Message] struct {
	run       command.CommandFunc[T]
	logger    interfaces.Logger
	timeout   time.Duration
	operation string
	fieldsOf  func(T) map[string]any
	reporter  Reporter[T]
}

// NewHandler panics on a nil fn; a handler with nothing to run is a wiring bug.
func NewHandler[T command.Message](fn command.CommandFunc[T], opts ...HandlerOption[T]) *Handler[T] {
	if fn == nil {
		panic("commands: nil command func")
	}
	h := &Handler[T]{run: fn, logger: EnsureLogger(nil), timeout: DefaultCommandTimeout}
	for _, opt := range opts {
		opt(h)
	}
	if h.reporter == nil {
		h.reporter = func(_ context.Context, _ T, report Report) { logReport(report.Logger, report) }
	}
	return h
}

// Execute validates msg, runs it under the handler timeout and reports the outcome.
func (h *Handler[T]) Execute(ctx context.Context, msg T) error {
	if err := command.ValidateMessage(msg); err != nil {
		return classify(stageValidate, err)
	}

	ctx, cancel := boundContext(ctx, h.timeout)
	defer cancel()
	if err := ctx.Err(); err != nil {
		return classify(stageRun, err)
	}

	report := Report{
		Command:   command.GetMessageType(msg),
		Operation: h.operation,
		Fields:    h.fields(msg),
	}
	report.Logger = logging.WithFields(h.logger.WithContext(ctx), report.Fields)
	report.Logger.Debug("command.started")

	started := time.Now()
	err := h.run(ctx, msg)
	if err == nil {
		err = ctx.Err()
	}
	report.Elapsed = time.Since(started)
	report.Err = classify(stageRun, err)
	switch {
	case err == nil:
		report.Outcome = OutcomeSucceeded
	case interrupted(err):
		report.Outcome = OutcomeInterrupted
	default:
		report.Outcome = OutcomeFailed
	}

	h.reporter(ctx, msg, report)
	return report.Err
}

func (h *Handler[T]) fields(msg T) map[string]any {
	fields := map[string]any{"command": command.GetMessageType(msg)}
	if h.operation != "" {
		fields["operation"] = h.operation
	}
	if h.fieldsOf != nil {
		maps.Copy(fields, h.fieldsOf(msg))
	}
	return fields
}

// WithTimeout overrides DefaultCommandTimeout. Zero or negative disables it.
func WithTimeout[T command.Message](timeout time.Duration) HandlerOption[T] {
	return func(h *Handler[T]) {
		h.timeout = max(timeout, 0)
	}
}

func WithLogger[T command.Message](logger interfaces.Logger) HandlerOption[T] {
	return func(h *Handler[T]) {
		h.logger = EnsureLogger(logger)
	}
}

// WithOperation names the run in logs, e.g. "static.build".
func WithOperation[T command.Message](operation string) HandlerOption[T] {
	return func(h *Handler[T]) {
		h.operation = operation
	}
}

// WithMessageFields adds fields derived from the message to the run's logs.
func WithMessageFields[T command.Message](fn func(T) map[string]any) HandlerOption[T] {
	return func(h *Handler[T]) {
		h.fieldsOf = fn
	}
}

// WithReporter replaces the default outcome logging.
func WithReporter[T command.Message](fn Reporter[T]) HandlerOption[T] {
	return func(h *Handler[T]) {
		if fn != nil {
			h.reporter = fn
		}
	}
}
