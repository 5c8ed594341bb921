package commands

import (
	"context"
	"strings"
	"time"

	"github.com/goliatone/go-pagebuilder/internal/logging"
	"github.com/goliatone/go-pagebuilder/pkg/interfaces"
)

// DefaultCommandTimeout bounds a single command run. Full site builds with
// many locales are the slowest callers.
const DefaultCommandTimeout = 2 * time.Minute

const loggerRoot = "pagebuilder.commands"

// CommandLogger scopes provider output to pagebuilder.commands.<group> and tags
// every entry with the command group.
func CommandLogger(provider interfaces.LoggerProvider, group string) interfaces.Logger {
	group = strings.TrimSpace(group)
	if group == "" {
		group = "core"
	}
	return logging.WithFields(
		logging.ModuleLogger(provider, loggerRoot+"."+group),
		map[string]any{"component": "command", "command_group": group},
	)
}

// EnsureLogger substitutes the no-op logger for nil.
func EnsureLogger(logger interfaces.Logger) interfaces.Logger {
	if logger != nil {
		return logger
	}
	return logging.NoOp()
}

func boundContext(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if ctx == nil {
		ctx = context.Background()
	}
	if timeout > 0 {
		return context.WithTimeout(ctx, timeout)
	}
	return context.WithCancel(ctx)
}
