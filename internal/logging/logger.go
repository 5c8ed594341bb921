// Package logging names the page builder's loggers and carries structured
// fields through contexts.
package logging

import (
	"maps"
	"strings"

	"github.com/goliatone/go-pagebuilder/pkg/interfaces"
)

// Logger names handed to interfaces.LoggerProvider.
const (
	Root      = "pagebuilder"
	Document  = "pagebuilder.document"
	Generator = "pagebuilder.generator"
	Content   = "pagebuilder.content"
)

// ModuleLogger asks provider for the logger called name and tags it with a
// "module" field. Without a provider it returns NoOp.
func ModuleLogger(provider interfaces.LoggerProvider, name string) interfaces.Logger {
	if name = strings.TrimSpace(name); name == "" {
		name = Root
	}
	var logger interfaces.Logger
	if provider != nil {
		logger = provider.GetLogger(name)
	}
	if logger == nil {
		logger = NoOp()
	}
	return WithFields(logger, map[string]any{"module": name})
}

// WithFields attaches a copy of fields when logger supports it.
func WithFields(logger interfaces.Logger, fields map[string]any) interfaces.Logger {
	fl, ok := logger.(interfaces.FieldsLogger)
	if !ok || len(fields) == 0 {
		return logger
	}
	return fl.WithFields(maps.Clone(fields))
}

// WithPageContext tags entries with the page being built. Blank values are
// left out.
func WithPageContext(logger interfaces.Logger, path, locale string) interfaces.Logger {
	return WithFields(logger, nonBlank(map[string]string{"page_path": path, "locale": locale}))
}

// WithPartial tags entries with the partial being rendered.
func WithPartial(logger interfaces.Logger, partial string) interfaces.Logger {
	return WithFields(logger, nonBlank(map[string]string{"partial": partial}))
}

func nonBlank(values map[string]string) map[string]any {
	fields := map[string]any{}
	for key, value := range values {
		if value = strings.TrimSpace(value); value != "" {
			fields[key] = value
		}
	}
	return fields
}
