// Package gologger backs interfaces.LoggerProvider with github.com/goliatone/go-logger.
package gologger

import (
	"context"
	"fmt"
	"maps"
	"slices"
	"strings"

	glog "github.com/goliatone/go-logger/glog"

	"github.com/goliatone/go-pagebuilder/internal/logging"
	"github.com/goliatone/go-pagebuilder/internal/runtimeconfig"
	"github.com/goliatone/go-pagebuilder/pkg/interfaces"
)

type Config struct {
	Level     string
	Format    string
	AddSource bool
	// Focus limits output to module names such as "pagebuilder.document".
	Focus []string
}

// FromRuntime maps the logging section of the site config. Development sites
// without an explicit format get pretty output.
func FromRuntime(cfg runtimeconfig.LoggingConfig, environment string) Config {
	format := cfg.Format
	if strings.TrimSpace(format) == "" && strings.EqualFold(strings.TrimSpace(environment), "development") {
		format = "pretty"
	}
	return Config{Level: cfg.Level, Format: format, AddSource: cfg.AddSource, Focus: cfg.Focus}
}

var levels = map[string]string{
	"trace":   glog.Trace,
	"debug":   glog.Debug,
	"info":    glog.Info,
	"warn":    glog.Warn,
	"warning": glog.Warn,
	"error":   glog.Error,
	"fatal":   glog.Fatal,
}

var formats = map[string]func() glog.Option{
	"":        glog.WithLoggerTypeConsole,
	"console": glog.WithLoggerTypeConsole,
	"json":    glog.WithLoggerTypeJSON,
	"pretty":  glog.WithLoggerTypePretty,
}

// Provider hands out go-logger children, one per module name.
type Provider struct {
	root *glog.BaseLogger
}

func NewProvider(cfg Config) (*Provider, error) {
	format, ok := formats[strings.ToLower(strings.TrimSpace(cfg.Format))]
	if !ok {
		return nil, fmt.Errorf("gologger: unsupported format %q", cfg.Format)
	}
	opts := []glog.Option{format()}
	if level, ok := levels[strings.ToLower(strings.TrimSpace(cfg.Level))]; ok {
		opts = append(opts, glog.WithLevel(level))
	}
	if cfg.AddSource {
		opts = append(opts, glog.WithAddSource(true))
	}

	root := glog.NewLogger(opts...)
	focus := slices.DeleteFunc(slices.Clone(cfg.Focus), func(name string) bool {
		return strings.TrimSpace(name) == ""
	})
	if len(focus) > 0 {
		root.Focus(focus...)
	}
	return &Provider{root: root}, nil
}

func (p *Provider) GetLogger(name string) interfaces.Logger {
	if p == nil || p.root == nil {
		return logging.NoOp()
	}
	if name = strings.TrimSpace(name); name != "" {
		return adapt(p.root.GetLogger(name))
	}
	return adapt(p.root)
}

func adapt(inner glog.Logger) interfaces.Logger {
	if inner == nil {
		return logging.NoOp()
	}
	return moduleLogger{inner}
}

type moduleLogger struct {
	glog.Logger
}

func (l moduleLogger) WithFields(fields map[string]any) interfaces.Logger {
	if len(fields) == 0 {
		return l
	}
	if fl, ok := l.Logger.(glog.FieldsLogger); ok {
		return adapt(fl.WithFields(maps.Clone(fields)))
	}
	// Without native field support, fall back to sorted key/value pairs.
	if kv, ok := l.Logger.(interface{ With(...any) *glog.BaseLogger }); ok {
		args := make([]any, 0, len(fields)*2)
		for _, key := range slices.Sorted(maps.Keys(fields)) {
			args = append(args, key, fields[key])
		}
		return adapt(kv.With(args...))
	}
	return l
}

// WithContext applies fields stored by logging.ContextWithFields before
// handing ctx to go-logger.
func (l moduleLogger) WithContext(ctx context.Context) interfaces.Logger {
	if ctx == nil {
		return l
	}
	base := l
	if enriched, ok := l.WithFields(logging.ContextFields(ctx)).(moduleLogger); ok {
		base = enriched
	}
	return adapt(base.Logger.WithContext(ctx))
}
