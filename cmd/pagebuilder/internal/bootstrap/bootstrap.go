package bootstrap

import (
	"context"
	"fmt"
	"strings"

	"github.com/goliatone/go-pagebuilder"
	"github.com/goliatone/go-pagebuilder/internal/commands"
	"github.com/goliatone/go-pagebuilder/internal/di"
	"github.com/goliatone/go-pagebuilder/pkg/interfaces"
)

// Options captures configuration for CLI bootstraps. Empty values keep
// what the config file (or the defaults) declare.
type Options struct {
	ConfigPath    string
	ContentDir    string
	TemplatesDir  string
	AssetsDir     string
	OutputDir     string
	DefaultLocale string
	Locales       []string
	// DB switches the content store to sqlite at this DSN.
	DB             string
	Environment    string
	Incremental    *bool
	Workers        int
	LoggerProvider interfaces.LoggerProvider
}

// Module wraps the page builder module and the CLI logger.
type Module struct {
	Module *pagebuilder.Module
	Logger interfaces.Logger
}

// Config resolves the site configuration for opts.
func Config(opts Options) (pagebuilder.Config, error) {
	cfg := pagebuilder.DefaultConfig()
	if path := strings.TrimSpace(opts.ConfigPath); path != "" {
		loaded, err := pagebuilder.LoadConfig(path)
		if err != nil {
			return cfg, err
		}
		cfg = loaded
	}

	// Without a database the CLI reads the markdown content tree.
	if strings.EqualFold(strings.TrimSpace(cfg.Storage.Driver), di.DriverMemory) {
		cfg.Storage.Driver = di.DriverMarkdown
	}
	if dir := strings.TrimSpace(opts.ContentDir); dir != "" {
		cfg.Paths.Content = dir
	}
	if dir := strings.TrimSpace(opts.TemplatesDir); dir != "" {
		cfg.Paths.Templates = dir
	}
	if dir := strings.TrimSpace(opts.AssetsDir); dir != "" {
		cfg.Paths.Assets = dir
	}
	if dir := strings.TrimSpace(opts.OutputDir); dir != "" {
		cfg.Generator.OutputDir = dir
	}
	if locale := strings.TrimSpace(opts.DefaultLocale); locale != "" {
		cfg.Site.DefaultLocale = locale
	}
	if len(opts.Locales) > 0 {
		cfg.Site.Locales = cloneStrings(opts.Locales)
	}
	if dsn := strings.TrimSpace(opts.DB); dsn != "" {
		cfg.Storage.Driver = di.DriverSQLite
		cfg.Storage.DSN = dsn
	}
	if env := strings.TrimSpace(opts.Environment); env != "" {
		cfg.Site.Environment = env
	}
	if opts.Incremental != nil {
		cfg.Generator.Incremental = *opts.Incremental
	}
	if opts.Workers > 0 {
		cfg.Generator.Workers = opts.Workers
	}
	return cfg, cfg.Validate()
}

// BuildModule constructs and loads a page builder module for CLI use.
func BuildModule(ctx context.Context, opts Options) (*Module, error) {
	cfg, err := Config(opts)
	if err != nil {
		return nil, fmt.Errorf("resolve config: %w", err)
	}

	moduleOpts := []pagebuilder.Option{}
	if opts.LoggerProvider != nil {
		moduleOpts = append(moduleOpts, pagebuilder.WithLoggerProvider(opts.LoggerProvider))
	}

	module, err := pagebuilder.New(cfg, moduleOpts...)
	if err != nil {
		return nil, fmt.Errorf("initialise pagebuilder module: %w", err)
	}
	if err := module.Load(ctx); err != nil {
		_ = module.Close()
		return nil, fmt.Errorf("load content: %w", err)
	}

	return &Module{
		Module: module,
		Logger: commands.CommandLogger(module.Container().LoggerProvider(), "cli"),
	}, nil
}

// SplitList parses a comma separated list into a trimmed slice.
func SplitList(value string) []string {
	if strings.TrimSpace(value) == "" {
		return nil
	}
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func cloneStrings(values []string) []string {
	if len(values) == 0 {
		return nil
	}
	out := make([]string, len(values))
	copy(out, values)
	return out
}
