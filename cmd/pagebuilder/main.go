package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/goliatone/go-pagebuilder/cmd/pagebuilder/internal/bootstrap"
	staticcmd "github.com/goliatone/go-pagebuilder/internal/commands/static"
	"github.com/goliatone/go-pagebuilder/internal/generator"
	"github.com/goliatone/go-pagebuilder/pkg/interfaces"
)

type buildHandler interface {
	Execute(context.Context, staticcmd.BuildSiteCommand) error
}

type diffHandler interface {
	Execute(context.Context, staticcmd.DiffSiteCommand) error
}

type cleanHandler interface {
	Execute(context.Context, staticcmd.CleanSiteCommand) error
}

type renderHandler interface {
	Execute(context.Context, staticcmd.RenderPageCommand) error
}

type handlerSet struct {
	build  buildHandler
	diff   diffHandler
	clean  cleanHandler
	render renderHandler
}

type moduleOptions struct {
	bootstrap.Options
}

type moduleResources struct {
	handlers handlerSet
	logger   interfaces.Logger
	// watchDirs are the directories --watch observes.
	watchDirs []string
	reload    func(context.Context) error
	close     func() error
}

var moduleBuilder = buildModule

func main() {
	if err := run(os.Args[1:]); err != nil {
		log.Fatalf("pagebuilder: %v", err)
	}
}

func run(args []string) error {
	if len(args) == 0 {
		return errors.New("missing subcommand (build, diff, clean, render)")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	switch args[0] {
	case "build":
		return runBuild(ctx, args[1:])
	case "diff":
		return runDiff(ctx, args[1:])
	case "clean":
		return runClean(ctx, args[1:])
	case "render":
		return runRender(ctx, args[1:])
	default:
		return fmt.Errorf("unknown subcommand %q", args[0])
	}
}

type commonFlags struct {
	config      *string
	content     *string
	templates   *string
	assets      *string
	output      *string
	db          *string
	environment *string
	locales     *string
}

func registerCommon(fs *flag.FlagSet) commonFlags {
	return commonFlags{
		config:      fs.String("config", "", "Path to a YAML site configuration"),
		content:     fs.String("content", "", "Markdown content root (overrides config)"),
		templates:   fs.String("templates", "", "Templates directory (overrides config)"),
		assets:      fs.String("assets", "", "Public assets directory (overrides config)"),
		output:      fs.String("output", "", "Output directory (overrides config)"),
		db:          fs.String("db", "", "SQLite DSN used as the content store instead of markdown"),
		environment: fs.String("env", "", "Site environment, used by the inspector auto mode"),
		locales:     fs.String("locale", "", "Comma separated list of locales to build"),
	}
}

func (c commonFlags) options() moduleOptions {
	return moduleOptions{Options: bootstrap.Options{
		ConfigPath:   *c.config,
		ContentDir:   *c.content,
		TemplatesDir: *c.templates,
		AssetsDir:    *c.assets,
		OutputDir:    *c.output,
		DB:           *c.db,
		Environment:  *c.environment,
	}}
}

func (c commonFlags) filter(paths string) staticcmd.Filter {
	return staticcmd.Filter{
		Paths:   bootstrap.SplitList(paths),
		Locales: bootstrap.SplitList(*c.locales),
	}
}

func runBuild(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("build", flag.ContinueOnError)
	common := registerCommon(fs)
	paths := fs.String("path", "", "Comma separated list of page paths to build")
	force := fs.Bool("force", false, "Rebuild pages even when the manifest says they are unchanged")
	dryRun := fs.Bool("dry-run", false, "Render without writing output")
	assetsOnly := fs.Bool("assets-only", false, "Copy public assets only")
	routesOnly := fs.Bool("routes-only", false, "Write sitemap, robots and other routes only")
	incremental := fs.Bool("incremental", false, "Skip pages whose inputs are unchanged")
	workers := fs.Int("workers", 0, "Render workers per locale (0 uses the CPU count)")
	watch := fs.Bool("watch", false, "Rebuild when content, templates or assets change")
	if err := fs.Parse(args); err != nil {
		return err
	}

	opts := common.options()
	opts.Workers = *workers
	if *incremental || *watch {
		enabled := true
		opts.Incremental = &enabled
	}
	resources, err := moduleBuilder(ctx, opts)
	if err != nil {
		return fmt.Errorf("bootstrap module: %w", err)
	}
	defer resources.shutdown()
	if resources.handlers.build == nil {
		return errors.New("build handler not configured")
	}

	cmd := staticcmd.BuildSiteCommand{
		Filter:         common.filter(*paths),
		Force:          *force,
		DryRun:         *dryRun,
		AssetsOnly:     *assetsOnly,
		RoutesOnly:     *routesOnly,
		ResultCallback: logEnvelope,
	}
	if err := resources.handlers.build.Execute(ctx, cmd); err != nil {
		return err
	}
	if !*watch {
		return nil
	}

	watcher, err := newWatcher(resources.watchDirs, resources.logger)
	if err != nil {
		return err
	}
	defer watcher.Close()
	return watcher.Run(ctx, func(ctx context.Context) error {
		if resources.reload != nil {
			if err := resources.reload(ctx); err != nil {
				return err
			}
		}
		return resources.handlers.build.Execute(ctx, cmd)
	})
}

func runDiff(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("diff", flag.ContinueOnError)
	common := registerCommon(fs)
	paths := fs.String("path", "", "Comma separated list of page paths to diff")
	force := fs.Bool("force", false, "Report every page, ignoring the manifest")
	if err := fs.Parse(args); err != nil {
		return err
	}

	opts := common.options()
	enabled := true
	opts.Incremental = &enabled
	resources, err := moduleBuilder(ctx, opts)
	if err != nil {
		return fmt.Errorf("bootstrap module: %w", err)
	}
	defer resources.shutdown()
	if resources.handlers.diff == nil {
		return errors.New("diff handler not configured")
	}

	return resources.handlers.diff.Execute(ctx, staticcmd.DiffSiteCommand{
		Filter:         common.filter(*paths),
		Force:          *force,
		ResultCallback: logEnvelope,
	})
}

func runClean(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("clean", flag.ContinueOnError)
	common := registerCommon(fs)
	if err := fs.Parse(args); err != nil {
		return err
	}

	resources, err := moduleBuilder(ctx, common.options())
	if err != nil {
		return fmt.Errorf("bootstrap module: %w", err)
	}
	defer resources.shutdown()
	if resources.handlers.clean == nil {
		return errors.New("clean handler not configured")
	}
	if err := resources.handlers.clean.Execute(ctx, staticcmd.CleanSiteCommand{}); err != nil {
		return err
	}
	log.Printf("module=static operation=clean completed")
	return nil
}

func runRender(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("render", flag.ContinueOnError)
	common := registerCommon(fs)
	path := fs.String("path", "/", "Page path to render")
	write := fs.Bool("write", false, "Write the page to the output directory instead of stdout")
	if err := fs.Parse(args); err != nil {
		return err
	}

	resources, err := moduleBuilder(ctx, common.options())
	if err != nil {
		return fmt.Errorf("bootstrap module: %w", err)
	}
	defer resources.shutdown()
	if resources.handlers.render == nil {
		return errors.New("render handler not configured")
	}

	locale := ""
	if locales := bootstrap.SplitList(*common.locales); len(locales) > 0 {
		locale = locales[0]
	}
	return resources.handlers.render.Execute(ctx, staticcmd.RenderPageCommand{
		Path:   *path,
		Locale: locale,
		Write:  *write,
		ResultCallback: func(env staticcmd.ResultEnvelope) {
			if env.Page != nil && env.Page.Output != "" {
				log.Printf("module=static operation=render_write path=%s locale=%s output=%s", env.Page.Path, env.Page.Locale, env.Page.Output)
				return
			}
			fmt.Fprint(os.Stdout, env.HTML)
		},
	})
}

func buildModule(ctx context.Context, opts moduleOptions) (*moduleResources, error) {
	module, err := bootstrap.BuildModule(ctx, opts.Options)
	if err != nil {
		return nil, err
	}
	m := module.Module
	cfg := m.Config()
	service := m.Generator()
	logger := module.Logger
	gate := staticcmd.Gate(func() bool { return strings.TrimSpace(cfg.Generator.OutputDir) != "" })

	return &moduleResources{
		handlers: handlerSet{
			build:  staticcmd.NewBuildSiteHandler(service, logger, gate),
			diff:   staticcmd.NewDiffSiteHandler(service, logger, gate),
			clean:  staticcmd.NewCleanSiteHandler(service, logger, gate),
			render: staticcmd.NewRenderPageHandler(m, service, logger),
		},
		logger:    logger,
		watchDirs: []string{cfg.Paths.Content, cfg.Paths.Templates, cfg.Paths.Assets},
		reload:    m.Load,
		close:     m.Close,
	}, nil
}

func (r *moduleResources) shutdown() {
	if r == nil || r.close == nil {
		return
	}
	if err := r.close(); err != nil {
		log.Printf("module=static operation=close error=%v", err)
	}
}

func logEnvelope(env staticcmd.ResultEnvelope) {
	operation, _ := env.Metadata["operation"].(string)
	if operation == "" {
		operation = "build"
	}
	if env.Result == nil {
		log.Printf("module=static operation=%s", operation)
		return
	}
	logSummary(operation, env.Result)
}

func logSummary(operation string, result *generator.BuildResult) {
	log.Printf("module=static operation=%s summary pages_built=%d pages_skipped=%d assets_built=%d routes_built=%d locales=%d duration=%s dry_run=%t errors=%d",
		operation,
		result.PagesBuilt,
		result.PagesSkipped,
		result.AssetsBuilt,
		result.RoutesBuilt,
		len(result.Locales),
		result.Duration,
		result.DryRun,
		len(result.Errors),
	)
	for _, diag := range result.Diagnostics {
		switch {
		case diag.Err != nil:
			log.Printf("module=static operation=%s page=%s locale=%s error=%v", operation, diag.Path, diag.Locale, diag.Err)
		case diag.Skipped:
			log.Printf("module=static operation=%s page=%s locale=%s skipped reason=%q", operation, diag.Path, diag.Locale, diag.Reason)
		}
	}
	if result.DryRun {
		for _, page := range result.Rendered {
			log.Printf("module=static operation=%s would_write=%s", operation, strings.TrimSpace(page.Output))
		}
	}
}
