// Package staticcmd exposes page rendering and site generation as go-command
// handlers.
package staticcmd

import (
	"context"
	"errors"
	"strings"

	command "github.com/goliatone/go-command"

	"github.com/goliatone/go-pagebuilder/internal/commands"
	"github.com/goliatone/go-pagebuilder/internal/generator"
	"github.com/goliatone/go-pagebuilder/pkg/interfaces"
)

var ErrRendererRequired = errors.New("staticcmd: page renderer is required")

// PageRenderer renders a stored page without writing it.
type PageRenderer interface {
	RenderPage(ctx context.Context, path, locale string) (string, error)
}

// Gate reports whether generator-backed handlers may run. A nil Gate is closed.
type Gate func() bool

func (g Gate) open(service generator.Service) error {
	if service == nil || g == nil || !g() {
		return generator.ErrServiceDisabled
	}
	return nil
}

type handler[T command.Message] struct {
	inner *commands.Handler[T]
}

func (h handler[T]) Execute(ctx context.Context, msg T) error {
	return h.inner.Execute(ctx, msg)
}

func newHandler[T command.Message](operation string, logger interfaces.Logger, run command.CommandFunc[T], fields func(T) map[string]any, extra []commands.HandlerOption[T]) handler[T] {
	logger = commands.EnsureLogger(logger)
	opts := []commands.HandlerOption[T]{
		commands.WithLogger[T](logger),
		commands.WithOperation[T]("static." + operation),
		commands.WithReporter(commands.LogReporter[T](logger)),
	}
	if fields != nil {
		opts = append(opts, commands.WithMessageFields(fields))
	}
	return handler[T]{inner: commands.NewHandler(run, append(opts, extra...)...)}
}

func deliver(cb ResultCallback, operation string, env ResultEnvelope) {
	if cb == nil {
		return
	}
	if env.Metadata == nil {
		env.Metadata = map[string]any{}
	}
	env.Metadata["operation"] = operation
	cb(env)
}

func filterFields(f Filter, flags map[string]bool) map[string]any {
	fields := map[string]any{}
	if len(f.Paths) > 0 {
		fields["paths"] = len(f.Paths)
	}
	if len(f.Locales) > 0 {
		fields["locales"] = len(f.Locales)
	}
	for name, set := range flags {
		if set {
			fields[name] = true
		}
	}
	return fields
}

// RenderPageHandler serves RenderPageCommand. Previews go through the
// renderer; writes go through the generator so manifests stay current.
type RenderPageHandler struct {
	handler[RenderPageCommand]
}

func NewRenderPageHandler(renderer PageRenderer, service generator.Service, logger interfaces.Logger, opts ...commands.HandlerOption[RenderPageCommand]) *RenderPageHandler {
	run := func(ctx context.Context, msg RenderPageCommand) error {
		locale := strings.TrimSpace(msg.Locale)
		if !msg.Write {
			if renderer == nil {
				return ErrRendererRequired
			}
			html, err := renderer.RenderPage(ctx, msg.Path, locale)
			if err != nil {
				return err
			}
			deliver(msg.ResultCallback, "render", ResultEnvelope{HTML: html})
			return nil
		}
		if service == nil {
			return generator.ErrServiceDisabled
		}
		page, err := service.BuildPage(ctx, msg.Path, locale)
		if err != nil {
			return err
		}
		deliver(msg.ResultCallback, "render_write", ResultEnvelope{
			Page:     page,
			HTML:     page.HTML,
			Metadata: map[string]any{"output": page.Output},
		})
		return nil
	}
	fields := func(msg RenderPageCommand) map[string]any {
		fields := map[string]any{"path": msg.Path, "write": msg.Write}
		if msg.Locale != "" {
			fields["locale"] = msg.Locale
		}
		return fields
	}
	return &RenderPageHandler{newHandler("render", logger, run, fields, opts)}
}

// BuildSiteHandler serves BuildSiteCommand and can be scheduled through cron.
type BuildSiteHandler struct {
	handler[BuildSiteCommand]
	cron command.HandlerConfig
}

func NewBuildSiteHandler(service generator.Service, logger interfaces.Logger, gate Gate, opts ...commands.HandlerOption[BuildSiteCommand]) *BuildSiteHandler {
	run := func(ctx context.Context, msg BuildSiteCommand) error {
		if err := gate.open(service); err != nil {
			return err
		}
		var (
			operation = "build"
			result    *generator.BuildResult
			err       error
		)
		switch {
		case msg.AssetsOnly:
			operation = "build_assets"
			result, err = service.BuildAssets(ctx)
		case msg.RoutesOnly:
			operation = "build_routes"
			result, err = service.BuildRoutes(ctx)
		default:
			options := msg.Filter.buildOptions()
			options.Force, options.DryRun = msg.Force, msg.DryRun
			result, err = service.Build(ctx, options)
		}
		// Partial results still reach the caller when some pages fail.
		deliver(msg.ResultCallback, operation, ResultEnvelope{Result: result})
		return err
	}
	fields := func(msg BuildSiteCommand) map[string]any {
		return filterFields(msg.Filter, map[string]bool{
			"force": msg.Force, "dry_run": msg.DryRun, "assets_only": msg.AssetsOnly, "routes_only": msg.RoutesOnly,
		})
	}
	return &BuildSiteHandler{handler: newHandler("build", logger, run, fields, opts)}
}

// WithCronExpression schedules unfiltered rebuilds. Blank disables scheduling.
func (h *BuildSiteHandler) WithCronExpression(expression string) *BuildSiteHandler {
	h.cron.Expression = strings.TrimSpace(expression)
	return h
}

func (h *BuildSiteHandler) CronHandler() func() error {
	return func() error {
		return h.Execute(context.Background(), BuildSiteCommand{})
	}
}

func (h *BuildSiteHandler) CronOptions() command.HandlerConfig {
	return h.cron
}

// DiffSiteHandler serves DiffSiteCommand as a dry-run build.
type DiffSiteHandler struct {
	handler[DiffSiteCommand]
}

func NewDiffSiteHandler(service generator.Service, logger interfaces.Logger, gate Gate, opts ...commands.HandlerOption[DiffSiteCommand]) *DiffSiteHandler {
	run := func(ctx context.Context, msg DiffSiteCommand) error {
		if err := gate.open(service); err != nil {
			return err
		}
		options := msg.Filter.buildOptions()
		options.Force, options.DryRun = msg.Force, true
		result, err := service.Build(ctx, options)
		deliver(msg.ResultCallback, "diff", ResultEnvelope{Result: result})
		return err
	}
	fields := func(msg DiffSiteCommand) map[string]any {
		return filterFields(msg.Filter, map[string]bool{"force": msg.Force})
	}
	return &DiffSiteHandler{newHandler("diff", logger, run, fields, opts)}
}

// CleanSiteHandler serves CleanSiteCommand.
type CleanSiteHandler struct {
	handler[CleanSiteCommand]
}

func NewCleanSiteHandler(service generator.Service, logger interfaces.Logger, gate Gate, opts ...commands.HandlerOption[CleanSiteCommand]) *CleanSiteHandler {
	run := func(ctx context.Context, _ CleanSiteCommand) error {
		if err := gate.open(service); err != nil {
			return err
		}
		return service.Clean(ctx)
	}
	return &CleanSiteHandler{newHandler[CleanSiteCommand]("clean", logger, run, nil, opts)}
}
