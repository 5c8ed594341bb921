package pagebuilder

import (
	"errors"

	command "github.com/goliatone/go-command"

	"github.com/goliatone/go-pagebuilder/internal/commands"
	staticcmd "github.com/goliatone/go-pagebuilder/internal/commands/static"
	"github.com/goliatone/go-pagebuilder/pkg/interfaces"
)

type (
	RenderPageCommand = staticcmd.RenderPageCommand
	BuildSiteCommand  = staticcmd.BuildSiteCommand
	DiffSiteCommand   = staticcmd.DiffSiteCommand
	CleanSiteCommand  = staticcmd.CleanSiteCommand
	CommandFilter     = staticcmd.Filter
	ResultEnvelope    = staticcmd.ResultEnvelope
)

// CommandRegistry is the host side of a CLI or admin command catalogue.
type CommandRegistry interface {
	RegisterCommand(handler any) error
}

// CommandDispatcher subscribes handlers to a message dispatcher such as
// go-command's dispatcher package.
type CommandDispatcher interface {
	RegisterCommand(handler any) (CommandSubscription, error)
}

type CommandSubscription interface {
	Unsubscribe()
}

// CronRegistrar schedules handler under cfg.Expression.
type CronRegistrar func(cfg command.HandlerConfig, handler any) error

type cronCommand interface {
	CronHandler() func() error
	CronOptions() command.HandlerConfig
}

// RegistrationOptions selects where RegisterCommands publishes handlers.
// Every integration is optional.
type RegistrationOptions struct {
	Registry       CommandRegistry
	Dispatcher     CommandDispatcher
	CronRegistrar  CronRegistrar
	LoggerProvider interfaces.LoggerProvider
	// BuildCron schedules full site rebuilds, e.g. "@hourly".
	BuildCron string
	// DisableGenerator keeps build, diff and clean registered but makes them
	// fail with generator.ErrServiceDisabled.
	DisableGenerator bool
}

// RegistrationResult lists handlers in render, build, diff, clean order.
type RegistrationResult struct {
	Handlers      []any
	Subscriptions []CommandSubscription
}

// RegisterCommands builds the render and static site handlers for m and
// publishes them. Integration failures are joined; handlers are returned
// either way.
func RegisterCommands(m *Module, opts RegistrationOptions) (*RegistrationResult, error) {
	result := &RegistrationResult{Handlers: []any{}, Subscriptions: []CommandSubscription{}}
	if m == nil || m.container == nil {
		return result, nil
	}

	provider := opts.LoggerProvider
	if provider == nil {
		provider = m.container.LoggerProvider()
	}
	logger := commands.CommandLogger(provider, "static")
	service := m.Generator()
	gate := staticcmd.Gate(func() bool { return !opts.DisableGenerator })

	result.Handlers = append(result.Handlers,
		staticcmd.NewRenderPageHandler(m, service, logger),
		staticcmd.NewBuildSiteHandler(service, logger, gate).WithCronExpression(opts.BuildCron),
		staticcmd.NewDiffSiteHandler(service, logger, gate),
		staticcmd.NewCleanSiteHandler(service, logger, gate),
	)

	var errs []error
	for _, handler := range result.Handlers {
		sub, err := opts.publish(handler)
		if sub != nil {
			result.Subscriptions = append(result.Subscriptions, sub)
		}
		errs = append(errs, err)
	}
	return result, errors.Join(errs...)
}

func (opts RegistrationOptions) publish(handler any) (CommandSubscription, error) {
	var errs []error
	if opts.Registry != nil {
		errs = append(errs, opts.Registry.RegisterCommand(handler))
	}
	var sub CommandSubscription
	if opts.Dispatcher != nil {
		var err error
		sub, err = opts.Dispatcher.RegisterCommand(handler)
		errs = append(errs, err)
	}
	if cron, ok := handler.(cronCommand); ok && opts.CronRegistrar != nil && cron.CronOptions().Expression != "" {
		errs = append(errs, opts.CronRegistrar(cron.CronOptions(), cron.CronHandler()))
	}
	return sub, errors.Join(errs...)
}
