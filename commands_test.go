package pagebuilder_test

import (
	"context"
	"errors"
	"testing"

	command "github.com/goliatone/go-command"

	"github.com/goliatone/go-pagebuilder"
)

type recordingRegistry struct {
	handlers []any
	err      error
}

func (r *recordingRegistry) RegisterCommand(handler any) error {
	r.handlers = append(r.handlers, handler)
	return r.err
}

type recordingDispatcher struct {
	count int
}

type noopSubscription struct{}

func (noopSubscription) Unsubscribe() {}

func (d *recordingDispatcher) RegisterCommand(any) (pagebuilder.CommandSubscription, error) {
	d.count++
	return noopSubscription{}, nil
}

func TestRegisterCommandsRegistersStaticHandlers(t *testing.T) {
	module := newModule(t)
	registry := &recordingRegistry{}
	dispatcher := &recordingDispatcher{}

	result, err := pagebuilder.RegisterCommands(module, pagebuilder.RegistrationOptions{
		Registry:   registry,
		Dispatcher: dispatcher,
	})
	if err != nil {
		t.Fatalf("register commands: %v", err)
	}
	if len(result.Handlers) != 4 || len(registry.handlers) != 4 {
		t.Fatalf("expected four handlers, got %d", len(result.Handlers))
	}
	if dispatcher.count != 4 || len(result.Subscriptions) != 4 {
		t.Fatalf("expected four subscriptions, got %d", len(result.Subscriptions))
	}
}

func TestRegisterCommandsSchedulesBuildWithCron(t *testing.T) {
	module := newModule(t)
	var scheduled []command.HandlerConfig

	_, err := pagebuilder.RegisterCommands(module, pagebuilder.RegistrationOptions{
		BuildCron: "@hourly",
		CronRegistrar: func(cfg command.HandlerConfig, handler any) error {
			scheduled = append(scheduled, cfg)
			if _, ok := handler.(func() error); !ok {
				t.Fatalf("expected cron handler func, got %T", handler)
			}
			return nil
		},
	})
	if err != nil {
		t.Fatalf("register commands: %v", err)
	}
	if len(scheduled) != 1 || scheduled[0].Expression != "@hourly" {
		t.Fatalf("expected one hourly build, got %+v", scheduled)
	}
}

func TestRegisterCommandsJoinsRegistryErrors(t *testing.T) {
	module := newModule(t)
	registryErr := errors.New("duplicate handler")
	result, err := pagebuilder.RegisterCommands(module, pagebuilder.RegistrationOptions{
		Registry: &recordingRegistry{err: registryErr},
	})
	if !errors.Is(err, registryErr) {
		t.Fatalf("expected registry error, got %v", err)
	}
	if len(result.Handlers) != 4 {
		t.Fatalf("expected handlers to be returned alongside errors, got %d", len(result.Handlers))
	}
}

func TestRegisteredRenderHandlerRendersPage(t *testing.T) {
	module := newModule(t)
	result, err := pagebuilder.RegisterCommands(module, pagebuilder.RegistrationOptions{})
	if err != nil {
		t.Fatalf("register commands: %v", err)
	}

	render, ok := result.Handlers[0].(interface {
		Execute(context.Context, pagebuilder.RenderPageCommand) error
	})
	if !ok {
		t.Fatalf("expected render handler first, got %T", result.Handlers[0])
	}
	var html string
	err = render.Execute(context.Background(), pagebuilder.RenderPageCommand{
		Path:           "/about",
		Locale:         "fr_FR",
		ResultCallback: func(env pagebuilder.ResultEnvelope) { html = env.HTML },
	})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if html == "" {
		t.Fatal("expected rendered html")
	}
}

func TestRegisterCommandsDisabledGenerator(t *testing.T) {
	module := newModule(t)
	result, err := pagebuilder.RegisterCommands(module, pagebuilder.RegistrationOptions{DisableGenerator: true})
	if err != nil {
		t.Fatalf("register commands: %v", err)
	}
	build := result.Handlers[1].(interface {
		Execute(context.Context, pagebuilder.BuildSiteCommand) error
	})
	if err := build.Execute(context.Background(), pagebuilder.BuildSiteCommand{}); err == nil {
		t.Fatal("expected disabled generator error")
	}
}
