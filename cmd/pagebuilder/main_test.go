package main

import (
	"bytes"
	"context"
	"errors"
	"log"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	staticcmd "github.com/goliatone/go-pagebuilder/internal/commands/static"
	"github.com/goliatone/go-pagebuilder/internal/generator"
	"github.com/goliatone/go-pagebuilder/internal/logging"
)

type stubHandlers struct {
	build  *stubBuildHandler
	diff   *stubDiffHandler
	clean  *stubCleanHandler
	render *stubRenderHandler
	opts   moduleOptions
}

type stubBuildHandler struct {
	last  staticcmd.BuildSiteCommand
	calls int
	err   error
}

func (s *stubBuildHandler) Execute(ctx context.Context, msg staticcmd.BuildSiteCommand) error {
	s.last = msg
	s.calls++
	if s.err != nil {
		return s.err
	}
	if msg.ResultCallback != nil {
		metadata := map[string]any{"operation": "build"}
		result := &generator.BuildResult{
			PagesBuilt: 1,
			Locales:    []string{"en"},
			Duration:   123,
			Diagnostics: []generator.RenderDiagnostic{
				{Path: "/draft", Locale: "en", Skipped: true, Reason: "no route"},
			},
		}
		switch {
		case msg.AssetsOnly:
			metadata["operation"] = "build_assets"
			result = &generator.BuildResult{AssetsBuilt: 2}
		case msg.RoutesOnly:
			metadata["operation"] = "build_routes"
			result = &generator.BuildResult{RoutesBuilt: 2}
		}
		msg.ResultCallback(staticcmd.ResultEnvelope{Result: result, Metadata: metadata})
	}
	return nil
}

type stubDiffHandler struct {
	last staticcmd.DiffSiteCommand
}

func (s *stubDiffHandler) Execute(ctx context.Context, msg staticcmd.DiffSiteCommand) error {
	s.last = msg
	if msg.ResultCallback != nil {
		msg.ResultCallback(staticcmd.ResultEnvelope{
			Result: &generator.BuildResult{
				DryRun:   true,
				Rendered: []generator.RenderedPage{{Path: "/about", Output: "dist/about/index.html"}},
			},
			Metadata: map[string]any{"operation": "diff"},
		})
	}
	return nil
}

type stubCleanHandler struct {
	calls int
	err   error
}

func (s *stubCleanHandler) Execute(ctx context.Context, msg staticcmd.CleanSiteCommand) error {
	s.calls++
	return s.err
}

type stubRenderHandler struct {
	last staticcmd.RenderPageCommand
}

func (s *stubRenderHandler) Execute(ctx context.Context, msg staticcmd.RenderPageCommand) error {
	s.last = msg
	if msg.ResultCallback != nil {
		env := staticcmd.ResultEnvelope{HTML: "<html></html>"}
		if msg.Write {
			env.Page = &generator.RenderedPage{Path: msg.Path, Locale: msg.Locale, Output: "dist/about/index.html"}
		}
		msg.ResultCallback(env)
	}
	return nil
}

var activeStubHandlers *stubHandlers

func withStubModule(t *testing.T) {
	t.Helper()
	original := moduleBuilder
	stubs := &stubHandlers{
		build:  &stubBuildHandler{},
		diff:   &stubDiffHandler{},
		clean:  &stubCleanHandler{},
		render: &stubRenderHandler{},
	}
	activeStubHandlers = stubs

	moduleBuilder = func(ctx context.Context, opts moduleOptions) (*moduleResources, error) {
		stubs.opts = opts
		return &moduleResources{
			handlers: handlerSet{
				build:  stubs.build,
				diff:   stubs.diff,
				clean:  stubs.clean,
				render: stubs.render,
			},
			logger: logging.NoOp(),
		}, nil
	}

	t.Cleanup(func() {
		moduleBuilder = original
		activeStubHandlers = nil
	})
}

func captureLogs(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	prevOutput := log.Writer()
	prevFlags := log.Flags()
	log.SetOutput(&buf)
	log.SetFlags(0)
	t.Cleanup(func() {
		log.SetOutput(prevOutput)
		log.SetFlags(prevFlags)
	})
	return &buf
}

func TestRunBuild_UsesCommandHandler(t *testing.T) {
	withStubModule(t)
	buf := captureLogs(t)

	if err := run([]string{"build", "--path", "/about,/contact", "--locale", "en", "--force", "--output", "public"}); err != nil {
		t.Fatalf("run build: %v", err)
	}

	got := activeStubHandlers.build.last
	if len(got.Paths) != 2 || got.Paths[0] != "/about" {
		t.Fatalf("expected two paths, got %#v", got.Paths)
	}
	if len(got.Locales) != 1 || got.Locales[0] != "en" {
		t.Fatalf("expected locale en, got %#v", got.Locales)
	}
	if !got.Force || got.AssetsOnly {
		t.Fatalf("unexpected flags %#v", got)
	}
	if activeStubHandlers.opts.OutputDir != "public" {
		t.Fatalf("expected output override, got %q", activeStubHandlers.opts.OutputDir)
	}
	logOutput := buf.String()
	if !strings.Contains(logOutput, "module=static operation=build summary pages_built=1") {
		t.Fatalf("expected build summary log, got %q", logOutput)
	}
	if !strings.Contains(logOutput, `page=/draft locale=en skipped reason="no route"`) {
		t.Fatalf("expected skipped diagnostic log, got %q", logOutput)
	}
}

func TestRunBuild_AssetsOnlyLogsOperation(t *testing.T) {
	withStubModule(t)
	buf := captureLogs(t)

	if err := run([]string{"build", "--assets-only"}); err != nil {
		t.Fatalf("run build assets: %v", err)
	}
	if !activeStubHandlers.build.last.AssetsOnly {
		t.Fatal("expected AssetsOnly flag to be set")
	}
	if !strings.Contains(buf.String(), "module=static operation=build_assets summary") {
		t.Fatalf("expected build_assets log, got %q", buf.String())
	}
}

func TestRunBuild_RoutesOnly(t *testing.T) {
	withStubModule(t)
	buf := captureLogs(t)

	if err := run([]string{"build", "--routes-only"}); err != nil {
		t.Fatalf("run build routes: %v", err)
	}
	if !activeStubHandlers.build.last.RoutesOnly {
		t.Fatal("expected RoutesOnly flag to be set")
	}
	if !strings.Contains(buf.String(), "operation=build_routes summary pages_built=0 pages_skipped=0 assets_built=0 routes_built=2") {
		t.Fatalf("expected build_routes log, got %q", buf.String())
	}
}

func TestRunBuild_IncrementalFlag(t *testing.T) {
	withStubModule(t)
	captureLogs(t)

	if err := run([]string{"build", "--incremental", "--workers", "3"}); err != nil {
		t.Fatalf("run build: %v", err)
	}
	opts := activeStubHandlers.opts
	if opts.Incremental == nil || !*opts.Incremental || opts.Workers != 3 {
		t.Fatalf("unexpected module options %+v", opts.Options)
	}
}

func TestRunDiff_UsesCommandHandler(t *testing.T) {
	withStubModule(t)
	buf := captureLogs(t)

	if err := run([]string{"diff", "--force", "--locale", "fr"}); err != nil {
		t.Fatalf("run diff: %v", err)
	}

	got := activeStubHandlers.diff.last
	if !got.Force {
		t.Fatal("expected force flag to propagate")
	}
	if len(got.Locales) != 1 || got.Locales[0] != "fr" {
		t.Fatalf("expected locale fr, got %#v", got.Locales)
	}
	if !strings.Contains(buf.String(), "module=static operation=diff would_write=dist/about/index.html") {
		t.Fatalf("expected diff output log, got %q", buf.String())
	}
}

func TestRunClean_UsesCommandHandler(t *testing.T) {
	withStubModule(t)
	buf := captureLogs(t)

	if err := run([]string{"clean"}); err != nil {
		t.Fatalf("run clean: %v", err)
	}
	if activeStubHandlers.clean.calls != 1 {
		t.Fatalf("expected clean handler called once, got %d", activeStubHandlers.clean.calls)
	}
	if !strings.Contains(buf.String(), "module=static operation=clean") {
		t.Fatalf("expected clean log, got %q", buf.String())
	}
}

func TestRunRender_WriteLogsOutput(t *testing.T) {
	withStubModule(t)
	buf := captureLogs(t)

	if err := run([]string{"render", "--path", "/about", "--locale", "fr", "--write"}); err != nil {
		t.Fatalf("run render: %v", err)
	}
	got := activeStubHandlers.render.last
	if got.Path != "/about" || got.Locale != "fr" || !got.Write {
		t.Fatalf("unexpected render command %#v", got)
	}
	if !strings.Contains(buf.String(), "operation=render_write path=/about locale=fr") {
		t.Fatalf("expected render_write log, got %q", buf.String())
	}
}

func TestRun_ErrorsWhenHandlersMissing(t *testing.T) {
	original := moduleBuilder
	moduleBuilder = func(context.Context, moduleOptions) (*moduleResources, error) {
		return &moduleResources{}, nil
	}
	t.Cleanup(func() { moduleBuilder = original })

	err := run([]string{"build"})
	if err == nil || !strings.Contains(err.Error(), "not configured") {
		t.Fatalf("expected handler error, got %v", err)
	}
}

func TestRun_UnknownCommand(t *testing.T) {
	err := run([]string{"unknown"})
	if err == nil || !strings.Contains(err.Error(), "unknown subcommand") {
		t.Fatalf("expected unknown subcommand error, got %v", err)
	}
}

func TestRun_NoArgs(t *testing.T) {
	err := run([]string{})
	if err == nil || !strings.Contains(err.Error(), "missing subcommand") {
		t.Fatalf("expected missing subcommand error, got %v", err)
	}
}

func TestRunHandlersPropagateErrors(t *testing.T) {
	withStubModule(t)
	captureLogs(t)
	activeStubHandlers.build.err = errors.New("boom")

	err := run([]string{"build"})
	if err == nil || !strings.Contains(err.Error(), "boom") {
		t.Fatalf("expected propagated error, got %v", err)
	}
}

func TestWatcherRebuildsAfterChange(t *testing.T) {
	dir := t.TempDir()
	w, err := newWatcher([]string{dir, filepath.Join(dir, "missing")}, logging.NoOp())
	if err != nil {
		t.Fatalf("new watcher: %v", err)
	}
	defer w.Close()
	w.debounce = 10 * time.Millisecond

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	rebuilt := make(chan struct{}, 1)
	done := make(chan error, 1)
	go func() {
		done <- w.Run(ctx, func(context.Context) error {
			select {
			case rebuilt <- struct{}{}:
			default:
			}
			return nil
		})
	}()

	// Give the loop a moment to start before touching files.
	time.Sleep(20 * time.Millisecond)
	if err := os.WriteFile(filepath.Join(dir, "index.md"), []byte("# hi"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	select {
	case <-rebuilt:
	case <-ctx.Done():
		t.Fatal("expected rebuild after file change")
	}
	cancel()
	if err := <-done; err != nil {
		t.Fatalf("run: %v", err)
	}
}

func TestNewWatcherRequiresExistingRoot(t *testing.T) {
	if _, err := newWatcher([]string{filepath.Join(t.TempDir(), "nope")}, logging.NoOp()); err == nil {
		t.Fatal("expected error when no root exists")
	}
}
