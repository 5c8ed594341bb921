package staticcmd

import (
	"context"
	"encoding/json"
	"errors"
	"path/filepath"
	"slices"
	"testing"

	goerrors "github.com/goliatone/go-errors"

	"github.com/goliatone/go-pagebuilder/internal/generator"
	"github.com/goliatone/go-pagebuilder/internal/routes"
	"github.com/goliatone/go-pagebuilder/pkg/testsupport"
)

var open = Gate(func() bool { return true })

func TestBuildSiteHandlerNormalisesFilter(t *testing.T) {
	var cmd BuildSiteCommand
	loadFixture(t, "build_basic.json", &cmd)

	svc := &fakeGenerator{}
	var env ResultEnvelope
	cmd.ResultCallback = func(e ResultEnvelope) { env = e }

	if err := NewBuildSiteHandler(svc, nil, open).Execute(context.Background(), cmd); err != nil {
		t.Fatalf("execute: %v", err)
	}
	got := svc.lastBuild
	if !got.Force || got.DryRun {
		t.Fatalf("unexpected flags %+v", got)
	}
	if !slices.Equal(got.Paths, []string{"/about", "/pricing"}) {
		t.Fatalf("expected trimmed unique paths, got %v", got.Paths)
	}
	if !slices.Equal(got.Locales, []string{"en_US", "fr_FR"}) {
		t.Fatalf("expected case-insensitive locale dedupe, got %v", got.Locales)
	}
	if env.Metadata["operation"] != "build" || env.Result.PagesBuilt != 3 {
		t.Fatalf("unexpected envelope %+v", env)
	}
}

func TestBuildSiteHandlerScopes(t *testing.T) {
	cases := []struct {
		cmd       BuildSiteCommand
		operation string
		called    func(*fakeGenerator) bool
	}{
		{BuildSiteCommand{AssetsOnly: true}, "build_assets", func(f *fakeGenerator) bool { return f.assets }},
		{BuildSiteCommand{RoutesOnly: true}, "build_routes", func(f *fakeGenerator) bool { return f.routes }},
	}
	for _, tc := range cases {
		t.Run(tc.operation, func(t *testing.T) {
			svc := &fakeGenerator{}
			var operation any
			tc.cmd.ResultCallback = func(e ResultEnvelope) { operation = e.Metadata["operation"] }
			if err := NewBuildSiteHandler(svc, nil, open).Execute(context.Background(), tc.cmd); err != nil {
				t.Fatalf("execute: %v", err)
			}
			if !tc.called(svc) || operation != tc.operation {
				t.Fatalf("expected %s, got %v", tc.operation, operation)
			}
		})
	}
}

func TestBuildSiteHandlerDeliversPartialResultOnError(t *testing.T) {
	buildErr := errors.New("render failed")
	svc := &fakeGenerator{buildErr: buildErr}
	var env ResultEnvelope

	err := NewBuildSiteHandler(svc, nil, open).Execute(context.Background(), BuildSiteCommand{
		ResultCallback: func(e ResultEnvelope) { env = e },
	})
	if !errors.Is(err, buildErr) || !goerrors.IsCategory(err, goerrors.CategoryCommand) {
		t.Fatalf("expected categorised build error, got %v", err)
	}
	if env.Result == nil || len(env.Result.Errors) != 1 {
		t.Fatalf("expected partial result, got %+v", env.Result)
	}
}

func TestGeneratorHandlersRespectGate(t *testing.T) {
	closed := Gate(func() bool { return false })
	svc := &fakeGenerator{}
	ctx := context.Background()

	errs := []error{
		NewBuildSiteHandler(svc, nil, closed).Execute(ctx, BuildSiteCommand{}),
		NewDiffSiteHandler(svc, nil, nil).Execute(ctx, DiffSiteCommand{}),
		NewCleanSiteHandler(nil, nil, open).Execute(ctx, CleanSiteCommand{}),
	}
	for i, err := range errs {
		if !errors.Is(err, generator.ErrServiceDisabled) {
			t.Fatalf("handler %d: expected ErrServiceDisabled, got %v", i, err)
		}
	}
	if svc.cleaned {
		t.Fatal("clean must not run behind a closed gate")
	}
}

func TestDiffSiteHandlerForcesDryRun(t *testing.T) {
	var cmd DiffSiteCommand
	loadFixture(t, "diff_basic.json", &cmd)
	svc := &fakeGenerator{}
	var operation any
	cmd.ResultCallback = func(e ResultEnvelope) { operation = e.Metadata["operation"] }

	if err := NewDiffSiteHandler(svc, nil, open).Execute(context.Background(), cmd); err != nil {
		t.Fatalf("execute: %v", err)
	}
	if !svc.lastBuild.DryRun || !slices.Equal(svc.lastBuild.Locales, []string{"de_DE"}) {
		t.Fatalf("unexpected options %+v", svc.lastBuild)
	}
	if operation != "diff" {
		t.Fatalf("expected diff operation, got %v", operation)
	}
}

func TestCleanSiteHandler(t *testing.T) {
	svc := &fakeGenerator{}
	if err := NewCleanSiteHandler(svc, nil, open).Execute(context.Background(), CleanSiteCommand{}); err != nil {
		t.Fatalf("execute: %v", err)
	}
	if !svc.cleaned {
		t.Fatal("expected Clean")
	}
}

func TestRenderPageHandlerPreview(t *testing.T) {
	var cmd RenderPageCommand
	loadFixture(t, "render_about.json", &cmd)
	renderer := &fakeRenderer{html: "<!DOCTYPE html>\n<html></html>\n"}
	var env ResultEnvelope
	cmd.ResultCallback = func(e ResultEnvelope) { env = e }

	if err := NewRenderPageHandler(renderer, nil, nil).Execute(context.Background(), cmd); err != nil {
		t.Fatalf("execute: %v", err)
	}
	if renderer.target != "/about@fr_FR" {
		t.Fatalf("unexpected target %s", renderer.target)
	}
	if env.HTML != renderer.html || env.Metadata["operation"] != "render" {
		t.Fatalf("unexpected envelope %+v", env)
	}
}

func TestRenderPageHandlerWrite(t *testing.T) {
	var env ResultEnvelope
	err := NewRenderPageHandler(nil, &fakeGenerator{}, nil).Execute(context.Background(), RenderPageCommand{
		Path:           "/about",
		Write:          true,
		ResultCallback: func(e ResultEnvelope) { env = e },
	})
	if err != nil {
		t.Fatalf("execute: %v", err)
	}
	if env.Page == nil || env.Metadata["output"] != "dist/about/index.html" || env.Metadata["operation"] != "render_write" {
		t.Fatalf("unexpected envelope %+v", env)
	}
}

func TestRenderPageHandlerRequiresRenderer(t *testing.T) {
	err := NewRenderPageHandler(nil, nil, nil).Execute(context.Background(), RenderPageCommand{Path: "/"})
	if !errors.Is(err, ErrRendererRequired) {
		t.Fatalf("expected ErrRendererRequired, got %v", err)
	}
}

func TestCommandValidation(t *testing.T) {
	var blankLocale BuildSiteCommand
	loadFixture(t, "build_invalid_locale.json", &blankLocale)

	cases := map[string]interface{ Validate() error }{
		"render without path":   RenderPageCommand{},
		"blank locale":          blankLocale,
		"filtered assets build": BuildSiteCommand{AssetsOnly: true, Filter: Filter{Paths: []string{"/about"}}},
		"conflicting scopes":    BuildSiteCommand{AssetsOnly: true, RoutesOnly: true},
		"blank diff path":       DiffSiteCommand{Filter: Filter{Paths: []string{" "}}},
	}
	for name, msg := range cases {
		if err := msg.Validate(); err == nil {
			t.Fatalf("%s: expected validation error", name)
		}
	}
	if err := (BuildSiteCommand{RoutesOnly: true}).Validate(); err != nil {
		t.Fatalf("expected routes-only build to validate, got %v", err)
	}

	err := NewRenderPageHandler(&fakeRenderer{}, nil, nil).Execute(context.Background(), RenderPageCommand{})
	if !goerrors.IsCategory(err, goerrors.CategoryValidation) {
		t.Fatalf("expected validation category, got %v", err)
	}
}

func TestBuildSiteHandlerCronOptions(t *testing.T) {
	svc := &fakeGenerator{}
	h := NewBuildSiteHandler(svc, nil, open).WithCronExpression(" @daily ")
	if h.CronOptions().Expression != "@daily" {
		t.Fatalf("unexpected cron expression %q", h.CronOptions().Expression)
	}
	if err := h.CronHandler()(); err != nil {
		t.Fatalf("cron run: %v", err)
	}
	if svc.builds != 1 || len(svc.lastBuild.Paths) != 0 {
		t.Fatalf("expected one unfiltered build, got %d %+v", svc.builds, svc.lastBuild)
	}
}

func loadFixture(t *testing.T, name string, target any) {
	t.Helper()
	data, err := testsupport.LoadFixture(filepath.Join("testdata", name))
	if err != nil {
		t.Fatalf("read fixture %s: %v", name, err)
	}
	if err := json.Unmarshal(data, target); err != nil {
		t.Fatalf("decode fixture %s: %v", name, err)
	}
}

type fakeRenderer struct {
	html   string
	target string
}

func (f *fakeRenderer) RenderPage(_ context.Context, path, locale string) (string, error) {
	f.target = path + "@" + locale
	return f.html, nil
}

type fakeGenerator struct {
	lastBuild generator.BuildOptions
	builds    int
	buildErr  error
	assets    bool
	routes    bool
	cleaned   bool
}

func (f *fakeGenerator) Build(_ context.Context, opts generator.BuildOptions) (*generator.BuildResult, error) {
	f.builds++
	f.lastBuild = opts
	if f.buildErr != nil {
		return &generator.BuildResult{Errors: []error{f.buildErr}}, f.buildErr
	}
	return &generator.BuildResult{PagesBuilt: 3, DryRun: opts.DryRun}, nil
}

func (f *fakeGenerator) BuildPage(_ context.Context, path, locale string) (*generator.RenderedPage, error) {
	return &generator.RenderedPage{Path: path, Locale: locale, Output: "dist/about/index.html", HTML: "<html></html>"}, nil
}

func (f *fakeGenerator) BuildAssets(context.Context) (*generator.BuildResult, error) {
	f.assets = true
	return &generator.BuildResult{AssetsBuilt: 4}, nil
}

func (f *fakeGenerator) BuildRoutes(context.Context) (*generator.BuildResult, error) {
	f.routes = true
	return &generator.BuildResult{RoutesBuilt: 2}, nil
}

func (f *fakeGenerator) Clean(context.Context) error {
	f.cleaned = true
	return nil
}

func (f *fakeGenerator) RegisterRoutes(...routes.Provider) error { return nil }
