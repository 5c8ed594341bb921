package pagebuilder

import (
	"context"
	"errors"
	"strings"

	"github.com/goliatone/go-pagebuilder/internal/content"
	"github.com/goliatone/go-pagebuilder/internal/di"
	"github.com/goliatone/go-pagebuilder/internal/generator"
	"github.com/goliatone/go-pagebuilder/internal/routes"
)

// ErrSiteRequired is returned by Register when no site is supplied.
var ErrSiteRequired = errors.New("pagebuilder: site is required")

// Page exports the content page model.
type Page = content.Page

// Collection exports the collection model holding page defaults.
type Collection = content.Collection

// Store exports the read side of the content store.
type Store = content.Store

// Writer exports the write side of the content store.
type Writer = content.Writer

// GeneratorService exports the static site generator contract.
type GeneratorService = generator.Service

// BuildOptions exports generator build options.
type BuildOptions = generator.BuildOptions

// BuildResult exports the generator build summary.
type BuildResult = generator.BuildResult

// Route exports a peripheral route served or written by the host.
type Route = routes.Route

// RouteProvider exports the route provider contract.
type RouteProvider = routes.Provider

// Option exports container overrides accepted by New.
type Option = di.Option

var (
	WithStore             = di.WithStore
	WithBunDB             = di.WithBunDB
	WithCache             = di.WithCache
	WithStorage           = di.WithStorage
	WithTemplatesFS       = di.WithTemplatesFS
	WithAssetsFS          = di.WithAssetsFS
	WithContentFS         = di.WithContentFS
	WithThemeLoader       = di.WithThemeLoader
	WithLoggerProvider    = di.WithLoggerProvider
	WithMetricsRegisterer = di.WithMetricsRegisterer
)

// PageRenderer renders a stored page into a complete HTML document.
type PageRenderer interface {
	RenderPage(ctx context.Context, path, locale string) (string, error)
}

// Site is the host integration point: it serves pages through the default
// renderer and exposes peripheral routes.
type Site interface {
	SetPageRenderer(renderer PageRenderer)
	RegisterRoutes(providers ...RouteProvider) error
}

// Module represents the top level page builder runtime façade.
type Module struct {
	container *di.Container
}

// New constructs a page builder module using the provided configuration and
// optional container overrides.
func New(cfg Config, opts ...Option) (*Module, error) {
	container, err := di.NewContainer(cfg, opts...)
	if err != nil {
		return nil, err
	}
	return &Module{container: container}, nil
}

// Container exposes the underlying DI container for advanced integrations.
func (m *Module) Container() *di.Container {
	return m.container
}

// Config returns the site configuration the module was built with.
func (m *Module) Config() Config {
	return m.container.Config
}

// Load prepares the content store. Call it again to reload markdown content.
func (m *Module) Load(ctx context.Context) error {
	return m.container.Load(ctx)
}

// Close releases resources opened by the module.
func (m *Module) Close() error {
	if m == nil || m.container == nil {
		return nil
	}
	return m.container.Close()
}

// Store returns the configured content store.
func (m *Module) Store() Store {
	return m.container.Store()
}

// Writer returns the content store writer when the store accepts writes.
func (m *Module) Writer() (Writer, bool) {
	return m.container.Writer()
}

// Generator returns the static site generator.
func (m *Module) Generator() GeneratorService {
	return m.container.Generator()
}

// Routes returns the peripheral route providers: sitemap, robots, preview
// gallery and inspector assets.
func (m *Module) Routes() []RouteProvider {
	return m.container.RouteProviders()
}

// RegisterTemplateFilter makes fn callable from partial templates as
// {{ name .value param }}.
func (m *Module) RegisterTemplateFilter(name string, fn func(input any, param any) (any, error)) error {
	return m.container.Templates().RegisterFilter(name, fn)
}

// SetTemplateGlobals sets the value partial templates read through {{ global }}.
func (m *Module) SetTemplateGlobals(data any) {
	m.container.Templates().SetGlobals(data)
}

// BuildDocument renders page into a complete HTML document. renderCtx is
// merged into the template data of every partial.
func (m *Module) BuildDocument(ctx context.Context, page *Page, renderCtx map[string]any) (string, error) {
	return m.container.Documents().Build(ctx, page, renderCtx)
}

// RenderPage loads the page at path in locale and renders it. An empty
// locale selects the site default.
func (m *Module) RenderPage(ctx context.Context, path, locale string) (string, error) {
	if strings.TrimSpace(locale) == "" {
		locale = m.container.Config.Site.DefaultLocale
	}
	page, err := m.container.Store().Page(ctx, path, locale)
	if err != nil {
		return "", err
	}
	return m.BuildDocument(ctx, page, nil)
}

// Register makes m the default page renderer of site and registers the
// module's route providers with it.
func Register(site Site, m *Module) error {
	if site == nil {
		return ErrSiteRequired
	}
	if m == nil || m.container == nil {
		return errors.New("pagebuilder: module is required")
	}
	site.SetPageRenderer(m)
	return site.RegisterRoutes(m.Routes()...)
}
