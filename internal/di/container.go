// Package di wires the page builder runtime from a site configuration.
package di

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"

	repocache "github.com/goliatone/go-repository-cache/cache"
	_ "github.com/mattn/go-sqlite3"
	prom "github.com/prometheus/client_golang/prometheus"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/dialect/sqlitedialect"

	"github.com/goliatone/go-pagebuilder/internal/assets"
	"github.com/goliatone/go-pagebuilder/internal/content"
	"github.com/goliatone/go-pagebuilder/internal/document"
	"github.com/goliatone/go-pagebuilder/internal/generator"
	"github.com/goliatone/go-pagebuilder/internal/logging"
	"github.com/goliatone/go-pagebuilder/internal/logging/gologger"
	"github.com/goliatone/go-pagebuilder/internal/markdown"
	"github.com/goliatone/go-pagebuilder/internal/routes"
	"github.com/goliatone/go-pagebuilder/internal/runtimeconfig"
	"github.com/goliatone/go-pagebuilder/internal/templates"
	"github.com/goliatone/go-pagebuilder/internal/themes"
	"github.com/goliatone/go-pagebuilder/pkg/interfaces"
	"github.com/goliatone/go-pagebuilder/pkg/storage"
)

// Storage drivers understood by the container.
const (
	DriverMemory   = "memory"
	DriverMarkdown = "markdown"
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// ErrContentDirRequired is returned when the markdown driver has no content directory.
var ErrContentDirRequired = errors.New("di: markdown driver requires paths.content")

// Container wires module dependencies.
type Container struct {
	Config runtimeconfig.Config

	loggerProvider interfaces.LoggerProvider
	logger         interfaces.Logger

	templatesFS fs.FS
	assetsFS    fs.FS
	contentFS   fs.FS
	themeLoader themes.ManifestLoader

	bunDB         *bun.DB
	ownsDB        bool
	cacheService  repocache.CacheService
	keySerializer repocache.KeySerializer

	store    content.Store
	memory   *content.MemoryStore
	bunStore *content.BunStore

	output     interfaces.StorageProvider
	registerer prom.Registerer
	metrics    generator.Recorder

	markdown  *markdown.Converter
	templates *templates.Registry
	catalog   *assets.Catalog
	selector  *themes.Selector
	inspector *routes.Inspector
	documents *document.Builder
	generator generator.Service
	providers []routes.Provider

	loadMu sync.Mutex
}

// Option mutates the container before it is finalised.
type Option func(*Container)

// WithLoggerProvider overrides the logger provider derived from config.
func WithLoggerProvider(provider interfaces.LoggerProvider) Option {
	return func(c *Container) {
		c.loggerProvider = provider
	}
}

// WithStore replaces the configured content store.
func WithStore(store content.Store) Option {
	return func(c *Container) {
		c.store = store
	}
}

// WithBunDB backs the content store with an existing bun database.
func WithBunDB(db *bun.DB) Option {
	return func(c *Container) {
		c.bunDB = db
	}
}

// WithCache overrides the repository cache used by bun stores.
func WithCache(service repocache.CacheService, serializer repocache.KeySerializer) Option {
	return func(c *Container) {
		c.cacheService = service
		c.keySerializer = serializer
	}
}

// WithStorage overrides the generator output storage.
func WithStorage(provider interfaces.StorageProvider) Option {
	return func(c *Container) {
		c.output = provider
	}
}

// WithTemplatesFS serves templates from fsys instead of Paths.Templates.
func WithTemplatesFS(fsys fs.FS) Option {
	return func(c *Container) {
		c.templatesFS = fsys
	}
}

// WithAssetsFS serves public assets from fsys instead of Paths.Assets.
func WithAssetsFS(fsys fs.FS) Option {
	return func(c *Container) {
		c.assetsFS = fsys
	}
}

// WithContentFS reads markdown content from fsys instead of Paths.Content.
func WithContentFS(fsys fs.FS) Option {
	return func(c *Container) {
		c.contentFS = fsys
	}
}

// WithThemeLoader overrides how theme manifests are read.
func WithThemeLoader(loader themes.ManifestLoader) Option {
	return func(c *Container) {
		c.themeLoader = loader
	}
}

// WithMetricsRegisterer exports generator metrics through reg.
func WithMetricsRegisterer(reg prom.Registerer) Option {
	return func(c *Container) {
		c.registerer = reg
	}
}

// NewContainer validates cfg and wires every service.
func NewContainer(cfg runtimeconfig.Config, opts ...Option) (*Container, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	c := &Container{Config: cfg}
	for _, opt := range opts {
		opt(c)
	}

	if err := c.configureLogger(); err != nil {
		return nil, err
	}
	c.configureFilesystems()
	c.configureCacheDefaults()
	if err := c.configureStore(); err != nil {
		return nil, err
	}
	if err := c.configureOutput(); err != nil {
		return nil, err
	}
	c.configureRendering()
	c.configureGenerator()
	return c, nil
}

func (c *Container) configureLogger() error {
	if c.loggerProvider == nil {
		switch strings.ToLower(strings.TrimSpace(c.Config.Logging.Provider)) {
		case "gologger", "":
			provider, err := gologger.NewProvider(gologger.FromRuntime(c.Config.Logging, c.Config.Site.Environment))
			if err != nil {
				return err
			}
			c.loggerProvider = provider
		}
	}
	c.logger = logging.ModuleLogger(c.loggerProvider, logging.Root)
	return nil
}

func (c *Container) configureFilesystems() {
	if c.templatesFS == nil {
		c.templatesFS = dirFS(c.Config.Paths.Templates)
	}
	if c.assetsFS == nil {
		c.assetsFS = dirFS(c.Config.Paths.Assets)
	}
	if c.contentFS == nil {
		c.contentFS = dirFS(c.Config.Paths.Content)
	}
	if c.themeLoader == nil {
		c.themeLoader = themes.FSManifestLoader{}
	}
}

func (c *Container) configureCacheDefaults() {
	if c.Config.Storage.CacheTTL <= 0 {
		return
	}
	if c.cacheService == nil {
		cfg := repocache.DefaultConfig()
		cfg.TTL = c.Config.Storage.CacheTTL
		service, err := repocache.NewCacheService(cfg)
		if err == nil {
			c.cacheService = service
		}
	}
	if c.cacheService != nil && c.keySerializer == nil {
		c.keySerializer = repocache.NewDefaultKeySerializer()
	}
}

func (c *Container) configureStore() error {
	if c.store != nil {
		if memory, ok := c.store.(*content.MemoryStore); ok {
			c.memory = memory
		}
		return nil
	}

	driver := strings.ToLower(strings.TrimSpace(c.Config.Storage.Driver))
	if c.bunDB == nil && (driver == DriverSQLite || driver == DriverPostgres) {
		db, err := OpenBunDB(driver, c.Config.Storage.DSN)
		if err != nil {
			return err
		}
		c.bunDB = db
		c.ownsDB = true
	}
	if c.bunDB != nil {
		c.bunStore = content.NewBunStoreWithCache(c.bunDB, c.cacheService, c.keySerializer)
		c.store = c.bunStore
		return nil
	}

	c.memory = content.NewMemoryStore()
	c.store = c.memory
	return nil
}

// OpenBunDB opens a bun database for driver. The postgres SQL driver must be
// registered by the host program.
func OpenBunDB(driver, dsn string) (*bun.DB, error) {
	switch driver {
	case DriverSQLite:
		if strings.TrimSpace(dsn) == "" {
			dsn = "file::memory:?cache=shared"
		}
		sqldb, err := sql.Open("sqlite3", dsn)
		if err != nil {
			return nil, fmt.Errorf("di: open sqlite: %w", err)
		}
		return bun.NewDB(sqldb, sqlitedialect.New()), nil
	case DriverPostgres:
		sqldb, err := sql.Open("postgres", dsn)
		if err != nil {
			return nil, fmt.Errorf("di: open postgres: %w", err)
		}
		return bun.NewDB(sqldb, pgdialect.New()), nil
	default:
		return nil, fmt.Errorf("di: unsupported database driver %q", driver)
	}
}

func (c *Container) configureOutput() error {
	if c.output != nil {
		return nil
	}
	outputDir := strings.TrimSpace(c.Config.Generator.OutputDir)
	provider, err := storage.NewFromConfig(storage.Config{
		Name:   "output",
		Driver: "filesystem",
		DSN:    outputDir,
	}, outputDir)
	if err != nil {
		return err
	}
	c.output = provider
	return nil
}

func (c *Container) configureRendering() {
	c.markdown = markdown.NewConverter(markdown.ConvertOptions{
		Extensions: c.Config.Markdown.Extensions,
		HardWraps:  c.Config.Markdown.HardWraps,
		EscapeHTML: c.Config.Markdown.EscapeHTML,
	})
	c.templates = templates.NewDefaultRegistry(c.templatesFS, c.markdown)
	c.catalog = assets.NewCatalog(c.assetsFS, c.Config.Paths.AssetsURLPrefix)
	c.inspector = routes.NewInspector(c.Config)

	opts := []document.Option{
		document.WithAssets(c.catalog),
		document.WithStore(c.store),
		document.WithInspectorAssets(c.inspector),
		document.WithLogger(logging.ModuleLogger(c.loggerProvider, logging.Document)),
	}
	if c.Config.Theme.Enabled() {
		c.selector = themes.NewSelector(c.Config.Theme, c.themeLoader)
		opts = append(opts, document.WithThemes(c.selector))
	}
	c.documents = document.NewBuilder(c.Config, c.templates, opts...)

	c.providers = []routes.Provider{
		routes.NewSitemap(c.Config, c.store),
		routes.NewRobots(c.Config),
		routes.NewPreview(c.Config, c.templatesFS, c.documents),
		c.inspector,
	}
}

func (c *Container) configureGenerator() {
	c.metrics = generator.NoopRecorder{}
	if c.registerer != nil {
		c.metrics = generator.NewPrometheusRecorder(c.registerer)
	}
	c.generator = generator.NewService(generator.ConfigFrom(c.Config), generator.Dependencies{
		Store:     c.store,
		Documents: c.documents,
		Storage:   c.output,
		Assets:    c.catalog,
		Templates: c.templatesFS,
		Routes:    c.providers,
		Metrics:   c.metrics,
		Logger:    logging.ModuleLogger(c.loggerProvider, logging.Generator),
	})
}

// Load prepares content: it migrates bun stores and, for the markdown
// driver, reloads the content directory into memory.
func (c *Container) Load(ctx context.Context) error {
	c.loadMu.Lock()
	defer c.loadMu.Unlock()

	if c.bunStore != nil {
		if err := c.bunStore.Migrate(ctx); err != nil {
			return err
		}
	}
	if !strings.EqualFold(strings.TrimSpace(c.Config.Storage.Driver), DriverMarkdown) || c.memory == nil {
		return nil
	}
	if c.contentFS == nil {
		return ErrContentDirRequired
	}
	c.memory.Reset()
	c.catalog.Reset()
	loader := markdown.NewLoader(c.contentFS, markdown.LoaderConfig{
		DefaultLocale: c.Config.Site.DefaultLocale,
		Locales:       c.Config.SiteLocales(),
		Converter:     c.markdown,
	})
	result, err := loader.Load(ctx, c.memory)
	if err != nil {
		return err
	}
	logging.ModuleLogger(c.loggerProvider, logging.Content).Info("content.markdown.loaded",
		"pages", result.Pages,
		"collections", result.Collections,
	)
	return nil
}

// Close releases resources the container opened itself.
func (c *Container) Close() error {
	if c.ownsDB && c.bunDB != nil {
		return c.bunDB.Close()
	}
	return nil
}

// Logger returns the root logger.
func (c *Container) Logger() interfaces.Logger { return c.logger }

// LoggerProvider returns the configured logger provider.
func (c *Container) LoggerProvider() interfaces.LoggerProvider { return c.loggerProvider }

// Store returns the content store.
func (c *Container) Store() content.Store { return c.store }

// Writer returns the content store as a writer when it supports writes.
func (c *Container) Writer() (content.Writer, bool) {
	writer, ok := c.store.(content.Writer)
	return writer, ok
}

// Documents returns the document builder.
func (c *Container) Documents() *document.Builder { return c.documents }

// Generator returns the static site generator.
func (c *Container) Generator() generator.Service { return c.generator }

// RouteProviders returns the peripheral route providers.
func (c *Container) RouteProviders() []routes.Provider {
	return append([]routes.Provider(nil), c.providers...)
}

// Catalog returns the asset catalog.
func (c *Container) Catalog() *assets.Catalog { return c.catalog }

// Templates returns the partial template registry.
func (c *Container) Templates() *templates.Registry { return c.templates }

// StorageProvider returns the generator output storage.
func (c *Container) StorageProvider() interfaces.StorageProvider { return c.output }

func dirFS(dir string) fs.FS {
	dir = strings.TrimSpace(dir)
	if dir == "" {
		return nil
	}
	return os.DirFS(filepath.Clean(dir))
}
