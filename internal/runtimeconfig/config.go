package runtimeconfig

import (
	"errors"
	"fmt"
	"os"
	"slices"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
	"gopkg.in/yaml.v3"

	"github.com/goliatone/go-pagebuilder/internal/resources"
	"github.com/goliatone/go-pagebuilder/internal/themes"
)

var ErrDefaultLocaleRequired = errors.New("pagebuilder config: default locale is required")
var ErrInspectorModeInvalid = errors.New("pagebuilder config: inspector mode is invalid")
var ErrPartialPathTemplateInvalid = errors.New("pagebuilder config: partial path templates must contain {name}")
var ErrGeneratorOutputDirRequired = errors.New("pagebuilder config: generator output directory is required")
var ErrStorageDriverUnknown = errors.New("pagebuilder config: storage driver is invalid")
var ErrLoggingProviderUnknown = errors.New("pagebuilder config: logging provider is invalid")
var ErrLoggingLevelInvalid = errors.New("pagebuilder config: logging level is invalid")
var ErrLoggingFormatInvalid = errors.New("pagebuilder config: logging format is invalid")

// NamePlaceholder is substituted with the partial name in path templates.
const NamePlaceholder = "{name}"

// Inspector modes.
const (
	InspectorAuto = "auto"
	InspectorOn   = "on"
	InspectorOff  = "off"
)

// ResourceSpec declares a global stylesheet or script.
type ResourceSpec = resources.Spec

// ThemeConfig selects the go-theme manifest applied to documents.
type ThemeConfig = themes.Config

// Config is the immutable site configuration read during document builds.
type Config struct {
	Site      SiteConfig      `yaml:"site"`
	Paths     PathsConfig     `yaml:"paths"`
	Head      HeadConfig      `yaml:"head"`
	Body      BodyConfig      `yaml:"body"`
	Partials  PartialsConfig  `yaml:"partials"`
	Inspector InspectorConfig `yaml:"inspector"`
	Theme     ThemeConfig     `yaml:"theme"`
	// Beautify reindents the output unless explicitly set to false.
	Beautify  *bool           `yaml:"beautify,omitempty"`
	Sitemap   SitemapConfig   `yaml:"sitemap"`
	Robots    RobotsConfig    `yaml:"robots"`
	Preview   PreviewConfig   `yaml:"preview"`
	Generator GeneratorConfig `yaml:"generator"`
	Storage   StorageConfig   `yaml:"storage"`
	Logging   LoggingConfig   `yaml:"logging"`
	Markdown  MarkdownConfig  `yaml:"markdown"`
}

// SiteConfig describes the site a page belongs to.
type SiteConfig struct {
	Name          string   `yaml:"name"`
	BaseURL       string   `yaml:"base_url"`
	DefaultLocale string   `yaml:"default_locale"`
	Locales       []string `yaml:"locales"`
	// Environment is matched by the inspector "auto" mode.
	Environment string `yaml:"environment"`
	// RelativeURLs rewrites resource URLs relative to each page route.
	RelativeURLs bool `yaml:"relative_urls"`
}

// PathsConfig locates templates, assets and markdown content.
type PathsConfig struct {
	Templates       string `yaml:"templates"`
	Assets          string `yaml:"assets"`
	AssetsURLPrefix string `yaml:"assets_url_prefix"`
	Content         string `yaml:"content"`
}

// HeadConfig holds head defaults. Page fields of the same name override the
// optional metadata values.
type HeadConfig struct {
	Description string         `yaml:"description"`
	Image       string         `yaml:"image"`
	ThemeColor  string         `yaml:"theme_color"`
	Icon        string         `yaml:"icon"`
	TwitterSite string         `yaml:"twitter_site"`
	NoIndex     bool           `yaml:"noindex"`
	Stylesheets []ResourceSpec `yaml:"stylesheets"`
	Scripts     []ResourceSpec `yaml:"scripts"`
	// Fragments are template paths or globs rendered at the end of the head.
	Fragments []string `yaml:"fragments"`
}

// BodyConfig shapes the body shell.
type BodyConfig struct {
	// Class is a template string rendered against the page context.
	Class   string   `yaml:"class"`
	Prepend []string `yaml:"prepend"`
	Append  []string `yaml:"append"`
}

// PartialsConfig holds the path templates used to locate partial files.
type PartialsConfig struct {
	ViewPath       string `yaml:"view_path"`
	StylesheetPath string `yaml:"stylesheet_path"`
	ScriptPath     string `yaml:"script_path"`
	SchemaPath     string `yaml:"schema_path"`
	Header         string `yaml:"header"`
	Footer         string `yaml:"footer"`
}

// InspectorConfig controls developer inspector injection.
type InspectorConfig struct {
	Mode         string   `yaml:"mode"`
	Environments []string `yaml:"environments"`
	BasePath     string   `yaml:"base_path"`
}

// SitemapConfig configures the sitemap route.
type SitemapConfig struct {
	Enabled bool   `yaml:"enabled"`
	Path    string `yaml:"path"`
}

// RobotsConfig configures the robots.txt route.
type RobotsConfig struct {
	Enabled  bool     `yaml:"enabled"`
	Path     string   `yaml:"path"`
	Disallow []string `yaml:"disallow"`
}

// PreviewConfig configures the partial preview gallery.
type PreviewConfig struct {
	Enabled  bool   `yaml:"enabled"`
	BasePath string `yaml:"base_path"`
	Pattern  string `yaml:"pattern"`
}

// GeneratorConfig captures behaviour for the static site generator.
type GeneratorConfig struct {
	OutputDir     string        `yaml:"output_dir"`
	Workers       int           `yaml:"workers"`
	CleanBuild    bool          `yaml:"clean_build"`
	Incremental   bool          `yaml:"incremental"`
	CopyAssets    bool          `yaml:"copy_assets"`
	RenderTimeout time.Duration `yaml:"render_timeout"`
}

// StorageConfig selects the content store.
type StorageConfig struct {
	// Driver is "memory", "markdown" (loads Paths.Content into memory),
	// "sqlite" or "postgres".
	Driver   string        `yaml:"driver"`
	DSN      string        `yaml:"dsn"`
	CacheTTL time.Duration `yaml:"cache_ttl"`
}

// MarkdownConfig tunes how page bodies and the markdown template func are
// converted.
type MarkdownConfig struct {
	// Extensions lists goldmark extensions by name. Empty keeps gfm, linkify
	// and tasklist.
	Extensions []string `yaml:"extensions"`
	HardWraps  bool     `yaml:"hard_wraps"`
	EscapeHTML bool     `yaml:"escape_html"`
}

// LoggingConfig captures provider-specific options for runtime logging.
type LoggingConfig struct {
	Provider  string   `yaml:"provider"`
	Level     string   `yaml:"level"`
	Format    string   `yaml:"format"`
	AddSource bool     `yaml:"add_source"`
	Focus     []string `yaml:"focus"`
}

// DefaultConfig returns the defaults used when no configuration file sets a
// value.
func DefaultConfig() Config {
	return Config{
		Site: SiteConfig{
			DefaultLocale: "en",
			Locales:       []string{"en"},
			Environment:   "production",
		},
		Paths: PathsConfig{
			Templates:       "templates",
			Assets:          "assets",
			AssetsURLPrefix: "/",
			Content:         "content",
		},
		Partials: PartialsConfig{
			ViewPath:       "partials/{name}.html",
			StylesheetPath: "/dist/css/partials/{name}.css",
			ScriptPath:     "/dist/js/partials/{name}.js",
			SchemaPath:     "partials/{name}.schema.json",
			Header:         "header",
			Footer:         "footer",
		},
		Inspector: InspectorConfig{
			Mode:         InspectorAuto,
			Environments: []string{"development", "staging"},
			BasePath:     "/_pagebuilder/inspector",
		},
		Sitemap: SitemapConfig{Enabled: true, Path: "/sitemap.xml"},
		Robots:  RobotsConfig{Enabled: true, Path: "/robots.txt"},
		Preview: PreviewConfig{
			BasePath: "/_pagebuilder/preview",
			Pattern:  "partials/*.html",
		},
		Generator: GeneratorConfig{
			OutputDir:  "dist",
			CleanBuild: true,
			CopyAssets: true,
		},
		Storage: StorageConfig{Driver: "memory", CacheTTL: time.Minute},
		Logging: LoggingConfig{
			Provider: "gologger",
			Level:    "info",
		},
	}
}

// LoadFile reads a YAML configuration file over DefaultConfig and validates
// the result.
func LoadFile(path string) (Config, error) {
	cfg := DefaultConfig()
	raw, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("pagebuilder config: read %s: %w", path, err)
	}
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return cfg, fmt.Errorf("pagebuilder config: decode %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// BeautifyEnabled reports whether output is reindented.
func (cfg Config) BeautifyEnabled() bool {
	return cfg.Beautify == nil || *cfg.Beautify
}

// InspectorEnabled applies the inspector rule to the site environment.
func (cfg Config) InspectorEnabled() bool {
	switch normalize(cfg.Inspector.Mode) {
	case InspectorOn:
		return true
	case InspectorOff:
		return false
	default:
		env := normalize(cfg.Site.Environment)
		return env != "" && slices.ContainsFunc(cfg.Inspector.Environments, func(candidate string) bool {
			return normalize(candidate) == env
		})
	}
}

// SiteLocales returns the configured locales in order, with the default
// locale first when it was not listed.
func (cfg Config) SiteLocales() []string {
	defaultLocale := strings.TrimSpace(cfg.Site.DefaultLocale)
	out := make([]string, 0, len(cfg.Site.Locales)+1)
	seen := map[string]struct{}{}
	for _, locale := range cfg.Site.Locales {
		locale = strings.TrimSpace(locale)
		if locale == "" {
			continue
		}
		if _, ok := seen[locale]; ok {
			continue
		}
		seen[locale] = struct{}{}
		out = append(out, locale)
	}
	if _, ok := seen[defaultLocale]; !ok && defaultLocale != "" {
		out = append([]string{defaultLocale}, out...)
	}
	return out
}

// PartialPath interpolates a partial path template.
func PartialPath(template, name string) string {
	return strings.ReplaceAll(template, NamePlaceholder, name)
}

// Validate performs high-level consistency checks.
func (cfg Config) Validate() error {
	if strings.TrimSpace(cfg.Site.DefaultLocale) == "" {
		return ErrDefaultLocaleRequired
	}
	switch normalize(cfg.Inspector.Mode) {
	case "", InspectorAuto, InspectorOn, InspectorOff:
	default:
		return fmt.Errorf("%w: %s", ErrInspectorModeInvalid, cfg.Inspector.Mode)
	}
	if !strings.Contains(cfg.Partials.ViewPath, NamePlaceholder) {
		return fmt.Errorf("%w: view_path %q", ErrPartialPathTemplateInvalid, cfg.Partials.ViewPath)
	}
	if strings.TrimSpace(cfg.Generator.OutputDir) == "" {
		return ErrGeneratorOutputDirRequired
	}
	switch normalize(cfg.Storage.Driver) {
	case "", "memory", "markdown", "sqlite", "postgres":
	default:
		return fmt.Errorf("%w: %s", ErrStorageDriverUnknown, cfg.Storage.Driver)
	}
	if err := cfg.validateLogging(); err != nil {
		return err
	}

	return validation.ValidateStruct(&cfg,
		validation.Field(&cfg.Site),
		validation.Field(&cfg.Head),
		validation.Field(&cfg.Generator),
	)
}

// Validate implements validation.Validatable.
func (s SiteConfig) Validate() error {
	return validation.ValidateStruct(&s,
		validation.Field(&s.BaseURL, is.URL),
		validation.Field(&s.Locales, validation.Each(validation.By(func(value any) error {
			if locale, _ := value.(string); strings.TrimSpace(locale) == "" {
				return validation.NewError("pagebuilder.config.locale_invalid", "locales must not contain empty values")
			}
			return nil
		}))),
	)
}

// Validate implements validation.Validatable.
func (h HeadConfig) Validate() error {
	return validation.ValidateStruct(&h,
		validation.Field(&h.Stylesheets, validation.Each(validation.By(validateResourceSpec))),
		validation.Field(&h.Scripts, validation.Each(validation.By(validateResourceSpec))),
	)
}

// Validate implements validation.Validatable.
func (g GeneratorConfig) Validate() error {
	return validation.ValidateStruct(&g,
		validation.Field(&g.Workers, validation.Min(0)),
		validation.Field(&g.RenderTimeout, validation.Min(time.Duration(0))),
	)
}

func validateResourceSpec(value any) error {
	spec, ok := value.(ResourceSpec)
	if !ok {
		return nil
	}
	if strings.TrimSpace(spec.Asset) == "" && strings.TrimSpace(spec.Href) == "" {
		return validation.NewError("pagebuilder.config.resource_invalid", "resources must declare an asset or an href")
	}
	return nil
}

func (cfg Config) validateLogging() error {
	provider := normalize(cfg.Logging.Provider)
	switch provider {
	case "", "gologger", "noop":
	default:
		return fmt.Errorf("%w: %s", ErrLoggingProviderUnknown, provider)
	}
	if level := strings.TrimSpace(cfg.Logging.Level); level != "" && !isSupportedLevel(level) {
		return fmt.Errorf("%w: %s", ErrLoggingLevelInvalid, level)
	}
	if format := strings.TrimSpace(cfg.Logging.Format); format != "" && !isSupportedFormat(format) {
		return fmt.Errorf("%w: %s", ErrLoggingFormatInvalid, format)
	}
	return nil
}

func normalize(value string) string {
	return strings.ToLower(strings.TrimSpace(value))
}

func isSupportedLevel(level string) bool {
	switch normalize(level) {
	case "trace", "debug", "info", "warn", "warning", "error", "fatal":
		return true
	default:
		return false
	}
}

func isSupportedFormat(format string) bool {
	switch normalize(format) {
	case "json", "console", "pretty":
		return true
	default:
		return false
	}
}
