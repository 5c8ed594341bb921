// Package document assembles complete HTML documents from a page, its
// collection defaults and its partial modules.
//
// A Builder is long lived and safe for concurrent use. Every Build call
// creates its own buildState, which owns the resource registry for that one
// document; no registry is shared across builds.
package document

import (
	"context"
	"errors"
	"fmt"
	"html"
	"io/fs"
	"maps"
	"strings"
	"time"

	"github.com/goliatone/go-pagebuilder/internal/content"
	"github.com/goliatone/go-pagebuilder/internal/fields"
	"github.com/goliatone/go-pagebuilder/internal/logging"
	"github.com/goliatone/go-pagebuilder/internal/partials"
	"github.com/goliatone/go-pagebuilder/internal/resources"
	"github.com/goliatone/go-pagebuilder/internal/runtimeconfig"
	"github.com/goliatone/go-pagebuilder/internal/themes"
	"github.com/goliatone/go-pagebuilder/pkg/interfaces"
)

// ErrPageRequired is returned when Build receives a nil page.
var ErrPageRequired = errors.New("document: page is required")

// FieldThemeVariant selects the theme variant for a page.
const FieldThemeVariant = "theme_variant"

// Templates renders partials and fragments. *templates.Registry satisfies
// it.
type Templates interface {
	partials.Templates
	FS() fs.FS
}

// ThemeSelector resolves the theme selection for a variant. *themes.Selector
// satisfies it.
type ThemeSelector interface {
	Select(variant string) (*themes.Selection, error)
}

// InspectorAssets lists the inspector support scripts in load order.
type InspectorAssets interface {
	ScriptURLs() []string
}

// Builder renders documents for one site configuration.
type Builder struct {
	cfg       runtimeconfig.Config
	templates Templates
	assets    resources.AssetLookup
	store     content.Store
	themes    ThemeSelector
	inspector InspectorAssets
	partials  *partials.Renderer
	logger    interfaces.Logger
}

// Option customises a Builder.
type Option func(*Builder)

// WithAssets sets the catalog used for fingerprints and conventional
// partial resources.
func WithAssets(lookup resources.AssetLookup) Option {
	return func(b *Builder) { b.assets = lookup }
}

// WithStore sets the content store used to resolve locale siblings.
func WithStore(store content.Store) Option {
	return func(b *Builder) { b.store = store }
}

// WithThemes sets the theme selector.
func WithThemes(selector ThemeSelector) Option {
	return func(b *Builder) { b.themes = selector }
}

// WithInspectorAssets sets the inspector support scripts.
func WithInspectorAssets(assets InspectorAssets) Option {
	return func(b *Builder) { b.inspector = assets }
}

// WithLogger sets the builder logger.
func WithLogger(logger interfaces.Logger) Option {
	return func(b *Builder) {
		if logger != nil {
			b.logger = logger
		}
	}
}

// NewBuilder wires a builder over the site configuration and templates.
func NewBuilder(cfg runtimeconfig.Config, templates Templates, opts ...Option) *Builder {
	b := &Builder{
		cfg:       cfg,
		templates: templates,
		logger:    logging.NoOp(),
	}
	for _, opt := range opts {
		opt(b)
	}
	var catalog partials.AssetCatalog
	if b.assets != nil {
		catalog = b.assets
	}
	b.partials = partials.NewRenderer(cfg.Partials, templates, catalog, partials.WithLogger(b.logger))
	return b
}

// Config returns the site configuration.
func (b *Builder) Config() runtimeconfig.Config {
	return b.cfg
}

// buildState is the per-document state passed down the assembly.
type buildState struct {
	page       *content.Page
	fields     fields.Resolver
	resolver   resources.Resolver
	urlOptions resources.URLOptions
	dedup      *resources.Deduplicator
	partial    partials.Build
	theme      *themes.Selection
	inspector  bool
	pageURL    string
	data       map[string]any
}

// Build renders page as a complete HTML document. renderCtx is exposed to
// every template alongside the page, site and theme data.
func (b *Builder) Build(ctx context.Context, page *content.Page, renderCtx map[string]any) (string, error) {
	if page == nil {
		return "", ErrPageRequired
	}
	started := time.Now()
	logger := logging.WithPageContext(b.logger.WithContext(ctx), page.Path, page.Locale)
	logger.Debug("document.build.start")
	if !ValidLang(page.Locale) {
		logger.Warn("document.lang.invalid", "lang", Lang(page.Locale))
	}

	state, err := b.newState(page, renderCtx)
	if err != nil {
		logger.Error("document.build.failed", "error", err)
		return "", err
	}

	head, err := b.head(ctx, state)
	if err != nil {
		logger.Error("document.build.failed", "stage", "head", "error", err)
		return "", err
	}
	body, err := b.body(ctx, state)
	if err != nil {
		logger.Error("document.build.failed", "stage", "body", "error", err)
		return "", err
	}

	var out strings.Builder
	out.WriteString("<!DOCTYPE html>\n")
	fmt.Fprintf(&out, `<html lang="%s">`+"\n", html.EscapeString(Lang(page.Locale)))
	out.WriteString(head)
	out.WriteString("\n")
	out.WriteString(body)
	out.WriteString("\n</html>\n")

	doc := StripBlankLines(out.String())
	if b.cfg.BeautifyEnabled() {
		doc = Beautify(doc)
	}

	logger.Debug("document.build.completed",
		"resources", state.dedup.Registry.Len(),
		"duration", time.Since(started),
	)
	return doc, nil
}

func (b *Builder) newState(page *content.Page, renderCtx map[string]any) (*buildState, error) {
	resolver := fields.NewResolver(page.Fields, page.CollectionFields())

	var selection *themes.Selection
	if b.themes != nil {
		variant, _ := resolver.String(FieldThemeVariant)
		selected, err := b.themes.Select(variant)
		if err != nil {
			return nil, err
		}
		selection = selected
	}

	urlResolver := resources.Resolver{BaseURL: b.cfg.Site.BaseURL, Route: page.Route}
	urlOptions := resources.URLOptions{Relative: b.cfg.Site.RelativeURLs}
	dedup := resources.NewDeduplicator(urlResolver, urlOptions)
	inspector := b.cfg.InspectorEnabled()

	state := &buildState{
		page:       page,
		fields:     resolver,
		resolver:   urlResolver,
		urlOptions: urlOptions,
		dedup:      dedup,
		theme:      selection,
		inspector:  inspector,
		partial: partials.Build{
			Emitter:   dedup,
			Theme:     selection,
			Inspector: inspector,
		},
	}
	if page.HasRoute() {
		state.pageURL = urlResolver.AbsoluteURL(page.Route)
	}
	state.data = b.renderData(state, renderCtx)
	return state, nil
}

func (b *Builder) renderData(state *buildState, renderCtx map[string]any) map[string]any {
	data := maps.Clone(renderCtx)
	if data == nil {
		data = map[string]any{}
	}
	page := state.page
	data["page"] = map[string]any{
		"id":     page.ID.String(),
		"path":   page.Path,
		"locale": page.Locale,
		"route":  page.Route,
		"url":    state.pageURL,
	}
	data["fields"] = state.fields.Merged()
	data["site"] = map[string]any{
		"name":           b.cfg.Site.Name,
		"base_url":       b.cfg.Site.BaseURL,
		"default_locale": b.cfg.Site.DefaultLocale,
		"locales":        b.cfg.SiteLocales(),
		"environment":    b.cfg.Site.Environment,
	}
	data["theme"] = state.theme.Data()
	data["locale"] = page.Locale
	data["lang"] = Lang(page.Locale)
	return data
}
