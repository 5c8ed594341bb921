package partials

import (
	"context"
	"errors"
	"fmt"
	"html"
	"io/fs"
	"maps"
	"strings"

	slug "github.com/goliatone/go-slug"

	"github.com/goliatone/go-pagebuilder/internal/builderr"
	"github.com/goliatone/go-pagebuilder/internal/logging"
	"github.com/goliatone/go-pagebuilder/internal/resources"
	"github.com/goliatone/go-pagebuilder/internal/runtimeconfig"
	"github.com/goliatone/go-pagebuilder/internal/themes"
	"github.com/goliatone/go-pagebuilder/pkg/interfaces"
)

// BoundaryClass is the class of the element wrapping each partial.
const BoundaryClass = "pagebuilder-module"

// Templates locates and renders template files. *templates.Registry
// satisfies it.
type Templates interface {
	Exists(path string) bool
	ReadFile(path string) ([]byte, error)
	Render(path string, data any) (string, error)
	RenderText(path, text string, data any) (string, error)
}

// AssetCatalog reports the assets that exist for conventional partial paths.
type AssetCatalog interface {
	Lookup(urlPath string) (resources.Asset, bool)
}

// Emitter writes deduplicated resource markup. *resources.Deduplicator
// satisfies it.
type Emitter interface {
	Emit(element resources.Element, res resources.Resource) (string, error)
}

// Build carries the per-document state a partial render needs.
type Build struct {
	Emitter   Emitter
	Theme     *themes.Selection
	Inspector bool
}

// Renderer renders partial descriptors.
type Renderer struct {
	paths     runtimeconfig.PartialsConfig
	templates Templates
	assets    AssetCatalog
	schemas   *schemaCache
	logger    interfaces.Logger
}

// Option customises a Renderer.
type Option func(*Renderer)

// WithLogger sets the renderer logger.
func WithLogger(logger interfaces.Logger) Option {
	return func(r *Renderer) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// NewRenderer wires a renderer. A nil asset catalog disables conventional
// stylesheets and scripts.
func NewRenderer(paths runtimeconfig.PartialsConfig, templates Templates, assets AssetCatalog, opts ...Option) *Renderer {
	r := &Renderer{
		paths:     paths,
		templates: templates,
		assets:    assets,
		schemas:   newSchemaCache(),
		logger:    logging.NoOp(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Render produces the markup for d: its conventional resources, then the
// module boundary wrapping the rendered template.
func (r *Renderer) Render(ctx context.Context, build Build, d Descriptor, data map[string]any) (string, error) {
	head, err := r.Prepare(build, d)
	if err != nil {
		return "", err
	}
	module, err := r.RenderModule(ctx, build, d, data)
	if err != nil {
		return "", err
	}
	return head + module, nil
}

// Prepare validates d and emits its conventional stylesheet and script.
// Callers rendering several partials concurrently call Prepare in document
// order first so that resource placement does not depend on scheduling.
func (r *Renderer) Prepare(build Build, d Descriptor) (string, error) {
	if err := d.Validate(); err != nil {
		return "", err
	}
	if err := r.validateFields(d); err != nil {
		return "", err
	}
	var b strings.Builder
	if err := r.emitConventional(&b, build, d.Name()); err != nil {
		return "", err
	}
	return b.String(), nil
}

// reservedKeys are render context entries descriptor fields never replace.
// The values stay reachable under .partial.fields.
var reservedKeys = map[string]struct{}{
	"page":    {},
	"site":    {},
	"fields":  {},
	"theme":   {},
	"locale":  {},
	"lang":    {},
	"partial": {},
}

// RenderModule renders the template of d inside its module boundary. It
// emits no resources and is safe to call concurrently.
func (r *Renderer) RenderModule(ctx context.Context, build Build, d Descriptor, data map[string]any) (string, error) {
	if err := d.Validate(); err != nil {
		return "", err
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}
	name := d.Name()
	logger := logging.WithPartial(r.logger, name)

	scope := maps.Clone(data)
	if scope == nil {
		scope = map[string]any{}
	}
	fields := d.Fields()
	for key, value := range fields {
		if _, ok := reservedKeys[key]; ok {
			continue
		}
		scope[key] = value
	}
	scope["partial"] = map[string]any{"name": name, "fields": fields}

	rendered, err := r.renderTemplate(build, d, scope)
	if err != nil {
		logger.Error("partials.render.failed", "error", err)
		return "", err
	}

	var b strings.Builder
	fmt.Fprintf(&b, `<div class="%s" data-partial="%s">`, BoundaryClass, html.EscapeString(boundarySlug(name)))
	b.WriteString("\n")
	if build.Inspector && d.Inspector() {
		fmt.Fprintf(&b, `<pagebuilder-inspector data-partial="%s"></pagebuilder-inspector>`, html.EscapeString(name))
		b.WriteString("\n")
	}
	b.WriteString(rendered)
	b.WriteString("\n</div>")

	logger.Debug("partials.render.completed")
	return b.String(), nil
}

func (r *Renderer) emitConventional(b *strings.Builder, build Build, name string) error {
	if r.assets == nil || build.Emitter == nil {
		return nil
	}
	conventional := []struct {
		element  resources.Element
		template string
	}{
		{resources.ElementStylesheet, r.paths.StylesheetPath},
		{resources.ElementScript, r.paths.ScriptPath},
	}
	for _, item := range conventional {
		if strings.TrimSpace(item.template) == "" {
			continue
		}
		asset, ok := r.assets.Lookup(runtimeconfig.PartialPath(item.template, name))
		if !ok {
			continue
		}
		markup, err := build.Emitter.Emit(item.element, resources.FromAsset(asset))
		if err != nil {
			return err
		}
		if markup != "" {
			b.WriteString(markup)
			b.WriteString("\n")
		}
	}
	return nil
}

func (r *Renderer) renderTemplate(build Build, d Descriptor, scope map[string]any) (string, error) {
	name := d.Name()
	switch d.Kind() {
	case KindNamed:
		viewPath := build.Theme.PartialTemplate(name, runtimeconfig.PartialPath(r.paths.ViewPath, name))
		if !r.templates.Exists(viewPath) {
			return "", builderr.MissingTemplate(name, viewPath, fs.ErrNotExist)
		}
		out, err := r.templates.Render(viewPath, scope)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return "", builderr.MissingTemplate(name, viewPath, err)
			}
			return "", fmt.Errorf("partials: render %s: %w", viewPath, err)
		}
		return out, nil
	case KindInline:
		source, err := r.templates.ReadFile(d.TemplatePath())
		if err != nil {
			return "", builderr.UnreadableInlineTemplate(name, d.TemplatePath(), err)
		}
		out, err := r.templates.RenderText(d.TemplatePath(), string(source), scope)
		if err != nil {
			return "", fmt.Errorf("partials: render inline %s: %w", d.TemplatePath(), err)
		}
		return out, nil
	default:
		return "", fmt.Errorf("partials: unknown descriptor kind %d", d.Kind())
	}
}

func (r *Renderer) validateFields(d Descriptor) error {
	if d.Kind() != KindNamed || strings.TrimSpace(r.paths.SchemaPath) == "" {
		return nil
	}
	schema, err := r.schemas.load(runtimeconfig.PartialPath(r.paths.SchemaPath, d.Name()), r.templates)
	if err != nil {
		return builderr.InvalidPartialFields(d.Name(), err)
	}
	if schema == nil {
		return nil
	}
	if err := validateFields(schema, d.Fields()); err != nil {
		return builderr.InvalidPartialFields(d.Name(), err)
	}
	return nil
}

func boundarySlug(name string) string {
	if normalized, err := slug.Normalize(name); err == nil && normalized != "" {
		return normalized
	}
	return name
}
