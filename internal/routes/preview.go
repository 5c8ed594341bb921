package routes

import (
	"bytes"
	"context"
	_ "embed"
	"errors"
	"fmt"
	"html/template"
	"io/fs"
	"path"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"gopkg.in/yaml.v3"

	"github.com/goliatone/go-pagebuilder/internal/content"
	"github.com/goliatone/go-pagebuilder/internal/document"
	"github.com/goliatone/go-pagebuilder/internal/partials"
	"github.com/goliatone/go-pagebuilder/internal/runtimeconfig"
)

// PreviewFieldsSuffix names the optional sample-field file next to a partial
// template: partials/hero.html reads partials/hero.preview.yaml.
const PreviewFieldsSuffix = ".preview.yaml"

//go:embed preview_index.html
var previewIndexTemplate string

var previewIndex = template.Must(template.New("preview-index").Parse(previewIndexTemplate))

// Documents builds complete documents. *document.Builder satisfies it.
type Documents interface {
	Build(ctx context.Context, page *content.Page, renderCtx map[string]any) (string, error)
}

// PreviewItem is one partial shown in the gallery.
type PreviewItem struct {
	Name     string
	Template string
	Route    string
	Fields   map[string]any
}

// Preview renders one document per discovered partial plus an index page.
// Preview pages carry no route, so they have no canonical link or og:url.
type Preview struct {
	cfg       runtimeconfig.Config
	templates fs.FS
	documents Documents
}

// NewPreview returns the preview gallery provider.
func NewPreview(cfg runtimeconfig.Config, templates fs.FS, documents Documents) *Preview {
	return &Preview{cfg: cfg, templates: templates, documents: documents}
}

func (p *Preview) Name() string { return "preview" }

func (p *Preview) Routes(context.Context) ([]Route, error) {
	if !p.cfg.Preview.Enabled || p.documents == nil {
		return nil, nil
	}
	items, err := p.Items()
	if err != nil {
		return nil, err
	}
	routes := []Route{{
		Path:        p.basePath(),
		ContentType: "text/html; charset=utf-8",
		Render: func(context.Context) ([]byte, error) {
			return p.renderIndex(items)
		},
	}}
	for _, item := range items {
		routes = append(routes, Route{
			Path:        item.Route,
			ContentType: "text/html; charset=utf-8",
			Render: func(ctx context.Context) ([]byte, error) {
				out, err := p.RenderItem(ctx, item)
				return []byte(out), err
			},
		})
	}
	return routes, nil
}

// Items discovers the partials matching the preview pattern, sorted by name.
func (p *Preview) Items() ([]PreviewItem, error) {
	if p.templates == nil {
		return nil, nil
	}
	pattern := strings.TrimPrefix(strings.TrimSpace(p.cfg.Preview.Pattern), "/")
	if pattern == "" {
		return nil, nil
	}
	matches, err := doublestar.Glob(p.templates, pattern, doublestar.WithFilesOnly())
	if err != nil {
		return nil, fmt.Errorf("routes: preview pattern %q: %w", pattern, err)
	}

	var items []PreviewItem
	for _, match := range matches {
		name, ok := p.partialName(match)
		if !ok {
			continue
		}
		fields, err := p.sampleFields(match)
		if err != nil {
			return nil, err
		}
		items = append(items, PreviewItem{
			Name:     name,
			Template: match,
			Route:    CleanPath(p.basePath() + name + "/"),
			Fields:   fields,
		})
	}
	sort.Slice(items, func(i, j int) bool { return items[i].Name < items[j].Name })
	return items, nil
}

// RenderItem builds the preview document for one partial.
func (p *Preview) RenderItem(ctx context.Context, item PreviewItem) (string, error) {
	page := &content.Page{
		Path:   "/_preview/" + item.Name,
		Locale: p.cfg.Site.DefaultLocale,
		Fields: map[string]any{
			document.FieldTitle:    "Preview: " + item.Name,
			document.FieldNoIndex:  true,
			document.FieldHeader:   false,
			document.FieldFooter:   false,
			document.FieldPartials: []partials.Descriptor{partials.Named(item.Name, item.Fields)},
		},
	}
	return p.documents.Build(ctx, page, map[string]any{"preview": true})
}

func (p *Preview) renderIndex(items []PreviewItem) ([]byte, error) {
	var buf bytes.Buffer
	err := previewIndex.Execute(&buf, map[string]any{
		"site":  p.cfg.Site.Name,
		"lang":  document.Lang(p.cfg.Site.DefaultLocale),
		"items": items,
	})
	if err != nil {
		return nil, fmt.Errorf("routes: render preview index: %w", err)
	}
	return []byte(document.StripBlankLines(buf.String())), nil
}

func (p *Preview) basePath() string {
	base := CleanPath(p.cfg.Preview.BasePath)
	if !strings.HasSuffix(base, "/") {
		base += "/"
	}
	return base
}

// partialName maps a template path back to a partial name using the view
// path template, so partials/cards/hero.html becomes cards/hero.
func (p *Preview) partialName(file string) (string, bool) {
	prefix, suffix, ok := strings.Cut(p.cfg.Partials.ViewPath, runtimeconfig.NamePlaceholder)
	if !ok {
		return "", false
	}
	prefix = strings.TrimPrefix(prefix, "/")
	if !strings.HasPrefix(file, prefix) || !strings.HasSuffix(file, suffix) {
		return "", false
	}
	name := strings.TrimSuffix(strings.TrimPrefix(file, prefix), suffix)
	if name == "" || strings.HasSuffix(file, PreviewFieldsSuffix) {
		return "", false
	}
	return name, true
}

func (p *Preview) sampleFields(templatePath string) (map[string]any, error) {
	file := strings.TrimSuffix(templatePath, path.Ext(templatePath)) + PreviewFieldsSuffix
	raw, err := fs.ReadFile(p.templates, file)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("routes: read %s: %w", file, err)
	}
	fields := map[string]any{}
	if err := yaml.Unmarshal(raw, &fields); err != nil {
		return nil, fmt.Errorf("routes: decode %s: %w", file, err)
	}
	return fields, nil
}
