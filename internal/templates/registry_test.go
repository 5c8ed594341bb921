package templates

import (
	"errors"
	"io/fs"
	"strings"
	"testing"
	"testing/fstest"
)

func newTestRegistry() *Registry {
	return NewDefaultRegistry(fstest.MapFS{
		"partials/hero.html":  {Data: []byte(`<h1>{{ .title }}</h1>{{ safeHTML .body }}`)},
		"partials/note.md":    {Data: []byte("**{{ .title }}**\n")},
		"partials/intro.tmpl": {Data: []byte(`{{ markdown .text }}`)},
	}, nil)
}

func TestRegistryRendersByExtension(t *testing.T) {
	registry := newTestRegistry()

	html, err := registry.Render("partials/hero.html", map[string]any{"title": "A & B", "body": "<p>x</p>"})
	if err != nil {
		t.Fatalf("render html: %v", err)
	}
	if html != "<h1>A &amp; B</h1><p>x</p>" {
		t.Fatalf("unexpected html output %q", html)
	}

	md, err := registry.Render("partials/note.md", map[string]any{"title": "Bold"})
	if err != nil {
		t.Fatalf("render markdown: %v", err)
	}
	if !strings.Contains(md, "<strong>Bold</strong>") {
		t.Fatalf("expected markdown to be converted, got %q", md)
	}

	tmpl, err := registry.Render("/partials/intro.tmpl", map[string]any{"text": "# Title"})
	if err != nil {
		t.Fatalf("render tmpl: %v", err)
	}
	if !strings.Contains(tmpl, "<h1") {
		t.Fatalf("expected markdown func output, got %q", tmpl)
	}
}

func TestRegistryUnknownExtension(t *testing.T) {
	registry := newTestRegistry()
	if _, err := registry.EngineFor("partials/hero.liquid"); !errors.Is(err, ErrNoEngine) {
		t.Fatalf("expected ErrNoEngine, got %v", err)
	}
}

func TestRegistryExists(t *testing.T) {
	registry := newTestRegistry()
	if !registry.Exists("partials/hero.html") {
		t.Fatalf("expected hero template to exist")
	}
	if registry.Exists("partials/missing.html") || registry.Exists("partials") {
		t.Fatalf("missing files and directories must not exist")
	}
	if registry.Exists("../etc/passwd") {
		t.Fatalf("invalid paths must not exist")
	}
}

func TestRenderMissingTemplateWrapsNotExist(t *testing.T) {
	registry := newTestRegistry()
	_, err := registry.Render("partials/missing.html", nil)
	if !errors.Is(err, fs.ErrNotExist) {
		t.Fatalf("expected fs.ErrNotExist, got %v", err)
	}
}

func TestRenderTextUsesEngineForExtension(t *testing.T) {
	registry := newTestRegistry()
	out, err := registry.RenderText("inline.html", `<p class="{{ .class }}">hi</p>`, map[string]any{"class": "lead"})
	if err != nil {
		t.Fatalf("render text: %v", err)
	}
	if out != `<p class="lead">hi</p>` {
		t.Fatalf("unexpected output %q", out)
	}
}

func TestHTMLEngineFiltersAndGlobals(t *testing.T) {
	engine := NewHTMLEngine(fstest.MapFS{})
	if err := engine.RegisterFilter("upper", func(input any, _ any) (any, error) {
		return strings.ToUpper(input.(string)), nil
	}); err != nil {
		t.Fatalf("register filter: %v", err)
	}
	engine.SetGlobals(map[string]any{"site": "Docs"})

	out, err := engine.RenderString(`{{ upper .name nil }} {{ (global).site }} {{ default "n/a" .missing }}`, map[string]any{"name": "ada"})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if out != "ADA Docs n/a" {
		t.Fatalf("unexpected output %q", out)
	}
}

func TestRegistryFansOutFiltersAndGlobals(t *testing.T) {
	registry := NewDefaultRegistry(fstest.MapFS{
		"partials/badge.html": {Data: []byte(`<b>{{ shout .label nil }} {{ (global).brand }}</b>`)},
		"partials/note.md":    {Data: []byte(`{{ shout .label nil }}`)},
	}, nil)
	if err := registry.RegisterFilter("shout", func(input any, _ any) (any, error) {
		return strings.ToUpper(input.(string)) + "!", nil
	}); err != nil {
		t.Fatalf("register filter: %v", err)
	}
	registry.SetGlobals(map[string]any{"brand": "Acme"})

	html, err := registry.Render("partials/badge.html", map[string]any{"label": "new"})
	if err != nil {
		t.Fatalf("render html: %v", err)
	}
	if html != "<b>NEW! Acme</b>" {
		t.Fatalf("unexpected html %q", html)
	}
	md, err := registry.Render("partials/note.md", map[string]any{"label": "hi"})
	if err != nil {
		t.Fatalf("render md: %v", err)
	}
	if !strings.Contains(md, "HI!") {
		t.Fatalf("expected filter in markdown engine, got %q", md)
	}
}
