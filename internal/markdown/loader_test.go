package markdown

import (
	"context"
	"strings"
	"testing"
	"testing/fstest"

	"github.com/goliatone/go-pagebuilder/internal/content"
)

func TestLoaderBuildsPagesAndCollections(t *testing.T) {
	fsys := fstest.MapFS{
		"_collections/blog.md": {Data: []byte("---\nfooter: false\n---\n")},
		"en_US/index.md":       {Data: []byte("---\ntitle: Home\n---\n# Welcome\n")},
		"en_US/blog/hello.md": {Data: []byte(`---
title: Hello
partials:
  - hero
  - partial: cards
    fields:
      count: 3
---
Body text
`)},
		"de_DE/index.md":   {Data: []byte("---\ntitle: Startseite\n---\n")},
		"en_US/_draft.md":  {Data: []byte("---\ntitle: Draft\n---\n")},
		"partials/hero.md": {Data: []byte("not a page")},
	}

	store := content.NewMemoryStore()
	loader := NewLoader(fsys, LoaderConfig{DefaultLocale: "en_US", Locales: []string{"en_US", "de_DE"}})
	result, err := loader.Load(context.Background(), store)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if result.Pages != 3 || result.Collections != 1 {
		t.Fatalf("expected 3 pages and 1 collection, got %+v", result)
	}

	home, err := store.Page(context.Background(), "/", "en_US")
	if err != nil {
		t.Fatalf("home: %v", err)
	}
	if home.Route != "/" {
		t.Fatalf("expected default locale home route /, got %q", home.Route)
	}
	if body, _ := home.Fields["body"].(string); !strings.Contains(body, "<h1") {
		t.Fatalf("expected rendered body, got %q", body)
	}

	de, err := store.Page(context.Background(), "/", "de_DE")
	if err != nil {
		t.Fatalf("de home: %v", err)
	}
	if de.Route != "/de_DE/" {
		t.Fatalf("expected prefixed route, got %q", de.Route)
	}

	post, err := store.Page(context.Background(), "/blog/hello", "en_US")
	if err != nil {
		t.Fatalf("post: %v", err)
	}
	if post.Collection == nil || post.Collection.Name != "blog" {
		t.Fatalf("expected directory collection, got %+v", post.Collection)
	}
	partials, ok := post.Fields["partials"].([]any)
	if !ok || len(partials) != 2 {
		t.Fatalf("expected partial list, got %#v", post.Fields["partials"])
	}
	if _, ok := partials[1].(map[string]any); !ok {
		t.Fatalf("expected map descriptor, got %T", partials[1])
	}
}

func TestRouteFor(t *testing.T) {
	cases := []struct {
		path, locale, want string
	}{
		{"/", "en", "/"},
		{"/about", "en", "/about/"},
		{"/about", "fr", "/fr/about/"},
		{"/", "fr", "/fr/"},
	}
	for _, tc := range cases {
		if got := RouteFor(tc.path, tc.locale, "en"); got != tc.want {
			t.Fatalf("RouteFor(%q, %q) = %q, want %q", tc.path, tc.locale, got, tc.want)
		}
	}
}

func TestParseFrontMatterStripsDirectives(t *testing.T) {
	doc, err := ParseFrontMatter([]byte("---\ntitle: X\nroute: /custom/\ncollection: docs\n---\nbody"))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if doc.String("route") != "/custom/" {
		t.Fatalf("expected route directive")
	}
	fields := doc.PageFields()
	if _, ok := fields["route"]; ok {
		t.Fatalf("route must not leak into page fields")
	}
	if fields["title"] != "X" {
		t.Fatalf("expected title field, got %v", fields)
	}
	if strings.TrimSpace(string(doc.Body)) != "body" {
		t.Fatalf("unexpected body %q", doc.Body)
	}
}

func TestConverterRendersGFM(t *testing.T) {
	out, err := NewConverter(ConvertOptions{}).ConvertString("| a | b |\n|---|---|\n| 1 | 2 |\n")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if !strings.Contains(out, "<table>") {
		t.Fatalf("expected table markup, got %q", out)
	}
}
