package routes

import (
	"context"
	"strings"
	"testing"
)

type staticProvider struct {
	name  string
	paths []string
}

func (p staticProvider) Name() string { return p.name }

func (p staticProvider) Routes(context.Context) ([]Route, error) {
	out := make([]Route, 0, len(p.paths))
	for _, path := range p.paths {
		out = append(out, Route{Path: path})
	}
	return out, nil
}

func TestCollectRejectsDuplicatePaths(t *testing.T) {
	_, err := Collect(context.Background(),
		staticProvider{name: "a", paths: []string{"/sitemap.xml"}},
		staticProvider{name: "b", paths: []string{"sitemap.xml"}},
	)
	if err == nil || !strings.Contains(err.Error(), "already registered by a") {
		t.Fatalf("expected duplicate path error, got %v", err)
	}
}

func TestCollectKeepsProviderOrder(t *testing.T) {
	routes, err := Collect(context.Background(),
		staticProvider{name: "a", paths: []string{"/b", "/a"}},
		nil,
		staticProvider{name: "c", paths: []string{"/c/"}},
	)
	if err != nil {
		t.Fatalf("collect: %v", err)
	}
	var got []string
	for _, route := range routes {
		got = append(got, route.Path)
	}
	if strings.Join(got, ",") != "/b,/a,/c/" {
		t.Fatalf("unexpected order %v", got)
	}
}

func TestOutputPath(t *testing.T) {
	cases := map[string]string{
		"/":                           "index.html",
		"/sitemap.xml":                "sitemap.xml",
		"/_pagebuilder/preview/":      "_pagebuilder/preview/index.html",
		"/_pagebuilder/preview/hero/": "_pagebuilder/preview/hero/index.html",
		"robots.txt":                  "robots.txt",
	}
	for in, want := range cases {
		if got := OutputPath(in); got != want {
			t.Fatalf("OutputPath(%q) = %q, want %q", in, got, want)
		}
	}
}
