// Package routes holds the peripheral route providers that sit next to the
// document builder: sitemap, robots.txt, the partial preview gallery and the
// inspector support assets. Each provider renders its responses on demand and
// never shares resource state with page builds.
package routes

import (
	"context"
	"fmt"
	"path"
	"strings"
)

// Route is one response exposed by a provider.
type Route struct {
	// Path is the site-relative URL. A trailing slash denotes a directory
	// served as {path}/index.html.
	Path        string
	ContentType string
	Render      func(ctx context.Context) ([]byte, error)
}

// Provider exposes a group of routes.
type Provider interface {
	Name() string
	Routes(ctx context.Context) ([]Route, error)
}

// Registrar accepts route providers. Hosts implement it to serve the routes;
// the static generator implements it to write them to disk.
type Registrar interface {
	RegisterRoutes(providers ...Provider) error
}

// Collect gathers the routes of every provider in order. Two providers
// claiming the same path is an error.
func Collect(ctx context.Context, providers ...Provider) ([]Route, error) {
	var out []Route
	owners := map[string]string{}
	for _, provider := range providers {
		if provider == nil {
			continue
		}
		list, err := provider.Routes(ctx)
		if err != nil {
			return nil, fmt.Errorf("routes: %s: %w", provider.Name(), err)
		}
		for _, route := range list {
			key := CleanPath(route.Path)
			if owner, ok := owners[key]; ok {
				return nil, fmt.Errorf("routes: %s: path %s already registered by %s", provider.Name(), key, owner)
			}
			owners[key] = provider.Name()
			route.Path = key
			out = append(out, route)
		}
	}
	return out, nil
}

// CleanPath normalises a route path, keeping a trailing slash.
func CleanPath(p string) string {
	p = strings.TrimSpace(p)
	if p == "" {
		return "/"
	}
	dir := strings.HasSuffix(p, "/")
	cleaned := path.Clean("/" + p)
	if dir && cleaned != "/" {
		cleaned += "/"
	}
	return cleaned
}

// OutputPath maps a route path to the file that serves it.
func OutputPath(routePath string) string {
	p := CleanPath(routePath)
	if strings.HasSuffix(p, "/") {
		return strings.TrimPrefix(p+"index.html", "/")
	}
	return strings.TrimPrefix(p, "/")
}
