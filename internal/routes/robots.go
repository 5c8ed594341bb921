package routes

import (
	"context"
	"strings"

	"github.com/goliatone/go-pagebuilder/internal/resources"
	"github.com/goliatone/go-pagebuilder/internal/runtimeconfig"
)

// Robots serves robots.txt, pointing crawlers at the sitemap when enabled.
type Robots struct {
	cfg runtimeconfig.Config
}

// NewRobots returns the robots.txt provider.
func NewRobots(cfg runtimeconfig.Config) *Robots {
	return &Robots{cfg: cfg}
}

func (r *Robots) Name() string { return "robots" }

func (r *Robots) Routes(context.Context) ([]Route, error) {
	if !r.cfg.Robots.Enabled {
		return nil, nil
	}
	return []Route{{
		Path:        r.cfg.Robots.Path,
		ContentType: "text/plain; charset=utf-8",
		Render: func(context.Context) ([]byte, error) {
			return []byte(r.Render()), nil
		},
	}}, nil
}

// Render returns the robots.txt body.
func (r *Robots) Render() string {
	var b strings.Builder
	b.WriteString("User-agent: *\n")
	if r.cfg.Head.NoIndex {
		b.WriteString("Disallow: /\n")
	} else {
		b.WriteString("Allow: /\n")
		for _, p := range r.cfg.Robots.Disallow {
			if p = strings.TrimSpace(p); p != "" {
				b.WriteString("Disallow: " + p + "\n")
			}
		}
	}
	if r.cfg.Sitemap.Enabled {
		resolver := resources.Resolver{BaseURL: r.cfg.Site.BaseURL}
		b.WriteString("\nSitemap: " + resolver.AbsoluteURL(CleanPath(r.cfg.Sitemap.Path)) + "\n")
	}
	return b.String()
}
