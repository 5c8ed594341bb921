package routes

import (
	"bytes"
	"context"
	"encoding/xml"
	"fmt"
	"sort"
	"strings"

	"github.com/goliatone/go-pagebuilder/internal/content"
	"github.com/goliatone/go-pagebuilder/internal/document"
	"github.com/goliatone/go-pagebuilder/internal/resources"
	"github.com/goliatone/go-pagebuilder/internal/runtimeconfig"
)

const (
	sitemapNS = "http://www.sitemaps.org/schemas/sitemap/0.9"
	xhtmlNS   = "http://www.w3.org/1999/xhtml"
)

type urlSet struct {
	XMLName xml.Name     `xml:"urlset"`
	NS      string       `xml:"xmlns,attr"`
	XHTML   string       `xml:"xmlns:xhtml,attr"`
	URLs    []sitemapURL `xml:"url"`
}

type sitemapURL struct {
	Loc        string          `xml:"loc"`
	LastMod    string          `xml:"lastmod,omitempty"`
	Alternates []alternateLink `xml:"xhtml:link"`
}

type alternateLink struct {
	Rel      string `xml:"rel,attr"`
	Hreflang string `xml:"hreflang,attr"`
	Href     string `xml:"href,attr"`
}

// Sitemap lists every routed page with its locale alternates.
type Sitemap struct {
	cfg   runtimeconfig.Config
	store content.Store
}

// NewSitemap returns the sitemap provider.
func NewSitemap(cfg runtimeconfig.Config, store content.Store) *Sitemap {
	return &Sitemap{cfg: cfg, store: store}
}

func (s *Sitemap) Name() string { return "sitemap" }

func (s *Sitemap) Routes(context.Context) ([]Route, error) {
	if !s.cfg.Sitemap.Enabled || s.store == nil {
		return nil, nil
	}
	return []Route{{
		Path:        s.cfg.Sitemap.Path,
		ContentType: "application/xml",
		Render:      s.Render,
	}}, nil
}

// Render produces the sitemap document.
func (s *Sitemap) Render(ctx context.Context) ([]byte, error) {
	pages, err := s.store.List(ctx, "")
	if err != nil {
		return nil, fmt.Errorf("routes: list pages: %w", err)
	}

	resolver := resources.Resolver{BaseURL: s.cfg.Site.BaseURL}
	locales := s.cfg.SiteLocales()
	defaultLocale := strings.TrimSpace(s.cfg.Site.DefaultLocale)

	byPath := map[string]map[string]*content.Page{}
	for _, page := range pages {
		if !page.HasRoute() {
			continue
		}
		if byPath[page.Path] == nil {
			byPath[page.Path] = map[string]*content.Page{}
		}
		byPath[page.Path][page.Locale] = page
	}

	set := urlSet{NS: sitemapNS, XHTML: xhtmlNS}
	seen := map[string]struct{}{}
	for _, page := range pages {
		if !page.HasRoute() {
			continue
		}
		loc := resolver.AbsoluteURL(page.Route)
		if _, ok := seen[loc]; ok {
			continue
		}
		seen[loc] = struct{}{}

		entry := sitemapURL{Loc: loc}
		if !page.UpdatedAt.IsZero() {
			entry.LastMod = page.UpdatedAt.UTC().Format("2006-01-02")
		}
		siblings := byPath[page.Path]
		if len(siblings) > 1 {
			if def, ok := siblings[defaultLocale]; ok {
				entry.Alternates = append(entry.Alternates, alternateLink{Rel: "alternate", Hreflang: "x-default", Href: resolver.AbsoluteURL(def.Route)})
			}
			for _, locale := range locales {
				if sibling, ok := siblings[locale]; ok {
					entry.Alternates = append(entry.Alternates, alternateLink{Rel: "alternate", Hreflang: document.Lang(locale), Href: resolver.AbsoluteURL(sibling.Route)})
				}
			}
		}
		set.URLs = append(set.URLs, entry)
	}
	sort.SliceStable(set.URLs, func(i, j int) bool { return set.URLs[i].Loc < set.URLs[j].Loc })

	var buf bytes.Buffer
	buf.WriteString(xml.Header)
	enc := xml.NewEncoder(&buf)
	enc.Indent("", "  ")
	if err := enc.Encode(set); err != nil {
		return nil, fmt.Errorf("routes: encode sitemap: %w", err)
	}
	buf.WriteString("\n")
	return buf.Bytes(), nil
}
