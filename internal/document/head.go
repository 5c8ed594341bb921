package document

import (
	"context"
	"fmt"
	"html"
	"strings"

	"github.com/goliatone/go-pagebuilder/internal/content"
	"github.com/goliatone/go-pagebuilder/internal/resources"
	"github.com/goliatone/go-pagebuilder/internal/themes"
)

// Page fields consulted by the head before falling back to site defaults.
const (
	FieldTitle       = "title"
	FieldDescription = "description"
	FieldImage       = "image"
	FieldThemeColor  = "theme_color"
	FieldTwitterSite = "twitter_site"
	FieldNoIndex     = "noindex"
)

func (b *Builder) head(ctx context.Context, state *buildState) (string, error) {
	var out strings.Builder
	out.WriteString("<head>\n")
	out.WriteString(`<meta charset="utf-8">` + "\n")
	out.WriteString(`<meta name="viewport" content="width=device-width, initial-scale=1">` + "\n")

	b.writeMetadata(&out, state)

	links, err := b.linkTags(ctx, state)
	if err != nil {
		return "", err
	}
	out.WriteString(links)

	if icon := strings.TrimSpace(b.cfg.Head.Icon); icon != "" {
		res := resources.AssetOrPath(icon, b.assets)
		if url, ok := state.resolver.URL(res, state.urlOptions); ok {
			fmt.Fprintf(&out, `<link rel="icon" href="%s">`+"\n", html.EscapeString(url))
		}
	}

	if style := state.theme.StyleBlock(); style != "" {
		out.WriteString(style)
		out.WriteString("\n")
	}

	for _, group := range []struct {
		element resources.Element
		specs   []resources.Spec
	}{
		{resources.ElementStylesheet, b.cfg.Head.Stylesheets},
		{resources.ElementScript, b.cfg.Head.Scripts},
	} {
		for _, spec := range group.specs {
			markup, err := state.dedup.Emit(group.element, resources.FromSpec(spec, b.assets))
			if err != nil {
				return "", err
			}
			writeFragment(&out, markup)
		}
	}

	fragments, err := b.renderFragments(ctx, state, b.cfg.Head.Fragments)
	if err != nil {
		return "", err
	}
	writeFragment(&out, fragments)

	if state.inspector && b.inspector != nil {
		for _, url := range b.inspector.ScriptURLs() {
			markup, err := state.dedup.Emit(resources.ElementScript, resources.Load(resources.FromURL(url), resources.LoadOptions{Defer: true}))
			if err != nil {
				return "", err
			}
			writeFragment(&out, markup)
		}
	}

	out.WriteString("</head>")
	return out.String(), nil
}

func (b *Builder) writeMetadata(out *strings.Builder, state *buildState) {
	f := state.fields
	siteName := strings.TrimSpace(b.cfg.Site.Name)
	title := f.StringOr(FieldTitle, siteName)
	description := f.StringOr(FieldDescription, b.cfg.Head.Description)
	image := b.absoluteAsset(state, f.StringOr(FieldImage, b.cfg.Head.Image))
	twitterSite := f.StringOr(FieldTwitterSite, b.cfg.Head.TwitterSite)

	themeColor := f.StringOr(FieldThemeColor, b.cfg.Head.ThemeColor)
	if themeColor == "" {
		themeColor, _ = state.theme.Token(themes.TokenThemeColor)
	}

	noIndex := b.cfg.Head.NoIndex
	if value, ok := f.Bool(FieldNoIndex); ok {
		noIndex = value
	}

	if title != "" {
		fmt.Fprintf(out, "<title>%s</title>\n", html.EscapeString(title))
	}
	writeMeta(out, "name", "description", description)
	if noIndex {
		writeMeta(out, "name", "robots", "noindex")
	}
	writeMeta(out, "name", "referrer", "no-referrer")
	writeMeta(out, "name", "theme-color", themeColor)
	writeMeta(out, "property", "og:type", "website")
	writeMeta(out, "property", "og:site_name", siteName)
	if state.page.HasRoute() {
		writeMeta(out, "property", "og:url", state.pageURL)
	}
	writeMeta(out, "property", "og:title", title)
	writeMeta(out, "property", "og:description", description)
	writeMeta(out, "property", "og:image", image)
	writeMeta(out, "property", "og:locale", state.page.Locale)
	writeMeta(out, "name", "twitter:site", twitterSite)
	writeMeta(out, "name", "twitter:title", title)
	writeMeta(out, "name", "twitter:description", description)
	writeMeta(out, "name", "twitter:image", image)
	writeMeta(out, "name", "twitter:card", "summary_large_image")
}

// linkTags emits the canonical link and the hreflang alternates.
func (b *Builder) linkTags(ctx context.Context, state *buildState) (string, error) {
	var out strings.Builder
	if state.page.HasRoute() {
		fmt.Fprintf(&out, `<link rel="canonical" href="%s">`+"\n", html.EscapeString(state.pageURL))
	}
	if b.store == nil {
		return out.String(), nil
	}

	locales := b.cfg.SiteLocales()
	siblings, err := content.Siblings(ctx, b.store, state.page, locales)
	if err != nil {
		return "", fmt.Errorf("document: resolve siblings of %s: %w", state.page.Path, err)
	}

	defaultLocale := strings.TrimSpace(b.cfg.Site.DefaultLocale)
	if sibling, ok := siblings[defaultLocale]; ok && sibling.HasRoute() {
		writeAlternate(&out, "x-default", state.resolver.AbsoluteURL(sibling.Route))
	}
	for _, locale := range locales {
		if locale == defaultLocale {
			continue
		}
		sibling, ok := siblings[locale]
		if !ok || !sibling.HasRoute() {
			continue
		}
		writeAlternate(&out, Lang(locale), state.resolver.AbsoluteURL(sibling.Route))
	}
	return out.String(), nil
}

func (b *Builder) absoluteAsset(state *buildState, value string) string {
	if value == "" {
		return ""
	}
	res := resources.AssetOrPath(value, b.assets)
	url, _ := state.resolver.URL(res, resources.URLOptions{IncludeDomain: true})
	return url
}

func writeMeta(out *strings.Builder, attr, key, value string) {
	value = strings.TrimSpace(value)
	if value == "" {
		return
	}
	fmt.Fprintf(out, `<meta %s="%s" content="%s">`+"\n", attr, key, html.EscapeString(value))
}

func writeAlternate(out *strings.Builder, hreflang, href string) {
	if href == "" {
		return
	}
	fmt.Fprintf(out, `<link rel="alternate" hreflang="%s" href="%s">`+"\n", html.EscapeString(hreflang), html.EscapeString(href))
}

func writeFragment(out *strings.Builder, markup string) {
	if strings.TrimSpace(markup) == "" {
		return
	}
	out.WriteString(markup)
	if !strings.HasSuffix(markup, "\n") {
		out.WriteString("\n")
	}
}
