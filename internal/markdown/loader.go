package markdown

import (
	"context"
	"fmt"
	"io/fs"
	"path"
	"slices"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/goliatone/go-pagebuilder/internal/content"
	"github.com/goliatone/go-pagebuilder/pkg/interfaces"
)

const (
	collectionsDir = "_collections"
	indexName      = "index"
	bodyField      = "body"
)

// LoaderConfig configures Markdown discovery.
type LoaderConfig struct {
	// DefaultLocale pages are routed without a locale prefix.
	DefaultLocale string
	// Locales restricts loading to these locale directories. Empty loads
	// every top-level directory not starting with "_".
	Locales []string
	// Converter renders page bodies. Defaults to NewConverter(ConvertOptions{}).
	Converter interfaces.MarkdownConverter
}

// Loader turns a Markdown tree into pages and collections.
type Loader struct {
	fs            fs.FS
	defaultLocale string
	locales       []string
	converter     interfaces.MarkdownConverter
}

// LoadResult summarises one Load call.
type LoadResult struct {
	Pages       int
	Collections int
	Locales     []string
	Files       []string
}

// NewLoader constructs a Loader over filesystem.
func NewLoader(filesystem fs.FS, cfg LoaderConfig) *Loader {
	converter := cfg.Converter
	if converter == nil {
		converter = NewConverter(ConvertOptions{})
	}
	return &Loader{
		fs:            filesystem,
		defaultLocale: strings.TrimSpace(cfg.DefaultLocale),
		locales:       slices.Clone(cfg.Locales),
		converter:     converter,
	}
}

// Load parses every collection and page and saves them through writer.
// Collections are saved first so pages resolve their defaults.
func (l *Loader) Load(ctx context.Context, writer content.Writer) (*LoadResult, error) {
	result := &LoadResult{}

	collections, err := doublestar.Glob(l.fs, collectionsDir+"/*.md")
	if err != nil {
		return nil, fmt.Errorf("markdown loader: glob collections: %w", err)
	}
	sort.Strings(collections)
	known := map[string]struct{}{}
	for _, file := range collections {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		doc, err := l.readDocument(file)
		if err != nil {
			return nil, err
		}
		name := doc.String("name")
		if name == "" {
			name = strings.TrimSuffix(path.Base(file), ".md")
		}
		if _, err := writer.SaveCollection(ctx, &content.Collection{Name: name, Fields: doc.PageFields()}); err != nil {
			return nil, fmt.Errorf("markdown loader: save collection %s: %w", name, err)
		}
		known[name] = struct{}{}
		result.Collections++
		result.Files = append(result.Files, file)
	}

	files, err := doublestar.Glob(l.fs, "*/**/*.md")
	if err != nil {
		return nil, fmt.Errorf("markdown loader: glob pages: %w", err)
	}
	sort.Strings(files)
	seenLocales := map[string]struct{}{}
	for _, file := range files {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		locale, rel, ok := l.split(file)
		if !ok {
			continue
		}
		page, err := l.buildPage(file, locale, rel, known)
		if err != nil {
			return nil, err
		}
		if _, err := writer.SavePage(ctx, page); err != nil {
			return nil, fmt.Errorf("markdown loader: save page %s: %w", file, err)
		}
		if _, ok := seenLocales[locale]; !ok {
			seenLocales[locale] = struct{}{}
			result.Locales = append(result.Locales, locale)
		}
		result.Pages++
		result.Files = append(result.Files, file)
	}
	return result, nil
}

func (l *Loader) split(file string) (locale, rel string, ok bool) {
	locale, rel, found := strings.Cut(file, "/")
	if !found || strings.HasPrefix(locale, "_") || strings.HasPrefix(locale, ".") {
		return "", "", false
	}
	if strings.HasPrefix(path.Base(rel), "_") {
		return "", "", false
	}
	if len(l.locales) > 0 && !slices.Contains(l.locales, locale) {
		return "", "", false
	}
	return locale, rel, true
}

func (l *Loader) buildPage(file, locale, rel string, collections map[string]struct{}) (*content.Page, error) {
	doc, err := l.readDocument(file)
	if err != nil {
		return nil, err
	}

	pagePath := pathFromFile(rel)
	fields := doc.PageFields()
	if len(strings.TrimSpace(string(doc.Body))) > 0 {
		html, err := l.converter.Convert(doc.Body)
		if err != nil {
			return nil, fmt.Errorf("markdown loader: render %s: %w", file, err)
		}
		fields[bodyField] = string(html)
	}

	collection := doc.String("collection")
	if collection == "" {
		if dir, _, found := strings.Cut(strings.Trim(pagePath, "/"), "/"); found {
			if _, ok := collections[dir]; ok {
				collection = dir
			}
		}
	}

	route := doc.String("route")
	if route == "" {
		route = RouteFor(pagePath, locale, l.defaultLocale)
	}

	page := &content.Page{
		Path:           pagePath,
		Locale:         locale,
		Route:          route,
		Fields:         fields,
		CollectionName: collection,
	}
	if info, err := fs.Stat(l.fs, file); err == nil {
		page.UpdatedAt = info.ModTime().UTC()
	}
	return page, nil
}

func (l *Loader) readDocument(file string) (Document, error) {
	data, err := fs.ReadFile(l.fs, file)
	if err != nil {
		return Document{}, fmt.Errorf("markdown loader read %s: %w", file, err)
	}
	doc, err := ParseFrontMatter(data)
	if err != nil {
		return Document{}, fmt.Errorf("markdown loader %s: %w", file, err)
	}
	return doc, nil
}

// pathFromFile maps "blog/index.md" to "/blog" and "about.md" to "/about".
func pathFromFile(rel string) string {
	trimmed := strings.TrimSuffix(rel, ".md")
	if path.Base(trimmed) == indexName {
		trimmed = path.Dir(trimmed)
	}
	return content.NormalizePath(strings.TrimPrefix(trimmed, "."))
}

// RouteFor derives the public route of a page. Non-default locales are
// prefixed with the locale code.
func RouteFor(pagePath, locale, defaultLocale string) string {
	trimmed := strings.Trim(pagePath, "/")
	prefix := ""
	if locale != "" && !strings.EqualFold(locale, defaultLocale) {
		prefix = "/" + locale
	}
	if trimmed == "" {
		return prefix + "/"
	}
	return prefix + "/" + trimmed + "/"
}
