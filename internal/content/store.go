package content

import (
	"context"
	"errors"
	"sort"
	"strings"

	"github.com/goliatone/go-pagebuilder/internal/identity"
)

// Store reads pages and collections.
type Store interface {
	// Page returns the locale variant of the page at path.
	Page(ctx context.Context, path, locale string) (*Page, error)
	// List returns every page in locale, or every page when locale is empty.
	// Results are ordered by path, then locale.
	List(ctx context.Context, locale string) ([]*Page, error)
	// Collection returns a collection by name.
	Collection(ctx context.Context, name string) (*Collection, error)
}

// Writer persists pages and collections.
type Writer interface {
	SavePage(ctx context.Context, page *Page) (*Page, error)
	SaveCollection(ctx context.Context, collection *Collection) (*Collection, error)
}

// IsNotFound reports whether err describes a missing record.
func IsNotFound(err error) bool {
	var notFound *NotFoundError
	return errors.As(err, &notFound)
}

// NormalizePath returns the canonical form used as a page key.
func NormalizePath(path string) string {
	trimmed := strings.Trim(strings.TrimSpace(path), "/")
	return "/" + trimmed
}

func prepareCollection(collection *Collection) *Collection {
	prepared := cloneCollection(collection)
	prepared.Name = strings.TrimSpace(prepared.Name)
	prepared.ID = identity.CollectionUUID(prepared.Name)
	return prepared
}

func preparePage(page *Page) *Page {
	prepared := clonePage(page)
	prepared.Path = NormalizePath(prepared.Path)
	prepared.Locale = strings.TrimSpace(prepared.Locale)
	prepared.ID = identity.PageUUID(prepared.Path, prepared.Locale)
	if prepared.Collection != nil && prepared.CollectionName == "" {
		prepared.CollectionName = prepared.Collection.Name
	}
	prepared.Collection = nil
	return prepared
}

func sortPages(pages []*Page) {
	sort.SliceStable(pages, func(i, j int) bool {
		if pages[i].Path == pages[j].Path {
			return pages[i].Locale < pages[j].Locale
		}
		return pages[i].Path < pages[j].Path
	})
}

// Siblings returns the page's variants keyed by locale, including the page
// itself. Missing variants are skipped.
func Siblings(ctx context.Context, store Store, page *Page, locales []string) (map[string]*Page, error) {
	out := map[string]*Page{}
	if page == nil {
		return out, nil
	}
	out[page.Locale] = page
	for _, locale := range locales {
		if _, ok := out[locale]; ok {
			continue
		}
		sibling, err := store.Page(ctx, page.Path, locale)
		if err != nil {
			if IsNotFound(err) {
				continue
			}
			return nil, err
		}
		out[locale] = sibling
	}
	return out, nil
}
