package content

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MemoryStore is an in-memory Store used by tests, previews and the
// markdown loader.
type MemoryStore struct {
	mu          sync.RWMutex
	pages       map[uuid.UUID]*Page
	collections map[string]*Collection
	now         func() time.Time
}

var (
	_ Store  = (*MemoryStore)(nil)
	_ Writer = (*MemoryStore)(nil)
)

// NewMemoryStore creates an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		pages:       map[uuid.UUID]*Page{},
		collections: map[string]*Collection{},
		now:         time.Now,
	}
}

// SavePage inserts or replaces a page keyed by path and locale.
func (m *MemoryStore) SavePage(_ context.Context, page *Page) (*Page, error) {
	prepared := preparePage(page)
	if prepared.UpdatedAt.IsZero() {
		prepared.UpdatedAt = m.now()
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if existing, ok := m.pages[prepared.ID]; ok && prepared.CreatedAt.IsZero() {
		prepared.CreatedAt = existing.CreatedAt
	}
	if prepared.CreatedAt.IsZero() {
		prepared.CreatedAt = prepared.UpdatedAt
	}
	m.pages[prepared.ID] = prepared
	return m.attach(clonePage(prepared)), nil
}

// SaveCollection inserts or replaces a collection keyed by name.
func (m *MemoryStore) SaveCollection(_ context.Context, collection *Collection) (*Collection, error) {
	prepared := prepareCollection(collection)
	if prepared.UpdatedAt.IsZero() {
		prepared.UpdatedAt = m.now()
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.collections[strings.ToLower(prepared.Name)] = prepared
	return cloneCollection(prepared), nil
}

// Page returns the locale variant of the page at path.
func (m *MemoryStore) Page(_ context.Context, path, locale string) (*Page, error) {
	key := NormalizePath(path)
	id := preparePage(&Page{Path: key, Locale: locale}).ID

	m.mu.RLock()
	defer m.mu.RUnlock()
	page, ok := m.pages[id]
	if !ok {
		return nil, &NotFoundError{Resource: "page", Key: key + "@" + locale}
	}
	return m.attach(clonePage(page)), nil
}

// List returns pages in locale, or all pages when locale is empty.
func (m *MemoryStore) List(_ context.Context, locale string) ([]*Page, error) {
	locale = strings.TrimSpace(locale)

	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]*Page, 0, len(m.pages))
	for _, page := range m.pages {
		if locale != "" && page.Locale != locale {
			continue
		}
		out = append(out, m.attach(clonePage(page)))
	}
	sortPages(out)
	return out, nil
}

// Collection returns a collection by name.
func (m *MemoryStore) Collection(_ context.Context, name string) (*Collection, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	collection, ok := m.collections[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return nil, &NotFoundError{Resource: "collection", Key: name}
	}
	return cloneCollection(collection), nil
}

// attach resolves the page's collection. Callers hold the read lock.
func (m *MemoryStore) attach(page *Page) *Page {
	if page == nil || page.CollectionName == "" {
		return page
	}
	if collection, ok := m.collections[strings.ToLower(page.CollectionName)]; ok {
		page.Collection = cloneCollection(collection)
	}
	return page
}

// Reset drops every page and collection.
func (m *MemoryStore) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.pages = map[uuid.UUID]*Page{}
	m.collections = map[string]*Collection{}
}
