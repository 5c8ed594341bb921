package content

import (
	"context"
	"fmt"
	"strings"
	"time"

	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-repository-bun"
	"github.com/goliatone/go-repository-cache/cache"
	repositorycache "github.com/goliatone/go-repository-cache/repositorycache"
	"github.com/uptrace/bun"
)

// BunStore persists pages and collections through go-repository-bun, with
// optional read-through caching.
type BunStore struct {
	db          *bun.DB
	pages       repository.Repository[*Page]
	collections repository.Repository[*Collection]
	now         func() time.Time
}

var (
	_ Store  = (*BunStore)(nil)
	_ Writer = (*BunStore)(nil)
)

// NewBunStore wires repositories over db without caching.
func NewBunStore(db *bun.DB) *BunStore {
	return NewBunStoreWithCache(db, nil, nil)
}

// NewBunStoreWithCache wires repositories over db. When both cache arguments
// are set, reads go through go-repository-cache.
func NewBunStoreWithCache(db *bun.DB, cacheService cache.CacheService, keySerializer cache.KeySerializer) *BunStore {
	return &BunStore{
		db:          db,
		pages:       wrapWithCache(NewPageRepository(db), cacheService, keySerializer),
		collections: wrapWithCache(NewCollectionRepository(db), cacheService, keySerializer),
		now:         time.Now,
	}
}

// Migrate creates the page and collection tables when missing.
func (s *BunStore) Migrate(ctx context.Context) error {
	models := []any{(*Collection)(nil), (*Page)(nil)}
	for _, model := range models {
		if _, err := s.db.NewCreateTable().Model(model).IfNotExists().Exec(ctx); err != nil {
			return fmt.Errorf("content: create table for %T: %w", model, err)
		}
	}
	return nil
}

// SavePage creates the page or updates the existing record for its path and locale.
func (s *BunStore) SavePage(ctx context.Context, page *Page) (*Page, error) {
	prepared := preparePage(page)
	prepared.UpdatedAt = s.now()

	existing, err := s.pages.GetByID(ctx, prepared.ID.String())
	switch {
	case err == nil && existing != nil:
		prepared.CreatedAt = existing.CreatedAt
		if _, err := s.pages.Update(ctx, prepared,
			repository.UpdateByID(prepared.ID.String()),
			repository.UpdateColumns("route", "fields", "collection", "updated_at"),
		); err != nil {
			return nil, mapRepositoryError(err, "page", prepared.Path)
		}
	case err == nil || goerrors.IsCategory(err, repository.CategoryDatabaseNotFound):
		prepared.CreatedAt = prepared.UpdatedAt
		if _, err := s.pages.Create(ctx, prepared); err != nil {
			return nil, mapRepositoryError(err, "page", prepared.Path)
		}
	default:
		return nil, mapRepositoryError(err, "page", prepared.Path)
	}
	return s.attach(ctx, prepared)
}

// SaveCollection creates the collection or updates its defaults.
func (s *BunStore) SaveCollection(ctx context.Context, collection *Collection) (*Collection, error) {
	prepared := prepareCollection(collection)
	prepared.UpdatedAt = s.now()

	existing, err := s.collections.GetByIdentifier(ctx, prepared.Name)
	switch {
	case err == nil && existing != nil:
		prepared.CreatedAt = existing.CreatedAt
		if _, err := s.collections.Update(ctx, prepared,
			repository.UpdateByID(prepared.ID.String()),
			repository.UpdateColumns("fields", "updated_at"),
		); err != nil {
			return nil, mapRepositoryError(err, "collection", prepared.Name)
		}
	case err == nil || goerrors.IsCategory(err, repository.CategoryDatabaseNotFound):
		prepared.CreatedAt = prepared.UpdatedAt
		if _, err := s.collections.Create(ctx, prepared); err != nil {
			return nil, mapRepositoryError(err, "collection", prepared.Name)
		}
	default:
		return nil, mapRepositoryError(err, "collection", prepared.Name)
	}
	return cloneCollection(prepared), nil
}

// Page returns the locale variant of the page at path.
func (s *BunStore) Page(ctx context.Context, path, locale string) (*Page, error) {
	key := preparePage(&Page{Path: path, Locale: locale})
	record, err := s.pages.GetByID(ctx, key.ID.String())
	if err != nil {
		return nil, mapRepositoryError(err, "page", key.Path+"@"+key.Locale)
	}
	return s.attach(ctx, record)
}

// List returns pages ordered by path then locale.
func (s *BunStore) List(ctx context.Context, locale string) ([]*Page, error) {
	locale = strings.TrimSpace(locale)
	records, _, err := s.pages.List(ctx,
		repository.SelectRawProcessor(func(q *bun.SelectQuery) *bun.SelectQuery {
			if locale != "" {
				q = q.Where("?TableAlias.locale = ?", locale)
			}
			return q.OrderExpr("?TableAlias.path ASC, ?TableAlias.locale ASC")
		}),
	)
	if err != nil {
		return nil, mapRepositoryError(err, "page", locale)
	}

	out := make([]*Page, 0, len(records))
	collections := map[string]*Collection{}
	for _, record := range records {
		page := clonePage(record)
		if name := page.CollectionName; name != "" {
			collection, ok := collections[name]
			if !ok {
				collection, err = s.Collection(ctx, name)
				if err != nil && !IsNotFound(err) {
					return nil, err
				}
				collections[name] = collection
			}
			page.Collection = cloneCollection(collection)
		}
		out = append(out, page)
	}
	sortPages(out)
	return out, nil
}

// Collection returns a collection by name.
func (s *BunStore) Collection(ctx context.Context, name string) (*Collection, error) {
	record, err := s.collections.GetByIdentifier(ctx, strings.TrimSpace(name))
	if err != nil {
		return nil, mapRepositoryError(err, "collection", name)
	}
	return cloneCollection(record), nil
}

func (s *BunStore) attach(ctx context.Context, record *Page) (*Page, error) {
	page := clonePage(record)
	if page.CollectionName == "" {
		return page, nil
	}
	collection, err := s.Collection(ctx, page.CollectionName)
	if err != nil {
		if IsNotFound(err) {
			return page, nil
		}
		return nil, err
	}
	page.Collection = collection
	return page, nil
}

func mapRepositoryError(err error, resource, key string) error {
	if err == nil {
		return nil
	}
	if goerrors.IsCategory(err, repository.CategoryDatabaseNotFound) {
		return &NotFoundError{
			Resource: resource,
			Key:      key,
		}
	}
	return fmt.Errorf("%s repository error: %w", resource, err)
}

func wrapWithCache[T any](base repository.Repository[T], cacheService cache.CacheService, keySerializer cache.KeySerializer) repository.Repository[T] {
	if cacheService == nil || keySerializer == nil {
		return base
	}
	return repositorycache.New(base, cacheService, keySerializer)
}
