package content_test

import (
	"context"
	"testing"
	"time"

	"github.com/goliatone/go-pagebuilder/internal/content"
	"github.com/goliatone/go-pagebuilder/pkg/testsupport"
	repocache "github.com/goliatone/go-repository-cache/cache"
)

func newBunStore(t *testing.T, name string, cached bool) *content.BunStore {
	t.Helper()
	db, err := testsupport.NewBunSQLiteDB(name)
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	var store *content.BunStore
	if cached {
		cfg := repocache.DefaultConfig()
		cfg.TTL = time.Minute
		cacheService, err := repocache.NewCacheService(cfg)
		if err != nil {
			t.Fatalf("new cache service: %v", err)
		}
		store = content.NewBunStoreWithCache(db, cacheService, repocache.NewDefaultKeySerializer())
	} else {
		store = content.NewBunStore(db)
	}
	if err := store.Migrate(context.Background()); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return store
}

func TestBunStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	store := newBunStore(t, "bun_store_round_trip", false)

	if _, err := store.SaveCollection(ctx, &content.Collection{Name: "docs", Fields: map[string]any{"header": false}}); err != nil {
		t.Fatalf("save collection: %v", err)
	}
	if _, err := store.SavePage(ctx, &content.Page{
		Path:           "/docs/intro",
		Locale:         "en_US",
		Route:          "/docs/intro/",
		Fields:         map[string]any{"title": "Intro"},
		CollectionName: "docs",
	}); err != nil {
		t.Fatalf("save page: %v", err)
	}

	page, err := store.Page(ctx, "docs/intro", "en_US")
	if err != nil {
		t.Fatalf("page: %v", err)
	}
	if page.Fields["title"] != "Intro" {
		t.Fatalf("expected title field, got %v", page.Fields)
	}
	if page.Collection == nil || page.Collection.Fields["header"] != false {
		t.Fatalf("expected collection defaults, got %+v", page.Collection)
	}
}

func TestBunStoreUpdateKeepsSingleRecord(t *testing.T) {
	ctx := context.Background()
	store := newBunStore(t, "bun_store_update", false)

	for _, title := range []string{"First", "Second"} {
		if _, err := store.SavePage(ctx, &content.Page{
			Path:   "/",
			Locale: "en",
			Route:  "/",
			Fields: map[string]any{"title": title},
		}); err != nil {
			t.Fatalf("save page: %v", err)
		}
	}

	pages, err := store.List(ctx, "en")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(pages) != 1 {
		t.Fatalf("expected one page after update, got %d", len(pages))
	}
	if pages[0].Fields["title"] != "Second" {
		t.Fatalf("expected updated title, got %v", pages[0].Fields["title"])
	}
}

func TestBunStoreMissingPage(t *testing.T) {
	store := newBunStore(t, "bun_store_missing", false)
	if _, err := store.Page(context.Background(), "/nope", "en"); !content.IsNotFound(err) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestBunStoreWithCache(t *testing.T) {
	ctx := context.Background()
	store := newBunStore(t, "bun_store_cached", true)

	if _, err := store.SavePage(ctx, &content.Page{Path: "/about", Locale: "en", Route: "/about/"}); err != nil {
		t.Fatalf("save page: %v", err)
	}
	for i := 0; i < 2; i++ {
		page, err := store.Page(ctx, "/about", "en")
		if err != nil {
			t.Fatalf("page (attempt %d): %v", i, err)
		}
		if page.Route != "/about/" {
			t.Fatalf("unexpected route %q", page.Route)
		}
	}
}
