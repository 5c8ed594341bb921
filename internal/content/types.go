package content

import (
	"fmt"
	"maps"
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// Collection groups pages and supplies default field values.
type Collection struct {
	bun.BaseModel `bun:"table:pagebuilder_collections,alias:c"`

	ID        uuid.UUID      `bun:",pk,type:uuid"   json:"id"`
	Name      string         `bun:"name,notnull"    json:"name"`
	Fields    map[string]any `bun:"fields,type:jsonb" json:"fields,omitempty"`
	CreatedAt time.Time      `bun:"created_at,nullzero,default:current_timestamp" json:"created_at"`
	UpdatedAt time.Time      `bun:"updated_at,nullzero,default:current_timestamp" json:"updated_at"`
}

// Page is one locale variant of a logical page. Siblings share Path and
// differ by Locale.
type Page struct {
	bun.BaseModel `bun:"table:pagebuilder_pages,alias:p"`

	ID     uuid.UUID `bun:",pk,type:uuid"   json:"id"`
	Path   string    `bun:"path,notnull"    json:"path"`
	Locale string    `bun:"locale,notnull"  json:"locale"`
	// Route is the site-relative URL. Preview pages have none.
	Route          string         `bun:"route"           json:"route,omitempty"`
	Fields         map[string]any `bun:"fields,type:jsonb" json:"fields,omitempty"`
	CollectionName string         `bun:"collection"      json:"collection,omitempty"`
	Collection     *Collection    `bun:"-"               json:"-"`
	CreatedAt      time.Time      `bun:"created_at,nullzero,default:current_timestamp" json:"created_at"`
	UpdatedAt      time.Time      `bun:"updated_at,nullzero,default:current_timestamp" json:"updated_at"`
}

// CollectionFields returns the defaults of the owning collection, if any.
func (p *Page) CollectionFields() map[string]any {
	if p == nil || p.Collection == nil {
		return nil
	}
	return p.Collection.Fields
}

// HasRoute reports whether the page is reachable at a URL.
func (p *Page) HasRoute() bool {
	return p != nil && p.Route != ""
}

// NotFoundError represents missing records from store lookups.
type NotFoundError struct {
	Resource string
	Key      string
}

func (e *NotFoundError) Error() string {
	if e.Key == "" {
		return fmt.Sprintf("%s not found", e.Resource)
	}
	return fmt.Sprintf("%s %q not found", e.Resource, e.Key)
}

func clonePage(src *Page) *Page {
	if src == nil {
		return nil
	}
	copied := *src
	copied.Fields = maps.Clone(src.Fields)
	copied.Collection = cloneCollection(src.Collection)
	return &copied
}

func cloneCollection(src *Collection) *Collection {
	if src == nil {
		return nil
	}
	copied := *src
	copied.Fields = maps.Clone(src.Fields)
	return &copied
}
