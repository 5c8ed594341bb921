package content

import (
	"github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// NewPageRepository returns the bun repository for pages. Pages are looked
// up by their deterministic id, derived from path and locale.
func NewPageRepository(db *bun.DB) repository.Repository[*Page] {
	return repository.MustNewRepository(db, repository.ModelHandlers[*Page]{
		NewRecord: func() *Page { return &Page{} },
		GetID: func(p *Page) uuid.UUID {
			return p.ID
		},
		SetID: func(p *Page, id uuid.UUID) {
			p.ID = id
		},
		GetIdentifier: func() string {
			return "id"
		},
		GetIdentifierValue: func(p *Page) string {
			if p == nil {
				return ""
			}
			return p.ID.String()
		},
	})
}

// NewCollectionRepository returns the bun repository for collections keyed by name.
func NewCollectionRepository(db *bun.DB) repository.Repository[*Collection] {
	return repository.MustNewRepository(db, repository.ModelHandlers[*Collection]{
		NewRecord: func() *Collection { return &Collection{} },
		GetID: func(c *Collection) uuid.UUID {
			return c.ID
		},
		SetID: func(c *Collection, id uuid.UUID) {
			c.ID = id
		},
		GetIdentifier: func() string {
			return "name"
		},
		GetIdentifierValue: func(c *Collection) string {
			return c.Name
		},
	})
}
