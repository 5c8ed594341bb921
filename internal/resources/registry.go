package resources

import (
	"fmt"
	"html"
	"strings"
	"sync"

	"github.com/goliatone/go-pagebuilder/internal/builderr"
)

// Registry records the URLs already emitted in one document. It is safe for
// concurrent use and must not be shared across document builds.
type Registry struct {
	mu   sync.Mutex
	urls map[string]struct{}
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{urls: map[string]struct{}{}}
}

// Register adds url and reports whether it was not present before.
func (r *Registry) Register(url string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.urls[url]; ok {
		return false
	}
	r.urls[url] = struct{}{}
	return true
}

// Has reports whether url was registered.
func (r *Registry) Has(url string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.urls[url]
	return ok
}

// Len returns the number of registered URLs.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.urls)
}

// Element selects the markup emitted for a resource.
type Element int

const (
	ElementScript Element = iota
	ElementStylesheet
)

func (e Element) preloadAs() string {
	if e == ElementStylesheet {
		return "style"
	}
	return "script"
}

// Deduplicator emits script and stylesheet markup, skipping URLs already
// present in its registry.
type Deduplicator struct {
	Registry *Registry
	Resolver Resolver
	Options  URLOptions
}

// NewDeduplicator wires a deduplicator around a fresh registry.
func NewDeduplicator(resolver Resolver, opts URLOptions) *Deduplicator {
	return &Deduplicator{Registry: NewRegistry(), Resolver: resolver, Options: opts}
}

// Emit returns the markup for res, or an empty string if its URL was already
// emitted. A resource with no derivable URL is a configuration error.
func (d *Deduplicator) Emit(element Element, res Resource) (string, error) {
	if element != ElementScript && element != ElementStylesheet {
		return "", fmt.Errorf("resources: unknown element %d", element)
	}
	url, ok := d.Resolver.URL(res, d.Options)
	if !ok || url == "" {
		return "", builderr.UnresolvedResource(res.String())
	}
	if !d.Registry.Register(url) {
		return "", nil
	}

	opts := res.Options()
	escaped := html.EscapeString(url)
	var b strings.Builder
	if opts.Preload {
		fmt.Fprintf(&b, `<link rel="preload" href="%s" as="%s">`, escaped, element.preloadAs())
	}
	switch element {
	case ElementStylesheet:
		fmt.Fprintf(&b, `<link rel="stylesheet" href="%s">`, escaped)
	case ElementScript:
		b.WriteString(`<script src="`)
		b.WriteString(escaped)
		b.WriteString(`"`)
		if opts.Async {
			b.WriteString(" async")
		}
		if opts.Defer {
			b.WriteString(" defer")
		}
		b.WriteString("></script>")
	}
	return b.String(), nil
}
