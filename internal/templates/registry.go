// Package templates provides the template engines used for partials and
// fragments, selected by file extension.
package templates

import (
	"errors"
	"fmt"
	"io/fs"
	"path"
	"strings"
	"sync"

	"github.com/goliatone/go-pagebuilder/internal/markdown"
	"github.com/goliatone/go-pagebuilder/pkg/interfaces"
)

// ErrNoEngine is returned when no engine handles a file extension.
var ErrNoEngine = errors.New("templates: no engine registered for extension")

// Registry maps file extensions to engines over one template filesystem.
type Registry struct {
	fs fs.FS

	mu      sync.RWMutex
	engines map[string]interfaces.TemplateRenderer
}

var _ interfaces.TemplateEngines = (*Registry)(nil)

// NewRegistry creates an empty registry over fsys.
func NewRegistry(fsys fs.FS) *Registry {
	return &Registry{fs: fsys, engines: map[string]interfaces.TemplateRenderer{}}
}

// NewDefaultRegistry registers the html/template engine for .html and .tmpl
// and the Markdown engine for .md.
func NewDefaultRegistry(fsys fs.FS, converter interfaces.MarkdownConverter) *Registry {
	if converter == nil {
		converter = markdown.NewConverter(markdown.ConvertOptions{})
	}
	registry := NewRegistry(fsys)
	html := NewHTMLEngine(fsys, WithMarkdown(converter))
	registry.Register(".html", html)
	registry.Register(".tmpl", html)
	registry.Register(".md", NewMarkdownEngine(fsys, converter))
	return registry
}

// Register binds engine to ext (with or without the leading dot).
func (r *Registry) Register(ext string, engine interfaces.TemplateRenderer) {
	key := normalizeExt(ext)
	r.mu.Lock()
	defer r.mu.Unlock()
	r.engines[key] = engine
}

// EngineFor returns the engine for the extension of p.
func (r *Registry) EngineFor(p string) (interfaces.TemplateRenderer, error) {
	key := normalizeExt(path.Ext(p))
	r.mu.RLock()
	engine, ok := r.engines[key]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w %q (%s)", ErrNoEngine, key, p)
	}
	return engine, nil
}

// Exists reports whether p names a regular file in the template filesystem.
func (r *Registry) Exists(p string) bool {
	name, ok := cleanName(p)
	if !ok || r.fs == nil {
		return false
	}
	info, err := fs.Stat(r.fs, name)
	return err == nil && !info.IsDir()
}

// ReadFile reads p from the template filesystem.
func (r *Registry) ReadFile(p string) ([]byte, error) {
	name, ok := cleanName(p)
	if !ok {
		return nil, fmt.Errorf("templates: invalid path %q: %w", p, fs.ErrInvalid)
	}
	if r.fs == nil {
		return nil, fmt.Errorf("templates: no filesystem configured: %w", fs.ErrNotExist)
	}
	return fs.ReadFile(r.fs, name)
}

// FS exposes the template filesystem.
func (r *Registry) FS() fs.FS {
	return r.fs
}

// Render renders the file at p with the engine registered for its extension.
func (r *Registry) Render(p string, data any) (string, error) {
	engine, err := r.EngineFor(p)
	if err != nil {
		return "", err
	}
	return engine.Render(p, data)
}

// RegisterFilter adds fn to every engine that accepts template funcs.
func (r *Registry) RegisterFilter(name string, fn func(input any, param any) (any, error)) error {
	r.mu.RLock()
	defer r.mu.RUnlock()
	seen := map[interfaces.TemplateRenderer]bool{}
	for _, engine := range r.engines {
		registrar, ok := engine.(interfaces.FilterRegistrar)
		if !ok || seen[engine] {
			continue
		}
		seen[engine] = true
		if err := registrar.RegisterFilter(name, fn); err != nil {
			return err
		}
	}
	return nil
}

// SetGlobals exposes data through the "global" func of every engine that has one.
func (r *Registry) SetGlobals(data any) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, engine := range r.engines {
		if g, ok := engine.(interface{ SetGlobals(any) }); ok {
			g.SetGlobals(data)
		}
	}
}

// RenderText renders text as an anonymous template using the engine for
// the extension of p.
func (r *Registry) RenderText(p, text string, data any) (string, error) {
	engine, err := r.EngineFor(p)
	if err != nil {
		return "", err
	}
	return engine.RenderString(text, data)
}

func normalizeExt(ext string) string {
	ext = strings.ToLower(strings.TrimSpace(ext))
	if ext != "" && !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	return ext
}

func cleanName(p string) (string, bool) {
	name := path.Clean(strings.TrimPrefix(strings.TrimSpace(p), "/"))
	if name == "." || !fs.ValidPath(name) {
		return "", false
	}
	return name, true
}
