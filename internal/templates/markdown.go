package templates

import (
	"crypto/sha256"
	"fmt"
	"io"
	"io/fs"
	"strings"
	"sync"
	"text/template"

	"github.com/goliatone/go-pagebuilder/internal/markdown"
	"github.com/goliatone/go-pagebuilder/pkg/interfaces"
)

// MarkdownEngine expands a text/template over Markdown source, then renders
// the result to HTML with goldmark.
type MarkdownEngine struct {
	fs        fs.FS
	converter interfaces.MarkdownConverter

	mu      sync.RWMutex
	cache   map[string]*template.Template
	filters template.FuncMap
}

var _ interfaces.TemplateRenderer = (*MarkdownEngine)(nil)

// NewMarkdownEngine builds an engine over fsys.
func NewMarkdownEngine(fsys fs.FS, converter interfaces.MarkdownConverter) *MarkdownEngine {
	if converter == nil {
		converter = markdown.NewConverter(markdown.ConvertOptions{})
	}
	return &MarkdownEngine{
		fs:        fsys,
		converter: converter,
		cache:     map[string]*template.Template{},
		filters:   template.FuncMap{},
	}
}

// Render renders the Markdown template file at name.
func (e *MarkdownEngine) Render(name string, data any, out ...io.Writer) (string, error) {
	clean, ok := cleanName(name)
	if !ok {
		return "", fmt.Errorf("templates: invalid template path %q: %w", name, fs.ErrInvalid)
	}
	if e.fs == nil {
		return "", fmt.Errorf("templates: %s: %w", clean, fs.ErrNotExist)
	}
	source, err := fs.ReadFile(e.fs, clean)
	if err != nil {
		return "", fmt.Errorf("templates: read %s: %w", clean, err)
	}
	return e.RenderString(string(source), data, out...)
}

// RenderString expands content and converts the Markdown to HTML.
func (e *MarkdownEngine) RenderString(content string, data any, out ...io.Writer) (string, error) {
	sum := sha256.Sum256([]byte(content))
	key := string(sum[:])

	e.mu.RLock()
	tpl, ok := e.cache[key]
	e.mu.RUnlock()
	if !ok {
		e.mu.RLock()
		funcs := template.FuncMap{}
		for name, fn := range e.filters {
			funcs[name] = fn
		}
		e.mu.RUnlock()

		parsed, err := template.New("markdown").Funcs(funcs).Parse(content)
		if err != nil {
			return "", fmt.Errorf("templates: parse markdown template: %w", err)
		}
		e.mu.Lock()
		e.cache[key] = parsed
		e.mu.Unlock()
		tpl = parsed
	}

	var expanded strings.Builder
	if err := tpl.Execute(&expanded, data); err != nil {
		return "", err
	}
	html, err := e.converter.Convert([]byte(expanded.String()))
	if err != nil {
		return "", err
	}
	if len(out) > 0 && out[0] != nil {
		_, err := out[0].Write(html)
		return "", err
	}
	return string(html), nil
}

// RegisterFilter exposes fn to Markdown templates.
func (e *MarkdownEngine) RegisterFilter(name string, fn func(input any, param any) (any, error)) error {
	if name == "" || fn == nil {
		return fmt.Errorf("templates: filter name and function required")
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	e.filters[name] = fn
	e.cache = map[string]*template.Template{}
	return nil
}
