package templates

import (
	"bytes"
	"crypto/sha256"
	"fmt"
	"html/template"
	"io"
	"io/fs"
	"maps"
	"sync"

	"github.com/goliatone/go-pagebuilder/internal/markdown"
	"github.com/goliatone/go-pagebuilder/pkg/interfaces"
)

// HTMLEngine renders html/template files from an fs.FS. Parsed templates
// are cached per path and per inline text.
type HTMLEngine struct {
	fs       fs.FS
	markdown interfaces.MarkdownConverter

	mu      sync.RWMutex
	files   map[string]*template.Template
	inline  map[[sha256.Size]byte]*template.Template
	filters template.FuncMap
	global  any
}

var _ interfaces.TemplateRenderer = (*HTMLEngine)(nil)

// HTMLOption configures an HTMLEngine.
type HTMLOption func(*HTMLEngine)

// WithMarkdown enables the "markdown" template func.
func WithMarkdown(converter interfaces.MarkdownConverter) HTMLOption {
	return func(e *HTMLEngine) {
		e.markdown = converter
	}
}

// NewHTMLEngine builds an engine over fsys.
func NewHTMLEngine(fsys fs.FS, opts ...HTMLOption) *HTMLEngine {
	engine := &HTMLEngine{
		fs:      fsys,
		files:   map[string]*template.Template{},
		inline:  map[[sha256.Size]byte]*template.Template{},
		filters: template.FuncMap{},
	}
	for _, opt := range opts {
		opt(engine)
	}
	return engine
}

// Render renders the template file at name.
func (e *HTMLEngine) Render(name string, data any, out ...io.Writer) (string, error) {
	tpl, err := e.fileTemplate(name)
	if err != nil {
		return "", err
	}
	return execute(tpl, data, out...)
}

// RenderString renders content as an anonymous template.
func (e *HTMLEngine) RenderString(content string, data any, out ...io.Writer) (string, error) {
	key := sha256.Sum256([]byte(content))

	e.mu.RLock()
	tpl, ok := e.inline[key]
	e.mu.RUnlock()
	if !ok {
		parsed, err := template.New("inline").Funcs(e.funcMap()).Parse(content)
		if err != nil {
			return "", fmt.Errorf("templates: parse inline template: %w", err)
		}
		e.mu.Lock()
		e.inline[key] = parsed
		e.mu.Unlock()
		tpl = parsed
	}
	return execute(tpl, data, out...)
}

// RegisterFilter exposes fn to templates as a two-argument func. Cached
// templates are dropped so the filter is visible to later parses.
func (e *HTMLEngine) RegisterFilter(name string, fn func(input any, param any) (any, error)) error {
	if name == "" || fn == nil {
		return fmt.Errorf("templates: filter name and function required")
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	e.filters[name] = fn
	e.files = map[string]*template.Template{}
	e.inline = map[[sha256.Size]byte]*template.Template{}
	return nil
}

// SetGlobals sets the value returned by the "global" template func.
func (e *HTMLEngine) SetGlobals(data any) {
	e.mu.Lock()
	e.global = data
	e.mu.Unlock()
}

func (e *HTMLEngine) fileTemplate(name string) (*template.Template, error) {
	clean, ok := cleanName(name)
	if !ok {
		return nil, fmt.Errorf("templates: invalid template path %q: %w", name, fs.ErrInvalid)
	}

	e.mu.RLock()
	tpl, ok := e.files[clean]
	e.mu.RUnlock()
	if ok {
		return tpl, nil
	}

	if e.fs == nil {
		return nil, fmt.Errorf("templates: %s: %w", clean, fs.ErrNotExist)
	}
	source, err := fs.ReadFile(e.fs, clean)
	if err != nil {
		return nil, fmt.Errorf("templates: read %s: %w", clean, err)
	}
	parsed, err := template.New(clean).Funcs(e.funcMap()).Parse(string(source))
	if err != nil {
		return nil, fmt.Errorf("templates: parse %s: %w", clean, err)
	}

	e.mu.Lock()
	e.files[clean] = parsed
	e.mu.Unlock()
	return parsed, nil
}

func (e *HTMLEngine) funcMap() template.FuncMap {
	funcs := template.FuncMap{
		"safeHTML": toHTML,
		"safeAttr": func(value any) template.HTMLAttr { return template.HTMLAttr(fmt.Sprint(value)) },
		"safeURL":  func(value any) template.URL { return template.URL(fmt.Sprint(value)) },
		"default":  defaultValue,
		"markdown": e.renderMarkdown,
		"global": func() any {
			e.mu.RLock()
			defer e.mu.RUnlock()
			return e.global
		},
	}
	e.mu.RLock()
	maps.Copy(funcs, e.filters)
	e.mu.RUnlock()
	return funcs
}

func (e *HTMLEngine) renderMarkdown(value any) (template.HTML, error) {
	if value == nil {
		return "", nil
	}
	converter := e.markdown
	if converter == nil {
		converter = markdown.NewConverter(markdown.ConvertOptions{})
	}
	out, err := converter.Convert([]byte(fmt.Sprint(value)))
	if err != nil {
		return "", err
	}
	return template.HTML(out), nil
}

func execute(tpl interface {
	Execute(io.Writer, any) error
}, data any, out ...io.Writer) (string, error) {
	var writer io.Writer
	var buffer *bytes.Buffer
	if len(out) > 0 && out[0] != nil {
		writer = out[0]
	} else {
		buffer = &bytes.Buffer{}
		writer = buffer
	}

	if err := tpl.Execute(writer, data); err != nil {
		return "", err
	}
	if buffer != nil {
		return buffer.String(), nil
	}
	return "", nil
}

func toHTML(value any) template.HTML {
	switch v := value.(type) {
	case nil:
		return ""
	case template.HTML:
		return v
	case string:
		return template.HTML(v)
	default:
		return template.HTML(fmt.Sprint(v))
	}
}

func defaultValue(fallback, value any) any {
	switch v := value.(type) {
	case nil:
		return fallback
	case string:
		if v == "" {
			return fallback
		}
	}
	return value
}
