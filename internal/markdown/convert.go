package markdown

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer/html"

	"github.com/goliatone/go-pagebuilder/pkg/interfaces"
)

// ConvertOptions selects goldmark behaviour.
type ConvertOptions struct {
	// Extensions names goldmark extenders; nil selects gfm, linkify and
	// tasklist. Unknown names are ignored.
	Extensions []string
	HardWraps  bool
	// EscapeHTML drops raw HTML found in content instead of passing it through.
	EscapeHTML bool
}

var extenders = map[string]goldmark.Extender{
	"gfm":           extension.GFM,
	"table":         extension.Table,
	"strikethrough": extension.Strikethrough,
	"linkify":       extension.Linkify,
	"tasklist":      extension.TaskList,
	"definition":    extension.DefinitionList,
	"footnote":      extension.Footnote,
	"typographer":   extension.Typographer,
}

var defaultExtensions = []string{"gfm", "linkify", "tasklist"}

// Converter is a goldmark engine built once and shared by every caller.
type Converter struct {
	engine goldmark.Markdown
}

var _ interfaces.MarkdownConverter = (*Converter)(nil)

// NewConverter builds a goldmark engine. Headings always get generated ids so
// partials can link to sections.
func NewConverter(opts ConvertOptions) *Converter {
	names := opts.Extensions
	if names == nil {
		names = defaultExtensions
	}
	var exts []goldmark.Extender
	seen := map[string]bool{}
	for _, name := range names {
		key := strings.ToLower(strings.TrimSpace(name))
		if ext, ok := extenders[key]; ok && !seen[key] {
			seen[key] = true
			exts = append(exts, ext)
		}
	}

	var rendering []goldmark.Option
	if opts.HardWraps {
		rendering = append(rendering, goldmark.WithRendererOptions(html.WithHardWraps()))
	}
	if !opts.EscapeHTML {
		rendering = append(rendering, goldmark.WithRendererOptions(html.WithUnsafe()))
	}

	engine := goldmark.New(append([]goldmark.Option{
		goldmark.WithExtensions(exts...),
		goldmark.WithParserOptions(parser.WithAutoHeadingID()),
	}, rendering...)...)
	return &Converter{engine: engine}
}

func (c *Converter) Convert(source []byte) ([]byte, error) {
	var buf bytes.Buffer
	if err := c.engine.Convert(source, &buf); err != nil {
		return nil, fmt.Errorf("markdown: convert: %w", err)
	}
	return buf.Bytes(), nil
}

// ConvertString is the string form used by template funcs.
func (c *Converter) ConvertString(source string) (string, error) {
	out, err := c.Convert([]byte(source))
	return string(out), err
}
