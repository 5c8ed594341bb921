package document

import (
	"context"
	"fmt"
	"html"
	"io/fs"
	"slices"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"golang.org/x/sync/errgroup"

	"github.com/goliatone/go-pagebuilder/internal/builderr"
	"github.com/goliatone/go-pagebuilder/internal/partials"
)

// Page fields driving the body layout.
const (
	FieldPartials = "partials"
	FieldHeader   = "header"
	FieldFooter   = "footer"
)

// MainClass is the class of the main content container.
const MainClass = "pagebuilder-main"

// bodyClassTemplate selects the engine used for the body class template.
const bodyClassTemplate = "body-class.html"

func (b *Builder) body(ctx context.Context, state *buildState) (string, error) {
	var out strings.Builder

	class, err := b.bodyClass(state)
	if err != nil {
		return "", err
	}
	if class != "" {
		fmt.Fprintf(&out, `<body class="%s">`+"\n", class)
	} else {
		out.WriteString("<body>\n")
	}

	prepend, err := b.renderFragments(ctx, state, b.cfg.Body.Prepend)
	if err != nil {
		return "", err
	}
	writeFragment(&out, prepend)

	fmt.Fprintf(&out, `<main class="%s">`+"\n", MainClass)
	modules, err := b.renderModules(ctx, state)
	if err != nil {
		return "", err
	}
	writeFragment(&out, modules)
	out.WriteString("</main>\n")

	appendix, err := b.renderFragments(ctx, state, b.cfg.Body.Append)
	if err != nil {
		return "", err
	}
	writeFragment(&out, appendix)

	out.WriteString("</body>")
	return out.String(), nil
}

// bodyClass renders the configured class template. The html engine escapes
// the result, so it is safe inside the attribute.
func (b *Builder) bodyClass(state *buildState) (string, error) {
	text := strings.TrimSpace(b.cfg.Body.Class)
	if text == "" {
		return "", nil
	}
	if !strings.Contains(text, "{{") {
		return strings.Join(strings.Fields(html.EscapeString(text)), " "), nil
	}
	rendered, err := b.templates.RenderText(bodyClassTemplate, text, state.data)
	if err != nil {
		return "", fmt.Errorf("document: render body class: %w", err)
	}
	return strings.Join(strings.Fields(rendered), " "), nil
}

// modules collects header, content partials and footer in document order.
func (b *Builder) modules(state *buildState) ([]partials.Descriptor, error) {
	var list []partials.Descriptor

	header, ok, err := b.chrome(state, FieldHeader, b.cfg.Partials.Header)
	if err != nil {
		return nil, err
	}
	if ok {
		list = append(list, header)
	}

	if value, found := state.fields.Resolve(FieldPartials); found {
		content, err := partials.DecodeList(value)
		if err != nil {
			return nil, err
		}
		list = append(list, content...)
	}

	footer, ok, err := b.chrome(state, FieldFooter, b.cfg.Partials.Footer)
	if err != nil {
		return nil, err
	}
	if ok {
		list = append(list, footer)
	}
	return list, nil
}

// chrome resolves the header or footer descriptor. An explicit false
// suppresses it; a string or map overrides the configured default.
func (b *Builder) chrome(state *buildState, field, fallback string) (partials.Descriptor, bool, error) {
	if state.fields.IsFalse(field) {
		return partials.Descriptor{}, false, nil
	}
	if value, found := state.fields.Resolve(field); found {
		switch value.(type) {
		case string, map[string]any, map[any]any:
			d, err := partials.Decode(value)
			if err != nil {
				return partials.Descriptor{}, false, fmt.Errorf("document: %s: %w", field, err)
			}
			return d, true, nil
		}
	}
	if strings.TrimSpace(fallback) == "" {
		return partials.Descriptor{}, false, nil
	}
	return partials.Named(fallback, nil), true, nil
}

// renderModules prepares every module in document order, so resource
// markup is placed deterministically, then renders the templates
// concurrently and joins them by index.
func (b *Builder) renderModules(ctx context.Context, state *buildState) (string, error) {
	list, err := b.modules(state)
	if err != nil {
		return "", err
	}
	if len(list) == 0 {
		return "", nil
	}

	prepared := make([]string, len(list))
	for i, d := range list {
		markup, err := b.partials.Prepare(state.partial, d)
		if err != nil {
			return "", err
		}
		prepared[i] = markup
	}

	rendered := make([]string, len(list))
	g, gctx := errgroup.WithContext(ctx)
	for i, d := range list {
		g.Go(func() error {
			markup, err := b.partials.RenderModule(gctx, state.partial, d, state.data)
			if err != nil {
				return err
			}
			rendered[i] = markup
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return "", err
	}

	var out strings.Builder
	for i := range list {
		writeFragment(&out, prepared[i])
		writeFragment(&out, rendered[i])
	}
	return out.String(), nil
}

// renderFragments renders configured template paths (doublestar globs
// allowed) concurrently and concatenates them in configured order.
func (b *Builder) renderFragments(ctx context.Context, state *buildState, patterns []string) (string, error) {
	paths, err := b.expandFragments(patterns)
	if err != nil {
		return "", err
	}
	if len(paths) == 0 {
		return "", nil
	}

	results := make([]string, len(paths))
	g, gctx := errgroup.WithContext(ctx)
	for i, p := range paths {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			out, err := b.templates.Render(p, state.data)
			if err != nil {
				return fmt.Errorf("document: render fragment %s: %w", p, err)
			}
			results[i] = out
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return "", err
	}

	var out strings.Builder
	for _, result := range results {
		writeFragment(&out, result)
	}
	return out.String(), nil
}

func (b *Builder) expandFragments(patterns []string) ([]string, error) {
	var paths []string
	for _, pattern := range patterns {
		pattern = strings.TrimPrefix(strings.TrimSpace(pattern), "/")
		if pattern == "" {
			continue
		}
		if !hasGlobMeta(pattern) {
			if !b.templates.Exists(pattern) {
				return nil, builderr.MissingTemplate("fragment", pattern, fs.ErrNotExist)
			}
			paths = append(paths, pattern)
			continue
		}
		fsys := b.templates.FS()
		if fsys == nil {
			continue
		}
		matches, err := doublestar.Glob(fsys, pattern, doublestar.WithFilesOnly())
		if err != nil {
			return nil, fmt.Errorf("document: expand fragment %q: %w", pattern, err)
		}
		slices.Sort(matches)
		paths = append(paths, matches...)
	}
	return paths, nil
}

func hasGlobMeta(pattern string) bool {
	return strings.ContainsAny(pattern, "*?[{")
}
