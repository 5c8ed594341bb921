package interfaces

import "io"

// TemplateRenderer renders partial templates for one file extension. With a
// writer in out the result is streamed there and the returned string is empty.
type TemplateRenderer interface {
	Render(name string, data any, out ...io.Writer) (string, error)
	RenderString(source string, data any, out ...io.Writer) (string, error)
}

// TemplateEngines picks the renderer for a partial template path by extension.
type TemplateEngines interface {
	EngineFor(path string) (TemplateRenderer, error)
}

// FilterRegistrar is implemented by renderers that accept extra template funcs.
type FilterRegistrar interface {
	RegisterFilter(name string, fn func(input any, param any) (any, error)) error
}
