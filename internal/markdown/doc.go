// Package markdown loads pages from a directory of Markdown files and
// provides the goldmark converter shared by the template engines.
//
// Files are laid out as {locale}/{path}.md. Frontmatter becomes page fields
// and the rendered body is exposed as the "body" field. Collection defaults
// live in _collections/{name}.md.
package markdown
