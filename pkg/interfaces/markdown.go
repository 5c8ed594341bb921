package interfaces

// MarkdownConverter turns Markdown into HTML. Page bodies, the "markdown"
// template func and .md templates all go through one converter.
type MarkdownConverter interface {
	Convert(source []byte) ([]byte, error)
}
