package document

import (
	"errors"
	"io"
	"strings"

	"golang.org/x/net/html"
)

const indentUnit = "  "

// blockElements start their own line. Everything else flows inline.
var blockElements = map[string]bool{
	"html": true, "head": true, "body": true, "main": true, "header": true,
	"footer": true, "nav": true, "section": true, "article": true, "aside": true,
	"div": true, "p": true, "ul": true, "ol": true, "li": true, "dl": true,
	"dt": true, "dd": true, "table": true, "thead": true, "tbody": true,
	"tfoot": true, "tr": true, "td": true, "th": true, "caption": true,
	"form": true, "fieldset": true, "legend": true, "h1": true, "h2": true,
	"h3": true, "h4": true, "h5": true, "h6": true, "blockquote": true,
	"figure": true, "figcaption": true, "title": true, "script": true,
	"style": true, "noscript": true, "template": true, "address": true,
	"details": true, "summary": true, "meta": true, "link": true, "base": true,
	"hr": true, "pre": true, "picture": true, "video": true, "audio": true,
	"iframe": true, "svg": true, "select": true, "option": true,
}

var voidElements = map[string]bool{
	"area": true, "base": true, "br": true, "col": true, "embed": true,
	"hr": true, "img": true, "input": true, "link": true, "meta": true,
	"source": true, "track": true, "wbr": true,
}

// verbatimElements keep their content byte for byte.
var verbatimElements = map[string]bool{
	"pre": true, "textarea": true, "script": true, "style": true,
}

type token struct {
	kind html.TokenType
	name string
	raw  string
}

// Beautify reindents markup with two spaces per level. Attribute values,
// entity encoding and the contents of pre, textarea, script and style are
// left untouched. Input the tokenizer rejects is returned unchanged.
func Beautify(src string) string {
	tokens, err := tokenize(src)
	if err != nil {
		return src
	}
	f := &formatter{tokens: tokens}
	f.run()
	return f.out.String()
}

// StripBlankLines removes empty and whitespace-only lines.
func StripBlankLines(src string) string {
	lines := strings.Split(src, "\n")
	kept := lines[:0]
	for _, line := range lines {
		if strings.TrimSpace(line) != "" {
			kept = append(kept, line)
		}
	}
	if len(kept) == 0 {
		return ""
	}
	return strings.Join(kept, "\n") + "\n"
}

func tokenize(src string) ([]token, error) {
	z := html.NewTokenizer(strings.NewReader(src))
	var out []token
	for {
		kind := z.Next()
		if kind == html.ErrorToken {
			if errors.Is(z.Err(), io.EOF) {
				return out, nil
			}
			return nil, z.Err()
		}
		t := token{kind: kind, raw: string(z.Raw())}
		switch kind {
		case html.StartTagToken, html.EndTagToken, html.SelfClosingTagToken:
			name, _ := z.TagName()
			t.name = string(name)
		}
		out = append(out, t)
	}
}

type formatter struct {
	tokens []token
	out    strings.Builder
	line   strings.Builder
	depth  int
}

func (f *formatter) run() {
	for i := 0; i < len(f.tokens); i++ {
		t := f.tokens[i]
		switch t.kind {
		case html.DoctypeToken, html.CommentToken:
			f.flush()
			f.writeLine(t.raw)
		case html.TextToken:
			f.text(t.raw)
		case html.SelfClosingTagToken:
			if blockElements[t.name] {
				f.flush()
				f.writeLine(t.raw)
				continue
			}
			f.line.WriteString(t.raw)
		case html.StartTagToken:
			i = f.start(i)
		case html.EndTagToken:
			if !blockElements[t.name] {
				f.line.WriteString(t.raw)
				continue
			}
			f.flush()
			if f.depth > 0 {
				f.depth--
			}
			f.writeLine(t.raw)
		}
	}
	f.flush()
}

// start handles the start tag at i and returns the index of the last token
// it consumed.
func (f *formatter) start(i int) int {
	t := f.tokens[i]
	block := blockElements[t.name]

	if verbatimElements[t.name] {
		end := f.matching(i)
		if end < 0 {
			end = len(f.tokens) - 1
		}
		if block {
			f.flush()
		}
		for _, inner := range f.tokens[i : end+1] {
			f.line.WriteString(inner.raw)
		}
		if block {
			f.flush()
		}
		return end
	}
	if !block {
		f.line.WriteString(t.raw)
		return i
	}

	f.flush()
	if voidElements[t.name] {
		f.writeLine(t.raw)
		return i
	}
	end := f.matching(i)
	if end > i && f.inlineOnly(i+1, end) {
		var collapsed strings.Builder
		for _, inner := range f.tokens[i : end+1] {
			collapsed.WriteString(inner.raw)
		}
		f.writeLine(collapsed.String())
		return end
	}
	f.writeLine(t.raw)
	f.depth++
	return i
}

// matching finds the end tag closing the start tag at i, or -1.
func (f *formatter) matching(i int) int {
	name := f.tokens[i].name
	nesting := 0
	for j := i + 1; j < len(f.tokens); j++ {
		t := f.tokens[j]
		if t.name != name {
			continue
		}
		switch t.kind {
		case html.StartTagToken:
			nesting++
		case html.EndTagToken:
			if nesting == 0 {
				return j
			}
			nesting--
		}
	}
	return -1
}

// inlineOnly reports whether tokens in [from, to) fit on one line.
func (f *formatter) inlineOnly(from, to int) bool {
	for _, t := range f.tokens[from:to] {
		switch t.kind {
		case html.CommentToken, html.DoctypeToken:
			return false
		case html.TextToken:
			if strings.Contains(t.raw, "\n") {
				return false
			}
		default:
			if blockElements[t.name] || verbatimElements[t.name] {
				return false
			}
		}
	}
	return true
}

func (f *formatter) text(raw string) {
	segments := strings.Split(raw, "\n")
	f.line.WriteString(segments[0])
	for _, segment := range segments[1:] {
		f.flush()
		f.line.WriteString(segment)
	}
}

func (f *formatter) flush() {
	content := strings.TrimSpace(f.line.String())
	f.line.Reset()
	if content != "" {
		f.writeLine(content)
	}
}

func (f *formatter) writeLine(content string) {
	f.out.WriteString(strings.Repeat(indentUnit, f.depth))
	f.out.WriteString(content)
	f.out.WriteString("\n")
}
