package markdown

import (
	"bytes"
	"fmt"
	"maps"
	"strings"

	"github.com/adrg/frontmatter"
)

// Document is one parsed Markdown source.
type Document struct {
	// Fields holds every frontmatter key.
	Fields map[string]any
	// Body is the Markdown after the frontmatter block.
	Body []byte
}

// reservedKeys are frontmatter keys that steer loading rather than becoming
// page fields.
var reservedKeys = []string{"route", "collection", "name"}

// ParseFrontMatter extracts YAML or TOML frontmatter and the Markdown body.
func ParseFrontMatter(source []byte) (Document, error) {
	var meta map[string]any
	body, err := frontmatter.Parse(bytes.NewReader(source), &meta)
	if err != nil {
		return Document{}, fmt.Errorf("parse frontmatter: %w", err)
	}
	if meta == nil {
		meta = map[string]any{}
	}
	return Document{Fields: normalizeKeys(meta), Body: body}, nil
}

// String returns a frontmatter value as text.
func (d Document) String(key string) string {
	value, ok := d.Fields[key].(string)
	if !ok {
		return ""
	}
	return strings.TrimSpace(value)
}

// PageFields returns the fields minus loader directives.
func (d Document) PageFields() map[string]any {
	out := maps.Clone(d.Fields)
	if out == nil {
		out = map[string]any{}
	}
	for _, key := range reservedKeys {
		delete(out, key)
	}
	return out
}

// normalizeKeys converts nested map[any]any values produced by some
// decoders so templates and the partial decoder see map[string]any.
func normalizeKeys(input map[string]any) map[string]any {
	out := make(map[string]any, len(input))
	for key, value := range input {
		out[key] = normalizeValue(value)
	}
	return out
}

func normalizeValue(value any) any {
	switch v := value.(type) {
	case map[string]any:
		return normalizeKeys(v)
	case map[any]any:
		converted := make(map[string]any, len(v))
		for key, inner := range v {
			converted[fmt.Sprint(key)] = normalizeValue(inner)
		}
		return converted
	case []any:
		out := make([]any, len(v))
		for i, inner := range v {
			out[i] = normalizeValue(inner)
		}
		return out
	default:
		return value
	}
}
