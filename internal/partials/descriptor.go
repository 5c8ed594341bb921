// Package partials renders partial modules: reusable template fragments
// wrapped in a module boundary, with their conventional stylesheet and
// script emitted through the per-document deduplicator.
package partials

import (
	"errors"
	"fmt"
	"maps"
	"path"
	"strings"
)

// ErrInvalidDescriptor is returned for descriptors with neither a name nor a
// template path.
var ErrInvalidDescriptor = errors.New("partials: descriptor requires a name or a template path")

// Kind tags the variant held by a Descriptor.
type Kind int

const (
	KindNamed Kind = iota + 1
	KindInline
)

// Descriptor identifies one partial to render. Named descriptors locate their
// template through the view path template; inline descriptors carry the path
// of the template file.
type Descriptor struct {
	kind      Kind
	name      string
	path      string
	fields    map[string]any
	inspector bool
}

// Named describes a conventionally located partial.
func Named(name string, fields map[string]any) Descriptor {
	return Descriptor{kind: KindNamed, name: strings.TrimSpace(name), fields: maps.Clone(fields), inspector: true}
}

// Inline describes a partial rendered from an explicit template file. An
// empty name is derived from the file name.
func Inline(name, templatePath string, fields map[string]any) Descriptor {
	templatePath = strings.TrimSpace(templatePath)
	name = strings.TrimSpace(name)
	if name == "" && templatePath != "" {
		base := path.Base(templatePath)
		name = strings.TrimSuffix(base, path.Ext(base))
	}
	return Descriptor{kind: KindInline, name: name, path: templatePath, fields: maps.Clone(fields), inspector: true}
}

// WithoutInspector opts the descriptor out of the inspector marker.
func (d Descriptor) WithoutInspector() Descriptor {
	d.inspector = false
	return d
}

func (d Descriptor) Kind() Kind           { return d.kind }
func (d Descriptor) Name() string         { return d.name }
func (d Descriptor) TemplatePath() string { return d.path }
func (d Descriptor) Inspector() bool      { return d.inspector }

// Fields returns a copy of the descriptor field data.
func (d Descriptor) Fields() map[string]any {
	return maps.Clone(d.fields)
}

// Validate reports whether the descriptor can be rendered.
func (d Descriptor) Validate() error {
	if d.name == "" && d.path == "" {
		return ErrInvalidDescriptor
	}
	switch d.kind {
	case KindNamed:
		if d.name == "" {
			return ErrInvalidDescriptor
		}
		return nil
	case KindInline:
		if d.path == "" {
			return fmt.Errorf("%w: inline partial %q has no template path", ErrInvalidDescriptor, d.name)
		}
		return nil
	default:
		return fmt.Errorf("partials: unknown descriptor kind %d", d.kind)
	}
}

// Decode converts a field value into a descriptor. A string names a partial.
// A map may carry "partial" (or "name"), "template", "inspector" and
// "fields"; remaining keys are merged into the fields.
func Decode(value any) (Descriptor, error) {
	switch typed := value.(type) {
	case Descriptor:
		return typed, typed.Validate()
	case string:
		d := Named(typed, nil)
		return d, d.Validate()
	case map[string]any:
		return decodeMap(typed)
	case map[any]any:
		converted := make(map[string]any, len(typed))
		for key, v := range typed {
			converted[fmt.Sprint(key)] = v
		}
		return decodeMap(converted)
	case nil:
		return Descriptor{}, ErrInvalidDescriptor
	default:
		return Descriptor{}, fmt.Errorf("%w: unsupported value %T", ErrInvalidDescriptor, value)
	}
}

// DecodeList converts a "partials" field into descriptors in list order.
func DecodeList(value any) ([]Descriptor, error) {
	var items []any
	switch typed := value.(type) {
	case nil:
		return nil, nil
	case []Descriptor:
		items = make([]any, len(typed))
		for i, d := range typed {
			items[i] = d
		}
	case []any:
		items = typed
	case []string:
		items = make([]any, len(typed))
		for i, name := range typed {
			items[i] = name
		}
	case []map[string]any:
		items = make([]any, len(typed))
		for i, m := range typed {
			items[i] = m
		}
	default:
		return nil, fmt.Errorf("partials: unsupported partial list %T", value)
	}

	out := make([]Descriptor, 0, len(items))
	for i, item := range items {
		d, err := Decode(item)
		if err != nil {
			return nil, fmt.Errorf("partials: entry %d: %w", i, err)
		}
		out = append(out, d)
	}
	return out, nil
}

func decodeMap(raw map[string]any) (Descriptor, error) {
	name := stringValue(raw["partial"])
	if name == "" {
		name = stringValue(raw["name"])
	}
	templatePath := stringValue(raw["template"])

	fields := map[string]any{}
	if nested, ok := raw["fields"].(map[string]any); ok {
		maps.Copy(fields, nested)
	}
	for key, v := range raw {
		switch key {
		case "partial", "name", "template", "inspector", "fields":
			continue
		}
		fields[key] = v
	}

	var d Descriptor
	if templatePath != "" {
		d = Inline(name, templatePath, fields)
	} else {
		d = Named(name, fields)
	}
	if enabled, ok := raw["inspector"].(bool); ok && !enabled {
		d = d.WithoutInspector()
	}
	return d, d.Validate()
}

func stringValue(value any) string {
	s, _ := value.(string)
	return strings.TrimSpace(s)
}
