// Package fields implements the two-level field lookup used while rendering:
// page values win over the defaults declared by the owning collection.
package fields

import (
	"fmt"
	"strings"
)

// Resolver looks up fields on a page, falling back to collection defaults.
type Resolver struct {
	page       map[string]any
	collection map[string]any
}

// NewResolver builds a resolver over page fields and optional collection defaults.
func NewResolver(page, collection map[string]any) Resolver {
	return Resolver{page: page, collection: collection}
}

// Resolve returns the value for name and whether any level defined it.
func (r Resolver) Resolve(name string) (any, bool) {
	if value, ok := r.page[name]; ok {
		return value, true
	}
	if value, ok := r.collection[name]; ok {
		return value, true
	}
	return nil, false
}

// IsFalse reports whether name resolves to the boolean false. Absent,
// nil and other falsy values do not count.
func (r Resolver) IsFalse(name string) bool {
	value, ok := r.Resolve(name)
	if !ok {
		return false
	}
	b, isBool := value.(bool)
	return isBool && !b
}

// String returns the value as trimmed text. Non-string scalars are formatted.
func (r Resolver) String(name string) (string, bool) {
	value, ok := r.Resolve(name)
	if !ok || value == nil {
		return "", false
	}
	switch v := value.(type) {
	case string:
		trimmed := strings.TrimSpace(v)
		return trimmed, trimmed != ""
	case fmt.Stringer:
		text := strings.TrimSpace(v.String())
		return text, text != ""
	case bool, int, int64, float64:
		return fmt.Sprint(v), true
	default:
		return "", false
	}
}

// StringOr returns the field text or fallback when the field is absent or empty.
func (r Resolver) StringOr(name, fallback string) string {
	if value, ok := r.String(name); ok {
		return value
	}
	return fallback
}

// Bool returns the boolean value of name. Strings "true" and "false" are accepted.
func (r Resolver) Bool(name string) (bool, bool) {
	value, ok := r.Resolve(name)
	if !ok {
		return false, false
	}
	switch v := value.(type) {
	case bool:
		return v, true
	case string:
		switch strings.ToLower(strings.TrimSpace(v)) {
		case "true", "yes", "1":
			return true, true
		case "false", "no", "0":
			return false, true
		}
	}
	return false, false
}

// Merged flattens both levels into one map, page values winning. The result
// is what templates see as .Fields.
func (r Resolver) Merged() map[string]any {
	out := make(map[string]any, len(r.page)+len(r.collection))
	for k, v := range r.collection {
		out[k] = v
	}
	for k, v := range r.page {
		out[k] = v
	}
	return out
}
