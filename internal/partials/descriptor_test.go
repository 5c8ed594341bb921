package partials

import (
	"errors"
	"testing"
)

func TestDecodeString(t *testing.T) {
	d, err := Decode("hero")
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if d.Kind() != KindNamed || d.Name() != "hero" || !d.Inspector() {
		t.Fatalf("unexpected descriptor %#v", d)
	}
}

func TestDecodeMap(t *testing.T) {
	d, err := Decode(map[string]any{
		"partial":   "hero",
		"inspector": false,
		"fields":    map[string]any{"title": "Hi"},
		"subtitle":  "there",
	})
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if d.Kind() != KindNamed || d.Inspector() {
		t.Fatalf("expected named descriptor without inspector, got %#v", d)
	}
	fields := d.Fields()
	if fields["title"] != "Hi" || fields["subtitle"] != "there" {
		t.Fatalf("unexpected fields %#v", fields)
	}
}

func TestDecodeInlineFromYAMLMap(t *testing.T) {
	d, err := Decode(map[any]any{"template": "inline/promo.html"})
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if d.Kind() != KindInline || d.Name() != "promo" || d.TemplatePath() != "inline/promo.html" {
		t.Fatalf("unexpected descriptor %#v", d)
	}
}

func TestDecodeRejectsEmptyDescriptor(t *testing.T) {
	for _, value := range []any{nil, "", map[string]any{"title": "x"}, 42} {
		if _, err := Decode(value); !errors.Is(err, ErrInvalidDescriptor) {
			t.Fatalf("expected ErrInvalidDescriptor for %#v, got %v", value, err)
		}
	}
}

func TestDecodeListKeepsOrder(t *testing.T) {
	list, err := DecodeList([]any{"a", map[string]any{"name": "b"}, "c"})
	if err != nil {
		t.Fatalf("decode list: %v", err)
	}
	if len(list) != 3 || list[0].Name() != "a" || list[1].Name() != "b" || list[2].Name() != "c" {
		t.Fatalf("unexpected order %#v", list)
	}
	if _, err := DecodeList([]any{"a", ""}); !errors.Is(err, ErrInvalidDescriptor) {
		t.Fatalf("expected entry error, got %v", err)
	}
}

func TestDescriptorFieldsAreCopied(t *testing.T) {
	source := map[string]any{"title": "x"}
	d := Named("hero", source)
	source["title"] = "changed"
	if d.Fields()["title"] != "x" {
		t.Fatalf("expected descriptor to own its fields")
	}
}
