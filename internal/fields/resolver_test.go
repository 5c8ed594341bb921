package fields

import "testing"

func TestResolvePrefersPageFields(t *testing.T) {
	r := NewResolver(
		map[string]any{"title": "Page"},
		map[string]any{"title": "Collection", "footer": false},
	)

	if got, _ := r.Resolve("title"); got != "Page" {
		t.Fatalf("expected page value, got %v", got)
	}
	if got, ok := r.Resolve("footer"); !ok || got != false {
		t.Fatalf("expected collection fallback, got %v (%v)", got, ok)
	}
	if _, ok := r.Resolve("missing"); ok {
		t.Fatalf("expected missing field to be absent")
	}
}

func TestIsFalseOnlyForExplicitFalse(t *testing.T) {
	r := NewResolver(map[string]any{
		"header": false,
		"footer": nil,
		"aside":  "false",
		"nav":    0,
	}, nil)

	if !r.IsFalse("header") {
		t.Fatalf("expected explicit false to be detected")
	}
	for _, name := range []string{"footer", "aside", "nav", "missing"} {
		if r.IsFalse(name) {
			t.Fatalf("expected %s not to count as explicit false", name)
		}
	}
}

func TestPageCanOverrideCollectionFalse(t *testing.T) {
	r := NewResolver(map[string]any{"header": "site-header"}, map[string]any{"header": false})
	if r.IsFalse("header") {
		t.Fatalf("page value must override collection false")
	}
}

func TestStringHelpers(t *testing.T) {
	r := NewResolver(map[string]any{"title": "  Hello ", "empty": " ", "count": 3}, nil)

	if got := r.StringOr("title", "x"); got != "Hello" {
		t.Fatalf("expected trimmed title, got %q", got)
	}
	if got := r.StringOr("empty", "fallback"); got != "fallback" {
		t.Fatalf("expected fallback for blank value, got %q", got)
	}
	if got, ok := r.String("count"); !ok || got != "3" {
		t.Fatalf("expected formatted number, got %q", got)
	}
}

func TestBool(t *testing.T) {
	r := NewResolver(map[string]any{"noindex": "true", "draft": false}, nil)
	if v, ok := r.Bool("noindex"); !ok || !v {
		t.Fatalf("expected noindex true")
	}
	if v, ok := r.Bool("draft"); !ok || v {
		t.Fatalf("expected draft false")
	}
	if _, ok := r.Bool("missing"); ok {
		t.Fatalf("expected missing bool to be absent")
	}
}

func TestMergedPageWins(t *testing.T) {
	r := NewResolver(map[string]any{"a": 1}, map[string]any{"a": 2, "b": 3})
	merged := r.Merged()
	if merged["a"] != 1 || merged["b"] != 3 {
		t.Fatalf("unexpected merge %v", merged)
	}
}
