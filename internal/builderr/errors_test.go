package builderr

import (
	"errors"
	"testing"
)

func TestConfigurationErrorsAreCategorised(t *testing.T) {
	err := UnresolvedResource("main.css")
	if !IsConfiguration(err) {
		t.Fatalf("expected configuration category, got %v", err)
	}
	if IsMissingTemplate(err) {
		t.Fatalf("did not expect missing template category")
	}
	if code := TextCode(err); code != CodeResourceURLUnresolved {
		t.Fatalf("expected text code %s, got %q", CodeResourceURLUnresolved, code)
	}
}

func TestMissingTemplateErrorsAreCategorised(t *testing.T) {
	err := MissingTemplate("hero", "partials/hero.html", errors.New("file does not exist"))
	if !IsMissingTemplate(err) {
		t.Fatalf("expected missing template category, got %v", err)
	}
	if code := TextCode(err); code != CodePartialTemplateMissing {
		t.Fatalf("expected text code %s, got %q", CodePartialTemplateMissing, code)
	}

	inline := UnreadableInlineTemplate("promo", "views/promo.html", errors.New("permission denied"))
	if !IsMissingTemplate(inline) {
		t.Fatalf("expected inline error to be a missing template error")
	}
	if code := TextCode(inline); code != CodeInlineTemplateUnreadable {
		t.Fatalf("expected text code %s, got %q", CodeInlineTemplateUnreadable, code)
	}
}

func TestHelpersIgnorePlainErrors(t *testing.T) {
	plain := errors.New("boom")
	if IsConfiguration(plain) || IsMissingTemplate(plain) {
		t.Fatalf("plain errors must not match pagebuilder categories")
	}
	if TextCode(plain) != "" {
		t.Fatalf("expected empty text code for plain error")
	}
	if IsConfiguration(nil) {
		t.Fatalf("nil is not a configuration error")
	}
}
