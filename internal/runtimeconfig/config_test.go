package runtimeconfig_test

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/goliatone/go-pagebuilder/internal/runtimeconfig"
)

func TestConfigValidate_DefaultsAreValid(t *testing.T) {
	if err := runtimeconfig.DefaultConfig().Validate(); err != nil {
		t.Fatalf("Validate() returned unexpected error: %v", err)
	}
}

func TestConfigValidate_RequiresDefaultLocale(t *testing.T) {
	cfg := runtimeconfig.DefaultConfig()
	cfg.Site.DefaultLocale = " "

	if err := cfg.Validate(); !errors.Is(err, runtimeconfig.ErrDefaultLocaleRequired) {
		t.Fatalf("expected ErrDefaultLocaleRequired, got %v", err)
	}
}

func TestConfigValidate_RejectsUnknownInspectorMode(t *testing.T) {
	cfg := runtimeconfig.DefaultConfig()
	cfg.Inspector.Mode = "sometimes"

	if err := cfg.Validate(); !errors.Is(err, runtimeconfig.ErrInspectorModeInvalid) {
		t.Fatalf("expected ErrInspectorModeInvalid, got %v", err)
	}
}

func TestConfigValidate_RequiresNamePlaceholder(t *testing.T) {
	cfg := runtimeconfig.DefaultConfig()
	cfg.Partials.ViewPath = "partials/hero.html"

	if err := cfg.Validate(); !errors.Is(err, runtimeconfig.ErrPartialPathTemplateInvalid) {
		t.Fatalf("expected ErrPartialPathTemplateInvalid, got %v", err)
	}
}

func TestConfigValidate_RequiresOutputDir(t *testing.T) {
	cfg := runtimeconfig.DefaultConfig()
	cfg.Generator.OutputDir = ""

	if err := cfg.Validate(); !errors.Is(err, runtimeconfig.ErrGeneratorOutputDirRequired) {
		t.Fatalf("expected ErrGeneratorOutputDirRequired, got %v", err)
	}
}

func TestConfigValidate_RejectsInvalidLogging(t *testing.T) {
	cfg := runtimeconfig.DefaultConfig()
	cfg.Logging.Provider = "syslog"
	if err := cfg.Validate(); !errors.Is(err, runtimeconfig.ErrLoggingProviderUnknown) {
		t.Fatalf("expected ErrLoggingProviderUnknown, got %v", err)
	}

	cfg = runtimeconfig.DefaultConfig()
	cfg.Logging.Format = "xml"
	if err := cfg.Validate(); !errors.Is(err, runtimeconfig.ErrLoggingFormatInvalid) {
		t.Fatalf("expected ErrLoggingFormatInvalid, got %v", err)
	}
}

func TestConfigValidate_RejectsEmptyResource(t *testing.T) {
	cfg := runtimeconfig.DefaultConfig()
	cfg.Head.Stylesheets = []runtimeconfig.ResourceSpec{{Href: "/site.css"}, {}}

	if err := cfg.Validate(); err == nil {
		t.Fatalf("expected validation error for empty resource")
	}
}

func TestConfigValidate_RejectsInvalidBaseURL(t *testing.T) {
	cfg := runtimeconfig.DefaultConfig()
	cfg.Site.BaseURL = "not a url"

	if err := cfg.Validate(); err == nil {
		t.Fatalf("expected validation error for base url")
	}
}

func TestBeautifyDefaultsToEnabled(t *testing.T) {
	cfg := runtimeconfig.DefaultConfig()
	if !cfg.BeautifyEnabled() {
		t.Fatalf("expected beautify enabled by default")
	}
	disabled := false
	cfg.Beautify = &disabled
	if cfg.BeautifyEnabled() {
		t.Fatalf("expected beautify disabled when explicitly false")
	}
}

func TestInspectorRule(t *testing.T) {
	cases := []struct {
		mode string
		env  string
		want bool
	}{
		{mode: "auto", env: "development", want: true},
		{mode: "auto", env: "Staging", want: true},
		{mode: "auto", env: "production", want: false},
		{mode: "on", env: "production", want: true},
		{mode: "off", env: "development", want: false},
	}
	for _, tc := range cases {
		cfg := runtimeconfig.DefaultConfig()
		cfg.Inspector.Mode = tc.mode
		cfg.Site.Environment = tc.env
		if got := cfg.InspectorEnabled(); got != tc.want {
			t.Fatalf("mode %s env %s: expected %v, got %v", tc.mode, tc.env, tc.want, got)
		}
	}
}

func TestSiteLocalesKeepsOrderAndAddsDefault(t *testing.T) {
	cfg := runtimeconfig.DefaultConfig()
	cfg.Site.DefaultLocale = "en_US"
	cfg.Site.Locales = []string{"fr_FR", "de_DE", "fr_FR", " "}

	want := []string{"en_US", "fr_FR", "de_DE"}
	if got := cfg.SiteLocales(); !reflect.DeepEqual(got, want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
}

func TestLoadFileOverlaysDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "pagebuilder.yaml")
	body := `site:
  name: Example
  base_url: https://example.com
  default_locale: en_US
  locales: [en_US, fr_FR]
head:
  stylesheets:
    - asset: /dist/css/site.css
      preload: true
beautify: false
`
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := runtimeconfig.LoadFile(path)
	if err != nil {
		t.Fatalf("load file: %v", err)
	}
	if cfg.Site.Name != "Example" || cfg.Site.BaseURL != "https://example.com" {
		t.Fatalf("unexpected site config %#v", cfg.Site)
	}
	if len(cfg.Head.Stylesheets) != 1 || !cfg.Head.Stylesheets[0].Preload {
		t.Fatalf("unexpected stylesheets %#v", cfg.Head.Stylesheets)
	}
	if cfg.BeautifyEnabled() {
		t.Fatalf("expected beautify disabled")
	}
	if cfg.Partials.ViewPath != "partials/{name}.html" {
		t.Fatalf("expected default view path, got %q", cfg.Partials.ViewPath)
	}
}
