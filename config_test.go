package pagebuilder_test

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/goliatone/go-pagebuilder"
)

func TestConfigValidateDefaultLocaleRequired(t *testing.T) {
	cfg := pagebuilder.DefaultConfig()
	cfg.Site.DefaultLocale = " "
	if err := cfg.Validate(); !errors.Is(err, pagebuilder.ErrDefaultLocaleRequired) {
		t.Fatalf("expected ErrDefaultLocaleRequired, got %v", err)
	}
}

func TestConfigValidateStorageDriverUnknown(t *testing.T) {
	cfg := pagebuilder.DefaultConfig()
	cfg.Storage.Driver = "redis"
	if err := cfg.Validate(); !errors.Is(err, pagebuilder.ErrStorageDriverUnknown) {
		t.Fatalf("expected ErrStorageDriverUnknown, got %v", err)
	}
}

func TestConfigValidateLoggingProviderUnknown(t *testing.T) {
	cfg := pagebuilder.DefaultConfig()
	cfg.Logging.Provider = "zap"
	if err := cfg.Validate(); !errors.Is(err, pagebuilder.ErrLoggingProviderUnknown) {
		t.Fatalf("expected ErrLoggingProviderUnknown, got %v", err)
	}
}

func TestLoadConfigOverlaysDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "site.yaml")
	data := []byte("site:\n  name: Example\n  base_url: https://example.com\ninspector:\n  mode: on\n")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	cfg, err := pagebuilder.LoadConfig(path)
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.Site.Name != "Example" || !cfg.InspectorEnabled() {
		t.Fatalf("unexpected config %+v", cfg.Site)
	}
	if cfg.Generator.OutputDir != "dist" {
		t.Fatalf("expected default output dir, got %q", cfg.Generator.OutputDir)
	}
}
