// Package themes selects the active go-theme manifest and exposes the parts
// of it that page assembly consumes: CSS variables, design tokens, partial
// template overrides and asset URLs.
package themes

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	gotheme "github.com/goliatone/go-theme"
)

// ErrThemeNameRequired is returned when a manifest cannot be named.
var ErrThemeNameRequired = errors.New("themes: theme name required for manifest registration")

// Config selects the theme used for a site.
type Config struct {
	// Dir holds the theme manifest. An empty Dir disables theming.
	Dir               string            `json:"dir,omitempty" yaml:"dir,omitempty"`
	Name              string            `json:"name,omitempty" yaml:"name,omitempty"`
	Variant           string            `json:"variant,omitempty" yaml:"variant,omitempty"`
	CSSVariablePrefix string            `json:"css_variable_prefix,omitempty" yaml:"css_variable_prefix,omitempty"`
	PartialFallbacks  map[string]string `json:"partial_fallbacks,omitempty" yaml:"partial_fallbacks,omitempty"`
}

// Enabled reports whether a theme directory is configured.
func (c Config) Enabled() bool {
	return strings.TrimSpace(c.Dir) != ""
}

// ManifestLoader reads a theme manifest from a directory.
type ManifestLoader interface {
	Load(dir string) (*gotheme.Manifest, error)
}

// FSManifestLoader loads manifests from the local filesystem.
type FSManifestLoader struct{}

func (FSManifestLoader) Load(dir string) (*gotheme.Manifest, error) {
	if strings.TrimSpace(dir) == "" {
		return nil, fmt.Errorf("themes: theme path required")
	}
	return gotheme.LoadDir(os.DirFS(filepath.Clean(strings.TrimSpace(dir))), ".")
}

// Selector loads the configured manifest once and resolves selections
// against it.
type Selector struct {
	cfg      Config
	loader   ManifestLoader
	registry *gotheme.MemoryRegistry

	mu       sync.Mutex
	manifest *gotheme.Manifest
}

// NewSelector returns a selector for cfg. A nil loader reads from disk.
func NewSelector(cfg Config, loader ManifestLoader) *Selector {
	if loader == nil {
		loader = FSManifestLoader{}
	}
	return &Selector{
		cfg:      cfg,
		loader:   loader,
		registry: gotheme.NewRegistry(),
	}
}

// Select resolves the configured theme for variant, falling back to the
// configured default variant. It returns nil when theming is disabled.
func (s *Selector) Select(variant string) (*Selection, error) {
	if s == nil || !s.cfg.Enabled() {
		return nil, nil
	}
	manifest, err := s.ensureManifest()
	if err != nil {
		return nil, err
	}

	selector := gotheme.Selector{
		Registry:       s.registry,
		DefaultTheme:   manifest.Name,
		DefaultVariant: strings.TrimSpace(s.cfg.Variant),
	}
	resolved := strings.TrimSpace(variant)
	if resolved == "" {
		resolved = strings.TrimSpace(s.cfg.Variant)
	}
	selection, err := selector.Select(manifest.Name, resolved)
	if err != nil {
		return nil, fmt.Errorf("themes: select %s: %w", manifest.Name, err)
	}
	return fromGoTheme(selection, s.cfg), nil
}

func (s *Selector) ensureManifest() (*gotheme.Manifest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.manifest != nil {
		return s.manifest, nil
	}
	manifest, err := s.loader.Load(s.cfg.Dir)
	if err != nil {
		return nil, fmt.Errorf("themes: load manifest from %s: %w", s.cfg.Dir, err)
	}
	if manifest == nil {
		return nil, fmt.Errorf("themes: empty manifest in %s", s.cfg.Dir)
	}

	normalized := *manifest
	if name := strings.TrimSpace(s.cfg.Name); name != "" {
		normalized.Name = name
	}
	normalized.Name = strings.TrimSpace(normalized.Name)
	if normalized.Name == "" {
		return nil, ErrThemeNameRequired
	}
	if err := s.registry.Register(&normalized); err != nil {
		return nil, fmt.Errorf("themes: register manifest: %w", err)
	}
	s.manifest = &normalized
	return s.manifest, nil
}
