package themes

import (
	"maps"
	"slices"
	"strings"

	gotheme "github.com/goliatone/go-theme"
)

// TokenThemeColor is the design token rendered as the theme-color meta tag.
const TokenThemeColor = "theme-color"

// Variable is one CSS custom property.
type Variable struct {
	Name  string
	Value string
}

// Selection is a resolved theme and variant. The zero value and nil are
// valid and expose nothing.
type Selection struct {
	Name    string
	Variant string

	tokens   map[string]string
	cssVars  map[string]string
	partials map[string]string
	template func(key, fallback string) string
	asset    func(key string) (string, bool)
}

// StaticSelection describes a selection without a go-theme manifest.
type StaticSelection struct {
	Name     string
	Variant  string
	Tokens   map[string]string
	CSSVars  map[string]string
	Partials map[string]string
	Assets   map[string]string
}

// NewStaticSelection builds a selection from plain maps.
func NewStaticSelection(in StaticSelection) *Selection {
	assets := maps.Clone(in.Assets)
	return &Selection{
		Name:     in.Name,
		Variant:  in.Variant,
		tokens:   maps.Clone(in.Tokens),
		cssVars:  normalizeVars(in.CSSVars),
		partials: maps.Clone(in.Partials),
		asset: func(key string) (string, bool) {
			url, ok := assets[key]
			return url, ok
		},
	}
}

func fromGoTheme(selection *gotheme.Selection, cfg Config) *Selection {
	if selection == nil {
		return nil
	}
	return &Selection{
		Name:     selection.Theme,
		Variant:  selection.Variant,
		tokens:   selection.Tokens(),
		cssVars:  normalizeVars(selection.CSSVariables(cfg.CSSVariablePrefix)),
		partials: selection.Partials(cfg.PartialFallbacks),
		template: selection.Template,
		asset: func(key string) (string, bool) {
			url, _ := selection.Asset(key)
			return url, url != ""
		},
	}
}

// CSSVariables returns the theme variables sorted by name.
func (s *Selection) CSSVariables() []Variable {
	if s == nil || len(s.cssVars) == 0 {
		return nil
	}
	out := make([]Variable, 0, len(s.cssVars))
	for _, name := range slices.Sorted(maps.Keys(s.cssVars)) {
		out = append(out, Variable{Name: name, Value: s.cssVars[name]})
	}
	return out
}

// StyleBlock renders the variables as a :root rule, or "" when there are
// none.
func (s *Selection) StyleBlock() string {
	vars := s.CSSVariables()
	if len(vars) == 0 {
		return ""
	}
	var b strings.Builder
	b.WriteString("<style>:root{")
	for _, v := range vars {
		b.WriteString(v.Name)
		b.WriteString(":")
		b.WriteString(sanitizeCSSValue(v.Value))
		b.WriteString(";")
	}
	b.WriteString("}</style>")
	return b.String()
}

// Token returns a design token value.
func (s *Selection) Token(name string) (string, bool) {
	if s == nil {
		return "", false
	}
	value, ok := s.tokens[name]
	value = strings.TrimSpace(value)
	return value, ok && value != ""
}

// PartialTemplate returns the theme override for a partial view path, or
// fallback when the theme does not override it.
func (s *Selection) PartialTemplate(name, fallback string) string {
	if s == nil {
		return fallback
	}
	if override := strings.TrimSpace(s.partials[name]); override != "" {
		return override
	}
	if s.template != nil {
		return s.template("partials."+name, fallback)
	}
	return fallback
}

// AssetURL resolves a theme asset key, returning "" when unknown.
func (s *Selection) AssetURL(key string) string {
	if s == nil || s.asset == nil {
		return ""
	}
	url, _ := s.asset(key)
	return url
}

// Data is the view of the selection exposed to templates.
func (s *Selection) Data() map[string]any {
	if s == nil {
		return map[string]any{}
	}
	return map[string]any{
		"name":    s.Name,
		"variant": s.Variant,
		"tokens":  maps.Clone(s.tokens),
	}
}

func normalizeVars(in map[string]string) map[string]string {
	out := make(map[string]string, len(in))
	for name, value := range in {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		if !strings.HasPrefix(name, "--") {
			name = "--" + strings.TrimLeft(name, "-")
		}
		out[name] = strings.TrimSpace(value)
	}
	return out
}

// sanitizeCSSValue keeps a value from closing the rule or the style element.
func sanitizeCSSValue(value string) string {
	return strings.NewReplacer(";", "", "{", "", "}", "", "<", "", ">", "").Replace(value)
}
