package staticcmd

import (
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/goliatone/go-pagebuilder/internal/generator"
)

// ResultEnvelope is handed to a command's ResultCallback. Metadata always
// carries "operation".
type ResultEnvelope struct {
	Result   *generator.BuildResult
	Page     *generator.RenderedPage
	HTML     string
	Metadata map[string]any
}

// ResultCallback runs synchronously inside Execute.
type ResultCallback func(ResultEnvelope)

// Filter narrows a build to some page paths and locales. Empty means all.
type Filter struct {
	Paths   []string `json:"paths,omitempty"`
	Locales []string `json:"locales,omitempty"`
}

func (f Filter) errors(command string) validation.Errors {
	errs := validation.Errors{}
	for field, values := range map[string][]string{"paths": f.Paths, "locales": f.Locales} {
		for _, value := range values {
			if strings.TrimSpace(value) == "" {
				errs[field] = validation.NewError("pagebuilder.static."+command+"."+field+"_blank", field+" must not contain blank entries")
				break
			}
		}
	}
	return errs
}

func (f Filter) empty() bool {
	return len(f.Paths) == 0 && len(f.Locales) == 0
}

// buildOptions trims and dedupes the filter. Locales compare case-insensitively.
func (f Filter) buildOptions() generator.BuildOptions {
	return generator.BuildOptions{
		Paths:   dedupe(f.Paths, func(s string) string { return s }),
		Locales: dedupe(f.Locales, strings.ToLower),
	}
}

func dedupe(values []string, key func(string) string) []string {
	var out []string
	seen := map[string]bool{}
	for _, value := range values {
		value = strings.TrimSpace(value)
		if value == "" || seen[key(value)] {
			continue
		}
		seen[key(value)] = true
		out = append(out, value)
	}
	return out
}

// RenderPageCommand renders one stored page. Write also stores the document
// in the generator output.
type RenderPageCommand struct {
	Path           string         `json:"path"`
	Locale         string         `json:"locale,omitempty"`
	Write          bool           `json:"write,omitempty"`
	ResultCallback ResultCallback `json:"-"`
}

func (RenderPageCommand) Type() string { return "pagebuilder.static.render" }

func (m RenderPageCommand) Validate() error {
	return validation.ValidateStruct(&m,
		validation.Field(&m.Path, validation.Required.ErrorObject(
			validation.NewError("pagebuilder.static.render.path_required", "path is required"),
		)),
	)
}

// BuildSiteCommand runs the generator. AssetsOnly and RoutesOnly skip page
// rendering and cannot be combined with a filter.
type BuildSiteCommand struct {
	Filter
	Force          bool           `json:"force,omitempty"`
	DryRun         bool           `json:"dry_run,omitempty"`
	AssetsOnly     bool           `json:"assets_only,omitempty"`
	RoutesOnly     bool           `json:"routes_only,omitempty"`
	ResultCallback ResultCallback `json:"-"`
}

func (BuildSiteCommand) Type() string { return "pagebuilder.static.build" }

func (m BuildSiteCommand) Validate() error {
	errs := m.Filter.errors("build")
	switch {
	case m.AssetsOnly && m.RoutesOnly:
		errs["routes_only"] = validation.NewError("pagebuilder.static.build.scope_conflict", "assets_only and routes_only are exclusive")
	case (m.AssetsOnly || m.RoutesOnly) && !m.Filter.empty():
		errs["filter"] = validation.NewError("pagebuilder.static.build.scope_filtered", "partial builds cannot be filtered")
	}
	return errs.Filter()
}

// DiffSiteCommand is a dry-run build reporting what would be written.
type DiffSiteCommand struct {
	Filter
	Force          bool           `json:"force,omitempty"`
	ResultCallback ResultCallback `json:"-"`
}

func (DiffSiteCommand) Type() string { return "pagebuilder.static.diff" }

func (m DiffSiteCommand) Validate() error {
	return m.Filter.errors("diff").Filter()
}

// CleanSiteCommand removes every generated artifact.
type CleanSiteCommand struct{}

func (CleanSiteCommand) Type() string { return "pagebuilder.static.clean" }

func (CleanSiteCommand) Validate() error { return nil }
