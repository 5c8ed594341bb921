// Package generator exposes the static site generation API for page builder hosts.
// Use NewService with Config and Dependencies to prerender every routed page,
// copy public assets and write peripheral routes such as sitemap.xml.
package generator

import internal "github.com/goliatone/go-pagebuilder/internal/generator"

type (
	Service            = internal.Service
	Config             = internal.Config
	BuildOptions       = internal.BuildOptions
	BuildResult        = internal.BuildResult
	RenderedPage       = internal.RenderedPage
	RenderDiagnostic   = internal.RenderDiagnostic
	Dependencies       = internal.Dependencies
	DocumentBuilder    = internal.DocumentBuilder
	AssetSource        = internal.AssetSource
	Recorder           = internal.Recorder
	NoopRecorder       = internal.NoopRecorder
	PrometheusRecorder = internal.PrometheusRecorder
)

var (
	ErrServiceDisabled = internal.ErrServiceDisabled
	ErrPageNotRoutable = internal.ErrPageNotRoutable
)

// NewService wires a static site generator with the supplied configuration and dependencies.
func NewService(cfg Config, deps Dependencies) Service {
	return internal.NewService(cfg, deps)
}

// NewDisabledService returns a Service that fails all operations with ErrServiceDisabled.
func NewDisabledService() Service {
	return internal.NewDisabledService()
}

// ConfigFrom derives generator settings from a site configuration.
var ConfigFrom = internal.ConfigFrom

// NewPrometheusRecorder registers build metrics with reg.
var NewPrometheusRecorder = internal.NewPrometheusRecorder
