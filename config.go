package pagebuilder

import "github.com/goliatone/go-pagebuilder/internal/runtimeconfig"

var (
	ErrDefaultLocaleRequired      = runtimeconfig.ErrDefaultLocaleRequired
	ErrInspectorModeInvalid       = runtimeconfig.ErrInspectorModeInvalid
	ErrPartialPathTemplateInvalid = runtimeconfig.ErrPartialPathTemplateInvalid
	ErrGeneratorOutputDirRequired = runtimeconfig.ErrGeneratorOutputDirRequired
	ErrStorageDriverUnknown       = runtimeconfig.ErrStorageDriverUnknown
	ErrLoggingProviderUnknown     = runtimeconfig.ErrLoggingProviderUnknown
	ErrLoggingLevelInvalid        = runtimeconfig.ErrLoggingLevelInvalid
	ErrLoggingFormatInvalid       = runtimeconfig.ErrLoggingFormatInvalid
)

type (
	Config          = runtimeconfig.Config
	SiteConfig      = runtimeconfig.SiteConfig
	PathsConfig     = runtimeconfig.PathsConfig
	HeadConfig      = runtimeconfig.HeadConfig
	BodyConfig      = runtimeconfig.BodyConfig
	PartialsConfig  = runtimeconfig.PartialsConfig
	InspectorConfig = runtimeconfig.InspectorConfig
	ThemeConfig     = runtimeconfig.ThemeConfig
	ResourceSpec    = runtimeconfig.ResourceSpec
	SitemapConfig   = runtimeconfig.SitemapConfig
	RobotsConfig    = runtimeconfig.RobotsConfig
	PreviewConfig   = runtimeconfig.PreviewConfig
	GeneratorConfig = runtimeconfig.GeneratorConfig
	StorageConfig   = runtimeconfig.StorageConfig
	LoggingConfig   = runtimeconfig.LoggingConfig
)

func DefaultConfig() Config {
	return runtimeconfig.DefaultConfig()
}

// LoadConfig reads a YAML configuration file over DefaultConfig.
func LoadConfig(path string) (Config, error) {
	return runtimeconfig.LoadFile(path)
}
